// Package tui is the interactive activity list started by `stt` without
// arguments.
package tui

import (
	"context"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"stt-cli/internal/activity"
	"stt-cli/internal/query"
)

// Run shows the TUI until the user quits or ctx is done. Changes made to the
// activities file by other processes are picked up while it runs.
func Run(ctx context.Context, acts *activity.Activities) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := query.Watch(ctx, acts.Store.Path, acts.Bus); err != nil {
		// Live refresh is optional; "r" still reloads.
		slog.Warn("cannot watch activities file", "path", acts.Store.Path, "err", err)
	}

	applyColorProfile()
	m := newAppModel(acts)
	defer m.detach()
	_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	return err
}
