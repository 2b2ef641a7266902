package tui

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"unicode"

	tea "github.com/charmbracelet/bubbletea"

	"stt-cli/internal/model"
)

type editorDoneMsg struct {
	path string
	item model.Item
	err  error
}

// editorCommand is $VISUAL, then $EDITOR, then vi, split into argv.
func editorCommand() []string {
	for _, env := range []string{"VISUAL", "EDITOR"} {
		if args := shellFields(os.Getenv(env)); len(args) > 0 {
			return args
		}
	}
	return []string{"vi"}
}

// shellFields splits s like a shell would for a simple command: whitespace
// separates words, quotes group them and a backslash escapes the next rune
// outside single quotes.
func shellFields(s string) []string {
	var (
		out     []string
		cur     strings.Builder
		started bool
		quote   rune
		escaped bool
	)
	for _, r := range s {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped, started = true, true
		case quote != 0 && r == quote:
			quote = 0
		case quote == 0 && (r == '\'' || r == '"'):
			quote, started = r, true
		case quote == 0 && unicode.IsSpace(r):
			if started {
				out = append(out, cur.String())
				cur.Reset()
				started = false
			}
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	if started {
		out = append(out, cur.String())
	}
	return out
}

// editActivity opens the activity of it in the external editor. Multi-line
// activities are stored escaped on one line.
func (m *appModel) editActivity(it model.Item) (tea.Cmd, error) {
	f, err := os.CreateTemp("", "stt-activity-*.txt")
	if err != nil {
		return nil, err
	}
	path := f.Name()
	if _, err := f.WriteString(it.Activity + "\n"); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return nil, err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return nil, err
	}

	args := editorCommand()
	c := exec.Command(args[0], append(args[1:], path)...)
	return tea.ExecProcess(c, func(err error) tea.Msg {
		return editorDoneMsg{path: path, item: it, err: err}
	}), nil
}

func (m *appModel) applyEditorResult(msg editorDoneMsg) {
	defer func() { _ = os.Remove(msg.path) }()

	if msg.err != nil {
		m.setStatus("", fmt.Errorf("editor failed: %w", msg.err))
		return
	}
	b, err := os.ReadFile(msg.path)
	if err != nil {
		m.setStatus("", fmt.Errorf("read editor result: %w", err))
		return
	}
	text := strings.TrimRight(string(b), "\r\n")
	if strings.TrimSpace(text) == "" || text == msg.item.Activity {
		m.setStatus("no changes", nil)
		return
	}
	_, err = m.acts.Start(msg.item.WithActivity(text))
	m.setStatus("updated from editor", err)
}
