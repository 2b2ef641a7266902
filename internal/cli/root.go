package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"

	"stt-cli/internal/activity"
	"stt-cli/internal/config"
	"stt-cli/internal/format"
	"stt-cli/internal/store"
	"stt-cli/internal/tui"
)

type App struct {
	File       string
	Format     string
	PrettyJSON bool
	Verbose    bool
	NoColor    bool

	cfg  config.Config
	acts *activity.Activities
	// now is replaced in tests.
	now func() time.Time
}

func NewRootCmd() *cobra.Command {
	app := &App{now: time.Now}

	cmd := &cobra.Command{
		Use:          "stt",
		Short:        "Simple time tracking in a plain text file",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Interactive view
  stt

  # Start working on something (shortcut for: stt on <activity>)
  stt write the quarterly report

  # Stop working
  stt fin

  # What did I do today?
  stt report --format text
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runTUI(cmd, app)
			}
			return cmd.Help()
		},
	}

	cmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return writeErr(cmd, err)
		}
		app.cfg = cfg
		setupLogging(cmd.ErrOrStderr(), logLevel(cfg.Log.Level, app.Verbose), app.NoColor)
		if app.NoColor || os.Getenv("NO_COLOR") != "" {
			lipgloss.SetColorProfile(termenv.Ascii)
		}
		return nil
	}

	cmd.PersistentFlags().StringVarP(&app.File, "file", "f", "", "Activities file (default: $STT_FILE, config file, ~/.stt/activities)")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("STT_FORMAT", format.JSON), "Output format (json|edn|text)")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON/EDN output")
	cmd.PersistentFlags().BoolVarP(&app.Verbose, "verbose", "v", false, "Debug logging on stderr")
	cmd.PersistentFlags().BoolVar(&app.NoColor, "no-color", false, "Disable colors")

	cmd.AddCommand(newOnCmd(app))
	cmd.AddCommand(newFinCmd(app))
	cmd.AddCommand(newResumeCmd(app))
	cmd.AddCommand(newListCmd(app))
	cmd.AddCommand(newSearchCmd(app))
	cmd.AddCommand(newRmCmd(app))
	cmd.AddCommand(newRenameCmd(app))
	cmd.AddCommand(newReportCmd(app))
	cmd.AddCommand(newConvertCmd(app))
	cmd.AddCommand(newExportCmd(app))
	cmd.AddCommand(newDocsCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func runTUI(cmd *cobra.Command, app *App) error {
	acts, err := app.activities()
	if err != nil {
		return writeErr(cmd, err)
	}
	return tui.Run(cmd.Context(), acts)
}

// activities opens the store once per command invocation.
func (app *App) activities() (*activity.Activities, error) {
	if app.acts != nil {
		return app.acts, nil
	}
	path, err := app.cfg.ActivitiesFile(app.File)
	if err != nil {
		return nil, fmt.Errorf("resolve activities file: %w", err)
	}
	slog.Debug("using activities file", "path", path)
	app.acts = activity.New(store.New(path))
	app.acts.Now = app.now
	return app.acts, nil
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	f := app.Format
	if f == format.Text {
		f = format.JSON
	}
	return format.Write(cmd.OutOrStdout(), v, f, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}

func (app *App) text() bool { return app.Format == format.Text }
