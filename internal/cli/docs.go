package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stt-cli/internal/docs"
)

func newDocsCmd(app *App) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "docs [topic]",
		Short: "Show documentation (file format, commands, configuration)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				topics := docs.Topics()
				if app.text() {
					for _, t := range topics {
						fmt.Fprintln(cmd.OutOrStdout(), t)
					}
					return nil
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"topics": topics}})
			}

			topic := args[0]
			body, ok := docs.Get(topic)
			if !ok {
				return writeErr(cmd, fmt.Errorf("unknown docs topic: %q (run `stt docs` to list topics)", topic))
			}

			switch {
			case raw:
				_, err := fmt.Fprint(cmd.OutOrStdout(), body)
				return err
			case app.text():
				style := "dark"
				if app.NoColor || !isTerminal(cmd) {
					style = "notty"
				}
				_, err := fmt.Fprint(cmd.OutOrStdout(), docs.Render(body, max(app.reportWidth(cmd, 0), 80), style))
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"topic": topic, "markdown": body}})
		},
	}

	cmd.Flags().BoolVar(&raw, "raw", false, "Print raw markdown (no JSON envelope)")

	return cmd
}
