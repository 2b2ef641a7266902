package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"stt-cli/internal/config"
)

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and change settings in config.yaml",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Print the config file path",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := config.Path()
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), p)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"path": p}})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Print all settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			values := make(map[string]string, len(config.Keys))
			for _, k := range config.Keys {
				v, _ := app.cfg.Get(k)
				values[k] = v
				if app.text() {
					fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, v)
				}
			}
			if app.text() {
				return nil
			}
			return writeOut(cmd, app, map[string]any{"data": values})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := app.cfg.Get(args[0])
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				_, err := fmt.Fprintln(cmd.OutOrStdout(), v)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": args[0], "value": v}})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> <value>",
		Short: "Change one setting",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := app.cfg
			if err := cfg.Set(args[0], args[1]); err != nil {
				return writeErr(cmd, err)
			}
			if err := config.Save(cfg); err != nil {
				return writeErr(cmd, err)
			}
			app.cfg = cfg
			v, _ := cfg.Get(args[0])
			if app.text() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", args[0], v)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"key": args[0], "value": v}})
		},
	})

	return cmd
}
