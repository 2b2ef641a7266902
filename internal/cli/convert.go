package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"stt-cli/internal/model"
	"stt-cli/internal/store"
)

func newConvertCmd(app *App) *cobra.Command {
	var from, input, output string
	var into bool

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert ti, csv or stt input into stt lines",
		Long: strings.TrimSpace(`
Read items in another format and write them as activities file lines.

Formats:
  stt  the activities file format
  ti   "activity start [to end]" per line, '_' in the activity becomes a space
  csv  ';' separated, date dd.MM.yyyy in column 2, duration HH:mm in column 5,
       activity in column 9

With --into the items are inserted into the activities file instead.`),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var in io.Reader = cmd.InOrStdin()
			if input != "" && input != "-" {
				f, err := os.Open(input)
				if err != nil {
					return writeErr(cmd, err)
				}
				defer f.Close()
				in = f
			}
			r, err := store.NewFormatReader(store.SourceFormat(from), in)
			if err != nil {
				return writeErr(cmd, err)
			}
			defer r.Close()

			var w store.ItemWriter
			var closeOut func() error
			switch {
			case into:
				acts, err := app.activities()
				if err != nil {
					return writeErr(cmd, err)
				}
				w = insertWriter{acts.Store}
				closeOut = func() error {
					acts.Cache.Invalidate()
					return nil
				}
			case output != "" && output != "-":
				f, err := os.Create(output)
				if err != nil {
					return writeErr(cmd, err)
				}
				w = store.NewLineWriter(f)
				closeOut = f.Close
			default:
				w = store.NewLineWriter(cmd.OutOrStdout())
				closeOut = func() error { return nil }
			}

			n := 0
			for {
				it, err := r.Read()
				if err == io.EOF {
					break
				}
				if err != nil {
					_ = closeOut()
					return writeErr(cmd, err)
				}
				if err := w.Write(it); err != nil {
					_ = closeOut()
					return writeErr(cmd, err)
				}
				n++
			}
			if err := closeOut(); err != nil {
				return writeErr(cmd, err)
			}
			if into || (output != "" && output != "-") {
				if app.text() {
					_, err := fmt.Fprintf(cmd.OutOrStdout(), "converted %d item(s)\n", n)
					return err
				}
				return writeOut(cmd, app, map[string]any{"data": map[string]any{"items": n}})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", string(store.FormatSTT), "Input format (stt|ti|csv)")
	cmd.Flags().StringVarP(&input, "input", "i", "", "Input file (default: stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&into, "into", false, "Insert the converted items into the activities file")
	return cmd
}

// insertWriter inserts each written item into a store.
type insertWriter struct {
	s store.Store
}

func (w insertWriter) Write(it model.Item) error { return w.s.Insert(it) }

func newExportCmd(app *App) *cobra.Command {
	var sqlitePath string

	cmd := &cobra.Command{
		Use:   "export --sqlite FILE",
		Short: "Export all items to a SQLite database",
		Long:  "Write every item into the table \"items\" of a SQLite database, replacing its previous content.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if strings.TrimSpace(sqlitePath) == "" {
				return writeErr(cmd, errUsage("missing --sqlite"))
			}
			acts, err := app.activities()
			if err != nil {
				return writeErr(cmd, err)
			}
			items, err := acts.Cache.QueryAll()
			if err != nil {
				return writeErr(cmd, err)
			}
			n, err := store.ExportSQLite(cmd.Context(), sqlitePath, items)
			if err != nil {
				return writeErr(cmd, err)
			}
			if app.text() {
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "exported %d item(s) to %s\n", n, sqlitePath)
				return err
			}
			return writeOut(cmd, app, map[string]any{"data": map[string]any{"items": n, "path": sqlitePath}})
		},
	}

	cmd.Flags().StringVar(&sqlitePath, "sqlite", "", "SQLite database file")
	return cmd
}
