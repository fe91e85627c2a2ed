package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/spf13/cobra"
)

func newEditCmd(a *app) *cobra.Command {
	var (
		row    int
		value  string
		column string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "edit <file>",
		Short: "Set one stock cell and write " + core.ExportFileName,
		Long: `edit sets the stock value of one row, identified by its row number as shown
by "stockctl view", and writes the whole table to ` + core.ExportFileName + ` next to
the input file (or --out).`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.loadTable(args[0])
			if err != nil {
				return err
			}

			if column == "" {
				column, _ = tbl.QuantityColumn()
			}
			if !tbl.Editable(column) {
				return fmt.Errorf("%w: %q", core.ErrColumnNotEditable, column)
			}

			ctx := core.ContextWithClient(context.Background(), core.Client{UserAgent: "stockctl edit"})
			res := tbl.ApplyEdit(ctx, core.RowID(row), column, value)
			if !res.Applied {
				return fmt.Errorf("row %d not found", row)
			}

			if out == "" {
				out = filepath.Join(filepath.Dir(args[0]), core.ExportFileName)
			}
			if err := os.WriteFile(out, []byte(tbl.ExportText()), 0o644); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "row %d: %s %s -> %s\nwrote %s\n",
				res.RowID, res.Column, res.Old.String(), res.New.String(), out)
			return nil
		},
	}

	cmd.Flags().IntVar(&row, "row", 0, "row number to edit (1-based, file order)")
	cmd.Flags().StringVar(&value, "value", "", "new value")
	cmd.Flags().StringVar(&column, "column", "", "column to edit (default: detected stock column)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output path (default: "+core.ExportFileName+" next to the input)")
	_ = cmd.MarkFlagRequired("row")
	_ = cmd.MarkFlagRequired("value")
	return cmd
}
