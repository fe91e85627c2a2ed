package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	tableCellStyle   = lipgloss.NewStyle().Padding(0, 1)
	tableQtyStyle    = tableCellStyle.Foreground(lipgloss.Color("10"))
)

func newViewCmd(a *app) *cobra.Command {
	var (
		search string
		sortBy string
		desc   bool
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "view <file>",
		Short: "Print the table, optionally filtered and sorted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.loadTable(args[0])
			if err != nil {
				return err
			}

			q := core.Query{Search: search}
			if sortBy != "" {
				if !tbl.HasColumn(sortBy) {
					return fmt.Errorf("unknown column %q", sortBy)
				}
				q.Sort = core.SortSpec{Column: sortBy, Direction: core.Ascending}
				if desc {
					q.Sort.Direction = core.Descending
				}
			}
			rows := tbl.View(q)

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(rows)
			}
			renderTable(cmd.OutOrStdout(), tbl, rows)
			fmt.Fprintf(cmd.OutOrStdout(), "%d of %d rows\n", len(rows), tbl.Len())
			return nil
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive substring matched against every column")
	cmd.Flags().StringVar(&sortBy, "sort", "", "column to sort by")
	cmd.Flags().BoolVar(&desc, "desc", false, "sort descending")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output rows as JSON")
	return cmd
}

// renderTable draws rows with a leading row-id column.
func renderTable(w io.Writer, tbl *core.Table, rows []core.Row) {
	header := tbl.Header()
	qty, _ := tbl.QuantityColumn()

	data := make([][]string, len(rows))
	for i, r := range rows {
		cells := make([]string, 0, len(header)+1)
		cells = append(cells, fmt.Sprint(r.ID))
		for _, col := range header {
			cells = append(cells, r.Values.Get(col).String())
		}
		data[i] = cells
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(append([]string{"#"}, header...)...).
		Rows(data...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return tableHeaderStyle
			case col > 0 && header[col-1] == qty:
				return tableQtyStyle
			default:
				return tableCellStyle
			}
		})
	fmt.Fprintln(w, t.Render())
}
