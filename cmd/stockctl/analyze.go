package main

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
)

var titleStyle = lipgloss.NewStyle().Bold(true)

func newAnalyzeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <file> <question...>",
		Short: "Ask a question about the inventory using Gemini",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			tbl, err := a.loadTable(args[0])
			if err != nil {
				return err
			}

			client := analysis.NewClient(a.analysisConfig())
			res, err := client.Analyze(cmd.Context(), analysis.Request{
				CSV:      tbl.ExportText(),
				Query:    strings.Join(args[1:], " "),
				Language: a.v.GetString(cfgKeyLanguage),
			})
			if err != nil {
				return err
			}

			printResult(cmd.OutOrStdout(), res)
			return nil
		},
	}

	cmd.Flags().String(cfgKeyLanguage, analysis.DefaultLanguage, "language tag for the answer (en, fr, ...)")
	cmd.Flags().String(cfgKeyModel, analysis.DefaultModel, "Gemini model")
	return cmd
}

func printResult(w io.Writer, res *analysis.Result) {
	fmt.Fprintln(w, res.Explanation)

	v := res.Visualization
	if v == nil || len(v.Data) == 0 {
		return
	}

	cols := v.Columns
	if len(cols) == 0 {
		for _, k := range slices.Sorted(maps.Keys(v.Data[0])) {
			cols = append(cols, analysis.Column{Key: k, Label: k})
		}
	}

	headers := make([]string, len(cols))
	for i, c := range cols {
		headers[i] = c.Label
	}
	rows := make([][]string, len(v.Data))
	for i, d := range v.Data {
		row := make([]string, len(cols))
		for j, c := range cols {
			if val, ok := d[c.Key]; ok && val != nil {
				row[j] = fmt.Sprint(val)
			}
		}
		rows[i] = row
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s (%s)", v.Title, v.Type)))
	fmt.Fprintln(w, table.New().Border(lipgloss.NormalBorder()).Headers(headers...).Rows(rows...).Render())
}
