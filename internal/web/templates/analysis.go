package templates

import (
	"context"
	"fmt"
	"io"
	"maps"
	"math"
	"slices"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/a-h/templ"
)

// AnalysisResult renders an answer. Bar and pie suggestions are drawn as
// horizontal bars over the first numeric column; everything else is a table.
func AnalysisResult(res *analysis.Result) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<article><p>`)
		h.text(res.Explanation)
		h.raw(`</p>`)

		if v := res.Visualization; v != nil && len(v.Data) > 0 {
			h.raw(`<h3>`)
			h.text(v.Title)
			h.raw(`</h3>`)
			if (v.Type == analysis.VisualBar || v.Type == analysis.VisualPie) && len(v.Columns) >= 2 {
				renderBars(h, v)
			} else {
				renderDataTable(h, v)
			}
		}
		h.raw(`</article>`)
		return h.err
	})
}

func renderBars(h *htmlWriter, v *analysis.Visualization) {
	label, value := v.Columns[0].Key, v.Columns[1].Key
	peak := 0.0
	for _, row := range v.Data {
		if f, ok := row[value].(float64); ok {
			peak = math.Max(peak, math.Abs(f))
		}
	}
	h.raw(`<table>`)
	for _, row := range v.Data {
		f, _ := row[value].(float64)
		width := 0.0
		if peak > 0 {
			width = math.Abs(f) / peak * 100
		}
		h.raw(`<tr><td>`)
		h.text(cellString(row[label]))
		h.raw(`</td><td style="width:60%">`)
		h.rawf(`<div class="bar" style="width:%.1f%%"></div>`, width)
		h.raw(`</td><td>`)
		h.text(cellString(row[value]))
		h.raw(`</td></tr>`)
	}
	h.raw(`</table>`)
}

func renderDataTable(h *htmlWriter, v *analysis.Visualization) {
	cols := v.Columns
	if len(cols) == 0 {
		for _, k := range slices.Sorted(maps.Keys(v.Data[0])) {
			cols = append(cols, analysis.Column{Key: k, Label: k})
		}
	}
	h.raw(`<table><thead><tr>`)
	for _, c := range cols {
		h.raw(`<th>`)
		h.text(c.Label)
		h.raw(`</th>`)
	}
	h.raw(`</tr></thead><tbody>`)
	for _, row := range v.Data {
		h.raw(`<tr>`)
		for _, c := range cols {
			h.raw(`<td>`)
			h.text(cellString(row[c.Key]))
			h.raw(`</td>`)
		}
		h.raw(`</tr>`)
	}
	h.raw(`</tbody></table>`)
}

func cellString(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case float64:
		return fmt.Sprintf("%g", x)
	default:
		return fmt.Sprint(x)
	}
}
