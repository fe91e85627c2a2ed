package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/stockpilot/internal/analysis"
	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func TestErrorAlert(t *testing.T) {
	out := render(t, ErrorAlert("Bad <file>", "Try again", "FILE002"))
	assert.Contains(t, out, "Bad &lt;file&gt;")
	assert.Contains(t, out, "Code: FILE002")

	out = render(t, ErrorAlert("Oops", "", ""))
	assert.NotContains(t, out, "Code:")
}

func TestGrid(t *testing.T) {
	p := GridParams{
		WorkspaceID:    "ws 1",
		FileName:       "stock.csv",
		Header:         []string{"Name", "Stock"},
		QuantityColumn: "Stock",
		Rows: []GridRow{
			{ID: 1, Cells: []string{"Widget", "5"}},
			{ID: 2, Cells: []string{`"Quoted"`}},
		},
		Sort:          core.SortSpec{Column: "Stock", Direction: core.Descending},
		Page:          1,
		Pages:         2,
		Visible:       2,
		Total:         3,
		QuantityTotal: 5,
	}
	out := render(t, Grid(p))

	assert.Contains(t, out, `hx-post="/w/ws%201/sort/Stock"`)
	assert.Contains(t, out, "Stock ▼")
	assert.Contains(t, out, `<td class="qty"><input type="text" name="value" value="5"`)
	assert.Contains(t, out, "&#34;Quoted&#34;")
	assert.Contains(t, out, "showing 2 of 3 rows")
	assert.Contains(t, out, "total Stock: 5")
	assert.Contains(t, out, "Page 1 of 2")
	assert.Contains(t, out, "Next")
	assert.NotContains(t, out, "Previous")
}

func TestGrid_Empty(t *testing.T) {
	out := render(t, Grid(GridParams{Header: []string{"A", "B"}, Pages: 1, Page: 1}))
	assert.Contains(t, out, `colspan="2"`)
	assert.Contains(t, out, "No matching rows")
}

func TestGrid_PagingKeepsSearch(t *testing.T) {
	p := GridParams{
		WorkspaceID: "abc",
		Header:      []string{"Name"},
		Rows:        []GridRow{{ID: 1}},
		Search:      "a b",
		Page:        2,
		Pages:       3,
	}
	out := render(t, Grid(p))

	assert.Contains(t, out, `hx-get="/w/abc?page=1&amp;search=a+b"`)
	assert.Contains(t, out, `hx-get="/w/abc?page=3&amp;search=a+b"`)
	assert.Contains(t, out, `hx-vals="{&#34;search&#34;:&#34;a b&#34;}"`)
	assert.Contains(t, out, "Page 2 of 3")
	assert.Contains(t, out, "<tr><td></td></tr>", "short rows render empty cells")
}

func TestQuantityCell_EscapesAttributes(t *testing.T) {
	out := render(t, QuantityCell("w/1", 7, "Stock", `"><script>alert(1)</script>`))

	assert.True(t, strings.HasPrefix(out, `<td class="qty"><input type="text" name="value" value="&#34;&gt;&lt;script&gt;`))
	assert.NotContains(t, out, "<script>")
	assert.Contains(t, out, `hx-post="/api/workspaces/w%2F1/cells"`)
	assert.Contains(t, out, `hx-vals="{&#34;rowId&#34;:&#34;7&#34;,&#34;column&#34;:&#34;Stock&#34;}"`)
	assert.True(t, strings.HasSuffix(out, "></td>"))
}

func TestWorkspacePage_AnalysisForm(t *testing.T) {
	p := GridParams{WorkspaceID: "abc", FileName: "stock.csv", Pages: 1, Page: 1}

	assert.NotContains(t, render(t, WorkspacePage(p)), "/api/workspaces/abc/analyze")

	p.AnalysisEnabled = true
	out := render(t, WorkspacePage(p))
	assert.Contains(t, out, "<title>stock.csv · Stockpilot</title>")
	assert.Contains(t, out, `hx-post="/api/workspaces/abc/analyze"`)
	assert.Contains(t, out, `href="/api/workspaces/abc/export"`)
}

func TestAnalysisResult(t *testing.T) {
	res := &analysis.Result{
		Explanation: "Two items.",
		Visualization: &analysis.Visualization{
			Type:  analysis.VisualTable,
			Title: "Items",
			Data:  []map[string]any{{"b": "x", "a": float64(1.5)}},
		},
	}
	out := render(t, AnalysisResult(res))
	assert.Contains(t, out, "Two items.")
	assert.Contains(t, out, "<th>a</th><th>b</th>")
	assert.Contains(t, out, "<td>1.5</td><td>x</td>")

	res.Visualization = nil
	out = render(t, AnalysisResult(res))
	assert.NotContains(t, out, "<table>")
}
