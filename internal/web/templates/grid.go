package templates

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/a-h/templ"
)

// GridRow is one rendered row; Cells follow the header order.
type GridRow struct {
	ID    core.RowID
	Cells []string
}

// GridParams is everything the grid partial needs.
type GridParams struct {
	WorkspaceID     string
	FileName        string
	Header          []string
	QuantityColumn  string
	Rows            []GridRow
	Search          string
	Sort            core.SortSpec
	Page            int
	Pages           int
	Visible         int
	Total           int
	QuantityTotal   float64
	AnalysisEnabled bool
}

// WorkspacePage is the full grid page: toolbar, grid partial and the
// analysis form.
func WorkspacePage(p GridParams) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := &htmlWriter{w: w}
		h.raw(`<div class="toolbar">`)
		h.raw(`<input type="search" name="search" placeholder="Search all columns" value="`)
		h.text(p.Search)
		h.raw(`" hx-get="`)
		h.text(workspacePath("/w/", p.WorkspaceID))
		h.raw(`" hx-trigger="input changed delay:300ms, search" hx-target="#grid" hx-swap="outerHTML">`)
		h.raw(`<a href="`)
		h.text(workspacePath("/api/workspaces/", p.WorkspaceID, "export"))
		h.raw(`" download>Export `)
		h.text(core.ExportFileName)
		h.raw(`</a>`)
		h.raw(`<form hx-post="`)
		h.text(workspacePath("/api/workspaces/", p.WorkspaceID, "file"))
		h.raw(`" hx-encoding="multipart/form-data" hx-target="#grid" hx-swap="outerHTML">`)
		h.raw(`<input type="file" name="file" accept=".csv,text/csv" required> <button type="submit">Replace file</button></form>`)
		h.raw(`</div>`)
		if h.err != nil {
			return h.err
		}

		if err := Grid(p).Render(ctx, w); err != nil {
			return err
		}

		if p.AnalysisEnabled {
			h.raw(`<section><h2>Ask about this inventory</h2>`)
			h.raw(`<form hx-post="`)
			h.text(workspacePath("/api/workspaces/", p.WorkspaceID, "analyze"))
			h.raw(`" hx-target="#analysis" hx-indicator="#analysis-busy">`)
			h.raw(`<input type="text" name="query" size="60" placeholder="Which items are running low?" required> `)
			h.raw(`<select name="language"><option value="en">English</option><option value="fr">Français</option>`)
			h.raw(`<option value="es">Español</option><option value="de">Deutsch</option></select> `)
			h.raw(`<button type="submit">Ask</button> <span id="analysis-busy" class="htmx-indicator muted">Thinking…</span></form>`)
			h.raw(`<div id="analysis"></div></section>`)
		}
		return h.err
	})
	return Layout(p.FileName, body)
}

// cell returns the i-th cell, or "" for short rows.
func (r GridRow) cell(i int) string {
	if i < len(r.Cells) {
		return r.Cells[i]
	}
	return ""
}

func gridSummary(p GridParams) string {
	s := fmt.Sprintf("%s · showing %d of %d rows", p.FileName, p.Visible, p.Total)
	if p.QuantityColumn != "" {
		s += fmt.Sprintf(" · total %s: %s", p.QuantityColumn, core.Number(p.QuantityTotal).String())
	}
	return s
}

// searchVals carries the current search into sort requests.
func searchVals(search string) string {
	b, _ := json.Marshal(map[string]string{"search": search})
	return string(b)
}

func cellVals(id core.RowID, column string) string {
	b, _ := json.Marshal(struct {
		RowID  string `json:"rowId"`
		Column string `json:"column"`
	}{strconv.Itoa(int(id)), column})
	return string(b)
}

func pageURL(p GridParams, page int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if p.Search != "" {
		q.Set("search", p.Search)
	}
	return workspacePath("/w/", p.WorkspaceID) + "?" + q.Encode()
}

func sortIndicator(s core.SortSpec, column string) string {
	if s.Column != column {
		return ""
	}
	if s.Direction == core.Descending {
		return " ▼"
	}
	return " ▲"
}
