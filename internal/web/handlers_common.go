package web

// handlers_common.go contains shared utilities used across handlers.

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/JonMunkholm/stockpilot/internal/session"
	"github.com/JonMunkholm/stockpilot/internal/web/templates"
	"github.com/go-chi/chi/v5"
)

// gridPageSize is the number of rows per page in the HTML grid.
const gridPageSize = 100

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 64 * 1024

// parseIntParam parses a positive integer query parameter with a default value.
func parseIntParam(r *http.Request, name string, defaultVal int) int {
	val := r.URL.Query().Get(name)
	if val == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 1 {
		return defaultVal
	}
	return i
}

// parseSort reads sort and dir query parameters. An unknown column is kept;
// the projection treats it as all-missing.
func parseSort(r *http.Request) core.SortSpec {
	col := strings.TrimSpace(r.URL.Query().Get("sort"))
	if col == "" {
		return core.SortSpec{}
	}
	return core.SortSpec{
		Column:    col,
		Direction: core.ParseSortDirection(r.URL.Query().Get("dir")),
	}
}

// workspace resolves the {id} URL parameter.
func (s *Server) workspace(r *http.Request) (*session.Workspace, error) {
	return s.sessions.Get(chi.URLParam(r, "id"))
}

// table resolves the {id} URL parameter to its loaded table.
func (s *Server) table(r *http.Request) (*session.Workspace, *core.Table, error) {
	ws, err := s.workspace(r)
	if err != nil {
		return nil, nil, err
	}
	tbl, err := ws.Table()
	if err != nil {
		return nil, nil, err
	}
	return ws, tbl, nil
}

// readUpload reads the "file" part of a multipart form as text.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) (name, text string, err error) {
	maxSize := s.cfg.Upload.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			return "", "", fmt.Errorf("%w: limit is %d bytes", core.ErrFileTooLarge, maxSize)
		}
		return "", "", fmt.Errorf("%w: %v", errNoFile, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return "", "", errNoFile
	}
	defer file.Close()

	text, err = core.ReadText(file, maxSize)
	if err != nil {
		return "", "", err
	}
	return header.Filename, text, nil
}

// gridParams projects the workspace's current view for rendering. The row
// cells are copied out under the table's read lock.
func (s *Server) gridParams(ws *session.Workspace, tbl *core.Table, page int) templates.GridParams {
	q := ws.Query()
	qty, _ := tbl.QuantityColumn()
	header := tbl.Header()

	p := templates.GridParams{
		WorkspaceID:     ws.ID(),
		FileName:        tbl.Name(),
		Header:          header,
		QuantityColumn:  qty,
		Search:          q.Search,
		Sort:            q.Sort,
		Total:           tbl.Len(),
		AnalysisEnabled: s.analysisEnabled(),
	}

	tbl.WithView(q, func(rows []*core.Row) {
		p.Visible = len(rows)
		var pageRows []*core.Row
		pageRows, p.Pages = core.Paginate(rows, page, gridPageSize)
		p.Page = min(max(page, 1), p.Pages)

		p.Rows = make([]templates.GridRow, len(pageRows))
		for i, row := range pageRows {
			cells := make([]string, len(header))
			for j, col := range header {
				cells[j] = row.Values.Get(col).String()
			}
			p.Rows[i] = templates.GridRow{ID: row.ID, Cells: cells}
		}
	})

	p.QuantityTotal = tbl.Stats().QuantityTotal
	return p
}
