// Package session holds per-user workspaces: one loaded table plus the
// search and sort state of the view over it.
package session

import (
	"sync"
	"time"

	"github.com/JonMunkholm/stockpilot/internal/core"
)

// Workspace owns one Table and the view state applied to it.
// A workspace may be empty until the first successful Load.
type Workspace struct {
	id        string
	createdAt time.Time

	mu    sync.RWMutex
	table *core.Table
	query core.Query
}

func newWorkspace(id string, now time.Time) *Workspace {
	return &Workspace{id: id, createdAt: now}
}

// ID returns the workspace identifier.
func (w *Workspace) ID() string { return w.id }

// CreatedAt returns when the workspace was created.
func (w *Workspace) CreatedAt() time.Time { return w.createdAt }

// Load parses text and replaces the current table wholesale. The search term
// and sort are reset. On error the previous table is kept.
func (w *Workspace) Load(name, text string) (*core.Table, error) {
	tbl, err := core.Load(name, text)
	if err != nil {
		return nil, err
	}

	w.mu.Lock()
	w.table = tbl
	w.query = core.Query{}
	w.mu.Unlock()
	return tbl, nil
}

// Table returns the loaded table or core.ErrNoTable.
func (w *Workspace) Table() (*core.Table, error) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.table == nil {
		return nil, core.ErrNoTable
	}
	return w.table, nil
}

// FileName returns the loaded file's display name, or "".
func (w *Workspace) FileName() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.table == nil {
		return ""
	}
	return w.table.Name()
}

// Query returns the current view state.
func (w *Workspace) Query() core.Query {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.query
}

// SetSearch replaces the search term.
func (w *Workspace) SetSearch(term string) core.Query {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query.Search = term
	return w.query
}

// ToggleSort applies a header click on column.
func (w *Workspace) ToggleSort(column string) core.Query {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query.Sort = core.ToggleSort(w.query.Sort, column)
	return w.query
}

// SetSort replaces the sort outright.
func (w *Workspace) SetSort(spec core.SortSpec) core.Query {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.query.Sort = spec
	return w.query
}

// View returns the rows visible under the current query and the total row
// count of the table.
func (w *Workspace) View() ([]core.Row, int, error) {
	w.mu.RLock()
	tbl, q := w.table, w.query
	w.mu.RUnlock()

	if tbl == nil {
		return nil, 0, core.ErrNoTable
	}
	return tbl.View(q), tbl.Len(), nil
}
