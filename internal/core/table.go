package core

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"
	"time"
)

// ExportFileName is the download name for exported tables.
const ExportFileName = "updated_stock.csv"

var (
	// ErrNoTable is returned when an operation needs a loaded table.
	ErrNoTable = errors.New("no table loaded")

	// ErrColumnNotEditable is returned by callers that gate edits on Editable.
	ErrColumnNotEditable = errors.New("column not editable")
)

// RowID identifies a row for the lifetime of its Table. IDs are assigned
// 1..n in file order and never reused or derived from content.
type RowID int

// Row is one canonical row. Values always has a key for every header name.
type Row struct {
	ID     RowID  `json:"rowId"`
	Values Record `json:"values"`
}

func (r *Row) matches(lowerNeedle string) bool {
	for _, v := range r.Values {
		if v.containsFold(lowerNeedle) {
			return true
		}
	}
	return false
}

func (r *Row) clone() Row {
	return Row{ID: r.ID, Values: maps.Clone(r.Values)}
}

// EditResult describes the outcome of ApplyEdit.
// Applied is false when the row or column does not exist.
type EditResult struct {
	Applied bool   `json:"applied"`
	RowID   RowID  `json:"rowId"`
	Column  string `json:"column"`
	Old     Value  `json:"old"`
	New     Value  `json:"new"`
	EntryID string `json:"entryId,omitempty"`
}

// Stats summarizes a table for dashboards.
type Stats struct {
	Name           string   `json:"name"`
	Rows           int      `json:"rows"`
	Columns        int      `json:"columns"`
	NumericColumns []string `json:"numericColumns"`
	QuantityColumn string   `json:"quantityColumn,omitempty"`
	QuantityTotal  float64  `json:"quantityTotal"`
	Edits          int      `json:"edits"`
}

// Table is the canonical store for one loaded file. The header is fixed at
// construction; only cell values change, and only through ApplyEdit.
//
// A Table is safe for concurrent use. Each edit is a single read-modify-write
// under the write lock; WithView and the snapshot accessors run under the
// read lock.
type Table struct {
	mu sync.RWMutex

	name     string
	header   []string
	rows     []*Row
	byID     map[RowID]*Row
	columns  map[string]struct{}
	quantity string
	hasQty   bool
	loadedAt time.Time
	log      editLog
}

// NewTable builds a Table from a parsed Dataset. The quantity column is
// guessed once here since the header never changes afterwards.
func NewTable(name string, ds *Dataset) *Table {
	t := &Table{
		name:     name,
		header:   slices.Clone(ds.Header),
		rows:     make([]*Row, len(ds.Rows)),
		byID:     make(map[RowID]*Row, len(ds.Rows)),
		columns:  make(map[string]struct{}, len(ds.Header)),
		loadedAt: time.Now(),
	}
	for _, h := range t.header {
		t.columns[h] = struct{}{}
	}
	for i, rec := range ds.Rows {
		r := &Row{ID: RowID(i + 1), Values: rec}
		t.rows[i] = r
		t.byID[r.ID] = r
	}
	t.quantity, t.hasQty = GuessQuantityColumn(t.header)
	return t
}

// Name returns the display name the table was loaded with.
func (t *Table) Name() string { return t.name }

// LoadedAt returns when the table was built.
func (t *Table) LoadedAt() time.Time { return t.loadedAt }

// Header returns a copy of the column names in file order.
func (t *Table) Header() []string {
	return slices.Clone(t.header)
}

// Len returns the number of canonical rows.
func (t *Table) Len() int { return len(t.rows) }

// HasColumn reports whether name is a header column.
func (t *Table) HasColumn(name string) bool {
	_, ok := t.columns[name]
	return ok
}

// QuantityColumn returns the guessed quantity column.
func (t *Table) QuantityColumn() (string, bool) {
	return t.quantity, t.hasQty
}

// Editable reports whether column is the quantity column, the only column
// interactive surfaces let users edit.
func (t *Table) Editable(column string) bool {
	return t.hasQty && column == t.quantity
}

// Rows returns a snapshot of the canonical rows in canonical order.
func (t *Table) Rows() []Row {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Row, len(t.rows))
	for i, r := range t.rows {
		out[i] = r.clone()
	}
	return out
}

// Row returns a snapshot of the row with the given id.
func (t *Table) Row(id RowID) (Row, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	r, ok := t.byID[id]
	if !ok {
		return Row{}, false
	}
	return r.clone(), true
}

// ApplyEdit coerces raw and writes it to the cell at (id, column). Exactly
// one row changes. An unknown id or column is a no-op with Applied false;
// stale views can produce either.
func (t *Table) ApplyEdit(ctx context.Context, id RowID, column, raw string) EditResult {
	return t.apply(ctx, id, column, Coerce(raw), "")
}

// Revert re-applies the old value of a logged edit as a new edit.
func (t *Table) Revert(ctx context.Context, entryID string) (EditResult, error) {
	t.mu.RLock()
	entry, ok := t.log.find(entryID)
	t.mu.RUnlock()
	if !ok {
		return EditResult{}, ErrEditNotFound
	}
	return t.apply(ctx, entry.RowID, entry.Column, entry.Old, entry.ID), nil
}

// Undo reverts the newest edit that is neither a revert nor already
// reverted, so repeated calls step back through the history. It reports
// false when there is nothing left to undo.
func (t *Table) Undo(ctx context.Context) (EditResult, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.log.lastUndoable()
	if !ok {
		return EditResult{}, false
	}
	return t.applyLocked(ctx, entry.RowID, entry.Column, entry.Old, entry.ID), true
}

func (t *Table) apply(ctx context.Context, id RowID, column string, v Value, revertOf string) EditResult {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.applyLocked(ctx, id, column, v, revertOf)
}

func (t *Table) applyLocked(ctx context.Context, id RowID, column string, v Value, revertOf string) EditResult {
	res := EditResult{RowID: id, Column: column, New: v}
	if !t.HasColumn(column) {
		return res
	}

	r, ok := t.byID[id]
	if !ok {
		return res
	}
	res.Old = r.Values.Get(column)
	r.Values[column] = v
	res.Applied = true
	res.EntryID = t.log.append(ctx, res, revertOf).ID
	return res
}

// History returns up to limit edit log entries, newest first.
func (t *Table) History(limit int) []EditEntry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.log.newestFirst(limit)
}

// ExportText serializes every canonical row in canonical order, regardless
// of any view state held by callers.
func (t *Table) ExportText() string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	recs := make([]Record, len(t.rows))
	for i, r := range t.rows {
		recs[i] = r.Values
	}
	return Serialize(t.header, recs)
}

// WithView projects the table through q and passes the result to fn while
// holding the read lock. fn must not retain the rows or call ApplyEdit.
func (t *Table) WithView(q Query, fn func(rows []*Row)) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	fn(Project(t.rows, q))
}

// View returns snapshots of the projected rows.
func (t *Table) View(q Query) []Row {
	var out []Row
	t.WithView(q, func(rows []*Row) {
		out = make([]Row, len(rows))
		for i, r := range rows {
			out[i] = r.clone()
		}
	})
	return out
}

// Stats computes summary figures over the canonical rows.
func (t *Table) Stats() Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	s := Stats{
		Name:           t.name,
		Rows:           len(t.rows),
		Columns:        len(t.header),
		NumericColumns: []string{},
		QuantityColumn: t.quantity,
		Edits:          len(t.log.entries),
	}

	// A column is numeric when every non-empty cell is a number.
	for _, col := range t.header {
		numeric, seen := true, false
		for _, r := range t.rows {
			v := r.Values.Get(col)
			if v.IsNumber() {
				seen = true
				continue
			}
			if v.String() != "" {
				numeric = false
				break
			}
		}
		if numeric && seen {
			s.NumericColumns = append(s.NumericColumns, col)
		}
	}

	if t.hasQty {
		for _, r := range t.rows {
			if f, ok := r.Values.Get(t.quantity).Float(); ok {
				s.QuantityTotal += f
			}
		}
	}
	return s
}
