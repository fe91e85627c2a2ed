package core

import (
	"cmp"
	"slices"
	"strings"
)

// SortDirection orders a projection by its sort column.
type SortDirection string

const (
	Ascending  SortDirection = "asc"
	Descending SortDirection = "desc"
)

// ParseSortDirection accepts "asc"/"desc" in any case; anything else is ascending.
func ParseSortDirection(s string) SortDirection {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

// SortSpec names the sort column and direction. The zero value means no sort.
type SortSpec struct {
	Column    string        `json:"column"`
	Direction SortDirection `json:"direction"`
}

// IsZero reports whether s means "no sort".
func (s SortSpec) IsZero() bool {
	return s.Column == ""
}

// ToggleSort applies a click on column to current: the same column flips
// direction, a different column starts ascending.
func ToggleSort(current SortSpec, column string) SortSpec {
	if current.Column == column && current.Direction == Ascending {
		return SortSpec{Column: column, Direction: Descending}
	}
	return SortSpec{Column: column, Direction: Ascending}
}

// Query is the view state applied to a table: a search term and a sort.
type Query struct {
	Search string   `json:"search"`
	Sort   SortSpec `json:"sort"`
}

// Project filters then sorts rows without touching the input slice.
// The result holds the same *Row pointers as rows.
func Project(rows []*Row, q Query) []*Row {
	out := filterRows(rows, q.Search)
	if q.Sort.IsZero() {
		return out
	}

	col := q.Sort.Column
	desc := q.Sort.Direction == Descending
	slices.SortStableFunc(out, func(a, b *Row) int {
		c := CompareValues(a.Values.Get(col), b.Values.Get(col))
		if desc {
			return -c
		}
		return c
	})
	return out
}

// filterRows always returns a fresh slice so sorting never reorders rows.
func filterRows(rows []*Row, search string) []*Row {
	needle := strings.ToLower(search)
	out := make([]*Row, 0, len(rows))
	for _, r := range rows {
		if needle == "" || r.matches(needle) {
			out = append(out, r)
		}
	}
	return out
}

// CompareValues orders two cells: numbers numerically, text lexically,
// Missing as "", and numbers ahead of text when a column mixes both.
func CompareValues(a, b Value) int {
	an, aNum := a.Float()
	bn, bNum := b.Float()
	switch {
	case aNum && bNum:
		return cmp.Compare(an, bn)
	case aNum:
		return -1
	case bNum:
		return 1
	default:
		return strings.Compare(a.String(), b.String())
	}
}

// Paginate returns the 1-based page of rows and the total page count.
// Out-of-range pages are clamped.
func Paginate(rows []*Row, page, pageSize int) ([]*Row, int) {
	if pageSize <= 0 {
		return rows, 1
	}
	pages := (len(rows) + pageSize - 1) / pageSize
	if pages == 0 {
		pages = 1
	}
	page = min(max(page, 1), pages)

	start := (page - 1) * pageSize
	end := min(start+pageSize, len(rows))
	return rows[start:end], pages
}
