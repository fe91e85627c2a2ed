package core

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// MaxEditLogEntries bounds the per-table edit log; the oldest entries are
// dropped first.
const MaxEditLogEntries = 1000

// ErrEditNotFound is returned by Revert for an unknown entry id.
var ErrEditNotFound = errors.New("edit not found")

// EditEntry records one applied cell edit.
type EditEntry struct {
	ID        string    `json:"id"`
	RowID     RowID     `json:"rowId"`
	Column    string    `json:"column"`
	Old       Value     `json:"old"`
	New       Value     `json:"new"`
	RevertOf  string    `json:"revertOf,omitempty"`
	IPAddress string    `json:"ipAddress,omitempty"`
	UserAgent string    `json:"userAgent,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// editLog is guarded by the owning Table's mutex.
type editLog struct {
	entries []EditEntry
	// reverted holds ids of entries whose effect a later revert undid.
	reverted map[string]bool
}

func (l *editLog) append(ctx context.Context, res EditResult, revertOf string) EditEntry {
	client := ClientFromContext(ctx)
	e := EditEntry{
		ID:        uuid.NewString(),
		RowID:     res.RowID,
		Column:    res.Column,
		Old:       res.Old,
		New:       res.New,
		RevertOf:  revertOf,
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		CreatedAt: time.Now(),
	}
	l.entries = append(l.entries, e)
	if revertOf != "" {
		l.markReverted(revertOf)
	}
	if over := len(l.entries) - MaxEditLogEntries; over > 0 {
		for _, dropped := range l.entries[:over] {
			delete(l.reverted, dropped.ID)
		}
		l.entries = append(l.entries[:0:0], l.entries[over:]...)
	}
	return e
}

// markReverted records that id was undone. Reverting a revert restores the
// edit it undid, so that edit becomes undoable again.
func (l *editLog) markReverted(id string) {
	if l.reverted == nil {
		l.reverted = make(map[string]bool)
	}
	l.reverted[id] = true
	if target, ok := l.find(id); ok && target.RevertOf != "" {
		delete(l.reverted, target.RevertOf)
	}
}

// lastUndoable returns the newest entry that is neither a revert nor
// already reverted.
func (l *editLog) lastUndoable() (EditEntry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		e := l.entries[i]
		if e.RevertOf == "" && !l.reverted[e.ID] {
			return e, true
		}
	}
	return EditEntry{}, false
}

func (l *editLog) find(id string) (EditEntry, bool) {
	for i := len(l.entries) - 1; i >= 0; i-- {
		if l.entries[i].ID == id {
			return l.entries[i], true
		}
	}
	return EditEntry{}, false
}

// newestFirst returns up to limit entries, most recent first. limit <= 0
// returns all of them.
func (l *editLog) newestFirst(limit int) []EditEntry {
	n := len(l.entries)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]EditEntry, 0, n)
	for i := len(l.entries) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, l.entries[i])
	}
	return out
}
