package session

// manager.go keeps the set of live workspaces.
//
// Workspaces live only in memory. A background janitor evicts workspaces
// that have not been touched for the configured TTL, and Create evicts the
// least recently used workspace when the cap is reached.

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrWorkspaceNotFound is returned for unknown or evicted workspace ids.
var ErrWorkspaceNotFound = errors.New("workspace not found")

const (
	DefaultTTL           = 2 * time.Hour
	DefaultMaxWorkspaces = 100
)

// Options configures a Manager. Zero values fall back to the defaults.
type Options struct {
	TTL           time.Duration
	MaxWorkspaces int
}

// Info summarizes a workspace for listings.
type Info struct {
	ID        string    `json:"id"`
	FileName  string    `json:"fileName"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"createdAt"`
	LastUsed  time.Time `json:"lastUsed"`
}

type entry struct {
	ws       *Workspace
	lastUsed time.Time
}

// Manager is the registry of live workspaces. It is safe for concurrent use.
type Manager struct {
	ttl time.Duration
	max int
	now func() time.Time

	mu      sync.Mutex
	entries map[string]*entry
}

// NewManager creates an empty Manager.
func NewManager(opts Options) *Manager {
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.MaxWorkspaces <= 0 {
		opts.MaxWorkspaces = DefaultMaxWorkspaces
	}
	return &Manager{
		ttl:     opts.TTL,
		max:     opts.MaxWorkspaces,
		now:     time.Now,
		entries: make(map[string]*entry),
	}
}

// Create parses text into a new workspace. Nothing is registered when the
// text does not parse.
func (m *Manager) Create(name, text string) (*Workspace, error) {
	ws := newWorkspace(uuid.NewString(), m.now())
	if _, err := ws.Load(name, text); err != nil {
		return nil, err
	}

	m.mu.Lock()
	for len(m.entries) >= m.max {
		m.evictOldestLocked()
	}
	m.entries[ws.id] = &entry{ws: ws, lastUsed: ws.createdAt}
	count := len(m.entries)
	m.mu.Unlock()

	slog.Info("workspace created", "workspace_id", ws.id, "file", name, "workspaces", count)
	return ws, nil
}

// Get returns the workspace and marks it as used.
func (m *Manager) Get(id string) (*Workspace, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[id]
	if !ok {
		return nil, ErrWorkspaceNotFound
	}
	e.lastUsed = m.now()
	return e.ws, nil
}

// Delete removes a workspace.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.entries[id]; !ok {
		return ErrWorkspaceNotFound
	}
	delete(m.entries, id)
	return nil
}

// Len returns the number of live workspaces.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// List returns all workspaces, most recently used first.
func (m *Manager) List() []Info {
	m.mu.Lock()
	out := make([]Info, 0, len(m.entries))
	for _, e := range m.entries {
		info := Info{
			ID:        e.ws.id,
			FileName:  e.ws.FileName(),
			CreatedAt: e.ws.createdAt,
			LastUsed:  e.lastUsed,
		}
		if tbl, err := e.ws.Table(); err == nil {
			info.Rows = tbl.Len()
		}
		out = append(out, info)
	}
	m.mu.Unlock()

	slices.SortFunc(out, func(a, b Info) int {
		if c := b.LastUsed.Compare(a.LastUsed); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
	return out
}

// Sweep evicts workspaces idle for longer than the TTL and returns how many
// were removed.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.ttl)

	m.mu.Lock()
	defer m.mu.Unlock()

	evicted := 0
	for id, e := range m.entries {
		if e.lastUsed.Before(cutoff) {
			delete(m.entries, id)
			evicted++
			slog.Info("workspace expired", "workspace_id", id, "idle", m.now().Sub(e.lastUsed).Round(time.Second))
		}
	}
	return evicted
}

// StartJanitor sweeps every interval until ctx is cancelled. It blocks, so
// run it in its own goroutine.
func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	slog.Info("workspace janitor started", "interval", interval, "ttl", m.ttl, "max_workspaces", m.max)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("workspace janitor stopped")
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("workspace sweep completed", "evicted", n, "remaining", m.Len())
			}
		}
	}
}

func (m *Manager) evictOldestLocked() {
	var oldestID string
	var oldest time.Time
	for id, e := range m.entries {
		if oldestID == "" || e.lastUsed.Before(oldest) {
			oldestID, oldest = id, e.lastUsed
		}
	}
	if oldestID != "" {
		delete(m.entries, oldestID)
		slog.Info("workspace evicted", "workspace_id", oldestID, "reason", "capacity")
	}
}
