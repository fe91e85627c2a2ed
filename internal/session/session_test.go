package session

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = "ID,Name,Stock\n1,Milk,10\n2,Bread,5\n"

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func newTestManager(opts Options) (*Manager, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}
	m := NewManager(opts)
	m.now = clock.now
	return m, clock
}

func TestManager_CreateGetDelete(t *testing.T) {
	m, _ := newTestManager(Options{})

	ws, err := m.Create("inventory.csv", sample)
	require.NoError(t, err)
	assert.Equal(t, "inventory.csv", ws.FileName())

	got, err := m.Get(ws.ID())
	require.NoError(t, err)
	assert.Same(t, ws, got)

	require.NoError(t, m.Delete(ws.ID()))
	_, err = m.Get(ws.ID())
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	assert.ErrorIs(t, m.Delete(ws.ID()), ErrWorkspaceNotFound)
}

func TestManager_CreateRejectsMalformed(t *testing.T) {
	m, _ := newTestManager(Options{})

	ws, err := m.Create("bad.csv", "no commas here")
	assert.Nil(t, ws)
	assert.ErrorIs(t, err, core.ErrMalformedInput)
	assert.Zero(t, m.Len())
}

func TestManager_SweepEvictsIdle(t *testing.T) {
	m, clock := newTestManager(Options{TTL: time.Hour})

	stale, err := m.Create("a.csv", sample)
	require.NoError(t, err)
	clock.advance(45 * time.Minute)
	fresh, err := m.Create("b.csv", sample)
	require.NoError(t, err)

	clock.advance(30 * time.Minute)
	assert.Equal(t, 1, m.Sweep())

	_, err = m.Get(stale.ID())
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)
}

func TestManager_GetKeepsWorkspaceAlive(t *testing.T) {
	m, clock := newTestManager(Options{TTL: time.Hour})
	ws, err := m.Create("a.csv", sample)
	require.NoError(t, err)

	for range 3 {
		clock.advance(50 * time.Minute)
		_, err := m.Get(ws.ID())
		require.NoError(t, err)
		assert.Zero(t, m.Sweep())
	}
}

func TestManager_CapacityEvictsLeastRecentlyUsed(t *testing.T) {
	m, clock := newTestManager(Options{MaxWorkspaces: 2})

	first, err := m.Create("1.csv", sample)
	require.NoError(t, err)
	clock.advance(time.Minute)
	second, err := m.Create("2.csv", sample)
	require.NoError(t, err)
	clock.advance(time.Minute)
	_, err = m.Get(first.ID())
	require.NoError(t, err)
	clock.advance(time.Minute)

	_, err = m.Create("3.csv", sample)
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	_, err = m.Get(second.ID())
	assert.ErrorIs(t, err, ErrWorkspaceNotFound)
	_, err = m.Get(first.ID())
	assert.NoError(t, err)
}

func TestManager_List(t *testing.T) {
	m, clock := newTestManager(Options{})
	a, err := m.Create("a.csv", sample)
	require.NoError(t, err)
	clock.advance(time.Second)
	b, err := m.Create("b.csv", sample+"3,Eggs,12\n")
	require.NoError(t, err)

	list := m.List()
	require.Len(t, list, 2)
	assert.Equal(t, b.ID(), list[0].ID)
	assert.Equal(t, 3, list[0].Rows)
	assert.Equal(t, a.ID(), list[1].ID)
	assert.Equal(t, "a.csv", list[1].FileName)
}

func TestManager_StartJanitorStopsOnCancel(t *testing.T) {
	m := NewManager(Options{TTL: time.Nanosecond})
	_, err := m.Create("a.csv", sample)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.StartJanitor(ctx, time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return m.Len() == 0 }, time.Second, 5*time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestWorkspace_LoadReplacesTableAndResetsView(t *testing.T) {
	m, _ := newTestManager(Options{})
	ws, err := m.Create("a.csv", sample)
	require.NoError(t, err)

	ws.SetSearch("milk")
	ws.ToggleSort("Stock")
	old, err := ws.Table()
	require.NoError(t, err)

	tbl, err := ws.Load("b.csv", "SKU,Qty\nX,1")
	require.NoError(t, err)
	assert.NotSame(t, old, tbl)
	assert.Equal(t, "b.csv", ws.FileName())
	assert.Equal(t, core.Query{}, ws.Query())

	_, err = ws.Load("c.csv", "broken")
	assert.ErrorIs(t, err, core.ErrMalformedInput)
	assert.Equal(t, "b.csv", ws.FileName(), "failed load keeps the previous table")
}

func TestWorkspace_ViewFollowsQuery(t *testing.T) {
	m, _ := newTestManager(Options{})
	ws, err := m.Create("a.csv", "Name,Stock\nMilk,10\nBread,5\nMilk powder,7")
	require.NoError(t, err)

	ws.SetSearch("MILK")
	q := ws.ToggleSort("Stock")
	assert.Equal(t, core.SortSpec{Column: "Stock", Direction: core.Ascending}, q.Sort)

	rows, total, err := ws.View()
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, "Milk powder", rows[0].Values.Get("Name").String())
	assert.Equal(t, "Milk", rows[1].Values.Get("Name").String())

	q = ws.ToggleSort("Stock")
	assert.Equal(t, core.Descending, q.Sort.Direction)
}

func TestWorkspace_EmptyHasNoTable(t *testing.T) {
	ws := newWorkspace("x", time.Now())
	_, err := ws.Table()
	assert.ErrorIs(t, err, core.ErrNoTable)
	_, _, err = ws.View()
	assert.ErrorIs(t, err, core.ErrNoTable)
	assert.Equal(t, "", ws.FileName())
}
