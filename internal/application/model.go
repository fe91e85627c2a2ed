// Package application is the terminal interactive grid over a workspace.
package application

import (
	"context"
	"fmt"
	"os"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/JonMunkholm/stockpilot/internal/session"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
)

type mode int

const (
	modeNormal mode = iota
	modeSearch
	modeEdit
	modeMenu
)

// exportedMsg reports the result of writing the export file.
type exportedMsg struct {
	path string
	err  error
}

// Model is the bubbletea model for the grid. The workspace owns the table
// and view state; the model only keeps the cursor and the visible rows.
type Model struct {
	ws         *session.Workspace
	tbl        *core.Table
	exportPath string
	ctx        context.Context

	width  int
	height int

	mode   mode
	search textinput.Model
	editor textinput.Model

	header  []string
	qty     string
	hasQty  bool
	rows    []core.Row
	cx, cy  int
	scrollY int

	menu       *Menu
	menuCursor int

	status string
	err    error
}

// New creates a grid over ws. Exports are written to exportPath.
func New(ws *session.Workspace, exportPath string) (Model, error) {
	tbl, err := ws.Table()
	if err != nil {
		return Model{}, err
	}

	search := textinput.New()
	search.Prompt = "/"
	search.Placeholder = "search all columns"

	editor := textinput.New()
	editor.Prompt = "= "
	editor.CharLimit = 64

	m := Model{
		ws:         ws,
		tbl:        tbl,
		exportPath: exportPath,
		ctx:        core.ContextWithClient(context.Background(), core.Client{UserAgent: "stockctl browse"}),
		height:     24,
		width:      80,
		search:     search,
		editor:     editor,
		header:     tbl.Header(),
		menu:       buildMenuTree(),
	}
	m.qty, m.hasQty = tbl.QuantityColumn()
	m.refresh()
	return m, nil
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case exportedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = "Exported to " + msg.path
		return m, nil
	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeEdit:
			return m.updateEdit(msg)
		case modeMenu:
			return m.updateMenu(msg)
		}
		return m.updateGrid(msg)
	}
	return m, nil
}

/* ----------------------------------------
	GRID (normal mode)
---------------------------------------- */

func (m Model) updateGrid(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "up", "k":
		if m.cy > 0 {
			m.cy--
		}
	case "down", "j":
		if m.cy < len(m.rows)-1 {
			m.cy++
		}
	case "left", "h":
		if m.cx > 0 {
			m.cx--
		}
	case "right", "l":
		if m.cx < len(m.header)-1 {
			m.cx++
		}
	case "home", "g":
		m.cy = 0
	case "end", "G":
		m.cy = max(len(m.rows)-1, 0)
	case "/":
		m.mode = modeSearch
		m.search.SetValue(m.ws.Query().Search)
		m.search.CursorEnd()
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		if m.ws.Query().Search != "" {
			m.ws.SetSearch("")
			m.search.SetValue("")
			m.refresh()
		}
	case "s":
		if len(m.header) > 0 {
			q := m.ws.ToggleSort(m.header[m.cx])
			m.status = fmt.Sprintf("Sorted by %s (%s)", q.Sort.Column, q.Sort.Direction)
			m.refresh()
		}
	case "enter", "e":
		return m.startEdit()
	case "u":
		cmd := m.undoLast()
		m.refresh()
		return m, cmd
	case "ctrl+s":
		return m, m.export()
	case "m":
		m.mode = modeMenu
		m.menu = buildMenuTree()
		m.menuCursor = 0
	}
	return m, nil
}

/* ----------------------------------------
	SEARCH
---------------------------------------- */

// updateSearch re-projects the grid on every keystroke.
func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeNormal
		m.search.Blur()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.search.Blur()
		m.search.SetValue("")
		m.ws.SetSearch("")
		m.refresh()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.ws.SetSearch(m.search.Value())
	m.refresh()
	return m, cmd
}

/* ----------------------------------------
	EDIT
---------------------------------------- */

// startEdit opens the editor on the quantity cell of the selected row.
func (m Model) startEdit() (tea.Model, tea.Cmd) {
	if !m.hasQty {
		m.err = core.ErrColumnNotEditable
		return m, nil
	}
	if len(m.rows) == 0 {
		return m, nil
	}
	m.mode = modeEdit
	m.editor.SetValue(m.rows[m.cy].Values.Get(m.qty).String())
	m.editor.CursorEnd()
	cmd := m.editor.Focus()
	return m, cmd
}

func (m Model) updateEdit(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeNormal
		m.editor.Blur()
		row := m.rows[m.cy]
		res := m.tbl.ApplyEdit(m.ctx, row.ID, m.qty, m.editor.Value())
		if res.Applied {
			m.status = fmt.Sprintf("Row %d: %s %s → %s", res.RowID, m.qty, display(res.Old), display(res.New))
			m.err = nil
		}
		m.refresh()
		return m, nil
	case "esc":
		m.mode = modeNormal
		m.editor.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.editor, cmd = m.editor.Update(msg)
	return m, cmd
}

// undoLast steps back one edit. Reverts are never undone themselves, so
// pressing u repeatedly walks back to the loaded values.
func (m *Model) undoLast() tea.Cmd {
	res, ok := m.tbl.Undo(m.ctx)
	if !ok {
		return m.statusf("Nothing to undo")
	}
	return m.statusf("Reverted row %d %s to %s", res.RowID, res.Column, display(res.New))
}

/* ----------------------------------------
	EXPORT
---------------------------------------- */

// export writes every canonical row to exportPath, ignoring the view.
func (m Model) export() tea.Cmd {
	text := m.tbl.ExportText()
	path := m.exportPath
	return func() tea.Msg {
		return exportedMsg{path: path, err: os.WriteFile(path, []byte(text), 0o644)}
	}
}

// refresh re-projects the workspace view and clamps the cursor.
func (m *Model) refresh() {
	rows, _, err := m.ws.View()
	if err != nil {
		m.err = err
		return
	}
	m.rows = rows
	m.cy = min(m.cy, max(len(m.rows)-1, 0))
	m.cx = min(m.cx, max(len(m.header)-1, 0))
}

func display(v core.Value) string {
	if s := v.String(); s != "" {
		return s
	}
	return `""`
}
