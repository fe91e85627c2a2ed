package application

import (
	"fmt"

	"github.com/JonMunkholm/stockpilot/internal/core"
	tea "github.com/charmbracelet/bubbletea"
)

/* ----------------------------------------
	MENU TREE
---------------------------------------- */

type MenuItem struct {
	Label   string
	Submenu *Menu
	Action  func(m *Model) tea.Cmd
}

type Menu struct {
	Title  string
	Items  []MenuItem
	Parent *Menu
}

/* ----------------------------------------
	MENU TREE DEFINITION
---------------------------------------- */

func linkParents(menu *Menu, parent *Menu) {
	menu.Parent = parent

	for i := range menu.Items {
		item := &menu.Items[i]

		if item.Label == "Back" {
			item.Submenu = parent
			continue
		}

		if item.Submenu != nil {
			linkParents(item.Submenu, menu)
		}
	}
}

func buildMenuTree() *Menu {

	/* Submenus */
	view := &Menu{
		Title: "View",
		Items: []MenuItem{
			{Label: "Clear search", Action: func(m *Model) tea.Cmd {
				m.ws.SetSearch("")
				m.search.SetValue("")
				return m.statusf("Search cleared")
			}},
			{Label: "Clear sort", Action: func(m *Model) tea.Cmd {
				m.ws.SetSort(core.SortSpec{})
				return m.statusf("Sort cleared")
			}},
			{Label: "Back"},
		},
	}

	table := &Menu{
		Title: "Table",
		Items: []MenuItem{
			{Label: "Show stats", Action: func(m *Model) tea.Cmd {
				st := m.tbl.Stats()
				if st.QuantityColumn == "" {
					return m.statusf("%d rows, %d columns, no stock column", st.Rows, st.Columns)
				}
				return m.statusf("%d rows, %d columns, %s total %s, %d edits",
					st.Rows, st.Columns, st.QuantityColumn, core.Number(st.QuantityTotal).String(), st.Edits)
			}},
			{Label: "Undo last edit", Action: func(m *Model) tea.Cmd {
				return m.undoLast()
			}},
			{Label: "Back"},
		},
	}

	/* Root Menu */
	root := &Menu{
		Title: "Menu",
		Items: []MenuItem{
			{Label: "Export " + core.ExportFileName, Action: func(m *Model) tea.Cmd {
				return m.export()
			}},
			{Label: "View ->", Submenu: view},
			{Label: "Table ->", Submenu: table},
			{Label: "Quit", Action: func(m *Model) tea.Cmd {
				return tea.Quit
			}},
		},
	}

	linkParents(root, nil)

	return root
}

/* ----------------------------------------
	MENU NAVIGATION
---------------------------------------- */

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "m":
		m.mode = modeNormal
	case "up", "k":
		if m.menuCursor > 0 {
			m.menuCursor--
		}
	case "down", "j":
		if m.menuCursor < len(m.menu.Items)-1 {
			m.menuCursor++
		}
	case "enter":
		item := m.menu.Items[m.menuCursor]
		switch {
		case item.Label == "Back" && item.Submenu == nil:
			m.mode = modeNormal
		case item.Submenu != nil:
			m.menu = item.Submenu
			m.menuCursor = 0
		case item.Action != nil:
			m.mode = modeNormal
			cmd := item.Action(&m)
			m.refresh()
			return m, cmd
		}
	}
	return m, nil
}

func (m *Model) statusf(format string, args ...any) tea.Cmd {
	m.status = fmt.Sprintf(format, args...)
	m.err = nil
	return nil
}
