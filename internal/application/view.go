package application

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/stockpilot/internal/core"
	"github.com/charmbracelet/lipgloss"
)

const maxColWidth = 24

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(" " + m.tbl.Name()))
	q := m.ws.Query()
	b.WriteString(dimStyle.Render(fmt.Sprintf("  %d of %d rows", len(m.rows), m.tbl.Len())))
	if q.Search != "" {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  search %q", q.Search)))
	}
	b.WriteString("\n")

	if m.mode == modeMenu {
		b.WriteString(m.viewMenu())
		return b.String()
	}

	b.WriteString(m.viewGrid())

	switch m.mode {
	case modeSearch:
		b.WriteString(m.search.View() + "\n")
	case modeEdit:
		b.WriteString(statusStyle.Render(" "+m.qty) + " " + m.editor.View() + "\n")
	default:
		if m.err != nil {
			b.WriteString(errorStyle.Render(" error: "+m.err.Error()) + "\n")
		} else if m.status != "" {
			b.WriteString(statusStyle.Render(" "+m.status) + "\n")
		}
	}

	help := " ↑↓←→ move  / search  s sort  enter edit stock  u undo  ctrl+s export  m menu  q quit"
	b.WriteString(dimStyle.Render(help))
	return b.String()
}

func (m *Model) viewGrid() string {
	if len(m.header) == 0 {
		return dimStyle.Render(" (empty table)") + "\n"
	}

	widths := m.columnWidths()
	sort := m.ws.Query().Sort

	var b strings.Builder
	for ci, col := range m.header {
		name := col
		if sort.Column == col {
			if sort.Direction == core.Descending {
				name += " ▼"
			} else {
				name += " ▲"
			}
		}
		style := headerStyle
		if m.hasQty && col == m.qty {
			style = qtyHeadStyle
		}
		b.WriteString(style.Render(" " + pad(name, widths[ci]) + " "))
		if ci < len(m.header)-1 {
			b.WriteString(dimStyle.Render("│"))
		}
	}
	b.WriteString("\n")

	// title, header, status and help lines
	dataHeight := max(m.height-4, 1)
	if m.cy < m.scrollY {
		m.scrollY = m.cy
	}
	if m.cy >= m.scrollY+dataHeight {
		m.scrollY = m.cy - dataHeight + 1
	}

	end := min(m.scrollY+dataHeight, len(m.rows))
	for ri := m.scrollY; ri < end; ri++ {
		row := m.rows[ri]
		for ci, col := range m.header {
			cell := " " + pad(row.Values.Get(col).String(), widths[ci]) + " "
			if ri == m.cy && ci == m.cx {
				b.WriteString(cursorStyle.Render(cell))
			} else {
				b.WriteString(cell)
			}
			if ci < len(m.header)-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString("\n")
	}
	if len(m.rows) == 0 {
		b.WriteString(dimStyle.Render(" no matching rows") + "\n")
	}
	return b.String()
}

func (m Model) viewMenu() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.menu.Title) + "\n")
	for i, item := range m.menu.Items {
		if i == m.menuCursor {
			b.WriteString(selectedStyle.Render("> " + item.Label))
		} else {
			b.WriteString("  " + item.Label)
		}
		b.WriteString("\n")
	}
	return menuStyle.Render(strings.TrimSuffix(b.String(), "\n")) + "\n" +
		dimStyle.Render(" ↑↓ move  enter select  esc close")
}

// columnWidths sizes each column to its header and the first 100 visible
// rows, capped at maxColWidth.
func (m Model) columnWidths() []int {
	widths := make([]int, len(m.header))
	for i, col := range m.header {
		widths[i] = max(lipgloss.Width(col)+2, 4)
	}
	for _, row := range m.rows[:min(len(m.rows), 100)] {
		for i, col := range m.header {
			widths[i] = max(widths[i], lipgloss.Width(row.Values.Get(col).String()))
		}
	}
	for i := range widths {
		widths[i] = min(widths[i], maxColWidth)
	}
	return widths
}

// pad truncates or right-pads s to exactly w cells.
func pad(s string, w int) string {
	if lipgloss.Width(s) > w {
		r := []rune(s)
		for len(r) > 0 && lipgloss.Width(string(r)) > w-1 {
			r = r[:len(r)-1]
		}
		s = string(r) + "…"
	}
	return s + strings.Repeat(" ", max(w-lipgloss.Width(s), 0))
}
