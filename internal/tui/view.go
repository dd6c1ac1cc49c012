package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	_, _, mapWidth, mapHeight := m.layout()
	contentWidth := max(10, m.width)
	contentHeight := mapHeight

	if m.showSidebar {
		m.l.SetSize(sidebarWidth-2, contentHeight-2)
	}

	header := titleStyle.Render(" annomap ─ terminal annotation editor ")
	header = lipgloss.NewStyle().Width(contentWidth).Padding(0).Render(header)

	var sidebar string
	if m.showSidebar {
		sidebar = lipgloss.NewStyle().Width(sidebarWidth).Render(m.l.View())
	}

	var mapView string
	if m.showAttrs {
		// Render attributes table centered in the map area
		colW := 0
		for _, c := range m.tbl.Columns() {
			colW += c.Width + 3
		}
		if colW == 0 {
			colW = min(60, contentWidth-6)
		}
		maxW := min(mapWidth, max(32, colW))
		m.tbl.SetWidth(maxW - 4)
		m.tbl.SetHeight(min(mapHeight-2, 20))
		attrsBox := boxStyle.Width(maxW).Render(m.tbl.View())
		mapView = lipgloss.Place(mapWidth, mapHeight, lipgloss.Center, lipgloss.Center, attrsBox)
	} else {
		var canvas string
		if m.pasteMode {
			m.ta.SetWidth(mapWidth)
			m.ta.SetHeight(min(mapHeight, 12))
			canvas = m.ta.View()
		} else {
			canvas = m.renderCanvas(mapWidth, mapHeight)
		}
		mapView = lipgloss.NewStyle().Width(mapWidth).Height(mapHeight).Render(canvas)
	}

	// inspect popup sits between header and body
	popup := ""
	if m.inspectPopup != "" && !m.showAttrs {
		maxPopupW := max(20, min(56, contentWidth/2))
		box := boxStyle.Padding(0, 1).MaxWidth(maxPopupW).Render(m.inspectPopup)
		popup = lipgloss.Place(contentWidth, contentHeight, lipgloss.Left, lipgloss.Center, box)
	}

	body := mapView
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, sidebar, " ", mapView)
	}

	help := m.renderHelp()
	status := dimStyle.Render(" " + m.status + " ")
	if _, ok := m.current(); ok {
		status = selStyle.Render(fmt.Sprintf(" #%d ", m.selected+1)) + status
	}
	coords := ""
	if m.hoverHasPos {
		coords = dimStyle.Render(fmt.Sprintf("  x=%.3f y=%.3f  ", m.hoverPos.X, m.hoverPos.Y))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Bottom, status, help)
	spacerW := max(0, contentWidth-lipgloss.Width(left)-lipgloss.Width(coords))
	right := lipgloss.Place(spacerW+lipgloss.Width(coords), 1, lipgloss.Right, lipgloss.Center, coords)
	footer := lipgloss.NewStyle().Width(contentWidth).Render(lipgloss.JoinHorizontal(lipgloss.Bottom, left, right))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, popup, body, footer)
	return appStyle.Width(contentWidth).Height(m.height).Render(ui)
}

func (m Model) renderHelp() string {
	if !m.helpVisible {
		return ""
	}
	keys := []string{
		"↑↓←→ pan",
		"+/- zoom",
		"f fit",
		"n/N select",
		"c new",
		"b/o rect/point",
		"r/R rotate",
		"[ ] { } size",
		"x delete",
		"w save",
		"p paste",
		"a attrs",
		"i inspect",
		"Tab files",
		"h help",
		"q quit",
	}
	return dimStyle.Render("  " + strings.Join(keys, "  "))
}
