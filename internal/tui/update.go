package tui

import (
	"fmt"
	"strings"

	list "github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"annomap/internal/annotation"
	"annomap/internal/geom"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.showSidebar {
			_, _, _, h := m.layout()
			m.l.SetSize(sidebarWidth-2, h-2)
		}
	case tea.KeyMsg:
		// If list is visible and filtering, send keys to list and ignore global commands
		if m.showSidebar && m.l.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.l, cmd = m.l.Update(msg)
			return m, cmd
		}
		if m.pasteMode {
			switch msg.String() {
			case "esc":
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			case "enter":
				m.pasteFeatures(m.ta.Value())
				m.pasteMode = false
				m.ta.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.ta, cmd = m.ta.Update(msg)
			return m, cmd
		}
		if m.inspectPopup != "" && msg.String() == "esc" {
			m.inspectPopup = ""
			return m, nil
		}
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "1":
			m.showPoints = !m.showPoints
			m.status = fmt.Sprintf("points: %v", m.showPoints)
		case "2":
			m.showRects = !m.showRects
			m.status = fmt.Sprintf("rectangles: %v", m.showRects)
		case "l":
			all := m.showPoints && m.showRects
			m.showPoints = !all
			m.showRects = !all
			m.status = fmt.Sprintf("layers: pts=%v rect=%v", m.showPoints, m.showRects)
		case "+", "=":
			if m.zoom < 64 {
				m.zoom *= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "-", "_":
			if m.zoom > 0.05 {
				m.zoom /= 1.2
				m.status = fmt.Sprintf("zoom: %.2fx", m.zoom)
			}
		case "f":
			m.fit()
			m.status = "fit to annotations"
		case "tab":
			m.showSidebar = !m.showSidebar
			if m.showSidebar {
				m.refreshDir()
				_, _, _, h := m.layout()
				m.l.SetSize(sidebarWidth-2, h-2)
			}
		case "p":
			m.pasteMode = true
			m.ta.SetValue("")
			m.status = "paste mode"
			m.ta.Focus()
		case "h":
			m.helpVisible = !m.helpVisible
		case "a":
			m.showAttrs = !m.showAttrs
			if m.showAttrs {
				m.refreshAttrs()
			}
		case "i":
			if m.inspectPopup != "" {
				m.inspectPopup = ""
			} else {
				m.inspect()
			}
		case "n":
			m.selectStep(1)
		case "N":
			m.selectStep(-1)
		case "r":
			m.rotateSelected(rotateStep)
		case "R":
			m.rotateSelected(-rotateStep)
		case "]":
			m.scaleSelected(0, scaleStep)
		case "[":
			m.scaleSelected(0, 1/scaleStep)
		case "}":
			m.scaleSelected(1, scaleStep)
		case "{":
			m.scaleSelected(1, 1/scaleStep)
		case "c":
			m.newPlaceholder()
		case "b":
			m.materialize(annotation.RectangleKind)
		case "o":
			m.materialize(annotation.PointKind)
		case "x", "delete":
			m.deleteSelected()
		case "w":
			m.save()
		case "enter":
			if m.showSidebar {
				if it, ok := m.l.SelectedItem().(fileItem); ok {
					m.loadPath(it.path)
				}
			}
		case "up":
			m.offsetY -= 1
		case "down":
			m.offsetY += 1
		case "left":
			m.offsetX -= 2
		case "right":
			m.offsetX += 2
		}
		if m.showAttrs {
			m.refreshAttrs()
		}
	case tea.MouseMsg:
		ox, oy, w, h := m.layout()
		if m.showSidebar {
			m.l.SetSize(sidebarWidth-2, h-2)
		}
		cx, cy := msg.X, msg.Y
		if cx >= ox && cx < ox+w && cy >= oy && cy < oy+h {
			m.hovering = true
			m.hoverCellX = cx - ox
			m.hoverCellY = cy - oy
			m.hoverPos, m.hoverHasPos = m.cellToScene(m.hoverCellX, m.hoverCellY, w, h)
			mx, my, idx, ok := m.nearest(m.hoverCellX*2, m.hoverCellY*4, w, h)
			if ok {
				m.hoverMicX, m.hoverMicY = mx, my
			} else {
				m.hovering = false
			}
			if ok && msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
				m.selected = idx
				m.status = m.describeSelection()
			}
		} else {
			m.hovering = false
			m.hoverHasPos = false
		}
	}
	// Pass messages to list when visible
	if m.showSidebar {
		var cmd tea.Cmd
		m.l, cmd = m.l.Update(msg)
		return m, cmd
	}
	return m, nil
}

// pasteFeatures adds the features in text, GeoJSON or WKT.
func (m *Model) pasteFeatures(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		m.status = "paste: empty"
		return
	}
	var (
		fs  []geom.Feature
		err error
	)
	if strings.HasPrefix(text, "{") {
		fs, err = geom.ParseFeatures([]byte(text))
	} else {
		fs, err = geom.ParseWKTFeatures(text)
	}
	if err != nil {
		m.status = "paste error: " + err.Error()
		return
	}
	m.addFeatures(fs, "paste")
}
