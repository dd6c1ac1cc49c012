package tui

import (
	"os"

	list "github.com/charmbracelet/bubbles/list"
	table "github.com/charmbracelet/bubbles/table"
	textarea "github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"

	"annomap/internal/annotation"
	"annomap/internal/geom"
)

const (
	sidebarWidth = 28
	headerHeight = 1
	footerHeight = 2

	rotateStep = 15.0
	scaleStep  = 1.25
)

type Model struct {
	width  int
	height int

	showSidebar bool
	helpVisible bool

	zoom    float64
	offsetX int
	offsetY int

	status string

	// File explorer
	cwd     string
	l       list.Model
	items   []list.Item
	selPath string

	// Data
	layer    *annotation.Layer
	bbox     geom.BBox
	selected int // index into layer.Geometries(), -1 for none
	created  int // placeholders created this session, picks their colour

	// paste mode
	pasteMode bool
	ta        textarea.Model

	// layer visibility
	showPoints bool
	showRects  bool

	// inspect popup
	inspectPopup string

	// hover state
	hovering    bool
	hoverCellX  int
	hoverCellY  int
	hoverMicX   int
	hoverMicY   int
	hoverHasPos bool
	hoverPos    geom.Point

	// attributes table
	showAttrs bool
	tbl       table.Model
}

func New() Model {
	m := Model{
		showSidebar: false,
		helpVisible: true,
		zoom:        1.0,
		status:      "annomap ready",
		layer:       annotation.NewLayer(nil),
		bbox:        geom.EmptyBBox(),
		selected:    -1,
		showPoints:  true,
		showRects:   true,
	}
	m.cwd, _ = os.Getwd()
	// list setup
	d := list.NewDefaultDelegate()
	d.ShowDescription = false
	m.l = list.New(nil, d, 0, 0)
	m.l.Title = "Files"
	m.l.SetShowHelp(false)
	m.l.SetShowStatusBar(false)
	m.l.SetFilteringEnabled(true)
	// textarea setup
	m.ta = textarea.New()
	m.ta.Placeholder = "Paste GeoJSON or WKT (POINT, MULTIPOINT, rectangular POLYGON). Enter adds; Esc cancels."
	m.ta.CharLimit = 0
	m.ta.SetWidth(50)
	m.ta.SetHeight(6)
	// attributes table setup (columns will be inferred per dataset)
	m.tbl = table.New(table.WithFocused(true))
	m.tbl.SetHeight(12)
	m.refreshDir()
	return m
}

// NewWithPath preloads a file's annotations at launch.
func NewWithPath(path string) Model {
	m := New()
	m.loadPath(path)
	return m
}

func (m Model) Init() tea.Cmd { return nil }

// Layer exposes the annotations being edited.
func (m Model) Layer() *annotation.Layer { return m.layer }

// layout returns the map area's origin and size for the current window.
func (m Model) layout() (originX, originY, w, h int) {
	sw := 0
	if m.showSidebar {
		sw = sidebarWidth
	}
	contentHeight := max(4, m.height-headerHeight-footerHeight)
	contentWidth := max(10, m.width)
	w = max(10, contentWidth-sw-1)
	if m.showSidebar {
		originX = sw + 1
	}
	return originX, headerHeight, w, contentHeight
}

// current returns the selected geometry.
func (m Model) current() (annotation.Geometry, bool) {
	gs := m.layer.Geometries()
	if m.selected < 0 || m.selected >= len(gs) {
		return nil, false
	}
	return gs[m.selected], true
}

// fit resets the viewport to the layer's extent.
func (m *Model) fit() {
	b := m.layer.Bounds()
	if b.IsEmpty() {
		b = geom.BBox{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50}
	}
	m.bbox = b.Pad(0.1)
	m.zoom = 1.0
	m.offsetX, m.offsetY = 0, 0
}
