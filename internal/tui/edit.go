package tui

import (
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"
	"strings"

	"annomap/internal/annotation"
	"annomap/internal/geom"
)

// selectStep moves the selection by delta, wrapping around.
func (m *Model) selectStep(delta int) {
	n := m.layer.Len()
	if n == 0 {
		m.selected = -1
		m.status = "nothing to select"
		return
	}
	if m.selected < 0 {
		m.selected = 0
		if delta < 0 {
			m.selected = n - 1
		}
	} else {
		m.selected = ((m.selected+delta)%n + n) % n
	}
	m.status = m.describeSelection()
}

func (m Model) describeSelection() string {
	g, ok := m.current()
	if !ok {
		return "no selection"
	}
	s := fmt.Sprintf("selected %d/%d: %s", m.selected+1, m.layer.Len(), kindName(g))
	if c := g.Coordinates(); len(c) >= 2 {
		s += fmt.Sprintf("  at (%.3f, %.3f)", c[0], c[1])
	}
	if r, ok := g.(*annotation.Rectangle); ok {
		p := r.Properties()
		s += fmt.Sprintf("  %.3f x %.3f  %.1f°", p["width"], p["height"], p["angle"])
	}
	return s
}

func kindName(g annotation.Geometry) string {
	if _, ok := g.(*annotation.Placeholder); ok {
		return "placeholder"
	}
	return g.Kind().String()
}

func (m *Model) rotateSelected(deg float64) {
	g, ok := m.current()
	if !ok {
		m.status = "rotate: no selection"
		return
	}
	if err := m.layer.Rotate(g, deg); err != nil {
		m.status = "rotate error: " + err.Error()
		return
	}
	m.status = m.describeSelection()
}

// scaleSelected stretches the selection along its own width (axis 0) or
// height (axis 1). The edge opposite the one being dragged stays put.
func (m *Model) scaleSelected(axis int, factor float64) {
	g, ok := m.current()
	if !ok {
		m.status = "scale: no selection"
		return
	}
	anchor := g.Item().Position()
	if r, ok := g.(*annotation.Rectangle); ok {
		c := r.Corners()
		if len(c) < 4 {
			m.status = "scale: rectangle has no size yet"
			return
		}
		if axis == 0 {
			anchor = c[0].Add(c[3]).Div(2) // left edge
		} else {
			anchor = c[0].Add(c[1]).Div(2) // top edge
		}
	}
	sx, sy := factor, 1.0
	if axis == 1 {
		sx, sy = 1.0, factor
	}
	if err := m.layer.Scale(g, anchor, sx, sy); err != nil {
		m.status = "scale error: " + err.Error()
		return
	}
	m.status = m.describeSelection()
}

// newPlaceholder adds an annotation whose kind is chosen later.
func (m *Model) newPlaceholder() {
	style := map[string]any{
		"color": palette[m.created%len(palette)],
		"label": fmt.Sprintf("annotation %d", m.created+1),
	}
	m.created++
	ph := annotation.NewPlaceholder(geom.Feature{Type: "Feature", Properties: style})
	if err := m.layer.AddGeometry(ph); err != nil {
		m.status = "new: " + err.Error()
		return
	}
	m.selected = m.layer.Len() - 1
	m.status = "placeholder added; b = rectangle, o = point"
}

// materialize turns the selected placeholder into a shape of the given kind
// and draws it at the centre of the view.
func (m *Model) materialize(k annotation.Kind) {
	g, ok := m.current()
	if !ok {
		m.status = "materialize: no selection"
		return
	}
	ph, ok := g.(*annotation.Placeholder)
	if !ok {
		m.status = "materialize: selection is not a placeholder"
		return
	}
	shape, err := ph.Materialize(m.layer, m.layer.Factory(), k.Type, k.Subtype)
	if err != nil {
		m.status = "materialize error: " + err.Error()
		return
	}
	log.Printf("materialized placeholder into %s", shape.Kind())

	// size the empty shape the way a drawing tool would
	_, _, w, h := m.layout()
	if _, ok := m.viewBox(w, h); !ok {
		m.bbox = geom.BBox{MinX: -50, MinY: -50, MaxX: 50, MaxY: 50}
	}
	b, _ := m.viewBox(w, h)
	c, _ := m.cellToScene(w/2, h/2, w, h)
	f := m.layer.Feature(shape)
	f.Geometry.Coordinates = []float64{c.X, c.Y}
	if k == annotation.RectangleKind {
		f.Geometry.Properties["width"] = (b.MaxX - b.MinX) / (4 * m.zoom)
		f.Geometry.Properties["height"] = (b.MaxY - b.MinY) / (4 * m.zoom)
	}
	sized, err := m.layer.Factory().New(f)
	if err != nil {
		m.status = "materialize error: " + err.Error()
		return
	}
	if err := m.layer.ReplaceGeometry(shape, sized); err != nil {
		m.status = "materialize error: " + err.Error()
		return
	}
	m.status = m.describeSelection()
}

func (m *Model) deleteSelected() {
	g, ok := m.current()
	if !ok {
		m.status = "delete: no selection"
		return
	}
	if err := m.layer.Remove(g); err != nil {
		m.status = "delete error: " + err.Error()
		return
	}
	if m.selected >= m.layer.Len() {
		m.selected = m.layer.Len() - 1
	}
	m.status = "deleted " + kindName(g)
}

// savePath is where w writes: the open GeoJSON file, or annotations.geojson
// next to whatever else was opened.
func (m Model) savePath() string {
	ext := strings.ToLower(filepath.Ext(m.selPath))
	if ext == ".geojson" || ext == ".json" {
		return m.selPath
	}
	dir := m.cwd
	if m.selPath != "" {
		dir = filepath.Dir(m.selPath)
	}
	return filepath.Join(dir, "annotations.geojson")
}

func (m *Model) save() {
	p := m.savePath()
	if err := geom.SaveFeatures(p, m.layer.Features()); err != nil {
		log.Printf("save %s: %v", p, err)
		m.status = "save error: " + err.Error()
		return
	}
	log.Printf("saved %d features to %s", m.layer.Len(), p)
	m.status = fmt.Sprintf("saved %d features to %s", m.layer.Len(), filepath.Base(p))
}

// inspect shows the selected annotation as a feature record.
func (m *Model) inspect() {
	g, ok := m.current()
	if !ok {
		m.inspectPopup = "nothing selected"
		m.status = m.inspectPopup
		return
	}
	b, err := json.MarshalIndent(m.layer.Feature(g), "", "  ")
	if err != nil {
		m.inspectPopup = "inspect error: " + err.Error()
		return
	}
	m.inspectPopup = string(b)
	m.status = "inspect popup"
}

// addFeatures loads features into the current layer and reports what was
// skipped.
func (m *Model) addFeatures(fs []geom.Feature, source string) {
	n, err := m.layer.AddFeatures(fs)
	m.status = fmt.Sprintf("%s: added %d of %d", source, n, len(fs))
	if err != nil {
		log.Printf("%s: %v", source, err)
		m.status += fmt.Sprintf("  (%d skipped)", len(fs)-n)
	}
	m.fit()
}
