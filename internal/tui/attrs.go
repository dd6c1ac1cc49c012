package tui

import (
	"encoding/json"
	"fmt"
	"slices"

	table "github.com/charmbracelet/bubbles/table"

	"annomap/internal/annotation"
)

// shapeColumns precede the style keys in the attributes table.
var shapeColumns = []string{"kind", "x", "y", "width", "height", "angle"}

// refreshAttrs rebuilds the table columns/rows from the layer.
func (m *Model) refreshAttrs() {
	cols, rows := buildAttributes(m.layer.Geometries())
	// If there are no rows, disable attributes view to avoid rendering panics
	if len(rows) == 0 {
		m.showAttrs = false
		m.status = "no annotations"
		return
	}
	tcols := make([]table.Column, 0, len(cols)+1)
	tcols = append(tcols, table.Column{Title: "#", Width: 4})
	maxColW := 24
	for i, c := range cols {
		w := len(c) + 2
		for _, r := range rows {
			w = max(w, len(r[i])+2)
		}
		tcols = append(tcols, table.Column{Title: c, Width: min(maxColW, w)})
	}
	trows := make([]table.Row, 0, len(rows))
	for i, r := range rows {
		row := make([]string, 0, len(r)+1)
		row = append(row, fmt.Sprintf("%d", i+1))
		row = append(row, r...)
		trows = append(trows, table.Row(row))
	}
	// Avoid transient mismatch: clear rows, set columns, then set rows
	m.tbl.SetRows(nil)
	m.tbl.SetColumns(tcols)
	m.tbl.SetRows(trows)
	if m.selected >= 0 && m.selected < len(trows) {
		m.tbl.SetCursor(m.selected)
	}
}

// buildAttributes lays out one row per geometry: shape columns first, then the
// union of style keys in order of first appearance.
func buildAttributes(gs []annotation.Geometry) ([]string, [][]string) {
	order := []string{}
	seen := map[string]bool{}
	for _, g := range gs {
		keys := make([]string, 0, len(g.Item().Style))
		for k := range g.Item().Style {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if !seen[k] {
				seen[k] = true
				order = append(order, k)
			}
		}
	}
	cols := append(slices.Clone(shapeColumns), order...)

	rows := make([][]string, 0, len(gs))
	for _, g := range gs {
		vals := make([]string, 0, len(cols))
		vals = append(vals, kindName(g))
		c := g.Coordinates()
		if len(c) >= 2 {
			vals = append(vals, fmt.Sprintf("%.3f", c[0]), fmt.Sprintf("%.3f", c[1]))
		} else {
			vals = append(vals, "", "")
		}
		props := g.Properties()
		if _, ok := g.(*annotation.Placeholder); ok {
			props = nil
		}
		for _, k := range shapeColumns[3:] {
			vals = append(vals, formatValue(props[k]))
		}
		for _, k := range order {
			vals = append(vals, formatValue(g.Item().Style[k]))
		}
		rows = append(rows, vals)
	}
	return cols, rows
}

func formatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return fmt.Sprintf("%.4g", t)
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		bs, _ := json.Marshal(t)
		return string(bs)
	}
}
