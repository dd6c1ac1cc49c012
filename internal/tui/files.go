package tui

import (
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	list "github.com/charmbracelet/bubbles/list"

	"annomap/internal/annotation"
	"annomap/internal/geom"
)

type fileItem struct {
	title, desc string
	path        string
}

func (f fileItem) Title() string       { return f.title }
func (f fileItem) Description() string { return f.desc }
func (f fileItem) FilterValue() string { return f.title }

// supported reports whether loadPath can read files with extension ext.
func supported(ext string) bool {
	switch ext {
	case ".geojson", ".json", ".csv", ".kml", ".wkt":
		return true
	}
	return false
}

func (m *Model) refreshDir() {
	entries, err := os.ReadDir(m.cwd)
	if err != nil {
		m.status = "read dir error: " + err.Error()
		return
	}
	var items []list.Item
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		name := e.Name()
		ext := strings.ToLower(filepath.Ext(name))
		if supported(ext) {
			items = append(items, fileItem{title: name, desc: ext, path: filepath.Join(m.cwd, name)})
		}
	}
	sort.SliceStable(items, func(i, j int) bool { return items[i].(fileItem).Title() < items[j].(fileItem).Title() })
	m.items = items
	m.l.SetItems(items)
	if len(items) == 0 {
		m.status = "no supported files in current directory"
	}
}

func readFeatures(p string) ([]geom.Feature, error) {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".csv":
		return geom.LoadCSV(p)
	case ".kml":
		return geom.LoadKML(p)
	case ".wkt":
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, err
		}
		return geom.ParseWKTFeatures(string(data))
	default:
		return geom.LoadFeatures(p)
	}
}

// loadPath replaces the layer with the annotations read from p.
func (m *Model) loadPath(p string) {
	ext := strings.ToLower(filepath.Ext(p))
	if !supported(ext) {
		m.status = "unsupported file: " + ext
		return
	}
	fs, err := readFeatures(p)
	if err != nil {
		log.Printf("load %s: %v", p, err)
		m.status = "load error: " + err.Error()
		return
	}
	m.selPath = p
	m.layer = annotation.NewLayer(m.layer.Factory())
	m.selected = -1
	m.inspectPopup = ""
	m.addFeatures(fs, "loaded "+filepath.Base(p))
	if m.showAttrs {
		m.refreshAttrs()
	}
}
