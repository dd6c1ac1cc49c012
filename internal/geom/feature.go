package geom

import (
	"encoding/json"
	"fmt"
	"maps"
)

// Feature is a GeoJSON-like record: a geometry with shape parameters plus an
// opaque style bag.
type Feature struct {
	Type       string         `json:"type"`
	Geometry   *Geometry      `json:"geometry"`
	Properties map[string]any `json:"properties"`
}

// Geometry carries a flat coordinate list. Shape parameters, including the
// subtype that selects an annotation kind, live in Properties.
type Geometry struct {
	Type        string         `json:"type"`
	Coordinates []float64      `json:"coordinates"`
	Properties  map[string]any `json:"properties,omitempty"`
}

// NewFeature builds a feature; props may be nil.
func NewFeature(typ, subtype string, coords []float64, props map[string]any) Feature {
	g := &Geometry{Type: typ, Coordinates: coords, Properties: map[string]any{}}
	if subtype != "" {
		g.Properties["subtype"] = subtype
	}
	if props == nil {
		props = map[string]any{}
	}
	return Feature{Type: "Feature", Geometry: g, Properties: props}
}

// GeometryType is the geometry type, or "" when the feature has no geometry.
func (f Feature) GeometryType() string {
	if f.Geometry == nil {
		return ""
	}
	return f.Geometry.Type
}

func (f Feature) Subtype() string {
	if f.Geometry == nil {
		return ""
	}
	return f.Geometry.Subtype()
}

// Clone deep-copies the feature so the copy shares no maps or slices with f.
func (f Feature) Clone() Feature {
	out := Feature{Type: f.Type, Properties: CloneProps(f.Properties)}
	if f.Geometry != nil {
		g := *f.Geometry
		g.Coordinates = append([]float64(nil), f.Geometry.Coordinates...)
		g.Properties = CloneProps(f.Geometry.Properties)
		out.Geometry = &g
	}
	return out
}

func (g *Geometry) Subtype() string {
	s, _ := g.Properties["subtype"].(string)
	return s
}

// Number reads a numeric shape parameter, 0 when absent or not a number.
func (g *Geometry) Number(key string) float64 {
	switch v := g.Properties[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, _ := v.Float64()
		return f
	}
	return 0
}

func (g Geometry) MarshalJSON() ([]byte, error) {
	type plain Geometry
	if g.Coordinates == nil {
		g.Coordinates = []float64{}
	}
	return json.Marshal(plain(g))
}

// UnmarshalJSON accepts nested GeoJSON coordinate arrays and flattens them
// depth-first.
func (g *Geometry) UnmarshalJSON(data []byte) error {
	var aux struct {
		Type        string          `json:"type"`
		Coordinates json.RawMessage `json:"coordinates"`
		Properties  map[string]any  `json:"properties"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	g.Type = aux.Type
	g.Properties = aux.Properties
	g.Coordinates = nil
	if len(aux.Coordinates) == 0 {
		return nil
	}
	var raw any
	if err := json.Unmarshal(aux.Coordinates, &raw); err != nil {
		return err
	}
	coords, err := flatten(raw, nil)
	if err != nil {
		return fmt.Errorf("geometry %q: %w", aux.Type, err)
	}
	g.Coordinates = coords
	return nil
}

func flatten(v any, out []float64) ([]float64, error) {
	switch t := v.(type) {
	case nil:
		return out, nil
	case float64:
		return append(out, t), nil
	case []any:
		var err error
		for _, el := range t {
			if out, err = flatten(el, out); err != nil {
				return nil, err
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("coordinates: unexpected %T", v)
}

// CloneProps deep-copies a property bag of JSON-like values.
func CloneProps(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	out := maps.Clone(m)
	for k, v := range out {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return CloneProps(t)
	case []any:
		s := make([]any, len(t))
		for i, el := range t {
			s[i] = cloneValue(el)
		}
		return s
	}
	return v
}
