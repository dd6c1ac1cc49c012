package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
)

// FeatureCollection is the document written by WriteFeatures.
type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}

// LoadFeatures reads a GeoJSON file and returns its features.
func LoadFeatures(path string) ([]Feature, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadFeatures(f)
}

// ReadFeatures decodes a Feature, a FeatureCollection or a bare geometry.
// A bare geometry becomes a feature with an empty style bag.
func ReadFeatures(r io.Reader) ([]Feature, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseFeatures(data)
}

func ParseFeatures(data []byte) ([]Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, err
	}
	var out []Feature
	switch head.Type {
	case "":
		return nil, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		var fc FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, err
		}
		out = fc.Features
	case "Feature":
		var f Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, err
		}
		out = []Feature{f}
	default:
		var g Geometry
		if err := json.Unmarshal(data, &g); err != nil {
			return nil, err
		}
		out = []Feature{{Type: "Feature", Geometry: &g}}
	}
	for i := range out {
		if out[i].Type == "" {
			out[i].Type = "Feature"
		}
		if out[i].Properties == nil {
			out[i].Properties = map[string]any{}
		}
	}
	if len(out) == 0 {
		return nil, errors.New("no features found")
	}
	return out, nil
}

// WriteFeatures encodes features as an indented FeatureCollection.
func WriteFeatures(w io.Writer, features []Feature) error {
	if features == nil {
		features = []Feature{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FeatureCollection{Type: "FeatureCollection", Features: features}); err != nil {
		return fmt.Errorf("encode features: %w", err)
	}
	return nil
}

// SaveFeatures writes features to path, replacing the file.
func SaveFeatures(path string, features []Feature) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteFeatures(f, features); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
