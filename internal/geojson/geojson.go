// Package geojson decodes and validates the GeoJSON documents the web page
// publishes.
package geojson

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"
)

var (
	// ErrNoFeatures is returned for well-formed documents without features.
	ErrNoFeatures = errors.New("Invalid GeoJSON, no features")
	// ErrMalformed is wrapped by every decoding failure.
	ErrMalformed = errors.New("Invalid GeoJSON")
)

// Payload is a decoded document normalised to a feature collection.
type Payload struct {
	// Type is the top-level "type" member of the original document.
	Type       string
	Collection *geojson.FeatureCollection
}

// Count returns the number of features.
func (p *Payload) Count() int {
	return len(p.Collection.Features)
}

// Bound returns the bounding box of all feature geometries.
func (p *Payload) Bound() orb.Bound {
	var bound orb.Bound
	first := true
	for _, f := range p.Collection.Features {
		if f == nil || f.Geometry == nil {
			continue
		}
		b := f.Geometry.Bound()
		if first {
			bound = b
			first = false
			continue
		}
		bound = bound.Union(b)
	}
	return bound
}

// Decode parses body as a FeatureCollection, a Feature or a bare geometry.
// Documents that decode to zero features return ErrNoFeatures. A null
// feature or a feature without a geometry is malformed.
func Decode(body string) (*Payload, error) {
	if !gjson.Valid(body) {
		return nil, fmt.Errorf("%w: not valid JSON", ErrMalformed)
	}

	typ := gjson.Get(body, "type")
	if !typ.Exists() || typ.Type != gjson.String {
		return nil, fmt.Errorf("%w: missing type", ErrMalformed)
	}

	p := &Payload{Type: typ.String()}
	data := []byte(body)

	switch p.Type {
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		p.Collection = fc
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		p.Collection = geojson.NewFeatureCollection().Append(f)
	case "Point", "MultiPoint", "LineString", "MultiLineString", "Polygon", "MultiPolygon", "GeometryCollection":
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		p.Collection = geojson.NewFeatureCollection().Append(geojson.NewFeature(g.Geometry()))
	default:
		return nil, fmt.Errorf("%w: unsupported type %q", ErrMalformed, p.Type)
	}

	if p.Count() == 0 {
		return nil, ErrNoFeatures
	}
	for i, f := range p.Collection.Features {
		if f == nil {
			return nil, fmt.Errorf("%w: feature %d is null", ErrMalformed, i)
		}
		if f.Geometry == nil {
			return nil, fmt.Errorf("%w: feature %d has no geometry", ErrMalformed, i)
		}
	}
	return p, nil
}
