package geojson

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		typ      string
		features int
	}{
		{
			name:     "feature collection",
			body:     `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{"wof:id":1},"geometry":{"type":"Point","coordinates":[-122.38,37.62]}},{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[-122.4,37.7]}}]}`,
			typ:      "FeatureCollection",
			features: 2,
		},
		{
			name:     "single feature",
			body:     `{"type":"Feature","properties":{"name":"camera"},"geometry":{"type":"LineString","coordinates":[[0,0],[1,1]]}}`,
			typ:      "Feature",
			features: 1,
		},
		{
			name:     "bare geometry",
			body:     `{"type":"Point","coordinates":[1,2]}`,
			typ:      "Point",
			features: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.body)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, p.Type)
			assert.Equal(t, tt.features, p.Count())
		})
	}
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want error
	}{
		{"empty collection", `{"type":"FeatureCollection","features":[]}`, ErrNoFeatures},
		{"not json", `{"type":`, ErrMalformed},
		{"empty string", ``, ErrMalformed},
		{"no type", `{"features":[]}`, ErrMalformed},
		{"numeric type", `{"type":7}`, ErrMalformed},
		{"unknown type", `{"type":"Topology"}`, ErrMalformed},
		{"bad coordinates", `{"type":"Point","coordinates":"here"}`, ErrMalformed},
		{"null feature", `{"type":"FeatureCollection","features":[null]}`, ErrMalformed},
		{"null among features", `{"type":"FeatureCollection","features":[{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[1,2]}},null]}`, ErrMalformed},
		{"feature without geometry", `{"type":"Feature","geometry":null}`, ErrMalformed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Decode(tt.body)
			assert.Nil(t, p)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestErrNoFeaturesMessage(t *testing.T) {
	assert.Equal(t, "Invalid GeoJSON, no features", ErrNoFeatures.Error())
}

func TestPayloadBound(t *testing.T) {
	p, err := Decode(`{"type":"FeatureCollection","features":[
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[-122.5,37.6]}},
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[-122.4,37.7]}},
		{"type":"Feature","properties":{},"geometry":{"type":"Point","coordinates":[-122.3,37.8]}}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, 3, p.Count())

	b := p.Bound()
	assert.Equal(t, orb.Point{-122.5, 37.6}, b.Min)
	assert.Equal(t, orb.Point{-122.3, 37.8}, b.Max)
}

func TestPayloadBound_SkipsMissingGeometry(t *testing.T) {
	p := &Payload{Type: "FeatureCollection", Collection: geojson.NewFeatureCollection()}
	p.Collection.Features = append(p.Collection.Features,
		nil,
		geojson.NewFeature(nil),
		geojson.NewFeature(orb.Point{-122.38, 37.62}),
	)

	assert.NotPanics(t, func() {
		b := p.Bound()
		assert.Equal(t, orb.Point{-122.38, 37.62}, b.Min)
		assert.Equal(t, orb.Point{-122.38, 37.62}, b.Max)
	})
}
