// Package geom adapts encoded-polyline and GeoJSON line geometry into
// ordered coordinate sequences.
package geom

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/twpayne/go-polyline"
)

// Polyline precision scales. The current directions wire format encodes
// shapes at 1e5, the legacy format at 1e6.
const (
	ScaleCurrent = 1e5
	ScaleLegacy  = 1e6
)

// DecodePolyline decodes an encoded path string at the given precision
// scale into [lon, lat] points. Encoded polylines carry lat,lng pairs.
func DecodePolyline(encoded string, scale float64) ([]orb.Point, error) {
	codec := polyline.Codec{Dim: 2, Scale: scale}
	coords, _, err := codec.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, fmt.Errorf("decode polyline: %w", err)
	}
	points := make([]orb.Point, 0, len(coords))
	for _, c := range coords {
		points = append(points, orb.Point{c[1], c[0]})
	}
	return points, nil
}

// EncodePolyline encodes [lon, lat] points at the given precision scale.
func EncodePolyline(points []orb.Point, scale float64) string {
	codec := polyline.Codec{Dim: 2, Scale: scale}
	coords := make([][]float64, 0, len(points))
	for _, p := range points {
		coords = append(coords, []float64{p.Lat(), p.Lon()})
	}
	return string(codec.EncodeCoords(nil, coords))
}

// DecodeLineObject decodes a structured GeoJSON-like line object
// ({"type":"LineString","coordinates":[[lon,lat],...]}) into points.
func DecodeLineObject(obj map[string]any) ([]orb.Point, error) {
	raw, err := json.Marshal(obj)
	if err != nil {
		return nil, fmt.Errorf("reserialize line object: %w", err)
	}
	g, err := geojson.UnmarshalGeometry(raw)
	if err != nil {
		return nil, fmt.Errorf("decode line object: %w", err)
	}
	line, ok := g.Geometry().(orb.LineString)
	if !ok {
		return nil, fmt.Errorf("line object is %s, want LineString", g.Type)
	}
	return []orb.Point(line), nil
}
