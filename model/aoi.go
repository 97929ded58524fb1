package model

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"
)

// AOI is an area of interest in WGS84, normalized from any of the
// accepted input forms (bounding box, GeoJSON, WKT polygon)
type AOI struct {
	Bbox     geojson.BoundingBox
	Geometry interface{}
}

// ParseAOI normalizes an area-of-interest input. The input may be a
// bounding box string ("x1,y1,x2,y2"), the path to a GeoJSON file, a
// raw GeoJSON document, or a WKT POLYGON string.
func ParseAOI(input string) (*AOI, error) {
	trimmed := strings.TrimSpace(input)

	if strings.HasPrefix(strings.ToUpper(trimmed), "POLYGON") {
		return aoiFromWKTPolygon(trimmed)
	}
	if strings.HasPrefix(trimmed, "{") {
		return aoiFromGeoJSON([]byte(trimmed))
	}
	if fileInfo, err := os.Stat(trimmed); err == nil && !fileInfo.IsDir() {
		data, err := os.ReadFile(trimmed)
		if err != nil {
			return nil, err
		}
		return aoiFromGeoJSON(data)
	}

	bbox, err := geojson.NewBoundingBox(trimmed)
	if err != nil {
		return nil, fmt.Errorf("aoi must be a bounding box, a GeoJSON file, a GeoJSON document or a WKT POLYGON: %v", err)
	}
	return &AOI{Bbox: bbox, Geometry: bbox.Geometry()}, nil
}

// NewAOIFromBbox creates an AOI from bounding box coordinates
func NewAOIFromBbox(minX, minY, maxX, maxY float64) (*AOI, error) {
	bbox, err := geojson.NewBoundingBox([]float64{minX, minY, maxX, maxY})
	if err != nil {
		return nil, err
	}
	return &AOI{Bbox: bbox, Geometry: bbox.Geometry()}, nil
}

func aoiFromGeoJSON(data []byte) (*AOI, error) {
	parsed, err := geojson.Parse(data)
	if err != nil {
		return nil, err
	}

	var geometry interface{}
	switch typed := parsed.(type) {
	case *geojson.FeatureCollection:
		if len(typed.Features) == 0 {
			return nil, fmt.Errorf("aoi feature collection is empty")
		}
		geometry = typed.Features[0].Geometry
	case *geojson.Feature:
		geometry = typed.Geometry
	default:
		geometry = parsed
	}

	feature := geojson.NewFeature(geometry, "", nil)
	return &AOI{Bbox: feature.ForceBbox(), Geometry: geometry}, nil
}

// aoiFromWKTPolygon parses a WKT POLYGON; only the exterior ring is kept.
func aoiFromWKTPolygon(wkt string) (*AOI, error) {
	open := strings.Index(wkt, "((")
	end := strings.Index(wkt, ")")
	if open < 0 || end < open {
		return nil, fmt.Errorf("malformed WKT POLYGON: `%s`", wkt)
	}

	ring := [][]float64{}
	for _, pair := range strings.Split(wkt[open+2:end], ",") {
		coords := strings.Fields(strings.TrimSpace(pair))
		if len(coords) != 2 {
			return nil, fmt.Errorf("malformed WKT coordinate pair: `%s`", pair)
		}
		x, errX := strconv.ParseFloat(coords[0], 64)
		y, errY := strconv.ParseFloat(coords[1], 64)
		if errX != nil || errY != nil {
			return nil, fmt.Errorf("non-numeric WKT coordinate pair: `%s`", pair)
		}
		ring = append(ring, []float64{x, y})
	}
	if len(ring) < 4 {
		return nil, fmt.Errorf("WKT POLYGON ring needs at least 4 coordinate pairs")
	}

	polygon := geojson.NewPolygon([][][]float64{ring})
	feature := geojson.NewFeature(polygon, "", nil)
	return &AOI{Bbox: feature.ForceBbox(), Geometry: polygon}, nil
}

// Intersects reports whether the AOI bounding box overlaps the given
// bounding box. Footprint intersection is approximated at bbox level.
func (a AOI) Intersects(bbox geojson.BoundingBox) bool {
	if len(a.Bbox) < 4 || len(bbox) < 4 {
		return false
	}
	if a.Bbox[2] < bbox[0] || bbox[2] < a.Bbox[0] {
		return false
	}
	if a.Bbox[3] < bbox[1] || bbox[3] < a.Bbox[1] {
		return false
	}
	return true
}
