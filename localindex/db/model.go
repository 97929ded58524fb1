package db

import (
	"fmt"
	"time"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
)

// IndexedScene is one row of the scenes table
type IndexedScene struct {
	ProductID       string
	ProductUUID     string
	Platform        model.Platform
	AcquisitionDate time.Time
	CloudCover      float64
	SceneURL        string
	Bounds          *geojson.Polygon
}

// Metadata converts an indexed scene back into a harmonized metadata record
func (s IndexedScene) Metadata() model.Metadata {
	meta := model.Metadata{
		ID:                   s.ProductID,
		Platform:             s.Platform,
		AcquisitionDate:      s.AcquisitionDate,
		CloudCoverPercentage: s.CloudCover,
		SrcID:                s.ProductID,
		SrcURL:               s.SceneURL,
		SrcUUID:              s.ProductUUID,
	}
	if s.Bounds != nil {
		meta.Geometry = s.Bounds
	}
	return meta
}

// SceneFromMetadata converts a harmonized metadata record into a row of the
// scenes table. The footprint is reduced to its bounding box polygon when it
// is not already a polygon.
func SceneFromMetadata(meta model.Metadata) (*IndexedScene, error) {
	scene := IndexedScene{
		ProductID:       meta.SrcID,
		ProductUUID:     meta.SrcUUID,
		Platform:        meta.Platform,
		AcquisitionDate: meta.AcquisitionDate,
		CloudCover:      meta.CloudCoverPercentage,
		SceneURL:        meta.SrcURL,
	}

	switch geometry := meta.Geometry.(type) {
	case nil:
		return nil, fmt.Errorf("scene %s has no usable footprint", meta.SrcID)
	case *geojson.Polygon:
		scene.Bounds = geometry
	case geojson.Polygon:
		scene.Bounds = &geometry
	default:
		feature, err := meta.GeoJSONFeature()
		if err != nil {
			return nil, err
		}
		bbox := feature.ForceBbox()
		if len(bbox) < 4 {
			return nil, fmt.Errorf("scene %s has no usable footprint", meta.SrcID)
		}
		scene.Bounds = geojson.NewPolygon([][][]float64{{
			{bbox[0], bbox[1]},
			{bbox[2], bbox[1]},
			{bbox[2], bbox[3]},
			{bbox[0], bbox[3]},
			{bbox[0], bbox[1]},
		}})
	}
	return &scene, nil
}
