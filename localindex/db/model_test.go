package db

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
)

func sampleScene() IndexedScene {
	return IndexedScene{
		ProductID:       "S2A_MSIL1C_20200509T102031",
		ProductUUID:     "4cbc4live-79a4-4ba4-8f4e-cb31a6c83af1",
		Platform:        model.Sentinel2,
		AcquisitionDate: time.Date(2020, 5, 9, 10, 20, 31, 0, time.UTC),
		CloudCover:      12.5,
		SceneURL:        "https://example.localdomain/products/S2A_MSIL1C_20200509T102031/",
		Bounds:          geojson.NewPolygon([][][]float64{{{8, 48}, {9, 48}, {9, 49}, {8, 49}, {8, 48}}}),
	}
}

func TestIndexedSceneMetadata(t *testing.T) {
	scene := sampleScene()
	meta := scene.Metadata()

	assert.Equal(t, scene.ProductID, meta.ID)
	assert.Equal(t, scene.ProductID, meta.SrcID)
	assert.Equal(t, scene.ProductUUID, meta.SrcUUID)
	assert.Equal(t, model.Sentinel2, meta.Platform)
	assert.Equal(t, scene.AcquisitionDate, meta.AcquisitionDate)
	assert.InDelta(t, 12.5, meta.CloudCoverPercentage, 1e-9)
	assert.Equal(t, scene.SceneURL, meta.SrcURL)
	assert.Equal(t, scene.Bounds, meta.Geometry)
}

func TestSceneFromMetadata(t *testing.T) {
	original := sampleScene()
	meta := original.Metadata()

	scene, err := SceneFromMetadata(meta)
	assert.Nil(t, err)
	assert.Equal(t, original.ProductID, scene.ProductID)
	assert.Equal(t, original.Bounds, scene.Bounds, "polygon footprints pass through unchanged")
}

func TestSceneFromMetadata_PointFootprint(t *testing.T) {
	meta := sampleScene().Metadata()
	meta.Geometry = geojson.NewPoint([]float64{8.5, 48.5})

	scene, err := SceneFromMetadata(meta)
	assert.Nil(t, err)
	if assert.NotNil(t, scene.Bounds) {
		assert.Len(t, scene.Bounds.Coordinates[0], 5, "non-polygon footprints collapse to their bbox polygon")
	}
}

func TestSceneFromMetadata_NoFootprint(t *testing.T) {
	meta := sampleScene().Metadata()
	meta.Geometry = nil

	_, err := SceneFromMetadata(meta)
	assert.NotNil(t, err, "scenes without a footprint cannot be indexed")
}
