package model

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"
)

var testGeometry = geojson.NewPolygon([][][]float64{{
	{11.0, 48.0},
	{11.1, 48.0},
	{11.1, 48.1},
	{11.0, 48.1},
	{11.0, 48.0},
}})

func sampleMetadata() Metadata {
	return Metadata{
		ID:                   "S2A_MSIL1C_20200601T101031_N0209_R022_T32UQC_20200601T111000",
		Platform:             Sentinel2,
		ProductType:          "S2MSI1C",
		OrbitDirection:       "DESCENDING",
		OrbitNumber:          25763,
		RelativeOrbitNumber:  22,
		AcquisitionDate:      time.Date(2020, 6, 1, 10, 10, 31, 0, time.UTC),
		IngestionDate:        time.Date(2020, 6, 1, 14, 0, 0, 0, time.UTC),
		CloudCoverPercentage: 12.5,
		Format:               "SAFE",
		Size:                 "791.85 MB",
		SrcID:                "S2A_MSIL1C_20200601T101031_N0209_R022_T32UQC_20200601T111000",
		SrcURL:               "https://scihub.copernicus.eu/dhus/odata/v1/Products('0000')/$value",
		SrcUUID:              "0a0a0a0a-1b1b-2c2c-3d3d-4e4e4e4e4e4e",
		Geometry:             testGeometry,
	}
}

func TestMetadataGeoJSONFeature(t *testing.T) {
	feature, err := sampleMetadata().GeoJSONFeature()
	assert.Nil(t, err)
	assert.Equal(t, "Sentinel-2", feature.PropertyString("platformname"))
	assert.Equal(t, "S2MSI1C", feature.PropertyString("producttype"))
	assert.Equal(t, 12.5, feature.Properties["cloudcoverpercentage"])
	assert.Equal(t, "2020-06-01T10:10:31Z", feature.PropertyString("acquisitiondate"))
	assert.NotEmpty(t, feature.Bbox, "feature should carry a forced bbox")
}

func TestMetadataGeoJSONFeature_ErrorWithoutID(t *testing.T) {
	meta := sampleMetadata()
	meta.ID = ""
	_, err := meta.GeoJSONFeature()
	assert.NotNil(t, err)
}

func TestMetadataRoundTrip(t *testing.T) {
	original := sampleMetadata()
	feature, err := original.GeoJSONFeature()
	assert.Nil(t, err)

	recovered, err := MetadataFromFeature(feature)
	assert.Nil(t, err)
	assert.Equal(t, original.ID, recovered.ID)
	assert.Equal(t, original.Platform, recovered.Platform)
	assert.Equal(t, original.OrbitNumber, recovered.OrbitNumber)
	assert.Equal(t, original.CloudCoverPercentage, recovered.CloudCoverPercentage)
	assert.True(t, original.AcquisitionDate.Equal(recovered.AcquisitionDate))
	assert.Equal(t, original.SrcUUID, recovered.SrcUUID)
}

func TestMetadataFromFeature_UnknownPlatform(t *testing.T) {
	feature, _ := sampleMetadata().GeoJSONFeature()
	feature.Properties["platformname"] = "Voyager-1"
	_, err := MetadataFromFeature(feature)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "unrecognized platform")
}

func TestMetadataFromFeature_MissingSrcFields(t *testing.T) {
	feature, _ := sampleMetadata().GeoJSONFeature()
	feature.Properties["srcuuid"] = ""
	_, err := MetadataFromFeature(feature)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "srcid or srcuuid")
}

func TestMetadataFromFeature_NoCloudCover(t *testing.T) {
	feature, _ := sampleMetadata().GeoJSONFeature()
	delete(feature.Properties, "cloudcoverpercentage")
	meta, err := MetadataFromFeature(feature)
	assert.Nil(t, err)
	assert.Equal(t, CloudCoverUnknown, meta.CloudCoverPercentage)
}

func TestMetadataSave(t *testing.T) {
	targetDir := t.TempDir()
	meta := sampleMetadata()
	assert.Nil(t, meta.Save(targetDir))

	data, err := os.ReadFile(filepath.Join(targetDir, meta.SrcID+".json"))
	assert.Nil(t, err)

	recovered, err := MetadataFromBytes(data)
	assert.Nil(t, err)
	assert.Equal(t, meta.ID, recovered.ID)
}

func TestMetadataFromBytes_NotAFeature(t *testing.T) {
	collection, _ := json.Marshal(map[string]interface{}{"type": "FeatureCollection", "features": []interface{}{}})
	_, err := MetadataFromBytes(collection)
	assert.NotNil(t, err)
}

func TestMetadataCollectionFilter(t *testing.T) {
	s2 := sampleMetadata()
	l8 := sampleMetadata()
	l8.ID = "LC08_L1TP_193024_20200509_20200509_01_RT"
	l8.SrcID = l8.ID
	l8.Platform = Landsat8
	l8.ProductType = "L1TP"

	collection := MetadataCollection{Items: []Metadata{s2, l8}}
	filtered := collection.Filter("producttype", "L1TP")
	assert.Len(t, filtered.Items, 1)
	assert.Equal(t, l8.ID, filtered.Items[0].ID)
}

func TestMetadataCollectionFeatureCollection(t *testing.T) {
	collection := MetadataCollection{Items: []Metadata{sampleMetadata(), sampleMetadata()}}
	fc, err := collection.GeoJSONFeatureCollection()
	assert.Nil(t, err)
	assert.Len(t, fc.Features, 2)
}
