package hub

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/stac"
)

func testStacItem(id string, cloudCover float64, assets map[string]stac.Asset) stac.Item {
	return stac.Item{
		Type:       "Feature",
		ID:         id,
		Collection: "sentinel-2-l1c",
		Geometry: map[string]interface{}{
			"type":        "Polygon",
			"coordinates": [][][]float64{{{8, 48}, {9, 48}, {9, 49}, {8, 49}, {8, 48}}},
		},
		Bbox: []float64{8, 48, 9, 49},
		Properties: map[string]interface{}{
			"datetime":           "2020-05-09T10:20:31Z",
			"producttype":        "S2MSI1C",
			"sat:orbit_state":    "descending",
			"sat:absolute_orbit": 25544.0,
			"sat:relative_orbit": 65.0,
			"eo:cloud_cover":     cloudCover,
		},
		Assets: assets,
		Links:  []stac.Link{{Rel: "self", Href: "https://stac.localdomain/collections/sentinel-2-l1c/items/" + id}},
	}
}

func stacSearchServer(t *testing.T, items ...stac.Item) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/search", request.URL.Path)
		response := map[string]interface{}{
			"type":     "FeatureCollection",
			"context":  map[string]int{"matched": len(items), "returned": len(items), "limit": 100},
			"features": items,
			"links":    []interface{}{},
		}
		assert.Nil(t, json.NewEncoder(writer).Encode(response))
	}))
}

func testStacHub(stacURL string) *StacHub {
	return NewStacHub(stacURL, map[model.Platform]string{model.Sentinel2: "sentinel-2-l1c"}, &Context{})
}

func TestStacHubQueryMetadata(t *testing.T) {
	// Mock
	server := stacSearchServer(t, testStacItem("S2A_MSIL1C_20200509T102031", 12.5, nil))
	defer server.Close()

	// Tested code
	hub := testStacHub(server.URL)
	collection, err := hub.QueryMetadata(testSearchOptions(t))

	// Asserts
	assert.Nil(t, err)
	assert.Len(t, collection.Items, 1)
	meta := collection.Items[0]
	assert.Equal(t, "S2A_MSIL1C_20200509T102031", meta.SrcID)
	assert.Equal(t, "S2A_MSIL1C_20200509T102031", meta.SrcUUID)
	assert.Equal(t, model.Sentinel2, meta.Platform)
	assert.Equal(t, "S2MSI1C", meta.ProductType)
	assert.Equal(t, "descending", meta.OrbitDirection)
	assert.Equal(t, 25544, meta.OrbitNumber)
	assert.Equal(t, 65, meta.RelativeOrbitNumber)
	assert.InDelta(t, 12.5, meta.CloudCoverPercentage, 1e-9)
	assert.Equal(t, time.Date(2020, 5, 9, 10, 20, 31, 0, time.UTC), meta.AcquisitionDate.UTC())
	assert.Contains(t, meta.SrcURL, "/items/S2A_MSIL1C_20200509T102031")
	assert.NotNil(t, meta.Geometry)
}

func TestStacHubQueryMetadata_CloudCoverFilter(t *testing.T) {
	server := stacSearchServer(t,
		testStacItem("S2A_CLEAR", 5, nil),
		testStacItem("S2A_CLOUDY", 80, nil))
	defer server.Close()

	hub := testStacHub(server.URL)
	options := testSearchOptions(t)
	options.CloudCover = &CloudCoverRange{Min: 0, Max: 50}
	collection, err := hub.QueryMetadata(options)

	assert.Nil(t, err)
	assert.Len(t, collection.Items, 1)
	assert.Equal(t, "S2A_CLEAR", collection.Items[0].SrcID)
}

func TestStacHubQueryMetadata_UnmappedPlatform(t *testing.T) {
	hub := testStacHub("https://stac.localdomain")
	options := testSearchOptions(t)
	options.Platform = model.Landsat8
	_, err := hub.QueryMetadata(options)
	assert.NotNil(t, err, "platforms without a collection mapping must be rejected")
}

func TestStacHubCount(t *testing.T) {
	server := stacSearchServer(t,
		testStacItem("S2A_CLEAR", 5, nil),
		testStacItem("S2A_CLOUDY", 80, nil))
	defer server.Close()

	hub := testStacHub(server.URL)
	count, err := hub.Count(testSearchOptions(t))
	assert.Nil(t, err)
	assert.Equal(t, 2, count)
}

func TestStacHubDownloadImage(t *testing.T) {
	// Mock
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/search":
			item := testStacItem("S2A_MSIL1C_20200509T102031", 12.5, map[string]stac.Asset{
				"B02": {Href: server.URL + "/assets/B02.jp2"},
				"B03": {Href: server.URL + "/assets/B03.jp2"},
			})
			response := map[string]interface{}{
				"type":     "FeatureCollection",
				"context":  map[string]int{"matched": 1, "returned": 1, "limit": 100},
				"features": []stac.Item{item},
				"links":    []interface{}{},
			}
			json.NewEncoder(writer).Encode(response)
		default:
			fmt.Fprintf(writer, "band data for %s", filepath.Base(request.URL.Path))
		}
	}))
	defer server.Close()

	// Tested code
	targetDir := t.TempDir()
	hub := testStacHub(server.URL)
	err := hub.DownloadImage(model.Sentinel2, "S2A_MSIL1C_20200509T102031", targetDir)

	// Asserts
	assert.Nil(t, err)
	_, err = os.Stat(filepath.Join(targetDir, "S2A_MSIL1C_20200509T102031"))
	assert.True(t, os.IsNotExist(err), "the download directory should be packed and removed")

	reader, err := zip.OpenReader(filepath.Join(targetDir, "S2A_MSIL1C_20200509T102031.zip"))
	assert.Nil(t, err)
	defer reader.Close()
	assert.Len(t, reader.File, 2)
}

func TestStacHubDownloadImage_UnknownItem(t *testing.T) {
	server := stacSearchServer(t)
	defer server.Close()

	hub := testStacHub(server.URL)
	err := hub.DownloadImage(model.Sentinel2, "nonexistent", t.TempDir())
	assert.NotNil(t, err)
}

func TestStacHubDownloadQuicklook(t *testing.T) {
	// Mock
	quicklook := testQuicklookJPEG(t, 40, 30, 5)
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		switch request.URL.Path {
		case "/search":
			item := testStacItem("S2A_MSIL1C_20200509T102031", 12.5, map[string]stac.Asset{
				"thumbnail": {Href: server.URL + "/assets/preview.jpg", Roles: []string{"thumbnail"}},
			})
			response := map[string]interface{}{
				"type":     "FeatureCollection",
				"context":  map[string]int{"matched": 1, "returned": 1, "limit": 100},
				"features": []stac.Item{item},
				"links":    []interface{}{},
			}
			json.NewEncoder(writer).Encode(response)
		default:
			writer.Write(quicklook)
		}
	}))
	defer server.Close()

	// Tested code
	targetDir := t.TempDir()
	hub := testStacHub(server.URL)
	err := hub.DownloadQuicklook(model.Sentinel2, "S2A_MSIL1C_20200509T102031", targetDir)

	// Asserts
	assert.Nil(t, err)
	_, err = os.Stat(filepath.Join(targetDir, "S2A_MSIL1C_20200509T102031.jpg"))
	assert.Nil(t, err)
	_, err = os.Stat(filepath.Join(targetDir, "S2A_MSIL1C_20200509T102031.jpgw"))
	assert.Nil(t, err)
}

func TestStacHubDownloadQuicklook_NoThumbnail(t *testing.T) {
	server := stacSearchServer(t, testStacItem("S2A_MSIL1C_20200509T102031", 12.5, nil))
	defer server.Close()

	hub := testStacHub(server.URL)
	err := hub.DownloadQuicklook(model.Sentinel2, "S2A_MSIL1C_20200509T102031", t.TempDir())
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "thumbnail")
}
