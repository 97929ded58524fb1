package hub

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
)

func testDiscoverRouter(metadataDir string) *mux.Router {
	router := mux.NewRouter()
	router.Handle("/discover/{source}", &DiscoverHandler{Context: &Context{}, MetadataDir: metadataDir})
	router.Handle("/quicklook/{source}/{platform}/{id}", &QuicklookHandler{Context: &Context{}})
	return router
}

func TestDiscoverHandler(t *testing.T) {
	// Mock
	acquired := time.Date(2020, 5, 9, 10, 30, 0, 0, time.UTC)
	dir := testMetadataDir(t,
		testScene("S2A_HIT", model.Sentinel2, acquired, 10),
		testScene("S2A_CLOUDY", model.Sentinel2, acquired, 90),
	)
	router := testDiscoverRouter(dir)
	request := httptest.NewRequest("GET",
		"/discover/file?platform=Sentinel-2&bbox=8.5,48.5,8.6,48.6"+
			"&acquiredDate=2020-05-01T00:00:00Z&maxAcquiredDate=2020-06-01T00:00:00Z&cloudCover=50", nil)
	response := httptest.NewRecorder()

	// Tested code
	router.ServeHTTP(response, request)

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	parsed, err := geojson.Parse(response.Body.Bytes())
	assert.Nil(t, err)
	collection, ok := parsed.(*geojson.FeatureCollection)
	assert.True(t, ok, "the response must be a feature collection")
	assert.Equal(t, 1, len(collection.Features))
	assert.Equal(t, "S2A_HIT", collection.Features[0].IDStr())
}

func TestDiscoverHandler_NoCloudFilter(t *testing.T) {
	// Mock
	acquired := time.Date(2020, 5, 9, 10, 30, 0, 0, time.UTC)
	dir := testMetadataDir(t,
		testScene("S2A_HIT", model.Sentinel2, acquired, 10),
		testScene("S2A_CLOUDY", model.Sentinel2, acquired, 90),
	)
	router := testDiscoverRouter(dir)
	request := httptest.NewRequest("GET",
		"/discover/file?platform=Sentinel-2&bbox=8.5,48.5,8.6,48.6", nil)
	response := httptest.NewRecorder()

	// Tested code
	router.ServeHTTP(response, request)

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	parsed, err := geojson.Parse(response.Body.Bytes())
	assert.Nil(t, err)
	collection, ok := parsed.(*geojson.FeatureCollection)
	assert.True(t, ok, "the response must be a feature collection")
	assert.Equal(t, 2, len(collection.Features))
}

func TestDiscoverHandler_BadRequests(t *testing.T) {
	// Mock
	dir := testMetadataDir(t)
	router := testDiscoverRouter(dir)
	badRequests := map[string]string{
		"unknown source":    "/discover/nosuchhub?platform=Sentinel-2&bbox=8,48,9,49",
		"unknown platform":  "/discover/file?platform=Sputnik&bbox=8,48,9,49",
		"missing bbox":      "/discover/file?platform=Sentinel-2",
		"malformed bbox":    "/discover/file?platform=Sentinel-2&bbox=8,48,9",
		"bad acquired date": "/discover/file?platform=Sentinel-2&bbox=8,48,9,49&acquiredDate=May%209",
		"bad max date":      "/discover/file?platform=Sentinel-2&bbox=8,48,9,49&maxAcquiredDate=later",
		"bad cloud cover":   "/discover/file?platform=Sentinel-2&bbox=8,48,9,49&cloudCover=overcast",
	}

	for name, target := range badRequests {
		request := httptest.NewRequest("GET", target, nil)
		response := httptest.NewRecorder()

		// Tested code
		router.ServeHTTP(response, request)

		// Asserts
		assert.Equal(t, http.StatusBadRequest, response.Code, name)
	}
}

func TestQuicklookHandler_BadRequests(t *testing.T) {
	// Mock
	router := testDiscoverRouter(t.TempDir())

	for name, target := range map[string]string{
		"unknown source":   "/quicklook/nosuchhub/Sentinel-2/abc",
		"unknown platform": "/quicklook/scihub/Sputnik/abc",
	} {
		request := httptest.NewRequest("GET", target, nil)
		response := httptest.NewRecorder()

		// Tested code
		router.ServeHTTP(response, request)

		// Asserts
		assert.Equal(t, http.StatusBadRequest, response.Code, name)
	}
}

func TestQuicklookHandler_SciHub(t *testing.T) {
	// Mock
	quicklook := testQuicklookJPEG(t, 40, 30, 5)
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if request.URL.Path == "/search" {
			writer.Write([]byte(scihubFeedJSON(1, scihubEntryJSON(testScihubTitle, testScihubUUID))))
			return
		}
		writer.Write(quicklook)
	}))
	defer server.Close()
	router := mux.NewRouter()
	router.Handle("/quicklook/{source}/{platform}/{id}", &QuicklookHandler{Context: testScihubContext(server.URL)})
	request := httptest.NewRequest("GET", "/quicklook/scihub/Sentinel-2/"+testScihubUUID, nil)
	response := httptest.NewRecorder()

	// Tested code
	router.ServeHTTP(response, request)

	// Asserts
	assert.Equal(t, http.StatusOK, response.Code)
	assert.Equal(t, "image/jpeg", response.Header().Get("Content-Type"))
	assert.NotEmpty(t, response.Body.Bytes())
}
