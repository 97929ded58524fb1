package hub

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/util"
)

// DiscoverHandler is a handler for /discover/{source}
// @Title discoverHandler
// @Description discovers scenes from a catalog backend
// @Accept  plain
// @Param   source       path    string  true         "The catalog to query: file, stac, earthexplorer or scihub"
// @Param   platform     query   string  true         "The platform name"
// @Param   bbox         query   string  true         "The bounding box, as minx,miny,maxx,maxy"
// @Param   acquiredDate query   string  false        "The minimum (earliest) acquired date, as RFC 3339"
// @Param   maxAcquiredDate query string false        "The maximum acquired date, as RFC 3339"
// @Param   cloudCover   query   string  false        "The maximum cloud cover, as a percentage (0-100)"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /discover/{source} [get]
type DiscoverHandler struct {
	Context *Context
	// MetadataDir backs the file source
	MetadataDir string
}

// NewDiscoverHandler creates a new handler using configuration from
// environment variables
func NewDiscoverHandler(metadataDir string) *DiscoverHandler {
	return &DiscoverHandler{Context: NewContextFromEnv(), MetadataDir: metadataDir}
}

// ServeHTTP implements the http.Handler interface for the DiscoverHandler type
func (h DiscoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	options, source, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	datahub, err := Open(source, h.MetadataDir, nil, h.Context)
	if err != nil {
		message := fmt.Sprintf("Could not open the %v catalog: %v", source, err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusBadGateway)
		return
	}
	defer datahub.Close()

	collection, err := datahub.QueryMetadata(*options)
	if err != nil {
		message := fmt.Sprintf("Error searching for scenes: %v", err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusBadGateway)
		return
	}

	featureCollection, err := collection.GeoJSONFeatureCollection()
	if err != nil {
		message := fmt.Sprintf("Error converting to feature collection: %v", err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Write([]byte(featureCollection.String()))
}

func (h DiscoverHandler) parseRequest(w http.ResponseWriter, r *http.Request) (*SearchOptions, Source, bool) {
	source, err := ParseSource(mux.Vars(r)["source"])
	if err != nil {
		message := err.Error()
		util.LogAlert(h.Context, message)
		util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
		return nil, "", false
	}

	platform, err := model.ParsePlatform(r.FormValue("platform"))
	if err != nil {
		message := fmt.Sprintf("The platform value of %v is invalid", r.FormValue("platform"))
		util.LogAlert(h.Context, message)
		util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
		return nil, "", false
	}

	bbox, err := geojson.NewBoundingBox(r.FormValue("bbox"))
	if err != nil || len(bbox) < 4 {
		message := fmt.Sprintf("The bbox value of %v is invalid", r.FormValue("bbox"))
		util.LogAlert(h.Context, message)
		util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
		return nil, "", false
	}
	aoi, err := model.NewAOIFromBbox(bbox[0], bbox[1], bbox[2], bbox[3])
	if err != nil {
		message := fmt.Sprintf("The bbox value of %v is invalid", r.FormValue("bbox"))
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
		return nil, "", false
	}

	options := SearchOptions{Platform: platform, AOI: *aoi, FromDate: time.Unix(0, 0), ToDate: time.Now()}
	if r.FormValue("acquiredDate") != "" {
		if options.FromDate, err = time.Parse(time.RFC3339, r.FormValue("acquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("acquiredDate"))
			util.LogSimpleErr(h.Context, message, err)
			util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
			return nil, "", false
		}
	}
	if r.FormValue("maxAcquiredDate") != "" {
		if options.ToDate, err = time.Parse(time.RFC3339, r.FormValue("maxAcquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("maxAcquiredDate"))
			util.LogSimpleErr(h.Context, message, err)
			util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
			return nil, "", false
		}
	}
	if r.FormValue("cloudCover") != "" {
		maxCloudCover, err := strconv.ParseFloat(r.FormValue("cloudCover"), 64)
		if err != nil {
			message := fmt.Sprintf("Cloud Cover value of %v is invalid.", r.FormValue("cloudCover"))
			util.LogSimpleErr(h.Context, message, err)
			util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
			return nil, "", false
		}
		options.CloudCover = &CloudCoverRange{Min: 0, Max: maxCloudCover}
	}
	return &options, source, true
}

// QuicklookHandler is a handler for /quicklook/{source}/{platform}/{id}
// @Title quicklookHandler
// @Description fetches the quicklook of a scene from a catalog backend
// @Accept  plain
// @Param   source   path   string  true   "The catalog to query: stac, earthexplorer or scihub"
// @Param   platform path   string  true   "The platform name"
// @Param   id       path   string  true   "The catalog UUID of the scene"
// @Success 200 image/jpeg
// @Failure 400 {object}  string
// @Router /quicklook/{source}/{platform}/{id} [get]
type QuicklookHandler struct {
	Context *Context
}

// NewQuicklookHandler creates a new handler using configuration from
// environment variables
func NewQuicklookHandler() *QuicklookHandler {
	return &QuicklookHandler{Context: NewContextFromEnv()}
}

// ServeHTTP implements the http.Handler interface for the QuicklookHandler type
func (h QuicklookHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	source, err := ParseSource(mux.Vars(r)["source"])
	if err != nil {
		message := err.Error()
		util.LogAlert(h.Context, message)
		util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
		return
	}
	platform, err := model.ParsePlatform(mux.Vars(r)["platform"])
	if err != nil {
		message := fmt.Sprintf("The platform value of %v is invalid", mux.Vars(r)["platform"])
		util.LogAlert(h.Context, message)
		util.HTTPError(r, w, h.Context, message, http.StatusBadRequest)
		return
	}
	productUUID := mux.Vars(r)["id"]

	datahub, err := Open(source, "", nil, h.Context)
	if err != nil {
		message := fmt.Sprintf("Could not open the %v catalog: %v", source, err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusBadGateway)
		return
	}
	defer datahub.Close()

	targetDir, err := os.MkdirTemp("", "quicklook-")
	if err != nil {
		message := fmt.Sprintf("Could not create a working directory: %v", err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusInternalServerError)
		return
	}
	defer os.RemoveAll(targetDir)

	if err = datahub.DownloadQuicklook(platform, productUUID, targetDir); err != nil {
		message := fmt.Sprintf("Error fetching the quicklook of %v: %v", productUUID, err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusBadGateway)
		return
	}

	matches, _ := filepath.Glob(filepath.Join(targetDir, "*.jpg"))
	if len(matches) == 0 {
		message := fmt.Sprintf("No quicklook available for %v", productUUID)
		util.LogAlert(h.Context, message)
		util.HTTPError(r, w, h.Context, message, http.StatusNotFound)
		return
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		message := fmt.Sprintf("Error reading the quicklook of %v: %v", productUUID, err)
		util.LogSimpleErr(h.Context, message, err)
		util.HTTPError(r, w, h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "image/jpeg")
	w.Write(data)
}
