package localindex

import (
	"database/sql"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/localindex/db"
	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/util"
)

// DiscoverHandler is a handler for /localindex/discover
// @Title localIndexDiscoverHandler
// @Description discovers scenes from the local index
// @Accept  plain
// @Param   bbox            query   string  true         "The bounding box, as minx,miny,maxx,maxy"
// @Param   platform        query   string  false        "Restrict results to one platform"
// @Param   cloudCover      query   string  false        "The maximum cloud cover, as a percentage (0-100)"
// @Param   acquiredDate    query   string  false        "The minimum (earliest) acquired date, as RFC 3339"
// @Param   maxAcquiredDate query   string  false        "The maximum acquired date, as RFC 3339"
// @Success 200 {object}  geojson.FeatureCollection
// @Failure 400 {object}  string
// @Router /localindex/discover [get]
type DiscoverHandler struct {
	Context Context
}

// NewDiscoverHandler creates a new handler using the given DB connection
func NewDiscoverHandler(connectionProvider db.ConnectionProvider) (*DiscoverHandler, error) {
	database, err := connectionProvider()
	if err != nil {
		return nil, err
	}
	return &DiscoverHandler{Context: Context{DB: database}}, nil
}

// ServeHTTP implements the http.Handler interface for the DiscoverHandler type
func (h DiscoverHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	bbox, err := geojson.NewBoundingBox(r.FormValue("bbox"))
	if err != nil || len(bbox) < 4 {
		message := fmt.Sprintf("The bbox value of %v is invalid", r.FormValue("bbox"))
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
		return
	}

	platform := model.Platform("")
	if r.FormValue("platform") != "" {
		if platform, err = model.ParsePlatform(r.FormValue("platform")); err != nil {
			message := fmt.Sprintf("The platform value of %v is invalid", r.FormValue("platform"))
			util.LogAlert(&h.Context, message)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
	}

	maxCloudCover := float64(100)
	if r.FormValue("cloudCover") != "" {
		if maxCloudCover, err = strconv.ParseFloat(r.FormValue("cloudCover"), 64); err != nil {
			message := fmt.Sprintf("Cloud Cover value of %v is invalid.", r.FormValue("cloudCover"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
	}

	minAcquiredDate := time.Unix(0, 0)
	if r.FormValue("acquiredDate") != "" {
		if minAcquiredDate, err = time.Parse(time.RFC3339, r.FormValue("acquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("acquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
	}
	maxAcquiredDate := time.Now()
	if r.FormValue("maxAcquiredDate") != "" {
		if maxAcquiredDate, err = time.Parse(time.RFC3339, r.FormValue("maxAcquiredDate")); err != nil {
			message := fmt.Sprintf("Acquired date value of %v is invalid.", r.FormValue("maxAcquiredDate"))
			util.LogSimpleErr(&h.Context, message, err)
			util.HTTPError(r, w, &h.Context, message, http.StatusBadRequest)
			return
		}
	}

	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	collection, err := discoverScenes(tx, bbox, platform, maxCloudCover, minAcquiredDate, maxAcquiredDate)
	if err != nil {
		message := fmt.Sprintf("Error searching for scenes: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	featureCollection, err := collection.GeoJSONFeatureCollection()
	if err != nil {
		message := fmt.Sprintf("Error converting to feature collection: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	w.Write([]byte(featureCollection.String()))
}

// MetadataHandler is a handler for /localindex/scene/{id}
// @Title localIndexMetadataHandler
// @Description returns the harmonized metadata of one indexed scene
// @Accept  plain
// @Param   id            path   string  true        "The product ID of the requested scene"
// @Success 200 {object}  geojson.Feature
// @Failure 404 {object}  string
// @Router /localindex/scene/{id} [get]
type MetadataHandler struct {
	Context Context
}

// NewMetadataHandler creates a new handler using the given DB connection
func NewMetadataHandler(connectionProvider db.ConnectionProvider) (*MetadataHandler, error) {
	database, err := connectionProvider()
	if err != nil {
		return nil, err
	}
	return &MetadataHandler{Context: Context{DB: database}}, nil
}

func (h MetadataHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	productID, ok := mux.Vars(r)["id"]
	if !ok {
		message := "No product ID found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	meta, err := getMetadata(tx, productID)
	if err == sql.ErrNoRows {
		message := fmt.Sprintf("Scene not found: %s", productID)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		tx.Rollback()
		return
	}
	if err != nil {
		message := fmt.Sprintf("Server error searching for scene: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	feature, err := meta.GeoJSONFeature()
	if err != nil {
		message := fmt.Sprintf("Error converting metadata to geojson: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}
	w.Write([]byte(feature.String()))
}

// PreviewImageHandler is a handler for /localindex/preview/{id}.jpg
// @Title localIndexPreviewImageHandler
// @Description performs a redirect to the hosted preview image of a scene
// @Accept  plain
// @Success 302 redirect to actual image
// @Failure 404 {object}  string
// @Router /localindex/preview/{id}.jpg [get]
type PreviewImageHandler struct {
	Context Context
}

// NewPreviewImageHandler creates a new handler using the given DB connection
func NewPreviewImageHandler(connectionProvider db.ConnectionProvider) (*PreviewImageHandler, error) {
	database, err := connectionProvider()
	if err != nil {
		return nil, err
	}
	return &PreviewImageHandler{Context: Context{DB: database}}, nil
}

func (h PreviewImageHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	productID, ok := mux.Vars(r)["id"]
	if !ok {
		message := "No product ID found in URL"
		util.LogAlert(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		return
	}

	tx, err := h.Context.DB.Begin()
	if err != nil {
		message := fmt.Sprintf("Could not begin DB transaction: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		return
	}
	defer tx.Commit()

	previewURL, err := getPreviewURLForProductID(tx, productID)
	if err == sql.ErrNoRows {
		message := fmt.Sprintf("Scene not found: %s", productID)
		util.LogInfo(&h.Context, message)
		util.HTTPError(r, w, &h.Context, message, http.StatusNotFound)
		tx.Rollback()
		return
	}
	if err != nil {
		message := fmt.Sprintf("Server error searching for scene: %v", err)
		util.LogSimpleErr(&h.Context, message, err)
		util.HTTPError(r, w, &h.Context, message, http.StatusInternalServerError)
		tx.Rollback()
		return
	}

	w.Header().Set("Location", previewURL.String())
	w.WriteHeader(http.StatusFound)
}
