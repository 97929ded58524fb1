package stac

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleItem(id string) Item {
	return Item{
		Type:       "Feature",
		ID:         id,
		Collection: "sentinel-2-l1c",
		Geometry: map[string]interface{}{
			"type":        "Polygon",
			"coordinates": [][][]float64{{{8, 48}, {9, 48}, {9, 49}, {8, 49}, {8, 48}}},
		},
		Bbox:       []float64{8, 48, 9, 49},
		Properties: map[string]interface{}{"datetime": "2020-05-09T10:20:31Z", "eo:cloud_cover": 12.5},
		Assets: map[string]Asset{
			"visual": {Href: "https://example.localdomain/visual.tif", Type: "image/tiff"},
		},
	}
}

func searchHandler(t *testing.T, pageSize, matched int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "POST", r.Method)

		page := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &page)

		response := searchResponse{Type: "FeatureCollection", Context: searchContext{Matched: matched}}
		for i := 0; i < pageSize; i++ {
			response.Features = append(response.Features, sampleItem(fmt.Sprintf("item-%d-%d", page, i)))
		}
		if (page+1)*pageSize < matched {
			response.Links = []Link{{Rel: "next", Href: fmt.Sprintf("http://%s/search?page=%d", r.Host, page+1)}}
		}
		json.NewEncoder(w).Encode(response)
	}
}

func TestCount(t *testing.T) {
	server := httptest.NewServer(searchHandler(t, 1, 42))
	defer server.Close()

	count, err := Count(SearchOptions{Collections: []string{"sentinel-2-l1c"}}, &Context{BaseStacURL: server.URL})
	assert.Nil(t, err)
	assert.Equal(t, 42, count)
}

func TestGetItemsPagination(t *testing.T) {
	server := httptest.NewServer(searchHandler(t, 2, 6))
	defer server.Close()

	items, err := GetItems(SearchOptions{Bbox: []float64{8, 48, 9, 49}}, &Context{BaseStacURL: server.URL})
	assert.Nil(t, err)
	assert.Len(t, items, 6, "all pages should be followed")
	assert.Equal(t, "item-0-0", items[0].ID)
	assert.Equal(t, "item-2-1", items[5].ID)
}

func TestGetItemsLimit(t *testing.T) {
	server := httptest.NewServer(searchHandler(t, 2, 6))
	defer server.Close()

	items, err := GetItems(SearchOptions{Limit: 3}, &Context{BaseStacURL: server.URL})
	assert.Nil(t, err)
	assert.Len(t, items, 3, "the limit should cut pagination short")
}

func TestSearchGetFallback(t *testing.T) {
	var sawGet bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == "POST" {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		sawGet = true
		assert.Equal(t, "8,48,9,49", r.URL.Query().Get("bbox"))
		json.NewEncoder(w).Encode(searchResponse{
			Type:     "FeatureCollection",
			Context:  searchContext{Matched: 1},
			Features: []Item{sampleItem("fallback-item")},
		})
	}))
	defer server.Close()

	items, err := GetItems(SearchOptions{Bbox: []float64{8, 48, 9, 49}}, &Context{BaseStacURL: server.URL})
	assert.Nil(t, err)
	assert.True(t, sawGet, "a 405 response should trigger the GET fallback")
	assert.Len(t, items, 1)
	assert.Equal(t, "fallback-item", items[0].ID)
}

func TestSearchErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such collection", http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := GetItems(SearchOptions{}, &Context{BaseStacURL: server.URL})
	assert.NotNil(t, err)
}

func TestGetCollections(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/collections":
			json.NewEncoder(w).Encode(collectionsResponse{Collections: []Collection{
				{ID: "sentinel-2-l1c"}, {ID: "landsat-8-l1"},
			}})
		case "/collections/landsat-8-l1":
			json.NewEncoder(w).Encode(Collection{ID: "landsat-8-l1", Title: "Landsat 8 L1"})
		default:
			http.NotFound(w, r)
		}
	}))
	defer server.Close()

	context := &Context{BaseStacURL: server.URL}

	collections, err := GetCollections("", context)
	assert.Nil(t, err)
	assert.Len(t, collections, 2)

	collections, err = GetCollections("landsat-8-l1", context)
	assert.Nil(t, err)
	assert.Len(t, collections, 1)
	assert.Equal(t, "Landsat 8 L1", collections[0].Title)
}
