package stac

import (
	"github.com/venicegeo/sat-datahub/util"
)

// Context is the context for a STAC API operation
type Context struct {
	BaseStacURL string
	sessionID   string
}

// AppName returns the name of the application
func (c *Context) AppName() string {
	return "sat-datahub"
}

// SessionID returns a Session ID, creating one if needed
func (c *Context) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = util.PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *Context) LogRootDir() string {
	return ""
}

// SearchOptions are the search options for a STAC item search
type SearchOptions struct {
	Collections []string
	IDs         []string
	Bbox        []float64
	Intersects  interface{}
	Datetime    string
	Limit       int
}

type searchRequest struct {
	Collections []string    `json:"collections,omitempty"`
	IDs         []string    `json:"ids,omitempty"`
	Bbox        []float64   `json:"bbox,omitempty"`
	Intersects  interface{} `json:"intersects,omitempty"`
	Datetime    string      `json:"datetime,omitempty"`
	Limit       int         `json:"limit,omitempty"`
}

// Item is a STAC item
type Item struct {
	Type        string                 `json:"type"`
	StacVersion string                 `json:"stac_version,omitempty"`
	ID          string                 `json:"id"`
	Collection  string                 `json:"collection,omitempty"`
	Geometry    interface{}            `json:"geometry"`
	Bbox        []float64              `json:"bbox,omitempty"`
	Properties  map[string]interface{} `json:"properties"`
	Assets      map[string]Asset       `json:"assets,omitempty"`
	Links       []Link                 `json:"links,omitempty"`
}

// Asset is a STAC asset belonging to an item
type Asset struct {
	Href  string   `json:"href"`
	Title string   `json:"title,omitempty"`
	Type  string   `json:"type,omitempty"`
	Roles []string `json:"roles,omitempty"`
}

// Link is a STAC hypermedia link
type Link struct {
	Rel   string `json:"rel"`
	Href  string `json:"href"`
	Type  string `json:"type,omitempty"`
	Title string `json:"title,omitempty"`
}

// Collection is a STAC collection
type Collection struct {
	Type        string      `json:"type,omitempty"`
	StacVersion string      `json:"stac_version,omitempty"`
	ID          string      `json:"id"`
	Title       string      `json:"title,omitempty"`
	Description string      `json:"description,omitempty"`
	License     string      `json:"license,omitempty"`
	Extent      interface{} `json:"extent,omitempty"`
	Links       []Link      `json:"links,omitempty"`
}

type searchContext struct {
	Matched  int `json:"matched"`
	Returned int `json:"returned"`
	Limit    int `json:"limit"`
}

type searchResponse struct {
	Type     string        `json:"type"`
	Context  searchContext `json:"context"`
	Features []Item        `json:"features"`
	Links    []Link        `json:"links"`
}

type collectionsResponse struct {
	Collections []Collection `json:"collections"`
}
