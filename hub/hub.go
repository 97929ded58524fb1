// Package hub queries heterogeneous satellite-image catalogs for harmonized
// scene metadata and downloads full products and quicklooks. Local metadata
// directories, the USGS EarthExplorer API and the Copernicus SciHub are
// supported behind one Datahub interface.
package hub

import (
	"fmt"
	"time"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/util"
)

// Source names a supported catalog backend
type Source string

const (
	// File queries a local directory of harmonized metadata files
	File Source = "file"
	// EarthExplorer queries the USGS EarthExplorer JSON API
	EarthExplorer Source = "earthexplorer"
	// SciHub queries the Copernicus Open Access Hub
	SciHub Source = "scihub"
	// Stac queries a STAC API endpoint
	Stac Source = "stac"
)

// ParseSource resolves a catalog name
func ParseSource(input string) (Source, error) {
	switch Source(input) {
	case File, EarthExplorer, SciHub, Stac:
		return Source(input), nil
	}
	return "", fmt.Errorf("unrecognized datahub source %q, supported are file, earthexplorer, scihub and stac", input)
}

// CloudCoverRange restricts scenes to cloud cover percentages in [Min, Max)
type CloudCoverRange struct {
	Min float64
	Max float64
}

// SearchOptions are the harmonized query parameters shared by all catalogs
type SearchOptions struct {
	Platform model.Platform
	AOI      model.AOI
	FromDate time.Time
	ToDate   time.Time
	// CloudCover is ignored for Sentinel-1 scenes, radar has no clouds
	CloudCover *CloudCoverRange
}

// Datahub is a queryable scene catalog. Implementations that hold sessions
// release them in Close.
type Datahub interface {
	QueryMetadata(options SearchOptions) (*model.MetadataCollection, error)
	DownloadImage(platform model.Platform, productUUID string, targetDir string) error
	DownloadQuicklook(platform model.Platform, productUUID string, targetDir string) error
	Close() error
}

// Context is the context for datahub operations
type Context struct {
	BaseScihubURL         string
	BaseEarthExplorerURL  string
	BaseLandsatHost       string
	BaseStacURL           string
	ScihubUser            string
	ScihubPassword        string
	EarthExplorerUser     string
	EarthExplorerPassword string
	sessionID             string
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

// NewContextFromEnv builds a Context from the process environment, falling
// back to the public endpoints. Credentials stay empty when unset, not every
// source needs them.
func NewContextFromEnv() *Context {
	context := Context{
		BaseScihubURL:        util.GetScihubURL(),
		BaseEarthExplorerURL: util.GetEarthExplorerURL(),
		BaseLandsatHost:      util.GetLandsatHost(),
		BaseStacURL:          util.GetStacAPIURL(),
	}
	context.ScihubUser, _ = util.EnvGet(util.SCIHUB_USER)
	context.ScihubPassword, _ = util.EnvGet(util.SCIHUB_PW)
	context.EarthExplorerUser, _ = util.EnvGet(util.EARTHEXPLORER_USER)
	context.EarthExplorerPassword, _ = util.EnvGet(util.EARTHEXPLORER_PW)
	return &context
}

// Open connects to a catalog backend. The dir argument only applies to the
// File source, credentials come from the Context.
func Open(source Source, dir string, substrings []string, context *Context) (Datahub, error) {
	switch source {
	case File:
		return NewFileHub(dir, substrings, context)
	case EarthExplorer:
		return NewEarthExplorerHub(context)
	case SciHub:
		return NewSciHubHub(context), nil
	case Stac:
		if context.BaseStacURL == "" {
			return nil, fmt.Errorf("no STAC API URL is configured")
		}
		return NewStacHub(context.BaseStacURL, DefaultStacCollections, context), nil
	}
	return nil, fmt.Errorf("unrecognized datahub source %q", source)
}
