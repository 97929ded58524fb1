package hub

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/stac"
	"github.com/venicegeo/sat-datahub/util"
)

// DefaultStacCollections maps platforms onto the collection IDs used by the
// Earth Search endpoint.
var DefaultStacCollections = map[model.Platform]string{
	model.Sentinel2: "sentinel-s2-l1c",
	model.Landsat8:  "landsat-8-l1",
}

// StacHub adapts a STAC API endpoint to the Datahub interface. Collections
// map platforms onto the collection IDs of the endpoint.
type StacHub struct {
	Collections map[model.Platform]string

	stacContext *stac.Context
	context     *Context
}

// NewStacHub opens a STAC endpoint as a catalog
func NewStacHub(stacURL string, collections map[model.Platform]string, context *Context) *StacHub {
	return &StacHub{
		Collections: collections,
		stacContext: &stac.Context{BaseStacURL: stacURL},
		context:     context,
	}
}

func (h *StacHub) collectionFor(platform model.Platform) (string, error) {
	collection, ok := h.Collections[platform]
	if !ok {
		return "", fmt.Errorf("no STAC collection configured for platform %s", platform)
	}
	return collection, nil
}

func (h *StacHub) searchOptions(options SearchOptions) (stac.SearchOptions, error) {
	collection, err := h.collectionFor(options.Platform)
	if err != nil {
		return stac.SearchOptions{}, err
	}
	stacOptions := stac.SearchOptions{
		Collections: []string{collection},
		Datetime: fmt.Sprintf("%s/%s",
			options.FromDate.UTC().Format("2006-01-02T15:04:05Z"),
			options.ToDate.UTC().Format("2006-01-02T15:04:05Z")),
	}
	if len(options.AOI.Bbox) >= 4 {
		stacOptions.Bbox = options.AOI.Bbox[:4]
	}
	return stacOptions, nil
}

// Count reports how many items the endpoint holds for the query
func (h *StacHub) Count(options SearchOptions) (int, error) {
	stacOptions, err := h.searchOptions(options)
	if err != nil {
		return 0, err
	}
	return stac.Count(stacOptions, h.stacContext)
}

// QueryMetadata searches the endpoint and harmonizes every item. Cloud
// cover filtering happens client side, not every STAC endpoint implements
// the query extension.
func (h *StacHub) QueryMetadata(options SearchOptions) (*model.MetadataCollection, error) {
	stacOptions, err := h.searchOptions(options)
	if err != nil {
		return nil, err
	}
	items, err := stac.GetItems(stacOptions, h.stacContext)
	if err != nil {
		return nil, err
	}

	collection := model.MetadataCollection{}
	for _, item := range items {
		meta, err := metadataFromStacItem(item, options.Platform)
		if err != nil {
			return nil, err
		}
		if options.CloudCover != nil && options.Platform != model.Sentinel1 {
			cloudCover := meta.CloudCoverPercentage
			if cloudCover == model.CloudCoverUnknown {
				cloudCover = 0
			}
			if cloudCover < options.CloudCover.Min || cloudCover >= options.CloudCover.Max {
				continue
			}
		}
		collection.Items = append(collection.Items, *meta)
	}
	return &collection, nil
}

// metadataFromStacItem harmonizes a STAC item
func metadataFromStacItem(item stac.Item, platform model.Platform) (*model.Metadata, error) {
	if item.ID == "" {
		return nil, fmt.Errorf("STAC item has no ID")
	}

	meta := model.Metadata{
		ID:                   item.ID,
		Platform:             platform,
		CloudCoverPercentage: model.CloudCoverUnknown,
		SrcID:                item.ID,
		SrcUUID:              item.ID,
	}

	if producttype, ok := item.Properties["producttype"].(string); ok {
		meta.ProductType = producttype
	}
	if direction, ok := item.Properties["sat:orbit_state"].(string); ok {
		meta.OrbitDirection = direction
	}
	if orbit, ok := item.Properties["sat:absolute_orbit"].(float64); ok {
		meta.OrbitNumber = int(orbit)
	}
	if orbit, ok := item.Properties["sat:relative_orbit"].(float64); ok {
		meta.RelativeOrbitNumber = int(orbit)
	}
	if cloudCover, ok := item.Properties["eo:cloud_cover"].(float64); ok {
		meta.CloudCoverPercentage = cloudCover
	}
	if datetime, ok := item.Properties["datetime"].(string); ok && datetime != "" {
		acquired, err := model.ParseHubTime(datetime)
		if err != nil {
			return nil, fmt.Errorf("STAC item %s: %v", item.ID, err)
		}
		meta.AcquisitionDate = acquired
	}
	for _, link := range item.Links {
		if link.Rel == "self" {
			meta.SrcURL = link.Href
			break
		}
	}

	if item.Geometry != nil {
		raw, err := json.Marshal(item.Geometry)
		if err != nil {
			return nil, fmt.Errorf("STAC item %s has a malformed geometry: %v", item.ID, err)
		}
		geometry, err := geojson.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("STAC item %s has a malformed geometry: %v", item.ID, err)
		}
		meta.Geometry = geometry
	}
	return &meta, nil
}

func (h *StacHub) itemByID(platform model.Platform, productUUID string) (*stac.Item, error) {
	collection, err := h.collectionFor(platform)
	if err != nil {
		return nil, err
	}
	items, err := stac.GetItems(stac.SearchOptions{
		Collections: []string{collection},
		IDs:         []string{productUUID},
	}, h.stacContext)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, util.HTTPErr{Status: 404, Message: fmt.Sprintf("No item with ID %v on the STAC endpoint. ", productUUID)}
	}
	return &items[0], nil
}

// DownloadImage fetches every asset of an item into a directory named after
// the product and packs the result into a zip archive.
func (h *StacHub) DownloadImage(platform model.Platform, productUUID string, targetDir string) error {
	item, err := h.itemByID(platform, productUUID)
	if err != nil {
		return err
	}
	if len(item.Assets) == 0 {
		return fmt.Errorf("STAC item %s has no assets", item.ID)
	}

	productDir := filepath.Join(targetDir, item.ID)
	if err = os.MkdirAll(productDir, 0755); err != nil {
		return util.LogSimpleErr(h.context, fmt.Sprintf("Failed to create %v.", productDir), err)
	}
	for _, asset := range item.Assets {
		if _, err = downloadFile(downloadInput{url: asset.Href, outDir: productDir, progress: true}, h.context); err != nil {
			return err
		}
	}

	if _, err = util.Pack(filepath.Join(targetDir, item.ID), productDir); err != nil {
		return util.LogSimpleErr(h.context, fmt.Sprintf("Failed to pack %v.", productDir), err)
	}
	return os.RemoveAll(productDir)
}

// DownloadQuicklook fetches the thumbnail asset of an item and geocodes it
// onto the item bounding box.
func (h *StacHub) DownloadQuicklook(platform model.Platform, productUUID string, targetDir string) error {
	item, err := h.itemByID(platform, productUUID)
	if err != nil {
		return err
	}

	thumbnail := ""
	for key, asset := range item.Assets {
		if key == "thumbnail" || key == "overview" {
			thumbnail = asset.Href
			break
		}
		for _, role := range asset.Roles {
			if role == "thumbnail" || role == "overview" {
				thumbnail = asset.Href
				break
			}
		}
	}
	if thumbnail == "" {
		return fmt.Errorf("STAC item %s has no thumbnail asset", item.ID)
	}

	bbox := geojson.BoundingBox(item.Bbox)
	return saveQuicklook(quicklookInput{
		url:    thumbnail,
		srcID:  item.ID,
		bbox:   bbox,
		outDir: targetDir,
	}, h.context)
}

// Close implements the Datahub interface
func (h *StacHub) Close() error {
	return nil
}
