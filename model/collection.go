package model

import (
	"github.com/venicegeo/geojson-go/geojson"
)

// MetadataCollection is a container type bundling the harmonized
// metadata of multiple products, e.g. the results of a hub query
type MetadataCollection struct {
	Items []Metadata
}

// GeoJSONFeatureCollection implements the GeoJSONFeatureCollectionCreator interface
func (c MetadataCollection) GeoJSONFeatureCollection() (*geojson.FeatureCollection, error) {
	var err error
	features := make([]*geojson.Feature, len(c.Items))
	for i, item := range c.Items {
		if features[i], err = item.GeoJSONFeature(); err != nil {
			return nil, err
		}
	}
	return geojson.NewFeatureCollection(features), nil
}

// Filter returns the subset of the collection whose feature property
// named key equals value, e.g. Filter("producttype", "S2MSI1C")
func (c MetadataCollection) Filter(key string, value interface{}) MetadataCollection {
	filtered := MetadataCollection{}
	for _, item := range c.Items {
		feature, err := item.GeoJSONFeature()
		if err != nil {
			continue
		}
		if feature.Properties[key] == value {
			filtered.Items = append(filtered.Items, item)
		}
	}
	return filtered
}

// Save writes each item to targetDir as a GeoJSON file named by its srcid
func (c MetadataCollection) Save(targetDir string) error {
	for _, item := range c.Items {
		if err := item.Save(targetDir); err != nil {
			return err
		}
	}
	return nil
}
