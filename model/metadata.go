package model

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/venicegeo/geojson-go/geojson"
)

// Metadata is the harmonized metadata container for a single satellite
// image product, independent of which hub it came from
type Metadata struct {
	ID                   string
	Platform             Platform
	ProductType          string
	OrbitDirection       string
	OrbitNumber          int
	RelativeOrbitNumber  int
	AcquisitionDate      time.Time
	IngestionDate        time.Time
	ProcessingDate       time.Time
	ProcessingSteps      string
	ProcessingVersion    string
	BandList             string
	CloudCoverPercentage float64 // CloudCoverUnknown if the source reported none
	Format               FileFormat
	Size                 string
	SrcID                string
	SrcURL               string
	SrcUUID              string
	Geometry             interface{}
}

func formatOptionalDate(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t.Format(StandardTimeLayout)
}

// GeoJSONFeature implements the GeoJSONFeatureCreator interface
func (m Metadata) GeoJSONFeature() (*geojson.Feature, error) {
	if m.ID == "" {
		return nil, fmt.Errorf("metadata for srcuuid `%s` has no product ID", m.SrcUUID)
	}
	feature := geojson.NewFeature(m.Geometry, m.ID, map[string]interface{}{
		"id":                   m.ID,
		"platformname":         m.Platform.String(),
		"producttype":          m.ProductType,
		"orbitdirection":       m.OrbitDirection,
		"orbitnumber":          m.OrbitNumber,
		"relativeorbitnumber":  m.RelativeOrbitNumber,
		"acquisitiondate":      formatOptionalDate(m.AcquisitionDate),
		"ingestiondate":        formatOptionalDate(m.IngestionDate),
		"processingdate":       formatOptionalDate(m.ProcessingDate),
		"processingsteps":      m.ProcessingSteps,
		"processingversion":    m.ProcessingVersion,
		"bandlist":             m.BandList,
		"cloudcoverpercentage": m.CloudCoverPercentage,
		"format":               string(m.Format),
		"size":                 m.Size,
		"srcid":                m.SrcID,
		"srcurl":               m.SrcURL,
		"srcuuid":              m.SrcUUID,
	})
	if m.Geometry != nil {
		feature.Bbox = feature.ForceBbox()
	}
	return feature, nil
}

// MetadataFromFeature harmonizes a metadata GeoJSON feature, validating
// the fields every hub must provide
func MetadataFromFeature(feature *geojson.Feature) (*Metadata, error) {
	id := feature.PropertyString("id")
	if id == "" {
		id = feature.IDStr()
	}
	if id == "" {
		return nil, fmt.Errorf("metadata feature has no product ID")
	}

	platform, err := ParsePlatform(feature.PropertyString("platformname"))
	if err != nil {
		return nil, err
	}

	srcID := feature.PropertyString("srcid")
	srcUUID := feature.PropertyString("srcuuid")
	if srcID == "" || srcUUID == "" {
		return nil, fmt.Errorf("metadata feature `%s` is missing srcid or srcuuid", id)
	}

	meta := Metadata{
		ID:                   id,
		Platform:             platform,
		ProductType:          feature.PropertyString("producttype"),
		OrbitDirection:       feature.PropertyString("orbitdirection"),
		OrbitNumber:          feature.PropertyInt("orbitnumber"),
		RelativeOrbitNumber:  feature.PropertyInt("relativeorbitnumber"),
		ProcessingSteps:      feature.PropertyString("processingsteps"),
		ProcessingVersion:    feature.PropertyString("processingversion"),
		BandList:             feature.PropertyString("bandlist"),
		CloudCoverPercentage: CloudCoverUnknown,
		Format:               FileFormat(feature.PropertyString("format")),
		Size:                 feature.PropertyString("size"),
		SrcID:                srcID,
		SrcURL:               feature.PropertyString("srcurl"),
		SrcUUID:              srcUUID,
		Geometry:             feature.Geometry,
	}

	if cc, ok := feature.Properties["cloudcoverpercentage"].(float64); ok {
		meta.CloudCoverPercentage = cc
	}

	for property, target := range map[string]*time.Time{
		"acquisitiondate": &meta.AcquisitionDate,
		"ingestiondate":   &meta.IngestionDate,
		"processingdate":  &meta.ProcessingDate,
	} {
		dateStr := feature.PropertyString(property)
		if dateStr == "" {
			continue
		}
		if *target, err = ParseHubTime(dateStr); err != nil {
			return nil, fmt.Errorf("metadata feature `%s`: %v", id, err)
		}
	}

	return &meta, nil
}

// MetadataFromBytes harmonizes a raw metadata GeoJSON document
func MetadataFromBytes(data []byte) (*Metadata, error) {
	parsed, err := geojson.Parse(data)
	if err != nil {
		return nil, err
	}
	feature, ok := parsed.(*geojson.Feature)
	if !ok {
		return nil, fmt.Errorf("expected a GeoJSON Feature and got %T", parsed)
	}
	return MetadataFromFeature(feature)
}

// Save writes the metadata as a GeoJSON file named <srcid>.json in targetDir
func (m Metadata) Save(targetDir string) error {
	feature, err := m.GeoJSONFeature()
	if err != nil {
		return err
	}
	data, err := json.Marshal(feature)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(targetDir, m.SrcID+".json"), data, 0644)
}
