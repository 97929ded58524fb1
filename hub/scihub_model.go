package hub

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/venicegeo/sat-datahub/model"
)

type scihubSearchResponse struct {
	Feed scihubFeed `json:"feed"`
}

type scihubFeed struct {
	TotalResults string        `json:"opensearch:totalResults"`
	Entries      scihubEntries `json:"entry"`
}

// scihubEntries tolerates the hub collapsing a single result into a bare
// object instead of a one-element array
type scihubEntries []scihubEntry

func (e *scihubEntries) UnmarshalJSON(data []byte) error {
	var list []scihubEntry
	if err := json.Unmarshal(data, &list); err == nil {
		*e = list
		return nil
	}
	var single scihubEntry
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*e = scihubEntries{single}
	return nil
}

type scihubEntry struct {
	Title   string          `json:"title"`
	ID      string          `json:"id"`
	Links   scihubLinks     `json:"link"`
	Strs    scihubFieldList `json:"str"`
	Ints    scihubFieldList `json:"int"`
	Doubles scihubFieldList `json:"double"`
	Dates   scihubFieldList `json:"date"`
}

type scihubLink struct {
	Rel  string `json:"rel"`
	Href string `json:"href"`
}

type scihubLinks []scihubLink

func (l *scihubLinks) UnmarshalJSON(data []byte) error {
	var list []scihubLink
	if err := json.Unmarshal(data, &list); err == nil {
		*l = list
		return nil
	}
	var single scihubLink
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*l = scihubLinks{single}
	return nil
}

// scihubValue tolerates the hub serializing numeric fields both quoted and
// unquoted
type scihubValue string

func (v *scihubValue) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*v = scihubValue(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*v = scihubValue(num.String())
	return nil
}

type scihubField struct {
	Name    string      `json:"name"`
	Content scihubValue `json:"content"`
}

type scihubFieldList []scihubField

func (f *scihubFieldList) UnmarshalJSON(data []byte) error {
	var list []scihubField
	if err := json.Unmarshal(data, &list); err == nil {
		*f = list
		return nil
	}
	var single scihubField
	if err := json.Unmarshal(data, &single); err != nil {
		return err
	}
	*f = scihubFieldList{single}
	return nil
}

func (f scihubFieldList) get(name string) string {
	for _, field := range f {
		if field.Name == name {
			return string(field.Content)
		}
	}
	return ""
}

// metadataFromScihubEntry harmonizes one OpenSearch result entry
func metadataFromScihubEntry(entry scihubEntry) (*model.Metadata, error) {
	if entry.Title == "" || entry.ID == "" {
		return nil, fmt.Errorf("SciHub entry is missing its identifier or uuid")
	}

	platform, err := model.ParsePlatform(entry.Strs.get("platformname"))
	if err != nil {
		return nil, fmt.Errorf("SciHub entry %s: %v", entry.Title, err)
	}

	meta := model.Metadata{
		ID:                   entry.Title,
		Platform:             platform,
		ProductType:          entry.Strs.get("producttype"),
		OrbitDirection:       entry.Strs.get("orbitdirection"),
		CloudCoverPercentage: model.CloudCoverUnknown,
		Format:               model.FileFormat(entry.Strs.get("format")),
		Size:                 entry.Strs.get("size"),
		SrcID:                entry.Title,
		SrcUUID:              entry.ID,
	}

	meta.OrbitNumber, _ = strconv.Atoi(entry.Ints.get("orbitnumber"))
	meta.RelativeOrbitNumber, _ = strconv.Atoi(entry.Ints.get("relativeorbitnumber"))
	if cc, err := strconv.ParseFloat(entry.Doubles.get("cloudcoverpercentage"), 64); err == nil {
		meta.CloudCoverPercentage = cc
	}

	for _, link := range entry.Links {
		if link.Rel == "" {
			meta.SrcURL = link.Href
			break
		}
	}

	if acquired := entry.Dates.get("beginposition"); acquired != "" {
		if meta.AcquisitionDate, err = model.ParseHubTime(acquired); err != nil {
			return nil, fmt.Errorf("SciHub entry %s: %v", entry.Title, err)
		}
	}
	if ingested := entry.Dates.get("ingestiondate"); ingested != "" {
		if meta.IngestionDate, err = model.ParseHubTime(ingested); err != nil {
			return nil, fmt.Errorf("SciHub entry %s: %v", entry.Title, err)
		}
	}

	if footprint := entry.Strs.get("footprint"); footprint != "" {
		aoi, err := model.ParseAOI(footprint)
		if err != nil {
			return nil, fmt.Errorf("SciHub entry %s has a malformed footprint: %v", entry.Title, err)
		}
		meta.Geometry = aoi.Geometry
	}

	return &meta, nil
}
