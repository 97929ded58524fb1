package hub

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/venicegeo/geojson-go/geojson"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/util"
)

const earthExplorerMaxResults = 10000

// EarthExplorerHub queries the USGS EarthExplorer JSON API. Landsat
// products themselves are fetched from the public object store, the API
// only serves metadata.
type EarthExplorerHub struct {
	context *Context
	apiKey  string
}

// NewEarthExplorerHub logs into the EarthExplorer API
func NewEarthExplorerHub(context *Context) (*EarthExplorerHub, error) {
	hub := EarthExplorerHub{context: context}

	user := context.EarthExplorerUser
	password := context.EarthExplorerPassword
	if user == "" || password == "" {
		return nil, fmt.Errorf("EarthExplorer credentials are not configured")
	}

	var response earthExplorerResponse
	if err := hub.call("login", map[string]interface{}{"username": user, "password": password}, &response); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(response.Data, &hub.apiKey); err != nil || hub.apiKey == "" {
		return nil, util.LogSimpleErr(context, "EarthExplorer login returned no API key.", err)
	}
	return &hub, nil
}

type earthExplorerResponse struct {
	Data         json.RawMessage `json:"data"`
	ErrorCode    string          `json:"errorCode"`
	ErrorMessage string          `json:"error"`
}

func (h *EarthExplorerHub) call(endpoint string, payload map[string]interface{}, response *earthExplorerResponse) error {
	callURL := strings.TrimSuffix(h.context.BaseEarthExplorerURL, "/") + "/" + endpoint
	if h.apiKey != "" {
		payload["apiKey"] = h.apiKey
	}
	util.LogAudit(h.context, util.LogAuditInput{Actor: "hub/EarthExplorerHub", Action: "POST", Actee: callURL, Message: "Querying EarthExplorer", Severity: util.INFO})

	body, err := util.ReqByObjJSON("POST", callURL, "", payload, response)
	if err != nil {
		return util.LogSimpleErr(h.context, fmt.Sprintf("Failed to call EarthExplorer endpoint %v.", endpoint), err)
	}
	if response.ErrorCode != "" {
		eeErr := util.Error{
			LogMsg:    fmt.Sprintf("EarthExplorer %s failed with code %s: %s", endpoint, response.ErrorCode, response.ErrorMessage),
			SimpleMsg: "EarthExplorer rejected the request. See log for further details.",
			Response:  body,
			URL:       callURL,
		}
		return eeErr.Log(h.context, "")
	}
	return nil
}

type earthExplorerSearchData struct {
	Results []earthExplorerScene `json:"results"`
}

type earthExplorerScene struct {
	EntityID         string          `json:"entityId"`
	DisplayID        string          `json:"displayId"`
	AcquisitionDate  string          `json:"acquisitionDate"`
	ModifiedDate     string          `json:"modifiedDate"`
	CloudCover       *float64        `json:"cloudCover"`
	DataAccessURL    string          `json:"dataAccessUrl"`
	BrowseURL        string          `json:"browseUrl"`
	Summary          string          `json:"summary"`
	SpatialFootprint json.RawMessage `json:"spatialFootprint"`
}

// QueryMetadata searches EarthExplorer inside the AOI bounding box and
// harmonizes every scene
func (h *EarthExplorerHub) QueryMetadata(options SearchOptions) (*model.MetadataCollection, error) {
	bbox := options.AOI.Bbox
	if len(bbox) < 4 {
		return nil, fmt.Errorf("EarthExplorer queries need an area of interest")
	}

	payload := map[string]interface{}{
		"datasetName": options.Platform.String(),
		"spatialFilter": map[string]interface{}{
			"filterType": "mbr",
			"lowerLeft":  map[string]float64{"longitude": bbox[0], "latitude": bbox[1]},
			"upperRight": map[string]float64{"longitude": bbox[2], "latitude": bbox[3]},
		},
		"temporalFilter": map[string]string{
			"startDate": options.FromDate.UTC().Format("2006-01-02"),
			"endDate":   options.ToDate.UTC().Format("2006-01-02"),
		},
		"maxResults": earthExplorerMaxResults,
	}
	if options.CloudCover != nil {
		payload["maxCloudCover"] = options.CloudCover.Max
	}

	var response earthExplorerResponse
	if err := h.call("search", payload, &response); err != nil {
		return nil, err
	}
	var data earthExplorerSearchData
	if err := json.Unmarshal(response.Data, &data); err != nil {
		return nil, util.LogSimpleErr(h.context, "Failed to Unmarshal EarthExplorer search results.", err)
	}

	collection := model.MetadataCollection{}
	for _, scene := range data.Results {
		meta, err := metadataFromEarthExplorerScene(scene)
		if err != nil {
			return nil, err
		}
		collection.Items = append(collection.Items, *meta)
	}
	return &collection, nil
}

// metadataFromEarthExplorerScene harmonizes one search result. The platform
// hides in the dataAccessUrl and path/row hide in the summary text, the API
// does not expose them as fields.
func metadataFromEarthExplorerScene(scene earthExplorerScene) (*model.Metadata, error) {
	if scene.DisplayID == "" || scene.EntityID == "" {
		return nil, fmt.Errorf("EarthExplorer scene is missing its displayId or entityId")
	}

	platformName := substringBetween(scene.DataAccessURL, "dataset_name=", "&ordered=")
	platform, err := model.ParsePlatform(platformName)
	if err != nil {
		return nil, fmt.Errorf("EarthExplorer scene %s: %v", scene.DisplayID, err)
	}

	meta := model.Metadata{
		ID:                   scene.DisplayID,
		Platform:             platform,
		ProductType:          "L1TP",
		OrbitDirection:       "DESCENDING",
		CloudCoverPercentage: model.CloudCoverUnknown,
		Format:               model.GeoTIFF,
		SrcID:                scene.DisplayID,
		SrcURL:               scene.DataAccessURL,
		SrcUUID:              scene.EntityID,
	}

	if scene.CloudCover != nil {
		meta.CloudCoverPercentage = math.Round(*scene.CloudCover*100) / 100
	}
	meta.OrbitNumber, _ = strconv.Atoi(substringBetween(scene.Summary, "Path: ", ", Row: "))
	if rowStart := strings.LastIndex(scene.Summary, "Row: "); rowStart >= 0 {
		meta.RelativeOrbitNumber, _ = strconv.Atoi(strings.TrimSpace(scene.Summary[rowStart+len("Row: "):]))
	}

	if scene.AcquisitionDate != "" {
		if meta.AcquisitionDate, err = model.ParseHubTime(scene.AcquisitionDate); err != nil {
			return nil, fmt.Errorf("EarthExplorer scene %s: %v", scene.DisplayID, err)
		}
	}
	if scene.ModifiedDate != "" {
		if meta.IngestionDate, err = model.ParseHubTime(scene.ModifiedDate); err != nil {
			return nil, fmt.Errorf("EarthExplorer scene %s: %v", scene.DisplayID, err)
		}
	}

	if len(scene.SpatialFootprint) > 0 {
		geometry, err := geojson.Parse(scene.SpatialFootprint)
		if err != nil {
			return nil, fmt.Errorf("EarthExplorer scene %s has a malformed footprint: %v", scene.DisplayID, err)
		}
		meta.Geometry = geometry
	}
	return &meta, nil
}

func substringBetween(input, from, to string) string {
	start := strings.Index(input, from)
	if start < 0 {
		return ""
	}
	start += len(from)
	end := strings.LastIndex(input, to)
	if end < start {
		return ""
	}
	return input[start:end]
}

// sceneByUUID resolves an entity ID to its full metadata record
func (h *EarthExplorerHub) sceneByUUID(platform model.Platform, productUUID string) (*earthExplorerScene, error) {
	payload := map[string]interface{}{
		"datasetName": platform.String(),
		"entityIds":   []string{productUUID},
	}
	var response earthExplorerResponse
	if err := h.call("metadata", payload, &response); err != nil {
		return nil, err
	}
	var scenes []earthExplorerScene
	if err := json.Unmarshal(response.Data, &scenes); err != nil {
		return nil, util.LogSimpleErr(h.context, "Failed to Unmarshal EarthExplorer metadata results.", err)
	}
	if len(scenes) == 0 {
		return nil, util.HTTPErr{Status: 404, Message: fmt.Sprintf("No scene with entity ID %v on EarthExplorer. ", productUUID)}
	}
	return &scenes[0], nil
}

// DownloadImage resolves the product ID and fetches the product from the
// public Landsat object store, packed into a zip archive.
func (h *EarthExplorerHub) DownloadImage(platform model.Platform, productUUID string, targetDir string) error {
	scene, err := h.sceneByUUID(platform, productUUID)
	if err != nil {
		return err
	}
	return downloadLandsatProduct(scene.DisplayID, h.context.BaseLandsatHost, targetDir, h.context)
}

// DownloadQuicklook fetches the browse image and geocodes it onto the scene
// footprint.
func (h *EarthExplorerHub) DownloadQuicklook(platform model.Platform, productUUID string, targetDir string) error {
	scene, err := h.sceneByUUID(platform, productUUID)
	if err != nil {
		return err
	}
	if scene.BrowseURL == "" {
		return fmt.Errorf("scene %s has no browse image", scene.DisplayID)
	}

	meta, err := metadataFromEarthExplorerScene(*scene)
	if err != nil {
		return err
	}
	feature, err := meta.GeoJSONFeature()
	if err != nil {
		return err
	}
	return saveQuicklook(quicklookInput{
		url:    scene.BrowseURL,
		srcID:  scene.DisplayID,
		bbox:   feature.ForceBbox(),
		outDir: targetDir,
	}, h.context)
}

// Close logs out of the EarthExplorer API
func (h *EarthExplorerHub) Close() error {
	if h.apiKey == "" {
		return nil
	}
	var response earthExplorerResponse
	err := h.call("logout", map[string]interface{}{}, &response)
	h.apiKey = ""
	return err
}
