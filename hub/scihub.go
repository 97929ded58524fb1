package hub

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/venicegeo/sat-datahub/model"
	"github.com/venicegeo/sat-datahub/util"
)

const scihubPageSize = 100

// SciHubHub queries the Copernicus Open Access Hub through its OpenSearch
// API and downloads products through OData.
type SciHubHub struct {
	context *Context
}

// NewSciHubHub connects to the Copernicus Open Access Hub
func NewSciHubHub(context *Context) *SciHubHub {
	return &SciHubHub{context: context}
}

func (h *SciHubHub) auth() string {
	credentials := h.context.ScihubUser + ":" + h.context.ScihubPassword
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(credentials))
}

// QueryMetadata searches the hub page by page and harmonizes every entry
func (h *SciHubHub) QueryMetadata(options SearchOptions) (*model.MetadataCollection, error) {
	query := h.buildQuery(options)
	collection := model.MetadataCollection{}

	for start := 0; ; start += scihubPageSize {
		feed, err := h.searchPage(query, start)
		if err != nil {
			return nil, err
		}
		for _, entry := range feed.Entries {
			meta, err := metadataFromScihubEntry(entry)
			if err != nil {
				return nil, err
			}
			collection.Items = append(collection.Items, *meta)
		}
		total, _ := strconv.Atoi(feed.TotalResults)
		if start+scihubPageSize >= total || len(feed.Entries) == 0 {
			break
		}
	}
	return &collection, nil
}

func (h *SciHubHub) buildQuery(options SearchOptions) string {
	clauses := []string{
		"platformname:" + options.Platform.String(),
		fmt.Sprintf("beginposition:[%s TO %s]",
			options.FromDate.UTC().Format("2006-01-02T15:04:05Z"),
			options.ToDate.UTC().Format("2006-01-02T15:04:05Z")),
	}
	if len(options.AOI.Bbox) >= 4 {
		clauses = append(clauses, fmt.Sprintf(`footprint:"Intersects(%s)"`, wktFromBbox(options.AOI.Bbox)))
	}
	if options.CloudCover != nil && options.Platform != model.Sentinel1 {
		clauses = append(clauses, fmt.Sprintf("cloudcoverpercentage:[%v TO %v]", options.CloudCover.Min, options.CloudCover.Max))
	}
	return strings.Join(clauses, " AND ")
}

func (h *SciHubHub) searchPage(query string, start int) (*scihubFeed, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s&rows=%d&start=%d&format=json",
		strings.TrimSuffix(h.context.BaseScihubURL, "/"), url.QueryEscape(query), scihubPageSize, start)

	request, err := http.NewRequest("GET", searchURL, nil)
	if err != nil {
		return nil, util.LogSimpleErr(h.context, fmt.Sprintf("Failed to make a new HTTP request for %v.", searchURL), err)
	}
	request.Header.Set("Authorization", h.auth())
	util.LogAudit(h.context, util.LogAuditInput{Actor: "hub/SciHubHub", Action: "GET", Actee: searchURL, Message: "Querying SciHub", Severity: util.INFO})

	response, err := doRequest(request)
	if err != nil {
		return nil, util.LogSimpleErr(h.context, "Failed to query SciHub.", err)
	}
	defer response.Body.Close()
	body, _ := io.ReadAll(response.Body)

	if response.StatusCode != 200 {
		message := fmt.Sprintf("Failed to query SciHub: %v. ", response.Status)
		util.LogAlert(h.context, message)
		return nil, util.HTTPErr{Status: response.StatusCode, Message: message}
	}

	var result scihubSearchResponse
	if err = json.Unmarshal(body, &result); err != nil {
		hubErr := util.Error{
			LogMsg:    "Failed to Unmarshal response from SciHub: " + err.Error(),
			SimpleMsg: "SciHub returned an unexpected response for this request. See log for further details.",
			Response:  string(body),
			URL:       searchURL,
		}
		return nil, hubErr.Log(h.context, "")
	}
	return &result.Feed, nil
}

// DownloadImage fetches the full product zip through OData, skipping files
// that are already complete and verifying the hub checksum.
func (h *SciHubHub) DownloadImage(platform model.Platform, productUUID string, targetDir string) error {
	info, err := h.productInfo(productUUID)
	if err != nil {
		return err
	}

	downloadURL := h.odataURL(productUUID, "/$value")
	filePath, err := downloadFile(downloadInput{
		url:      downloadURL,
		outDir:   targetDir,
		fileName: info.SrcID + ".zip",
		auth:     h.auth(),
		progress: true,
	}, h.context)
	if err != nil {
		return err
	}

	checksum, err := h.productChecksum(productUUID)
	if err != nil {
		return err
	}
	if err = verifyMD5(filePath, checksum); err != nil {
		return util.LogSimpleErr(h.context, fmt.Sprintf("Download of %v corrupted.", productUUID), err)
	}
	return nil
}

// DownloadQuicklook fetches the product quicklook and geocodes it onto the
// scene footprint.
func (h *SciHubHub) DownloadQuicklook(platform model.Platform, productUUID string, targetDir string) error {
	info, err := h.productInfo(productUUID)
	if err != nil {
		return err
	}
	return saveQuicklook(quicklookInput{
		url:    h.odataURL(productUUID, "/Products('Quicklook')/$value"),
		auth:   h.auth(),
		srcID:  info.SrcID,
		bbox:   info.Bbox,
		outDir: targetDir,
	}, h.context)
}

// Close implements the Datahub interface
func (h *SciHubHub) Close() error {
	return nil
}

func (h *SciHubHub) odataURL(productUUID, suffix string) string {
	return fmt.Sprintf("%s/odata/v1/Products('%s')%s",
		strings.TrimSuffix(h.context.BaseScihubURL, "/"), productUUID, suffix)
}

type scihubProductInfo struct {
	SrcID string
	Bbox  []float64
}

// productInfo resolves a product UUID to its identifier and footprint
// bounds through an OpenSearch lookup.
func (h *SciHubHub) productInfo(productUUID string) (*scihubProductInfo, error) {
	feed, err := h.searchPage("uuid:"+productUUID, 0)
	if err != nil {
		return nil, err
	}
	if len(feed.Entries) == 0 {
		return nil, util.HTTPErr{Status: 404, Message: fmt.Sprintf("No product with UUID %v on SciHub. ", productUUID)}
	}
	meta, err := metadataFromScihubEntry(feed.Entries[0])
	if err != nil {
		return nil, err
	}

	feature, err := meta.GeoJSONFeature()
	if err != nil {
		return nil, err
	}
	return &scihubProductInfo{SrcID: meta.SrcID, Bbox: feature.ForceBbox()}, nil
}

type scihubChecksumResponse struct {
	D struct {
		Checksum struct {
			Algorithm string `json:"Algorithm"`
			Value     string `json:"Value"`
		} `json:"Checksum"`
	} `json:"d"`
}

func (h *SciHubHub) productChecksum(productUUID string) (string, error) {
	var response scihubChecksumResponse
	infoURL := h.odataURL(productUUID, "?$format=json")
	if _, err := util.ReqByObjJSON("GET", infoURL, h.auth(), nil, &response); err != nil {
		return "", util.LogSimpleErr(h.context, fmt.Sprintf("Failed to read the checksum of %v.", productUUID), err)
	}
	return response.D.Checksum.Value, nil
}

// wktFromBbox renders a bounding box as a WKT polygon the OpenSearch
// footprint clause understands.
func wktFromBbox(bbox []float64) string {
	coord := func(x, y float64) string {
		return strconv.FormatFloat(x, 'f', -1, 64) + " " + strconv.FormatFloat(y, 'f', -1, 64)
	}
	return fmt.Sprintf("POLYGON((%s,%s,%s,%s,%s))",
		coord(bbox[0], bbox[1]), coord(bbox[2], bbox[1]), coord(bbox[2], bbox[3]), coord(bbox[0], bbox[3]), coord(bbox[0], bbox[1]))
}
