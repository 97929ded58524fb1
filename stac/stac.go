// Package stac is a client for STAC API endpoints in the item-search
// flavor. Searches go out as POST requests and fall back to GET with
// flattened parameters when the endpoint answers 405 Method Not Allowed.
package stac

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/venicegeo/sat-datahub/util"
)

const defaultSearchLimit = 100

// Count performs a lightweight search to report how many items match
func Count(options SearchOptions, context *Context) (int, error) {
	response, err := searchPage(resolveURL(context, "search"), options, context)
	if err != nil {
		return 0, err
	}
	return response.Context.Matched, nil
}

// GetItems searches the endpoint and follows rel=next links until the
// result limit is reached. The limit defaults to 100 when unset.
func GetItems(options SearchOptions, context *Context) ([]Item, error) {
	limit := options.Limit
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	nextPage := resolveURL(context, "search")
	var items []Item

	for nextPage != "" {
		response, err := searchPage(nextPage, options, context)
		if err != nil {
			return nil, err
		}

		nextPage = ""
		for _, link := range response.Links {
			if link.Rel == "next" {
				nextPage = link.Href
				break
			}
		}

		for _, item := range response.Features {
			if len(items) == limit {
				return items, nil
			}
			items = append(items, item)
		}
		if len(response.Features) == 0 {
			break
		}
	}

	return items, nil
}

// GetCollections returns all collections of the endpoint, or a single
// collection when an ID is given.
func GetCollections(collectionID string, context *Context) ([]Collection, error) {
	inputURL := resolveURL(context, "collections")
	if collectionID != "" {
		inputURL = resolveURL(context, "collections/"+collectionID)
	}

	body, err := stacGet(inputURL, context)
	if err != nil {
		return nil, err
	}

	if collectionID != "" {
		var collection Collection
		if err = json.Unmarshal(body, &collection); err != nil {
			return nil, unmarshalError(context, inputURL, body, err)
		}
		return []Collection{collection}, nil
	}

	var response collectionsResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return nil, unmarshalError(context, inputURL, body, err)
	}
	return response.Collections, nil
}

func searchPage(inputURL string, options SearchOptions, context *Context) (*searchResponse, error) {
	body, err := search(inputURL, options, context)
	if err != nil {
		return nil, err
	}
	var response searchResponse
	if err = json.Unmarshal(body, &response); err != nil {
		return nil, unmarshalError(context, inputURL, body, err)
	}
	return &response, nil
}

// search posts the search request and falls back to a GET query when the
// endpoint does not allow POST.
func search(inputURL string, options SearchOptions, context *Context) ([]byte, error) {
	requestBody, err := json.Marshal(searchRequest{
		Collections: options.Collections,
		IDs:         options.IDs,
		Bbox:        options.Bbox,
		Intersects:  options.Intersects,
		Datetime:    options.Datetime,
		Limit:       options.Limit,
	})
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to marshal STAC search request %#v.", options), err)
	}

	response, err := stacRequest(stacRequestInput{method: "POST", inputURL: inputURL, body: requestBody, contentType: "application/json"}, context)
	if err != nil {
		return nil, err
	}

	if response.StatusCode == http.StatusMethodNotAllowed {
		response.Body.Close()
		getURL, err := searchGetURL(inputURL, options)
		if err != nil {
			return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to build STAC GET fallback URL from %v.", inputURL), err)
		}
		if response, err = stacRequest(stacRequestInput{method: "GET", inputURL: getURL}, context); err != nil {
			return nil, err
		}
	}

	return readResponse(response, inputURL, context)
}

func stacGet(inputURL string, context *Context) ([]byte, error) {
	response, err := stacRequest(stacRequestInput{method: "GET", inputURL: inputURL}, context)
	if err != nil {
		return nil, err
	}
	return readResponse(response, inputURL, context)
}

func readResponse(response *http.Response, inputURL string, context *Context) ([]byte, error) {
	defer response.Body.Close()
	body, _ := io.ReadAll(response.Body)

	switch {
	case (response.StatusCode >= 400) && (response.StatusCode < 500):
		message := fmt.Sprintf("Failed to query the STAC endpoint: %v. ", response.Status)
		err := util.HTTPErr{Status: response.StatusCode, Message: message}
		util.LogAlert(context, message)
		return nil, err
	case response.StatusCode >= 500:
		return nil, util.LogSimpleErr(context, "Failed to query the STAC endpoint.", errors.New(response.Status))
	}
	return body, nil
}

// searchGetURL flattens the search request into query parameters the way
// the GET flavor of item-search expects them.
func searchGetURL(inputURL string, options SearchOptions) (string, error) {
	parsed, err := url.Parse(inputURL)
	if err != nil {
		return "", err
	}
	query := parsed.Query()
	if len(options.Collections) > 0 {
		query.Set("collections", strings.Join(options.Collections, ","))
	}
	if len(options.IDs) > 0 {
		query.Set("ids", strings.Join(options.IDs, ","))
	}
	if len(options.Bbox) > 0 {
		coords := make([]string, len(options.Bbox))
		for i, coord := range options.Bbox {
			coords[i] = strconv.FormatFloat(coord, 'f', -1, 64)
		}
		query.Set("bbox", strings.Join(coords, ","))
	}
	if options.Intersects != nil {
		intersects, err := json.Marshal(options.Intersects)
		if err != nil {
			return "", err
		}
		query.Set("intersects", string(intersects))
	}
	if options.Datetime != "" {
		query.Set("datetime", options.Datetime)
	}
	if options.Limit > 0 {
		query.Set("limit", strconv.Itoa(options.Limit))
	}
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

type stacRequestInput struct {
	method      string
	inputURL    string // URL may be relative or absolute based on BaseStacURL
	body        []byte
	contentType string
}

// stacRequest performs the request
func stacRequest(input stacRequestInput, context *Context) (*http.Response, error) {
	inputURL := input.inputURL
	if !strings.Contains(inputURL, context.BaseStacURL) {
		inputURL = resolveURL(context, input.inputURL)
	}

	request, err := http.NewRequest(input.method, inputURL, bytes.NewBuffer(input.body))
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to make a new HTTP request for %v.", inputURL), err)
	}
	if input.contentType != "" {
		request.Header.Set("Content-Type", input.contentType)
	}

	util.LogAudit(context, util.LogAuditInput{Actor: "stac/stacRequest", Action: input.method, Actee: inputURL, Message: "Requesting data from STAC endpoint", Severity: util.INFO})
	response, err := util.HTTPClient().Do(request)
	if err != nil {
		return nil, util.LogSimpleErr(context, fmt.Sprintf("Failed to complete STAC API request %v.", inputURL), err)
	}
	util.LogAudit(context, util.LogAuditInput{Actor: inputURL, Action: input.method + " response", Actee: "stac/stacRequest", Message: "Receiving data from STAC endpoint", Severity: util.INFO})
	return response, nil
}

func resolveURL(context *Context, relative string) string {
	baseURL, _ := url.Parse(strings.TrimSuffix(context.BaseStacURL, "/") + "/")
	relativeURL, _ := url.Parse(relative)
	if baseURL == nil || relativeURL == nil {
		return context.BaseStacURL + "/" + relative
	}
	return baseURL.ResolveReference(relativeURL).String()
}

// unmarshalError wraps a JSON decode failure with the response context
func unmarshalError(context *Context, inputURL string, body []byte, err error) error {
	stacErr := util.Error{
		LogMsg:    "Failed to Unmarshal response from STAC endpoint: " + err.Error(),
		SimpleMsg: "The STAC endpoint returned an unexpected response for this request. See log for further details.",
		Response:  string(body),
		URL:       inputURL,
	}
	return stacErr.Log(context, "")
}
