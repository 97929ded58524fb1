// Copyright 2018, RadiantBlue Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//   http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package util

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
)

var httpClient = &http.Client{Timeout: 120 * time.Second}

// HTTPClient returns the shared client for outbound requests
func HTTPClient() *http.Client {
	return httpClient
}

// ReqByObjJSON performs an HTTP request with a JSON-marshaled input
// object, unmarshaling the response into outObj. The raw response body
// is returned for logging.
func ReqByObjJSON(method, url, auth string, inObj, outObj interface{}) (string, error) {
	var requestBody io.Reader
	if inObj != nil {
		byts, err := json.Marshal(inObj)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request object: %v", err)
		}
		requestBody = bytes.NewBuffer(byts)
	}

	request, err := http.NewRequest(method, url, requestBody)
	if err != nil {
		return "", err
	}
	request.Header.Set("Content-Type", "application/json")
	if auth != "" {
		request.Header.Set("Authorization", auth)
	}

	response, err := HTTPClient().Do(request)
	if err != nil {
		return "", err
	}
	defer response.Body.Close()

	responseBody, _ := io.ReadAll(response.Body)
	if response.StatusCode < 200 || response.StatusCode > 299 {
		return string(responseBody), HTTPErr{Status: response.StatusCode, Message: response.Status}
	}

	if outObj != nil {
		if err = json.Unmarshal(responseBody, outObj); err != nil {
			return string(responseBody), fmt.Errorf("failed to unmarshal response: %v", err)
		}
	}

	return string(responseBody), nil
}

// PsuUUID returns a pseudorandom UUID string
func PsuUUID() (string, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
