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
	"fmt"
	"net/http"
)

// Error is a rich error container, separating the message that is safe
// to show a client from the detail that belongs in the log
type Error struct {
	LogMsg     string
	SimpleMsg  string
	Response   string
	URL        string
	HTTPStatus int
	hasLogged  bool
}

// Error implements the error interface
func (e Error) Error() string {
	if e.SimpleMsg != "" {
		return e.SimpleMsg
	}
	return e.LogMsg
}

// Log writes the error to the log, prefixing it with msgPrefix, and
// returns the error for percolation. Repeat calls do not log twice.
func (e *Error) Log(context LogContext, msgPrefix string) Error {
	if !e.hasLogged {
		logMsg := e.LogMsg
		if msgPrefix != "" {
			logMsg = msgPrefix + ": " + logMsg
		}
		if e.URL != "" {
			logMsg += "\nURL: " + e.URL
		}
		if e.Response != "" {
			logMsg += "\nResponse: " + e.Response
		}
		if e.HTTPStatus != 0 {
			logMsg += fmt.Sprintf("\nHTTP Status: %d", e.HTTPStatus)
		}
		logger.WithFields(contextFields(context)).Error(logMsg)
		e.hasLogged = true
	}
	return *e
}

// HTTPErr is an error container for errors that carry an HTTP status
type HTTPErr struct {
	Status  int
	Message string
}

// Error implements the error interface
func (e HTTPErr) Error() string {
	return e.Message
}

// HTTPError writes an error response to the given ResponseWriter
func HTTPError(r *http.Request, w http.ResponseWriter, context LogContext, message string, status int) {
	LogAudit(context, LogAuditInput{
		Actor:    "sat-datahub",
		Action:   fmt.Sprintf("%v response error %v", r.Method, status),
		Actee:    r.URL.String(),
		Message:  message,
		Severity: WARN,
	})
	http.Error(w, message, status)
}
