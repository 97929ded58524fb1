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
	"github.com/sirupsen/logrus"
)

// Severity is a syslog-style severity level for audit messages
type Severity int

// Syslog severity levels
const (
	EMERG Severity = iota
	FATAL
	CRIT
	ERROR
	WARN
	NOTICE
	INFO
	DEBUG
)

// LogContext provides the information needed to annotate log messages
// with their origin
type LogContext interface {
	AppName() string
	SessionID() string
	LogRootDir() string
}

// BasicLogContext is a minimal LogContext for operations that have no
// richer context of their own
type BasicLogContext struct {
	sessionID string
}

// AppName returns an empty string
func (c *BasicLogContext) AppName() string {
	return ""
}

// SessionID returns a Session ID, creating one if needed
func (c *BasicLogContext) SessionID() string {
	if c.sessionID == "" {
		c.sessionID, _ = PsuUUID()
	}
	return c.sessionID
}

// LogRootDir returns an empty string
func (c *BasicLogContext) LogRootDir() string {
	return ""
}

// LogAuditInput is the set of inputs for a LogAudit call
type LogAuditInput struct {
	Actor    string
	Action   string
	Actee    string
	Message  string
	Severity Severity
}

var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

func contextFields(context LogContext) logrus.Fields {
	return logrus.Fields{
		"app":     context.AppName(),
		"session": context.SessionID(),
	}
}

// LogInfo logs an informational message
func LogInfo(context LogContext, message string) {
	logger.WithFields(contextFields(context)).Info(message)
}

// LogAlert logs a message that needs operator attention
func LogAlert(context LogContext, message string) {
	logger.WithFields(contextFields(context)).Warn(message)
}

// LogSimpleErr logs a message and its underlying error, returning an
// Error suitable for percolating upward
func LogSimpleErr(context LogContext, message string, err error) Error {
	result := Error{SimpleMsg: message}
	if err != nil {
		result.LogMsg = message + err.Error()
	} else {
		result.LogMsg = message
	}
	logger.WithFields(contextFields(context)).Error(result.LogMsg)
	result.hasLogged = true
	return result
}

// LogAudit logs an audit message recording who did what to whom
func LogAudit(context LogContext, input LogAuditInput) {
	fields := contextFields(context)
	fields["actor"] = input.Actor
	fields["action"] = input.Action
	fields["actee"] = input.Actee
	entry := logger.WithFields(fields)
	switch {
	case input.Severity <= ERROR:
		entry.Error(input.Message)
	case input.Severity <= WARN:
		entry.Warn(input.Message)
	default:
		entry.Info(input.Message)
	}
}
