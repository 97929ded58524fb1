package model

import (
	"fmt"
	"time"
)

// The hubs do not agree on any single standard for formatting datetime
// data, and the formats they do use are not all official IETF standards.
// Thus, we need lenient "multi-format" parsing functionality, implemented here.

// StandardTimeLayout is the preferred format when formatting metadata datetimes
const StandardTimeLayout = "2006-01-02T15:04:05.999999999Z"

var hubTimeLayouts = []string{
	"2006-01-02T15:04:05.999999999Z",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04:05Z",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
	"2006/01/02",
	"20060102",
}

// ParseHubTime is a drop-in replacement for time.Parse, but matching
// against the datetime formats the hubs are known to emit
func ParseHubTime(hubTime string) (time.Time, error) {
	for _, layout := range hubTimeLayouts {
		if output, err := time.Parse(layout, hubTime); err == nil {
			return output, nil
		}
	}
	return time.Time{}, fmt.Errorf("date could not be parsed by any expected time format: `%s`", hubTime)
}
