package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// State is the connection state code reported by the ML backend API
type State string

const (
	StateDisconnected State = "DI"
	StateConnected    State = "CO"
	StateError        State = "ER"
	StateTraining     State = "TR"
	StatePredicting   State = "PR"
)

// States lists every state code the API reports
var States = []State{
	StateDisconnected,
	StateConnected,
	StateError,
	StateTraining,
	StatePredicting,
}

// Backend represents an ML backend registered with a project
type Backend struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	URL         string   `json:"url"`
	Description string   `json:"description,omitempty"`
	Version     *Version `json:"version,omitempty"`
	State       State    `json:"state"`
}

// IsConnected reports whether the backend accepts train and experiment requests
func (b *Backend) IsConnected() bool {
	return b.State == StateConnected
}

// Version is the backend build timestamp. The API sends it either as an
// ISO 8601 string or as epoch milliseconds.
type Version struct {
	time.Time

	// layout and raw are kept for date-times sent without an offset; those
	// are wall-clock times and only get a zone when they are displayed
	layout string
	raw    string
}

var versionLayouts = []string{
	time.RFC3339,
	"2006-01-02",
}

// Layouts without an offset, read as wall-clock time in the display zone
var floatingLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseVersion parses a version string in any of the accepted layouts.
// Date-only values are UTC; date-times without an offset stay floating
// until At places them in a zone.
func ParseVersion(raw string) (*Version, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return &Version{Time: time.UnixMilli(ms)}, nil
	}
	for _, layout := range versionLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return &Version{Time: t}, nil
		}
	}
	for _, layout := range floatingLayouts {
		if t, err := time.ParseInLocation(layout, raw, time.UTC); err == nil {
			return &Version{Time: t, layout: layout, raw: raw}, nil
		}
	}
	return nil, fmt.Errorf("unrecognized version format %q", raw)
}

// Floating reports whether the version was sent without a UTC offset
func (v *Version) Floating() bool {
	return v.layout != ""
}

// At returns the version as seen from loc. A floating version keeps its
// wall clock and is parsed in loc.
func (v *Version) At(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	if v.Floating() {
		if t, err := time.ParseInLocation(v.layout, v.raw, loc); err == nil {
			return t
		}
	}
	return v.In(loc)
}

// UnmarshalJSON accepts null, a string or a number
func (v *Version) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if len(data) > 0 && data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
	} else {
		raw = string(data)
	}

	parsed, err := ParseVersion(raw)
	if err != nil {
		// An unreadable version is shown as unknown rather than failing the whole list
		*v = Version{}
		return nil
	}
	if parsed != nil {
		*v = *parsed
	}
	return nil
}

// MarshalJSON writes the version as RFC 3339, or as it was received when
// it carries no offset
func (v Version) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	if v.Floating() {
		return json.Marshal(v.raw)
	}
	return json.Marshal(v.Format(time.RFC3339Nano))
}
