// Package eventtype extracts the routing discriminators of a Slack Events API
// payload without decoding the whole document.
package eventtype

import (
	"errors"
	"unicode/utf8"

	"github.com/tidwall/gjson"
)

const (
	keyType  = "type"
	keyEvent = "event"
)

// ErrMalformed is returned when the payload is not valid UTF-8 JSON.
var ErrMalformed = errors.New("malformed event payload")

// Discriminators are the fields used to pick a handler. An empty value means
// the field was absent, was not a string, or the root was not an object.
type Discriminators struct {
	// DispatchType is the top-level "type" (url_verification, event_callback, ...).
	DispatchType string `json:"dispatch_type,omitempty"`
	// EventType is "event.type", set only for wrapped events.
	EventType string `json:"event_type,omitempty"`
}

func (d Discriminators) HasDispatchType() bool { return d.DispatchType != "" }
func (d Discriminators) HasEventType() bool    { return d.EventType != "" }

// Scan walks the top-level members of raw once. Only when a member named
// "event" holds an object is that object scanned, one level deep, for its
// "type". A root that is not an object yields zero Discriminators.
func Scan(raw []byte) (Discriminators, error) {
	if !utf8.Valid(raw) || !gjson.ValidBytes(raw) {
		return Discriminators{}, ErrMalformed
	}

	var d Discriminators
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return d, nil
	}

	root.ForEach(func(key, value gjson.Result) bool {
		switch key.Str {
		case keyType:
			if value.Type == gjson.String {
				d.DispatchType = value.Str
			}
		case keyEvent:
			// a repeated "event" replaces the earlier one
			d.EventType = ""
			if value.IsObject() {
				d.EventType = nestedType(value)
			}
		}
		return true
	})

	return d, nil
}

func nestedType(event gjson.Result) string {
	var t string
	event.ForEach(func(key, value gjson.Result) bool {
		if key.Str != keyType {
			return true
		}
		if value.Type == gjson.String {
			t = value.Str
		}
		return false
	})
	return t
}
