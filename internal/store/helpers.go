package store

import (
	"encoding/json"
	"time"
)

// timeLayout is the fixed-width UTC text form for persisted timestamps.
// Fixed width keeps lexical order equal to chronological order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func nowUTC() time.Time {
	return time.Now().UTC()
}

// parseTime decodes a persisted timestamp. Unparsable text degrades to the
// zero time; loading never fails on bad timestamp data.
func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t.UTC()
}

// marshalMetadata converts a metadata map to JSON text for storage.
func marshalMetadata(m map[string]string) string {
	if len(m) == 0 {
		return "{}"
	}
	b, _ := json.Marshal(m)
	return string(b)
}

// unmarshalMetadata converts JSON text back to a metadata map. Bad text
// yields an empty map rather than an error.
func unmarshalMetadata(s string) map[string]string {
	m := make(map[string]string)
	if s == "" || s == "null" {
		return m
	}
	_ = json.Unmarshal([]byte(s), &m)
	return m
}
