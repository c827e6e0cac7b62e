package entity

import (
	"encoding/json"
	"fmt"
	"time"
)

// MalformedDateError reports a date field that matched none of the
// supported stored representations. Callers get this instead of a silent
// zero time.
type MalformedDateError struct {
	Field string
	Value any
}

func (e *MalformedDateError) Error() string {
	return fmt.Sprintf("malformed date in field %q: %v (%T)", e.Field, e.Value, e.Value)
}

// Layouts accepted for string-encoded dates, tried in order.
var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// NormalizeDate converts a stored date value to a UTC time.Time. Stored
// documents carry dates in three shapes, depending on which client wrote
// them and whether they round-tripped through JSON:
//
//   - a native time.Time (built in memory, not yet serialized)
//   - an RFC 3339 / ISO 8601 string
//   - a timestamp object {seconds, nanoseconds} as serialized by the
//     original store client, or a bare numeric epoch-seconds value
//
// Anything else fails with MalformedDateError.
func NormalizeDate(field string, v any) (time.Time, error) {
	switch d := v.(type) {
	case time.Time:
		return d.UTC(), nil

	case string:
		for _, layout := range dateLayouts {
			if t, err := time.Parse(layout, d); err == nil {
				return t.UTC(), nil
			}
		}

	case map[string]any:
		if secs, ok := numberField(d, "seconds", "_seconds"); ok {
			nanos, _ := numberField(d, "nanoseconds", "_nanoseconds")
			return time.Unix(int64(secs), int64(nanos)).UTC(), nil
		}

	case float64:
		return epochSeconds(d), nil
	case int64:
		return time.Unix(d, 0).UTC(), nil
	case int:
		return time.Unix(int64(d), 0).UTC(), nil
	case json.Number:
		if f, err := d.Float64(); err == nil {
			return epochSeconds(f), nil
		}
	}

	return time.Time{}, &MalformedDateError{Field: field, Value: v}
}

func epochSeconds(f float64) time.Time {
	secs := int64(f)
	nanos := int64((f - float64(secs)) * float64(time.Second))
	return time.Unix(secs, nanos).UTC()
}

func numberField(m map[string]any, keys ...string) (float64, bool) {
	for _, key := range keys {
		switch n := m[key].(type) {
		case float64:
			return n, true
		case int64:
			return float64(n), true
		case int:
			return float64(n), true
		case json.Number:
			if f, err := n.Float64(); err == nil {
				return f, true
			}
		}
	}
	return 0, false
}

// dateField normalizes a required date field. A missing field yields the
// zero time without error; a present but unreadable value is an error.
func dateField(doc Document, field string) (time.Time, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return time.Time{}, nil
	}
	return NormalizeDate(field, v)
}

// optionalDateField normalizes a nullable date field. Missing and explicit
// null both map to nil.
func optionalDateField(doc Document, field string) (*time.Time, error) {
	v, ok := doc[field]
	if !ok || v == nil {
		return nil, nil
	}
	t, err := NormalizeDate(field, v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
