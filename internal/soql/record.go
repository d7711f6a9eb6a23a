package soql

import (
	"strconv"
	"strings"
	"time"
)

// Lookup resolves a possibly dotted field path (e.g. Owner.Name) in a decoded record.
func Lookup(record map[string]any, path string) (any, bool) {
	current := record
	segments := strings.Split(path, ".")
	for i, segment := range segments {
		v, ok := current[segment]
		if !ok {
			return nil, false
		}
		if i == len(segments)-1 {
			return v, true
		}
		next, ok := v.(map[string]any)
		if !ok {
			return nil, false
		}
		current = next
	}
	return nil, false
}

func lookupTime(record map[string]any, field string) (time.Time, bool) {
	v, ok := Lookup(record, field)
	if !ok || v == nil {
		return time.Time{}, false
	}
	switch val := v.(type) {
	case time.Time:
		return val, true
	case string:
		t, err := ParseDateTime(val)
		if err != nil {
			return time.Time{}, false
		}
		return t, true
	}
	return time.Time{}, false
}

// ParseDateTime accepts the datetime formats Salesforce emits.
func ParseDateTime(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02T15:04:05.000-0700", value); err == nil {
		return t, nil
	}
	return time.Parse(time.DateOnly, value)
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return ""
	}
}
