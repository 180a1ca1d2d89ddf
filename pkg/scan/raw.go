package scan

import (
	"encoding/json"
	"math"
	"strconv"
)

// Raw is a decoded JSON object as returned by the scanning service.
//
// Accessors treat a value as absent when the key is missing or holds null,
// an empty string, zero or false, which matches how the service leaves
// optional fields unset.
type Raw map[string]any

// Has reports whether key holds a present (non-absent) value.
func (r Raw) Has(key string) bool {
	v, ok := r[key]
	return ok && present(v)
}

// String returns the value at key rendered as a string, or "" when absent.
// Numbers are formatted without a trailing decimal point.
func (r Raw) String(key string) string {
	v, ok := r[key]
	if !ok || !present(v) {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case json.Number:
		return t.String()
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

// StringOr returns String(key), or def when the value is absent.
func (r Raw) StringOr(key, def string) string {
	if s := r.String(key); s != "" {
		return s
	}
	return def
}

// Int returns the value at key as an integer, or 0 when absent or not numeric.
// Numeric strings are accepted.
func (r Raw) Int(key string) int {
	v, ok := r[key]
	if !ok || !present(v) {
		return 0
	}
	switch t := v.(type) {
	case float64:
		return int(math.Round(t))
	case int:
		return t
	case int64:
		return int(t)
	case json.Number:
		if i, err := t.Int64(); err == nil {
			return int(i)
		}
		if f, err := t.Float64(); err == nil {
			return int(math.Round(f))
		}
	case string:
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return int(math.Round(f))
		}
	}
	return 0
}

// Bool returns the value at key when it is a JSON boolean.
func (r Raw) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

// Object returns the nested object at key, or nil when it is not an object.
func (r Raw) Object(key string) Raw {
	switch t := r[key].(type) {
	case map[string]any:
		return Raw(t)
	case Raw:
		return t
	}
	return nil
}

// Strings returns the string elements of the array at key. The result is
// never nil.
func (r Raw) Strings(key string) []string {
	out := []string{}
	switch t := r[key].(type) {
	case []any:
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	case []string:
		out = append(out, t...)
	}
	return out
}

// Level returns the threatLevel field.
func (r Raw) Level() ThreatLevel {
	return ThreatLevel(r.String("threatLevel"))
}

func present(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return t != ""
	case bool:
		return t
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	}
	return true
}
