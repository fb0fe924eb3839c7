package services

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Snapshot maps every key of the preference schema to its effective value.
// Stored pref_ rows outside the schema never appear. Values are bool, int or
// string according to the key's kind, except for hand-edited rows that cannot
// be coerced, which keep their decoded form; the typed accessors below fall
// back to the default for those.
type Snapshot map[string]interface{}

// Clone returns a copy that can be modified without touching the original.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// String returns the string value of key, or its default when absent or mistyped.
func (s Snapshot) String(key string) string {
	if v, ok := s[key].(string); ok {
		return v
	}
	v, _ := preferenceIndex[key].Default.(string)
	return v
}

// Int returns the integer value of key, or its default when absent or mistyped.
func (s Snapshot) Int(key string) int {
	if v, ok := s[key].(int); ok {
		return v
	}
	v, _ := preferenceIndex[key].Default.(int)
	return v
}

// Bool returns the boolean value of key, or its default when absent or mistyped.
func (s Snapshot) Bool(key string) bool {
	if v, ok := s[key].(bool); ok {
		return v
	}
	v, _ := preferenceIndex[key].Default.(bool)
	return v
}

// normalizeValue converts a caller-supplied value to the canonical Go type of kind.
// JSON numbers arrive as float64 or json.Number and are accepted for int keys
// only when they carry no fraction. Strings are never coerced.
func normalizeValue(kind PreferenceKind, value interface{}) (interface{}, bool) {
	switch kind {
	case KindBool:
		b, ok := value.(bool)
		return b, ok
	case KindString:
		s, ok := value.(string)
		return s, ok
	case KindInt:
		switch v := value.(type) {
		case int:
			return v, true
		case int8, int16, int32, int64:
			n := reflect.ValueOf(v).Int()
			if n < math.MinInt || n > math.MaxInt {
				return nil, false
			}
			return int(n), true
		case uint, uint8, uint16, uint32, uint64:
			n := reflect.ValueOf(v).Uint()
			if n > math.MaxInt {
				return nil, false
			}
			return int(n), true
		case float32:
			return wholeFloat(float64(v))
		case float64:
			return wholeFloat(v)
		case json.Number:
			if n, err := v.Int64(); err == nil {
				return int(n), true
			}
			if f, err := v.Float64(); err == nil {
				return wholeFloat(f)
			}
		}
	}
	return nil, false
}

func wholeFloat(f float64) (interface{}, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f < math.MinInt64 || f > math.MaxInt64 {
		return nil, false
	}
	return int(f), true
}

// encodeValue renders a value in its stored string form: booleans as
// "true"/"false", lists and maps as JSON, everything else in plain form.
func encodeValue(value interface{}) (string, error) {
	switch v := value.(type) {
	case bool:
		if v {
			return "true", nil
		}
		return "false", nil
	case string:
		return v, nil
	case nil:
		return "", nil
	}
	switch reflect.ValueOf(value).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		data, err := json.Marshal(value)
		if err != nil {
			return "", fmt.Errorf("encoding structured preference value: %w", err)
		}
		return string(data), nil
	}
	return fmt.Sprint(value), nil
}

// decodeStored parses raw as JSON, keeping the raw text when that fails, and
// reads the legacy spellings "true"/"True"/"false"/"False" as booleans.
// Integral numbers come back as int.
func decodeStored(raw string) interface{} {
	var decoded interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}
	switch v := decoded.(type) {
	case string:
		switch v {
		case "true", "True":
			return true
		case "false", "False":
			return false
		}
	case float64:
		if i, ok := wholeFloat(v); ok {
			return i
		}
	}
	return decoded
}

// decodeValue turns a stored string back into the typed value of kind.
// ok is false when the text cannot represent kind.
func decodeValue(kind PreferenceKind, raw string) (interface{}, bool) {
	decoded := decodeStored(raw)

	switch kind {
	case KindBool:
		b, ok := decoded.(bool)
		return b, ok
	case KindInt:
		return coerceInt(decoded)
	case KindString:
		if s, ok := decoded.(string); ok {
			return s, true
		}
		return raw, true
	}
	return nil, false
}

// coerceInt truncates floats and parses decimal strings written by older
// versions of the bot.
func coerceInt(v interface{}) (interface{}, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n < math.MinInt64 || n > math.MaxInt64 {
			return nil, false
		}
		return int(n), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, false
		}
		return i, true
	}
	return nil, false
}

// ParsePreferenceInput converts command-line or form text into the typed
// value of key. Validation against allowed values happens on write.
func ParsePreferenceInput(key, text string) (interface{}, error) {
	kind, ok := PreferenceKindOf(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPreference, key)
	}
	switch kind {
	case KindBool:
		b, err := strconv.ParseBool(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %q is not a boolean", ErrInvalidPreferenceValue, key, text)
		}
		return b, nil
	case KindInt:
		n, err := strconv.Atoi(strings.TrimSpace(text))
		if err != nil {
			return nil, fmt.Errorf("%w for %s: %q is not an integer", ErrInvalidPreferenceValue, key, text)
		}
		return n, nil
	default:
		return text, nil
	}
}
