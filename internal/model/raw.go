package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// RawRecord is one untyped vacancy object exactly as the listing API returned it.
// Any key may be absent or null. Records are decoded with json.Decoder.UseNumber,
// so numbers arrive as json.Number.
type RawRecord map[string]any

// Object returns the nested object stored under key. Absent, null and
// non-object values all report false.
func (r RawRecord) Object(key string) (RawRecord, bool) {
	switch v := r[key].(type) {
	case map[string]any:
		return RawRecord(v), true
	case RawRecord:
		return v, true
	}
	return nil, false
}

// String returns the value under key as a string. Only truthy values are
// reported: absent, null and "" give false. Numeric ids are formatted.
func (r RawRecord) String(key string) (string, bool) {
	switch v := r[key].(type) {
	case string:
		return v, v != ""
	case json.Number:
		return v.String(), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case nil:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}

// Int returns the value under key as an integer amount. Absent, null,
// unparseable and zero values give false: a zero amount means "not specified"
// in the listing API.
func (r RawRecord) Int(key string) (int64, bool) {
	var n int64
	switch v := r[key].(type) {
	case json.Number:
		if i, err := v.Int64(); err == nil {
			n = i
		} else if f, err := v.Float64(); err == nil {
			n = int64(math.Round(f))
		} else {
			return 0, false
		}
	case float64:
		n = int64(math.Round(v))
	case int:
		n = int64(v)
	case int64:
		n = v
	case string:
		i, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, false
		}
		n = i
	default:
		return 0, false
	}
	return n, n != 0
}

// Bool returns the boolean under key. Absent and null give false for ok.
func (r RawRecord) Bool(key string) (value bool, ok bool) {
	v, ok := r[key].(bool)
	return v, ok
}
