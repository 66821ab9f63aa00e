package store

import (
	"encoding/json"
	"strings"
	"time"
)

// Fields is the body of a document. Values are scalars: string, integer,
// float, bool, time.Time or nil.
type Fields map[string]interface{}

func (f Fields) String(key string) string {
	s, _ := f[key].(string)
	return s
}

// Int reads a numeric field whatever representation the backend or the JSON
// codec produced for it.
func (f Fields) Int(key string) int64 {
	n, _ := toInt(f[key])
	return n
}

func (f Fields) Bool(key string) bool {
	b, _ := f[key].(bool)
	return b
}

// Time reads a timestamp stored natively or as an RFC 3339 string.
func (f Fields) Time(key string) time.Time {
	t, _ := toTime(f[key])
	return t
}

// Clone returns a shallow copy; values are scalars so it is a full copy.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Merge returns a copy of f with the values of other written over it.
func (f Fields) Merge(other Fields) Fields {
	out := f.Clone()
	if out == nil {
		out = Fields{}
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

func toInt(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int:
		return int64(n), true
	case int32:
		return int64(n), true
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			f, ferr := n.Float64()
			if ferr != nil {
				return 0, false
			}
			return int64(f), true
		}
		return i, true
	}
	return 0, false
}

func toTime(v interface{}) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, true
	case string:
		parsed, err := time.Parse(time.RFC3339Nano, t)
		if err != nil {
			return time.Time{}, false
		}
		return parsed, true
	}
	return time.Time{}, false
}

// compareValues orders two field values of the same kind. Values of
// different or unknown kinds compare equal.
func compareValues(a, b interface{}) int {
	if ai, ok := toInt(a); ok {
		if bi, ok := toInt(b); ok {
			switch {
			case ai < bi:
				return -1
			case ai > bi:
				return 1
			}
			return 0
		}
	}
	if at, ok := a.(time.Time); ok {
		if bt, ok := b.(time.Time); ok {
			return at.Compare(bt)
		}
	}
	if as, ok := a.(string); ok {
		if bs, ok := b.(string); ok {
			return strings.Compare(as, bs)
		}
	}
	if ab, ok := a.(bool); ok {
		if bb, ok := b.(bool); ok {
			switch {
			case ab == bb:
				return 0
			case !ab:
				return -1
			}
			return 1
		}
	}
	return 0
}

// equalValues is the equality used by query filters.
func equalValues(a, b interface{}) bool {
	if ai, ok := toInt(a); ok {
		bi, ok := toInt(b)
		return ok && ai == bi
	}
	if at, ok := a.(time.Time); ok {
		bt, ok := b.(time.Time)
		return ok && at.Equal(bt)
	}
	return a == b
}
