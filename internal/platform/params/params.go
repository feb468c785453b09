package params

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Param is one key of an ordered query mapping. Value is either a scalar or a
// slice; slices expand into one pair per element.
type Param struct {
	Key   string
	Value any
}

// Params is an ordered mapping of query keys to values. Keys are encoded in
// the order they were added.
type Params []Param

func New() Params {
	return make(Params, 0, 6)
}

// Add appends key with value and returns the extended mapping.
func (p Params) Add(key string, value any) Params {
	return append(p, Param{Key: key, Value: value})
}

// Get returns the value stored under key, if any.
func (p Params) Get(key string) (any, bool) {
	for _, item := range p {
		if item.Key == key {
			return item.Value, true
		}
	}
	return nil, false
}

// Encode serializes p into a canonical form-encoded query string.
//
// Slice values emit one pair per element with the key repeated. Scalars emit a
// single pair unless they are nil or the empty string. An empty slice emits
// nothing, so it is indistinguishable from an absent key.
//
// Encode is used both for request queries and for cache keys: two logically
// identical mappings always produce byte-identical output.
func Encode(p Params) string {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	for _, item := range p {
		for _, value := range expand(item.Value) {
			if buf.Len() > 0 {
				_ = buf.WriteByte('&')
			}
			_, _ = buf.WriteString(url.QueryEscape(item.Key))
			_ = buf.WriteByte('=')
			_, _ = buf.WriteString(url.QueryEscape(value))
		}
	}

	return buf.String()
}

func expand(value any) []string {
	switch v := value.(type) {
	case nil:
		return nil
	case string:
		if v == "" {
			return nil
		}
		return []string{v}
	case []string:
		return v
	case []int64:
		out := make([]string, 0, len(v))
		for _, n := range v {
			out = append(out, strconv.FormatInt(n, 10))
		}
		return out
	case []int:
		out := make([]string, 0, len(v))
		for _, n := range v {
			out = append(out, strconv.Itoa(n))
		}
		return out
	case []any:
		out := make([]string, 0, len(v))
		for _, n := range v {
			out = append(out, scalar(n))
		}
		return out
	default:
		return []string{scalar(v)}
	}
}

func scalar(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case int:
		return strconv.Itoa(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}
