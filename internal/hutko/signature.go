package hutko

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Fields is the scalar field set of a processor request or callback body.
type Fields map[string]any

// Clone returns a shallow copy so the shared send pipeline can attach
// merchant_id and signature without mutating the caller's map.
func (f Fields) Clone() Fields {
	out := make(Fields, len(f)+2)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// Str renders a field as a string, or "" when absent.
func (f Fields) Str(key string) string {
	v, ok := f[key]
	if !ok || v == nil {
		return ""
	}
	return scalarString(v)
}

// Sign computes the request signature: empty and nil values are dropped, the
// remaining entries are sorted by key, their values joined onto the secret
// with "|" separators, and the result SHA-1 hashed to lower-case hex.
//
// The digest depends only on the (filtered, sorted) field set and the secret,
// never on map insertion order. An all-filtered field set hashes the secret
// alone.
func Sign(fields Fields, secret string) string {
	keys := make([]string, 0, len(fields))
	for k, v := range fields {
		if isEmpty(v) {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(secret)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(scalarString(fields[k]))
	}

	sum := sha1.Sum([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

// scalarString renders a field value exactly as it appears on the wire.
// Callback bodies are decoded with json.Number so numeric values keep their
// original textual form and re-sign byte-for-byte.
func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case json.Number:
		return x.String()
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		if x == float64(int64(x)) {
			return strconv.FormatInt(int64(x), 10)
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case bool:
		if x {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(x)
	}
}
