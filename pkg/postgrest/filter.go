package postgrest

import (
	"fmt"
	"net/url"
	"strings"
)

// Filter pairs a field-path key with an operator-prefixed value (eq.1,
// lte.10, like.*x*, is.null, ...). The value is treated as opaque.
type Filter struct {
	Key   string
	Value string
}

// FilterSpec is an ordered list of filters. Order is preserved through
// compilation so query strings are deterministic. Duplicate keys are
// rejected by Compile.
type FilterSpec []Filter

// Param is a single compiled query-string parameter. Name may contain
// literal -> / ->> JSON path segments.
type Param struct {
	Name  string
	Value string
}

// QueryParams is the compiled, order-preserving form of a FilterSpec.
type QueryParams []Param

// Path markers selecting how a double-underscore key chain renders.
const (
	markerJSONB = "jsonb" // final segment extracted as text (->>)
	markerJSON  = "json"  // whole path kept as JSON (->)
)

// Keys PostgREST reserves for things other than column filters.
// These pass through Compile unmodified.
func isReservedKey(name string) bool {
	switch name {
	case "select", "order", "limit", "offset":
		return true
	}
	return false
}

// Compile translates a FilterSpec into query parameters. It produces exactly
// one parameter per filter, in input order. Column existence is not checked;
// an unknown column surfaces as a server error at request time.
func Compile(spec FilterSpec) (QueryParams, error) {
	params := make(QueryParams, 0, len(spec))
	seen := make(map[string]struct{}, len(spec))

	for _, f := range spec {
		if f.Key == "" {
			return nil, fmt.Errorf("empty filter key")
		}
		if _, dup := seen[f.Key]; dup {
			return nil, fmt.Errorf("duplicate filter key %q", f.Key)
		}
		seen[f.Key] = struct{}{}

		params = append(params, Param{Name: compileKey(f.Key), Value: f.Value})
	}

	return params, nil
}

// compileKey renders a field-path key as a PostgREST parameter name.
// col__jsonb__a__b becomes col->a->>b, col__json__a__b becomes col->a->b.
// Keys without a marker as their second segment are used verbatim.
func compileKey(key string) string {
	if isReservedKey(key) {
		return key
	}

	segments := strings.Split(key, "__")
	if len(segments) < 3 {
		return key
	}

	var lastArrow string
	switch segments[1] {
	case markerJSONB:
		lastArrow = "->>"
	case markerJSON:
		lastArrow = "->"
	default:
		return key
	}

	column := segments[0]
	path := segments[2:]

	var b strings.Builder
	b.WriteString(column)
	for _, seg := range path[:len(path)-1] {
		b.WriteString("->")
		b.WriteString(seg)
	}
	b.WriteString(lastArrow)
	b.WriteString(path[len(path)-1])
	return b.String()
}

// Encode renders the parameters as a query string, preserving order.
// Values are URL-escaped; names are emitted verbatim so -> and ->> stay
// literal (PostgREST accepts both raw and escaped arrows, raw reads better
// in logs).
func (qp QueryParams) Encode() string {
	if len(qp) == 0 {
		return ""
	}

	var b strings.Builder
	for i, p := range qp {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(p.Name)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}
