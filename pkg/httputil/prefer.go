package httputil

import "strings"

// Prefer holds preferences for the Prefer request header (RFC 7240).
// PostgREST uses return=representation to echo mutated rows back in the
// response body, which the resource client relies on for Create and Update.
type Prefer struct {
	Return string // "minimal", "representation", "headers-only"
	Count  string // "exact", "planned", "estimated"
}

// DefaultPrefer is what the transport sends on mutating requests.
var DefaultPrefer = Prefer{Return: "representation"}

// String renders the header value, skipping invalid or empty directives.
func (p Prefer) String() string {
	directives := make([]string, 0, 2)
	if isValidReturn(p.Return) {
		directives = append(directives, "return="+strings.ToLower(p.Return))
	}
	if isValidCount(p.Count) {
		directives = append(directives, "count="+strings.ToLower(p.Count))
	}
	return strings.Join(directives, ",")
}

// isValidReturn reports whether s is a valid return preference value.
func isValidReturn(s string) bool {
	switch strings.ToLower(s) {
	case "minimal", "representation", "headers-only":
		return true
	}
	return false
}

// isValidCount reports whether s is a valid count preference value.
func isValidCount(s string) bool {
	switch strings.ToLower(s) {
	case "exact", "planned", "estimated":
		return true
	}
	return false
}
