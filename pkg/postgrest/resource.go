package postgrest

import (
	"fmt"
	"maps"
	"time"

	"github.com/mitchellh/mapstructure"
)

// Descriptor is the static metadata for one entity type: where its rows live
// and how to identify them. A Descriptor is defined once by the embedding
// application and shared read-only across all resources of that type.
type Descriptor struct {
	// Table is the PostgREST route (table or view name).
	Table string
	// NaturalKeys are the columns GetOrCreate uses to test whether a row
	// already exists, independent of the storage-assigned primary key.
	NaturalKeys []string
	// PrimaryKey derives a FilterSpec identifying exactly one row from a
	// row's attributes. Required for Update, Delete, Refresh and Same.
	PrimaryKey func(attrs map[string]any) FilterSpec
}

// Resource is an immutable snapshot of one row as the server returned it.
// It is never refreshed in place; Client.Refresh returns a new instance.
type Resource struct {
	desc  *Descriptor
	attrs map[string]any
}

func newResource(desc *Descriptor, attrs map[string]any) *Resource {
	return &Resource{desc: desc, attrs: maps.Clone(attrs)}
}

// Attr returns the named attribute and whether it was present in the
// server response.
func (r *Resource) Attr(name string) (any, bool) {
	v, ok := r.attrs[name]
	return v, ok
}

// Attrs returns a copy of the attribute snapshot.
func (r *Resource) Attrs() map[string]any {
	return maps.Clone(r.attrs)
}

// DecodeInto decodes the attribute snapshot into target, which must be a
// pointer to a struct. Field mapping follows mapstructure tags.
func (r *Resource) DecodeInto(target any) error {
	if err := mapstructure.Decode(r.attrs, target); err != nil {
		return fmt.Errorf("failed to decode resource attributes: %w", err)
	}
	return nil
}

// Timestamp layouts PostgREST emits, with and without fractional seconds
// and explicit zone offset.
var timestampLayouts = []string{
	"2006-01-02T15:04:05+00:00",
	"2006-01-02T15:04:05.999999+00:00",
	"2006-01-02T15:04:05.999999",
	time.RFC3339,
}

// AsTime parses the named attribute as a timestamp.
func (r *Resource) AsTime(name string) (time.Time, error) {
	v, ok := r.attrs[name]
	if !ok {
		return time.Time{}, fmt.Errorf("no attribute %q", name)
	}

	s, ok := v.(string)
	if !ok {
		return time.Time{}, fmt.Errorf("attribute %q is not a string: %T", name, v)
	}

	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%q does not match any known timestamp layout", s)
}

// primaryKey derives the FilterSpec identifying this row.
func (r *Resource) primaryKey() (FilterSpec, error) {
	if r.desc == nil || r.desc.PrimaryKey == nil {
		return nil, fmt.Errorf("descriptor has no primary key extractor")
	}
	return r.desc.PrimaryKey(r.attrs), nil
}

// Same reports whether two resources represent the same row, judged by their
// primary-key filters. Resources are not deduplicated by the client; two
// fetches of one row yield distinct instances for which Same is true.
func (r *Resource) Same(other *Resource) bool {
	if other == nil {
		return false
	}

	a, err := r.primaryKey()
	if err != nil {
		return false
	}
	b, err := other.primaryKey()
	if err != nil {
		return false
	}

	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
