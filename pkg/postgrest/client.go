package postgrest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"go.uber.org/zap"
)

// Transport performs one HTTP round-trip against the PostgREST server and
// returns the decoded body. Implementations must return *StatusError for
// non-2xx responses and *TransportError for network failures. The default
// implementation lives in pkg/httputil.
type Transport interface {
	Request(ctx context.Context, method, url string, params QueryParams, body any) (json.RawMessage, error)
}

// TransportFunc adapts a plain function to the Transport interface.
type TransportFunc func(ctx context.Context, method, url string, params QueryParams, body any) (json.RawMessage, error)

func (f TransportFunc) Request(ctx context.Context, method, url string, params QueryParams, body any) (json.RawMessage, error) {
	return f(ctx, method, url, params, body)
}

// Client reads and writes rows of one entity type through a PostgREST
// endpoint. A Client is stateless apart from its configuration and safe for
// concurrent use.
type Client struct {
	baseURL   string
	desc      Descriptor
	transport Transport
	logger    *zap.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger. The default is a no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a Client for the entity type described by desc, rooted at
// baseURL. A missing scheme defaults to http; any path or query on baseURL
// is discarded.
func New(baseURL string, desc Descriptor, transport Transport, opts ...Option) *Client {
	c := &Client{
		baseURL:   normalizeBaseURL(baseURL),
		desc:      desc,
		transport: transport,
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func normalizeBaseURL(raw string) string {
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "http://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.Scheme + "://" + u.Host
}

func (c *Client) tableURL() string {
	return c.baseURL + "/" + c.desc.Table
}

// Filter compiles spec, issues a GET and returns one Resource per row in
// server order. The result is a finite snapshot; calling Filter again
// re-executes the request.
func (c *Client) Filter(ctx context.Context, spec FilterSpec) ([]*Resource, error) {
	params, err := Compile(spec)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("filter",
		zap.String("table", c.desc.Table),
		zap.String("query", params.Encode()))

	raw, err := c.transport.Request(ctx, http.MethodGet, c.tableURL(), params, nil)
	if err != nil {
		return nil, err
	}

	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode response rows: %w", err)
	}

	resources := make([]*Resource, 0, len(rows))
	for _, row := range rows {
		resources = append(resources, newResource(&c.desc, row))
	}
	return resources, nil
}

// Get fetches the single row matching spec. It returns ErrNotFound on zero
// rows and ErrAmbiguous when the filter matched more than one; the caller
// is responsible for a sufficiently selective filter.
func (c *Client) Get(ctx context.Context, spec FilterSpec) (*Resource, error) {
	resources, err := c.Filter(ctx, spec)
	if err != nil {
		return nil, err
	}

	switch len(resources) {
	case 0:
		return nil, fmt.Errorf("%s: %w", c.desc.Table, ErrNotFound)
	case 1:
		return resources[0], nil
	default:
		return nil, fmt.Errorf("%s: %d rows: %w", c.desc.Table, len(resources), ErrAmbiguous)
	}
}

// Create inserts a row with the given attributes and returns the stored
// representation. The server echoes the row back because the transport sends
// Prefer: return=representation on mutating requests.
func (c *Client) Create(ctx context.Context, attrs map[string]any) (*Resource, error) {
	raw, err := c.transport.Request(ctx, http.MethodPost, c.tableURL(), nil, attrs)
	if err != nil {
		return nil, err
	}

	row, err := decodeSingleRow(raw)
	if err != nil {
		return nil, err
	}
	return newResource(&c.desc, row), nil
}

// GetOrCreate returns the row matching the natural keys of attrs, creating
// it when absent. The boolean reports whether this call created the row.
//
// PostgREST does no application-level locking; uniqueness is enforced by the
// database, so a concurrent insert between the failed lookup and our create
// surfaces as a 409. That conflict triggers exactly one re-read; if the row
// still cannot be found the original creation error is returned.
func (c *Client) GetOrCreate(ctx context.Context, attrs map[string]any) (*Resource, bool, error) {
	lookup, err := c.naturalKeyFilter(attrs)
	if err != nil {
		return nil, false, err
	}

	r, err := c.Get(ctx, lookup)
	if err == nil {
		return r, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	r, createErr := c.Create(ctx, attrs)
	if createErr == nil {
		return r, true, nil
	}
	if !IsConflict(createErr) {
		return nil, false, createErr
	}

	// Lost a create race; the row should exist now. One re-read, no loop.
	c.logger.Debug("create conflict, re-reading",
		zap.String("table", c.desc.Table))

	r, err = c.Get(ctx, lookup)
	if err != nil {
		return nil, false, createErr
	}
	return r, false, nil
}

// Update patches the row identified by res with the given attributes and
// returns a fresh snapshot. res itself stays unchanged.
func (c *Client) Update(ctx context.Context, res *Resource, attrs map[string]any) (*Resource, error) {
	pk, err := res.primaryKey()
	if err != nil {
		return nil, err
	}
	params, err := Compile(pk)
	if err != nil {
		return nil, err
	}

	raw, err := c.transport.Request(ctx, http.MethodPatch, c.tableURL(), params, attrs)
	if err != nil {
		return nil, err
	}

	if len(raw) == 0 {
		// Server honored Prefer: return=minimal; fall back to a re-read.
		return c.Get(ctx, pk)
	}
	row, err := decodeSingleRow(raw)
	if err != nil {
		return nil, err
	}
	return newResource(&c.desc, row), nil
}

// Delete removes the row identified by res.
func (c *Client) Delete(ctx context.Context, res *Resource) error {
	pk, err := res.primaryKey()
	if err != nil {
		return err
	}
	params, err := Compile(pk)
	if err != nil {
		return err
	}

	_, err = c.transport.Request(ctx, http.MethodDelete, c.tableURL(), params, nil)
	return err
}

// Refresh re-reads the row identified by res and returns a new snapshot.
func (c *Client) Refresh(ctx context.Context, res *Resource) (*Resource, error) {
	pk, err := res.primaryKey()
	if err != nil {
		return nil, err
	}
	return c.Get(ctx, pk)
}

// naturalKeyFilter derives the existence-check FilterSpec from the
// descriptor's natural keys. Every natural key must be present in attrs;
// nil values match with is.null since eq.null never matches a NULL column.
func (c *Client) naturalKeyFilter(attrs map[string]any) (FilterSpec, error) {
	if len(c.desc.NaturalKeys) == 0 {
		return nil, fmt.Errorf("descriptor for %q has no natural keys", c.desc.Table)
	}

	spec := make(FilterSpec, 0, len(c.desc.NaturalKeys))
	for _, key := range c.desc.NaturalKeys {
		v, ok := attrs[key]
		if !ok {
			return nil, fmt.Errorf("missing natural key %q for %s", key, c.desc.Table)
		}
		if v == nil {
			spec = append(spec, Filter{Key: key, Value: "is.null"})
			continue
		}
		spec = append(spec, Filter{Key: key, Value: fmt.Sprintf("eq.%v", v)})
	}
	return spec, nil
}

// decodeSingleRow accepts the two shapes PostgREST uses for a created or
// updated row: a bare object, or a single-element array.
func decodeSingleRow(raw json.RawMessage) (map[string]any, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var rows []map[string]any
		if err := json.Unmarshal(raw, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode response rows: %w", err)
		}
		if len(rows) != 1 {
			return nil, fmt.Errorf("expected one row in response, got %d", len(rows))
		}
		return rows[0], nil
	}

	var row map[string]any
	if err := json.Unmarshal(raw, &row); err != nil {
		return nil, fmt.Errorf("failed to decode response row: %w", err)
	}
	return row, nil
}
