package postgrest

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound reports that a filter matched zero rows where exactly one was
// expected.
var ErrNotFound = errors.New("no matching row")

// ErrAmbiguous reports that a filter matched more than one row where exactly
// one was expected.
var ErrAmbiguous = errors.New("filter matched more than one row")

// StatusError is a non-2xx response from the server. It carries the status
// code and the raw response body so callers can inspect the PostgREST error
// payload.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status code %d: %s", e.StatusCode, e.Body)
}

// TransportError is a network-level failure: the request never produced an
// HTTP response. It is never retried by the client; retry policy belongs to
// the Transport.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport: %v", e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a server-side uniqueness conflict
// (HTTP 409), the signal GetOrCreate interprets as a lost create race.
func IsConflict(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusConflict
}
