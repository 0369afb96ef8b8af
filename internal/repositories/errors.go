package repositories

import (
	"errors"
	"fmt"
	"net/http"
)

// RemoteRequestError is returned for any non-2xx response. No retry is
// attempted; the caller decides whether the request is worth repeating.
type RemoteRequestError struct {
	Service    string
	Method     string
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *RemoteRequestError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s API returned status %d for %s %s", e.Service, e.StatusCode, e.Method, e.Endpoint)
	}
	return fmt.Sprintf("%s API returned status %d for %s %s: %s", e.Service, e.StatusCode, e.Method, e.Endpoint, e.Body)
}

// IsNotFound returns true if this is a 404 error.
func (e *RemoteRequestError) IsNotFound() bool {
	return e.StatusCode == http.StatusNotFound
}

// IsUnauthorized returns true if this is a 401 error.
func (e *RemoteRequestError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized
}

// IsConflict returns true if this is a 409 error, which Confluence returns
// when an update carries a stale version number.
func (e *RemoteRequestError) IsConflict() bool {
	return e.StatusCode == http.StatusConflict
}

// AsRemoteRequestError extracts a RemoteRequestError from err's chain.
func AsRemoteRequestError(err error) (*RemoteRequestError, bool) {
	var remoteErr *RemoteRequestError
	if errors.As(err, &remoteErr) {
		return remoteErr, true
	}
	return nil, false
}
