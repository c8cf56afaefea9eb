package esclient

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/pkg/errors"
)

// Configuration errors
var (
	ErrEmptyClusters          = fmt.Errorf("clusters map is empty")
	ErrNoDefaultCluster       = fmt.Errorf("default cluster name not specified")
	ErrDefaultClusterNotFound = fmt.Errorf("default cluster not found in clusters map")
	ErrEmptyClusterName       = fmt.Errorf("cluster name is empty")
)

// ErrNoSource is returned when a hit or document was fetched without _source.
var ErrNoSource = errors.New("document has no _source")

// ErrEmptyClusterAddresses returns error for cluster with no addresses.
func ErrEmptyClusterAddresses(clusterName string) error {
	return fmt.Errorf("cluster %q has no addresses", clusterName)
}

// ErrInvalidESVersion returns error for unsupported ES version.
func ErrInvalidESVersion(clusterName string, version int) error {
	return fmt.Errorf("cluster %q has invalid ES version %d (must be 8 or 9)", clusterName, version)
}

// ErrClusterNotFound returns error when cluster is not found in registry.
func ErrClusterNotFound(clusterName string) error {
	return fmt.Errorf("cluster %q not found in registry", clusterName)
}

// ErrInvalidBaseURL returns error for invalid cluster base URL.
func ErrInvalidBaseURL(clusterName, address string) error {
	return fmt.Errorf("cluster %q has invalid base URL %q (must be absolute URL)", clusterName, address)
}

// ErrorCause is the error object Elasticsearch returns for failed requests and failed items.
type ErrorCause struct {
	Type      string       `json:"type"`
	Reason    string       `json:"reason"`
	Index     string       `json:"index,omitempty"`
	RootCause []ErrorCause `json:"root_cause,omitempty"`
	CausedBy  *ErrorCause  `json:"caused_by,omitempty"`
}

// StatusError is returned when Elasticsearch answers with a non-2xx status.
// Body holds the raw response body.
type StatusError struct {
	Op         string
	StatusCode int
	Type       string
	Reason     string
	Body       []byte
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s returned status code %d", e.Op, e.StatusCode)
	if e.Op == "" {
		msg = fmt.Sprintf("elasticsearch returned status %d", e.StatusCode)
	}
	if e.Type != "" {
		msg += fmt.Sprintf(": %s: %s", e.Type, e.Reason)
	}
	return msg
}

// newStatusError parses the engine's error body. Bodies that are not an error
// object, such as {"found":false} of a missing document, are kept raw.
func newStatusError(statusCode int, body []byte) *StatusError {
	e := &StatusError{StatusCode: statusCode, Body: body}

	var payload struct {
		Error json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Error) == 0 {
		return e
	}

	var cause ErrorCause
	if err := json.Unmarshal(payload.Error, &cause); err == nil {
		e.Type = cause.Type
		e.Reason = cause.Reason
		return e
	}

	var reason string
	if err := json.Unmarshal(payload.Error, &reason); err == nil {
		e.Reason = reason
	}
	return e
}

// StatusCodeOf returns the HTTP status carried by err, or 0 if err is not a StatusError.
func StatusCodeOf(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// IsNotFound reports whether err is a 404 from Elasticsearch.
func IsNotFound(err error) bool {
	return StatusCodeOf(err) == http.StatusNotFound
}

// IsConflict reports whether err is a 409 version conflict.
func IsConflict(err error) bool {
	return StatusCodeOf(err) == http.StatusConflict
}
