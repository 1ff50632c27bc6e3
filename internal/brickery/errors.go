package brickery

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrAuthRequired reports that no API token is configured. It is raised
// locally before any network I/O so callers can distinguish "log in first"
// from a failed request.
var ErrAuthRequired = errors.New("authentication required: no API token configured")

// Kind classifies API failures so callers can decide whether a retry makes
// sense and how to phrase the error.
type Kind int

const (
	// KindTransient covers network failures and 5xx responses; the action
	// may succeed if the user retries.
	KindTransient Kind = iota
	// KindAuth is a 401: the token is missing, expired, or revoked.
	KindAuth
	// KindForbidden is a 403: authenticated but not allowed, retrying
	// will not help.
	KindForbidden
	// KindNotFound is a 404 on a read.
	KindNotFound
	// KindConflict is a 409: the desired end state already holds.
	KindConflict
	// KindValidation covers 400/422 request-shape rejections.
	KindValidation
)

func (k Kind) String() string {
	switch k {
	case KindAuth:
		return "auth"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not-found"
	case KindConflict:
		return "conflict"
	case KindValidation:
		return "validation"
	default:
		return "transient"
	}
}

// APIError is the normalized form of every non-2xx response.
type APIError struct {
	StatusCode int
	Kind       Kind
	Message    string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api %s (%d): %s", e.Kind, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api %s (%d)", e.Kind, e.StatusCode)
}

// Retryable reports whether the failure class is worth retrying. Forbidden
// and validation failures will fail the same way every time.
func (e *APIError) Retryable() bool {
	return e.Kind == KindTransient
}

func kindForStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindAuth
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status == http.StatusConflict:
		return KindConflict
	case status >= 500:
		return KindTransient
	default:
		return KindValidation
	}
}

// swallowStatus drops an APIError of the given status, used for the
// idempotent-conflict contract: 409 on add and 404 on remove confirm the
// desired end state rather than report a failure.
func swallowStatus(err error, status int) error {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode == status {
		return nil
	}
	return err
}
