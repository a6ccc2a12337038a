package domain

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned by record stores for unknown record IDs
var ErrNotFound = errors.New("resource not found")

// UpstreamError wraps a failed call to the record store or identity
// provider, carrying best-effort detail extracted from the upstream
// error body. It is never retried automatically.
type UpstreamError struct {
	Service string // "graph" or "azuread"
	Status  int    // upstream HTTP status, 0 for transport failures
	Detail  string
	Err     error
}

func (e *UpstreamError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s upstream error (status %d): %s", e.Service, e.Status, e.Detail)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s upstream error: %v", e.Service, e.Err)
	}
	return fmt.Sprintf("%s upstream error (status %d)", e.Service, e.Status)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// IsUpstreamError reports whether err is (or wraps) an UpstreamError.
func IsUpstreamError(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue)
}
