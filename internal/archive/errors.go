package archive

import (
	"errors"
	"fmt"
)

var (
	// ErrCatalogUnavailable is returned when the snapshot catalog cannot be
	// fetched or decoded
	ErrCatalogUnavailable = errors.New("snapshot catalog unavailable")

	// ErrDecode marks a snapshot lookup whose body is not line-delimited JSON
	ErrDecode = errors.New("malformed index response")

	// ErrPresenceCheck is wrapped by every PresenceCheckError
	ErrPresenceCheck = errors.New("presence check failed")

	// ErrBackendUnavailable is returned when a backend was not configured
	ErrBackendUnavailable = errors.New("archive backend not configured")
)

// PresenceCheckError normalizes transport, status and body failures of a
// presence lookup
type PresenceCheckError struct {
	Backend    string
	URL        string
	StatusCode int // 0 when no response was received
	Err        error
}

func (e *PresenceCheckError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s lookup for %q: status %d", e.Backend, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s lookup for %q: %v", e.Backend, e.URL, e.Err)
}

func (e *PresenceCheckError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrPresenceCheck}
	}
	return []error{ErrPresenceCheck, e.Err}
}
