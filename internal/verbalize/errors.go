package verbalize

import (
	"errors"
	"fmt"
)

var (
	// ErrConfiguration is returned for a benchmark that has no registered entry
	ErrConfiguration = errors.New("benchmark not configured")

	// ErrExtraction is wrapped by every ExtractionError
	ErrExtraction = errors.New("extraction failed")
)

// ExtractionError reports a record that lacks the fields its benchmark expects
type ExtractionError struct {
	Benchmark string
	Field     string
	Reason    string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", e.Benchmark, e.Field, e.Reason)
}

func (e *ExtractionError) Unwrap() error {
	return ErrExtraction
}
