package countytax

import (
	"errors"
	"fmt"
)

// ErrValueUnparsable marks text that was found where a value was
// expected but could not be parsed. It is recorded as a missing value
// for that field and never aborts record assembly.
var ErrValueUnparsable = errors.New("value unparsable")

type UnparsableValueError struct {
	Kind ValueKind
	Text string
}

func (e *UnparsableValueError) Error() string {
	return fmt.Sprintf("value unparsable as %s: %q", e.Kind, e.Text)
}

func (e *UnparsableValueError) Is(target error) bool {
	return target == ErrValueUnparsable
}

// ConfigError is a load-time failure in a county config. It is fatal
// and aborts before any fetch is issued.
type ConfigError struct {
	County string
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config %s, field %s: %s", e.County, e.Field, e.Reason)
	}
	return fmt.Sprintf("config %s: %s", e.County, e.Reason)
}

// FetchError is a network or document-parse failure. Fatal for the one
// parcel it concerns, never for the batch.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ExtractionFailure means a record could not be assembled at all:
// either a required field (tax year) was unresolvable or the input
// kinds are not supported by the county. Fatal per parcel,
// skip-and-continue at batch level.
type ExtractionFailure struct {
	County string
	Reason string
}

func (e *ExtractionFailure) Error() string {
	return fmt.Sprintf("extraction failed for %s: %s", e.County, e.Reason)
}

// Warning is a non-fatal, report-only finding: an unparsable field
// value, a skipped table row, a data-loss edge case.
type Warning struct {
	Field  string
	Detail string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Field, w.Detail)
}
