package extract

import (
	"errors"
	"fmt"
)

// Causes wrapped by ExtractionIOError when a source's header row is unusable.
var (
	ErrNoHeader            = errors.New("source has no header row")
	ErrBlankHeaderName     = errors.New("header contains a blank field name")
	ErrDuplicateHeaderName = errors.New("header contains a duplicate field name")
	ErrInvalidEncoding     = errors.New("field is not valid UTF-8")
)

// InvalidSourceError reports a source descriptor that does not resolve to a
// usable input, e.g. a path that does not exist. It is returned before any I/O
// is attempted, so fixing the descriptor and retrying is always safe.
type InvalidSourceError struct {
	Source string // Offending descriptor (path, query, ...).
	Reason string // Human-readable explanation.
	Err    error  // Underlying cause, may be nil.
}

func (e *InvalidSourceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid source '%s': %s: %v", e.Source, e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid source '%s': %s", e.Source, e.Reason)
}

func (e *InvalidSourceError) Unwrap() error { return e.Err }

// ExtractionIOError reports a failure while reading or parsing a source that
// passed its precondition check: the file vanished mid-read, the bytes were
// not valid UTF-8, the delimited text was malformed, and so on.
type ExtractionIOError struct {
	Source string // Offending descriptor (path, query, ...).
	Op     string // Step that failed, e.g. "open", "parse", "header".
	Err    error  // Underlying cause.
}

func (e *ExtractionIOError) Error() string {
	return fmt.Sprintf("extraction from '%s' failed during %s: %v", e.Source, e.Op, e.Err)
}

func (e *ExtractionIOError) Unwrap() error { return e.Err }

// NewIOError wraps err as an ExtractionIOError for source during op.
func NewIOError(source, op string, err error) *ExtractionIOError {
	return &ExtractionIOError{Source: source, Op: op, Err: err}
}
