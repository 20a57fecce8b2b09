package loadgate

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrClosed is returned after the gate has been closed.
	ErrClosed = errors.New("loadgate: closed")

	// ErrEmptySource is returned for an empty source string.
	ErrEmptySource = errors.New("loadgate: empty source")

	// ErrUnsupportedScheme is returned for URI schemes the fetcher cannot read.
	ErrUnsupportedScheme = errors.New("loadgate: unsupported scheme")

	// ErrNotImage is returned when the fetched bytes are not a known image format.
	ErrNotImage = errors.New("loadgate: not an image")

	// ErrTooLarge is returned when the payload or the decoded image exceeds a limit.
	ErrTooLarge = errors.New("loadgate: image too large")

	// ErrBadStatus is returned for non-2xx HTTP responses.
	ErrBadStatus = errors.New("loadgate: unexpected HTTP status")
)

// FetchError records a failed load of one source.
type FetchError struct {
	Src string
	Op  string
	Err error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("loadgate: %s %q: %v", e.Op, e.Src, e.Err)
	}
	return fmt.Sprintf("loadgate: %q: %v", e.Src, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error {
	return e.Err
}

// wrapFetchError attaches src to err unless it already carries a FetchError.
func wrapFetchError(src, op string, err error) error {
	if err == nil {
		return nil
	}
	var fe *FetchError
	if errors.As(err, &fe) {
		return err
	}
	return &FetchError{Src: src, Op: op, Err: err}
}
