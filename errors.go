package docspdf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the library.
var (
	// ErrClosed is returned when attempting to use a closed [Generator].
	ErrClosed = errors.New("docspdf: generator is closed")

	// ErrNoEntryURLs is returned by [Config.Validate] when no entry URL is set.
	ErrNoEntryURLs = errors.New("docspdf: at least one entry URL is required")

	// ErrNoContentSelector is returned by [Config.Validate] when the content
	// selector is empty.
	ErrNoContentSelector = errors.New("docspdf: content selector is required")

	// ErrInvalidHeadingLevel is returned when MaxHeadingLevel is outside 1-6.
	ErrInvalidHeadingLevel = errors.New("docspdf: heading level must be between 1 and 6")
)

// NavigationError reports a page that could not be loaded. It aborts the
// whole run.
type NavigationError struct {
	URL    string
	Reason string // browser error text, e.g. net::ERR_NAME_NOT_RESOLVED
	Err    error
}

func (e *NavigationError) Error() string {
	switch {
	case e.Err != nil && e.Reason != "":
		return fmt.Sprintf("docspdf: navigating to %s: %s: %v", e.URL, e.Reason, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("docspdf: navigating to %s: %v", e.URL, e.Err)
	default:
		return fmt.Sprintf("docspdf: navigating to %s: %s", e.URL, e.Reason)
	}
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}
