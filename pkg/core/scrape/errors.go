package scrape

import "errors"

var (
	// ErrMalformedPeriodText means the period markers or dates could not
	// be located. Callers treat it as "no period available".
	ErrMalformedPeriodText = errors.New("malformed period text")

	// ErrTableNotFound means the configured table index does not exist
	// in the document. The whole filing is then retryable.
	ErrTableNotFound = errors.New("statement table not found")
)
