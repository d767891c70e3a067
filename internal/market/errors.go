package market

import "errors"

// Error taxonomy for the pipeline. Source-fetch errors are isolated per
// source; strategy errors degrade only that signal. Callers distinguish
// classes with errors.Is.
var (
	// ErrTimeout: a fetch attempt exceeded its deadline.
	ErrTimeout = errors.New("source timed out")
	// ErrRateLimited: the upstream signalled request throttling.
	ErrRateLimited = errors.New("source rate limited")
	// ErrDataFormat: missing or unexpected columns, or a value that
	// cannot be coerced to a number.
	ErrDataFormat = errors.New("unexpected data format")
	// ErrEmptyResult: the source answered but returned no rows.
	ErrEmptyResult = errors.New("source returned no data")
	// ErrConfiguration: invalid caller-supplied configuration.
	ErrConfiguration = errors.New("invalid configuration")
	// ErrComputation: an internal computation failed.
	ErrComputation = errors.New("internal computation failed")
)
