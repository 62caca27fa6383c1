// Package core provides the main Lifelog client and daily summary functionality.
package core

import (
	"errors"
	"fmt"
)

// Predefined errors for common failure scenarios.
var (
	// ErrInvalidConfig indicates that the provided configuration is invalid.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInvalidInput indicates that the provided input is invalid.
	ErrInvalidInput = errors.New("invalid input")

	// ErrUpstreamUnavailable indicates that a required upstream service could not be reached.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")

	// ErrAmbiguousAggregation indicates that source data was contradictory for a day.
	ErrAmbiguousAggregation = errors.New("ambiguous aggregation")

	// ErrStorageOperation indicates that a storage operation failed.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrGenerationFailed indicates that summary text generation failed.
	ErrGenerationFailed = errors.New("generation failed")
)

// Pipeline stages reported by SummaryError.Stage.
const (
	StageAggregate = "aggregate"
	StageGenerate  = "generate"
	StageEmbed     = "embed"
	StageIndex     = "index"
)

// SummaryError wraps errors from the summary pipeline with the date and
// stage that failed.
//
// Example:
//
//	err := &SummaryError{
//	    Date:  "2024-06-01",
//	    Stage: StageGenerate,
//	    Err:   ErrGenerationFailed,
//	}
//	// Error() returns: "lifelog: 2024-06-01: generate: generation failed"
type SummaryError struct {
	// Date is the day the pipeline was processing, formatted YYYY-MM-DD.
	Date string

	// Stage is the pipeline stage that failed (aggregate, generate, embed, index).
	Stage string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "lifelog: <Date>: <Stage>: <Err>"
func (e *SummaryError) Error() string {
	return fmt.Sprintf("lifelog: %s: %s: %v", e.Date, e.Stage, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with SummaryError.
func (e *SummaryError) Unwrap() error {
	return e.Err
}

// NewSummaryError creates a new SummaryError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewSummaryError(date, StageEmbed, err)
//	}
//
// Parameters:
//   - date: The day being processed, formatted YYYY-MM-DD
//   - stage: The pipeline stage (aggregate, generate, embed, index)
//   - err: The underlying error to wrap
//
// Returns a SummaryError, or nil if err is nil.
func NewSummaryError(date, stage string, err error) error {
	if err == nil {
		return nil
	}
	return &SummaryError{
		Date:  date,
		Stage: stage,
		Err:   err,
	}
}

// ClientError wraps errors with operation context outside the per-day pipeline.
//
// The format is: "lifelog: <Op>: <Err>"
type ClientError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
func (e *ClientError) Error() string {
	return fmt.Sprintf("lifelog: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *ClientError) Unwrap() error {
	return e.Err
}

// NewClientError creates a new ClientError wrapping the given error.
//
// If err is nil, returns nil.
func NewClientError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &ClientError{
		Op:  op,
		Err: err,
	}
}
