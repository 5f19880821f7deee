package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownReportType is returned when a submission names a report type the
// core does not handle.
var ErrUnknownReportType = errors.New("unknown report type")

// ValidationError reports a missing or unresolvable field detected before
// any backend write is attempted. It blocks the submission entirely.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// newUnresolvedRef builds the ValidationError used when a status value is
// neither a reference id nor a known display name.
func newUnresolvedRef(field, value string) *ValidationError {
	return &ValidationError{
		Field:  field,
		Reason: fmt.Sprintf("value %q does not match any reference option", value),
	}
}

// PartialSubmissionError reports that one or more calls in a parallel batch
// failed while siblings succeeded, leaving the backend with a root report but
// an incomplete child graph. Every sibling is waited for and every failure is
// collected, not just the first.
type PartialSubmissionError struct {
	// Step names the orchestration step that failed ("details", "images").
	Step string

	// RootReportID is the already-created aggregate root left behind.
	RootReportID string

	// Errs holds one error per failed sibling call.
	Errs []error
}

func (e *PartialSubmissionError) Error() string {
	msgs := make([]string, len(e.Errs))
	for i, err := range e.Errs {
		msgs[i] = err.Error()
	}
	return fmt.Sprintf("partial submission at step %q (report %s): %s",
		e.Step, e.RootReportID, strings.Join(msgs, "; "))
}

// Unwrap exposes the collected sibling errors to errors.Is / errors.As.
func (e *PartialSubmissionError) Unwrap() []error {
	return e.Errs
}
