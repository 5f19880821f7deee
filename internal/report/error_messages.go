package report

// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support
// reference. When technicians encounter errors during submission, they can
// quote the error code to support staff for faster diagnosis.
//
// # Validation Errors (VAL001-VAL099)
//
//	VAL001 - Unresolved reference: a status value matches no reference option
//	         Action: Re-select the status from the picker and try again
//	VAL002 - Missing user: the current-user id was not supplied
//	         Action: Sign in again before submitting
//	VAL003 - Missing reference: a required system/station reference is empty
//	         Action: Fill in the report header fields
//	VAL004 - Unknown section: an image section has no configured image type
//	         Action: Contact support; the section configuration is incomplete
//
// # Backend Errors (RMS001-RMS099)
//
//	RMS001 - Backend rejected the request (4xx)
//	         Action: Review the message and correct the submission
//	RMS002 - Backend unavailable or failing (5xx/connection)
//	         Action: Please try again in a few moments
//
// # Submission Errors (SUB001-SUB099)
//
//	SUB001 - Partial submission: the root report exists but part of its
//	         child graph or images failed
//	         Action: Quote the root report id to support for cleanup;
//	         do not resubmit
//	SUB002 - Upload congestion: too many image uploads in flight
//	         Action: Wait a moment and try again
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error
//	         Action: Please try again or contact support
//
// Patterns are matched case-insensitively with strings.Contains; the first
// match wins, so specific patterns come before general ones.

import (
	"errors"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var errorPatterns = []errorPattern{
	{
		pattern: "does not match any reference option",
		msg: UserMessage{
			Message: "A status value could not be matched to a known option",
			Action:  "Re-select the status from the picker and try again",
			Code:    "VAL001",
		},
	},
	{
		pattern: "current-user id is required",
		msg: UserMessage{
			Message: "Your session did not provide a user id",
			Action:  "Sign in again before submitting",
			Code:    "VAL002",
		},
	},
	{
		pattern: "reference is required",
		msg: UserMessage{
			Message: "A required report header field is empty",
			Action:  "Fill in the system and station fields",
			Code:    "VAL003",
		},
	},
	{
		pattern: "no image-type option for section",
		msg: UserMessage{
			Message: "An image section is not configured on the backend",
			Action:  "Contact support; the section configuration is incomplete",
			Code:    "VAL004",
		},
	},
	{
		pattern: "backend returned 4",
		msg: UserMessage{
			Message: "The backend rejected the request",
			Action:  "Review the message and correct the submission",
			Code:    "RMS001",
		},
	},
	{
		pattern: "backend returned 5",
		msg: UserMessage{
			Message: "The backend service is unavailable or failing",
			Action:  "Please try again in a few moments",
			Code:    "RMS002",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "The backend service could not be reached",
			Action:  "Please try again in a few moments",
			Code:    "RMS002",
		},
	},
	{
		pattern: "too many concurrent uploads",
		msg: UserMessage{
			Message: "Too many image uploads are in flight",
			Action:  "Wait a moment and try again",
			Code:    "SUB002",
		},
	},
	{
		pattern: "partial submission",
		msg: UserMessage{
			Message: "The report was created but part of it failed to save",
			Action:  "Quote the report id to support for cleanup; do not resubmit",
			Code:    "SUB001",
		},
	},
}

// MapError converts a technical error into a user-friendly message.
//
// Typed errors are inspected first; remaining errors fall back to pattern
// matching on the message text, then to the generic ERR000.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{Message: "Success", Code: "OK"}
	}

	var partial *PartialSubmissionError
	if errors.As(err, &partial) {
		return UserMessage{
			Message: "The report was created but part of it failed to save",
			Action:  "Quote report id " + partial.RootReportID + " to support; do not resubmit",
			Code:    "SUB001",
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, p := range errorPatterns {
		if strings.Contains(errStr, strings.ToLower(p.pattern)) {
			return p.msg
		}
	}

	return UserMessage{
		Message: "An unexpected error occurred",
		Action:  "Please try again or contact support",
		Code:    "ERR000",
	}
}
