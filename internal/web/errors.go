package web

// errors.go provides unified error response handling for the web layer.
//
// It ensures all errors are:
//   - Logged with full technical details for debugging (server-side)
//   - Returned to clients as user-friendly messages with action suggestions
//
// The error flow:
//  1. Handler encounters an error
//  2. Calls respondError(w, r, err)
//  3. Error is mapped via report.MapError to get user-friendly message
//  4. Technical error + context is logged with request ID for correlation
//  5. User message is returned as JSON with an appropriate status code

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/rms"
	"github.com/go-chi/chi/v5/middleware"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action)
// fields. RootReportID is set when a submission failed after the root report
// was already created, so the caller can reference the orphaned graph.
type ErrorResponse struct {
	Error        string `json:"error"`
	Message      string `json:"message"`
	Action       string `json:"action,omitempty"`
	Code         string `json:"code"`
	RootReportID string `json:"rootReportId,omitempty"`
}

// respondError handles error responses with user-friendly messages.
// It logs the technical error server-side and returns JSON to the client.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	statusCode := statusForError(err)
	userMsg := report.MapError(err)

	// Get request ID for correlation
	requestID := middleware.GetReqID(r.Context())

	// Log the technical error with context
	slog.Error("request error",
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
		"request_id", requestID,
	)

	resp := ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	}

	var partial *report.PartialSubmissionError
	var apiErr *rms.APIError
	switch {
	case errors.As(err, &partial):
		resp.RootReportID = partial.RootReportID
	case errors.As(err, &apiErr):
		// The backend's own message is the most specific guidance
		// available; show it verbatim alongside the catalog code.
		resp.Error = apiErr.Message
		resp.Message = apiErr.Message
	}

	writeJSON(w, statusCode, resp)
}

// statusForError picks the HTTP status for a submission error.
func statusForError(err error) int {
	var valErr *report.ValidationError
	if errors.As(err, &valErr) || errors.Is(err, report.ErrUnknownReportType) {
		return http.StatusBadRequest
	}

	if errors.Is(err, report.ErrTooManyUploads) {
		return http.StatusTooManyRequests
	}

	// A partial failure is always a gateway problem, even when the
	// aggregated sibling errors include backend 4xx responses.
	var partial *report.PartialSubmissionError
	if errors.As(err, &partial) {
		return http.StatusBadGateway
	}

	// Client errors from the backend pass through; its outages surface
	// as a bad gateway.
	var apiErr *rms.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	}

	return http.StatusInternalServerError
}
