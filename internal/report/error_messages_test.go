package report

import (
	"errors"
	"strings"
	"testing"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{name: "nil", err: nil, wantCode: "OK"},
		{name: "unresolved reference", err: newUnresolvedRef("result", "Sideways"), wantCode: "VAL001"},
		{name: "missing user", err: &ValidationError{Field: "createdById", Reason: "current-user id is required"}, wantCode: "VAL002"},
		{name: "missing reference", err: &ValidationError{Field: "systemId", Reason: "system reference is required"}, wantCode: "VAL003"},
		{name: "unknown section", err: &ValidationError{Field: "images", Reason: `no image-type option for section "polaroids"`}, wantCode: "VAL004"},
		{name: "upload congestion", err: ErrTooManyUploads, wantCode: "SUB002"},
		{name: "wrapped upload congestion", err: errors.Join(errors.New("a.jpg"), ErrTooManyUploads), wantCode: "SUB002"},
		{name: "backend rejection", err: errors.New("create root report: backend returned 422: station is required"), wantCode: "RMS001"},
		{name: "backend outage", err: errors.New("create root report: backend returned 500: station FK violation: unknown station id"), wantCode: "RMS002"},
		{name: "backend unreachable", err: errors.New(`Post "http://rms/api/report-forms": dial tcp: connection refused`), wantCode: "RMS002"},
		{name: "unknown", err: errors.New("something strange"), wantCode: "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := MapError(tt.err)
			if msg.Code != tt.wantCode {
				t.Errorf("MapError(%v).Code = %q, want %q", tt.err, msg.Code, tt.wantCode)
			}
			if msg.Message == "" {
				t.Error("empty user message")
			}
		})
	}
}

func TestMapError_PartialSubmission(t *testing.T) {
	err := &PartialSubmissionError{
		Step:         "images",
		RootReportID: "root-77",
		Errs:         []error{errors.New("disk full")},
	}

	msg := MapError(err)
	if msg.Code != "SUB001" {
		t.Errorf("Code = %q, want SUB001", msg.Code)
	}
	if !strings.Contains(msg.Action, "root-77") {
		t.Errorf("Action = %q, should carry the orphaned report id", msg.Action)
	}
}

func TestPartialSubmissionError_Unwrap(t *testing.T) {
	inner := errors.New("constraint violation")
	err := &PartialSubmissionError{
		Step:         "details",
		RootReportID: "root-1",
		Errs:         []error{errors.New("timeout"), inner},
	}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should reach collected sibling errors")
	}
	for _, want := range []string{"details", "root-1", "timeout", "constraint violation"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Error() = %q, missing %q", err.Error(), want)
		}
	}
}
