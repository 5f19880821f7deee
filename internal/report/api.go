package report

// api.go declares the backend surface the submission core depends on. The
// concrete implementation lives in internal/rms; tests substitute a fake.

import (
	"context"
	"io"
)

// CorrectiveReportParams creates the corrective-maintenance report entity.
type CorrectiveReportParams struct {
	RootReportID        string `json:"reportId"`
	FailureDetectedDate string `json:"failureDetectedDate,omitempty"`
	ResponseDate        string `json:"responseDate,omitempty"`
	ArrivalDate         string `json:"arrivalDate,omitempty"`
	CompletionDate      string `json:"completionDate,omitempty"`
	FailureSummary      string `json:"failureSummary,omitempty"`
	FaultDuration       string `json:"faultDuration,omitempty"`
	Cause               string `json:"cause,omitempty"`
	Rectification       string `json:"rectification,omitempty"`
	FurtherActionID     string `json:"furtherActionId,omitempty"`
	Remarks             string `json:"remarks,omitempty"`
}

// RTUReportParams creates the RTU preventive-maintenance report entity.
type RTUReportParams struct {
	RootReportID     string `json:"reportId"`
	DateOfService    string `json:"dateOfService,omitempty"`
	CleaningStatusID string `json:"cleaningStatusId,omitempty"`
	Remarks          string `json:"remarks,omitempty"`
}

// ServerReportParams creates the server preventive-maintenance report entity
// in one consolidated call carrying every normalized component record.
type ServerReportParams struct {
	RootReportID  string            `json:"reportId"`
	DateOfService string            `json:"dateOfService,omitempty"`
	Remarks       string            `json:"remarks,omitempty"`
	Components    []ComponentRecord `json:"components"`
}

// UploadImageParams uploads one attachment bound to a root report.
type UploadImageParams struct {
	RootReportID string
	FileName     string
	Content      io.Reader
	ImageTypeID  string
	SectionName  string
}

// API is the report-management backend as seen by the submission core.
//
// Every method maps to one backend call. Implementations convert non-2xx
// responses into errors carrying the server-provided message and perform no
// retries; failure semantics are owned by the orchestrator.
type API interface {
	// ReferenceOptions returns the lookup values for one reference kind.
	ReferenceOptions(ctx context.Context, kind string) ([]ReferenceOption, error)

	// CreateRootReport creates the aggregate root and returns it with its
	// id and derived job number populated.
	CreateRootReport(ctx context.Context, r RootReport) (RootReport, error)

	CreateCorrectiveReport(ctx context.Context, p CorrectiveReportParams) (SpecializedReport, error)
	CreateRTUReport(ctx context.Context, p RTUReportParams) (SpecializedReport, error)
	CreateServerReport(ctx context.Context, p ServerReportParams) (SpecializedReport, error)

	// CreateDetailRows creates one child detail collection under the given
	// specialized report.
	CreateDetailRows(ctx context.Context, child, reportID string, rows []DetailRow) error

	// UpdateDetailRow updates one existing detail row by its id.
	UpdateDetailRow(ctx context.Context, child, reportID string, row DetailRow) error

	// DeleteDetailRow deletes one detail row by its id.
	DeleteDetailRow(ctx context.Context, child, rowID string) error

	// UploadImage uploads one attachment.
	UploadImage(ctx context.Context, p UploadImageParams) (ImageAttachment, error)

	// DeleteImage removes one stored attachment by its id.
	DeleteImage(ctx context.Context, attachmentID string) error
}
