// Package report provides the submission core for maintenance inspection
// reports. It converts loosely-shaped, UI-collected form state into canonical
// backend records, decides whether an inspection component actually carries
// user-entered data, and orchestrates the dependency-ordered creation of the
// report entity graph against the report-management backend.
//
// This package has no HTTP or storage dependencies of its own; the backend
// transport is injected via the API interface and persistence of the entity
// graph is owned by the backend service.
package report

import (
	"encoding/json"
	"strings"
	"time"
)

// Report type tags carried by a submission. Each maps to a reference id on the
// backend (resolved at submission time from the report-type options).
const (
	TypeCorrective       = "corrective-maintenance"
	TypePreventiveRTU    = "preventive-maintenance-rtu"
	TypePreventiveServer = "preventive-maintenance-server"
)

// RootReport is the aggregate root for one submitted maintenance report.
// Every other entity created during a submission carries its ID as a
// foreign key.
type RootReport struct {
	ID             string    `json:"id,omitempty"`
	TypeID         string    `json:"reportTypeId"`
	JobNumber      string    `json:"jobNumber,omitempty"`
	SystemID       string    `json:"systemId"`
	StationID      string    `json:"stationId"`
	UploadStatus   string    `json:"uploadStatus,omitempty"`
	FormStatus     string    `json:"formStatus,omitempty"`
	IdempotencyKey string    `json:"idempotencyKey,omitempty"`
	CreatedByID    string    `json:"createdById"`
	CreatedAt      time.Time `json:"createdAt,omitzero"`
	UpdatedAt      time.Time `json:"updatedAt,omitzero"`
}

// DetailRow is one line item inside a ComponentRecord or a child detail
// collection. The wire shape is shared across all detail tables; fields that
// do not apply to a given component are simply omitted.
type DetailRow struct {
	ID                  string `json:"id,omitempty"`
	SerialNumber        string `json:"serialNumber,omitempty"`
	ServerName          string `json:"serverName,omitempty"`
	MachineName         string `json:"machineName,omitempty"`
	ServiceName         string `json:"serviceName,omitempty"`
	DatabaseName        string `json:"databaseName,omitempty"`
	ChamberNumber       string `json:"chamberNumber,omitempty"`
	FanNumber           string `json:"fanNumber,omitempty"`
	Command             string `json:"command,omitempty"`
	SourceServer        string `json:"sourceServer,omitempty"`
	DestinationServer   string `json:"destinationServer,omitempty"`
	DiskName            string `json:"diskName,omitempty"`
	Capacity            string `json:"capacity,omitempty"`
	FreeSpace           string `json:"freeSpace,omitempty"`
	UsagePercentage     string `json:"usagePercentage,omitempty"`
	BackupDate          string `json:"backupDate,omitempty"`
	Month               string `json:"month,omitempty"`
	Description         string `json:"description,omitempty"`
	Quantity            string `json:"quantity,omitempty"`
	ResultStatusID      string `json:"resultStatusId,omitempty"`
	YesNoStatusID       string `json:"yesNoStatusId,omitempty"`
	ASAFirewallStatusID string `json:"asaFirewallStatusId,omitempty"`
	DiskStatusID        string `json:"diskStatusId,omitempty"`
	Remarks             string `json:"remarks,omitempty"`
}

// HasContent reports whether the row carries any user-entered value.
// The serial number is excluded: it is reassigned mechanically during
// normalization and says nothing about user input.
func (d DetailRow) HasContent() bool {
	fields := []string{
		d.ServerName, d.MachineName, d.ServiceName, d.DatabaseName,
		d.ChamberNumber, d.FanNumber, d.Command,
		d.SourceServer, d.DestinationServer,
		d.DiskName, d.Capacity, d.FreeSpace, d.UsagePercentage,
		d.BackupDate, d.Month, d.Description, d.Quantity,
		d.ResultStatusID, d.YesNoStatusID, d.ASAFirewallStatusID, d.DiskStatusID,
		d.Remarks,
	}
	for _, f := range fields {
		if strings.TrimSpace(f) != "" {
			return true
		}
	}
	return false
}

// ComponentRecord is one inspection section's normalized payload.
//
// Most components use Remarks plus a single Details list. Flat components
// (single yes/no result and remarks) carry a status id directly on the record
// and have no details. Compound components (CPU/RAM usage, database backup)
// fan out into named lists under Lists instead of Details.
type ComponentRecord struct {
	Component      string                 `json:"component"`
	Remarks        string                 `json:"remarks"`
	ResultStatusID string                 `json:"resultStatusId,omitempty"`
	YesNoStatusID  string                 `json:"yesNoStatusId,omitempty"`
	Details        []DetailRow            `json:"details,omitempty"`
	Lists          map[string][]DetailRow `json:"lists,omitempty"`
}

// ImageFile is one photo attachment collected by the UI, grouped under a
// section name before submission.
type ImageFile struct {
	Name    string
	Content []byte
}

// ImageAttachment is a stored attachment record returned by the backend.
type ImageAttachment struct {
	ID           string `json:"id"`
	RootReportID string `json:"reportId"`
	ImageTypeID  string `json:"imageTypeId"`
	StoredName   string `json:"storedName"`
	SectionName  string `json:"sectionName,omitempty"`
}

// SubmissionForm is the raw, UI-collected state for one report submission.
// Exactly one of Corrective, RTU or Server is set, matching ReportType.
//
// CreatedByID is the submitting technician's user id, passed explicitly by
// the caller rather than read from ambient session state.
type SubmissionForm struct {
	ReportType  string `json:"reportType"`
	SystemID    string `json:"systemId"`
	StationID   string `json:"stationId"`
	FormStatus  string `json:"formStatus,omitempty"`
	CreatedByID string `json:"createdById"`

	Corrective *CorrectiveForm `json:"corrective,omitempty"`
	RTU        *RTUPMForm      `json:"rtu,omitempty"`
	Server     *ServerPMForm   `json:"server,omitempty"`
}

// CorrectiveForm holds the corrective-maintenance scalar fields plus the
// material-used detail rows in their raw UI shape.
type CorrectiveForm struct {
	FailureDetectedDate string          `json:"failureDetectedDate,omitempty"`
	ResponseDate        string          `json:"responseDate,omitempty"`
	ArrivalDate         string          `json:"arrivalDate,omitempty"`
	CompletionDate      string          `json:"completionDate,omitempty"`
	FailureSummary      string          `json:"failureSummary,omitempty"`
	FaultDuration       string          `json:"faultDuration,omitempty"`
	Cause               string          `json:"cause,omitempty"`
	Rectification       string          `json:"rectification,omitempty"`
	FurtherActionID     string          `json:"furtherActionId,omitempty"`
	Remarks             string          `json:"remarks,omitempty"`
	MaterialUsed        json.RawMessage `json:"materialUsed,omitempty"`
}

// RTUPMForm holds the RTU preventive-maintenance scalar fields plus the four
// child detail collections in their raw UI shape.
type RTUPMForm struct {
	DateOfService    string          `json:"dateOfService,omitempty"`
	CleaningStatusID string          `json:"cleaningStatusId,omitempty"`
	Remarks          string          `json:"remarks,omitempty"`
	MainRTUCabinet   json.RawMessage `json:"mainRtuCabinet,omitempty"`
	ChamberContact   json.RawMessage `json:"chamberMagneticContact,omitempty"`
	CabinetCooling   json.RawMessage `json:"rtuCabinetCooling,omitempty"`
	DVREquipment     json.RawMessage `json:"dvrEquipment,omitempty"`
}

// ServerPMForm holds the server preventive-maintenance state: one raw blob
// per inspection component, keyed by registered component name.
type ServerPMForm struct {
	DateOfService string                     `json:"dateOfService,omitempty"`
	Remarks       string                     `json:"remarks,omitempty"`
	Components    map[string]json.RawMessage `json:"components,omitempty"`
}

// SpecializedReport identifies the type-specific report entity created for a
// submission.
type SpecializedReport struct {
	ID           string `json:"id"`
	RootReportID string `json:"reportId"`
	ReportType   string `json:"reportType"`
}

// SubmissionResult is returned by a successful submission.
type SubmissionResult struct {
	RootReport        RootReport        `json:"rootReport"`
	SpecializedReport SpecializedReport `json:"specializedReport"`
	JobNumber         string            `json:"jobNumber"`
}
