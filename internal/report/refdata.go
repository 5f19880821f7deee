package report

// refdata.go resolves UI-entered status values against backend reference
// options. The UI sometimes stores the option's display name ("Pass",
// "Done") and sometimes the option id itself, depending on which picker
// produced the value; resolution accepts both.

import (
	"strings"

	"github.com/google/uuid"
)

// ReferenceOption is one lookup value with a stable id and a display name.
type ReferenceOption struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Reference option kinds served by the backend's read-only lookup endpoints.
const (
	RefReportTypes    = "report-types"
	RefResultStatuses = "result-statuses"
	RefYesNoStatuses  = "yes-no-statuses"
	RefDiskStatuses   = "disk-statuses"
	RefASAStatuses    = "asa-firewall-statuses"
	RefFurtherActions = "further-actions"
	RefImageTypes     = "image-types"
)

// ReferenceSet holds all reference options a submission needs, fetched up
// front so that normalization stays a pure function.
type ReferenceSet struct {
	ReportTypes    []ReferenceOption
	ResultStatuses []ReferenceOption
	YesNoStatuses  []ReferenceOption
	DiskStatuses   []ReferenceOption
	ASAStatuses    []ReferenceOption
	FurtherActions []ReferenceOption
	ImageTypes     []ReferenceOption
}

// IsReferenceID reports whether s already matches the backend's reference-id
// format. Ids are UUIDs; a value in that shape passes through resolution
// unchanged.
func IsReferenceID(s string) bool {
	return uuid.Validate(strings.TrimSpace(s)) == nil
}

// ResolveID maps a raw status value to a reference-option id. A value
// already in id format is returned as-is; otherwise it is looked up by
// display name, case-insensitively. The second return is false when the
// value is non-blank but matches no option.
func ResolveID(options []ReferenceOption, value string) (string, bool) {
	v := strings.TrimSpace(value)
	if v == "" {
		return "", true
	}
	if IsReferenceID(v) {
		return v, true
	}
	for _, opt := range options {
		if strings.EqualFold(opt.Name, v) {
			return opt.ID, true
		}
	}
	return "", false
}

// ImageTypeID resolves a section name to its image-type id.
func (r *ReferenceSet) ImageTypeID(sectionName string) (string, bool) {
	return lookupByName(r.ImageTypes, sectionName)
}

// ReportTypeID resolves a report type tag to its reference id.
func (r *ReferenceSet) ReportTypeID(reportType string) (string, bool) {
	return lookupByName(r.ReportTypes, reportType)
}

func lookupByName(options []ReferenceOption, name string) (string, bool) {
	for _, opt := range options {
		if strings.EqualFold(opt.Name, strings.TrimSpace(name)) {
			return opt.ID, true
		}
	}
	return "", false
}
