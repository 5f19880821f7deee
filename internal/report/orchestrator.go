package report

// orchestrator.go sequences one submission against the backend. The steps
// are strictly ordered because each depends on an id produced by the
// previous one:
//
//  1. resolve reference data (read-only, fetched concurrently)
//  2. normalize everything and validate; nothing is written on failure
//  3. create the root report (fatal on failure)
//  4. create the specialized report and its child detail collections
//  5. upload every image attachment across all sections
//
// Within steps 4 and 5, independent creates and uploads run concurrently;
// every sibling is waited for and all failures are aggregated into a
// PartialSubmissionError. No compensating deletes are issued: a failure
// after step 3 leaves the root report behind for operator cleanup, which is
// why the orchestrator logs the orphaned id with every partial failure.

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// UploadStatus values carried on the root report.
const (
	UploadStatusUploading = "Uploading"
	UploadStatusUploaded  = "Uploaded"
)

// Orchestrator drives submissions and edit-session updates.
type Orchestrator struct {
	api     API
	limiter *UploadLimiter
}

// NewOrchestrator wires the orchestrator to a backend client. A nil limiter
// gets the default upload bounds.
func NewOrchestrator(api API, limiter *UploadLimiter) *Orchestrator {
	if limiter == nil {
		limiter = NewUploadLimiter(0, 0)
	}
	return &Orchestrator{api: api, limiter: limiter}
}

// Limiter exposes the upload limiter for shutdown draining.
func (o *Orchestrator) Limiter() *UploadLimiter { return o.limiter }

// Submit runs one full submission. Validation and normalization failures
// return before any write; transport failures after the root report exists
// surface as PartialSubmissionError and leave the partial graph in place.
func (o *Orchestrator) Submit(ctx context.Context, form SubmissionForm, images map[string][]ImageFile) (*SubmissionResult, error) {
	if err := validateForm(form); err != nil {
		return nil, err
	}

	refs, err := o.FetchReferences(ctx)
	if err != nil {
		return nil, fmt.Errorf("resolve reference data: %w", err)
	}

	typeID, ok := refs.ReportTypeID(form.ReportType)
	if !ok {
		return nil, &ValidationError{Field: "reportType", Reason: fmt.Sprintf("no report-type option named %q", form.ReportType)}
	}

	// Resolve image sections before any write so a bad section name cannot
	// orphan a root report.
	sections, err := resolveSections(refs, images)
	if err != nil {
		return nil, err
	}

	normalized, err := normalizeForm(form, refs)
	if err != nil {
		return nil, err
	}

	root := RootReport{
		TypeID:         typeID,
		SystemID:       form.SystemID,
		StationID:      form.StationID,
		FormStatus:     form.FormStatus,
		UploadStatus:   UploadStatusUploading,
		CreatedByID:    form.CreatedByID,
		IdempotencyKey: uuid.NewString(),
	}
	created, err := o.api.CreateRootReport(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("create root report: %w", err)
	}
	if created.IdempotencyKey == "" {
		created.IdempotencyKey = root.IdempotencyKey
	}

	logger := logging.WithFields(ctx,
		"root_report_id", created.ID,
		"job_number", created.JobNumber,
		"report_type", form.ReportType,
	)
	logger.Info("root report created")

	specialized, err := o.createSpecialized(ctx, created.ID, form, normalized)
	if err != nil {
		logger.Error("specialized report creation failed", "error", err)
		return nil, err
	}

	if err := o.uploadImages(ctx, created.ID, sections); err != nil {
		logger.Error("image upload failed", "error", err)
		return nil, err
	}

	logger.Info("submission complete",
		"components", len(normalized.components),
		"image_sections", len(sections),
	)

	return &SubmissionResult{
		RootReport:        created,
		SpecializedReport: specialized,
		JobNumber:         created.JobNumber,
	}, nil
}

// FetchReferences loads every reference kind a submission needs. The
// lookups are read-only and independent, so they run concurrently.
func (o *Orchestrator) FetchReferences(ctx context.Context) (*ReferenceSet, error) {
	refs := &ReferenceSet{}

	g, gctx := errgroup.WithContext(ctx)
	for kind, dst := range map[string]*[]ReferenceOption{
		RefReportTypes:    &refs.ReportTypes,
		RefResultStatuses: &refs.ResultStatuses,
		RefYesNoStatuses:  &refs.YesNoStatuses,
		RefDiskStatuses:   &refs.DiskStatuses,
		RefASAStatuses:    &refs.ASAStatuses,
		RefFurtherActions: &refs.FurtherActions,
		RefImageTypes:     &refs.ImageTypes,
	} {
		kind, dst := kind, dst
		g.Go(func() error {
			opts, err := o.api.ReferenceOptions(gctx, kind)
			if err != nil {
				return fmt.Errorf("%s: %w", kind, err)
			}
			*dst = opts
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// validateForm checks the fields no submission can proceed without.
func validateForm(form SubmissionForm) error {
	switch {
	case strings.TrimSpace(form.CreatedByID) == "":
		return &ValidationError{Field: "createdById", Reason: "current-user id is required"}
	case strings.TrimSpace(form.SystemID) == "":
		return &ValidationError{Field: "systemId", Reason: "system reference is required"}
	case strings.TrimSpace(form.StationID) == "":
		return &ValidationError{Field: "stationId", Reason: "station reference is required"}
	}

	switch form.ReportType {
	case TypeCorrective:
		if form.Corrective == nil {
			return &ValidationError{Field: "corrective", Reason: "corrective form data is required"}
		}
	case TypePreventiveRTU:
		if form.RTU == nil {
			return &ValidationError{Field: "rtu", Reason: "RTU form data is required"}
		}
	case TypePreventiveServer:
		if form.Server == nil {
			return &ValidationError{Field: "server", Reason: "server form data is required"}
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnknownReportType, form.ReportType)
	}
	return nil
}

// normalizedForm is the fully converted payload, produced before any write.
type normalizedForm struct {
	components []ComponentRecord      // server PM: consolidated records
	children   map[string][]DetailRow // CM / RTU PM: child collections
}

// normalizeForm converts the type-specific raw state. All normalization
// errors (unresolvable references, malformed rows) surface here, before the
// root report is created.
func normalizeForm(form SubmissionForm, refs *ReferenceSet) (normalizedForm, error) {
	out := normalizedForm{children: make(map[string][]DetailRow)}

	switch form.ReportType {
	case TypeCorrective:
		rows, err := NormalizeMaterialUsed(form.Corrective.MaterialUsed)
		if err != nil {
			return out, err
		}
		if len(rows) > 0 {
			out.children[ChildMaterialUsed] = rows
		}

	case TypePreventiveRTU:
		for child, normalize := range map[string]func() ([]DetailRow, error){
			ChildMainRTUCabinet: func() ([]DetailRow, error) { return NormalizeMainRTUCabinet(form.RTU.MainRTUCabinet, refs) },
			ChildChamberContact: func() ([]DetailRow, error) { return NormalizeChamberContact(form.RTU.ChamberContact, refs) },
			ChildCabinetCooling: func() ([]DetailRow, error) { return NormalizeCabinetCooling(form.RTU.CabinetCooling, refs) },
			ChildDVREquipment:   func() ([]DetailRow, error) { return NormalizeDVREquipment(form.RTU.DVREquipment, refs) },
		} {
			rows, err := normalize()
			if err != nil {
				return out, fmt.Errorf("%s: %w", child, err)
			}
			if len(rows) > 0 {
				out.children[child] = rows
			}
		}

	case TypePreventiveServer:
		// Registry order keeps the consolidated payload deterministic.
		for _, def := range Components() {
			raw, ok := form.Server.Components[def.Name]
			if !ok {
				continue
			}
			rec, err := Normalize(def.Name, raw, refs)
			if err != nil {
				return out, err
			}
			if rec == nil {
				continue // suppressed: defaults only, never an error
			}
			out.components = append(out.components, *rec)
		}
	}

	return out, nil
}

// createSpecialized creates the type-specific report and its children.
//
// The server PM report embeds every component record into one consolidated
// create. The CM and RTU reports are created first, then each child detail
// collection is created via independent calls launched together, each
// carrying the specialized report id.
func (o *Orchestrator) createSpecialized(ctx context.Context, rootID string, form SubmissionForm, n normalizedForm) (SpecializedReport, error) {
	var (
		specialized SpecializedReport
		err         error
	)

	switch form.ReportType {
	case TypeCorrective:
		cm := form.Corrective
		specialized, err = o.api.CreateCorrectiveReport(ctx, CorrectiveReportParams{
			RootReportID:        rootID,
			FailureDetectedDate: cm.FailureDetectedDate,
			ResponseDate:        cm.ResponseDate,
			ArrivalDate:         cm.ArrivalDate,
			CompletionDate:      cm.CompletionDate,
			FailureSummary:      cm.FailureSummary,
			FaultDuration:       cm.FaultDuration,
			Cause:               cm.Cause,
			Rectification:       cm.Rectification,
			FurtherActionID:     cm.FurtherActionID,
			Remarks:             cm.Remarks,
		})

	case TypePreventiveRTU:
		specialized, err = o.api.CreateRTUReport(ctx, RTUReportParams{
			RootReportID:     rootID,
			DateOfService:    form.RTU.DateOfService,
			CleaningStatusID: form.RTU.CleaningStatusID,
			Remarks:          form.RTU.Remarks,
		})

	case TypePreventiveServer:
		specialized, err = o.api.CreateServerReport(ctx, ServerReportParams{
			RootReportID:  rootID,
			DateOfService: form.Server.DateOfService,
			Remarks:       form.Server.Remarks,
			Components:    n.components,
		})
	}
	if err != nil {
		return SpecializedReport{}, &PartialSubmissionError{
			Step:         "specialized-report",
			RootReportID: rootID,
			Errs:         []error{err},
		}
	}
	specialized.ReportType = form.ReportType

	if len(n.children) == 0 {
		return specialized, nil
	}

	tasks := make([]func() error, 0, len(n.children))
	for child, rows := range n.children {
		child, rows := child, rows
		tasks = append(tasks, func() error {
			if err := o.api.CreateDetailRows(ctx, child, specialized.ID, rows); err != nil {
				return fmt.Errorf("%s: %w", child, err)
			}
			return nil
		})
	}
	if errs := runAll(tasks); len(errs) > 0 {
		return SpecializedReport{}, &PartialSubmissionError{
			Step:         "details",
			RootReportID: rootID,
			Errs:         errs,
		}
	}

	return specialized, nil
}

// resolvedSection pairs a section's files with its resolved image type.
type resolvedSection struct {
	name        string
	imageTypeID string
	files       []ImageFile
}

// resolveSections maps every non-empty image section to its image-type id.
// An unknown section name blocks the submission before any write.
func resolveSections(refs *ReferenceSet, images map[string][]ImageFile) ([]resolvedSection, error) {
	var sections []resolvedSection
	for name, files := range images {
		if len(files) == 0 {
			continue
		}
		typeID, ok := refs.ImageTypeID(name)
		if !ok {
			return nil, &ValidationError{Field: "images", Reason: fmt.Sprintf("no image-type option for section %q", name)}
		}
		sections = append(sections, resolvedSection{name: name, imageTypeID: typeID, files: files})
	}
	return sections, nil
}

// uploadImages uploads every file across all sections concurrently, one call
// per file, bounded by the upload limiter. A failed upload fails the batch
// aggregate; completed siblings are neither retried nor rolled back.
func (o *Orchestrator) uploadImages(ctx context.Context, rootID string, sections []resolvedSection) error {
	var tasks []func() error
	for _, section := range sections {
		section := section
		for _, file := range section.files {
			file := file
			tasks = append(tasks, func() error {
				if err := o.limiter.Acquire(ctx); err != nil {
					return fmt.Errorf("%s/%s: %w", section.name, file.Name, err)
				}
				defer o.limiter.Release()

				_, err := o.api.UploadImage(ctx, UploadImageParams{
					RootReportID: rootID,
					FileName:     file.Name,
					Content:      bytes.NewReader(file.Content),
					ImageTypeID:  section.imageTypeID,
					SectionName:  section.name,
				})
				if err != nil {
					return fmt.Errorf("%s/%s: %w", section.name, file.Name, err)
				}
				return nil
			})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	if errs := runAll(tasks); len(errs) > 0 {
		return &PartialSubmissionError{
			Step:         "images",
			RootReportID: rootID,
			Errs:         errs,
		}
	}
	return nil
}

// DeleteImage removes one uploaded attachment. Attachments hang off the root
// report with no dependents of their own, so a single delete needs no
// reconciliation.
func (o *Orchestrator) DeleteImage(ctx context.Context, attachmentID string) error {
	if strings.TrimSpace(attachmentID) == "" {
		return &ValidationError{Field: "imageId", Reason: "attachment id is required"}
	}
	if err := o.api.DeleteImage(ctx, attachmentID); err != nil {
		return fmt.Errorf("delete image %s: %w", attachmentID, err)
	}
	return nil
}

// TableEdit is one detail table's state at the end of an edit session.
type TableEdit struct {
	Child    string        `json:"child"`
	ReportID string        `json:"reportId"`
	Existing []DetailRow   `json:"existing"`
	Edited   []EditableRow `json:"edited"`
}

// UpdateForm carries an edit session's reconcilable state.
type UpdateForm struct {
	RootReportID string      `json:"rootReportId"`
	UpdatedByID  string      `json:"updatedById"`
	Tables       []TableEdit `json:"tables"`
}

// Update applies an edit session. Each table is reconciled into
// create/update/delete intent and the resulting calls for all tables are
// launched together, with the same aggregate failure semantics as Submit.
func (o *Orchestrator) Update(ctx context.Context, form UpdateForm) error {
	if strings.TrimSpace(form.RootReportID) == "" {
		return &ValidationError{Field: "rootReportId", Reason: "root report id is required"}
	}
	if strings.TrimSpace(form.UpdatedByID) == "" {
		return &ValidationError{Field: "updatedById", Reason: "current-user id is required"}
	}

	// Reconcile everything first: a state-machine violation in any table
	// blocks the whole save before any call goes out.
	type tableWork struct {
		edit  TableEdit
		recon Reconciliation
	}
	var work []tableWork
	for _, edit := range form.Tables {
		recon, err := Reconcile(edit.Existing, edit.Edited)
		if err != nil {
			return &ValidationError{Field: edit.Child, Reason: err.Error()}
		}
		if recon.Empty() {
			continue
		}
		work = append(work, tableWork{edit: edit, recon: recon})
	}

	var tasks []func() error
	for _, w := range work {
		if len(w.recon.ToCreate) > 0 {
			tasks = append(tasks, func() error {
				if err := o.api.CreateDetailRows(ctx, w.edit.Child, w.edit.ReportID, w.recon.ToCreate); err != nil {
					return fmt.Errorf("%s create: %w", w.edit.Child, err)
				}
				return nil
			})
		}
		for _, row := range w.recon.ToUpdate {
			tasks = append(tasks, func() error {
				if err := o.api.UpdateDetailRow(ctx, w.edit.Child, w.edit.ReportID, row); err != nil {
					return fmt.Errorf("%s update %s: %w", w.edit.Child, row.ID, err)
				}
				return nil
			})
		}
		for _, id := range w.recon.ToDelete {
			tasks = append(tasks, func() error {
				if err := o.api.DeleteDetailRow(ctx, w.edit.Child, id); err != nil {
					return fmt.Errorf("%s delete %s: %w", w.edit.Child, id, err)
				}
				return nil
			})
		}
	}
	if len(tasks) == 0 {
		return nil
	}

	if errs := runAll(tasks); len(errs) > 0 {
		return &PartialSubmissionError{
			Step:         "update",
			RootReportID: form.RootReportID,
			Errs:         errs,
		}
	}

	logging.WithFields(ctx, "root_report_id", form.RootReportID).Info(
		"edit session saved", "tables", len(work),
	)
	return nil
}
