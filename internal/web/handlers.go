package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/journal"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/logging"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
	"github.com/go-chi/chi/v5"
)

// formField is the multipart part carrying the submission JSON. Every other
// part is treated as an image attachment grouped by its field name.
const formField = "form"

// handleHealth reports process liveness and upload saturation.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	limiter := s.orch.Limiter()
	writeJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"uploads_active": limiter.ActiveCount(),
		"uploads_max":    limiter.MaxConcurrent(),
	})
}

// componentInfo is one entry of the component catalog.
type componentInfo struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// handleListComponents returns the registered inspection components in
// submission order.
func (s *Server) handleListComponents(w http.ResponseWriter, r *http.Request) {
	defs := report.Components()
	infos := make([]componentInfo, 0, len(defs))
	for _, def := range defs {
		infos = append(infos, componentInfo{Name: def.Name, Label: def.Label})
	}
	writeJSON(w, http.StatusOK, map[string]any{"components": infos})
}

// handleSubmit accepts a full report submission: a JSON "form" part plus any
// number of image parts, grouped into sections by their multipart field name.
func (s *Server) handleSubmit(w http.ResponseWriter, r *http.Request) {
	logger := logging.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Upload.MaxFormSize)
	if err := r.ParseMultipartForm(s.cfg.Upload.MaxFormSize); err != nil {
		writeError(w, http.StatusBadRequest, "submission too large or invalid form")
		return
	}
	defer r.MultipartForm.RemoveAll()

	formJSON := r.FormValue(formField)
	if formJSON == "" {
		writeError(w, http.StatusBadRequest, "missing form part")
		return
	}

	var form report.SubmissionForm
	if err := json.Unmarshal([]byte(formJSON), &form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid form JSON")
		return
	}

	images, err := s.collectImages(r)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	start := time.Now()
	result, err := s.orch.Submit(r.Context(), form, images)
	s.recordJournal(form.ReportType, result, err, time.Since(start))
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	logger.Info("submission accepted",
		"root_report_id", result.RootReport.ID,
		"job_number", result.JobNumber,
		"duration", time.Since(start),
	)

	writeJSON(w, http.StatusCreated, map[string]string{
		"rootReportId": result.RootReport.ID,
		"reportId":     result.SpecializedReport.ID,
		"jobNumber":    result.JobNumber,
	})
}

// collectImages gathers the submission's image parts into per-section lists.
func (s *Server) collectImages(r *http.Request) (map[string][]report.ImageFile, error) {
	if r.MultipartForm == nil || len(r.MultipartForm.File) == 0 {
		return nil, nil
	}

	images := make(map[string][]report.ImageFile)
	for section, headers := range r.MultipartForm.File {
		for _, header := range headers {
			if header.Size > s.cfg.Upload.MaxImageSize {
				return nil, &report.ValidationError{
					Field:  section,
					Reason: fmt.Sprintf("image %q exceeds the %d byte limit", header.Filename, s.cfg.Upload.MaxImageSize),
				}
			}

			f, err := header.Open()
			if err != nil {
				return nil, fmt.Errorf("open image %q: %w", header.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("read image %q: %w", header.Filename, err)
			}

			images[section] = append(images[section], report.ImageFile{
				Name:    header.Filename,
				Content: data,
			})
		}
	}
	return images, nil
}

// recordJournal writes a best-effort journal entry for a submission attempt.
// Journal failures are logged, never surfaced to the caller.
func (s *Server) recordJournal(reportType string, result *report.SubmissionResult, submitErr error, took time.Duration) {
	if s.journal == nil {
		return
	}

	entry := journal.Entry{
		ReportType: reportType,
		Status:     journal.StatusSubmitted,
		Duration:   took,
	}

	if result != nil {
		entry.RootReportID = result.RootReport.ID
		entry.IdempotencyKey = result.RootReport.IdempotencyKey
		entry.JobNumber = result.JobNumber
	}

	if submitErr != nil {
		entry.Status = journal.StatusFailed
		entry.ErrorText = submitErr.Error()

		// A partial failure still created the root report; keep its id so
		// operators can find the orphaned graph.
		var partial *report.PartialSubmissionError
		if errors.As(submitErr, &partial) {
			entry.Status = journal.StatusPartial
			entry.RootReportID = partial.RootReportID
		}
	}

	// The request context may already be cancelled when we get here.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.journal.Record(ctx, entry); err != nil {
		logging.FromContext(ctx).Warn("journal record failed", "error", err)
	}
}

// handleUpdate applies an edit session against an existing report.
func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	rootID := chi.URLParam(r, "rootID")
	if rootID == "" {
		writeError(w, http.StatusBadRequest, "missing root report ID")
		return
	}

	var form report.UpdateForm
	if err := json.NewDecoder(r.Body).Decode(&form); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update JSON")
		return
	}

	if form.RootReportID == "" {
		form.RootReportID = rootID
	} else if form.RootReportID != rootID {
		writeError(w, http.StatusBadRequest, "root report ID mismatch")
		return
	}

	if err := s.orch.Update(r.Context(), form); err != nil {
		s.respondError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeleteImage removes one uploaded attachment by id.
func (s *Server) handleDeleteImage(w http.ResponseWriter, r *http.Request) {
	imageID := chi.URLParam(r, "imageID")
	if err := s.orch.DeleteImage(r.Context(), imageID); err != nil {
		s.respondError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleJournal lists journal entries for a root report, newest first.
func (s *Server) handleJournal(w http.ResponseWriter, r *http.Request) {
	rootID := chi.URLParam(r, "rootID")
	if rootID == "" {
		writeError(w, http.StatusBadRequest, "missing root report ID")
		return
	}

	entries, err := s.journal.ByRootReport(r.Context(), rootID)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
}
