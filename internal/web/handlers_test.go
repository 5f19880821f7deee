package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/config"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/rms"
)

const (
	testTypeID = "00000000-0000-0000-0000-000000000001"
	testYesID  = "00000000-0000-0000-0000-000000000020"
	testImgID  = "00000000-0000-0000-0000-000000000050"
)

// stubAPI is a minimal backend for handler tests.
type stubAPI struct {
	failRoot      error
	failUpload    error
	uploads       int
	deletedImages []string
}

func (s *stubAPI) ReferenceOptions(ctx context.Context, kind string) ([]report.ReferenceOption, error) {
	switch kind {
	case report.RefReportTypes:
		return []report.ReferenceOption{{ID: testTypeID, Name: report.TypePreventiveServer}}, nil
	case report.RefYesNoStatuses:
		return []report.ReferenceOption{{ID: testYesID, Name: "Yes"}}, nil
	case report.RefImageTypes:
		return []report.ReferenceOption{{ID: testImgID, Name: "beforeIssueImages"}}, nil
	default:
		return nil, nil
	}
}

func (s *stubAPI) CreateRootReport(ctx context.Context, r report.RootReport) (report.RootReport, error) {
	if s.failRoot != nil {
		return report.RootReport{}, s.failRoot
	}
	r.ID = "root-1"
	r.JobNumber = "PM-2026-0001"
	return r, nil
}

func (s *stubAPI) CreateCorrectiveReport(ctx context.Context, p report.CorrectiveReportParams) (report.SpecializedReport, error) {
	return report.SpecializedReport{ID: "cm-1", RootReportID: p.RootReportID}, nil
}

func (s *stubAPI) CreateRTUReport(ctx context.Context, p report.RTUReportParams) (report.SpecializedReport, error) {
	return report.SpecializedReport{ID: "rtu-1", RootReportID: p.RootReportID}, nil
}

func (s *stubAPI) CreateServerReport(ctx context.Context, p report.ServerReportParams) (report.SpecializedReport, error) {
	return report.SpecializedReport{ID: "srv-1", RootReportID: p.RootReportID}, nil
}

func (s *stubAPI) CreateDetailRows(ctx context.Context, child, reportID string, rows []report.DetailRow) error {
	return nil
}

func (s *stubAPI) UpdateDetailRow(ctx context.Context, child, reportID string, row report.DetailRow) error {
	return nil
}

func (s *stubAPI) DeleteDetailRow(ctx context.Context, child, rowID string) error {
	return nil
}

func (s *stubAPI) DeleteImage(ctx context.Context, attachmentID string) error {
	s.deletedImages = append(s.deletedImages, attachmentID)
	return nil
}

func (s *stubAPI) UploadImage(ctx context.Context, p report.UploadImageParams) (report.ImageAttachment, error) {
	io.Copy(io.Discard, p.Content)
	s.uploads++
	if s.failUpload != nil {
		return report.ImageAttachment{}, s.failUpload
	}
	return report.ImageAttachment{ID: "img-1", RootReportID: p.RootReportID}, nil
}

func testServer(api report.API) *Server {
	cfg := &config.Config{}
	cfg.Server.Port = 8080
	cfg.Upload.MaxImageSize = 1 << 20
	cfg.Upload.MaxFormSize = 8 << 20
	cfg.Upload.MaxConcurrent = 4
	cfg.Upload.MaxWaitTime = time.Second
	cfg.Rate.Enabled = false

	limiter := report.NewUploadLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)
	orch := report.NewOrchestrator(api, limiter)
	return NewServer(cfg, orch, nil)
}

func serverFormJSON(t *testing.T) string {
	t.Helper()
	form := report.SubmissionForm{
		ReportType:  report.TypePreventiveServer,
		SystemID:    "sys-1",
		StationID:   "sta-1",
		CreatedByID: "user-1",
		Server: &report.ServerPMForm{
			DateOfService: "2026-08-29",
			Components: map[string]json.RawMessage{
				report.CompServerRoomTemperature: json.RawMessage(`{"done":"Yes"}`),
			},
		},
	}
	data, err := json.Marshal(form)
	if err != nil {
		t.Fatalf("marshal form: %v", err)
	}
	return string(data)
}

func multipartSubmission(t *testing.T, formJSON string, images map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	if formJSON != "" {
		if err := mw.WriteField("form", formJSON); err != nil {
			t.Fatalf("write form field: %v", err)
		}
	}
	i := 0
	for section, content := range images {
		part, err := mw.CreateFormFile(section, fmt.Sprintf("photo-%d.jpg", i))
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		part.Write(content)
		i++
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleHealth(t *testing.T) {
	s := testServer(&stubAPI{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestHandleListComponents(t *testing.T) {
	s := testServer(&stubAPI{})

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/components", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body struct {
		Components []componentInfo `json:"components"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(body.Components) != report.ComponentCount() {
		t.Errorf("components = %d, want %d", len(body.Components), report.ComponentCount())
	}
}

func TestHandleSubmit(t *testing.T) {
	api := &stubAPI{}
	s := testServer(api)

	body, contentType := multipartSubmission(t, serverFormJSON(t), map[string][]byte{
		"beforeIssueImages": []byte("jpeg-bytes"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", rec.Code, rec.Body.String())
	}
	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp["rootReportId"] != "root-1" || resp["jobNumber"] != "PM-2026-0001" {
		t.Errorf("response = %v", resp)
	}
	if api.uploads != 1 {
		t.Errorf("uploads = %d, want 1", api.uploads)
	}
}

func TestHandleSubmit_MissingFormPart(t *testing.T) {
	s := testServer(&stubAPI{})

	body, contentType := multipartSubmission(t, "", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestHandleSubmit_OversizedImage(t *testing.T) {
	api := &stubAPI{}
	s := testServer(api)
	s.cfg.Upload.MaxImageSize = 4 // tiny cap to trip the check

	body, contentType := multipartSubmission(t, serverFormJSON(t), map[string][]byte{
		"beforeIssueImages": []byte("way past the cap"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400: %s", rec.Code, rec.Body.String())
	}
	if api.uploads != 0 {
		t.Errorf("uploads = %d, want 0", api.uploads)
	}
}

func TestHandleSubmit_PartialFailureResponse(t *testing.T) {
	api := &stubAPI{failUpload: errors.New("disk full")}
	s := testServer(api)

	body, contentType := multipartSubmission(t, serverFormJSON(t), map[string][]byte{
		"beforeIssueImages": []byte("jpeg-bytes"),
	})
	req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
	req.Header.Set("Content-Type", contentType)

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502: %s", rec.Code, rec.Body.String())
	}
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Code != "SUB001" {
		t.Errorf("Code = %q, want SUB001", resp.Code)
	}
	if resp.RootReportID != "root-1" {
		t.Errorf("RootReportID = %q, want the orphaned root id", resp.RootReportID)
	}
}

func TestHandleSubmit_BackendMessageReachesClient(t *testing.T) {
	tests := []struct {
		name       string
		backendErr *rms.APIError
		wantStatus int
		wantCode   string
	}{
		{
			name:       "backend outage",
			backendErr: &rms.APIError{Status: 500, Message: "station FK violation: unknown station id"},
			wantStatus: http.StatusBadGateway,
			wantCode:   "RMS002",
		},
		{
			name:       "backend rejection passes through",
			backendErr: &rms.APIError{Status: 422, Message: "job number sequence exhausted"},
			wantStatus: http.StatusUnprocessableEntity,
			wantCode:   "RMS001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testServer(&stubAPI{failRoot: tt.backendErr})

			body, contentType := multipartSubmission(t, serverFormJSON(t), nil)
			req := httptest.NewRequest(http.MethodPost, "/api/reports", body)
			req.Header.Set("Content-Type", contentType)

			rec := httptest.NewRecorder()
			s.Router().ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}
			var resp ErrorResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if resp.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", resp.Code, tt.wantCode)
			}
			if resp.Message != tt.backendErr.Message {
				t.Errorf("Message = %q, want the backend's own message %q", resp.Message, tt.backendErr.Message)
			}
		})
	}
}

func TestHandleDeleteImage(t *testing.T) {
	api := &stubAPI{}
	s := testServer(api)

	req := httptest.NewRequest(http.MethodDelete, "/api/images/img-7", nil)
	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
	if len(api.deletedImages) != 1 || api.deletedImages[0] != "img-7" {
		t.Errorf("deleted = %v, want [img-7]", api.deletedImages)
	}
}

func TestHandleUpdate(t *testing.T) {
	s := testServer(&stubAPI{})

	payload := `{
		"updatedById": "user-1",
		"tables": [{
			"child": "chamber-magnetic-contact",
			"reportId": "rtu-1",
			"existing": [{"id":"r1","chamberNumber":"1"}],
			"edited": [{"id":"r1","isDeleted":true,"row":{"id":"r1","chamberNumber":"1"}}]
		}]
	}`
	req := httptest.NewRequest(http.MethodPut, "/api/reports/root-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204: %s", rec.Code, rec.Body.String())
	}
}

func TestHandleUpdate_RootIDMismatch(t *testing.T) {
	s := testServer(&stubAPI{})

	payload := `{"rootReportId":"root-2","updatedById":"user-1","tables":[]}`
	req := httptest.NewRequest(http.MethodPut, "/api/reports/root-1", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	s.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
