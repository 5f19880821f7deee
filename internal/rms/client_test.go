package rms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
)

func TestReferenceOptions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/reference/result-statuses" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer sekrit" {
			t.Errorf("Authorization = %q", got)
		}
		json.NewEncoder(w).Encode([]report.ReferenceOption{
			{ID: "id-1", Name: "Pass"},
			{ID: "id-2", Name: "Fail"},
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "sekrit", srv.Client())
	options, err := c.ReferenceOptions(context.Background(), report.RefResultStatuses)
	if err != nil {
		t.Fatalf("ReferenceOptions() error = %v", err)
	}
	if len(options) != 2 || options[0].Name != "Pass" {
		t.Errorf("options = %+v", options)
	}
}

func TestCreateRootReport(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/reports" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var in report.RootReport
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		in.ID = "root-9"
		in.JobNumber = "PM-2026-0007"
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(in)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client())
	created, err := c.CreateRootReport(context.Background(), report.RootReport{
		TypeID:   "type-1",
		SystemID: "sys-1",
	})
	if err != nil {
		t.Fatalf("CreateRootReport() error = %v", err)
	}
	if created.ID != "root-9" || created.JobNumber != "PM-2026-0007" {
		t.Errorf("created = %+v", created)
	}
	if created.SystemID != "sys-1" {
		t.Errorf("SystemID = %q, round trip lost", created.SystemID)
	}
}

func TestAPIErrorExtraction(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
	}{
		{name: "message field", status: 400, body: `{"message":"station is required"}`, wantMessage: "station is required"},
		{name: "error field", status: 422, body: `{"error":"bad payload"}`, wantMessage: "bad payload"},
		{name: "raw body", status: 500, body: `upstream exploded`, wantMessage: "upstream exploded"},
		{name: "empty body", status: 503, body: ``, wantMessage: http.StatusText(503)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			}))
			defer srv.Close()

			c := NewClient(srv.URL, "", srv.Client())
			_, err := c.ReferenceOptions(context.Background(), "report-types")

			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("error = %v, want APIError", err)
			}
			if apiErr.Status != tt.status {
				t.Errorf("Status = %d, want %d", apiErr.Status, tt.status)
			}
			if apiErr.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.wantMessage)
			}
		})
	}
}

func TestCreateDetailRows(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/chamber-magnetic-contact" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		var body struct {
			ReportID string             `json:"reportId"`
			Rows     []report.DetailRow `json:"rows"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body.ReportID != "rtu-1" || len(body.Rows) != 2 {
			t.Errorf("body = %+v", body)
		}
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client())
	err := c.CreateDetailRows(context.Background(), "chamber-magnetic-contact", "rtu-1", []report.DetailRow{
		{ChamberNumber: "1"}, {ChamberNumber: "2"},
	})
	if err != nil {
		t.Fatalf("CreateDetailRows() error = %v", err)
	}
}

func TestUploadImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/report-images" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("parse multipart: %v", err)
		}
		if got := r.FormValue("reportId"); got != "root-1" {
			t.Errorf("reportId = %q", got)
		}
		if got := r.FormValue("imageTypeId"); got != "type-7" {
			t.Errorf("imageTypeId = %q", got)
		}
		if got := r.FormValue("sectionName"); got != "beforeIssueImages" {
			t.Errorf("sectionName = %q", got)
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		defer file.Close()
		if header.Filename != "pump.jpg" {
			t.Errorf("filename = %q", header.Filename)
		}
		data, _ := io.ReadAll(file)
		if string(data) != "jpeg-bytes" {
			t.Errorf("file content = %q", data)
		}

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(report.ImageAttachment{
			ID:           "img-1",
			RootReportID: "root-1",
			StoredName:   "20260829-pump.jpg",
		})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", srv.Client())
	attachment, err := c.UploadImage(context.Background(), report.UploadImageParams{
		RootReportID: "root-1",
		FileName:     "pump.jpg",
		Content:      strings.NewReader("jpeg-bytes"),
		ImageTypeID:  "type-7",
		SectionName:  "beforeIssueImages",
	})
	if err != nil {
		t.Fatalf("UploadImage() error = %v", err)
	}
	if attachment.ID != "img-1" || attachment.StoredName != "20260829-pump.jpg" {
		t.Errorf("attachment = %+v", attachment)
	}
}

func TestImageURL(t *testing.T) {
	c := NewClient("http://backend:5000/", "", nil)
	got := c.ImageURL("root-1", "20260829 pump.jpg")
	want := "http://backend:5000/api/report-images/root-1/20260829%20pump.jpg"
	if got != want {
		t.Errorf("ImageURL() = %q, want %q", got, want)
	}
}

func TestDeleteImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("method = %q", r.Method)
		}
		if r.URL.Path != "/api/report-images/img-7" {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	if err := c.DeleteImage(context.Background(), "img-7"); err != nil {
		t.Fatalf("DeleteImage() error = %v", err)
	}
}
