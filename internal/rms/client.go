// Package rms is the HTTP client for the report-management backend. It owns
// the wire contract only: JSON entity creation calls, multipart image
// uploads, and reference-data reads. Retry and failure semantics belong to
// the submission orchestrator; this client performs one call per method and
// converts any non-2xx response into an error carrying the server-provided
// message.
package rms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
)

// APIError is a non-2xx backend response. Message is the server-provided
// message when one could be extracted, otherwise the raw body.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
}

// Client calls the report-management backend.
//
// No timeout is applied beyond the caller's context: submissions deliberately
// run network calls to completion even when the user navigates away, so the
// injected http.Client should not carry its own deadline.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
}

// NewClient creates a backend client. token is sent as a bearer credential
// on every call; httpc may be nil for the default transport.
func NewClient(baseURL, token string, httpc *http.Client) *Client {
	if httpc == nil {
		httpc = &http.Client{}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpc:   httpc,
	}
}

var _ report.API = (*Client)(nil)

// ReferenceOptions fetches the lookup values for one reference kind.
func (c *Client) ReferenceOptions(ctx context.Context, kind string) ([]report.ReferenceOption, error) {
	var options []report.ReferenceOption
	if err := c.doJSON(ctx, http.MethodGet, "/api/reference/"+url.PathEscape(kind), nil, &options); err != nil {
		return nil, err
	}
	return options, nil
}

// CreateRootReport creates the aggregate root. The backend assigns the id
// and derives the job number; both come back on the returned report.
func (c *Client) CreateRootReport(ctx context.Context, r report.RootReport) (report.RootReport, error) {
	var created report.RootReport
	if err := c.doJSON(ctx, http.MethodPost, "/api/reports", r, &created); err != nil {
		return report.RootReport{}, err
	}
	return created, nil
}

func (c *Client) CreateCorrectiveReport(ctx context.Context, p report.CorrectiveReportParams) (report.SpecializedReport, error) {
	return c.createSpecialized(ctx, "/api/corrective-maintenance", p)
}

func (c *Client) CreateRTUReport(ctx context.Context, p report.RTUReportParams) (report.SpecializedReport, error) {
	return c.createSpecialized(ctx, "/api/preventive-maintenance-rtu", p)
}

func (c *Client) CreateServerReport(ctx context.Context, p report.ServerReportParams) (report.SpecializedReport, error) {
	return c.createSpecialized(ctx, "/api/preventive-maintenance-server", p)
}

func (c *Client) createSpecialized(ctx context.Context, path string, params any) (report.SpecializedReport, error) {
	var created report.SpecializedReport
	if err := c.doJSON(ctx, http.MethodPost, path, params, &created); err != nil {
		return report.SpecializedReport{}, err
	}
	return created, nil
}

// CreateDetailRows creates one child detail collection under a specialized
// report.
func (c *Client) CreateDetailRows(ctx context.Context, child, reportID string, rows []report.DetailRow) error {
	body := struct {
		ReportID string             `json:"reportId"`
		Rows     []report.DetailRow `json:"rows"`
	}{ReportID: reportID, Rows: rows}
	return c.doJSON(ctx, http.MethodPost, "/api/"+url.PathEscape(child), body, nil)
}

// UpdateDetailRow updates one existing detail row.
func (c *Client) UpdateDetailRow(ctx context.Context, child, reportID string, row report.DetailRow) error {
	body := struct {
		ReportID string           `json:"reportId"`
		Row      report.DetailRow `json:"row"`
	}{ReportID: reportID, Row: row}
	return c.doJSON(ctx, http.MethodPut, "/api/"+url.PathEscape(child)+"/"+url.PathEscape(row.ID), body, nil)
}

// DeleteDetailRow deletes one detail row.
func (c *Client) DeleteDetailRow(ctx context.Context, child, rowID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/"+url.PathEscape(child)+"/"+url.PathEscape(rowID), nil, nil)
}

// DeleteImage deletes one stored attachment.
func (c *Client) DeleteImage(ctx context.Context, attachmentID string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/report-images/"+url.PathEscape(attachmentID), nil, nil)
}

// ImageURL reconstructs the stable retrieval URL for a stored attachment.
func (c *Client) ImageURL(rootReportID, storedName string) string {
	return c.baseURL + "/api/report-images/" + url.PathEscape(rootReportID) + "/" + url.PathEscape(storedName)
}

// doJSON performs one JSON call and decodes the response into out when out
// is non-nil.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readAPIError(resp)
	}

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) authorize(req *http.Request) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
}

// readAPIError extracts the server-provided message from an error response.
// The backend uses {"message": ...}; some middleware produces {"error": ...};
// anything else falls back to the raw body.
func readAPIError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	message := strings.TrimSpace(string(data))
	if err := json.Unmarshal(data, &payload); err == nil {
		if payload.Message != "" {
			message = payload.Message
		} else if payload.Error != "" {
			message = payload.Error
		}
	}
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}

	return &APIError{Status: resp.StatusCode, Message: message}
}
