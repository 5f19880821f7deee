package rms

// upload.go implements the multipart image upload. Unlike the JSON calls,
// attachments are sent as multipart/form-data with fields for the root
// report id, the image type id, the optional section name, and the file
// itself. The backend uses the section name as a storage folder, so it is
// passed verbatim.

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/ThantHtetMyet/Control-Tower-WEB/internal/report"
)

// Multipart field names of the image upload endpoint.
const (
	fieldReportID    = "reportId"
	fieldImageTypeID = "imageTypeId"
	fieldSectionName = "sectionName"
	fieldFile        = "file"
)

// UploadImage uploads one attachment bound to a root report.
func (c *Client) UploadImage(ctx context.Context, p report.UploadImageParams) (report.ImageAttachment, error) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	// Stream the body so large photos never sit in memory twice.
	go func() {
		pw.CloseWithError(writeImageForm(mw, p))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/report-images", pr)
	if err != nil {
		return report.ImageAttachment{}, fmt.Errorf("build upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.authorize(req)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return report.ImageAttachment{}, fmt.Errorf("upload %s: %w", p.FileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return report.ImageAttachment{}, readAPIError(resp)
	}

	var attachment report.ImageAttachment
	if err := json.NewDecoder(resp.Body).Decode(&attachment); err != nil {
		return report.ImageAttachment{}, fmt.Errorf("decode upload response: %w", err)
	}
	return attachment, nil
}

// writeImageForm writes the multipart fields in the order the backend
// expects: scalar fields first, then the file part.
func writeImageForm(mw *multipart.Writer, p report.UploadImageParams) error {
	if err := mw.WriteField(fieldReportID, p.RootReportID); err != nil {
		return err
	}
	if err := mw.WriteField(fieldImageTypeID, p.ImageTypeID); err != nil {
		return err
	}
	if p.SectionName != "" {
		if err := mw.WriteField(fieldSectionName, p.SectionName); err != nil {
			return err
		}
	}

	part, err := mw.CreateFormFile(fieldFile, p.FileName)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, p.Content); err != nil {
		return err
	}

	return mw.Close()
}
