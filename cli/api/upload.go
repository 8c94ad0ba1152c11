package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/tinkerfai/tinkerfai/engine/upload"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

var _ upload.Backend = (*Client)(nil)

type uploadURLResponse struct {
	Envelope
	upload.Destination
}

// RequestUploadURL asks for a signed destination for one file.
func (c *Client) RequestUploadURL(ctx context.Context, projectID string, req upload.URLRequest) (*upload.Destination, error) {
	var out uploadURLResponse
	path := fmt.Sprintf("/projects/%s/upload-url", url.PathEscape(projectID))
	if err := c.do(ctx, call{op: "request upload url", method: http.MethodPost, path: path, auth: true, body: req, result: &out}); err != nil {
		return nil, err
	}
	if out.UploadURL == "" || out.FileKey == "" {
		msg := out.Message
		if msg == "" {
			msg = "Upload failed"
		}
		return nil, &APIError{Operation: "request upload url", StatusCode: http.StatusOK, Message: msg}
	}
	return &out.Destination, nil
}

// UploadFile sends the raw bytes to a signed destination. No credentials are attached.
func (c *Client) UploadFile(ctx context.Context, uploadURL string, data []byte, contentType string) error {
	resp, err := c.transfer.R().
		SetContext(ctx).
		SetHeader("Content-Type", contentType).
		SetBody(data).
		Put(uploadURL)
	if err != nil {
		return transportError(ctx, "upload file", err)
	}
	logger.FromContext(ctx).Debug("File transfer completed", "status", resp.StatusCode(), "bytes", len(data))
	if resp.IsError() {
		return &APIError{Operation: "upload file", StatusCode: resp.StatusCode(), Message: resp.Status()}
	}
	return nil
}

type validateFileResponse struct {
	Envelope
	IsValid bool `json:"isValid"`
}

// ValidateFile asks the server to check the uploaded content.
func (c *Client) ValidateFile(ctx context.Context, projectID, fileKey string) error {
	var out validateFileResponse
	path := fmt.Sprintf("/projects/%s/validate-file", url.PathEscape(projectID))
	body := map[string]string{"fileKey": fileKey}
	if err := c.do(ctx, call{op: "validate file", method: http.MethodPost, path: path, auth: true, body: body, result: &out}); err != nil {
		return err
	}
	if !out.IsValid {
		msg := out.Message
		if msg == "" {
			msg = "Upload failed"
		}
		return &APIError{Operation: "validate file", StatusCode: http.StatusOK, Message: msg}
	}
	return nil
}
