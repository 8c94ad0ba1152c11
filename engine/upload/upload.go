package upload

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/afero"
	"github.com/tinkerfai/tinkerfai/engine/answer"
	"github.com/tinkerfai/tinkerfai/pkg/logger"
)

// Status is the lifecycle of a file answer's upload.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusUploading  Status = "uploading"
	StatusValidating Status = "validating"
	StatusSuccess    Status = "success"
	StatusError      Status = "error"
)

// Busy reports whether the status blocks starting another upload.
func (s Status) Busy() bool {
	return s == StatusUploading || s == StatusValidating
}

const (
	fallbackTransferMessage = "File upload failed"
	fallbackMessage         = "Upload failed"
)

// ErrUploadInProgress is returned when an upload is started while another is running.
var ErrUploadInProgress = errors.New("an upload is already in progress")

// Destination is where the server wants the file bytes sent.
type Destination struct {
	UploadURL string `json:"uploadUrl"`
	FileKey   string `json:"fileKey"`
}

// URLRequest asks the server for an upload destination.
type URLRequest struct {
	TaskIndex    int    `json:"taskIndex"`
	SubtaskIndex int    `json:"subtaskIndex"`
	FileName     string `json:"fileName"`
}

// Backend performs the three remote steps of an upload.
type Backend interface {
	RequestUploadURL(ctx context.Context, projectID string, req URLRequest) (*Destination, error)
	UploadFile(ctx context.Context, uploadURL string, data []byte, contentType string) error
	ValidateFile(ctx context.Context, projectID, fileKey string) error
}

// Request is a single file to upload for a (project, task, subtask).
type Request struct {
	ProjectID    string
	TaskIndex    int
	SubtaskIndex int
	FileName     string
	Data         []byte
}

// Observer receives status and progress changes in order.
type Observer func(status Status, progress int)

// Uploader runs at most one upload at a time.
type Uploader struct {
	backend Backend
	running atomic.Bool
}

func NewUploader(backend Backend) *Uploader {
	return &Uploader{backend: backend}
}

// Running reports whether an upload is in flight.
func (u *Uploader) Running() bool {
	return u.running.Load()
}

// Upload performs the destination request, the transfer and the server-side
// validation. Progress is reported as 0, 50, 75 and 100. On failure the
// observer sees StatusError with progress 0 and the returned error carries
// the server's message unchanged.
func (u *Uploader) Upload(ctx context.Context, req Request, observe Observer) (answer.FileRef, error) {
	if !u.running.CompareAndSwap(false, true) {
		return answer.FileRef{}, ErrUploadInProgress
	}
	defer u.running.Store(false)
	if observe == nil {
		observe = func(Status, int) {}
	}
	log := logger.FromContext(ctx).With("project_id", req.ProjectID, "file", req.FileName)

	fail := func(err error) (answer.FileRef, error) {
		log.Warn("File upload failed", "error", err)
		observe(StatusError, 0)
		return answer.FileRef{}, err
	}

	observe(StatusUploading, 0)
	dest, err := u.backend.RequestUploadURL(ctx, req.ProjectID, URLRequest{
		TaskIndex:    req.TaskIndex,
		SubtaskIndex: req.SubtaskIndex,
		FileName:     req.FileName,
	})
	if err != nil {
		return fail(err)
	}
	if dest == nil || dest.UploadURL == "" || dest.FileKey == "" {
		return fail(errors.New(fallbackMessage))
	}

	observe(StatusUploading, 50)
	if err := u.backend.UploadFile(ctx, dest.UploadURL, req.Data, ContentType(req.FileName, req.Data)); err != nil {
		log.Debug("Transfer error", "error", err)
		return fail(errors.New(fallbackTransferMessage))
	}

	observe(StatusValidating, 75)
	if err := u.backend.ValidateFile(ctx, req.ProjectID, dest.FileKey); err != nil {
		return fail(err)
	}

	observe(StatusSuccess, 100)
	log.Info("File uploaded", "file_key", dest.FileKey)
	return answer.FileRef{Name: req.FileName, URL: dest.FileKey}, nil
}

// ContentType returns the media type sent with the transfer.
// CSV files are always sent as text/csv so the signed destination accepts them.
func ContentType(name string, data []byte) string {
	if strings.EqualFold(filepath.Ext(name), ".csv") {
		return "text/csv"
	}
	return mimetype.Detect(data).String()
}

// LooksLikeText reports whether data sniffs as a text format.
func LooksLikeText(data []byte) bool {
	for m := mimetype.Detect(data); m != nil; m = m.Parent() {
		if m.Is("text/plain") {
			return true
		}
	}
	return false
}

// LoadFile reads a local file into a request body.
func LoadFile(fs afero.Fs, path string) (name string, data []byte, err error) {
	data, err = afero.ReadFile(fs, path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return filepath.Base(path), data, nil
}
