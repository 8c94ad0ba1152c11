package upload

import (
	"context"
	"errors"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeBackend struct {
	dest        *Destination
	urlErr      error
	transferErr error
	validateErr error
	contentType string
	block       chan struct{}
	calls       []string
}

func (f *fakeBackend) RequestUploadURL(_ context.Context, _ string, _ URLRequest) (*Destination, error) {
	f.calls = append(f.calls, "url")
	if f.block != nil {
		<-f.block
	}
	return f.dest, f.urlErr
}

func (f *fakeBackend) UploadFile(_ context.Context, _ string, _ []byte, contentType string) error {
	f.calls = append(f.calls, "put")
	f.contentType = contentType
	return f.transferErr
}

func (f *fakeBackend) ValidateFile(_ context.Context, _, _ string) error {
	f.calls = append(f.calls, "validate")
	return f.validateErr
}

type step struct {
	status   Status
	progress int
}

func record(steps *[]step) Observer {
	return func(s Status, p int) { *steps = append(*steps, step{s, p}) }
}

func csvRequest() Request {
	return Request{ProjectID: "p1", TaskIndex: 1, SubtaskIndex: 0, FileName: "train.csv", Data: []byte("a,b\n1,2\n")}
}

func TestUploader_Upload(t *testing.T) {
	t.Run("Should run all three steps and return the file key as url", func(t *testing.T) {
		backend := &fakeBackend{dest: &Destination{UploadURL: "https://bucket/put", FileKey: "u/p1/train.csv"}}
		var steps []step

		ref, err := NewUploader(backend).Upload(context.Background(), csvRequest(), record(&steps))

		require.NoError(t, err)
		assert.Equal(t, "train.csv", ref.Name)
		assert.Equal(t, "u/p1/train.csv", ref.URL)
		assert.Equal(t, []string{"url", "put", "validate"}, backend.calls)
		assert.Equal(t, "text/csv", backend.contentType)
		assert.Equal(t, []step{
			{StatusUploading, 0}, {StatusUploading, 50}, {StatusValidating, 75}, {StatusSuccess, 100},
		}, steps)
	})

	t.Run("Should surface the destination error verbatim and stop", func(t *testing.T) {
		backend := &fakeBackend{urlErr: errors.New("Project quota exceeded")}
		var steps []step

		_, err := NewUploader(backend).Upload(context.Background(), csvRequest(), record(&steps))

		require.Error(t, err)
		assert.Equal(t, "Project quota exceeded", err.Error())
		assert.Equal(t, []string{"url"}, backend.calls)
		assert.Equal(t, step{StatusError, 0}, steps[len(steps)-1])
	})

	t.Run("Should fail when the destination is incomplete", func(t *testing.T) {
		backend := &fakeBackend{dest: &Destination{UploadURL: "https://bucket/put"}}

		_, err := NewUploader(backend).Upload(context.Background(), csvRequest(), nil)

		assert.EqualError(t, err, "Upload failed")
	})

	t.Run("Should report a generic message when the transfer fails", func(t *testing.T) {
		backend := &fakeBackend{
			dest:        &Destination{UploadURL: "https://bucket/put", FileKey: "k"},
			transferErr: errors.New("403 Forbidden"),
		}

		_, err := NewUploader(backend).Upload(context.Background(), csvRequest(), nil)

		assert.EqualError(t, err, "File upload failed")
		assert.Equal(t, []string{"url", "put"}, backend.calls)
	})

	t.Run("Should surface the validation message", func(t *testing.T) {
		backend := &fakeBackend{
			dest:        &Destination{UploadURL: "https://bucket/put", FileKey: "k"},
			validateErr: errors.New("CSV must have at least 2 columns"),
		}

		_, err := NewUploader(backend).Upload(context.Background(), csvRequest(), nil)

		assert.EqualError(t, err, "CSV must have at least 2 columns")
	})

	t.Run("Should refuse a second upload while one is running", func(t *testing.T) {
		backend := &fakeBackend{
			dest:  &Destination{UploadURL: "https://bucket/put", FileKey: "k"},
			block: make(chan struct{}),
		}
		u := NewUploader(backend)
		done := make(chan error, 1)
		started := make(chan struct{})
		go func() {
			_, err := u.Upload(context.Background(), csvRequest(), func(s Status, p int) {
				if s == StatusUploading && p == 0 {
					close(started)
				}
			})
			done <- err
		}()
		<-started

		_, err := u.Upload(context.Background(), csvRequest(), nil)
		assert.ErrorIs(t, err, ErrUploadInProgress)
		assert.True(t, u.Running())

		close(backend.block)
		require.NoError(t, <-done)
		assert.False(t, u.Running())
	})
}

func TestContentType(t *testing.T) {
	t.Run("Should send csv as text/csv", func(t *testing.T) {
		assert.Equal(t, "text/csv", ContentType("DATA.CSV", []byte("x")))
	})

	t.Run("Should sniff other files", func(t *testing.T) {
		assert.Equal(t, "application/pdf", ContentType("doc.bin", []byte("%PDF-1.4\n")))
	})

	t.Run("Should recognise text content", func(t *testing.T) {
		assert.True(t, LooksLikeText([]byte("a,b\n1,2\n")))
		assert.False(t, LooksLikeText([]byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}))
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("Should return the base name and contents", func(t *testing.T) {
		fs := afero.NewMemMapFs()
		require.NoError(t, afero.WriteFile(fs, "/data/train.csv", []byte("a\n"), 0o644))

		name, data, err := LoadFile(fs, "/data/train.csv")

		require.NoError(t, err)
		assert.Equal(t, "train.csv", name)
		assert.Equal(t, "a\n", string(data))
	})
}
