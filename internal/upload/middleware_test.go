package upload

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/logger"
	"github.com/fathimasithara01/caseflow/internal/storage"
)

// fakeUploader counts calls and can be scripted to fail for given filenames.
type fakeUploader struct {
	mu      sync.Mutex
	calls   int
	failFor map[string]bool // matched as a substring of the clean name
	failAll bool
}

func (f *fakeUploader) Upload(ctx context.Context, buf []byte, cleanName, folder, contentType, tenantID string) (*storage.StoredFile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.failAll {
		return nil, errors.New("upload failed")
	}
	for marker := range f.failFor {
		if strings.Contains(cleanName, marker) {
			return nil, errors.New("upload failed")
		}
	}
	return &storage.StoredFile{
		URL:          "https://bucket.s3.us-east-1.amazonaws.com/" + folder + "/" + cleanName,
		Key:          folder + "/" + cleanName,
		Folder:       folder,
		ResourceKind: storage.ResourceKind(contentType),
		CleanName:    cleanName,
		Size:         int64(len(buf)),
		ContentType:  contentType,
	}, nil
}

type filePart struct {
	field       string
	name        string
	contentType string
	data        []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...filePart) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="`+f.field+`"; filename="`+f.name+`"`)
		hdr.Set("Content-Type", f.contentType)
		part, err := w.CreatePart(hdr)
		require.NoError(t, err)
		_, err = part.Write(f.data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &body, w.FormDataContentType()
}

func singleApp(t *testing.T, up *fakeUploader, cfg Config) *fiber.App {
	t.Helper()
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	m := New(up, logger.Nop(), cfg)
	app.Post("/upload", m.Single(), func(c *fiber.Ctx) error {
		stored := c.Locals(ResultKey).(*storage.StoredFile)
		return c.JSON(stored.Key)
	})
	return app
}

func doUpload(t *testing.T, app *fiber.App, fields map[string]string, files ...filePart) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, fields, files...)
	req := httptest.NewRequest(http.MethodPost, "/upload", body)
	req.Header.Set("Content-Type", contentType)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestSingleRejectsOversizeBeforeNetwork(t *testing.T) {
	up := &fakeUploader{}
	app := singleApp(t, up, Config{MaxSize: 10})

	resp := doUpload(t, app,
		map[string]string{"firmId": "firm1"},
		filePart{field: "file", name: "big.pdf", contentType: "application/pdf", data: bytes.Repeat([]byte("x"), 11)})

	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, up.calls)
}

func TestSingleRequiresBothTypeChecks(t *testing.T) {
	up := &fakeUploader{}
	app := singleApp(t, up, Config{})

	// allowed MIME, wrong extension
	resp := doUpload(t, app,
		map[string]string{"firmId": "firm1"},
		filePart{field: "file", name: "sneaky.exe", contentType: "application/pdf", data: []byte("data")})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	// allowed extension, disallowed MIME
	resp = doUpload(t, app,
		map[string]string{"firmId": "firm1"},
		filePart{field: "file", name: "fine.pdf", contentType: "application/x-msdownload", data: []byte("data")})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	assert.Zero(t, up.calls)
}

func TestSingleRequiresTenant(t *testing.T) {
	up := &fakeUploader{}
	app := singleApp(t, up, Config{})

	resp := doUpload(t, app, nil,
		filePart{field: "file", name: "a.pdf", contentType: "application/pdf", data: []byte("data")})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, up.calls)
}

func TestSingleUploadsAndAttachesResult(t *testing.T) {
	up := &fakeUploader{}
	app := singleApp(t, up, Config{})

	resp := doUpload(t, app,
		map[string]string{"firmId": "firm42", "category": "litigation", "entityType": "case"},
		filePart{field: "file", name: "Motion To Dismiss.pdf", contentType: "application/pdf", data: []byte("%PDF-1.4")})

	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, up.calls)

	var key string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&key))
	assert.True(t, strings.HasPrefix(key, "tenants/firm42/litigation/case/pdfs/"), key)
	assert.Contains(t, key, "motion_to_dismiss.pdf")
}

func TestMultiplePartitionsResults(t *testing.T) {
	up := &fakeUploader{failFor: map[string]bool{"bad_one": true}}
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	m := New(up, logger.Nop(), Config{})
	app.Post("/upload", m.Multiple(5), func(c *fiber.Ctx) error {
		batch := c.Locals(BatchKey).(*BatchResult)
		return c.JSON(fiber.Map{
			"succeeded": len(batch.Succeeded),
			"failed":    len(batch.Failed),
		})
	})

	resp := doUpload(t, app,
		map[string]string{"firmId": "firm1"},
		filePart{field: "file", name: "ok one.pdf", contentType: "application/pdf", data: []byte("a")},
		filePart{field: "file", name: "bad one.pdf", contentType: "application/pdf", data: []byte("b")},
		filePart{field: "file", name: "ok two.txt", contentType: "text/plain", data: []byte("c")},
	)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var out struct {
		Succeeded int `json:"succeeded"`
		Failed    int `json:"failed"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, 2, out.Succeeded)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, 3, up.calls)
}

func TestMultipleEnforcesBoundedCount(t *testing.T) {
	up := &fakeUploader{}
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	m := New(up, logger.Nop(), Config{})
	app.Post("/upload", m.Multiple(1), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp := doUpload(t, app,
		map[string]string{"firmId": "firm1"},
		filePart{field: "file", name: "a.pdf", contentType: "application/pdf", data: []byte("a")},
		filePart{field: "file", name: "b.pdf", contentType: "application/pdf", data: []byte("b")},
	)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, up.calls)
}

func TestValidateEmptyFile(t *testing.T) {
	up := &fakeUploader{}
	app := singleApp(t, up, Config{})

	resp := doUpload(t, app,
		map[string]string{"firmId": "firm1"},
		filePart{field: "file", name: "a.pdf", contentType: "application/pdf", data: nil})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Zero(t, up.calls)
}
