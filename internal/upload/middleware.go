package upload

import (
	"context"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/storage"
)

const (
	// ResultKey is where Single stashes the upload result for the next handler.
	ResultKey = "upload_result"
	// BatchKey is where Multiple stashes the batch result.
	BatchKey = "upload_batch"
)

const defaultMaxSize = 10 << 20 // 10 MiB

// Uploader is the slice of the blob store the middleware needs.
type Uploader interface {
	Upload(ctx context.Context, buf []byte, cleanName, folder, contentType, tenantID string) (*storage.StoredFile, error)
}

// defaultAllowed pairs each accepted content type with its extensions. A file
// must pass BOTH the declared-type check and the extension check; either one
// alone is spoofable.
var defaultAllowed = map[string][]string{
	"image/jpeg":      {".jpg", ".jpeg"},
	"image/png":       {".png"},
	"image/gif":       {".gif"},
	"image/webp":      {".webp"},
	"application/pdf": {".pdf"},
	"application/msword": {".doc"},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": {".docx"},
	"application/vnd.ms-excel": {".xls"},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": {".xlsx"},
	"text/csv":   {".csv"},
	"text/plain": {".txt"},
}

// Config enumerates every recognized option; zero values take defaults.
type Config struct {
	Field   string
	MaxSize int64
	// Allowed maps content type -> acceptable extensions.
	Allowed map[string][]string
}

type Middleware struct {
	store Uploader
	log   *zap.SugaredLogger
	cfg   Config
}

func New(store Uploader, log *zap.SugaredLogger, cfg Config) *Middleware {
	if cfg.Field == "" {
		cfg.Field = "file"
	}
	if cfg.MaxSize == 0 {
		cfg.MaxSize = defaultMaxSize
	}
	if cfg.Allowed == nil {
		cfg.Allowed = defaultAllowed
	}
	return &Middleware{store: store, log: log, cfg: cfg}
}

// FailedUpload reports one file that did not make it in a batch.
type FailedUpload struct {
	FileName string `json:"fileName"`
	Reason   string `json:"reason"`
}

// BatchResult partitions a multi-file upload. Partial success is a reported
// outcome, not an error.
type BatchResult struct {
	Succeeded []*storage.StoredFile `json:"succeeded"`
	Failed    []FailedUpload        `json:"failed"`
}

// Single validates and uploads one file from the configured multipart field,
// then stores the result under ResultKey for the route handler.
func (m *Middleware) Single() fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile(m.cfg.Field)
		if err != nil {
			return apperr.Validation("file is required")
		}
		tenantID, err := tenantFrom(c)
		if err != nil {
			return err
		}
		stored, err := m.uploadOne(c.Context(), fh, placementFrom(c, tenantID))
		if err != nil {
			return err
		}
		c.Locals(ResultKey, stored)
		return c.Next()
	}
}

// Multiple uploads up to maxCount files concurrently. One file's failure never
// sinks the batch: results are partitioned into succeeded and failed sets.
func (m *Middleware) Multiple(maxCount int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		form, err := c.MultipartForm()
		if err != nil {
			return apperr.Validation("multipart form is required")
		}
		files := form.File[m.cfg.Field]
		if len(files) == 0 {
			return apperr.Validation("at least one file is required")
		}
		if len(files) > maxCount {
			return apperr.Validation("too many files in one request")
		}
		tenantID, err := tenantFrom(c)
		if err != nil {
			return err
		}

		// fiber.Ctx must not be touched from the workers
		place := placementFrom(c, tenantID)
		ctx := c.Context()

		results := make([]*storage.StoredFile, len(files))
		failures := make([]error, len(files))
		var g errgroup.Group
		for i, fh := range files {
			i, fh := i, fh
			g.Go(func() error {
				stored, err := m.uploadOne(ctx, fh, place)
				if err != nil {
					failures[i] = err
					return nil
				}
				results[i] = stored
				return nil
			})
		}
		_ = g.Wait()

		batch := &BatchResult{}
		for i := range files {
			if failures[i] != nil {
				batch.Failed = append(batch.Failed, FailedUpload{
					FileName: files[i].Filename,
					Reason:   failures[i].Error(),
				})
				continue
			}
			batch.Succeeded = append(batch.Succeeded, results[i])
		}
		c.Locals(BatchKey, batch)
		return c.Next()
	}
}

// placement carries the request-scoped folder inputs so workers never read
// the fiber context.
type placement struct {
	tenantID   string
	category   string
	entityType string
}

func placementFrom(c *fiber.Ctx, tenantID string) placement {
	return placement{
		tenantID:   tenantID,
		category:   c.FormValue("category", storage.DefaultCategory),
		entityType: c.FormValue("entityType", storage.DefaultEntityType),
	}
}

func (m *Middleware) uploadOne(ctx context.Context, fh *multipart.FileHeader, place placement) (*storage.StoredFile, error) {
	if err := m.validate(fh); err != nil {
		return nil, err
	}

	contentType := fh.Header.Get("Content-Type")
	folder, err := storage.DeriveFolder(place.tenantID, contentType, place.category, place.entityType)
	if err != nil {
		return nil, err
	}

	f, err := fh.Open()
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "cannot open uploaded file", err)
	}
	defer f.Close()
	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "cannot read uploaded file", err)
	}

	clean := storage.CleanFileName(fh.Filename)
	stored, err := m.store.Upload(ctx, buf, clean, folder, contentType, place.tenantID)
	if err != nil {
		return nil, err
	}
	stored.OriginalName = fh.Filename
	return stored, nil
}

func (m *Middleware) validate(fh *multipart.FileHeader) error {
	if fh.Size == 0 {
		return apperr.Validation("uploaded file is empty")
	}
	if fh.Size > m.cfg.MaxSize {
		return apperr.Validation("file exceeds the maximum allowed size")
	}
	contentType := fh.Header.Get("Content-Type")
	exts, ok := m.cfg.Allowed[contentType]
	if !ok {
		return apperr.Validation("file type is not allowed")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	for _, e := range exts {
		if ext == e {
			return nil
		}
	}
	return apperr.Validation("file extension does not match its declared type")
}

func tenantFrom(c *fiber.Ctx) (string, error) {
	if v, ok := c.Locals("firm_id").(string); ok && v != "" {
		return v, nil
	}
	if v := c.FormValue("firmId"); v != "" {
		return v, nil
	}
	return "", apperr.Validation("firm id is required for uploads")
}
