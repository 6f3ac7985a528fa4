package handlers

import (
	"bytes"
	"errors"
	"image"
	"io"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/models"
	"github.com/fathimasithara01/caseflow/internal/repository"
	"github.com/fathimasithara01/caseflow/internal/storage"
	"github.com/fathimasithara01/caseflow/internal/upload"
)

const maxPhotoSize = 5 << 20 // 5 MiB

// PhotoHandler sets a user's profile photo from an uploaded image and stores
// a downscaled thumbnail next to it. It reads the file itself instead of
// going through the upload middleware because the thumbnail needs the bytes.
type PhotoHandler struct {
	users *repository.UserRepo
	store upload.Uploader
	log   *zap.SugaredLogger
}

func NewPhotoHandler(users *repository.UserRepo, store upload.Uploader, log *zap.SugaredLogger) *PhotoHandler {
	return &PhotoHandler{users: users, store: store, log: log}
}

func (h *PhotoHandler) Upload(c *fiber.Ctx) error {
	userID, _ := c.Locals("user_id").(string)
	uid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return apperr.Unauthorized("unauthenticated")
	}
	firmID, _ := c.Locals("firm_id").(string)

	fh, err := c.FormFile("photo")
	if err != nil {
		return apperr.Validation("photo file is required")
	}
	if fh.Size == 0 || fh.Size > maxPhotoSize {
		return apperr.Validation("photo size not allowed")
	}
	contentType := fh.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return apperr.Validation("photo must be an image")
	}

	f, err := fh.Open()
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "cannot open uploaded file", err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return apperr.Wrap(apperr.KindValidation, "cannot read uploaded file", err)
	}

	folder, err := storage.DeriveFolder(firmID, contentType, "profile", "user")
	if err != nil {
		return err
	}
	clean := storage.CleanFileName(fh.Filename)
	stored, err := h.store.Upload(c.Context(), data, clean, folder, contentType, firmID)
	if err != nil {
		return err
	}

	photo := models.StoredFile{
		ID:           primitive.NewObjectID(),
		Name:         "profile photo",
		URL:          stored.URL,
		Key:          stored.Key,
		Folder:       stored.Folder,
		ResourceKind: stored.ResourceKind,
		OriginalName: fh.Filename,
		CleanName:    stored.CleanName,
		Size:         stored.Size,
		ContentType:  stored.ContentType,
		UploadedAt:   time.Now().UTC(),
	}

	// thumbnail is best effort; an undecodable image keeps the original only
	if thumb, err := thumbnailBytes(data); err != nil {
		h.log.Warnw("thumbnail generation failed", "file", fh.Filename, "error", err)
	} else {
		thumbName := strings.TrimSuffix(clean, extSuffix(clean)) + "_thumb.jpg"
		ts, err := h.store.Upload(c.Context(), thumb, thumbName, folder, "image/jpeg", firmID)
		if err != nil {
			h.log.Warnw("thumbnail upload failed", "file", fh.Filename, "error", err)
		} else {
			photo.Thumbnail = ts.URL
		}
	}

	u, err := h.users.Update(c.Context(), uid, bson.M{"photo": photo})
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound("user not found")
	}
	if err != nil {
		return err
	}
	return jsonData(c, fiber.StatusCreated, u)
}

// thumbnailBytes downscales an image to 320px width JPEG.
func thumbnailBytes(data []byte) ([]byte, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	thumb := imaging.Resize(img, 320, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func extSuffix(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i:]
	}
	return ""
}
