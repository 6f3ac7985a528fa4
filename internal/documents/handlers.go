package documents

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/models"
	"github.com/fathimasithara01/caseflow/internal/storage"
	"github.com/fathimasithara01/caseflow/internal/upload"
)

// Deleter is the slice of the blob store the handlers need.
type Deleter interface {
	Delete(ctx context.Context, key string) storage.DeleteResult
}

// ParentCollection is the slice of *mongo.Collection the handlers touch,
// split out so the pull path can be exercised without a live database.
type ParentCollection interface {
	FindOne(ctx context.Context, filter interface{}, opts ...*options.FindOneOptions) *mongo.SingleResult
	FindOneAndUpdate(ctx context.Context, filter, update interface{}, opts ...*options.FindOneAndUpdateOptions) *mongo.SingleResult
	UpdateOne(ctx context.Context, filter, update interface{}, opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
}

// Handlers serves the embedded documents array of any parent collection
// (cases, tasks, ...). The same logic is mounted once per parent resource.
type Handlers struct {
	col   ParentCollection
	store Deleter
	log   *zap.SugaredLogger
}

func New(col ParentCollection, store Deleter, log *zap.SugaredLogger) *Handlers {
	return &Handlers{col: col, store: store, log: log}
}

// Create attaches the file uploaded by the upload middleware to the parent
// record with an atomic push, and returns the updated parent.
func (h *Handlers) Create(c *fiber.Ctx) error {
	parentID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("parent record not found")
	}
	name := strings.TrimSpace(c.FormValue("fileName"))
	if name == "" {
		return apperr.Validation("fileName is required")
	}
	stored, ok := c.Locals(upload.ResultKey).(*storage.StoredFile)
	if !ok || stored == nil {
		return apperr.Validation("no uploaded file attached to the request")
	}

	doc := models.StoredFile{
		ID:           primitive.NewObjectID(),
		Name:         name,
		URL:          stored.URL,
		Key:          stored.Key,
		Folder:       stored.Folder,
		ResourceKind: stored.ResourceKind,
		OriginalName: stored.OriginalName,
		CleanName:    stored.CleanName,
		Size:         stored.Size,
		ContentType:  stored.ContentType,
		UploadedAt:   time.Now().UTC(),
	}

	var parent bson.M
	err = h.col.FindOneAndUpdate(c.Context(),
		bson.M{"_id": parentID},
		bson.M{
			"$push": bson.M{"documents": doc},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&parent)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return apperr.NotFound("parent record not found")
	}
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "document added",
		"data":    parent,
	})
}

// CreateBatch attaches every file that made it through a multi-file upload.
// Files that failed the upload stay in the failed list of the response; their
// absence does not fail the request.
func (h *Handlers) CreateBatch(c *fiber.Ctx) error {
	parentID, err := primitive.ObjectIDFromHex(c.Params("id"))
	if err != nil {
		return apperr.NotFound("parent record not found")
	}
	batch, ok := c.Locals(upload.BatchKey).(*upload.BatchResult)
	if !ok || batch == nil {
		return apperr.Validation("no uploaded files attached to the request")
	}

	now := time.Now().UTC()
	docs := make([]models.StoredFile, 0, len(batch.Succeeded))
	for _, stored := range batch.Succeeded {
		docs = append(docs, models.StoredFile{
			ID:           primitive.NewObjectID(),
			Name:         stored.OriginalName,
			URL:          stored.URL,
			Key:          stored.Key,
			Folder:       stored.Folder,
			ResourceKind: stored.ResourceKind,
			OriginalName: stored.OriginalName,
			CleanName:    stored.CleanName,
			Size:         stored.Size,
			ContentType:  stored.ContentType,
			UploadedAt:   now,
		})
	}

	if len(docs) > 0 {
		res, err := h.col.UpdateOne(c.Context(),
			bson.M{"_id": parentID},
			bson.M{
				"$push": bson.M{"documents": bson.M{"$each": docs}},
				"$set":  bson.M{"updated_at": now},
			},
		)
		if err != nil {
			return err
		}
		if res.MatchedCount == 0 {
			return apperr.NotFound("parent record not found")
		}
	} else {
		// nothing to attach, but a bad parent id is still a 404
		var exists bson.M
		err := h.col.FindOne(c.Context(), bson.M{"_id": parentID},
			options.FindOne().SetProjection(bson.M{"_id": 1}),
		).Decode(&exists)
		if errors.Is(err, mongo.ErrNoDocuments) {
			return apperr.NotFound("parent record not found")
		}
		if err != nil {
			return err
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message":   "batch processed",
		"attached":  len(docs),
		"succeeded": batch.Succeeded,
		"failed":    batch.Failed,
	})
}

// Remove detaches a document. The remote delete is attempted first but is
// best effort: the local pull always runs and alone defines success, so a
// stray remote object is preferred over a dangling local reference.
func (h *Handlers) Remove(c *fiber.Ctx) error {
	parentID, docID, err := ids(c)
	if err != nil {
		return err
	}
	doc, err := h.find(c.Context(), parentID, docID)
	if err != nil {
		return err
	}

	res := h.store.Delete(c.Context(), doc.Key)
	if !res.OK {
		h.log.Warnw("remote delete soft-failed, pulling local reference anyway",
			"key", doc.Key, "reason", res.Reason)
	}

	upd, err := h.col.UpdateOne(c.Context(),
		bson.M{"_id": parentID},
		bson.M{"$pull": bson.M{"documents": bson.M{"_id": docID}}},
	)
	if err != nil {
		return err
	}
	if upd.ModifiedCount == 0 {
		return apperr.NotFound("document not found")
	}
	return c.JSON(fiber.Map{
		"message":        "document removed",
		"storageDeleted": res.OK,
	})
}

// Download returns the stored descriptor, or redirects to the object URL with
// attachment disposition when ?redirect=true.
func (h *Handlers) Download(c *fiber.Ctx) error {
	parentID, docID, err := ids(c)
	if err != nil {
		return err
	}
	doc, err := h.find(c.Context(), parentID, docID)
	if err != nil {
		return err
	}

	if c.Query("redirect") == "true" {
		return c.Redirect(attachmentURL(doc.URL, doc.Name), fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   doc,
	})
}

func (h *Handlers) find(ctx context.Context, parentID, docID primitive.ObjectID) (*models.StoredFile, error) {
	var out struct {
		Documents []models.StoredFile `bson:"documents"`
	}
	err := h.col.FindOne(ctx,
		bson.M{"_id": parentID, "documents._id": docID},
		options.FindOne().SetProjection(bson.M{"documents.$": 1}),
	).Decode(&out)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperr.NotFound("document not found")
	}
	if err != nil {
		return nil, err
	}
	if len(out.Documents) == 0 {
		return nil, apperr.NotFound("document not found")
	}
	return &out.Documents[0], nil
}

func ids(c *fiber.Ctx) (primitive.ObjectID, primitive.ObjectID, error) {
	parentID, err := primitive.ObjectIDFromHex(c.Params("parentId"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apperr.NotFound("parent record not found")
	}
	docID, err := primitive.ObjectIDFromHex(c.Params("documentId"))
	if err != nil {
		return primitive.NilObjectID, primitive.NilObjectID, apperr.NotFound("document not found")
	}
	return parentID, docID, nil
}

// attachmentURL forces download semantics on the object URL.
func attachmentURL(base, name string) string {
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	disposition := url.QueryEscape(`attachment; filename="` + name + `"`)
	return base + sep + "response-content-disposition=" + disposition
}
