package documents

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathimasithara01/caseflow/internal/apperr"
	"github.com/fathimasithara01/caseflow/internal/logger"
	"github.com/fathimasithara01/caseflow/internal/models"
	"github.com/fathimasithara01/caseflow/internal/storage"
	"github.com/fathimasithara01/caseflow/internal/upload"
)

type fakeDeleter struct {
	calls int
	fail  bool
}

func (f *fakeDeleter) Delete(_ context.Context, key string) storage.DeleteResult {
	f.calls++
	if f.fail {
		return storage.DeleteResult{OK: false, Reason: "provider unavailable"}
	}
	return storage.DeleteResult{OK: true}
}

// fakeCollection implements ParentCollection for one seeded case so the
// pull path runs without a live database.
type fakeCollection struct {
	exists   bool
	parentID primitive.ObjectID
	docs     []models.StoredFile
	pulls    int
}

func notFoundResult() *mongo.SingleResult {
	return mongo.NewSingleResultFromDocument(bson.D{}, mongo.ErrNoDocuments, nil)
}

func (f *fakeCollection) FindOne(_ context.Context, filter interface{}, _ ...*options.FindOneOptions) *mongo.SingleResult {
	q := filter.(bson.M)
	if !f.exists || q["_id"] != f.parentID {
		return notFoundResult()
	}
	docID, ok := q["documents._id"].(primitive.ObjectID)
	if !ok {
		return mongo.NewSingleResultFromDocument(bson.M{"_id": f.parentID}, nil, nil)
	}
	for _, d := range f.docs {
		if d.ID == docID {
			return mongo.NewSingleResultFromDocument(
				bson.M{"documents": []models.StoredFile{d}}, nil, nil)
		}
	}
	return notFoundResult()
}

func (f *fakeCollection) FindOneAndUpdate(_ context.Context, filter, update interface{}, _ ...*options.FindOneAndUpdateOptions) *mongo.SingleResult {
	q := filter.(bson.M)
	if !f.exists || q["_id"] != f.parentID {
		return notFoundResult()
	}
	push := update.(bson.M)["$push"].(bson.M)
	f.docs = append(f.docs, push["documents"].(models.StoredFile))
	return mongo.NewSingleResultFromDocument(bson.M{"_id": f.parentID}, nil, nil)
}

func (f *fakeCollection) UpdateOne(_ context.Context, filter, update interface{}, _ ...*options.UpdateOptions) (*mongo.UpdateResult, error) {
	q := filter.(bson.M)
	if !f.exists || q["_id"] != f.parentID {
		return &mongo.UpdateResult{}, nil
	}
	if pull, ok := update.(bson.M)["$pull"].(bson.M); ok {
		docID := pull["documents"].(bson.M)["_id"].(primitive.ObjectID)
		for i, d := range f.docs {
			if d.ID == docID {
				f.docs = append(f.docs[:i], f.docs[i+1:]...)
				f.pulls++
				return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
			}
		}
		return &mongo.UpdateResult{MatchedCount: 1}, nil
	}
	return &mongo.UpdateResult{MatchedCount: 1, ModifiedCount: 1}, nil
}

func seededFake() (*fakeCollection, primitive.ObjectID, primitive.ObjectID) {
	parentID := primitive.NewObjectID()
	docID := primitive.NewObjectID()
	return &fakeCollection{
		exists:   true,
		parentID: parentID,
		docs: []models.StoredFile{{
			ID:   docID,
			Name: "brief",
			URL:  "https://bucket/tenants/firm1/litigation/case/pdfs/x.pdf",
			Key:  "tenants/firm1/litigation/case/pdfs/x.pdf",
		}},
	}, parentID, docID
}

func TestAttachmentURL(t *testing.T) {
	got := attachmentURL("https://bucket.s3.us-east-1.amazonaws.com/tenants/f/a.pdf", "brief.pdf")
	assert.Contains(t, got, "?response-content-disposition=attachment")

	got = attachmentURL("https://host/object?versionId=3", "brief.pdf")
	assert.Contains(t, got, "&response-content-disposition=attachment")
}

// The local pull is authoritative even when the remote delete soft-fails;
// this covers the invariant without needing a database.
func TestRemovePullsWhenRemoteDeleteFails(t *testing.T) {
	col, parentID, docID := seededFake()
	deleter := &fakeDeleter{fail: true}
	h := New(col, deleter, logger.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Delete("/cases/:parentId/documents/:documentId", h.Remove)

	req := httptest.NewRequest(http.MethodDelete,
		"/cases/"+parentID.Hex()+"/documents/"+docID.Hex(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, deleter.calls)
	assert.Equal(t, 1, col.pulls)
	assert.Empty(t, col.docs)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["storageDeleted"])
}

func batchApp(h *Handlers, batch *upload.BatchResult) *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Post("/cases/:id/documents/batch",
		func(c *fiber.Ctx) error {
			c.Locals(upload.BatchKey, batch)
			return c.Next()
		},
		h.CreateBatch)
	return app
}

// An all-failed batch must still resolve the parent: a bad id is a 404, not
// a hollow 201.
func TestCreateBatchAllFailedUnknownParent(t *testing.T) {
	col := &fakeCollection{}
	h := New(col, &fakeDeleter{}, logger.Nop())
	app := batchApp(h, &upload.BatchResult{
		Failed: []upload.FailedUpload{{FileName: "a.pdf", Reason: "upload timed out"}},
	})

	req := httptest.NewRequest(http.MethodPost,
		"/cases/"+primitive.NewObjectID().Hex()+"/documents/batch", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestCreateBatchAllFailedKnownParent(t *testing.T) {
	col, parentID, _ := seededFake()
	h := New(col, &fakeDeleter{}, logger.Nop())
	app := batchApp(h, &upload.BatchResult{
		Failed: []upload.FailedUpload{{FileName: "a.pdf", Reason: "upload timed out"}},
	})

	req := httptest.NewRequest(http.MethodPost,
		"/cases/"+parentID.Hex()+"/documents/batch", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(0), body["attached"])
	require.Len(t, body["failed"], 1)
}

func testCollection(t *testing.T) *mongo.Collection {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		t.Skip("MONGO_TEST_URI env not set")
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	col := client.Database("caseflow_test").Collection("cases_" + primitive.NewObjectID().Hex())
	t.Cleanup(func() { _ = col.Drop(context.Background()) })
	return col
}

func seedCase(t *testing.T, col *mongo.Collection) (primitive.ObjectID, primitive.ObjectID) {
	t.Helper()
	docID := primitive.NewObjectID()
	cs := models.Case{
		FirmID: "firm1",
		Title:  "Doe v. Roe",
		Status: models.CaseStatusOpen,
		Documents: []models.StoredFile{{
			ID:   docID,
			Name: "brief",
			URL:  "https://bucket/tenants/firm1/litigation/case/pdfs/x.pdf",
			Key:  "tenants/firm1/litigation/case/pdfs/x.pdf",
		}},
	}
	res, err := col.InsertOne(context.Background(), cs)
	require.NoError(t, err)
	return res.InsertedID.(primitive.ObjectID), docID
}

// The local pull is authoritative: a failing remote delete must not block it,
// and the operation still reports success.
func TestRemoveSurvivesRemoteDeleteFailure(t *testing.T) {
	col := testCollection(t)
	parentID, docID := seedCase(t, col)

	deleter := &fakeDeleter{fail: true}
	h := New(col, deleter, logger.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Delete("/cases/:parentId/documents/:documentId", h.Remove)

	req := httptest.NewRequest(http.MethodDelete,
		"/cases/"+parentID.Hex()+"/documents/"+docID.Hex(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, deleter.calls)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, false, body["storageDeleted"])

	// embedded descriptor is gone
	var cs models.Case
	require.NoError(t, col.FindOne(context.Background(), bson.M{"_id": parentID}).Decode(&cs))
	assert.Empty(t, cs.Documents)
}

func TestRemoveUnknownDocument(t *testing.T) {
	col := testCollection(t)
	parentID, _ := seedCase(t, col)

	deleter := &fakeDeleter{}
	h := New(col, deleter, logger.Nop())

	app := fiber.New(fiber.Config{ErrorHandler: apperr.ErrorHandler})
	app.Delete("/cases/:parentId/documents/:documentId", h.Remove)

	req := httptest.NewRequest(http.MethodDelete,
		"/cases/"+parentID.Hex()+"/documents/"+primitive.NewObjectID().Hex(), nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	// no remote call for a document that was never found
	assert.Zero(t, deleter.calls)
}
