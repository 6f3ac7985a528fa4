package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathimasithara01/caseflow/internal/models"
)

type CaseRepo struct {
	col *mongo.Collection
}

func NewCaseRepo(col *mongo.Collection) *CaseRepo {
	return &CaseRepo{col: col}
}

func (r *CaseRepo) Collection() *mongo.Collection { return r.col }

func (r *CaseRepo) Insert(ctx context.Context, cs *models.Case) error {
	now := time.Now().UTC()
	cs.CreatedAt = now
	cs.UpdatedAt = now
	if cs.Status == "" {
		cs.Status = models.CaseStatusOpen
	}
	if cs.Documents == nil {
		cs.Documents = []models.StoredFile{}
	}
	res, err := r.col.InsertOne(ctx, cs)
	if err != nil {
		return err
	}
	cs.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *CaseRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Case, error) {
	var cs models.Case
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *CaseRepo) ListByFirm(ctx context.Context, firmID, status string) ([]models.Case, error) {
	filter := bson.M{"firm_id": firmID}
	if status != "" {
		filter["status"] = status
	}
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "updated_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Case
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CaseRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Case, error) {
	set["updated_at"] = time.Now().UTC()
	var cs models.Case
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		updateAfter(),
	).Decode(&cs)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cs, nil
}

func (r *CaseRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus groups a firm's cases by status for the dashboard.
func (r *CaseRepo) CountByStatus(ctx context.Context, firmID string) ([]bson.M, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"firm_id": firmID}}},
		{{Key: "$group", Value: bson.M{
			"_id":   "$status",
			"count": bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.M{"count": -1}}},
	}
	return Aggregate(ctx, r.col, pipeline)
}
