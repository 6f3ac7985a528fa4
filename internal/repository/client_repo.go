package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/fathimasithara01/caseflow/internal/models"
)

type ClientRepo struct {
	col *mongo.Collection
}

func NewClientRepo(col *mongo.Collection) *ClientRepo {
	return &ClientRepo{col: col}
}

func (r *ClientRepo) Insert(ctx context.Context, cl *models.Client) error {
	now := time.Now().UTC()
	cl.CreatedAt = now
	cl.UpdatedAt = now
	cl.Active = true
	res, err := r.col.InsertOne(ctx, cl)
	if err != nil {
		return err
	}
	cl.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ClientRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Client, error) {
	var cl models.Client
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&cl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *ClientRepo) ListByFirm(ctx context.Context, firmID string) ([]models.Client, error) {
	cur, err := r.col.Find(ctx, bson.M{"firm_id": firmID, "active": true})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.Client
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ClientRepo) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*models.Client, error) {
	set["updated_at"] = time.Now().UTC()
	var cl models.Client
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		updateAfter(),
	).Decode(&cl)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

func (r *ClientRepo) Deactivate(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now().UTC()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
