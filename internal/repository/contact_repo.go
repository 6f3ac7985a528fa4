package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/fathimasithara01/caseflow/internal/models"
)

type ContactRepo struct {
	col *mongo.Collection
}

func NewContactRepo(col *mongo.Collection) *ContactRepo {
	return &ContactRepo{col: col}
}

func (r *ContactRepo) Insert(ctx context.Context, cr *models.ContactRequest) error {
	cr.CreatedAt = time.Now().UTC()
	res, err := r.col.InsertOne(ctx, cr)
	if err != nil {
		return err
	}
	cr.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *ContactRepo) List(ctx context.Context, limit int64) ([]models.ContactRequest, error) {
	cur, err := r.col.Find(ctx, bson.M{},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(limit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var out []models.ContactRequest
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
