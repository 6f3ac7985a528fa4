package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// StoredFile is the persisted record of an object accepted by the blob store.
// It is embedded into a parent document (case, task) at upload time and is
// never updated in place.
type StoredFile struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	URL          string             `bson:"url" json:"url"`
	Key          string             `bson:"key" json:"key"` // provider public id / object key
	Folder       string             `bson:"folder" json:"folder"`
	ResourceKind string             `bson:"resource_kind" json:"resourceKind"` // image|video|raw
	OriginalName string             `bson:"original_name" json:"originalName"`
	CleanName    string             `bson:"clean_name" json:"cleanName"`
	Thumbnail    string             `bson:"thumbnail,omitempty" json:"thumbnail,omitempty"`
	Size         int64              `bson:"size" json:"size"`
	ContentType  string             `bson:"content_type" json:"contentType"`
	UploadedAt   time.Time          `bson:"uploaded_at" json:"uploadedAt"`
}
