package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	CaseStatusOpen    = "open"
	CaseStatusPending = "pending"
	CaseStatusClosed  = "closed"
	CaseStatusDecided = "decided"
	CaseStatusSettled = "settled"
)

type Task struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	AssignedTo  primitive.ObjectID `bson:"assigned_to,omitempty" json:"assignedTo,omitempty"`
	DueDate     time.Time          `bson:"due_date,omitempty" json:"dueDate,omitempty"`
	Done        bool               `bson:"done" json:"done"`
	Documents   []StoredFile       `bson:"documents,omitempty" json:"documents,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"createdAt"`
}

type Case struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	FirmID      string               `bson:"firm_id" json:"firmId"`
	Title       string               `bson:"title" json:"title"`
	SuitNo      string               `bson:"suit_no,omitempty" json:"suitNo,omitempty"`
	ClientID    primitive.ObjectID   `bson:"client_id,omitempty" json:"clientId,omitempty"`
	Status      string               `bson:"status" json:"status"`
	Category    string               `bson:"category,omitempty" json:"category,omitempty"`
	CourtName   string               `bson:"court_name,omitempty" json:"courtName,omitempty"`
	Description string               `bson:"description,omitempty" json:"description,omitempty"`
	AssignedTo  []primitive.ObjectID `bson:"assigned_to,omitempty" json:"assignedTo,omitempty"`
	Documents   []StoredFile         `bson:"documents" json:"documents"`
	Tasks       []Task               `bson:"tasks,omitempty" json:"tasks,omitempty"`
	FilingDate  time.Time            `bson:"filing_date,omitempty" json:"filingDate,omitempty"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}
