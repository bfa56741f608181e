package models

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ComplaintAction enum for complaint audit entries
type ComplaintAction string

const (
	ComplaintActionCreated        ComplaintAction = "created"
	ComplaintActionAssigned       ComplaintAction = "assigned"
	ComplaintActionInProgress     ComplaintAction = "in-progress"
	ComplaintActionImagesUploaded ComplaintAction = "images-uploaded"
	ComplaintActionResolved       ComplaintAction = "resolved"
	ComplaintActionRejected       ComplaintAction = "rejected"
	ComplaintActionNote           ComplaintAction = "note"
	ComplaintActionTaskCreated    ComplaintAction = "task-created"
)

// TaskAction enum for task audit entries
type TaskAction string

const (
	TaskActionCreated        TaskAction = "created"
	TaskActionAssigned       TaskAction = "assigned"
	TaskActionInProgress     TaskAction = "in-progress"
	TaskActionCompleted      TaskAction = "completed"
	TaskActionCancelled      TaskAction = "cancelled"
	TaskActionApproved       TaskAction = "approved"
	TaskActionImagesUploaded TaskAction = "images-uploaded"
	TaskActionNote           TaskAction = "note"
)

// ComplaintUpdate is one immutable audit entry on a complaint. Entries are
// only ever inserted, never updated or deleted.
type ComplaintUpdate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Complaint primitive.ObjectID `bson:"complaint" json:"complaint"`
	Action    ComplaintAction    `bson:"action" json:"action"`
	By        primitive.ObjectID `bson:"by" json:"by"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Meta      map[string]any     `bson:"meta,omitempty" json:"meta,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// TaskUpdate is one immutable audit entry on a task.
type TaskUpdate struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Task      primitive.ObjectID `bson:"task" json:"task"`
	Action    TaskAction         `bson:"action" json:"action"`
	By        primitive.ObjectID `bson:"by" json:"by"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	Meta      map[string]any     `bson:"meta,omitempty" json:"meta,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// EnsureUpdateIndexes creates the compound indexes that back newest-first
// trail listings
func EnsureUpdateIndexes(complaintUpdates, taskUpdates *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := complaintUpdates.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "complaint", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	if err != nil {
		return err
	}

	_, err = taskUpdates.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "task", Value: 1}, {Key: "createdAt", Value: -1}},
	})
	return err
}
