package store

import (
	"context"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ComplaintUpdates implements services.ComplaintUpdateStore. Entries are
// append-only; there is no update or delete path.
type ComplaintUpdates struct {
	col *mongo.Collection
}

func NewComplaintUpdates(col *mongo.Collection) *ComplaintUpdates {
	return &ComplaintUpdates{col: col}
}

func (s *ComplaintUpdates) Insert(ctx context.Context, u *models.ComplaintUpdate) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, u)
	return err
}

func (s *ComplaintUpdates) ListForComplaint(ctx context.Context, id primitive.ObjectID) ([]models.ComplaintUpdate, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"complaint": id}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []models.ComplaintUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}

// TaskUpdates implements services.TaskUpdateStore.
type TaskUpdates struct {
	col *mongo.Collection
}

func NewTaskUpdates(col *mongo.Collection) *TaskUpdates {
	return &TaskUpdates{col: col}
}

func (s *TaskUpdates) Insert(ctx context.Context, u *models.TaskUpdate) error {
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, u)
	return err
}

func (s *TaskUpdates) ListForTask(ctx context.Context, id primitive.ObjectID) ([]models.TaskUpdate, error) {
	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, bson.M{"task": id}, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var updates []models.TaskUpdate
	if err := cursor.All(ctx, &updates); err != nil {
		return nil, err
	}
	return updates, nil
}
