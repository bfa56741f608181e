package store

import (
	"context"
	"time"

	"wastetrack-be/models"
	"wastetrack-be/services"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Tasks implements services.TaskStore over a MongoDB collection.
type Tasks struct {
	col *mongo.Collection
}

func NewTasks(col *mongo.Collection) *Tasks {
	return &Tasks{col: col}
}

func (s *Tasks) Insert(ctx context.Context, t *models.Task) error {
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, t)
	return err
}

func (s *Tasks) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&task)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (s *Tasks) List(ctx context.Context, filter services.TaskFilter) ([]models.Task, error) {
	query := bson.M{}
	if filter.AssignedTo != nil {
		query["assignedTo"] = *filter.AssignedTo
	}
	if filter.CreatedBy != nil {
		query["createdBy"] = *filter.CreatedBy
	}
	if filter.RelatedComplaint != nil {
		query["relatedComplaint"] = *filter.RelatedComplaint
	}
	if !filter.IncludeArchived {
		query["archived"] = bson.M{"$ne": true}
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Tasks) Assign(ctx context.Context, id, worker primitive.ObjectID) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"assignedTo": worker,
		"status":     models.TaskAssigned,
		"updatedAt":  time.Now(),
	}})
	return err
}

func (s *Tasks) SetStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, startedAt, completedAt *time.Time, clearCompleted bool) error {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if startedAt != nil {
		set["resolutionDetails.startedAt"] = *startedAt
	}
	if completedAt != nil {
		set["completedAt"] = *completedAt
		set["resolutionDetails.completedAt"] = *completedAt
	}

	update := bson.M{"$set": set}
	if clearCompleted {
		update["$unset"] = bson.M{"completedAt": ""}
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

func (s *Tasks) AppendImages(ctx context.Context, id primitive.ObjectID, after bool, urls []string, startedAt, completedAt *time.Time) error {
	field := "resolutionDetails.beforeImages"
	if after {
		field = "resolutionDetails.afterImages"
	}
	set := bson.M{"updatedAt": time.Now()}
	if startedAt != nil {
		set["resolutionDetails.startedAt"] = *startedAt
	}
	if completedAt != nil {
		set["resolutionDetails.completedAt"] = *completedAt
	}

	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: bson.M{"$each": urls}},
		"$set":  set,
	})
	return err
}

// Approve flips the approved flag with a conditional write; the archive and
// forced completion ride in the same update.
func (s *Tasks) Approve(ctx context.Context, id primitive.ObjectID, patch services.ApprovalPatch) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "approved": false},
		bson.M{"$set": bson.M{
			"approved":                      true,
			"approvedAt":                    patch.ApprovedAt,
			"approvedBy":                    patch.ApprovedBy,
			"archived":                      true,
			"status":                        models.TaskCompleted,
			"completedAt":                   patch.CompletedAt,
			"resolutionDetails.completedAt": patch.CompletedAt,
			"updatedAt":                     time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *Tasks) MarkRewarded(ctx context.Context, id primitive.ObjectID, points int) (bool, error) {
	res, err := s.col.UpdateOne(ctx,
		bson.M{"_id": id, "pointsAwarded": false},
		bson.M{"$set": bson.M{
			"pointsAwarded": true,
			"rewardPoints":  points,
			"updatedAt":     time.Now(),
		}})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

func (s *Tasks) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}
