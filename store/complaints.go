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

// Complaints implements services.ComplaintStore over a MongoDB collection.
type Complaints struct {
	col *mongo.Collection
}

func NewComplaints(col *mongo.Collection) *Complaints {
	return &Complaints{col: col}
}

func (s *Complaints) Insert(ctx context.Context, c *models.Complaint) error {
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := s.col.InsertOne(ctx, c)
	return err
}

func (s *Complaints) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	var complaint models.Complaint
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&complaint)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &complaint, nil
}

func (s *Complaints) List(ctx context.Context, filter services.ComplaintFilter) ([]models.Complaint, error) {
	query := bson.M{}
	if filter.Reporter != nil {
		query["user"] = *filter.Reporter
	}
	if filter.AssignedTo != nil {
		query["assignedTo"] = *filter.AssignedTo
	}

	findOptions := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	cursor, err := s.col.Find(ctx, query, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var complaints []models.Complaint
	if err := cursor.All(ctx, &complaints); err != nil {
		return nil, err
	}
	return complaints, nil
}

func (s *Complaints) Assign(ctx context.Context, id, worker primitive.ObjectID, startedAt *time.Time) error {
	set := bson.M{
		"assignedTo": worker,
		"status":     models.ComplaintInProgress,
		"updatedAt":  time.Now(),
	}
	if startedAt != nil {
		set["resolutionDetails.startedAt"] = *startedAt
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (s *Complaints) SetStatus(ctx context.Context, id primitive.ObjectID, status models.ComplaintStatus, startedAt *time.Time) error {
	set := bson.M{
		"status":    status,
		"updatedAt": time.Now(),
	}
	if startedAt != nil {
		set["resolutionDetails.startedAt"] = *startedAt
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

func (s *Complaints) AppendImages(ctx context.Context, id primitive.ObjectID, after bool, urls []string, startedAt, completedAt *time.Time) error {
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

	// $push/$each keeps concurrent uploads from clobbering each other
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$push": bson.M{field: bson.M{"$each": urls}},
		"$set":  set,
	})
	return err
}

func (s *Complaints) Finalize(ctx context.Context, id primitive.ObjectID, status models.ComplaintStatus, patch services.FinalizePatch) error {
	set := bson.M{
		"status":                       status,
		"resolutionDetails.resolvedAt": patch.ResolvedAt,
		"resolutionDetails.resolvedBy": patch.ResolvedBy,
		"updatedAt":                    time.Now(),
	}
	if patch.Notes != "" {
		set["resolutionDetails.notes"] = patch.Notes
	}
	if patch.StartedAt != nil {
		set["resolutionDetails.startedAt"] = *patch.StartedAt
	}
	if patch.CompletedAt != nil {
		set["resolutionDetails.completedAt"] = *patch.CompletedAt
	}
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	return err
}

// MarkRewarded flips pointsAwarded with a conditional write so two
// concurrent resolves cannot both claim the reward.
func (s *Complaints) MarkRewarded(ctx context.Context, id primitive.ObjectID, points int) (bool, error) {
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

func (s *Complaints) SetPenalty(ctx context.Context, id primitive.ObjectID, points int) error {
	_, err := s.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"penaltyPoints": points,
		"updatedAt":     time.Now(),
	}})
	return err
}
