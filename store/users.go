package store

import (
	"context"
	"time"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Users implements services.UserStore over a MongoDB collection.
type Users struct {
	col *mongo.Collection
}

func NewUsers(col *mongo.Collection) *Users {
	return &Users{col: col}
}

func (s *Users) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Users) FindWorkerByCode(ctx context.Context, code string) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, bson.M{"workerId": models.NormalizeWorkerCode(code), "role": models.RoleWorker}).Decode(&user)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ApplyPoints increments the balance and appends the history entry in one
// update. A non-empty event turns the filter into a conditional write so the
// same event can never be applied twice.
func (s *Users) ApplyPoints(ctx context.Context, workerID primitive.ObjectID, event string, delta int, reason string) (bool, error) {
	entry := bson.M{
		"points": delta,
		"reason": reason,
		"date":   time.Now(),
	}
	filter := bson.M{"_id": workerID}
	if event != "" {
		entry["event"] = event
		filter["pointsHistory.event"] = bson.M{"$ne": event}
	}

	res, err := s.col.UpdateOne(ctx, filter, bson.M{
		"$inc":  bson.M{"points": delta},
		"$push": bson.M{"pointsHistory": entry},
		"$set":  bson.M{"updatedAt": time.Now()},
	})
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}
