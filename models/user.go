package models

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/crypto/bcrypt"
)

// Role enum
type Role string

const (
	RoleCitizen   Role = "citizen"
	RoleWorker    Role = "worker"
	RoleMunicipal Role = "municipal"
)

func ValidRole(s string) bool {
	switch Role(s) {
	case RoleCitizen, RoleWorker, RoleMunicipal:
		return true
	}
	return false
}

// PointEntry is one adjustment in a worker's point history. The running
// balance on the user always equals the sum of all entry points.
type PointEntry struct {
	Points int       `bson:"points" json:"points"`
	Reason string    `bson:"reason,omitempty" json:"reason,omitempty"`
	Event  string    `bson:"event,omitempty" json:"event,omitempty"`
	Date   time.Time `bson:"date" json:"date"`
}

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Email    string             `bson:"email" json:"email"`
	Phone    string             `bson:"phone,omitempty" json:"phone,omitempty"`
	Password string             `bson:"password,omitempty" json:"-"`
	Role     Role               `bson:"role" json:"role"`
	// WorkerID is the public human-readable code for workers (e.g. WRK-1001),
	// always stored uppercase.
	WorkerID      string       `bson:"workerId,omitempty" json:"workerId,omitempty"`
	Points        int          `bson:"points" json:"points"`
	PointsHistory []PointEntry `bson:"pointsHistory,omitempty" json:"pointsHistory,omitempty"`
	IsActive      bool         `bson:"isActive" json:"isActive"`
	CreatedAt     time.Time    `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time    `bson:"updatedAt" json:"updatedAt"`
}

// NormalizeWorkerCode uppercases and trims a human-entered worker code.
func NormalizeWorkerCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

func (u *User) HashPassword() error {
	hashed, err := bcrypt.GenerateFromPassword([]byte(u.Password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	u.Password = string(hashed)
	return nil
}

func (u *User) ComparePassword(candidate string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(candidate))
	return err == nil
}

// EnsureUserIndexes creates the unique email index and the unique sparse
// index backing worker-code lookups
func EnsureUserIndexes(collection *mongo.Collection) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "workerId", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	return err
}
