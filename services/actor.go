package services

import (
	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Actor is the resolved identity attached to a request by the auth layer.
// The engines trust it completely; no credential checks happen here.
type Actor struct {
	ID   primitive.ObjectID
	Role models.Role
}
