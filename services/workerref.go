package services

import (
	"context"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WorkerRef is a tagged reference to a worker: either the internal ObjectID
// or the public worker code. The zero value references nobody.
type WorkerRef struct {
	id   primitive.ObjectID
	code string
}

// ParseWorkerRef classifies a human-entered identifier. A valid ObjectID hex
// is treated as an internal id, anything else as a public worker code
// (case-insensitive, normalized uppercase).
func ParseWorkerRef(s string) (WorkerRef, error) {
	code := models.NormalizeWorkerCode(s)
	if code == "" {
		return WorkerRef{}, Validationf("worker reference is required")
	}
	if id, err := primitive.ObjectIDFromHex(s); err == nil {
		return WorkerRef{id: id}, nil
	}
	return WorkerRef{code: code}, nil
}

// WorkerRefByID wraps an internal id as a reference.
func WorkerRefByID(id primitive.ObjectID) WorkerRef {
	return WorkerRef{id: id}
}

func (r WorkerRef) IsZero() bool {
	return r.id.IsZero() && r.code == ""
}

// ResolveWorker looks a reference up through the worker directory. The
// resolved user must exist and hold the worker role.
func ResolveWorker(ctx context.Context, users UserStore, ref WorkerRef) (*models.User, error) {
	if ref.IsZero() {
		return nil, Validationf("worker reference is required")
	}

	var (
		user *models.User
		err  error
	)
	if !ref.id.IsZero() {
		user, err = users.FindByID(ctx, ref.id)
	} else {
		user, err = users.FindWorkerByCode(ctx, ref.code)
	}
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, NotFoundf("worker not found")
	}
	if user.Role != models.RoleWorker {
		return nil, Validationf("user is not a worker")
	}
	return user, nil
}
