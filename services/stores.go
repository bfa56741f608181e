package services

import (
	"context"
	"time"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// The lifecycle engines talk to persistence through these interfaces so they
// can be exercised without a live MongoDB. Lookup methods return (nil, nil)
// when the subject does not exist; the engines translate that into the error
// taxonomy.

// ComplaintFilter narrows complaint listings by role.
type ComplaintFilter struct {
	Reporter   *primitive.ObjectID
	AssignedTo *primitive.ObjectID
}

// FinalizePatch carries the resolution stamps written by a terminal
// complaint transition. Nil timestamps mean "leave as is".
type FinalizePatch struct {
	ResolvedAt  time.Time
	ResolvedBy  primitive.ObjectID
	Notes       string
	StartedAt   *time.Time
	CompletedAt *time.Time
}

type ComplaintStore interface {
	Insert(ctx context.Context, c *models.Complaint) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Complaint, error)
	List(ctx context.Context, filter ComplaintFilter) ([]models.Complaint, error)

	// Assign sets the assignee and forces status to in-progress in one write.
	Assign(ctx context.Context, id, worker primitive.ObjectID, startedAt *time.Time) error
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.ComplaintStatus, startedAt *time.Time) error
	// AppendImages pushes evidence URLs atomically onto the before or after
	// array and applies any progress stamps in the same write.
	AppendImages(ctx context.Context, id primitive.ObjectID, after bool, urls []string, startedAt, completedAt *time.Time) error
	Finalize(ctx context.Context, id primitive.ObjectID, status models.ComplaintStatus, patch FinalizePatch) error
	// MarkRewarded is a compare-and-set on pointsAwarded; it reports whether
	// this call won the flag.
	MarkRewarded(ctx context.Context, id primitive.ObjectID, points int) (bool, error)
	SetPenalty(ctx context.Context, id primitive.ObjectID, points int) error
}

// TaskFilter narrows task listings. Archived tasks are excluded unless
// IncludeArchived is set.
type TaskFilter struct {
	AssignedTo       *primitive.ObjectID
	CreatedBy        *primitive.ObjectID
	RelatedComplaint *primitive.ObjectID
	IncludeArchived  bool
}

// ApprovalPatch carries the stamps written by task approval.
type ApprovalPatch struct {
	ApprovedAt  time.Time
	ApprovedBy  primitive.ObjectID
	CompletedAt time.Time
}

type TaskStore interface {
	Insert(ctx context.Context, t *models.Task) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]models.Task, error)

	Assign(ctx context.Context, id, worker primitive.ObjectID) error
	// SetStatus applies a status transition with the stamps the engine
	// computed; clearCompleted unsets completedAt when leaving completed.
	SetStatus(ctx context.Context, id primitive.ObjectID, status models.TaskStatus, startedAt, completedAt *time.Time, clearCompleted bool) error
	AppendImages(ctx context.Context, id primitive.ObjectID, after bool, urls []string, startedAt, completedAt *time.Time) error
	// Approve is a compare-and-set on the approved flag; it archives the task
	// and forces status to completed in the same write.
	Approve(ctx context.Context, id primitive.ObjectID, patch ApprovalPatch) (bool, error)
	MarkRewarded(ctx context.Context, id primitive.ObjectID, points int) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// FindWorkerByCode resolves a normalized public worker code to a user
	// with role=worker.
	FindWorkerByCode(ctx context.Context, code string) (*models.User, error)
	// ApplyPoints atomically increments the balance and appends the history
	// entry. A non-empty event makes the write idempotent: a second apply
	// with the same event is a no-op. Reports whether the entry was applied.
	ApplyPoints(ctx context.Context, workerID primitive.ObjectID, event string, delta int, reason string) (bool, error)
}

type ComplaintUpdateStore interface {
	Insert(ctx context.Context, u *models.ComplaintUpdate) error
	// ListForComplaint returns entries newest-first.
	ListForComplaint(ctx context.Context, id primitive.ObjectID) ([]models.ComplaintUpdate, error)
}

type TaskUpdateStore interface {
	Insert(ctx context.Context, u *models.TaskUpdate) error
	// ListForTask returns entries newest-first.
	ListForTask(ctx context.Context, id primitive.ObjectID) ([]models.TaskUpdate, error)
}
