package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskStatus enum
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskAssigned   TaskStatus = "assigned"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
	TaskCancelled  TaskStatus = "cancelled"
)

func ValidTaskStatus(s string) bool {
	switch TaskStatus(s) {
	case TaskPending, TaskAssigned, TaskInProgress, TaskCompleted, TaskCancelled:
		return true
	}
	return false
}

// Task is a municipal-created unit of work, optionally linked to a complaint.
// Approved tasks are archived and drop out of default listings.
type Task struct {
	ID               primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Title            string              `bson:"title" json:"title"`
	Description      string              `bson:"description,omitempty" json:"description,omitempty"`
	CreatedBy        primitive.ObjectID  `bson:"createdBy" json:"createdBy"`
	AssignedTo       *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`
	RelatedComplaint *primitive.ObjectID `bson:"relatedComplaint,omitempty" json:"relatedComplaint,omitempty"`
	Status           TaskStatus          `bson:"status" json:"status"`
	Priority         Priority            `bson:"priority" json:"priority"`
	Location         string              `bson:"location,omitempty" json:"location,omitempty"`
	DueDate          *time.Time          `bson:"dueDate,omitempty" json:"dueDate,omitempty"`
	CompletedAt      *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`

	ResolutionDetails ResolutionDetails `bson:"resolutionDetails" json:"resolutionDetails"`

	Approved   bool                `bson:"approved" json:"approved"`
	ApprovedAt *time.Time          `bson:"approvedAt,omitempty" json:"approvedAt,omitempty"`
	ApprovedBy *primitive.ObjectID `bson:"approvedBy,omitempty" json:"approvedBy,omitempty"`
	Archived   bool                `bson:"archived" json:"archived"`

	RewardPoints  int  `bson:"rewardPoints" json:"rewardPoints"`
	PenaltyPoints int  `bson:"penaltyPoints" json:"penaltyPoints"`
	PointsAwarded bool `bson:"pointsAwarded" json:"pointsAwarded"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
