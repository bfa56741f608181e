package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintCategory enum
type ComplaintCategory string

const (
	UncollectedWaste   ComplaintCategory = "uncollected-waste"
	OverflowingDustbin ComplaintCategory = "overflowing-dustbin"
	IllegalDumping     ComplaintCategory = "illegal-dumping"
	OtherCategory      ComplaintCategory = "other"
)

func ValidComplaintCategory(s string) bool {
	switch ComplaintCategory(s) {
	case UncollectedWaste, OverflowingDustbin, IllegalDumping, OtherCategory:
		return true
	}
	return false
}

// ComplaintStatus enum
type ComplaintStatus string

const (
	ComplaintPending    ComplaintStatus = "pending"
	ComplaintInProgress ComplaintStatus = "in-progress"
	ComplaintResolved   ComplaintStatus = "resolved"
	ComplaintRejected   ComplaintStatus = "rejected"
)

func ValidComplaintStatus(s string) bool {
	switch ComplaintStatus(s) {
	case ComplaintPending, ComplaintInProgress, ComplaintResolved, ComplaintRejected:
		return true
	}
	return false
}

// Terminal reports whether the status admits no further transitions.
func (s ComplaintStatus) Terminal() bool {
	return s == ComplaintResolved || s == ComplaintRejected
}

// Priority enum, shared by complaints and tasks
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func ValidPriority(s string) bool {
	switch Priority(s) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// ResolutionDetails tracks work progress on a complaint or task. Timestamps
// are stamped once and never rewound; completedAt is refreshed by every
// "after" evidence upload.
type ResolutionDetails struct {
	StartedAt    *time.Time          `bson:"startedAt,omitempty" json:"startedAt,omitempty"`
	CompletedAt  *time.Time          `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	ResolvedAt   *time.Time          `bson:"resolvedAt,omitempty" json:"resolvedAt,omitempty"`
	ResolvedBy   *primitive.ObjectID `bson:"resolvedBy,omitempty" json:"resolvedBy,omitempty"`
	Notes        string              `bson:"notes,omitempty" json:"notes,omitempty"`
	BeforeImages []string            `bson:"beforeImages,omitempty" json:"beforeImages,omitempty"`
	AfterImages  []string            `bson:"afterImages,omitempty" json:"afterImages,omitempty"`
}

// Complaint is a citizen-submitted waste report tracked through the
// pending -> in-progress -> resolved|rejected lifecycle.
type Complaint struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	User        primitive.ObjectID  `bson:"user" json:"user"`
	Title       string              `bson:"title" json:"title"`
	Description string              `bson:"description" json:"description"`
	Category    ComplaintCategory   `bson:"category" json:"category"`
	Priority    Priority            `bson:"priority" json:"priority"`
	Status      ComplaintStatus     `bson:"status" json:"status"`
	Location    string              `bson:"location,omitempty" json:"location,omitempty"`
	Images      []string            `bson:"images,omitempty" json:"images,omitempty"`
	AssignedTo  *primitive.ObjectID `bson:"assignedTo,omitempty" json:"assignedTo,omitempty"`

	ResolutionDetails ResolutionDetails `bson:"resolutionDetails" json:"resolutionDetails"`

	RewardPoints  int  `bson:"rewardPoints" json:"rewardPoints"`
	PenaltyPoints int  `bson:"penaltyPoints" json:"penaltyPoints"`
	PointsAwarded bool `bson:"pointsAwarded" json:"pointsAwarded"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}
