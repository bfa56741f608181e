package services

import (
	"context"
	"log"
	"time"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Audit writes are best-effort: a failed insert is logged and never rolls
// back or blocks the primary lifecycle mutation.

type ComplaintAudit struct {
	store ComplaintUpdateStore
}

func NewComplaintAudit(store ComplaintUpdateStore) *ComplaintAudit {
	return &ComplaintAudit{store: store}
}

// Record appends one immutable entry to a complaint's trail.
func (a *ComplaintAudit) Record(ctx context.Context, complaintID primitive.ObjectID, action models.ComplaintAction, by primitive.ObjectID, notes string, meta map[string]any) {
	entry := &models.ComplaintUpdate{
		Complaint: complaintID,
		Action:    action,
		By:        by,
		Notes:     notes,
		Meta:      meta,
		CreatedAt: time.Now(),
	}
	if err := a.store.Insert(ctx, entry); err != nil {
		log.Printf("complaint audit write failed (complaint=%s action=%s): %v", complaintID.Hex(), action, err)
	}
}

// Trail returns a complaint's entries newest-first.
func (a *ComplaintAudit) Trail(ctx context.Context, complaintID primitive.ObjectID) ([]models.ComplaintUpdate, error) {
	return a.store.ListForComplaint(ctx, complaintID)
}

type TaskAudit struct {
	store TaskUpdateStore
}

func NewTaskAudit(store TaskUpdateStore) *TaskAudit {
	return &TaskAudit{store: store}
}

// Record appends one immutable entry to a task's trail.
func (a *TaskAudit) Record(ctx context.Context, taskID primitive.ObjectID, action models.TaskAction, by primitive.ObjectID, notes string, meta map[string]any) {
	entry := &models.TaskUpdate{
		Task:      taskID,
		Action:    action,
		By:        by,
		Notes:     notes,
		Meta:      meta,
		CreatedAt: time.Now(),
	}
	if err := a.store.Insert(ctx, entry); err != nil {
		log.Printf("task audit write failed (task=%s action=%s): %v", taskID.Hex(), action, err)
	}
}

// Trail returns a task's entries newest-first.
func (a *TaskAudit) Trail(ctx context.Context, taskID primitive.ObjectID) ([]models.TaskUpdate, error) {
	return a.store.ListForTask(ctx, taskID)
}
