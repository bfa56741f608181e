package services

import (
	"context"
	"fmt"
	"time"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ComplaintService owns the complaint state machine:
// pending -> in-progress -> resolved | rejected. Terminal transitions are
// municipal-only and drive the reward/penalty ledger.
type ComplaintService struct {
	complaints ComplaintStore
	tasks      TaskStore
	users      UserStore
	ledger     *Ledger
	audit      *ComplaintAudit
	taskAudit  *TaskAudit
}

func NewComplaintService(complaints ComplaintStore, tasks TaskStore, users UserStore, ledger *Ledger, audit *ComplaintAudit, taskAudit *TaskAudit) *ComplaintService {
	return &ComplaintService{
		complaints: complaints,
		tasks:      tasks,
		users:      users,
		ledger:     ledger,
		audit:      audit,
		taskAudit:  taskAudit,
	}
}

func parseObjectID(s, what string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, Validationf("invalid %s id", what)
	}
	return id, nil
}

type CreateComplaintInput struct {
	Title       string
	Description string
	Category    string
	Priority    string
	Location    string
	Images      []string
}

// Create files a new complaint with status pending.
func (s *ComplaintService) Create(ctx context.Context, actor Actor, in CreateComplaintInput) (*models.Complaint, error) {
	if actor.Role != models.RoleCitizen && actor.Role != models.RoleMunicipal {
		return nil, Authorizationf("only citizens can file complaints")
	}
	if in.Title == "" {
		return nil, Validationf("title is required")
	}
	if in.Description == "" {
		return nil, Validationf("description is required")
	}
	if !models.ValidComplaintCategory(in.Category) {
		return nil, Validationf("invalid category")
	}
	priority := models.PriorityMedium
	if in.Priority != "" {
		if !models.ValidPriority(in.Priority) {
			return nil, Validationf("invalid priority")
		}
		priority = models.Priority(in.Priority)
	}

	now := time.Now()
	complaint := &models.Complaint{
		ID:          primitive.NewObjectID(),
		User:        actor.ID,
		Title:       in.Title,
		Description: in.Description,
		Category:    models.ComplaintCategory(in.Category),
		Priority:    priority,
		Status:      models.ComplaintPending,
		Location:    in.Location,
		Images:      in.Images,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.complaints.Insert(ctx, complaint); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, complaint.ID, models.ComplaintActionCreated, actor.ID, "", map[string]any{
		"category": string(complaint.Category),
		"priority": string(complaint.Priority),
	})
	return complaint, nil
}

// List returns complaints visible to the actor: citizens see their own,
// workers see assignments, municipal sees all.
func (s *ComplaintService) List(ctx context.Context, actor Actor) ([]models.Complaint, error) {
	filter := ComplaintFilter{}
	switch actor.Role {
	case models.RoleCitizen:
		id := actor.ID
		filter.Reporter = &id
	case models.RoleWorker:
		id := actor.ID
		filter.AssignedTo = &id
	}
	return s.complaints.List(ctx, filter)
}

// Get fetches one complaint, enforcing ownership for citizens and
// assignment for workers.
func (s *ComplaintService) Get(ctx context.Context, actor Actor, idStr string) (*models.Complaint, error) {
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, NotFoundf("complaint not found")
	}
	switch actor.Role {
	case models.RoleCitizen:
		if complaint.User != actor.ID {
			return nil, Authorizationf("not authorized to view this complaint")
		}
	case models.RoleWorker:
		if complaint.AssignedTo == nil || *complaint.AssignedTo != actor.ID {
			return nil, Authorizationf("not authorized to view this complaint")
		}
	}
	return complaint, nil
}

// Assign hands a complaint to a worker, referenced by internal id or public
// worker code, and forces status to in-progress. Reassignment overwrites the
// previous assignee; last writer wins.
func (s *ComplaintService) Assign(ctx context.Context, actor Actor, idStr, workerRef string) (*models.Complaint, error) {
	if actor.Role != models.RoleMunicipal {
		return nil, Authorizationf("only municipal can assign complaints")
	}
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, NotFoundf("complaint not found")
	}

	ref, err := ParseWorkerRef(workerRef)
	if err != nil {
		return nil, err
	}
	worker, err := ResolveWorker(ctx, s.users, ref)
	if err != nil {
		return nil, err
	}

	var startedAt *time.Time
	if complaint.ResolutionDetails.StartedAt == nil {
		now := time.Now()
		startedAt = &now
	}
	if err := s.complaints.Assign(ctx, id, worker.ID, startedAt); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, id, models.ComplaintActionAssigned, actor.ID, "", map[string]any{
		"worker":     worker.ID.Hex(),
		"workerId":   worker.WorkerID,
		"workerName": worker.Name,
	})
	return s.complaints.FindByID(ctx, id)
}

// UpdateStatus handles the non-terminal transition: the assigned worker (or
// municipal) starting work. Terminal statuses go through Resolve/Reject.
func (s *ComplaintService) UpdateStatus(ctx context.Context, actor Actor, idStr, statusStr string) (*models.Complaint, error) {
	if !models.ValidComplaintStatus(statusStr) {
		return nil, Validationf("invalid status")
	}
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, NotFoundf("complaint not found")
	}

	if actor.Role == models.RoleWorker {
		if complaint.AssignedTo == nil || *complaint.AssignedTo != actor.ID {
			return nil, Authorizationf("complaint is not assigned to you")
		}
	}

	target := models.ComplaintStatus(statusStr)
	switch target {
	case models.ComplaintResolved, models.ComplaintRejected:
		if actor.Role != models.RoleMunicipal {
			return nil, Authorizationf("only municipal can finalize a complaint")
		}
		return nil, Validationf("use the resolve or reject operation to finalize")
	case models.ComplaintPending:
		return nil, Validationf("cannot move a complaint back to pending")
	}

	if complaint.Status == models.ComplaintInProgress {
		return complaint, nil
	}
	if complaint.Status.Terminal() {
		return nil, Conflictf("complaint is already %s", complaint.Status)
	}

	var startedAt *time.Time
	if complaint.ResolutionDetails.StartedAt == nil {
		now := time.Now()
		startedAt = &now
	}
	if err := s.complaints.SetStatus(ctx, id, models.ComplaintInProgress, startedAt); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, id, models.ComplaintActionInProgress, actor.ID, "", nil)
	return s.complaints.FindByID(ctx, id)
}

// UploadImages appends evidence URLs to the before or after array. The
// first upload stamps startedAt; every after upload refreshes completedAt.
func (s *ComplaintService) UploadImages(ctx context.Context, actor Actor, idStr string, after bool, urls []string) (*models.Complaint, error) {
	if len(urls) == 0 {
		return nil, Validationf("no images supplied")
	}
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, NotFoundf("complaint not found")
	}

	if actor.Role != models.RoleMunicipal {
		if actor.Role != models.RoleWorker || complaint.AssignedTo == nil || *complaint.AssignedTo != actor.ID {
			return nil, Authorizationf("not authorized to upload images for this complaint")
		}
	}

	now := time.Now()
	var startedAt, completedAt *time.Time
	if complaint.ResolutionDetails.StartedAt == nil {
		startedAt = &now
	}
	if after {
		completedAt = &now
	}
	if err := s.complaints.AppendImages(ctx, id, after, urls, startedAt, completedAt); err != nil {
		return nil, err
	}

	imageType := "before"
	if after {
		imageType = "after"
	}
	s.audit.Record(ctx, id, models.ComplaintActionImagesUploaded, actor.ID, "", map[string]any{
		"count": len(urls),
		"type":  imageType,
	})
	return s.complaints.FindByID(ctx, id)
}

// Resolve finalizes a complaint and rewards the assigned worker at most
// once. The reward is keyed by the complaint id so concurrent resolves
// cannot double-apply it.
func (s *ComplaintService) Resolve(ctx context.Context, actor Actor, idStr string, points int, notes string) (*models.Complaint, error) {
	if actor.Role != models.RoleMunicipal {
		return nil, Authorizationf("only municipal can resolve complaints")
	}
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, NotFoundf("complaint not found")
	}
	if complaint.Status == models.ComplaintRejected {
		return nil, Conflictf("complaint is already rejected")
	}

	now := time.Now()
	patch := FinalizePatch{
		ResolvedAt: now,
		ResolvedBy: actor.ID,
		Notes:      notes,
	}
	// backfill progress stamps if the worker never recorded them
	if complaint.ResolutionDetails.StartedAt == nil {
		patch.StartedAt = &now
	}
	if complaint.ResolutionDetails.CompletedAt == nil {
		patch.CompletedAt = &now
	}
	if err := s.complaints.Finalize(ctx, id, models.ComplaintResolved, patch); err != nil {
		return nil, err
	}

	meta := map[string]any{
		"points":     points,
		"resolvedAt": now,
	}
	if patch.StartedAt != nil {
		meta["startedAt"] = *patch.StartedAt
	} else if complaint.ResolutionDetails.StartedAt != nil {
		meta["startedAt"] = *complaint.ResolutionDetails.StartedAt
	}
	if patch.CompletedAt != nil {
		meta["completedAt"] = *patch.CompletedAt
	} else if complaint.ResolutionDetails.CompletedAt != nil {
		meta["completedAt"] = *complaint.ResolutionDetails.CompletedAt
	}

	if complaint.AssignedTo != nil && points > 0 {
		workerID := *complaint.AssignedTo
		event := fmt.Sprintf("complaint:%s:reward", id.Hex())
		reason := fmt.Sprintf("Reward for resolving complaint %s", id.Hex())
		if _, err := s.ledger.ApplyOnce(ctx, event, workerID, points, reason); err != nil {
			return nil, err
		}
		if _, err := s.complaints.MarkRewarded(ctx, id, points); err != nil {
			return nil, err
		}

		meta["worker"] = workerID.Hex()
		if worker, err := s.users.FindByID(ctx, workerID); err == nil && worker != nil {
			meta["workerId"] = worker.WorkerID
			meta["workerName"] = worker.Name
		}
	}

	s.audit.Record(ctx, id, models.ComplaintActionResolved, actor.ID, notes, meta)
	return s.complaints.FindByID(ctx, id)
}

type RejectComplaintInput struct {
	Notes         string
	WorkerRef     string
	PenaltyPoints int
	CreateTask    bool
}

// defaultPenaltyPoints applies when a reject request supplies no positive
// penalty amount.
const defaultPenaltyPoints = 10

// Reject finalizes a complaint as rejected, penalizes the targeted worker
// (explicit reference, else the assignee) and optionally spawns a follow-up
// task seeded from the complaint. With no resolvable target the ledger is
// left untouched.
func (s *ComplaintService) Reject(ctx context.Context, actor Actor, idStr string, in RejectComplaintInput) (*models.Complaint, *models.Task, error) {
	if actor.Role != models.RoleMunicipal {
		return nil, nil, Authorizationf("only municipal can reject complaints")
	}
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if complaint == nil {
		return nil, nil, NotFoundf("complaint not found")
	}
	if complaint.Status.Terminal() {
		return nil, nil, Conflictf("complaint is already %s", complaint.Status)
	}

	now := time.Now()
	patch := FinalizePatch{
		ResolvedAt: now,
		ResolvedBy: actor.ID,
		Notes:      in.Notes,
	}
	if err := s.complaints.Finalize(ctx, id, models.ComplaintRejected, patch); err != nil {
		return nil, nil, err
	}
	s.audit.Record(ctx, id, models.ComplaintActionRejected, actor.ID, in.Notes, nil)

	var target *models.User
	if in.WorkerRef != "" {
		ref, err := ParseWorkerRef(in.WorkerRef)
		if err != nil {
			return nil, nil, err
		}
		target, err = ResolveWorker(ctx, s.users, ref)
		if err != nil {
			return nil, nil, err
		}
	} else if complaint.AssignedTo != nil {
		target, err = s.users.FindByID(ctx, *complaint.AssignedTo)
		if err != nil {
			return nil, nil, err
		}
	}

	if target != nil {
		penalty := in.PenaltyPoints
		if penalty <= 0 {
			penalty = defaultPenaltyPoints
		}
		event := fmt.Sprintf("complaint:%s:penalty", id.Hex())
		reason := fmt.Sprintf("Penalty for complaint %s rejection", id.Hex())
		if _, err := s.ledger.ApplyOnce(ctx, event, target.ID, -penalty, reason); err != nil {
			return nil, nil, err
		}
		if err := s.complaints.SetPenalty(ctx, id, penalty); err != nil {
			return nil, nil, err
		}

		label := target.WorkerID
		if label == "" {
			label = target.ID.Hex()
		}
		s.audit.Record(ctx, id, models.ComplaintActionNote, actor.ID,
			fmt.Sprintf("Penalty applied: -%d to worker %s", penalty, label),
			map[string]any{"penalty": penalty, "worker": target.ID.Hex()})
	}

	var followUp *models.Task
	if in.CreateTask && target != nil {
		description := in.Notes
		if description == "" {
			description = fmt.Sprintf("Handle rejected complaint %s", id.Hex())
		}
		workerID := target.ID
		followUp = &models.Task{
			ID:               primitive.NewObjectID(),
			Title:            "Follow-up: " + complaint.Title,
			Description:      description,
			CreatedBy:        actor.ID,
			AssignedTo:       &workerID,
			RelatedComplaint: &id,
			Status:           models.TaskAssigned,
			Priority:         complaint.Priority,
			Location:         complaint.Location,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		if err := s.tasks.Insert(ctx, followUp); err != nil {
			return nil, nil, err
		}
		s.audit.Record(ctx, id, models.ComplaintActionTaskCreated, actor.ID,
			fmt.Sprintf("Task %s created", followUp.ID.Hex()),
			map[string]any{"taskId": followUp.ID.Hex()})
		s.taskAudit.Record(ctx, followUp.ID, models.TaskActionCreated, actor.ID, "", map[string]any{
			"assignee":         workerID.Hex(),
			"relatedComplaint": id.Hex(),
		})
	}

	complaint, err = s.complaints.FindByID(ctx, id)
	return complaint, followUp, err
}

// Trail lists a complaint's audit entries newest-first. Municipal always,
// the assigned worker, and the reporting citizen may read it.
func (s *ComplaintService) Trail(ctx context.Context, actor Actor, idStr string) ([]models.ComplaintUpdate, error) {
	id, err := parseObjectID(idStr, "complaint")
	if err != nil {
		return nil, err
	}
	complaint, err := s.complaints.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if complaint == nil {
		return nil, NotFoundf("complaint not found")
	}

	allowed := actor.Role == models.RoleMunicipal ||
		(actor.Role == models.RoleWorker && complaint.AssignedTo != nil && *complaint.AssignedTo == actor.ID) ||
		(actor.Role == models.RoleCitizen && complaint.User == actor.ID)
	if !allowed {
		return nil, Authorizationf("not authorized to view this complaint's history")
	}

	return s.audit.Trail(ctx, id)
}
