package services

import (
	"context"
	"fmt"
	"time"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TaskService owns the task state machine:
// pending -> assigned -> in-progress -> completed, with cancelled terminal
// from any non-completed state and approval archiving the task.
type TaskService struct {
	tasks  TaskStore
	users  UserStore
	ledger *Ledger
	audit  *TaskAudit
}

func NewTaskService(tasks TaskStore, users UserStore, ledger *Ledger, audit *TaskAudit) *TaskService {
	return &TaskService{tasks: tasks, users: users, ledger: ledger, audit: audit}
}

type CreateTaskInput struct {
	Title            string
	Description      string
	Priority         string
	Location         string
	DueDate          *time.Time
	WorkerRef        string
	RelatedComplaint string
	RewardPoints     int
}

// Create opens a new task, optionally pre-assigned to a worker referenced by
// internal id or public worker code.
func (s *TaskService) Create(ctx context.Context, actor Actor, in CreateTaskInput) (*models.Task, error) {
	if actor.Role != models.RoleMunicipal {
		return nil, Authorizationf("only municipal can create tasks")
	}
	if in.Title == "" {
		return nil, Validationf("title is required")
	}
	priority := models.PriorityMedium
	if in.Priority != "" {
		if !models.ValidPriority(in.Priority) {
			return nil, Validationf("invalid priority")
		}
		priority = models.Priority(in.Priority)
	}

	now := time.Now()
	task := &models.Task{
		ID:           primitive.NewObjectID(),
		Title:        in.Title,
		Description:  in.Description,
		CreatedBy:    actor.ID,
		Status:       models.TaskPending,
		Priority:     priority,
		Location:     in.Location,
		DueDate:      in.DueDate,
		RewardPoints: in.RewardPoints,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if in.RelatedComplaint != "" {
		complaintID, err := parseObjectID(in.RelatedComplaint, "complaint")
		if err != nil {
			return nil, err
		}
		task.RelatedComplaint = &complaintID
	}

	meta := map[string]any{"priority": string(priority)}
	if in.WorkerRef != "" {
		ref, err := ParseWorkerRef(in.WorkerRef)
		if err != nil {
			return nil, err
		}
		worker, err := ResolveWorker(ctx, s.users, ref)
		if err != nil {
			return nil, err
		}
		workerID := worker.ID
		task.AssignedTo = &workerID
		task.Status = models.TaskAssigned
		meta["assignee"] = workerID.Hex()
		meta["workerId"] = worker.WorkerID
	}

	if err := s.tasks.Insert(ctx, task); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, task.ID, models.TaskActionCreated, actor.ID, "", meta)
	return task, nil
}

// List returns tasks visible to the actor. Archived tasks are excluded
// unless explicitly requested.
func (s *TaskService) List(ctx context.Context, actor Actor, includeArchived bool) ([]models.Task, error) {
	filter := TaskFilter{IncludeArchived: includeArchived}
	switch actor.Role {
	case models.RoleWorker:
		id := actor.ID
		filter.AssignedTo = &id
	case models.RoleCitizen:
		id := actor.ID
		filter.CreatedBy = &id
	}
	return s.tasks.List(ctx, filter)
}

// Get fetches one task; workers only see their own assignments.
func (s *TaskService) Get(ctx context.Context, actor Actor, idStr string) (*models.Task, error) {
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task not found")
	}
	if actor.Role == models.RoleWorker {
		if task.AssignedTo == nil || *task.AssignedTo != actor.ID {
			return nil, Authorizationf("task is not assigned to you")
		}
	}
	return task, nil
}

// Assign hands a task to a worker and moves it to assigned.
func (s *TaskService) Assign(ctx context.Context, actor Actor, idStr, workerRef string) (*models.Task, error) {
	if actor.Role != models.RoleMunicipal {
		return nil, Authorizationf("only municipal can assign tasks")
	}
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task not found")
	}
	if task.Archived {
		return nil, Conflictf("task is archived")
	}

	ref, err := ParseWorkerRef(workerRef)
	if err != nil {
		return nil, err
	}
	worker, err := ResolveWorker(ctx, s.users, ref)
	if err != nil {
		return nil, err
	}

	if err := s.tasks.Assign(ctx, id, worker.ID); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, id, models.TaskActionAssigned, actor.ID, "", map[string]any{
		"worker":     worker.ID.Hex(),
		"workerId":   worker.WorkerID,
		"workerName": worker.Name,
	})
	return s.tasks.FindByID(ctx, id)
}

// UpdateStatus advances the task machine. Entering in-progress stamps
// startedAt; entering completed stamps both completion timestamps; leaving
// completed for a non-terminal status clears completedAt.
func (s *TaskService) UpdateStatus(ctx context.Context, actor Actor, idStr, statusStr string) (*models.Task, error) {
	if !models.ValidTaskStatus(statusStr) {
		return nil, Validationf("invalid status")
	}
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task not found")
	}

	if actor.Role == models.RoleWorker {
		if task.AssignedTo == nil || *task.AssignedTo != actor.ID {
			return nil, Authorizationf("task is not assigned to you")
		}
	}
	if task.Archived {
		return nil, Conflictf("task is archived")
	}

	target := models.TaskStatus(statusStr)
	if target == task.Status {
		return task, nil
	}

	now := time.Now()
	var startedAt, completedAt *time.Time
	clearCompleted := false
	var action models.TaskAction

	switch target {
	case models.TaskPending, models.TaskAssigned:
		return nil, Validationf("use the assign operation to change the assignee")
	case models.TaskInProgress:
		if task.Status != models.TaskAssigned && task.Status != models.TaskCompleted {
			return nil, Conflictf("cannot start a %s task", task.Status)
		}
		if task.Status == models.TaskCompleted {
			// reopening clears the completion stamp
			clearCompleted = true
		}
		if task.ResolutionDetails.StartedAt == nil {
			startedAt = &now
		}
		action = models.TaskActionInProgress
	case models.TaskCompleted:
		if task.Status != models.TaskInProgress {
			return nil, Conflictf("cannot complete a %s task", task.Status)
		}
		completedAt = &now
		action = models.TaskActionCompleted
	case models.TaskCancelled:
		if task.Status == models.TaskCompleted {
			return nil, Conflictf("cannot cancel a completed task")
		}
		action = models.TaskActionCancelled
	}

	if err := s.tasks.SetStatus(ctx, id, target, startedAt, completedAt, clearCompleted); err != nil {
		return nil, err
	}
	s.audit.Record(ctx, id, action, actor.ID, "", nil)
	return s.tasks.FindByID(ctx, id)
}

// UploadImages appends evidence URLs with the same before/after semantics as
// complaints.
func (s *TaskService) UploadImages(ctx context.Context, actor Actor, idStr string, after bool, urls []string) (*models.Task, error) {
	if len(urls) == 0 {
		return nil, Validationf("no images supplied")
	}
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task not found")
	}

	if actor.Role != models.RoleMunicipal {
		if actor.Role != models.RoleWorker || task.AssignedTo == nil || *task.AssignedTo != actor.ID {
			return nil, Authorizationf("not authorized to upload images for this task")
		}
	}
	if task.Archived {
		return nil, Conflictf("task is archived")
	}

	now := time.Now()
	var startedAt, completedAt *time.Time
	if task.ResolutionDetails.StartedAt == nil {
		startedAt = &now
	}
	if after {
		completedAt = &now
	}
	if err := s.tasks.AppendImages(ctx, id, after, urls, startedAt, completedAt); err != nil {
		return nil, err
	}

	imageType := "before"
	if after {
		imageType = "after"
	}
	s.audit.Record(ctx, id, models.TaskActionImagesUploaded, actor.ID, "", map[string]any{
		"count": len(urls),
		"type":  imageType,
	})
	return s.tasks.FindByID(ctx, id)
}

// Approve is the terminal municipal sign-off: forces completed, stamps the
// approval fields, archives the task and rewards the assignee at most once.
func (s *TaskService) Approve(ctx context.Context, actor Actor, idStr string, points int, notes string) (*models.Task, error) {
	if actor.Role != models.RoleMunicipal {
		return nil, Authorizationf("only municipal can approve tasks")
	}
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task not found")
	}

	now := time.Now()
	completedAt := now
	if task.CompletedAt != nil {
		completedAt = *task.CompletedAt
	}
	won, err := s.tasks.Approve(ctx, id, ApprovalPatch{
		ApprovedAt:  now,
		ApprovedBy:  actor.ID,
		CompletedAt: completedAt,
	})
	if err != nil {
		return nil, err
	}
	if !won {
		return nil, Conflictf("task is already approved")
	}

	meta := map[string]any{"points": points}
	if task.AssignedTo != nil && points > 0 {
		workerID := *task.AssignedTo
		event := fmt.Sprintf("task:%s:reward", id.Hex())
		reason := fmt.Sprintf("Reward for completing task %s", id.Hex())
		if _, err := s.ledger.ApplyOnce(ctx, event, workerID, points, reason); err != nil {
			return nil, err
		}
		if _, err := s.tasks.MarkRewarded(ctx, id, points); err != nil {
			return nil, err
		}
		meta["worker"] = workerID.Hex()
	}

	s.audit.Record(ctx, id, models.TaskActionApproved, actor.ID, notes, meta)
	return s.tasks.FindByID(ctx, id)
}

// Delete removes a task. Its audit trail is left in place as history.
func (s *TaskService) Delete(ctx context.Context, actor Actor, idStr string) error {
	if actor.Role != models.RoleMunicipal {
		return Authorizationf("only municipal can delete tasks")
	}
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if task == nil {
		return NotFoundf("task not found")
	}
	return s.tasks.Delete(ctx, id)
}

// Trail lists a task's audit entries newest-first, visible to municipal and
// the assigned worker.
func (s *TaskService) Trail(ctx context.Context, actor Actor, idStr string) ([]models.TaskUpdate, error) {
	id, err := parseObjectID(idStr, "task")
	if err != nil {
		return nil, err
	}
	task, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, NotFoundf("task not found")
	}

	allowed := actor.Role == models.RoleMunicipal ||
		(actor.Role == models.RoleWorker && task.AssignedTo != nil && *task.AssignedTo == actor.ID)
	if !allowed {
		return nil, Authorizationf("not authorized to view this task's history")
	}

	return s.audit.Trail(ctx, id)
}
