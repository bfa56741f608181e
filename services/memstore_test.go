package services

import (
	"context"
	"sort"
	"sync"
	"time"

	"wastetrack-be/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// In-memory store fakes so the lifecycle engines can be tested without a
// running MongoDB. They mirror the write semantics of the mongo-backed
// implementations, including the conditional updates.

type memUsers struct {
	mu    sync.Mutex
	users map[primitive.ObjectID]*models.User
}

func newMemUsers() *memUsers {
	return &memUsers{users: map[primitive.ObjectID]*models.User{}}
}

func (m *memUsers) add(u models.User) *models.User {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	u.WorkerID = models.NormalizeWorkerCode(u.WorkerID)
	stored := u
	m.users[u.ID] = &stored
	return &stored
}

func (m *memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) FindWorkerByCode(_ context.Context, code string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Role == models.RoleWorker && u.WorkerID == code {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (m *memUsers) ApplyPoints(_ context.Context, workerID primitive.ObjectID, event string, delta int, reason string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[workerID]
	if !ok {
		return false, nil
	}
	if event != "" {
		for _, e := range u.PointsHistory {
			if e.Event == event {
				return false, nil
			}
		}
	}
	u.Points += delta
	u.PointsHistory = append(u.PointsHistory, models.PointEntry{
		Points: delta,
		Reason: reason,
		Event:  event,
		Date:   time.Now(),
	})
	u.UpdatedAt = time.Now()
	return true, nil
}

type memComplaints struct {
	mu         sync.Mutex
	complaints map[primitive.ObjectID]*models.Complaint
}

func newMemComplaints() *memComplaints {
	return &memComplaints{complaints: map[primitive.ObjectID]*models.Complaint{}}
}

func (m *memComplaints) Insert(_ context.Context, c *models.Complaint) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	stored := *c
	m.complaints[c.ID] = &stored
	return nil
}

func (m *memComplaints) FindByID(_ context.Context, id primitive.ObjectID) (*models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.complaints[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (m *memComplaints) List(_ context.Context, filter ComplaintFilter) ([]models.Complaint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Complaint
	for _, c := range m.complaints {
		if filter.Reporter != nil && c.User != *filter.Reporter {
			continue
		}
		if filter.AssignedTo != nil && (c.AssignedTo == nil || *c.AssignedTo != *filter.AssignedTo) {
			continue
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memComplaints) Assign(_ context.Context, id, worker primitive.ObjectID, startedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.complaints[id]
	w := worker
	c.AssignedTo = &w
	c.Status = models.ComplaintInProgress
	if startedAt != nil {
		c.ResolutionDetails.StartedAt = startedAt
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memComplaints) SetStatus(_ context.Context, id primitive.ObjectID, status models.ComplaintStatus, startedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.complaints[id]
	c.Status = status
	if startedAt != nil {
		c.ResolutionDetails.StartedAt = startedAt
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memComplaints) AppendImages(_ context.Context, id primitive.ObjectID, after bool, urls []string, startedAt, completedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.complaints[id]
	if after {
		c.ResolutionDetails.AfterImages = append(c.ResolutionDetails.AfterImages, urls...)
	} else {
		c.ResolutionDetails.BeforeImages = append(c.ResolutionDetails.BeforeImages, urls...)
	}
	if startedAt != nil {
		c.ResolutionDetails.StartedAt = startedAt
	}
	if completedAt != nil {
		c.ResolutionDetails.CompletedAt = completedAt
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memComplaints) Finalize(_ context.Context, id primitive.ObjectID, status models.ComplaintStatus, patch FinalizePatch) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.complaints[id]
	c.Status = status
	resolvedAt := patch.ResolvedAt
	resolvedBy := patch.ResolvedBy
	c.ResolutionDetails.ResolvedAt = &resolvedAt
	c.ResolutionDetails.ResolvedBy = &resolvedBy
	c.ResolutionDetails.Notes = patch.Notes
	if patch.StartedAt != nil {
		c.ResolutionDetails.StartedAt = patch.StartedAt
	}
	if patch.CompletedAt != nil {
		c.ResolutionDetails.CompletedAt = patch.CompletedAt
	}
	c.UpdatedAt = time.Now()
	return nil
}

func (m *memComplaints) MarkRewarded(_ context.Context, id primitive.ObjectID, points int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.complaints[id]
	if c.PointsAwarded {
		return false, nil
	}
	c.PointsAwarded = true
	c.RewardPoints = points
	c.UpdatedAt = time.Now()
	return true, nil
}

func (m *memComplaints) SetPenalty(_ context.Context, id primitive.ObjectID, points int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := m.complaints[id]
	c.PenaltyPoints = points
	c.UpdatedAt = time.Now()
	return nil
}

type memTasks struct {
	mu    sync.Mutex
	tasks map[primitive.ObjectID]*models.Task
}

func newMemTasks() *memTasks {
	return &memTasks{tasks: map[primitive.ObjectID]*models.Task{}}
}

func (m *memTasks) Insert(_ context.Context, t *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.ID.IsZero() {
		t.ID = primitive.NewObjectID()
	}
	stored := *t
	m.tasks[t.ID] = &stored
	return nil
}

func (m *memTasks) FindByID(_ context.Context, id primitive.ObjectID) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, nil
	}
	cp := *t
	return &cp, nil
}

func (m *memTasks) List(_ context.Context, filter TaskFilter) ([]models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Task
	for _, t := range m.tasks {
		if !filter.IncludeArchived && t.Archived {
			continue
		}
		if filter.AssignedTo != nil && (t.AssignedTo == nil || *t.AssignedTo != *filter.AssignedTo) {
			continue
		}
		if filter.CreatedBy != nil && t.CreatedBy != *filter.CreatedBy {
			continue
		}
		if filter.RelatedComplaint != nil && (t.RelatedComplaint == nil || *t.RelatedComplaint != *filter.RelatedComplaint) {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (m *memTasks) Assign(_ context.Context, id, worker primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tasks[id]
	w := worker
	t.AssignedTo = &w
	t.Status = models.TaskAssigned
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memTasks) SetStatus(_ context.Context, id primitive.ObjectID, status models.TaskStatus, startedAt, completedAt *time.Time, clearCompleted bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tasks[id]
	t.Status = status
	if startedAt != nil {
		t.ResolutionDetails.StartedAt = startedAt
	}
	if completedAt != nil {
		t.CompletedAt = completedAt
		t.ResolutionDetails.CompletedAt = completedAt
	}
	if clearCompleted {
		t.CompletedAt = nil
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memTasks) AppendImages(_ context.Context, id primitive.ObjectID, after bool, urls []string, startedAt, completedAt *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tasks[id]
	if after {
		t.ResolutionDetails.AfterImages = append(t.ResolutionDetails.AfterImages, urls...)
	} else {
		t.ResolutionDetails.BeforeImages = append(t.ResolutionDetails.BeforeImages, urls...)
	}
	if startedAt != nil {
		t.ResolutionDetails.StartedAt = startedAt
	}
	if completedAt != nil {
		t.ResolutionDetails.CompletedAt = completedAt
	}
	t.UpdatedAt = time.Now()
	return nil
}

func (m *memTasks) Approve(_ context.Context, id primitive.ObjectID, patch ApprovalPatch) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tasks[id]
	if t.Approved {
		return false, nil
	}
	approvedAt := patch.ApprovedAt
	approvedBy := patch.ApprovedBy
	completedAt := patch.CompletedAt
	t.Approved = true
	t.ApprovedAt = &approvedAt
	t.ApprovedBy = &approvedBy
	t.Archived = true
	t.Status = models.TaskCompleted
	t.CompletedAt = &completedAt
	t.ResolutionDetails.CompletedAt = &completedAt
	t.UpdatedAt = time.Now()
	return true, nil
}

func (m *memTasks) MarkRewarded(_ context.Context, id primitive.ObjectID, points int) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := m.tasks[id]
	if t.PointsAwarded {
		return false, nil
	}
	t.PointsAwarded = true
	t.RewardPoints = points
	t.UpdatedAt = time.Now()
	return true, nil
}

func (m *memTasks) Delete(_ context.Context, id primitive.ObjectID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tasks, id)
	return nil
}

type memComplaintUpdates struct {
	mu      sync.Mutex
	entries []models.ComplaintUpdate
}

func newMemComplaintUpdates() *memComplaintUpdates {
	return &memComplaintUpdates{}
}

func (m *memComplaintUpdates) Insert(_ context.Context, u *models.ComplaintUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.entries = append(m.entries, *u)
	return nil
}

func (m *memComplaintUpdates) ListForComplaint(_ context.Context, id primitive.ObjectID) ([]models.ComplaintUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ComplaintUpdate
	// entries are appended in order; reverse for newest-first
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Complaint == id {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

type memTaskUpdates struct {
	mu      sync.Mutex
	entries []models.TaskUpdate
}

func newMemTaskUpdates() *memTaskUpdates {
	return &memTaskUpdates{}
}

func (m *memTaskUpdates) Insert(_ context.Context, u *models.TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	m.entries = append(m.entries, *u)
	return nil
}

func (m *memTaskUpdates) ListForTask(_ context.Context, id primitive.ObjectID) ([]models.TaskUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.TaskUpdate
	for i := len(m.entries) - 1; i >= 0; i-- {
		if m.entries[i].Task == id {
			out = append(out, m.entries[i])
		}
	}
	return out, nil
}

// fixture bundles the fakes and wired services used by the engine tests.
type fixture struct {
	users            *memUsers
	complaints       *memComplaints
	tasks            *memTasks
	complaintUpdates *memComplaintUpdates
	taskUpdates      *memTaskUpdates

	ledger           *Ledger
	complaintService *ComplaintService
	taskService      *TaskService
}

func newFixture() *fixture {
	f := &fixture{
		users:            newMemUsers(),
		complaints:       newMemComplaints(),
		tasks:            newMemTasks(),
		complaintUpdates: newMemComplaintUpdates(),
		taskUpdates:      newMemTaskUpdates(),
	}
	f.ledger = NewLedger(f.users)
	complaintAudit := NewComplaintAudit(f.complaintUpdates)
	taskAudit := NewTaskAudit(f.taskUpdates)
	f.complaintService = NewComplaintService(f.complaints, f.tasks, f.users, f.ledger, complaintAudit, taskAudit)
	f.taskService = NewTaskService(f.tasks, f.users, f.ledger, taskAudit)
	return f
}

func (f *fixture) addWorker(name, code string) *models.User {
	return f.users.add(models.User{
		Name:     name,
		Email:    name + "@example.com",
		Role:     models.RoleWorker,
		WorkerID: code,
		IsActive: true,
	})
}

func (f *fixture) addCitizen(name string) *models.User {
	return f.users.add(models.User{
		Name:     name,
		Email:    name + "@example.com",
		Role:     models.RoleCitizen,
		IsActive: true,
	})
}

func (f *fixture) addMunicipal(name string) *models.User {
	return f.users.add(models.User{
		Name:     name,
		Email:    name + "@example.com",
		Role:     models.RoleMunicipal,
		IsActive: true,
	})
}

func actorFor(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role}
}
