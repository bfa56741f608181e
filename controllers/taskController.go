package controllers

import (
	"net/http"
	"time"

	"wastetrack-be/services"
	authUtils "wastetrack-be/utils"

	"github.com/gin-gonic/gin"
)

// TaskController exposes the task lifecycle over HTTP.
type TaskController struct {
	tasks    *services.TaskService
	evidence authUtils.EvidenceStorage
}

func NewTaskController(tasks *services.TaskService, evidence authUtils.EvidenceStorage) *TaskController {
	return &TaskController{tasks: tasks, evidence: evidence}
}

// CreateTask opens a new municipal task, optionally pre-assigned
func (tc *TaskController) CreateTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Title            string     `json:"title" binding:"required,max=200"`
		Description      string     `json:"description" binding:"max=1000"`
		Priority         string     `json:"priority"`
		Location         string     `json:"location" binding:"max=200"`
		DueDate          *time.Time `json:"dueDate"`
		AssignedTo       string     `json:"assignedTo"`
		RelatedComplaint string     `json:"relatedComplaint"`
		RewardPoints     int        `json:"rewardPoints"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	task, err := tc.tasks.Create(ctx, actor, services.CreateTaskInput{
		Title:            input.Title,
		Description:      input.Description,
		Priority:         input.Priority,
		Location:         input.Location,
		DueDate:          input.DueDate,
		WorkerRef:        input.AssignedTo,
		RelatedComplaint: input.RelatedComplaint,
		RewardPoints:     input.RewardPoints,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, task)
}

// GetTasks lists tasks visible to the caller. Archived tasks only appear
// with includeArchived=true.
func (tc *TaskController) GetTasks(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	includeArchived := c.Query("includeArchived") == "true"

	ctx, cancel := requestContext()
	defer cancel()

	tasks, err := tc.tasks.List(ctx, actor, includeArchived)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(tasks), "tasks": tasks})
}

// GetTask retrieves a single task by its ID
func (tc *TaskController) GetTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	task, err := tc.tasks.Get(ctx, actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// AssignTask hands a task to a worker referenced by internal id or public
// worker code
func (tc *TaskController) AssignTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		WorkerID string `json:"workerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	task, err := tc.tasks.Assign(ctx, actor, c.Param("id"), input.WorkerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UpdateTaskStatus advances the task state machine
func (tc *TaskController) UpdateTaskStatus(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	task, err := tc.tasks.UpdateStatus(ctx, actor, c.Param("id"), input.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// UploadTaskImages appends before/after evidence images to a task
func (tc *TaskController) UploadTaskImages(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	urls, err := saveEvidence(c, tc.evidence)
	if err != nil {
		abortWithError(c, err)
		return
	}
	after := c.Query("type") == "after"

	ctx, cancel := requestContext()
	defer cancel()

	task, err := tc.tasks.UploadImages(ctx, actor, c.Param("id"), after, urls)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// ApproveTask is the terminal municipal sign-off that archives the task
func (tc *TaskController) ApproveTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Points int    `json:"points"`
		Notes  string `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	task, err := tc.tasks.Approve(ctx, actor, c.Param("id"), input.Points, input.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, task)
}

// DeleteTask removes a task; its audit trail is kept as history
func (tc *TaskController) DeleteTask(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := tc.tasks.Delete(ctx, actor, c.Param("id")); err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Task deleted successfully"})
}

// GetTaskUpdates lists a task's audit trail newest-first
func (tc *TaskController) GetTaskUpdates(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	updates, err := tc.tasks.Trail(ctx, actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(updates), "updates": updates})
}
