package controllers

import (
	"net/http"
	"strings"

	"wastetrack-be/services"
	authUtils "wastetrack-be/utils"

	"github.com/gin-gonic/gin"
)

// ComplaintController exposes the complaint lifecycle over HTTP.
type ComplaintController struct {
	complaints *services.ComplaintService
	evidence   authUtils.EvidenceStorage
}

func NewComplaintController(complaints *services.ComplaintService, evidence authUtils.EvidenceStorage) *ComplaintController {
	return &ComplaintController{complaints: complaints, evidence: evidence}
}

// CreateComplaint handles the creation of a new complaint. Accepts JSON or
// multipart form data with optional evidence images.
func (cc *ComplaintController) CreateComplaint(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Title       string `json:"title" form:"title" binding:"required,max=200"`
		Description string `json:"description" form:"description" binding:"required,max=1000"`
		Category    string `json:"category" form:"category" binding:"required"`
		Priority    string `json:"priority" form:"priority"`
		Location    string `json:"location" form:"location" binding:"max=200"`
	}

	var images []string
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		urls, err := saveEvidence(c, cc.evidence)
		if err != nil {
			abortWithError(c, err)
			return
		}
		images = urls
	} else {
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	ctx, cancel := requestContext()
	defer cancel()

	complaint, err := cc.complaints.Create(ctx, actor, services.CreateComplaintInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Priority:    input.Priority,
		Location:    input.Location,
		Images:      images,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, complaint)
}

// GetComplaints lists complaints visible to the caller's role
func (cc *ComplaintController) GetComplaints(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	complaints, err := cc.complaints.List(ctx, actor)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(complaints), "complaints": complaints})
}

// GetComplaint retrieves a single complaint by its ID
func (cc *ComplaintController) GetComplaint(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	complaint, err := cc.complaints.Get(ctx, actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// AssignComplaint hands a complaint to a worker referenced by internal id or
// public worker code
func (cc *ComplaintController) AssignComplaint(c *gin.Context) {
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

	complaint, err := cc.complaints.Assign(ctx, actor, c.Param("id"), input.WorkerID)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// UpdateComplaintStatus lets the assigned worker (or municipal) start work
func (cc *ComplaintController) UpdateComplaintStatus(c *gin.Context) {
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

	complaint, err := cc.complaints.UpdateStatus(ctx, actor, c.Param("id"), input.Status)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// UploadComplaintImages appends before/after evidence images. The type
// query parameter selects the array; it defaults to before.
func (cc *ComplaintController) UploadComplaintImages(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	urls, err := saveEvidence(c, cc.evidence)
	if err != nil {
		abortWithError(c, err)
		return
	}
	after := c.Query("type") == "after"

	ctx, cancel := requestContext()
	defer cancel()

	complaint, err := cc.complaints.UploadImages(ctx, actor, c.Param("id"), after, urls)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// ResolveComplaint finalizes a complaint and optionally rewards the worker
func (cc *ComplaintController) ResolveComplaint(c *gin.Context) {
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

	complaint, err := cc.complaints.Resolve(ctx, actor, c.Param("id"), input.Points, input.Notes)
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, complaint)
}

// RejectComplaint finalizes a complaint as rejected, applies the penalty and
// optionally spawns a follow-up task
func (cc *ComplaintController) RejectComplaint(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	var input struct {
		Notes         string `json:"notes"`
		WorkerID      string `json:"workerId"`
		PenaltyPoints int    `json:"penaltyPoints"`
		CreateTask    bool   `json:"createTask"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	complaint, followUp, err := cc.complaints.Reject(ctx, actor, c.Param("id"), services.RejectComplaintInput{
		Notes:         input.Notes,
		WorkerRef:     input.WorkerID,
		PenaltyPoints: input.PenaltyPoints,
		CreateTask:    input.CreateTask,
	})
	if err != nil {
		abortWithError(c, err)
		return
	}

	response := gin.H{"complaint": complaint}
	if followUp != nil {
		response["followUpTask"] = followUp
	}
	c.JSON(http.StatusOK, response)
}

// GetComplaintUpdates lists a complaint's audit trail newest-first
func (cc *ComplaintController) GetComplaintUpdates(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	ctx, cancel := requestContext()
	defer cancel()

	updates, err := cc.complaints.Trail(ctx, actor, c.Param("id"))
	if err != nil {
		abortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": len(updates), "updates": updates})
}
