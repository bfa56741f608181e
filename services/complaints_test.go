package services

import (
	"context"
	"testing"

	"wastetrack-be/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestComplaintLifecycle(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	worker := f.addWorker("ravi", "wrk-1001")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Overflowing bin at market road",
		Description: "The community dustbin has not been emptied for a week",
		Category:    "overflowing-dustbin",
		Priority:    "high",
		Location:    "Market Road",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintPending, complaint.Status)
	assert.Equal(t, citizen.ID, complaint.User)

	// assignment by public worker code forces in-progress and stamps startedAt
	complaint, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), "WRK-1001")
	require.NoError(t, err)
	require.NotNil(t, complaint.AssignedTo)
	assert.Equal(t, worker.ID, *complaint.AssignedTo)
	assert.Equal(t, models.ComplaintInProgress, complaint.Status)
	require.NotNil(t, complaint.ResolutionDetails.StartedAt)
	started := *complaint.ResolutionDetails.StartedAt

	complaint, err = f.complaintService.UploadImages(ctx, actorFor(worker), complaint.ID.Hex(), false, []string{"/uploads/before.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/before.jpg"}, complaint.ResolutionDetails.BeforeImages)
	assert.Equal(t, started, *complaint.ResolutionDetails.StartedAt, "startedAt must not be rewound")

	complaint, err = f.complaintService.UploadImages(ctx, actorFor(worker), complaint.ID.Hex(), true, []string{"/uploads/after.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"/uploads/after.jpg"}, complaint.ResolutionDetails.AfterImages)
	require.NotNil(t, complaint.ResolutionDetails.CompletedAt)

	complaint, err = f.complaintService.Resolve(ctx, actorFor(municipal), complaint.ID.Hex(), 25, "verified on site")
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintResolved, complaint.Status)
	assert.True(t, complaint.PointsAwarded)
	assert.Equal(t, 25, complaint.RewardPoints)
	require.NotNil(t, complaint.ResolutionDetails.ResolvedAt)
	assert.Equal(t, municipal.ID, *complaint.ResolutionDetails.ResolvedBy)

	got, err := f.users.FindByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 25, got.Points)
	require.Len(t, got.PointsHistory, 1)

	trail, err := f.complaintService.Trail(ctx, actorFor(citizen), complaint.ID.Hex())
	require.NoError(t, err)
	require.Len(t, trail, 5)
	// newest-first
	assert.Equal(t, models.ComplaintActionResolved, trail[0].Action)
	assert.Equal(t, models.ComplaintActionImagesUploaded, trail[1].Action)
	assert.Equal(t, models.ComplaintActionImagesUploaded, trail[2].Action)
	assert.Equal(t, models.ComplaintActionAssigned, trail[3].Action)
	assert.Equal(t, models.ComplaintActionCreated, trail[4].Action)
}

func TestComplaintResolveRewardsOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	worker := f.addWorker("ravi", "WRK-1001")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Dumped construction waste",
		Description: "Debris dumped near the canal",
		Category:    "illegal-dumping",
	})
	require.NoError(t, err)
	_, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), worker.ID.Hex())
	require.NoError(t, err)

	_, err = f.complaintService.Resolve(ctx, actorFor(municipal), complaint.ID.Hex(), 30, "")
	require.NoError(t, err)
	_, err = f.complaintService.Resolve(ctx, actorFor(municipal), complaint.ID.Hex(), 30, "")
	require.NoError(t, err)

	got, err := f.users.FindByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, got.Points, "repeated resolution must not double the reward")
	assert.Len(t, got.PointsHistory, 1)
}

func TestAssignUnknownWorkerCode(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Uncollected garbage",
		Description: "Bags left on the corner",
		Category:    "uncollected-waste",
	})
	require.NoError(t, err)

	_, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), "WRK-9999")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	got, err := f.complaints.FindByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintPending, got.Status, "failed assignment must leave the complaint unchanged")
	assert.Nil(t, got.AssignedTo)
}

func TestAssignNonWorker(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Uncollected garbage",
		Description: "Bags left on the corner",
		Category:    "uncollected-waste",
	})
	require.NoError(t, err)

	_, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), citizen.ID.Hex())
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestComplaintStatusGuards(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	assignee := f.addWorker("ravi", "WRK-1001")
	other := f.addWorker("meena", "WRK-1002")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Overflowing bin",
		Description: "Bin at the park entrance",
		Category:    "overflowing-dustbin",
	})
	require.NoError(t, err)
	_, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), assignee.ID.Hex())
	require.NoError(t, err)

	// only the assignee may touch the status
	_, err = f.complaintService.UpdateStatus(ctx, actorFor(other), complaint.ID.Hex(), "in-progress")
	require.Error(t, err)
	assert.True(t, IsAuthorization(err))

	// terminal statuses go through resolve/reject
	_, err = f.complaintService.UpdateStatus(ctx, actorFor(assignee), complaint.ID.Hex(), "resolved")
	require.Error(t, err)
	assert.True(t, IsAuthorization(err))
	_, err = f.complaintService.UpdateStatus(ctx, actorFor(municipal), complaint.ID.Hex(), "resolved")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// no moving back to pending
	_, err = f.complaintService.UpdateStatus(ctx, actorFor(municipal), complaint.ID.Hex(), "pending")
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	// same-status update is a no-op
	got, err := f.complaintService.UpdateStatus(ctx, actorFor(assignee), complaint.ID.Hex(), "in-progress")
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintInProgress, got.Status)

	_, err = f.complaintService.Resolve(ctx, actorFor(municipal), complaint.ID.Hex(), 0, "")
	require.NoError(t, err)

	// terminal complaints refuse further status updates
	_, err = f.complaintService.UpdateStatus(ctx, actorFor(municipal), complaint.ID.Hex(), "in-progress")
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestRejectAppliesDefaultPenalty(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	worker := f.addWorker("ravi", "WRK-1001")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Garbage not picked up",
		Description: "Skipped on the regular route",
		Category:    "uncollected-waste",
	})
	require.NoError(t, err)
	_, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), worker.ID.Hex())
	require.NoError(t, err)

	rejected, _, err := f.complaintService.Reject(ctx, actorFor(municipal), complaint.ID.Hex(), RejectComplaintInput{
		Notes: "work not done",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRejected, rejected.Status)
	assert.Equal(t, 10, rejected.PenaltyPoints)

	got, err := f.users.FindByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, -10, got.Points, "balance may go negative")
	require.Len(t, got.PointsHistory, 1)
	assert.Equal(t, -10, got.PointsHistory[0].Points)
}

func TestRejectWithoutTargetLeavesLedgerUntouched(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	worker := f.addWorker("ravi", "WRK-1001")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Dumped waste",
		Description: "Waste dumped in the empty plot",
		Category:    "illegal-dumping",
	})
	require.NoError(t, err)

	rejected, followUp, err := f.complaintService.Reject(ctx, actorFor(municipal), complaint.ID.Hex(), RejectComplaintInput{
		Notes: "duplicate report",
	})
	require.NoError(t, err)
	assert.Equal(t, models.ComplaintRejected, rejected.Status)
	assert.Zero(t, rejected.PenaltyPoints)
	assert.Nil(t, followUp)

	got, err := f.users.FindByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Points)
	assert.Empty(t, got.PointsHistory)
}

func TestRejectSpawnsFollowUpTask(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	worker := f.addWorker("ravi", "WRK-1001")
	municipal := f.addMunicipal("head")

	complaint, err := f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "Overflowing bin",
		Description: "Bin near the school",
		Category:    "overflowing-dustbin",
		Priority:    "high",
		Location:    "School Street",
	})
	require.NoError(t, err)
	_, err = f.complaintService.Assign(ctx, actorFor(municipal), complaint.ID.Hex(), worker.ID.Hex())
	require.NoError(t, err)

	_, followUp, err := f.complaintService.Reject(ctx, actorFor(municipal), complaint.ID.Hex(), RejectComplaintInput{
		Notes:         "needs a second visit",
		PenaltyPoints: 5,
		CreateTask:    true,
	})
	require.NoError(t, err)
	require.NotNil(t, followUp)
	assert.Equal(t, "Follow-up: Overflowing bin", followUp.Title)
	assert.Equal(t, models.TaskAssigned, followUp.Status)
	assert.Equal(t, models.PriorityHigh, followUp.Priority)
	assert.Equal(t, "School Street", followUp.Location)
	require.NotNil(t, followUp.AssignedTo)
	assert.Equal(t, worker.ID, *followUp.AssignedTo)
	require.NotNil(t, followUp.RelatedComplaint)
	assert.Equal(t, complaint.ID, *followUp.RelatedComplaint)

	got, err := f.users.FindByID(ctx, worker.ID)
	require.NoError(t, err)
	assert.Equal(t, -5, got.Points)

	// the follow-up opens its own trail
	taskTrail, err := f.taskService.Trail(ctx, actorFor(municipal), followUp.ID.Hex())
	require.NoError(t, err)
	require.Len(t, taskTrail, 1)
	assert.Equal(t, models.TaskActionCreated, taskTrail[0].Action)

	// rejecting again is a conflict
	_, _, err = f.complaintService.Reject(ctx, actorFor(municipal), complaint.ID.Hex(), RejectComplaintInput{})
	require.Error(t, err)
	assert.True(t, IsConflict(err))
}

func TestComplaintVisibility(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	reporter := f.addCitizen("asha")
	stranger := f.addCitizen("vikram")
	worker := f.addWorker("ravi", "WRK-1001")
	municipal := f.addMunicipal("head")

	mine, err := f.complaintService.Create(ctx, actorFor(reporter), CreateComplaintInput{
		Title:       "Uncollected garbage",
		Description: "On my street",
		Category:    "uncollected-waste",
	})
	require.NoError(t, err)
	_, err = f.complaintService.Create(ctx, actorFor(stranger), CreateComplaintInput{
		Title:       "Another complaint",
		Description: "Elsewhere",
		Category:    "other",
	})
	require.NoError(t, err)

	// citizens only see their own
	listed, err := f.complaintService.List(ctx, actorFor(reporter))
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, mine.ID, listed[0].ID)

	_, err = f.complaintService.Get(ctx, actorFor(stranger), mine.ID.Hex())
	require.Error(t, err)
	assert.True(t, IsAuthorization(err))

	// workers only see assignments
	listed, err = f.complaintService.List(ctx, actorFor(worker))
	require.NoError(t, err)
	assert.Empty(t, listed)
	_, err = f.complaintService.Get(ctx, actorFor(worker), mine.ID.Hex())
	require.Error(t, err)
	assert.True(t, IsAuthorization(err))

	// municipal sees everything
	listed, err = f.complaintService.List(ctx, actorFor(municipal))
	require.NoError(t, err)
	assert.Len(t, listed, 2)

	_, err = f.complaintService.Get(ctx, actorFor(municipal), primitive.NewObjectID().Hex())
	require.Error(t, err)
	assert.True(t, IsNotFound(err))
}

func TestComplaintCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	citizen := f.addCitizen("asha")
	worker := f.addWorker("ravi", "WRK-1001")

	_, err := f.complaintService.Create(ctx, actorFor(worker), CreateComplaintInput{
		Title:       "t",
		Description: "d",
		Category:    "other",
	})
	require.Error(t, err)
	assert.True(t, IsAuthorization(err))

	_, err = f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Description: "d",
		Category:    "other",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))

	_, err = f.complaintService.Create(ctx, actorFor(citizen), CreateComplaintInput{
		Title:       "t",
		Description: "d",
		Category:    "hazardous",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}
