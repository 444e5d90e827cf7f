package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
)

type mockDisputeRepo struct {
	mock.Mock
}

func (m *mockDisputeRepo) Create(ctx context.Context, d *models.Dispute) error {
	args := m.Called(ctx, d)
	if args.Error(0) == nil && d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return args.Error(0)
}

func (m *mockDisputeRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Dispute, error) {
	args := m.Called(ctx, jobID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	args := m.Called(ctx, userID, limit, offset)
	return args.Get(0).([]models.Dispute), args.Error(1)
}

func (m *mockDisputeRepo) ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]models.Evidence, error) {
	args := m.Called(ctx, disputeID)
	return args.Get(0).([]models.Evidence), args.Error(1)
}

func (m *mockDisputeRepo) AddEvidence(ctx context.Context, e *models.Evidence, markUnderReview bool) error {
	args := m.Called(ctx, e, markUnderReview)
	return args.Error(0)
}

func (m *mockDisputeRepo) Resolve(ctx context.Context, p repository.ResolveParams) (*models.Dispute, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Dispute), args.Error(1)
}

type mockDisputeJobs struct {
	mock.Mock
}

func (m *mockDisputeJobs) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Job), args.Error(1)
}

func newDisputeService(disputes *mockDisputeRepo, jobs *mockDisputeJobs) *DisputeService {
	return NewDisputeService(disputes, jobs, stubNotifier{}, 0.90)
}

func TestDisputeService_Open_Success(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:        jobID,
		ClientID:  clientID,
		ArtisanID: uuid.New(),
	}, nil)
	disputes.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)

	d, err := svc.Open(ctx, clientID, OpenDisputeInput{JobID: jobID, Reason: "work not done"})
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusOpen, d.Status)
	assert.Equal(t, clientID, d.RaisedBy)
	assert.NotEmpty(t, d.TicketID)
}

func TestDisputeService_Open_EvidenceDoesNotFlipStatus(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:       jobID,
		ClientID: clientID,
	}, nil)
	disputes.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(nil)
	disputes.On("AddEvidence", ctx, mock.AnythingOfType("*models.Evidence"), false).Return(nil)

	_, err := svc.Open(ctx, clientID, OpenDisputeInput{
		JobID:    jobID,
		Reason:   "work not done",
		Evidence: []EvidenceInput{{ImageURL: "https://cdn.example/1.jpg"}},
	})
	assert.NoError(t, err)
	disputes.AssertExpectations(t)
}

func TestDisputeService_Open_Duplicate(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:       jobID,
		ClientID: clientID,
	}, nil)
	disputes.On("Create", ctx, mock.AnythingOfType("*models.Dispute")).Return(repository.ErrDisputeExists)

	_, err := svc.Open(ctx, clientID, OpenDisputeInput{JobID: jobID, Reason: "duplicate"})
	assert.ErrorIs(t, err, apperror.ErrDisputeExists)
	assert.True(t, apperror.IsConflict(err))
}

func TestDisputeService_Open_ForbiddenForStranger(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{
		ID:        jobID,
		ClientID:  uuid.New(),
		ArtisanID: uuid.New(),
	}, nil)

	_, err := svc.Open(ctx, uuid.New(), OpenDisputeInput{JobID: jobID, Reason: "not my job"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	disputes.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDisputeService_AddEvidence_FlipsOpenToUnderReview(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	disputeID := uuid.New()
	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:       disputeID,
		ClientID: clientID,
		Status:   models.DisputeStatusOpen,
	}, nil)
	disputes.On("AddEvidence", ctx, mock.AnythingOfType("*models.Evidence"), true).Return(nil)

	_, err := svc.AddEvidence(ctx, disputeID, clientID, models.RoleClient, EvidenceInput{ImageURL: "https://cdn.example/2.jpg"})
	assert.NoError(t, err)
	disputes.AssertExpectations(t)
}

func TestDisputeService_AddEvidence_AdminAllowed(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	adminID := uuid.New()
	disputeID := uuid.New()
	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:        disputeID,
		ClientID:  uuid.New(),
		ArtisanID: uuid.New(),
		Status:    models.DisputeStatusOpen,
	}, nil)
	disputes.On("AddEvidence", ctx, mock.MatchedBy(func(e *models.Evidence) bool {
		return e.UploadedBy == adminID
	}), true).Return(nil)

	// The admin is not a party of the job but may still contribute evidence.
	_, err := svc.AddEvidence(ctx, disputeID, adminID, models.RoleAdmin, EvidenceInput{ImageURL: "https://cdn.example/admin.jpg"})
	assert.NoError(t, err)
	disputes.AssertExpectations(t)
}

func TestDisputeService_AddEvidence_ForbiddenForStranger(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	disputeID := uuid.New()
	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:        disputeID,
		ClientID:  uuid.New(),
		ArtisanID: uuid.New(),
		Status:    models.DisputeStatusOpen,
	}, nil)

	_, err := svc.AddEvidence(ctx, disputeID, uuid.New(), models.RoleClient, EvidenceInput{ImageURL: "https://cdn.example/5.jpg"})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	disputes.AssertNotCalled(t, "AddEvidence", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_AddEvidence_UnderReviewStaysPut(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	disputeID := uuid.New()
	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:       disputeID,
		ClientID: clientID,
		Status:   models.DisputeStatusUnderReview,
	}, nil)
	disputes.On("AddEvidence", ctx, mock.AnythingOfType("*models.Evidence"), false).Return(nil)

	_, err := svc.AddEvidence(ctx, disputeID, clientID, models.RoleClient, EvidenceInput{ImageURL: "https://cdn.example/3.jpg"})
	assert.NoError(t, err)
	disputes.AssertExpectations(t)
}

func TestDisputeService_AddEvidence_ResolvedRejected(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	disputeID := uuid.New()
	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:       disputeID,
		ClientID: clientID,
		Status:   models.DisputeStatusResolved,
	}, nil)

	_, err := svc.AddEvidence(ctx, disputeID, clientID, models.RoleClient, EvidenceInput{ImageURL: "https://cdn.example/4.jpg"})
	assert.ErrorIs(t, err, apperror.ErrDisputeResolved)
	disputes.AssertNotCalled(t, "AddEvidence", mock.Anything, mock.Anything, mock.Anything)
}

func TestDisputeService_GetJobDispute_Party(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	clientID := uuid.New()
	jobID := uuid.New()
	disputeID := uuid.New()
	disputes.On("GetByJobID", ctx, jobID).Return(&models.Dispute{
		ID:       disputeID,
		JobID:    jobID,
		ClientID: clientID,
		Status:   models.DisputeStatusUnderReview,
	}, nil)
	disputes.On("ListEvidence", ctx, disputeID).Return([]models.Evidence{{DisputeID: disputeID}}, nil)

	d, evidence, err := svc.GetJobDispute(ctx, jobID, clientID, models.RoleClient)
	assert.NoError(t, err)
	assert.Equal(t, disputeID, d.ID)
	assert.Len(t, evidence, 1)
}

func TestDisputeService_GetJobDispute_ForbiddenForStranger(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	jobID := uuid.New()
	disputes.On("GetByJobID", ctx, jobID).Return(&models.Dispute{
		ID:        uuid.New(),
		JobID:     jobID,
		ClientID:  uuid.New(),
		ArtisanID: uuid.New(),
	}, nil)

	_, _, err := svc.GetJobDispute(ctx, jobID, uuid.New(), models.RoleClient)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
	disputes.AssertNotCalled(t, "ListEvidence", mock.Anything, mock.Anything)
}

func TestDisputeService_Resolve_RequiresAdmin(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)

	_, err := svc.Resolve(context.Background(), uuid.New(), uuid.New(), models.RoleClient, models.ResolutionReleaseToArtisan, nil)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestDisputeService_Resolve_UnknownResolution(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)

	_, err := svc.Resolve(context.Background(), uuid.New(), uuid.New(), models.RoleAdmin, "split_the_difference", nil)
	assert.True(t, apperror.IsValidation(err))
}

func TestDisputeService_Resolve_ReleaseToArtisan(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	disputeID := uuid.New()
	jobID := uuid.New()
	adminID := uuid.New()

	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		JobID:  jobID,
		Status: models.DisputeStatusUnderReview,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Amount: 100}, nil)
	disputes.On("Resolve", ctx, mock.MatchedBy(func(p repository.ResolveParams) bool {
		return p.DisputeID == disputeID &&
			p.Resolution == models.ResolutionReleaseToArtisan &&
			p.ArtisanShare == 90 &&
			p.JobStatus == models.JobStatusCompleted &&
			p.ResolvedBy == adminID
	})).Return(&models.Dispute{
		ID:       disputeID,
		JobID:    jobID,
		TicketID: "TKT-1",
		Status:   models.DisputeStatusResolved,
	}, nil)

	d, err := svc.Resolve(ctx, disputeID, adminID, models.RoleAdmin, models.ResolutionReleaseToArtisan, nil)
	assert.NoError(t, err)
	assert.Equal(t, models.DisputeStatusResolved, d.Status)
	disputes.AssertExpectations(t)
}

func TestDisputeService_Resolve_RefundCancelsJob(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	disputeID := uuid.New()
	jobID := uuid.New()

	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		JobID:  jobID,
		Status: models.DisputeStatusOpen,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Amount: 50}, nil)
	disputes.On("Resolve", ctx, mock.MatchedBy(func(p repository.ResolveParams) bool {
		return p.Resolution == models.ResolutionRefundClient &&
			p.ArtisanShare == 45 &&
			p.JobStatus == models.JobStatusCancelled
	})).Return(&models.Dispute{ID: disputeID, JobID: jobID, Status: models.DisputeStatusResolved}, nil)

	_, err := svc.Resolve(ctx, disputeID, uuid.New(), models.RoleAdmin, models.ResolutionRefundClient, nil)
	assert.NoError(t, err)
}

func TestDisputeService_Resolve_AlreadyResolved(t *testing.T) {
	disputes := new(mockDisputeRepo)
	jobs := new(mockDisputeJobs)
	svc := newDisputeService(disputes, jobs)
	ctx := context.Background()

	disputeID := uuid.New()
	jobID := uuid.New()

	disputes.On("GetByID", ctx, disputeID).Return(&models.Dispute{
		ID:     disputeID,
		JobID:  jobID,
		Status: models.DisputeStatusResolved,
	}, nil)
	jobs.On("GetByID", ctx, jobID).Return(&models.Job{ID: jobID, Amount: 100}, nil)
	disputes.On("Resolve", ctx, mock.AnythingOfType("repository.ResolveParams")).Return(nil, repository.ErrDisputeResolved)

	_, err := svc.Resolve(ctx, disputeID, uuid.New(), models.RoleAdmin, models.ResolutionHoldFunds, nil)
	assert.ErrorIs(t, err, apperror.ErrDisputeResolved)
	assert.True(t, apperror.IsConflict(err))
}
