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

type mockPayoutRepo struct {
	mock.Mock
}

func (m *mockPayoutRepo) Create(ctx context.Context, artisanID uuid.UUID, amount float64, momoNumber, network string) (*models.Payout, error) {
	args := m.Called(ctx, artisanID, amount, momoNumber, network)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ListByArtisan(ctx context.Context, artisanID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	args := m.Called(ctx, artisanID, limit, offset)
	return args.Get(0).([]models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) ListPending(ctx context.Context, limit, offset int) ([]models.Payout, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) Complete(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func (m *mockPayoutRepo) Reject(ctx context.Context, id uuid.UUID, reason *string) (*models.Payout, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Payout), args.Error(1)
}

func newPayoutService(repo *mockPayoutRepo) *PayoutService {
	return NewPayoutService(repo, stubNotifier{}, 1)
}

func TestPayoutService_RequestPayout_Success(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)
	ctx := context.Background()
	artisanID := uuid.New()

	expected := &models.Payout{ID: uuid.New(), ArtisanID: artisanID, Amount: 50, Status: models.PayoutStatusPending}
	repo.On("Create", ctx, artisanID, float64(50), "+233201234567", "MTN").Return(expected, nil)

	payout, err := svc.RequestPayout(ctx, artisanID, models.RoleArtisan, RequestPayoutInput{
		Amount:     50,
		MomoNumber: "+233201234567",
		Network:    "MTN",
	})
	assert.NoError(t, err)
	assert.Equal(t, expected, payout)
	repo.AssertExpectations(t)
}

func TestPayoutService_RequestPayout_Insufficient(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)
	ctx := context.Background()
	artisanID := uuid.New()

	repo.On("Create", ctx, artisanID, float64(500), "+233201234567", "MTN").Return(nil, repository.ErrInsufficientFunds)

	_, err := svc.RequestPayout(ctx, artisanID, models.RoleArtisan, RequestPayoutInput{
		Amount:     500,
		MomoNumber: "+233201234567",
		Network:    "MTN",
	})
	assert.ErrorIs(t, err, apperror.ErrInsufficientBalance)
}

func TestPayoutService_RequestPayout_BelowMinimum(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := NewPayoutService(repo, stubNotifier{}, 10)

	_, err := svc.RequestPayout(context.Background(), uuid.New(), models.RoleArtisan, RequestPayoutInput{
		Amount:     5,
		MomoNumber: "+233201234567",
		Network:    "MTN",
	})
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestPayoutService_RequestPayout_ClientsForbidden(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)

	_, err := svc.RequestPayout(context.Background(), uuid.New(), models.RoleClient, RequestPayoutInput{
		Amount:     50,
		MomoNumber: "+233201234567",
		Network:    "MTN",
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestPayoutService_RequestPayout_BadMomoNumber(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)

	_, err := svc.RequestPayout(context.Background(), uuid.New(), models.RoleArtisan, RequestPayoutInput{
		Amount:     50,
		MomoNumber: "not-a-number",
		Network:    "MTN",
	})
	assert.True(t, apperror.IsValidation(err))
}

func TestPayoutService_CompletePayout_RequiresAdmin(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)

	_, err := svc.CompletePayout(context.Background(), uuid.New(), models.RoleArtisan)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestPayoutService_CompletePayout_Success(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	repo.On("Complete", ctx, payoutID).Return(&models.Payout{
		ID:     payoutID,
		Amount: 50,
		Status: models.PayoutStatusCompleted,
	}, nil)

	payout, err := svc.CompletePayout(ctx, payoutID, models.RoleAdmin)
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusCompleted, payout.Status)
}

func TestPayoutService_CompletePayout_AlreadyProcessed(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	repo.On("Complete", ctx, payoutID).Return(nil, repository.ErrPayoutNotPending)

	_, err := svc.CompletePayout(ctx, payoutID, models.RoleAdmin)
	assert.True(t, apperror.IsConflict(err))
}

func TestPayoutService_RejectPayout_Success(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()
	reason := "momo number failed verification"

	repo.On("Reject", ctx, payoutID, &reason).Return(&models.Payout{
		ID:              payoutID,
		Amount:          50,
		Status:          models.PayoutStatusRejected,
		RejectionReason: &reason,
	}, nil)

	payout, err := svc.RejectPayout(ctx, payoutID, models.RoleAdmin, &reason)
	assert.NoError(t, err)
	assert.Equal(t, models.PayoutStatusRejected, payout.Status)
	repo.AssertExpectations(t)
}

func TestPayoutService_RejectPayout_NotFound(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)
	ctx := context.Background()
	payoutID := uuid.New()

	repo.On("Reject", ctx, payoutID, (*string)(nil)).Return(nil, repository.ErrPayoutNotFound)

	_, err := svc.RejectPayout(ctx, payoutID, models.RoleAdmin, nil)
	assert.ErrorIs(t, err, apperror.ErrPayoutNotFound)
}

func TestPayoutService_ListPending_RequiresAdmin(t *testing.T) {
	repo := new(mockPayoutRepo)
	svc := newPayoutService(repo)

	_, err := svc.ListPendingPayouts(context.Background(), models.RoleArtisan, 20, 0)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}
