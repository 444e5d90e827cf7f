package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
)

type mockArtisanRepo struct {
	mock.Mock
}

func (m *mockArtisanRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *mockArtisanRepo) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	args := m.Called(ctx, userID, verified)
	return args.Error(0)
}

func (m *mockArtisanRepo) ListArtisans(ctx context.Context, serviceType, location string, limit, offset int) ([]models.ArtisanSummary, error) {
	args := m.Called(ctx, serviceType, location, limit, offset)
	return args.Get(0).([]models.ArtisanSummary), args.Error(1)
}

func (m *mockArtisanRepo) ListBusySlots(ctx context.Context, artisanID uuid.UUID) ([]models.BusySlot, error) {
	args := m.Called(ctx, artisanID)
	return args.Get(0).([]models.BusySlot), args.Error(1)
}

func (m *mockArtisanRepo) AddBusySlot(ctx context.Context, slot *models.BusySlot) error {
	args := m.Called(ctx, slot)
	return args.Error(0)
}

func (m *mockArtisanRepo) RemoveBusySlot(ctx context.Context, artisanID, slotID uuid.UUID) error {
	args := m.Called(ctx, artisanID, slotID)
	return args.Error(0)
}

func TestArtisanService_AddBusySlot_InvalidWindow(t *testing.T) {
	repo := new(mockArtisanRepo)
	svc := NewArtisanService(repo)

	start := time.Now()
	_, err := svc.AddBusySlot(context.Background(), uuid.New(), models.RoleArtisan, BusySlotInput{
		StartsAt: start,
		EndsAt:   start,
	})
	assert.True(t, apperror.IsValidation(err))
	repo.AssertNotCalled(t, "AddBusySlot", mock.Anything, mock.Anything)
}

func TestArtisanService_AddBusySlot_ClientsForbidden(t *testing.T) {
	repo := new(mockArtisanRepo)
	svc := NewArtisanService(repo)

	start := time.Now()
	_, err := svc.AddBusySlot(context.Background(), uuid.New(), models.RoleClient, BusySlotInput{
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestArtisanService_AddBusySlot_OverlapConflict(t *testing.T) {
	repo := new(mockArtisanRepo)
	svc := NewArtisanService(repo)
	ctx := context.Background()

	start := time.Now()
	repo.On("AddBusySlot", ctx, mock.AnythingOfType("*models.BusySlot")).Return(repository.ErrSlotOverlap)

	_, err := svc.AddBusySlot(ctx, uuid.New(), models.RoleArtisan, BusySlotInput{
		StartsAt: start,
		EndsAt:   start.Add(time.Hour),
	})
	assert.True(t, apperror.IsConflict(err))
}

func TestArtisanService_GetArtisan_ClientHidden(t *testing.T) {
	repo := new(mockArtisanRepo)
	svc := NewArtisanService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("GetByID", ctx, id).Return(&models.User{ID: id, Role: models.RoleClient}, nil)

	_, err := svc.GetArtisan(ctx, id)
	assert.ErrorIs(t, err, apperror.ErrArtisanNotFound)
}

func TestArtisanService_SetVerified_RequiresAdmin(t *testing.T) {
	repo := new(mockArtisanRepo)
	svc := NewArtisanService(repo)

	err := svc.SetVerified(context.Background(), uuid.New(), models.RoleArtisan, true)
	assert.ErrorIs(t, err, apperror.ErrForbidden)
}

func TestArtisanService_SetVerified_Success(t *testing.T) {
	repo := new(mockArtisanRepo)
	svc := NewArtisanService(repo)
	ctx := context.Background()

	id := uuid.New()
	repo.On("SetVerified", ctx, id, true).Return(nil)

	err := svc.SetVerified(ctx, id, models.RoleAdmin, true)
	assert.NoError(t, err)
	repo.AssertExpectations(t)
}
