package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
	"github.com/artisanhub/backend/internal/validation"
)

// ArtisanRepository describes the user store operations ArtisanService needs.
type ArtisanRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error
	ListArtisans(ctx context.Context, serviceType, location string, limit, offset int) ([]models.ArtisanSummary, error)
	ListBusySlots(ctx context.Context, artisanID uuid.UUID) ([]models.BusySlot, error)
	AddBusySlot(ctx context.Context, slot *models.BusySlot) error
	RemoveBusySlot(ctx context.Context, artisanID, slotID uuid.UUID) error
}

// ArtisanService covers the artisan directory, availability management, and
// admin verification.
type ArtisanService struct {
	repo ArtisanRepository
}

func NewArtisanService(repo ArtisanRepository) *ArtisanService {
	return &ArtisanService{repo: repo}
}

// Browse returns artisans matching the optional filters, best rated first.
func (s *ArtisanService) Browse(ctx context.Context, serviceType, location string, limit, offset int) ([]models.ArtisanSummary, error) {
	limit, offset = clampPage(limit, offset)
	return s.repo.ListArtisans(ctx, serviceType, location, limit, offset)
}

// GetArtisan returns a single artisan's public record.
func (s *ArtisanService) GetArtisan(ctx context.Context, artisanID uuid.UUID) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, artisanID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrArtisanNotFound
		}
		return nil, err
	}
	if user.Role != models.RoleArtisan {
		return nil, apperror.ErrArtisanNotFound
	}
	return user, nil
}

// BusySlotInput describes a window the artisan wants to block off.
type BusySlotInput struct {
	StartsAt time.Time
	EndsAt   time.Time
	Note     *string
	Location *string
}

// AddBusySlot blocks a window in the artisan's calendar. Overlapping an
// existing slot is rejected; touching windows are allowed.
func (s *ArtisanService) AddBusySlot(ctx context.Context, artisanID uuid.UUID, actorRole string, in BusySlotInput) (*models.BusySlot, error) {
	if actorRole != models.RoleArtisan {
		return nil, apperror.ErrForbidden
	}
	if !in.StartsAt.Before(in.EndsAt) {
		return nil, apperror.New(apperror.ErrCodeValidation, "slot start must be before its end")
	}
	if in.Note != nil {
		if err := validation.ValidateLength("note", *in.Note, 0, validation.MaxNoteLength); err != nil {
			return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
		}
	}

	slot := &models.BusySlot{
		ArtisanID: artisanID,
		StartsAt:  in.StartsAt,
		EndsAt:    in.EndsAt,
		Note:      in.Note,
		Location:  in.Location,
	}
	if err := s.repo.AddBusySlot(ctx, slot); err != nil {
		if errors.Is(err, repository.ErrSlotOverlap) {
			return nil, apperror.New(apperror.ErrCodeConflict, "slot overlaps an existing busy slot")
		}
		return nil, err
	}
	return slot, nil
}

// ListBusySlots returns an artisan's blocked windows. Public: clients need
// it to pick a free window before booking.
func (s *ArtisanService) ListBusySlots(ctx context.Context, artisanID uuid.UUID) ([]models.BusySlot, error) {
	if _, err := s.GetArtisan(ctx, artisanID); err != nil {
		return nil, err
	}
	return s.repo.ListBusySlots(ctx, artisanID)
}

// RemoveBusySlot deletes one of the artisan's own slots.
func (s *ArtisanService) RemoveBusySlot(ctx context.Context, artisanID, slotID uuid.UUID, actorRole string) error {
	if actorRole != models.RoleArtisan {
		return apperror.ErrForbidden
	}
	if err := s.repo.RemoveBusySlot(ctx, artisanID, slotID); err != nil {
		if errors.Is(err, repository.ErrSlotNotFound) {
			return apperror.New(apperror.ErrCodeNotFound, "busy slot not found")
		}
		return err
	}
	return nil
}

// SetVerified flips the admin verification badge on an artisan account.
func (s *ArtisanService) SetVerified(ctx context.Context, artisanID uuid.UUID, actorRole string, verified bool) error {
	if actorRole != models.RoleAdmin {
		return apperror.ErrForbidden
	}
	if err := s.repo.SetVerified(ctx, artisanID, verified); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return apperror.ErrArtisanNotFound
		}
		return err
	}
	return nil
}
