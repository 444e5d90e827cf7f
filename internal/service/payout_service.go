package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/goroutine"
	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
	"github.com/artisanhub/backend/internal/validation"
)

// PayoutRepository describes the payout store used by PayoutService.
type PayoutRepository interface {
	Create(ctx context.Context, artisanID uuid.UUID, amount float64, momoNumber, network string) (*models.Payout, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	ListByArtisan(ctx context.Context, artisanID uuid.UUID, limit, offset int) ([]models.Payout, error)
	ListPending(ctx context.Context, limit, offset int) ([]models.Payout, error)
	Complete(ctx context.Context, id uuid.UUID) (*models.Payout, error)
	Reject(ctx context.Context, id uuid.UUID, reason *string) (*models.Payout, error)
}

// PayoutService handles artisan withdrawals. The wallet is debited when the
// request is accepted; a rejection credits the money back.
type PayoutService struct {
	payouts   PayoutRepository
	notifier  Notifier
	minAmount float64
}

func NewPayoutService(payouts PayoutRepository, notifier Notifier, minAmount float64) *PayoutService {
	return &PayoutService{
		payouts:   payouts,
		notifier:  notifier,
		minAmount: minAmount,
	}
}

// RequestPayoutInput is an artisan withdrawal request.
type RequestPayoutInput struct {
	Amount     float64
	MomoNumber string
	Network    string
}

// RequestPayout reserves a withdrawal: the wallet is debited up front so a
// second request cannot spend the same balance while this one is pending.
func (s *PayoutService) RequestPayout(ctx context.Context, artisanID uuid.UUID, actorRole string, in RequestPayoutInput) (*models.Payout, error) {
	if actorRole != models.RoleArtisan {
		return nil, apperror.ErrForbidden
	}
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if in.Amount < s.minAmount {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("payout amount must be at least %.2f", s.minAmount))
	}
	if err := validation.ValidateMomoNumber(in.MomoNumber); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateNonEmpty("network", in.Network); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	p, err := s.payouts.Create(ctx, artisanID, in.Amount, in.MomoNumber, in.Network)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientFunds):
			return nil, apperror.ErrInsufficientBalance
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, apperror.ErrArtisanNotFound
		default:
			return nil, err
		}
	}
	return p, nil
}

// CompletePayout marks a pending payout as paid out. Admin only.
func (s *PayoutService) CompletePayout(ctx context.Context, payoutID uuid.UUID, actorRole string) (*models.Payout, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	p, err := s.payouts.Complete(ctx, payoutID)
	if err != nil {
		return nil, mapPayoutError(err)
	}

	s.notifyPayout(p.ArtisanID, fmt.Sprintf("Your payout of %.2f to %s was processed.", p.Amount, p.MomoNumber))
	return p, nil
}

// RejectPayout declines a pending payout and returns the debited amount to
// the artisan's wallet.
func (s *PayoutService) RejectPayout(ctx context.Context, payoutID uuid.UUID, actorRole string, reason *string) (*models.Payout, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}

	p, err := s.payouts.Reject(ctx, payoutID, reason)
	if err != nil {
		return nil, mapPayoutError(err)
	}

	msg := fmt.Sprintf("Your payout of %.2f was rejected and refunded to your wallet.", p.Amount)
	if reason != nil && *reason != "" {
		msg = fmt.Sprintf("Your payout of %.2f was rejected (%s) and refunded to your wallet.", p.Amount, *reason)
	}
	s.notifyPayout(p.ArtisanID, msg)
	return p, nil
}

// ListMyPayouts returns the artisan's payout history, newest first.
func (s *PayoutService) ListMyPayouts(ctx context.Context, artisanID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	limit, offset = clampPage(limit, offset)
	return s.payouts.ListByArtisan(ctx, artisanID, limit, offset)
}

// ListPendingPayouts returns the admin processing queue.
func (s *PayoutService) ListPendingPayouts(ctx context.Context, actorRole string, limit, offset int) ([]models.Payout, error) {
	if actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	limit, offset = clampPage(limit, offset)
	return s.payouts.ListPending(ctx, limit, offset)
}

func (s *PayoutService) notifyPayout(artisanID uuid.UUID, message string) {
	if s.notifier == nil {
		return
	}
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Notify(ctx, artisanID, models.NotificationPayoutProcessed, nil, message)
	})
}

func mapPayoutError(err error) error {
	switch {
	case errors.Is(err, repository.ErrPayoutNotFound):
		return apperror.ErrPayoutNotFound
	case errors.Is(err, repository.ErrPayoutNotPending):
		return apperror.New(apperror.ErrCodeConflict, "payout has already been processed")
	default:
		return err
	}
}

func clampPage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
