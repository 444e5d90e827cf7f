package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/alerts"
	"github.com/artisanhub/backend/internal/goroutine"
	"github.com/artisanhub/backend/internal/logger"
	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
	"github.com/artisanhub/backend/internal/schedule"
	"github.com/artisanhub/backend/internal/validation"
)

// JobRepository describes the job store used by JobService.
type JobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Job, error)
	UpdateStatus(ctx context.Context, jobID uuid.UUID, status string) error
	Complete(ctx context.Context, p repository.CompleteParams) (*models.Job, error)
	EnsureInvoice(ctx context.Context, jobID uuid.UUID, number string, issuedAt time.Time) (*models.Job, error)
}

// UserDirectory is the identity lookup JobService needs.
type UserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	ListBusySlots(ctx context.Context, artisanID uuid.UUID) ([]models.BusySlot, error)
}

// Notifier records lifecycle notifications for users.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, ntype string, jobID *uuid.UUID, message string)
}

// AlertSender delivers out-of-band job alerts to an artisan's phone.
type AlertSender interface {
	SendJobAlert(ctx context.Context, alert alerts.JobAlert) (bool, error)
}

// JobService owns the job lifecycle: booking with conflict detection,
// guarded status transitions, completion with rating aggregation and escrow
// release, and invoice snapshots.
type JobService struct {
	jobs          JobRepository
	users         UserDirectory
	notifier      Notifier
	alerts        AlertSender
	shareRate     float64
	defaultWindow time.Duration
}

func NewJobService(jobs JobRepository, users UserDirectory, notifier Notifier, alertSender AlertSender, invoiceShareRate float64, defaultWindow time.Duration) *JobService {
	if defaultWindow <= 0 {
		defaultWindow = schedule.DefaultWindowLength
	}
	return &JobService{
		jobs:          jobs,
		users:         users,
		notifier:      notifier,
		alerts:        alertSender,
		shareRate:     invoiceShareRate,
		defaultWindow: defaultWindow,
	}
}

// CreateBookingInput carries a client booking request. Date is the legacy
// nominal date; explicit timestamps take precedence when both are given.
type CreateBookingInput struct {
	ArtisanID   uuid.UUID
	ServiceType string
	Description *string
	Date        string
	StartAt     *time.Time
	EndAt       *time.Time
	Amount      float64
}

// CreateBooking books a job with an artisan after validating the requested
// window against the artisan's busy slots.
func (s *JobService) CreateBooking(ctx context.Context, clientID uuid.UUID, in CreateBookingInput) (*models.Job, error) {
	if err := validation.ValidateNonEmpty("service type", in.ServiceType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	artisan, err := s.users.GetByID(ctx, in.ArtisanID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrArtisanNotFound
		}
		return nil, err
	}
	if artisan.Role != models.RoleArtisan {
		return nil, apperror.New(apperror.ErrCodeValidation, "selected user is not an artisan")
	}

	window, err := schedule.Derive(in.Date, in.StartAt, in.EndAt, s.defaultWindow)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, "invalid schedule window")
	}

	slots, err := s.users.ListBusySlots(ctx, in.ArtisanID)
	if err != nil {
		return nil, err
	}
	if schedule.HasConflict(slots, window) {
		return nil, apperror.ErrSchedulingConflict
	}

	job := &models.Job{
		ClientID:         clientID,
		ArtisanID:        in.ArtisanID,
		ServiceType:      in.ServiceType,
		Description:      in.Description,
		Amount:           in.Amount,
		ScheduledStartAt: window.Start,
		ScheduledEndAt:   window.End,
		Status:           models.JobStatusPending,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	s.notifyAsync(job.ArtisanID, models.NotificationJobBooked, job.ID,
		fmt.Sprintf("You have a new %s booking for %s", job.ServiceType, job.ScheduledDate()))

	// Best-effort SMS alert: a delivery failure never fails the booking.
	if s.alerts != nil && artisan.Phone != nil {
		alert := alerts.JobAlert{Phone: *artisan.Phone, ServiceType: job.ServiceType}
		if artisan.Location != nil {
			alert.Location = *artisan.Location
		}
		goroutine.SafeGo(func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if sent, err := s.alerts.SendJobAlert(ctx, alert); err != nil || !sent {
				if logger.Log != nil {
					logger.Log.WithError(err).WithField("job_id", job.ID).Warn("job alert not delivered")
				}
			}
		})
	}

	return job, nil
}

// UpdateStatus moves a job through its lifecycle. Only the job's parties may
// call it, and only transitions in the allowed-transition table are accepted.
func (s *JobService) UpdateStatus(ctx context.Context, jobID, actorID uuid.UUID, newStatus string, rating *int, comment *string) (*models.Job, error) {
	if _, ok := models.ValidJobStatuses[newStatus]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("unknown job status %q", newStatus))
	}

	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if !job.IsParty(actorID) {
		return nil, apperror.ErrForbidden
	}
	if !models.CanTransitionJob(job.Status, newStatus) {
		return nil, apperror.New(apperror.ErrCodeValidation,
			fmt.Sprintf("cannot transition job from %s to %s", job.Status, newStatus))
	}

	switch newStatus {
	case models.JobStatusCompleted:
		return s.complete(ctx, job, rating, comment)
	case models.JobStatusAwaitingConfirmation:
		if err := s.jobs.UpdateStatus(ctx, jobID, newStatus); err != nil {
			return nil, err
		}
		s.notifyAsync(job.ClientID, models.NotificationConfirmDelivery, job.ID,
			"The artisan has marked the work as done. Please confirm delivery.")
	default:
		if err := s.jobs.UpdateStatus(ctx, jobID, newStatus); err != nil {
			return nil, err
		}
	}

	job.Status = newStatus
	return job, nil
}

// complete finishes the job: timestamps are set once, the escrow share moves
// from the artisan's pending balance to the wallet on first completion, and
// a supplied rating triggers a full recompute of the artisan's aggregate.
func (s *JobService) complete(ctx context.Context, job *models.Job, rating *int, comment *string) (*models.Job, error) {
	if rating != nil && (*rating < 1 || *rating > 5) {
		return nil, apperror.New(apperror.ErrCodeValidation, "rating must be between 1 and 5")
	}

	updated, err := s.jobs.Complete(ctx, repository.CompleteParams{
		JobID:         job.ID,
		Rating:        rating,
		ReviewComment: comment,
		ReleaseAmount: job.Amount * s.shareRate,
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(updated.ArtisanID, models.NotificationEscrowReleased, updated.ID,
		"The job was confirmed as completed and your escrow share has been released.")

	return updated, nil
}

// GetJob returns a job to one of its parties or an admin.
func (s *JobService) GetJob(ctx context.Context, jobID, actorID uuid.UUID, actorRole string) (*models.Job, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if !job.IsParty(actorID) && actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	return job, nil
}

// ListUserJobs returns the caller's jobs as client or artisan.
func (s *JobService) ListUserJobs(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Job, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.jobs.ListByUser(ctx, userID, limit, offset)
}

// GetInvoice returns the billing snapshot for a completed job, generating
// the invoice number on first request only. The snapshot is a deterministic
// function of the job row; rendering is an external concern.
func (s *JobService) GetInvoice(ctx context.Context, jobID, requesterID uuid.UUID, requesterRole string) (*models.Invoice, error) {
	job, err := s.jobs.GetByID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if !job.IsParty(requesterID) && requesterRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	if job.Status != models.JobStatusCompleted {
		return nil, apperror.New(apperror.ErrCodeValidation, "invoice is only available for completed jobs")
	}

	if job.InvoiceNumber == nil {
		now := time.Now()
		number := fmt.Sprintf("INV-%d-%06d", now.Year(), now.Unix()%1000000)
		job, err = s.jobs.EnsureInvoice(ctx, jobID, number, now)
		if err != nil {
			return nil, err
		}
	}

	share := job.Amount * s.shareRate
	invoice := &models.Invoice{
		InvoiceNumber: *job.InvoiceNumber,
		JobID:         job.ID,
		ClientID:      job.ClientID,
		ArtisanID:     job.ArtisanID,
		GrossAmount:   job.Amount,
		ArtisanShare:  share,
		PlatformFee:   job.Amount - share,
	}
	if job.InvoiceIssuedAt != nil {
		invoice.IssuedAt = *job.InvoiceIssuedAt
	}
	return invoice, nil
}

// notifyAsync stores a notification off the request path.
func (s *JobService) notifyAsync(userID uuid.UUID, ntype string, jobID uuid.UUID, message string) {
	id := jobID
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Notify(ctx, userID, ntype, &id, message)
	})
}
