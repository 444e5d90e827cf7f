package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/artisanhub/backend/internal/goroutine"
	"github.com/artisanhub/backend/internal/models"
	"github.com/artisanhub/backend/internal/paystack"
	"github.com/artisanhub/backend/internal/pkg/apperror"
	"github.com/artisanhub/backend/internal/repository"
	"github.com/artisanhub/backend/internal/schedule"
	"github.com/artisanhub/backend/internal/validation"
)

// PaymentJobRepository is the slice of the job store the payment flow needs.
type PaymentJobRepository interface {
	Create(ctx context.Context, job *models.Job) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
	GetByPaymentReference(ctx context.Context, reference string) (*models.Job, error)
	SetPaymentReference(ctx context.Context, jobID uuid.UUID, reference string) error
	MarkPaid(ctx context.Context, jobID uuid.UUID, pendingCredit float64) (bool, error)
}

// PaymentProcessor abstracts the external gateway.
type PaymentProcessor interface {
	InitializeTransaction(ctx context.Context, email string, amount float64, currency, callbackURL string, metadata map[string]string) (*paystack.InitResult, error)
	VerifyTransaction(ctx context.Context, reference string) (*paystack.VerifyResult, error)
}

// PaymentUserDirectory resolves users for the payment flow.
type PaymentUserDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// PaymentService coordinates escrow funding with the external processor.
// The processor holds the money; this service only tracks the job state and
// the artisan's pending (escrow-held) balance.
type PaymentService struct {
	jobs          PaymentJobRepository
	users         PaymentUserDirectory
	processor     PaymentProcessor
	notifier      Notifier
	currency      string
	callbackURL   string
	shareRate     float64
	defaultWindow time.Duration
}

func NewPaymentService(jobs PaymentJobRepository, users PaymentUserDirectory, processor PaymentProcessor, notifier Notifier, currency, callbackURL string, invoiceShareRate float64, defaultWindow time.Duration) *PaymentService {
	if defaultWindow <= 0 {
		defaultWindow = schedule.DefaultWindowLength
	}
	return &PaymentService{
		jobs:          jobs,
		users:         users,
		processor:     processor,
		notifier:      notifier,
		currency:      currency,
		callbackURL:   callbackURL,
		shareRate:     invoiceShareRate,
		defaultWindow: defaultWindow,
	}
}

// InitializePaymentInput is the pay-first booking request.
type InitializePaymentInput struct {
	ArtisanID   uuid.UUID
	ServiceType string
	Description *string
	Date        string
	StartAt     *time.Time
	EndAt       *time.Time
	Amount      float64
}

// InitializeResult pairs the placeholder job with the processor's redirect
// handle.
type InitializeResult struct {
	Job              *models.Job `json:"job"`
	AuthorizationURL string      `json:"authorization_url"`
	AccessCode       string      `json:"access_code"`
	Reference        string      `json:"reference"`
}

// Initialize creates a placeholder job in pending_payment before contacting
// the processor, then requests an authorization handle with the job id as
// correlation metadata. The job is deliberately not rolled back when the
// processor call fails; verification can still pick it up via the reference
// once the client retries.
func (s *PaymentService) Initialize(ctx context.Context, clientID uuid.UUID, in InitializePaymentInput) (*InitializeResult, error) {
	if err := validation.ValidateNonEmpty("service type", in.ServiceType); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	client, err := s.users.GetByID(ctx, clientID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, apperror.ErrUserNotFound
		}
		return nil, err
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

	job := &models.Job{
		ClientID:         clientID,
		ArtisanID:        in.ArtisanID,
		ServiceType:      in.ServiceType,
		Description:      in.Description,
		Amount:           in.Amount,
		ScheduledStartAt: window.Start,
		ScheduledEndAt:   window.End,
		Status:           models.JobStatusPendingPayment,
	}
	if err := s.jobs.Create(ctx, job); err != nil {
		return nil, err
	}

	init, err := s.processor.InitializeTransaction(ctx, client.Email, job.Amount, s.currency, s.callbackURL, map[string]string{
		"job_id": job.ID.String(),
	})
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "payment initialization failed")
	}

	if err := s.jobs.SetPaymentReference(ctx, job.ID, init.Reference); err != nil {
		return nil, err
	}
	job.PaymentReference = &init.Reference

	return &InitializeResult{
		Job:              job,
		AuthorizationURL: init.AuthorizationURL,
		AccessCode:       init.AccessCode,
		Reference:        init.Reference,
	}, nil
}

// Verify queries the processor for a transaction and, on success, moves the
// correlated job to paid and credits the artisan's escrow-held share. Safe
// to repeat: an already-paid job verifies again without a second credit.
func (s *PaymentService) Verify(ctx context.Context, reference string) (*models.Job, error) {
	if err := validation.ValidateNonEmpty("reference", reference); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	result, err := s.processor.VerifyTransaction(ctx, reference)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeUpstream, "payment verification failed")
	}

	job, err := s.lookupJob(ctx, reference, result.Metadata)
	if err != nil {
		return nil, err
	}

	if result.Status != paystack.StatusSuccess {
		// Not confirmed yet (or failed). The job stays where it is so a
		// later verification can still succeed.
		return nil, apperror.ErrPaymentNotConfirmed
	}

	credited, err := s.jobs.MarkPaid(ctx, job.ID, job.Amount*s.shareRate)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	if credited {
		s.notifyJob(job.ArtisanID, models.NotificationJobPaid, job.ID,
			fmt.Sprintf("Payment received for your %s job. Funds are held in escrow.", job.ServiceType))
	}

	return s.jobs.GetByID(ctx, job.ID)
}

// lookupJob resolves the job by stored reference first, falling back to the
// job_id metadata the processor echoes back. The fallback covers jobs whose
// reference write was lost after initialization.
func (s *PaymentService) lookupJob(ctx context.Context, reference string, metadata map[string]string) (*models.Job, error) {
	job, err := s.jobs.GetByPaymentReference(ctx, reference)
	if err == nil {
		return job, nil
	}
	if !errors.Is(err, repository.ErrJobNotFound) {
		return nil, err
	}

	if raw, ok := metadata["job_id"]; ok {
		id, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return nil, apperror.New(apperror.ErrCodeValidation, "malformed job reference in processor metadata")
		}
		job, err = s.jobs.GetByID(ctx, id)
		if err == nil {
			return job, nil
		}
		if !errors.Is(err, repository.ErrJobNotFound) {
			return nil, err
		}
	}

	return nil, apperror.ErrJobNotFound
}

func (s *PaymentService) notifyJob(userID uuid.UUID, ntype string, jobID uuid.UUID, message string) {
	if s.notifier == nil {
		return
	}
	id := jobID
	goroutine.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.notifier.Notify(ctx, userID, ntype, &id, message)
	})
}
