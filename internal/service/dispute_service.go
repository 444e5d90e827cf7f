package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
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

// DisputeRepository describes the dispute store used by DisputeService.
type DisputeRepository interface {
	Create(ctx context.Context, d *models.Dispute) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error)
	GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Dispute, error)
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error)
	ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]models.Evidence, error)
	AddEvidence(ctx context.Context, e *models.Evidence, markUnderReview bool) error
	Resolve(ctx context.Context, p repository.ResolveParams) (*models.Dispute, error)
}

// DisputeJobRepository is the job lookup the dispute flow needs.
type DisputeJobRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error)
}

// DisputeService handles opening disputes, evidence, and admin adjudication.
type DisputeService struct {
	disputes  DisputeRepository
	jobs      DisputeJobRepository
	notifier  Notifier
	shareRate float64
}

func NewDisputeService(disputes DisputeRepository, jobs DisputeJobRepository, notifier Notifier, disputeShareRate float64) *DisputeService {
	return &DisputeService{
		disputes:  disputes,
		jobs:      jobs,
		notifier:  notifier,
		shareRate: disputeShareRate,
	}
}

// OpenDisputeInput carries a new dispute. Evidence supplied at open time is
// attached without moving the dispute out of open.
type OpenDisputeInput struct {
	JobID       uuid.UUID
	Reason      string
	Description *string
	Evidence    []EvidenceInput
}

// EvidenceInput is one evidence item to attach.
type EvidenceInput struct {
	ImageURL string
	Note     *string
}

// Open raises a dispute on a job. Only a party of the job may raise one, and
// a job can have at most one dispute over its lifetime.
func (s *DisputeService) Open(ctx context.Context, raiserID uuid.UUID, in OpenDisputeInput) (*models.Dispute, error) {
	if err := validation.ValidateNonEmpty("reason", in.Reason); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateLength("reason", in.Reason, 0, validation.MaxReasonLength); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	job, err := s.jobs.GetByID(ctx, in.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}
	if !job.IsParty(raiserID) {
		return nil, apperror.ErrForbidden
	}

	d := &models.Dispute{
		TicketID:    newTicketID(),
		JobID:       job.ID,
		ClientID:    job.ClientID,
		ArtisanID:   job.ArtisanID,
		RaisedBy:    raiserID,
		Reason:      in.Reason,
		Description: in.Description,
		Status:      models.DisputeStatusOpen,
	}
	if err := s.disputes.Create(ctx, d); err != nil {
		if errors.Is(err, repository.ErrDisputeExists) {
			return nil, apperror.ErrDisputeExists
		}
		return nil, err
	}

	for i := range in.Evidence {
		e := &models.Evidence{
			DisputeID:  d.ID,
			ImageURL:   in.Evidence[i].ImageURL,
			Note:       in.Evidence[i].Note,
			UploadedBy: raiserID,
		}
		if err := s.disputes.AddEvidence(ctx, e, false); err != nil {
			return nil, err
		}
	}

	counterparty := job.ArtisanID
	if raiserID == job.ArtisanID {
		counterparty = job.ClientID
	}
	s.notifyDispute(counterparty, models.NotificationDisputeOpened, job.ID,
		fmt.Sprintf("A dispute (%s) was opened on your %s job.", d.TicketID, job.ServiceType))

	return d, nil
}

// AddEvidence attaches an evidence item to a dispute. Either party or an
// admin may contribute. The first evidence added after opening moves the
// dispute to under_review; the move is one-way and never reopens a
// resolved dispute.
func (s *DisputeService) AddEvidence(ctx context.Context, disputeID, actorID uuid.UUID, actorRole string, in EvidenceInput) (*models.Evidence, error) {
	if err := validation.ValidateNonEmpty("image url", in.ImageURL); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	d, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}
	if !d.IsParty(actorID) && actorRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	if d.Status == models.DisputeStatusResolved {
		return nil, apperror.ErrDisputeResolved
	}

	e := &models.Evidence{
		DisputeID:  disputeID,
		ImageURL:   in.ImageURL,
		Note:       in.Note,
		UploadedBy: actorID,
	}
	if err := s.disputes.AddEvidence(ctx, e, d.Status == models.DisputeStatusOpen); err != nil {
		return nil, err
	}
	return e, nil
}

// GetDispute returns a dispute with its evidence to a party or an admin.
func (s *DisputeService) GetDispute(ctx context.Context, disputeID, actorID uuid.UUID, actorRole string) (*models.Dispute, []models.Evidence, error) {
	d, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, nil, apperror.ErrDisputeNotFound
		}
		return nil, nil, err
	}
	return s.withEvidence(ctx, d, actorID, actorRole)
}

// GetJobDispute returns the dispute raised on a job, if any. A job carries
// at most one dispute over its lifetime, so the lookup is unambiguous.
func (s *DisputeService) GetJobDispute(ctx context.Context, jobID, actorID uuid.UUID, actorRole string) (*models.Dispute, []models.Evidence, error) {
	d, err := s.disputes.GetByJobID(ctx, jobID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, nil, apperror.ErrDisputeNotFound
		}
		return nil, nil, err
	}
	return s.withEvidence(ctx, d, actorID, actorRole)
}

func (s *DisputeService) withEvidence(ctx context.Context, d *models.Dispute, actorID uuid.UUID, actorRole string) (*models.Dispute, []models.Evidence, error) {
	if !d.IsParty(actorID) && actorRole != models.RoleAdmin {
		return nil, nil, apperror.ErrForbidden
	}
	evidence, err := s.disputes.ListEvidence(ctx, d.ID)
	if err != nil {
		return nil, nil, err
	}
	return d, evidence, nil
}

// ListUserDisputes returns the caller's disputes as client or artisan.
func (s *DisputeService) ListUserDisputes(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.disputes.ListByUser(ctx, userID, limit, offset)
}

// Resolve applies an admin verdict. The dispute moves to resolved exactly
// once; a second call surfaces Conflict without touching any balance. The
// job is steered to the status implied by the verdict.
func (s *DisputeService) Resolve(ctx context.Context, disputeID, adminID uuid.UUID, adminRole, resolution string, adminNotes *string) (*models.Dispute, error) {
	if adminRole != models.RoleAdmin {
		return nil, apperror.ErrForbidden
	}
	if _, ok := models.ValidResolutions[resolution]; !ok {
		return nil, apperror.New(apperror.ErrCodeValidation, fmt.Sprintf("unknown resolution %q", resolution))
	}

	d, err := s.disputes.GetByID(ctx, disputeID)
	if err != nil {
		if errors.Is(err, repository.ErrDisputeNotFound) {
			return nil, apperror.ErrDisputeNotFound
		}
		return nil, err
	}

	job, err := s.jobs.GetByID(ctx, d.JobID)
	if err != nil {
		if errors.Is(err, repository.ErrJobNotFound) {
			return nil, apperror.ErrJobNotFound
		}
		return nil, err
	}

	var jobStatus string
	switch resolution {
	case models.ResolutionReleaseToArtisan:
		jobStatus = models.JobStatusCompleted
	case models.ResolutionRefundClient:
		jobStatus = models.JobStatusCancelled
	case models.ResolutionHoldFunds:
		jobStatus = models.JobStatusPending
	}

	resolved, err := s.disputes.Resolve(ctx, repository.ResolveParams{
		DisputeID:    disputeID,
		Resolution:   resolution,
		ArtisanShare: job.Amount * s.shareRate,
		AdminNotes:   adminNotes,
		ResolvedBy:   adminID,
		JobStatus:    jobStatus,
	})
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDisputeNotFound):
			return nil, apperror.ErrDisputeNotFound
		case errors.Is(err, repository.ErrDisputeResolved):
			return nil, apperror.ErrDisputeResolved
		default:
			return nil, err
		}
	}

	message := fmt.Sprintf("Dispute %s was resolved: %s.", resolved.TicketID, resolution)
	s.notifyDispute(resolved.ClientID, models.NotificationDisputeResolved, resolved.JobID, message)
	s.notifyDispute(resolved.ArtisanID, models.NotificationDisputeResolved, resolved.JobID, message)

	return resolved, nil
}

func (s *DisputeService) notifyDispute(userID uuid.UUID, ntype string, jobID uuid.UUID, message string) {
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

// newTicketID builds a human-quotable ticket reference.
func newTicketID() string {
	buf := make([]byte, 3)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("TKT-%d", time.Now().UnixNano())
	}
	return fmt.Sprintf("TKT-%d-%s", time.Now().Unix(), hex.EncodeToString(buf))
}
