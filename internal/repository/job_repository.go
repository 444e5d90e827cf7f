package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/artisanhub/backend/internal/models"
)

var ErrJobNotFound = errors.New("job not found")

type JobRepository struct {
	db *sqlx.DB
}

func NewJobRepository(db *sqlx.DB) *JobRepository {
	return &JobRepository{db: db}
}

func (r *JobRepository) Create(ctx context.Context, job *models.Job) error {
	query := `
		INSERT INTO jobs (client_id, artisan_id, service_type, description, amount,
			scheduled_start_at, scheduled_end_at, status, payment_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at
	`
	return r.db.QueryRowContext(ctx, query,
		job.ClientID, job.ArtisanID, job.ServiceType, job.Description, job.Amount,
		job.ScheduledStartAt, job.ScheduledEndAt, job.Status, job.PaymentReference,
	).Scan(&job.ID, &job.CreatedAt, &job.UpdatedAt)
}

func (r *JobRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return &job, err
}

func (r *JobRepository) GetByPaymentReference(ctx context.Context, reference string) (*models.Job, error) {
	var job models.Job
	err := r.db.GetContext(ctx, &job, `SELECT * FROM jobs WHERE payment_reference = $1`, reference)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	return &job, err
}

// SetPaymentReference stores the processor's correlation reference.
func (r *JobRepository) SetPaymentReference(ctx context.Context, jobID uuid.UUID, reference string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET payment_reference = $2, updated_at = NOW() WHERE id = $1
	`, jobID, reference)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// ListByUser returns jobs where the user is either party, newest first.
func (r *JobRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Job, error) {
	var jobs []models.Job
	err := r.db.SelectContext(ctx, &jobs, `
		SELECT * FROM jobs WHERE client_id = $1 OR artisan_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return jobs, err
}

// UpdateStatus writes a status with no side effects. Transition validity is
// checked by the service layer.
func (r *JobRepository) UpdateStatus(ctx context.Context, jobID uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1
	`, jobID, status)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrJobNotFound
	}
	return nil
}

// MarkPaid transitions the job to paid and credits the artisan's pending
// balance with the escrow-held share, both in one transaction. The credit
// applies only on the first transition, so repeated payment verifications
// are safe. Returns false when the job was already paid.
func (r *JobRepository) MarkPaid(ctx context.Context, jobID uuid.UUID, pendingCredit float64) (bool, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var artisanID uuid.UUID
	err = tx.GetContext(ctx, &artisanID, `
		UPDATE jobs SET status = 'paid', updated_at = NOW()
		WHERE id = $1 AND status IN ('pending_payment', 'pending')
		RETURNING artisan_id
	`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		// Already transitioned, or the job does not exist.
		var status string
		err = tx.GetContext(ctx, &status, `SELECT status FROM jobs WHERE id = $1`, jobID)
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrJobNotFound
		}
		if err != nil {
			return false, err
		}
		return false, tx.Commit()
	}
	if err != nil {
		return false, fmt.Errorf("job repository: mark paid: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET pending_balance = pending_balance + $2, updated_at = NOW()
		WHERE id = $1
	`, artisanID, pendingCredit)
	if err != nil {
		return false, fmt.Errorf("job repository: credit pending balance: %w", err)
	}

	return true, tx.Commit()
}

// CompleteParams carries the completion write. ReleaseAmount is the escrow
// share to move from the artisan's pending balance to the wallet on the
// first completion.
type CompleteParams struct {
	JobID         uuid.UUID
	Rating        *int
	ReviewComment *string
	ReleaseAmount float64
}

// Complete marks the job completed in a single transaction: completion
// timestamps are set once (idempotent on repeat calls), the escrow share is
// released on first completion only, and the artisan's aggregate rating is
// fully recomputed from all rated completed jobs.
func (r *JobRepository) Complete(ctx context.Context, p CompleteParams) (*models.Job, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var before models.Job
	err = tx.GetContext(ctx, &before, `SELECT * FROM jobs WHERE id = $1 FOR UPDATE`, p.JobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, err
	}

	firstCompletion := before.EscrowReleasedAt == nil

	var job models.Job
	err = tx.GetContext(ctx, &job, `
		UPDATE jobs SET
			status = 'completed',
			completed_at = COALESCE(completed_at, NOW()),
			escrow_released_at = COALESCE(escrow_released_at, NOW()),
			rating = COALESCE($2, rating),
			review_comment = COALESCE($3, review_comment),
			updated_at = NOW()
		WHERE id = $1
		RETURNING *
	`, p.JobID, p.Rating, p.ReviewComment)
	if err != nil {
		return nil, fmt.Errorf("job repository: complete: %w", err)
	}

	if firstCompletion && p.ReleaseAmount > 0 {
		_, err = tx.ExecContext(ctx, `
			UPDATE users SET
				wallet_balance = wallet_balance + LEAST(GREATEST(pending_balance, 0), $2),
				pending_balance = pending_balance - LEAST(GREATEST(pending_balance, 0), $2),
				updated_at = NOW()
			WHERE id = $1
		`, job.ArtisanID, p.ReleaseAmount)
		if err != nil {
			return nil, fmt.Errorf("job repository: release escrow: %w", err)
		}
	}

	if p.Rating != nil {
		if err := recomputeArtisanRating(ctx, tx, job.ArtisanID); err != nil {
			return nil, err
		}
	}

	return &job, tx.Commit()
}

// recomputeArtisanRating recalculates the aggregate as the mean over all
// rated completed jobs. Full recompute, not incremental: each call reads a
// fresh snapshot, so concurrent completions cannot drift the aggregate.
func recomputeArtisanRating(ctx context.Context, tx *sqlx.Tx, artisanID uuid.UUID) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			rating = COALESCE((
				SELECT AVG(rating)::float8 FROM jobs
				WHERE artisan_id = $1 AND status = 'completed' AND rating IS NOT NULL
			), 0),
			rating_count = (
				SELECT COUNT(*) FROM jobs
				WHERE artisan_id = $1 AND status = 'completed' AND rating IS NOT NULL
			),
			updated_at = NOW()
		WHERE id = $1
	`, artisanID)
	if err != nil {
		return fmt.Errorf("job repository: recompute rating: %w", err)
	}
	return nil
}

// EnsureInvoice assigns the invoice number and issue time if the job does
// not have one yet, then returns the current row. The conditional write
// makes repeated invoice requests return the same number.
func (r *JobRepository) EnsureInvoice(ctx context.Context, jobID uuid.UUID, number string, issuedAt time.Time) (*models.Job, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE jobs SET invoice_number = $2, invoice_issued_at = $3, updated_at = NOW()
		WHERE id = $1 AND invoice_number IS NULL
	`, jobID, number, issuedAt)
	if err != nil {
		return nil, fmt.Errorf("job repository: ensure invoice: %w", err)
	}
	return r.GetByID(ctx, jobID)
}
