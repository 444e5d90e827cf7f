package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/artisanhub/backend/internal/models"
)

var (
	ErrDisputeNotFound = errors.New("dispute not found")
	ErrDisputeExists   = errors.New("dispute already exists for this job")
	ErrDisputeResolved = errors.New("dispute has already been resolved")
)

const pqUniqueViolation = "23505"

type DisputeRepository struct {
	db *sqlx.DB
}

func NewDisputeRepository(db *sqlx.DB) *DisputeRepository {
	return &DisputeRepository{db: db}
}

// Create inserts a dispute. The unique index on job_id enforces at most one
// dispute per job, ever; a violation surfaces as ErrDisputeExists.
func (r *DisputeRepository) Create(ctx context.Context, d *models.Dispute) error {
	query := `
		INSERT INTO disputes (ticket_id, job_id, client_id, artisan_id, raised_by, reason, description, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	err := r.db.QueryRowContext(ctx, query,
		d.TicketID, d.JobID, d.ClientID, d.ArtisanID, d.RaisedBy, d.Reason, d.Description, d.Status,
	).Scan(&d.ID, &d.CreatedAt)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
		return ErrDisputeExists
	}
	return err
}

func (r *DisputeRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	return &d, err
}

func (r *DisputeRepository) GetByJobID(ctx context.Context, jobID uuid.UUID) (*models.Dispute, error) {
	var d models.Dispute
	err := r.db.GetContext(ctx, &d, `SELECT * FROM disputes WHERE job_id = $1`, jobID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrDisputeNotFound
	}
	return &d, err
}

func (r *DisputeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.Dispute, error) {
	var disputes []models.Dispute
	err := r.db.SelectContext(ctx, &disputes, `
		SELECT * FROM disputes WHERE client_id = $1 OR artisan_id = $1
		ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	return disputes, err
}

func (r *DisputeRepository) ListEvidence(ctx context.Context, disputeID uuid.UUID) ([]models.Evidence, error) {
	var evidence []models.Evidence
	err := r.db.SelectContext(ctx, &evidence, `
		SELECT * FROM evidence WHERE dispute_id = $1 ORDER BY created_at
	`, disputeID)
	return evidence, err
}

// AddEvidence appends an evidence item; when markUnderReview is set it also
// flips an open dispute to under_review in the same transaction. The flip is
// one-way: evidence added while already under_review or resolved leaves the
// status untouched.
func (r *DisputeRepository) AddEvidence(ctx context.Context, e *models.Evidence, markUnderReview bool) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	err = tx.GetContext(ctx, e, `
		INSERT INTO evidence (dispute_id, image_url, note, uploaded_by)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`, e.DisputeID, e.ImageURL, e.Note, e.UploadedBy)
	if err != nil {
		return fmt.Errorf("dispute repository: add evidence: %w", err)
	}

	if markUnderReview {
		_, err = tx.ExecContext(ctx, `
			UPDATE disputes SET status = 'under_review' WHERE id = $1 AND status = 'open'
		`, e.DisputeID)
		if err != nil {
			return fmt.Errorf("dispute repository: flip to under_review: %w", err)
		}
	}

	return tx.Commit()
}

// ResolveParams carries a terminal admin verdict. ArtisanShare is the
// dispute-rate share of the job amount; the repository clamps the actual
// balance movement against the artisan's current pending balance.
type ResolveParams struct {
	DisputeID    uuid.UUID
	Resolution   string
	ArtisanShare float64
	AdminNotes   *string
	ResolvedBy   uuid.UUID
	JobStatus    string
}

// Resolve applies an admin verdict in one transaction: the dispute row moves
// to resolved (only from open or under_review, so re-resolution cannot
// reapply balance deltas), the job status is written, and the balance
// movement for the chosen resolution is applied.
func (r *DisputeRepository) Resolve(ctx context.Context, p ResolveParams) (*models.Dispute, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var d models.Dispute
	err = tx.GetContext(ctx, &d, `
		UPDATE disputes SET
			status = 'resolved',
			resolution = $2,
			admin_notes = $3,
			resolved_by = $4,
			resolved_at = NOW()
		WHERE id = $1 AND status IN ('open', 'under_review')
		RETURNING *
	`, p.DisputeID, p.Resolution, p.AdminNotes, p.ResolvedBy)
	if errors.Is(err, sql.ErrNoRows) {
		var status string
		if err := tx.GetContext(ctx, &status, `SELECT status FROM disputes WHERE id = $1`, p.DisputeID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, ErrDisputeNotFound
			}
			return nil, err
		}
		return nil, ErrDisputeResolved
	}
	if err != nil {
		return nil, fmt.Errorf("dispute repository: resolve: %w", err)
	}

	switch p.Resolution {
	case models.ResolutionReleaseToArtisan:
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET
				wallet_balance = wallet_balance + LEAST(GREATEST(pending_balance, 0), $2),
				pending_balance = pending_balance - LEAST(GREATEST(pending_balance, 0), $2),
				updated_at = NOW()
			WHERE id = $1
		`, d.ArtisanID, p.ArtisanShare)
		if err != nil {
			return nil, fmt.Errorf("dispute repository: release to artisan: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return nil, err
		} else if affected == 0 {
			return nil, ErrUserNotFound
		}
	case models.ResolutionRefundClient:
		res, err := tx.ExecContext(ctx, `
			UPDATE users SET
				pending_balance = GREATEST(pending_balance - $2, 0),
				updated_at = NOW()
			WHERE id = $1
		`, d.ArtisanID, p.ArtisanShare)
		if err != nil {
			return nil, fmt.Errorf("dispute repository: claw back pending: %w", err)
		}
		if affected, err := res.RowsAffected(); err != nil {
			return nil, err
		} else if affected == 0 {
			return nil, ErrUserNotFound
		}
	case models.ResolutionHoldFunds:
		// No balance movement; the job goes back to pending.
	}

	jobUpdate := `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`
	if p.JobStatus == models.JobStatusCompleted {
		jobUpdate = `
			UPDATE jobs SET status = $2,
				completed_at = COALESCE(completed_at, NOW()),
				escrow_released_at = COALESCE(escrow_released_at, NOW()),
				updated_at = NOW()
			WHERE id = $1
		`
	}
	res, err := tx.ExecContext(ctx, jobUpdate, d.JobID, p.JobStatus)
	if err != nil {
		return nil, fmt.Errorf("dispute repository: update job status: %w", err)
	}
	if affected, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if affected == 0 {
		return nil, ErrJobNotFound
	}

	return &d, tx.Commit()
}
