package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/artisanhub/backend/internal/models"
)

var (
	ErrPayoutNotFound    = errors.New("payout not found")
	ErrPayoutNotPending  = errors.New("payout is not pending")
	ErrInsufficientFunds = errors.New("insufficient wallet balance")
)

type PayoutRepository struct {
	db *sqlx.DB
}

func NewPayoutRepository(db *sqlx.DB) *PayoutRepository {
	return &PayoutRepository{db: db}
}

// Create reserves the payout: the wallet is checked and debited under a row
// lock and the pending payout row is written in the same transaction, so
// concurrent requests cannot double-spend the wallet.
func (r *PayoutRepository) Create(ctx context.Context, artisanID uuid.UUID, amount float64, momoNumber, network string) (*models.Payout, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var wallet float64
	err = tx.GetContext(ctx, &wallet, `SELECT wallet_balance FROM users WHERE id = $1 FOR UPDATE`, artisanID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	if wallet < amount {
		return nil, ErrInsufficientFunds
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET wallet_balance = wallet_balance - $2, updated_at = NOW() WHERE id = $1
	`, artisanID, amount)
	if err != nil {
		return nil, fmt.Errorf("payout repository: debit wallet: %w", err)
	}

	var p models.Payout
	err = tx.GetContext(ctx, &p, `
		INSERT INTO payouts (artisan_id, amount, momo_number, network, type, status)
		VALUES ($1, $2, $3, $4, 'payout', 'pending')
		RETURNING *
	`, artisanID, amount, momoNumber, network)
	if err != nil {
		return nil, fmt.Errorf("payout repository: insert payout: %w", err)
	}

	return &p, tx.Commit()
}

func (r *PayoutRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var p models.Payout
	err := r.db.GetContext(ctx, &p, `SELECT * FROM payouts WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrPayoutNotFound
	}
	return &p, err
}

func (r *PayoutRepository) ListByArtisan(ctx context.Context, artisanID uuid.UUID, limit, offset int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT * FROM payouts WHERE artisan_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, artisanID, limit, offset)
	return payouts, err
}

// ListPending returns the admin processing queue, oldest first.
func (r *PayoutRepository) ListPending(ctx context.Context, limit, offset int) ([]models.Payout, error) {
	var payouts []models.Payout
	err := r.db.SelectContext(ctx, &payouts, `
		SELECT * FROM payouts WHERE status = 'pending' ORDER BY created_at LIMIT $1 OFFSET $2
	`, limit, offset)
	return payouts, err
}

// Complete marks a pending payout as paid out. No balance movement: the
// wallet was already debited at request time.
func (r *PayoutRepository) Complete(ctx context.Context, id uuid.UUID) (*models.Payout, error) {
	var p models.Payout
	err := r.db.GetContext(ctx, &p, `
		UPDATE payouts SET status = 'completed', processed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, ErrPayoutNotPending
	}
	return &p, err
}

// Reject moves a pending payout to rejected and credits the debited amount
// back to the wallet in the same transaction.
func (r *PayoutRepository) Reject(ctx context.Context, id uuid.UUID, reason *string) (*models.Payout, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p models.Payout
	err = tx.GetContext(ctx, &p, `
		UPDATE payouts SET status = 'rejected', rejection_reason = $2, processed_at = NOW()
		WHERE id = $1 AND status = 'pending'
		RETURNING *
	`, id, reason)
	if errors.Is(err, sql.ErrNoRows) {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM payouts WHERE id = $1)`, id); err != nil {
			return nil, err
		}
		if !exists {
			return nil, ErrPayoutNotFound
		}
		return nil, ErrPayoutNotPending
	}
	if err != nil {
		return nil, fmt.Errorf("payout repository: reject: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users SET wallet_balance = wallet_balance + $2, updated_at = NOW() WHERE id = $1
	`, p.ArtisanID, p.Amount)
	if err != nil {
		return nil, fmt.Errorf("payout repository: credit back wallet: %w", err)
	}

	return &p, tx.Commit()
}
