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
	ErrUserNotFound = errors.New("user not found")
	ErrSlotNotFound = errors.New("busy slot not found")
	ErrSlotOverlap  = errors.New("busy slot overlaps an existing slot")
)

type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (email, name, password_hash, role, phone, location, service_type, subscription_tier)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at
	`
	tier := user.SubscriptionTier
	if tier == "" {
		tier = "free"
	}
	return r.db.QueryRowContext(ctx, query,
		user.Email, user.Name, user.PasswordHash, user.Role,
		user.Phone, user.Location, user.ServiceType, tier,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT * FROM users WHERE email = $1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	return &user, err
}

func (r *UserRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET last_login_at = NOW() WHERE id = $1`, userID)
	return err
}

// SetVerified flips the artisan identity verification flag (admin action).
func (r *UserRepository) SetVerified(ctx context.Context, userID uuid.UUID, verified bool) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users SET is_verified = $2, updated_at = NOW() WHERE id = $1 AND role = 'artisan'
	`, userID, verified)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListArtisans returns the public artisan directory, optionally filtered by
// service type and location.
func (r *UserRepository) ListArtisans(ctx context.Context, serviceType, location string, limit, offset int) ([]models.ArtisanSummary, error) {
	var artisans []models.ArtisanSummary
	query := `
		SELECT id, name, service_type, location, is_verified, rating, rating_count
		FROM users
		WHERE role = 'artisan'
		  AND ($1 = '' OR service_type ILIKE '%' || $1 || '%')
		  AND ($2 = '' OR location ILIKE '%' || $2 || '%')
		ORDER BY rating DESC, rating_count DESC
		LIMIT $3 OFFSET $4
	`
	err := r.db.SelectContext(ctx, &artisans, query, serviceType, location, limit, offset)
	return artisans, err
}

// ListBusySlots returns an artisan's busy windows ordered by start time.
func (r *UserRepository) ListBusySlots(ctx context.Context, artisanID uuid.UUID) ([]models.BusySlot, error) {
	var slots []models.BusySlot
	err := r.db.SelectContext(ctx, &slots, `
		SELECT * FROM busy_slots WHERE artisan_id = $1 ORDER BY starts_at
	`, artisanID)
	return slots, err
}

// AddBusySlot inserts a busy window after checking, under a row lock on the
// artisan's existing slots, that it does not overlap any of them. Keeps the
// per-artisan slot set mutually non-overlapping under concurrent writes.
func (r *UserRepository) AddBusySlot(ctx context.Context, slot *models.BusySlot) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var existing []models.BusySlot
	err = tx.SelectContext(ctx, &existing, `
		SELECT * FROM busy_slots WHERE artisan_id = $1 FOR UPDATE
	`, slot.ArtisanID)
	if err != nil {
		return fmt.Errorf("user repository: lock busy slots: %w", err)
	}

	for _, s := range existing {
		if s.StartsAt.Before(slot.EndsAt) && s.EndsAt.After(slot.StartsAt) {
			return ErrSlotOverlap
		}
	}

	err = tx.GetContext(ctx, slot, `
		INSERT INTO busy_slots (artisan_id, starts_at, ends_at, note, location)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`, slot.ArtisanID, slot.StartsAt, slot.EndsAt, slot.Note, slot.Location)
	if err != nil {
		return fmt.Errorf("user repository: insert busy slot: %w", err)
	}

	return tx.Commit()
}

func (r *UserRepository) RemoveBusySlot(ctx context.Context, artisanID, slotID uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM busy_slots WHERE id = $1 AND artisan_id = $2
	`, slotID, artisanID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrSlotNotFound
	}
	return nil
}
