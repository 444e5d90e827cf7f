package models

import (
	"time"

	"github.com/google/uuid"
)

// User is a marketplace participant: a client booking work, an artisan
// providing it, or an admin. Balance fields are mutated only through the
// transactional repository paths (payment verification, completion, dispute
// resolution and payouts).
type User struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Email            string     `db:"email" json:"email"`
	Name             string     `db:"name" json:"name"`
	PasswordHash     string     `db:"password_hash" json:"-"`
	Role             string     `db:"role" json:"role"`
	Phone            *string    `db:"phone" json:"phone,omitempty"`
	Location         *string    `db:"location" json:"location,omitempty"`
	ServiceType      *string    `db:"service_type" json:"service_type,omitempty"`
	IsVerified       bool       `db:"is_verified" json:"is_verified"`
	SubscriptionTier string     `db:"subscription_tier" json:"subscription_tier"`
	WalletBalance    float64    `db:"wallet_balance" json:"wallet_balance"`
	PendingBalance   float64    `db:"pending_balance" json:"pending_balance"`
	Rating           float64    `db:"rating" json:"rating"`
	RatingCount      int        `db:"rating_count" json:"rating_count"`
	LastLoginAt      *time.Time `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// BusySlot is a time window during which an artisan is unavailable.
// Invariant: StartsAt < EndsAt. The slot set per artisan is kept mutually
// non-overlapping on write.
type BusySlot struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ArtisanID uuid.UUID `db:"artisan_id" json:"artisan_id"`
	StartsAt  time.Time `db:"starts_at" json:"starts_at"`
	EndsAt    time.Time `db:"ends_at" json:"ends_at"`
	Note      *string   `db:"note" json:"note,omitempty"`
	Location  *string   `db:"location" json:"location,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// ArtisanSummary is the public browse/search projection of an artisan.
type ArtisanSummary struct {
	ID          uuid.UUID `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	ServiceType *string   `db:"service_type" json:"service_type,omitempty"`
	Location    *string   `db:"location" json:"location,omitempty"`
	IsVerified  bool      `db:"is_verified" json:"is_verified"`
	Rating      float64   `db:"rating" json:"rating"`
	RatingCount int       `db:"rating_count" json:"rating_count"`
}
