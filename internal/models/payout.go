package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PayoutStatusPending   = "pending"
	PayoutStatusCompleted = "completed"
	PayoutStatusRejected  = "rejected"
)

// Payout is an artisan withdrawal request to a mobile money account.
// The wallet is debited at request time; a rejection credits it back.
type Payout struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	ArtisanID       uuid.UUID  `db:"artisan_id" json:"artisan_id"`
	Amount          float64    `db:"amount" json:"amount"`
	MomoNumber      string     `db:"momo_number" json:"momo_number"`
	Network         string     `db:"network" json:"network"`
	Type            string     `db:"type" json:"type"`
	Status          string     `db:"status" json:"status"`
	RejectionReason *string    `db:"rejection_reason" json:"rejection_reason,omitempty"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	ProcessedAt     *time.Time `db:"processed_at" json:"processed_at,omitempty"`
}
