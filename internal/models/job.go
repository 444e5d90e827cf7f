package models

import (
	"time"

	"github.com/google/uuid"
)

// Job represents one service engagement between a client and an artisan.
// Parties are immutable after creation; rows are never deleted.
type Job struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	ClientID         uuid.UUID  `db:"client_id" json:"client_id"`
	ArtisanID        uuid.UUID  `db:"artisan_id" json:"artisan_id"`
	ServiceType      string     `db:"service_type" json:"service_type"`
	Description      *string    `db:"description" json:"description,omitempty"`
	Amount           float64    `db:"amount" json:"amount"`
	ScheduledStartAt time.Time  `db:"scheduled_start_at" json:"scheduled_start_at"`
	ScheduledEndAt   time.Time  `db:"scheduled_end_at" json:"scheduled_end_at"`
	Status           string     `db:"status" json:"status"`
	Rating           *int       `db:"rating" json:"rating,omitempty"`
	ReviewComment    *string    `db:"review_comment" json:"review_comment,omitempty"`
	PaymentReference *string    `db:"payment_reference" json:"payment_reference,omitempty"`
	CompletedAt      *time.Time `db:"completed_at" json:"completed_at,omitempty"`
	EscrowReleasedAt *time.Time `db:"escrow_released_at" json:"escrow_released_at,omitempty"`
	InvoiceNumber    *string    `db:"invoice_number" json:"invoice_number,omitempty"`
	InvoiceIssuedAt  *time.Time `db:"invoice_issued_at" json:"invoice_issued_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// ScheduledDate is the nominal calendar date of the booked window,
// derived for display only.
func (j *Job) ScheduledDate() string {
	return j.ScheduledStartAt.Format("2006-01-02")
}

// IsParty reports whether the given user is the job's client or artisan.
func (j *Job) IsParty(userID uuid.UUID) bool {
	return userID == j.ClientID || userID == j.ArtisanID
}

// Invoice is the immutable billing snapshot of a completed job. Rendering to
// a document is delegated to an external service; this is the contract it
// consumes.
type Invoice struct {
	InvoiceNumber string    `json:"invoice_number"`
	IssuedAt      time.Time `json:"issued_at"`
	JobID         uuid.UUID `json:"job_id"`
	ClientID      uuid.UUID `json:"client_id"`
	ArtisanID     uuid.UUID `json:"artisan_id"`
	GrossAmount   float64   `json:"gross_amount"`
	ArtisanShare  float64   `json:"artisan_share"`
	PlatformFee   float64   `json:"platform_fee"`
}
