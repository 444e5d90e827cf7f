package models

import (
	"time"

	"github.com/google/uuid"
)

// Dispute is a contested job outcome. At most one dispute ever exists per
// job (unique constraint on job_id). Client and artisan are denormalized
// from the job at creation time.
type Dispute struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	TicketID    string     `db:"ticket_id" json:"ticket_id"`
	JobID       uuid.UUID  `db:"job_id" json:"job_id"`
	ClientID    uuid.UUID  `db:"client_id" json:"client_id"`
	ArtisanID   uuid.UUID  `db:"artisan_id" json:"artisan_id"`
	RaisedBy    uuid.UUID  `db:"raised_by" json:"raised_by"`
	Reason      string     `db:"reason" json:"reason"`
	Description *string    `db:"description" json:"description,omitempty"`
	Status      string     `db:"status" json:"status"`
	Resolution  *string    `db:"resolution" json:"resolution,omitempty"`
	AdminNotes  *string    `db:"admin_notes" json:"admin_notes,omitempty"`
	ResolvedBy  *uuid.UUID `db:"resolved_by" json:"resolved_by,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
}

// Evidence is one append-only item contributed to a dispute by either party
// or an admin.
type Evidence struct {
	ID         uuid.UUID `db:"id" json:"id"`
	DisputeID  uuid.UUID `db:"dispute_id" json:"dispute_id"`
	ImageURL   string    `db:"image_url" json:"image_url"`
	Note       *string   `db:"note" json:"note,omitempty"`
	UploadedBy uuid.UUID `db:"uploaded_by" json:"uploaded_by"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// IsParty reports whether the given user is the dispute's client or artisan.
func (d *Dispute) IsParty(userID uuid.UUID) bool {
	return userID == d.ClientID || userID == d.ArtisanID
}
