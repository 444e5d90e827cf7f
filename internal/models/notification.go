package models

import (
	"time"

	"github.com/google/uuid"
)

// Notification lifecycle event types.
const (
	NotificationJobBooked       = "job_booked"
	NotificationJobPaid         = "job_paid"
	NotificationConfirmDelivery = "confirm_delivery"
	NotificationEscrowReleased  = "escrow_released"
	NotificationDisputeOpened   = "dispute_opened"
	NotificationDisputeResolved = "dispute_resolved"
	NotificationPayoutProcessed = "payout_processed"
)

type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Type      string     `db:"type" json:"type"`
	JobID     *uuid.UUID `db:"job_id" json:"job_id,omitempty"`
	Message   string     `db:"message" json:"message"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
