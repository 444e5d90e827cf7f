package models

// Roles
const (
	RoleClient  = "client"
	RoleArtisan = "artisan"
	RoleAdmin   = "admin"
)

// Job statuses
const (
	JobStatusPendingPayment       = "pending_payment"
	JobStatusPending              = "pending"
	JobStatusAwaitingConfirmation = "awaiting_confirmation"
	JobStatusPaid                 = "paid"
	JobStatusCompleted            = "completed"
	JobStatusCancelled            = "cancelled"
)

// Dispute statuses
const (
	DisputeStatusOpen        = "open"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
)

// Dispute resolutions
const (
	ResolutionReleaseToArtisan = "release_to_artisan"
	ResolutionRefundClient     = "refund_client"
	ResolutionHoldFunds        = "hold_funds"
)

// ValidJobStatuses lists the accepted job status values.
var ValidJobStatuses = map[string]struct{}{
	JobStatusPendingPayment:       {},
	JobStatusPending:              {},
	JobStatusAwaitingConfirmation: {},
	JobStatusPaid:                 {},
	JobStatusCompleted:            {},
	JobStatusCancelled:            {},
}

// ValidJobTransitions is the allowed-transition table for job statuses.
// Any status write not present here is rejected, rather than accepting
// arbitrary enum values.
var ValidJobTransitions = map[string][]string{
	JobStatusPendingPayment:       {JobStatusPaid, JobStatusPending, JobStatusCancelled},
	JobStatusPending:              {JobStatusPaid, JobStatusAwaitingConfirmation, JobStatusCompleted, JobStatusCancelled},
	JobStatusPaid:                 {JobStatusAwaitingConfirmation, JobStatusCompleted, JobStatusCancelled},
	JobStatusAwaitingConfirmation: {JobStatusCompleted, JobStatusCancelled},
	JobStatusCompleted:            {JobStatusCompleted},
	JobStatusCancelled:            {},
}

// CanTransitionJob reports whether a job may move from one status to another.
// Repeating "completed" is allowed so completion stays idempotent.
func CanTransitionJob(from, to string) bool {
	for _, allowed := range ValidJobTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidResolutions lists accepted dispute resolution values.
var ValidResolutions = map[string]struct{}{
	ResolutionReleaseToArtisan: {},
	ResolutionRefundClient:     {},
	ResolutionHoldFunds:        {},
}
