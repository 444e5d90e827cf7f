package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransitionJob(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{JobStatusPendingPayment, JobStatusPaid, true},
		{JobStatusPendingPayment, JobStatusCancelled, true},
		{JobStatusPendingPayment, JobStatusCompleted, false},
		{JobStatusPending, JobStatusCompleted, true},
		{JobStatusPaid, JobStatusAwaitingConfirmation, true},
		{JobStatusPaid, JobStatusPending, false},
		{JobStatusAwaitingConfirmation, JobStatusCompleted, true},
		{JobStatusCompleted, JobStatusCompleted, true},
		{JobStatusCompleted, JobStatusCancelled, false},
		{JobStatusCancelled, JobStatusPending, false},
		{JobStatusCancelled, JobStatusCancelled, false},
		{"unknown", JobStatusPaid, false},
	}

	for _, tt := range tests {
		assert.Equalf(t, tt.want, CanTransitionJob(tt.from, tt.to), "%s -> %s", tt.from, tt.to)
	}
}

func TestValidJobTransitions_CoversAllStatuses(t *testing.T) {
	for status := range ValidJobStatuses {
		_, ok := ValidJobTransitions[status]
		assert.Truef(t, ok, "status %s missing from transition table", status)
	}
}
