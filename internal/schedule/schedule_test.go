package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/artisanhub/backend/internal/models"
)

func mustWindow(t *testing.T, start, end string) Window {
	t.Helper()
	s, err := time.Parse(time.RFC3339, start)
	assert.NoError(t, err)
	e, err := time.Parse(time.RFC3339, end)
	assert.NoError(t, err)
	w, err := NewWindow(s, e)
	assert.NoError(t, err)
	return w
}

func slot(t *testing.T, start, end string) models.BusySlot {
	t.Helper()
	w := mustWindow(t, start, end)
	return models.BusySlot{StartsAt: w.Start, EndsAt: w.End}
}

func TestNewWindow_StartMustPrecedeEnd(t *testing.T) {
	now := time.Now()

	_, err := NewWindow(now, now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = NewWindow(now.Add(time.Hour), now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = NewWindow(time.Time{}, now)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}

func TestOverlaps_StrictHalfOpen(t *testing.T) {
	base := mustWindow(t, "2026-03-01T09:00:00Z", "2026-03-01T11:00:00Z")

	cases := []struct {
		name    string
		other   Window
		overlap bool
	}{
		{"contained", mustWindow(t, "2026-03-01T09:30:00Z", "2026-03-01T10:30:00Z"), true},
		{"partial right", mustWindow(t, "2026-03-01T10:00:00Z", "2026-03-01T12:00:00Z"), true},
		{"partial left", mustWindow(t, "2026-03-01T08:00:00Z", "2026-03-01T09:30:00Z"), true},
		{"covering", mustWindow(t, "2026-03-01T08:00:00Z", "2026-03-01T12:00:00Z"), true},
		{"touching after", mustWindow(t, "2026-03-01T11:00:00Z", "2026-03-01T13:00:00Z"), false},
		{"touching before", mustWindow(t, "2026-03-01T07:00:00Z", "2026-03-01T09:00:00Z"), false},
		{"disjoint", mustWindow(t, "2026-03-02T09:00:00Z", "2026-03-02T11:00:00Z"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.overlap, base.Overlaps(tc.other))
			assert.Equal(t, tc.overlap, tc.other.Overlaps(base))
		})
	}
}

func TestHasConflict(t *testing.T) {
	slots := []models.BusySlot{
		slot(t, "2026-03-01T10:00:00Z", "2026-03-01T12:00:00Z"),
		slot(t, "2026-03-03T08:00:00Z", "2026-03-03T10:00:00Z"),
	}

	requested := mustWindow(t, "2026-03-01T09:00:00Z", "2026-03-01T11:00:00Z")
	assert.True(t, HasConflict(slots, requested))

	adjacent := mustWindow(t, "2026-03-01T12:00:00Z", "2026-03-01T14:00:00Z")
	assert.False(t, HasConflict(slots, adjacent))

	free := mustWindow(t, "2026-03-02T09:00:00Z", "2026-03-02T11:00:00Z")
	assert.False(t, HasConflict(slots, free))

	assert.False(t, HasConflict(nil, requested))
}

func TestFirstConflict_ReturnsSlot(t *testing.T) {
	busy := slot(t, "2026-03-01T10:00:00Z", "2026-03-01T12:00:00Z")
	found := FirstConflict([]models.BusySlot{busy}, mustWindow(t, "2026-03-01T11:00:00Z", "2026-03-01T13:00:00Z"))
	assert.NotNil(t, found)
	assert.Equal(t, busy.StartsAt, found.StartsAt)
}

func TestDerive_ExplicitWindowWins(t *testing.T) {
	start, _ := time.Parse(time.RFC3339, "2026-03-01T09:00:00Z")
	end, _ := time.Parse(time.RFC3339, "2026-03-01T11:00:00Z")

	w, err := Derive("2026-04-15", &start, &end, DefaultWindowLength)
	assert.NoError(t, err)
	assert.Equal(t, start, w.Start)
	assert.Equal(t, end, w.End)
}

func TestDerive_FromNominalDate(t *testing.T) {
	w, err := Derive("2026-03-01", nil, nil, DefaultWindowLength)
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-01T00:00:00Z", w.Start.Format(time.RFC3339))
	assert.Equal(t, 2*time.Hour, w.End.Sub(w.Start))
}

func TestDerive_FromRFC3339Date(t *testing.T) {
	w, err := Derive("2026-03-01T09:00:00Z", nil, nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, "2026-03-01T11:00:00Z", w.End.Format(time.RFC3339))
}

func TestDerive_InvalidInput(t *testing.T) {
	_, err := Derive("", nil, nil, DefaultWindowLength)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	_, err = Derive("next tuesday", nil, nil, DefaultWindowLength)
	assert.ErrorIs(t, err, ErrInvalidSchedule)

	start, _ := time.Parse(time.RFC3339, "2026-03-01T11:00:00Z")
	end, _ := time.Parse(time.RFC3339, "2026-03-01T09:00:00Z")
	_, err = Derive("", &start, &end, DefaultWindowLength)
	assert.ErrorIs(t, err, ErrInvalidSchedule)
}
