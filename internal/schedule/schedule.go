// Package schedule implements booking window validation and conflict
// detection against an artisan's busy slots.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/artisanhub/backend/internal/models"
)

// DefaultWindowLength is assumed when a booking gives only a nominal date.
const DefaultWindowLength = 2 * time.Hour

var ErrInvalidSchedule = errors.New("invalid schedule window")

// Window is a half-open booking interval [Start, End).
type Window struct {
	Start time.Time
	End   time.Time
}

// NewWindow validates that start precedes end.
func NewWindow(start, end time.Time) (Window, error) {
	if start.IsZero() || end.IsZero() || !start.Before(end) {
		return Window{}, fmt.Errorf("%w: start must precede end", ErrInvalidSchedule)
	}
	return Window{Start: start, End: end}, nil
}

// Derive builds the booking window. Explicit timestamps take precedence;
// otherwise the window starts at the nominal date and runs for length.
// The legacy date field accepts either a bare date or a full RFC 3339
// timestamp.
func Derive(date string, startAt, endAt *time.Time, length time.Duration) (Window, error) {
	if startAt != nil && endAt != nil {
		return NewWindow(*startAt, *endAt)
	}

	if date == "" {
		return Window{}, fmt.Errorf("%w: date or explicit window required", ErrInvalidSchedule)
	}

	start, err := time.Parse(time.RFC3339, date)
	if err != nil {
		start, err = time.Parse("2006-01-02", date)
		if err != nil {
			return Window{}, fmt.Errorf("%w: unparseable date %q", ErrInvalidSchedule, date)
		}
	}

	if length <= 0 {
		length = DefaultWindowLength
	}
	return NewWindow(start, start.Add(length))
}

// Overlaps reports strict half-open interval overlap. Adjacent windows
// (end == start) do not overlap.
func (w Window) Overlaps(o Window) bool {
	return w.Start.Before(o.End) && w.End.After(o.Start)
}

// FirstConflict returns the first busy slot that overlaps the window,
// or nil if the window is free.
func FirstConflict(slots []models.BusySlot, w Window) *models.BusySlot {
	for i := range slots {
		slot := Window{Start: slots[i].StartsAt, End: slots[i].EndsAt}
		if slot.Overlaps(w) {
			return &slots[i]
		}
	}
	return nil
}

// HasConflict reports whether any busy slot overlaps the window.
func HasConflict(slots []models.BusySlot, w Window) bool {
	return FirstConflict(slots, w) != nil
}
