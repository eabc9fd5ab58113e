// Package schedule turns recurring class definitions into concrete calendar
// occurrences. Nothing here is persisted: every result is recomputed from the
// definitions and sessions passed in.
package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"tidalpower/fitness-studio/internal/domain"
)

// Occurrence is one class definition on one calendar date.
type Occurrence struct {
	Class    domain.ClassDefinition `json:"class"`
	Date     time.Time              `json:"date"`
	StartsAt time.Time              `json:"startsAt"`
	EndsAt   time.Time              `json:"endsAt"`
	// Session is the workout assigned to this occurrence, if any.
	Session    *domain.WorkoutSession `json:"session,omitempty"`
	HasWorkout bool                   `json:"hasWorkout"`
}

// OccursOn reports whether def runs on the calendar day of date. Inactive
// classes never occur.
func OccursOn(def *domain.ClassDefinition, date time.Time) bool {
	if def == nil || !def.IsActive {
		return false
	}
	weekday := date.Weekday()
	for _, d := range def.Weekdays() {
		if d == weekday {
			return true
		}
	}
	return false
}

// ClassesOn returns the definitions occurring on date, ordered by start time.
// StartTime is fixed-width "HH:MM", so a string compare orders it correctly.
func ClassesOn(defs []domain.ClassDefinition, date time.Time) []domain.ClassDefinition {
	result := make([]domain.ClassDefinition, 0)
	for i := range defs {
		if OccursOn(&defs[i], date) {
			result = append(result, defs[i])
		}
	}
	slices.SortStableFunc(result, func(a, b domain.ClassDefinition) int {
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return result
}

// ParseClock parses a zero-padded 24h "HH:MM" string.
func ParseClock(s string) (hour, minute int, err error) {
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("start time %q is not HH:MM", s)
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, fmt.Errorf("start time %q is not HH:MM: %w", s, err)
	}
	return t.Hour(), t.Minute(), nil
}

// StartOfDay returns local midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// NewOccurrence builds the occurrence of def on date. A malformed start time
// leaves StartsAt at local midnight.
func NewOccurrence(def domain.ClassDefinition, date time.Time, loc *time.Location) Occurrence {
	day := StartOfDay(date, loc)
	starts := day
	if h, m, err := ParseClock(def.StartTime); err == nil {
		y, mo, d := day.Date()
		starts = time.Date(y, mo, d, h, m, 0, 0, loc)
	}
	return Occurrence{
		Class:    def,
		Date:     day,
		StartsAt: starts,
		EndsAt:   starts.Add(time.Duration(def.DurationMinutes) * time.Minute),
	}
}
