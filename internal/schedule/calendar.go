package schedule

import (
	"bytes"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

// CalendarDay is one cell of a week or month view.
type CalendarDay struct {
	Date        time.Time    `json:"date"`
	Occurrences []Occurrence `json:"occurrences"`
}

// MonthGrid is a 7-column month view. LeadingBlanks is the number of empty
// cells before the 1st (the weekday index of the first day).
type MonthGrid struct {
	Year          int           `json:"year"`
	Month         time.Month    `json:"month"`
	DaysInMonth   int           `json:"daysInMonth"`
	LeadingBlanks int           `json:"leadingBlanks"`
	Days          []CalendarDay `json:"days"`
}

// SameCalendarDay compares year, month and day of a and b as seen in loc.
// Timestamps are never compared directly: a session stored at UTC midnight
// must still land on its local day.
func SameCalendarDay(a, b time.Time, loc *time.Location) bool {
	ay, am, ad := a.In(loc).Date()
	by, bm, bd := b.In(loc).Date()
	return ay == by && am == bm && ad == bd
}

// FindSession returns the session assigned to the occurrence of classID on
// date. When several match, the earliest created wins, then the lowest ID.
func FindSession(classID primitive.ObjectID, date time.Time, sessions []domain.WorkoutSession, loc *time.Location) (*domain.WorkoutSession, bool) {
	var found *domain.WorkoutSession
	for i := range sessions {
		s := &sessions[i]
		if s.ClassID == nil || *s.ClassID != classID {
			continue
		}
		if !SameCalendarDay(s.SessionDate, date, loc) {
			continue
		}
		if found == nil || sessionBefore(s, found) {
			found = s
		}
	}
	return found, found != nil
}

func sessionBefore(a, b *domain.WorkoutSession) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return bytes.Compare(a.ID[:], b.ID[:]) < 0
}

// ExpandDay lists the occurrences on date with their session presence.
func ExpandDay(date time.Time, defs []domain.ClassDefinition, sessions []domain.WorkoutSession, loc *time.Location) CalendarDay {
	day := StartOfDay(date, loc)
	classes := ClassesOn(defs, day)
	occurrences := make([]Occurrence, 0, len(classes))
	for _, def := range classes {
		occ := NewOccurrence(def, day, loc)
		if s, ok := FindSession(def.ID, day, sessions, loc); ok {
			occ.Session = s
			occ.HasWorkout = true
		}
		occurrences = append(occurrences, occ)
	}
	return CalendarDay{Date: day, Occurrences: occurrences}
}

// WeekStart normalises t to the most recent Sunday at local midnight.
func WeekStart(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	return day.AddDate(0, 0, -int(day.Weekday()))
}

// ShiftWeek moves a week start by n weeks. AddDate keeps local midnight across
// DST changes where adding 7*24h would not.
func ShiftWeek(start time.Time, n int) time.Time {
	return start.AddDate(0, 0, 7*n)
}

// ExpandWeek builds the 7 days of the week containing start.
func ExpandWeek(start time.Time, defs []domain.ClassDefinition, sessions []domain.WorkoutSession, loc *time.Location) []CalendarDay {
	first := WeekStart(start, loc)
	days := make([]CalendarDay, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, ExpandDay(first.AddDate(0, 0, i), defs, sessions, loc))
	}
	return days
}

// DaysIn returns the number of days in month of year.
func DaysIn(year int, month time.Month) int {
	// Day 0 of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// ExpandMonth builds the month grid for year/month.
func ExpandMonth(year int, month time.Month, defs []domain.ClassDefinition, sessions []domain.WorkoutSession, loc *time.Location) MonthGrid {
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	n := DaysIn(year, month)
	grid := MonthGrid{
		Year:          year,
		Month:         month,
		DaysInMonth:   n,
		LeadingBlanks: int(first.Weekday()),
		Days:          make([]CalendarDay, 0, n),
	}
	for i := 0; i < n; i++ {
		grid.Days = append(grid.Days, ExpandDay(first.AddDate(0, 0, i), defs, sessions, loc))
	}
	return grid
}

// WeekRange returns [start, end) covering the week that contains t.
func WeekRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := WeekStart(t, loc)
	return start, ShiftWeek(start, 1)
}

// MonthRange returns [start, end) covering year/month.
func MonthRange(year int, month time.Month, loc *time.Location) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	return start, start.AddDate(0, 1, 0)
}
