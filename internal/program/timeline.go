// Package program models a client's position inside a multi-week program:
// per-day and per-week status, progress and advancement.
package program

import (
	"math"

	"tidalpower/fitness-studio/internal/domain"
)

const DaysPerWeek = 7

type DayStatus string

const (
	DayPast   DayStatus = "past"
	DayToday  DayStatus = "today"
	DayFuture DayStatus = "future"
)

type WeekStatus string

const (
	WeekSecured    WeekStatus = "secured"
	WeekInProgress WeekStatus = "in_progress"
	WeekLocked     WeekStatus = "locked"
)

// Position is a 1-indexed (week, day) inside a program.
type Position struct {
	Week int `json:"week"`
	Day  int `json:"day"`
}

type Day struct {
	Number int                          `json:"day"`
	Status DayStatus                    `json:"status"`
	Slots  []domain.ProgramTemplateSlot `json:"slots"`
}

type Week struct {
	Number int        `json:"week"`
	Status WeekStatus `json:"status"`
	Days   []Day      `json:"days"`
}

type Timeline struct {
	TotalWeeks      int      `json:"totalWeeks"`
	Current         Position `json:"current"`
	ProgressPercent int      `json:"progressPercent"`
	Weeks           []Week   `json:"weeks"`
}

// ProgressPercent is the share of program days reached, rounded and clamped
// to [0, 100]. It measures position in time, not completed workouts.
func ProgressPercent(currentWeek, currentDay, totalWeeks int) int {
	if totalWeeks <= 0 {
		return 0
	}
	reached := float64((currentWeek-1)*DaysPerWeek + currentDay)
	pct := int(math.Round(reached / float64(totalWeeks*DaysPerWeek) * 100))
	switch {
	case pct < 0:
		return 0
	case pct > 100:
		return 100
	}
	return pct
}

func DayStatusFor(week, day, currentWeek, currentDay int) DayStatus {
	switch {
	case week < currentWeek || (week == currentWeek && day < currentDay):
		return DayPast
	case week == currentWeek && day == currentDay:
		return DayToday
	default:
		return DayFuture
	}
}

func WeekStatusFor(week, currentWeek int) WeekStatus {
	switch {
	case currentWeek > week:
		return WeekSecured
	case currentWeek == week:
		return WeekInProgress
	default:
		return WeekLocked
	}
}

// Build lays out every (week, day) of the program with its slots and status.
// Slots keep their input order within a day; slots outside the program's
// range are ignored.
func Build(totalWeeks int, slots []domain.ProgramTemplateSlot, current Position) Timeline {
	tl := Timeline{
		TotalWeeks:      totalWeeks,
		Current:         current,
		ProgressPercent: ProgressPercent(current.Week, current.Day, totalWeeks),
		Weeks:           []Week{},
	}
	if totalWeeks <= 0 {
		return tl
	}

	byDay := make(map[Position][]domain.ProgramTemplateSlot)
	for _, s := range slots {
		p := Position{Week: s.WeekNumber, Day: s.DayNumber}
		byDay[p] = append(byDay[p], s)
	}

	tl.Weeks = make([]Week, 0, totalWeeks)
	for w := 1; w <= totalWeeks; w++ {
		week := Week{
			Number: w,
			Status: WeekStatusFor(w, current.Week),
			Days:   make([]Day, 0, DaysPerWeek),
		}
		for d := 1; d <= DaysPerWeek; d++ {
			daySlots := byDay[Position{Week: w, Day: d}]
			if daySlots == nil {
				daySlots = []domain.ProgramTemplateSlot{}
			}
			week.Days = append(week.Days, Day{
				Number: d,
				Status: DayStatusFor(w, d, current.Week, current.Day),
				Slots:  daySlots,
			})
		}
		tl.Weeks = append(tl.Weeks, week)
	}
	return tl
}

// Advance moves pos forward one day, rolling over into the next week. Once the
// last day of the last week is reached the position stays there and completed
// is true.
func Advance(pos Position, totalWeeks int) (next Position, completed bool) {
	last := Position{Week: totalWeeks, Day: DaysPerWeek}
	if totalWeeks <= 0 {
		return pos, true
	}
	if pos.Week > last.Week || (pos.Week == last.Week && pos.Day >= last.Day) {
		return last, true
	}
	next = Position{Week: pos.Week, Day: pos.Day + 1}
	if next.Day > DaysPerWeek {
		next = Position{Week: pos.Week + 1, Day: 1}
	}
	return next, next == last
}

// ValidSlot reports whether slot fits inside a program of totalWeeks.
func ValidSlot(slot domain.ProgramTemplateSlot, totalWeeks int) bool {
	return slot.WeekNumber >= 1 && slot.WeekNumber <= totalWeeks &&
		slot.DayNumber >= 1 && slot.DayNumber <= DaysPerWeek
}
