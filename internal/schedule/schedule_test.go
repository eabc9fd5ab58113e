package schedule_test

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/schedule"
)

func intPtr(i int) *int { return &i }

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestOccursOn_DaysOfWeek(t *testing.T) {
	def := &domain.ClassDefinition{DaysOfWeek: []int{1, 3, 5}, StartTime: "09:00", IsActive: true}

	tuesday := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	wednesday := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)

	assert.False(t, schedule.OccursOn(def, tuesday))
	assert.True(t, schedule.OccursOn(def, wednesday))

	classes := schedule.ClassesOn([]domain.ClassDefinition{*def}, wednesday)
	require.Len(t, classes, 1)
	assert.Equal(t, "09:00", classes[0].StartTime)
	assert.Empty(t, schedule.ClassesOn([]domain.ClassDefinition{*def}, tuesday))
}

func TestOccursOn_LegacyDayOfWeekFallback(t *testing.T) {
	def := &domain.ClassDefinition{DayOfWeek: intPtr(6), StartTime: "10:00", IsActive: true}
	saturday := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	sunday := time.Date(2024, 1, 7, 0, 0, 0, 0, time.UTC)

	assert.True(t, schedule.OccursOn(def, saturday))
	assert.False(t, schedule.OccursOn(def, sunday))

	// A non-empty DaysOfWeek takes precedence over the legacy field.
	def.DaysOfWeek = []int{0}
	assert.False(t, schedule.OccursOn(def, saturday))
	assert.True(t, schedule.OccursOn(def, sunday))
}

func TestOccursOn_InactiveOrMissingDays(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	inactive := &domain.ClassDefinition{DaysOfWeek: []int{1}, IsActive: false}
	assert.False(t, schedule.OccursOn(inactive, monday))

	noDays := &domain.ClassDefinition{IsActive: true}
	assert.False(t, schedule.OccursOn(noDays, monday))

	assert.False(t, schedule.OccursOn(nil, monday))
}

func TestOccursOn_Property(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	defs := []domain.ClassDefinition{
		{DaysOfWeek: []int{0, 2, 4}, IsActive: true},
		{DayOfWeek: intPtr(5), IsActive: true},
		{DaysOfWeek: []int{1, 2, 3, 4, 5}, IsActive: false},
	}
	for _, def := range defs {
		days := def.DaysOfWeek
		if len(days) == 0 {
			days = []int{*def.DayOfWeek}
		}
		for i := 0; i < 28; i++ {
			date := start.AddDate(0, 0, i)
			want := false
			if def.IsActive {
				for _, d := range days {
					if d == int(date.Weekday()) {
						want = true
					}
				}
			}
			assert.Equal(t, want, schedule.OccursOn(&def, date), "date %s", date.Format(time.DateOnly))
		}
	}
}

func TestClassesOn_SortedByStartTime(t *testing.T) {
	monday := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	defs := []domain.ClassDefinition{
		{Name: "evening", DaysOfWeek: []int{1}, StartTime: "18:30", IsActive: true},
		{Name: "early", DaysOfWeek: []int{1}, StartTime: "06:00", IsActive: true},
		{Name: "other day", DaysOfWeek: []int{2}, StartTime: "05:00", IsActive: true},
		{Name: "noon", DaysOfWeek: []int{1}, StartTime: "12:00", IsActive: true},
	}

	classes := schedule.ClassesOn(defs, monday)
	require.Len(t, classes, 3)
	assert.Equal(t, "early", classes[0].Name)
	assert.Equal(t, "noon", classes[1].Name)
	assert.Equal(t, "evening", classes[2].Name)
}

func TestParseClock(t *testing.T) {
	h, m, err := schedule.ParseClock("07:45")
	require.NoError(t, err)
	assert.Equal(t, 7, h)
	assert.Equal(t, 45, m)

	for _, bad := range []string{"7:45", "24:00", "07-45", "", "07:60"} {
		_, _, err := schedule.ParseClock(bad)
		assert.Error(t, err, bad)
	}
}

func TestSameCalendarDay_UsesLocalDate(t *testing.T) {
	loc := newYork(t)
	// 2024-01-03 02:00 UTC is still the evening of 2024-01-02 in New York.
	stored := time.Date(2024, 1, 3, 2, 0, 0, 0, time.UTC)
	localTuesday := time.Date(2024, 1, 2, 0, 0, 0, 0, loc)

	assert.True(t, schedule.SameCalendarDay(stored, localTuesday, loc))
	assert.False(t, schedule.SameCalendarDay(stored, localTuesday.AddDate(0, 0, 1), loc))
}

func TestFindSession(t *testing.T) {
	loc := time.UTC
	classID := primitive.NewObjectID()
	otherClass := primitive.NewObjectID()
	date := time.Date(2024, 1, 3, 0, 0, 0, 0, loc)
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, loc)

	later := domain.WorkoutSession{ID: primitive.NewObjectID(), ClassID: &classID, SessionDate: date.Add(9 * time.Hour), CreatedAt: created.Add(time.Hour)}
	earlier := domain.WorkoutSession{ID: primitive.NewObjectID(), ClassID: &classID, SessionDate: date, CreatedAt: created}
	wrongClass := domain.WorkoutSession{ID: primitive.NewObjectID(), ClassID: &otherClass, SessionDate: date, CreatedAt: created.Add(-time.Hour)}
	adHoc := domain.WorkoutSession{ID: primitive.NewObjectID(), SessionDate: date}

	s, ok := schedule.FindSession(classID, date, []domain.WorkoutSession{later, wrongClass, adHoc, earlier}, loc)
	require.True(t, ok)
	assert.Equal(t, earlier.ID, s.ID)

	_, ok = schedule.FindSession(classID, date.AddDate(0, 0, 1), []domain.WorkoutSession{later, earlier}, loc)
	assert.False(t, ok)
}

func TestFindSession_TieBreaksOnID(t *testing.T) {
	classID := primitive.NewObjectID()
	date := time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC)
	created := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)

	low, err := primitive.ObjectIDFromHex("000000000000000000000001")
	require.NoError(t, err)
	high, err := primitive.ObjectIDFromHex("000000000000000000000002")
	require.NoError(t, err)

	sessions := []domain.WorkoutSession{
		{ID: high, ClassID: &classID, SessionDate: date, CreatedAt: created},
		{ID: low, ClassID: &classID, SessionDate: date, CreatedAt: created},
	}
	s, ok := schedule.FindSession(classID, date, sessions, time.UTC)
	require.True(t, ok)
	assert.Equal(t, low, s.ID)
}

func TestWeekStart(t *testing.T) {
	loc := newYork(t)
	wednesday := time.Date(2024, 1, 3, 15, 30, 0, 0, loc)
	start := schedule.WeekStart(wednesday, loc)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Sunday, start.Weekday())

	// A Sunday is its own week start.
	assert.Equal(t, start, schedule.WeekStart(start.Add(23*time.Hour), loc))
}

func TestWeekStart_SameWeekProperty(t *testing.T) {
	loc := newYork(t)
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)
	for i := 0; i < 30; i++ {
		t1 := base.AddDate(0, 0, i)
		t2 := t1.AddDate(0, 0, 7)
		assert.NotEqual(t, schedule.WeekStart(t1, loc), schedule.WeekStart(t2, loc))
		assert.Equal(t, schedule.ShiftWeek(schedule.WeekStart(t1, loc), 1), schedule.WeekStart(t2, loc))
	}
}

func TestShiftWeek_AcrossDST(t *testing.T) {
	loc := newYork(t)
	start := time.Date(2024, 3, 10, 0, 0, 0, 0, loc)

	prev := schedule.ShiftWeek(start, -1)
	assert.Equal(t, time.Date(2024, 3, 3, 0, 0, 0, 0, loc), prev)

	next := schedule.ShiftWeek(start, 1)
	assert.Equal(t, time.Date(2024, 3, 17, 0, 0, 0, 0, loc), next)
	assert.Equal(t, 0, next.Hour())
}

func TestExpandWeek(t *testing.T) {
	loc := time.UTC
	classID := primitive.NewObjectID()
	defs := []domain.ClassDefinition{
		{ID: classID, Name: "Spin", DaysOfWeek: []int{1, 3, 5}, StartTime: "09:00", DurationMinutes: 45, IsActive: true},
	}
	wednesday := time.Date(2024, 1, 3, 0, 0, 0, 0, loc)
	sessions := []domain.WorkoutSession{{ID: primitive.NewObjectID(), ClassID: &classID, SessionDate: wednesday}}

	days := schedule.ExpandWeek(wednesday, defs, sessions, loc)
	require.Len(t, days, 7)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, loc), days[0].Date)

	counts := make([]int, 7)
	for i, d := range days {
		counts[i] = len(d.Occurrences)
	}
	assert.Equal(t, []int{0, 1, 0, 1, 0, 1, 0}, counts)

	wed := days[3].Occurrences[0]
	assert.True(t, wed.HasWorkout)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 0, 0, 0, loc), wed.StartsAt)
	assert.Equal(t, time.Date(2024, 1, 3, 9, 45, 0, 0, loc), wed.EndsAt)
	assert.False(t, days[1].Occurrences[0].HasWorkout)
	assert.Nil(t, days[1].Occurrences[0].Session)
}

func TestExpandMonth(t *testing.T) {
	loc := time.UTC
	defs := []domain.ClassDefinition{
		{ID: primitive.NewObjectID(), DaysOfWeek: []int{4}, StartTime: "07:00", IsActive: true},
	}

	grid := schedule.ExpandMonth(2024, time.February, defs, nil, loc)
	assert.Equal(t, 29, grid.DaysInMonth)
	assert.Equal(t, 4, grid.LeadingBlanks) // Feb 1st 2024 is a Thursday
	require.Len(t, grid.Days, 29)

	thursdays := 0
	for _, d := range grid.Days {
		thursdays += len(d.Occurrences)
	}
	assert.Equal(t, 5, thursdays)

	assert.Equal(t, 31, schedule.DaysIn(2023, time.December))
	assert.Equal(t, 28, schedule.DaysIn(2023, time.February))
}

func TestRanges(t *testing.T) {
	loc := time.UTC
	start, end := schedule.WeekRange(time.Date(2024, 1, 3, 10, 0, 0, 0, loc), loc)
	assert.Equal(t, time.Date(2023, 12, 31, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2024, 1, 7, 0, 0, 0, 0, loc), end)

	start, end = schedule.MonthRange(2024, time.December, loc)
	assert.Equal(t, time.Date(2024, 12, 1, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, loc), end)
}
