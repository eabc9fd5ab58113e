package program_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/program"
)

func TestProgressPercent(t *testing.T) {
	assert.Equal(t, 36, program.ProgressPercent(2, 3, 4))
	assert.Equal(t, 4, program.ProgressPercent(1, 1, 4))
	assert.Equal(t, 100, program.ProgressPercent(4, 7, 4))

	// out of range inputs are clamped
	assert.Equal(t, 100, program.ProgressPercent(6, 1, 4))
	assert.Equal(t, 0, program.ProgressPercent(0, 0, 4))
	assert.Equal(t, 0, program.ProgressPercent(1, 1, 0))
	assert.Equal(t, 0, program.ProgressPercent(1, 1, -3))
}

func TestProgressPercent_Monotonic(t *testing.T) {
	const totalWeeks = 6
	prev := -1
	for w := 1; w <= totalWeeks; w++ {
		for d := 1; d <= program.DaysPerWeek; d++ {
			pct := program.ProgressPercent(w, d, totalWeeks)
			assert.GreaterOrEqual(t, pct, prev, "week %d day %d", w, d)
			prev = pct
		}
	}
}

func TestStatuses_ExclusiveAndExhaustive(t *testing.T) {
	cur := program.Position{Week: 2, Day: 4}
	counts := map[program.DayStatus]int{}
	for w := 1; w <= 3; w++ {
		ws := program.WeekStatusFor(w, cur.Week)
		switch {
		case w < 2:
			assert.Equal(t, program.WeekSecured, ws)
		case w == 2:
			assert.Equal(t, program.WeekInProgress, ws)
		default:
			assert.Equal(t, program.WeekLocked, ws)
		}
		for d := 1; d <= program.DaysPerWeek; d++ {
			counts[program.DayStatusFor(w, d, cur.Week, cur.Day)]++
		}
	}
	assert.Equal(t, 7+3, counts[program.DayPast])
	assert.Equal(t, 1, counts[program.DayToday])
	assert.Equal(t, 3+7, counts[program.DayFuture])
}

func TestBuild(t *testing.T) {
	a := domain.ProgramTemplateSlot{TemplateID: primitive.NewObjectID(), TemplateName: "Push", WeekNumber: 1, DayNumber: 1}
	b := domain.ProgramTemplateSlot{TemplateID: primitive.NewObjectID(), TemplateName: "Pull", WeekNumber: 1, DayNumber: 1}
	c := domain.ProgramTemplateSlot{TemplateID: primitive.NewObjectID(), TemplateName: "Legs", WeekNumber: 2, DayNumber: 3}
	outside := domain.ProgramTemplateSlot{TemplateID: primitive.NewObjectID(), WeekNumber: 9, DayNumber: 1}

	tl := program.Build(2, []domain.ProgramTemplateSlot{a, c, b, outside}, program.Position{Week: 2, Day: 3})

	assert.Equal(t, 71, tl.ProgressPercent) // round(10/14*100)
	require.Len(t, tl.Weeks, 2)
	for _, w := range tl.Weeks {
		require.Len(t, w.Days, program.DaysPerWeek)
	}

	assert.Equal(t, program.WeekSecured, tl.Weeks[0].Status)
	assert.Equal(t, program.WeekInProgress, tl.Weeks[1].Status)

	monday := tl.Weeks[0].Days[0]
	require.Len(t, monday.Slots, 2)
	assert.Equal(t, "Push", monday.Slots[0].TemplateName)
	assert.Equal(t, "Pull", monday.Slots[1].TemplateName)
	assert.Equal(t, program.DayPast, monday.Status)

	today := tl.Weeks[1].Days[2]
	assert.Equal(t, program.DayToday, today.Status)
	require.Len(t, today.Slots, 1)
	assert.Equal(t, "Legs", today.Slots[0].TemplateName)

	assert.Equal(t, program.DayFuture, tl.Weeks[1].Days[3].Status)
	assert.NotNil(t, tl.Weeks[1].Days[6].Slots)
	assert.Empty(t, tl.Weeks[1].Days[6].Slots)
}

func TestBuild_NoWeeks(t *testing.T) {
	tl := program.Build(0, nil, program.Position{Week: 1, Day: 1})
	assert.Empty(t, tl.Weeks)
	assert.Equal(t, 0, tl.ProgressPercent)
}

func TestAdvance(t *testing.T) {
	next, done := program.Advance(program.Position{Week: 1, Day: 1}, 2)
	assert.Equal(t, program.Position{Week: 1, Day: 2}, next)
	assert.False(t, done)

	next, done = program.Advance(program.Position{Week: 1, Day: 7}, 2)
	assert.Equal(t, program.Position{Week: 2, Day: 1}, next)
	assert.False(t, done)

	next, done = program.Advance(program.Position{Week: 2, Day: 6}, 2)
	assert.Equal(t, program.Position{Week: 2, Day: 7}, next)
	assert.True(t, done)

	next, done = program.Advance(program.Position{Week: 2, Day: 7}, 2)
	assert.Equal(t, program.Position{Week: 2, Day: 7}, next)
	assert.True(t, done)

	next, done = program.Advance(program.Position{Week: 5, Day: 2}, 2)
	assert.Equal(t, program.Position{Week: 2, Day: 7}, next)
	assert.True(t, done)
}

func TestValidSlot(t *testing.T) {
	assert.True(t, program.ValidSlot(domain.ProgramTemplateSlot{WeekNumber: 1, DayNumber: 7}, 1))
	assert.False(t, program.ValidSlot(domain.ProgramTemplateSlot{WeekNumber: 2, DayNumber: 1}, 1))
	assert.False(t, program.ValidSlot(domain.ProgramTemplateSlot{WeekNumber: 1, DayNumber: 0}, 1))
	assert.False(t, program.ValidSlot(domain.ProgramTemplateSlot{WeekNumber: 1, DayNumber: 8}, 1))
}
