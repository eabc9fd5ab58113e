package workoutlog

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

type Indicator string

const (
	IndicatorNone     Indicator = "none"
	IndicatorOverload Indicator = "overload"
	IndicatorPR       Indicator = "pr"
)

// Classify compares one entered set against the client's bests. A PR beats
// the all-time max weight; an overload beats the previous session's heaviest
// set, by weight or by reps at equal weight. Unset input or missing history
// yields IndicatorNone.
func Classify(best *domain.ExerciseBest, reps *int, weight *float64) Indicator {
	if best == nil || reps == nil || weight == nil {
		return IndicatorNone
	}
	if pr := best.PersonalRecords; pr != nil && *weight > pr.MaxWeightLbs {
		return IndicatorPR
	}
	if prev := best.PreviousBest; prev != nil {
		if *weight > prev.WeightLbs || (*weight == prev.WeightLbs && *reps > prev.Reps) {
			return IndicatorOverload
		}
	}
	return IndicatorNone
}

// ComputeBest derives the bests for exerciseID from a client's session
// history as of the day asOf. The session identified by currentSessionID and
// sessions dated after asOf are ignored, so a backdated session is measured
// only against what came before it. A zero asOf reads the whole history.
func ComputeBest(exerciseID, clientID primitive.ObjectID, history []domain.WorkoutSession, currentSessionID primitive.ObjectID, asOf time.Time) *domain.ExerciseBest {
	best := &domain.ExerciseBest{ExerciseID: exerciseID, ClientID: clientID}

	var latest *domain.WorkoutSession
	for i := range history {
		s := &history[i]
		if s.ID == currentSessionID {
			continue
		}
		if !asOf.IsZero() && s.SessionDate.After(asOf) {
			continue
		}
		found := false
		for _, l := range s.SetLogs {
			if l.ExerciseID != exerciseID {
				continue
			}
			found = true
			if best.PersonalRecords == nil {
				best.PersonalRecords = &domain.PersonalRecords{}
			}
			if l.WeightUsedLbs > best.PersonalRecords.MaxWeightLbs {
				best.PersonalRecords.MaxWeightLbs = l.WeightUsedLbs
			}
			if l.RepsCompleted > best.PersonalRecords.MaxReps {
				best.PersonalRecords.MaxReps = l.RepsCompleted
			}
		}
		if found && (latest == nil || s.SessionDate.After(latest.SessionDate) ||
			(s.SessionDate.Equal(latest.SessionDate) && s.CreatedAt.After(latest.CreatedAt))) {
			latest = s
		}
	}

	if latest != nil {
		prev := &domain.PreviousBest{SessionID: latest.ID}
		first := true
		for _, l := range latest.SetLogs {
			if l.ExerciseID != exerciseID {
				continue
			}
			if first || l.WeightUsedLbs > prev.WeightLbs {
				prev.WeightLbs = l.WeightUsedLbs
				prev.Reps = l.RepsCompleted
				first = false
			} else if l.WeightUsedLbs == prev.WeightLbs && l.RepsCompleted > prev.Reps {
				prev.Reps = l.RepsCompleted
			}
		}
		best.PreviousBest = prev
	}
	return best
}
