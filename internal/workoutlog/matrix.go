// Package workoutlog handles set entry for a workout session: a per-exercise
// matrix of planned sets, batch submission exercise by exercise, and the
// overload/PR indicator shown next to each entry.
package workoutlog

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

var (
	ErrSetIndexOutOfRange = errors.New("set index out of range")
	ErrSetNumbering       = errors.New("set numbers must run 1..n without gaps")
	ErrNegativeValue      = errors.New("reps and weight cannot be negative")
	ErrEmptyBatch         = errors.New("batch contains no sets")
	ErrWrongExercise      = errors.New("set does not belong to the current exercise")
)

// SetUpdate carries the fields to change on one set; nil fields are left alone.
type SetUpdate struct {
	Reps   *int
	Weight *float64
	Notes  *string
}

// Matrix is the editable grid of sets for the exercise in focus.
type Matrix struct {
	exercise domain.SessionExercise
	sets     []domain.WorkoutSetLog
}

// NewMatrix pre-populates PlannedSets rows with the planned reps and weight.
func NewMatrix(ex domain.SessionExercise) *Matrix {
	m := &Matrix{exercise: ex}
	for i := 0; i < ex.PlannedSets; i++ {
		m.AddSet()
	}
	return m
}

func (m *Matrix) Exercise() domain.SessionExercise {
	return m.exercise
}

// Sets returns a copy of the current rows.
func (m *Matrix) Sets() []domain.WorkoutSetLog {
	out := make([]domain.WorkoutSetLog, len(m.sets))
	copy(out, m.sets)
	return out
}

// UpdateSet replaces the given fields of the set at index only.
func (m *Matrix) UpdateSet(index int, u SetUpdate) error {
	if index < 0 || index >= len(m.sets) {
		return fmt.Errorf("%w: %d of %d", ErrSetIndexOutOfRange, index, len(m.sets))
	}
	s := &m.sets[index]
	if u.Reps != nil {
		s.RepsCompleted = *u.Reps
	}
	if u.Weight != nil {
		s.WeightUsedLbs = *u.Weight
	}
	if u.Notes != nil {
		s.Notes = *u.Notes
	}
	return nil
}

// AddSet appends a row defaulted to the planned values.
func (m *Matrix) AddSet() {
	m.sets = append(m.sets, domain.WorkoutSetLog{
		SessionExerciseID: m.exercise.ID,
		ExerciseID:        m.exercise.ExerciseID,
		SetNumber:         len(m.sets) + 1,
		RepsCompleted:     m.exercise.PlannedReps,
		WeightUsedLbs:     m.exercise.PlannedWeightLbs,
	})
}

// RemoveLastSet drops the final row, if any.
func (m *Matrix) RemoveLastSet() {
	if len(m.sets) > 0 {
		m.sets = m.sets[:len(m.sets)-1]
	}
}

// ValidateBatch checks that sets belong to sessionExerciseID, are numbered
// 1..n in order, and carry no negative reps or weight.
func ValidateBatch(sessionExerciseID primitive.ObjectID, sets []domain.WorkoutSetLog) error {
	if len(sets) == 0 {
		return ErrEmptyBatch
	}
	for i, s := range sets {
		if s.SessionExerciseID != sessionExerciseID {
			return fmt.Errorf("%w: set %d", ErrWrongExercise, s.SetNumber)
		}
		if s.SetNumber != i+1 {
			return fmt.Errorf("%w: position %d has set %d", ErrSetNumbering, i+1, s.SetNumber)
		}
		if s.RepsCompleted < 0 || s.WeightUsedLbs < 0 {
			return fmt.Errorf("%w: set %d", ErrNegativeValue, s.SetNumber)
		}
	}
	return nil
}
