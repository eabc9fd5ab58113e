package workoutlog

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

var ErrSessionComplete = errors.New("all exercises in this session are already logged")

// BatchWriter persists one exercise's sets in a single call. expectedExercise
// is the exercise index the batch was built for; writers must refuse the write
// if the stored session has moved on.
type BatchWriter interface {
	AppendSetLogs(ctx context.Context, sessionID primitive.ObjectID, expectedExercise int, logs []domain.WorkoutSetLog, completed bool) error
}

// Logger walks a session exercise by exercise. Each Submit is one batch;
// a failed batch leaves the logger exactly as it was.
type Logger struct {
	sessionID primitive.ObjectID
	exercises []domain.SessionExercise
	current   int
	matrix    *Matrix
	logged    []domain.WorkoutSetLog
	writer    BatchWriter
	now       func() time.Time
}

// NewLogger resumes logging for session from its persisted progress.
func NewLogger(session *domain.WorkoutSession, writer BatchWriter) *Logger {
	l := &Logger{
		sessionID: session.ID,
		exercises: session.Exercises,
		current:   session.CurrentExercise,
		logged:    append([]domain.WorkoutSetLog(nil), session.SetLogs...),
		writer:    writer,
		now:       func() time.Time { return time.Now().UTC() },
	}
	if l.current < 0 {
		l.current = 0
	}
	l.resetMatrix()
	return l
}

func (l *Logger) resetMatrix() {
	if l.current < len(l.exercises) {
		l.matrix = NewMatrix(l.exercises[l.current])
		return
	}
	l.matrix = nil
}

// Current returns the matrix for the exercise in focus, or false once the
// workout is complete.
func (l *Logger) Current() (*Matrix, bool) {
	return l.matrix, l.matrix != nil
}

func (l *Logger) CurrentIndex() int {
	return l.current
}

func (l *Logger) Done() bool {
	return l.current >= len(l.exercises)
}

// Logged returns every set written for the session so far.
func (l *Logger) Logged() []domain.WorkoutSetLog {
	out := make([]domain.WorkoutSetLog, len(l.logged))
	copy(out, l.logged)
	return out
}

// SubmitCurrent sends the current matrix as one batch.
func (l *Logger) SubmitCurrent(ctx context.Context) error {
	if l.matrix == nil {
		return ErrSessionComplete
	}
	return l.Submit(ctx, l.matrix.Sets())
}

// Submit writes sets for the current exercise and advances to the next one.
func (l *Logger) Submit(ctx context.Context, sets []domain.WorkoutSetLog) error {
	if l.Done() {
		return ErrSessionComplete
	}
	ex := l.exercises[l.current]
	if err := ValidateBatch(ex.ID, sets); err != nil {
		return err
	}

	stamp := l.now()
	batch := make([]domain.WorkoutSetLog, len(sets))
	for i, s := range sets {
		s.ExerciseID = ex.ExerciseID
		s.LoggedAt = stamp
		batch[i] = s
	}

	completed := l.current+1 == len(l.exercises)
	if err := l.writer.AppendSetLogs(ctx, l.sessionID, l.current, batch, completed); err != nil {
		return err
	}

	l.logged = append(l.logged, batch...)
	l.current++
	l.resetMatrix()
	return nil
}
