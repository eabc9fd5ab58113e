package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SessionExercise is one planned exercise inside a workout session, copied
// from the template the session was created from.
type SessionExercise struct {
	ID               primitive.ObjectID `bson:"_id" json:"id"`
	ExerciseID       primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name             string             `bson:"name" json:"name"`
	PlannedSets      int                `bson:"plannedSets" json:"plannedSets"`
	PlannedReps      int                `bson:"plannedReps" json:"plannedReps"`
	PlannedWeightLbs float64            `bson:"plannedWeightLbs" json:"plannedWeightLbs"`
}

// WorkoutSetLog is a single completed set. Logs are append-only.
type WorkoutSetLog struct {
	SessionExerciseID primitive.ObjectID `bson:"sessionExerciseId" json:"sessionExerciseId"`
	ExerciseID        primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	SetNumber         int                `bson:"setNumber" json:"setNumber"`
	RepsCompleted     int                `bson:"repsCompleted" json:"repsCompleted"`
	WeightUsedLbs     float64            `bson:"weightUsedLbs" json:"weightUsedLbs"`
	Notes             string             `bson:"notes,omitempty" json:"notes,omitempty"`
	LoggedAt          time.Time          `bson:"loggedAt" json:"loggedAt"`
}

// WorkoutSession is a held (or scheduled) workout. When ClassID is set the
// session belongs to that class's occurrence on SessionDate.
type WorkoutSession struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	ClassID         *primitive.ObjectID `bson:"classId,omitempty" json:"classId,omitempty"`
	ClientID        *primitive.ObjectID `bson:"clientId,omitempty" json:"clientId,omitempty"`
	TrainerID       primitive.ObjectID  `bson:"trainerId" json:"trainerId"`
	TemplateID      *primitive.ObjectID `bson:"templateId,omitempty" json:"templateId,omitempty"`
	SessionDate     time.Time           `bson:"sessionDate" json:"sessionDate"`
	WorkoutTypeName string              `bson:"workoutTypeName,omitempty" json:"workoutTypeName,omitempty"`
	Exercises       []SessionExercise   `bson:"exercises" json:"exercises"`
	// CurrentExercise is the index into Exercises being logged; equal to
	// len(Exercises) once the workout is complete.
	CurrentExercise int             `bson:"currentExercise" json:"currentExercise"`
	SetLogs         []WorkoutSetLog `bson:"setLogs" json:"setLogs"`
	CompletedAt     *time.Time      `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt       time.Time       `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updatedAt" json:"updatedAt"`
}

// IsComplete reports whether every planned exercise has been logged.
func (s *WorkoutSession) IsComplete() bool {
	return s.CurrentExercise >= len(s.Exercises)
}
