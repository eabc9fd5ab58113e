// internal/domain/exercise.go
package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Exercise represents a single exercise definition in the library.
type Exercise struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"` // owner
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	MuscleGroup string             `bson:"muscleGroup,omitempty" json:"muscleGroup,omitempty"` // e.g. "Chest", "Legs"
	Equipment   string             `bson:"equipment,omitempty" json:"equipment,omitempty"`     // e.g. "Barbell", "Bodyweight"
	Difficulty  string             `bson:"difficulty,omitempty" json:"difficulty,omitempty"`
	// VideoObjectKey points at the demo video in object storage, if one was uploaded.
	VideoObjectKey string    `bson:"videoObjectKey,omitempty" json:"-"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// PersonalRecords are all-time bests for one client on one exercise.
type PersonalRecords struct {
	MaxWeightLbs float64 `json:"max_weight"`
	MaxReps      int     `json:"max_reps"`
}

// PreviousBest is the heaviest set of the client's most recent earlier session,
// with the most reps done at that weight.
type PreviousBest struct {
	SessionID primitive.ObjectID `json:"session_id"`
	WeightLbs float64            `json:"weight"`
	Reps      int                `json:"reps"`
}

// ExerciseBest is what a client is compared against while logging sets.
// Either part may be nil when there is no history.
type ExerciseBest struct {
	ExerciseID      primitive.ObjectID `json:"exercise_id"`
	ClientID        primitive.ObjectID `json:"client_id"`
	PersonalRecords *PersonalRecords   `json:"personal_records,omitempty"`
	PreviousBest    *PreviousBest      `json:"previous_best,omitempty"`
}
