package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultTemplateName = "Untitled workout"

// WorkoutTemplate is a reusable, trainer-owned list of planned exercises.
type WorkoutTemplate struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Exercises   []TemplateExercise `bson:"exercises" json:"exercises"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}

type TemplateExercise struct {
	ExerciseID primitive.ObjectID `bson:"exerciseId" json:"exerciseId"`
	Name       string             `bson:"name" json:"name"`
	Sets       int                `bson:"sets" json:"sets"`
	Reps       int                `bson:"reps" json:"reps"`
	WeightLbs  float64            `bson:"weightLbs" json:"weightLbs"`
}

// ProgramTemplateSlot schedules a template on a (week, day) of a program.
// Several slots may share a day.
type ProgramTemplateSlot struct {
	TemplateID   primitive.ObjectID `bson:"templateId" json:"templateId"`
	TemplateName string             `bson:"templateName" json:"templateName"`
	WeekNumber   int                `bson:"weekNumber" json:"weekNumber"`
	DayNumber    int                `bson:"dayNumber" json:"dayNumber"`
}

// ProgramDefinition is a multi-week schedule of templates.
type ProgramDefinition struct {
	ID          primitive.ObjectID    `bson:"_id,omitempty" json:"id"`
	TrainerID   primitive.ObjectID    `bson:"trainerId" json:"trainerId"`
	Name        string                `bson:"name" json:"name"`
	Description string                `bson:"description,omitempty" json:"description,omitempty"`
	TotalWeeks  int                   `bson:"totalWeeks" json:"totalWeeks"`
	Slots       []ProgramTemplateSlot `bson:"slots" json:"slots"`
	CreatedAt   time.Time             `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time             `bson:"updatedAt" json:"updatedAt"`
}

// ProgramAssignment places a client on a program. TotalWeeks is copied from
// the program when the assignment is made.
type ProgramAssignment struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	ProgramID   primitive.ObjectID `bson:"programId" json:"programId"`
	ClientID    primitive.ObjectID `bson:"clientId" json:"clientId"`
	TrainerID   primitive.ObjectID `bson:"trainerId" json:"trainerId"`
	CurrentWeek int                `bson:"currentWeek" json:"currentWeek"`
	CurrentDay  int                `bson:"currentDay" json:"currentDay"`
	TotalWeeks  int                `bson:"totalWeeks" json:"totalWeeks"`
	Notes       string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CompletedAt *time.Time         `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time          `bson:"updatedAt" json:"updatedAt"`
}
