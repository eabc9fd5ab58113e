package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"tidalpower/fitness-studio/internal/domain"
)

var (
	ErrNotFound = RepositoryError("not found")
	ErrConflict = RepositoryError("conflict")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	AddClientIDToTrainer(ctx context.Context, trainerID, clientID primitive.ObjectID) error
	GetClientsByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.User, error)
	SetTrainerForClient(ctx context.Context, clientID, trainerID primitive.ObjectID) error
}

// ExerciseRepository defines the interface for interacting with exercise data.
type ExerciseRepository interface {
	Create(ctx context.Context, exercise *domain.Exercise) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Exercise, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.Exercise, error)
	Update(ctx context.Context, exercise *domain.Exercise) error
	Delete(ctx context.Context, id primitive.ObjectID, trainerID primitive.ObjectID) error
}

// ClassRepository stores recurring class definitions.
type ClassRepository interface {
	Create(ctx context.Context, class *domain.ClassDefinition) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ClassDefinition, error)
	List(ctx context.Context, activeOnly bool) ([]domain.ClassDefinition, error)
	Update(ctx context.Context, class *domain.ClassDefinition) error
	SetActive(ctx context.Context, id primitive.ObjectID, active bool) error
}

// BookingRepository stores client reservations for class occurrences.
type BookingRepository interface {
	Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error)
	// ReserveSpot takes one of capacity spots in the occurrence, atomically.
	// Returns ErrConflict when every spot is taken.
	ReserveSpot(ctx context.Context, classID primitive.ObjectID, date time.Time, capacity int) error
	ReleaseSpot(ctx context.Context, classID primitive.ObjectID, date time.Time) error
	FindActive(ctx context.Context, classID, clientID primitive.ObjectID, date time.Time) (*domain.Booking, error)
	ListByClient(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Booking, error)
	// UpdateStatus returns ErrConflict when the booking already has status.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error
}

// WorkoutSessionRepository stores held sessions together with their set logs.
type WorkoutSessionRepository interface {
	// Create returns ErrConflict when the class already has a session that day.
	Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error)
	ListInRange(ctx context.Context, from, to time.Time) ([]domain.WorkoutSession, error)
	FindForOccurrence(ctx context.Context, classID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error)
	ListByClientExercise(ctx context.Context, clientID, exerciseID primitive.ObjectID) ([]domain.WorkoutSession, error)
	// AppendSetLogs pushes logs and advances the session past expectedExercise
	// in one update. Returns ErrConflict when the session is no longer on
	// expectedExercise.
	AppendSetLogs(ctx context.Context, id primitive.ObjectID, expectedExercise int, logs []domain.WorkoutSetLog, completed bool) error
}

// TemplateRepository stores workout templates.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.WorkoutTemplate, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutTemplate, error)
}

// ProgramRepository stores program definitions and client assignments.
type ProgramRepository interface {
	Create(ctx context.Context, program *domain.ProgramDefinition) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramDefinition, error)
	GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramDefinition, error)

	CreateAssignment(ctx context.Context, a *domain.ProgramAssignment) (primitive.ObjectID, error)
	GetAssignment(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error)
	ListAssignmentsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error)
	// UpdatePosition moves an assignment only if it is still at from.
	UpdatePosition(ctx context.Context, id primitive.ObjectID, fromWeek, fromDay, toWeek, toDay int, completedAt *time.Time) error
}
