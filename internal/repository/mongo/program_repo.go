package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"tidalpower/fitness-studio/internal/domain"
	"tidalpower/fitness-studio/internal/repository"
)

const (
	programCollectionName    = "programs"
	assignmentCollectionName = "program_assignments"
)

// mongoProgramRepository implements repository.ProgramRepository over two
// collections: definitions and client assignments.
type mongoProgramRepository struct {
	programs    *mongo.Collection
	assignments *mongo.Collection
}

func NewMongoProgramRepository(db *mongo.Database) repository.ProgramRepository {
	return &mongoProgramRepository{
		programs:    db.Collection(programCollectionName),
		assignments: db.Collection(assignmentCollectionName),
	}
}

func (r *mongoProgramRepository) Create(ctx context.Context, program *domain.ProgramDefinition) (primitive.ObjectID, error) {
	if program.TrainerID == primitive.NilObjectID || program.Name == "" {
		return primitive.NilObjectID, errors.New("program requires trainerId and name")
	}
	program.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	program.CreatedAt = now
	program.UpdatedAt = now
	if program.Slots == nil {
		program.Slots = []domain.ProgramTemplateSlot{}
	}

	result, err := r.programs.InsertOne(ctx, program)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoProgramRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ProgramDefinition, error) {
	var program domain.ProgramDefinition
	if err := r.programs.FindOne(ctx, bson.M{"_id": id}).Decode(&program); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &program, nil
}

func (r *mongoProgramRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.ProgramDefinition, error) {
	cursor, err := r.programs.Find(ctx, bson.M{"trainerId": trainerID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	programs := []domain.ProgramDefinition{}
	if err = cursor.All(ctx, &programs); err != nil {
		return nil, err
	}
	return programs, nil
}

func (r *mongoProgramRepository) CreateAssignment(ctx context.Context, a *domain.ProgramAssignment) (primitive.ObjectID, error) {
	if a.ProgramID == primitive.NilObjectID || a.ClientID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("assignment requires programId and clientId")
	}
	a.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	result, err := r.assignments.InsertOne(ctx, a)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoProgramRepository) GetAssignment(ctx context.Context, id primitive.ObjectID) (*domain.ProgramAssignment, error) {
	var a domain.ProgramAssignment
	if err := r.assignments.FindOne(ctx, bson.M{"_id": id}).Decode(&a); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &a, nil
}

func (r *mongoProgramRepository) ListAssignmentsByClient(ctx context.Context, clientID primitive.ObjectID) ([]domain.ProgramAssignment, error) {
	cursor, err := r.assignments.Find(ctx, bson.M{"clientId": clientID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	assignments := []domain.ProgramAssignment{}
	if err = cursor.All(ctx, &assignments); err != nil {
		return nil, err
	}
	return assignments, nil
}

// UpdatePosition moves the assignment from (fromWeek, fromDay) to
// (toWeek, toDay). ErrConflict means someone else moved it first.
func (r *mongoProgramRepository) UpdatePosition(ctx context.Context, id primitive.ObjectID, fromWeek, fromDay, toWeek, toDay int, completedAt *time.Time) error {
	set := bson.M{
		"currentWeek": toWeek,
		"currentDay":  toDay,
		"updatedAt":   time.Now().UTC(),
	}
	if completedAt != nil {
		set["completedAt"] = *completedAt
	}
	filter := bson.M{"_id": id, "currentWeek": fromWeek, "currentDay": fromDay}

	result, err := r.assignments.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		n, err := r.assignments.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return err
		}
		if n == 0 {
			return repository.ErrNotFound
		}
		return repository.ErrConflict
	}
	return nil
}

func EnsureProgramIndexes(ctx context.Context, programs, assignments *mongo.Collection) {
	createIndexes(ctx, programs, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
	})
	createIndexes(ctx, assignments, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "createdAt", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "programId", Value: 1}},
		},
	})
}
