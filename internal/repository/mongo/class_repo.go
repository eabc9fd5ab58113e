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

const classCollectionName = "classes"

type mongoClassRepository struct {
	collection *mongo.Collection
}

func NewMongoClassRepository(db *mongo.Database) repository.ClassRepository {
	return &mongoClassRepository{
		collection: db.Collection(classCollectionName),
	}
}

func (r *mongoClassRepository) Create(ctx context.Context, class *domain.ClassDefinition) (primitive.ObjectID, error) {
	if class.Name == "" || class.StartTime == "" {
		return primitive.NilObjectID, errors.New("class name and start time are required")
	}

	class.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	class.CreatedAt = now
	class.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, class)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoClassRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.ClassDefinition, error) {
	var class domain.ClassDefinition
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&class); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &class, nil
}

// List returns classes ordered by start time, then name.
func (r *mongoClassRepository) List(ctx context.Context, activeOnly bool) ([]domain.ClassDefinition, error) {
	filter := bson.M{}
	if activeOnly {
		filter["isActive"] = true
	}
	findOptions := options.Find().SetSort(bson.D{{Key: "startTime", Value: 1}, {Key: "name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	classes := []domain.ClassDefinition{}
	if err = cursor.All(ctx, &classes); err != nil {
		return nil, err
	}
	return classes, nil
}

// Update replaces the schedule and details of a class. The legacy dayOfWeek
// field is cleared so the stored record only carries daysOfWeek.
func (r *mongoClassRepository) Update(ctx context.Context, class *domain.ClassDefinition) error {
	if class.ID == primitive.NilObjectID {
		return errors.New("class ID is required for update")
	}

	update := bson.M{
		"$set": bson.M{
			"name":            class.Name,
			"category":        class.Category,
			"instructorId":    class.InstructorID,
			"daysOfWeek":      class.DaysOfWeek,
			"startTime":       class.StartTime,
			"durationMinutes": class.DurationMinutes,
			"maxCapacity":     class.MaxCapacity,
			"priceCents":      class.PriceCents,
			"isActive":        class.IsActive,
			"updatedAt":       time.Now().UTC(),
		},
		"$unset": bson.M{"dayOfWeek": ""},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": class.ID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *mongoClassRepository) SetActive(ctx context.Context, id primitive.ObjectID, active bool) error {
	update := bson.M{"$set": bson.M{"isActive": active, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func EnsureClassIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "isActive", Value: 1}, {Key: "startTime", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "instructorId", Value: 1}},
		},
	})
}
