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

const templateCollectionName = "workout_templates"

type mongoTemplateRepository struct {
	collection *mongo.Collection
}

func NewMongoTemplateRepository(db *mongo.Database) repository.TemplateRepository {
	return &mongoTemplateRepository{
		collection: db.Collection(templateCollectionName),
	}
}

func (r *mongoTemplateRepository) Create(ctx context.Context, tpl *domain.WorkoutTemplate) (primitive.ObjectID, error) {
	if tpl.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("template requires trainerId")
	}
	tpl.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	tpl.CreatedAt = now
	tpl.UpdatedAt = now
	if tpl.Exercises == nil {
		tpl.Exercises = []domain.TemplateExercise{}
	}

	result, err := r.collection.InsertOne(ctx, tpl)
	if err != nil {
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoTemplateRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutTemplate, error) {
	var tpl domain.WorkoutTemplate
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tpl); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &tpl, nil
}

// GetByIDs returns the templates that exist among ids, in no particular order.
func (r *mongoTemplateRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	if len(ids) == 0 {
		return []domain.WorkoutTemplate{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}}, options.Find())
}

func (r *mongoTemplateRepository) GetByTrainerID(ctx context.Context, trainerID primitive.ObjectID) ([]domain.WorkoutTemplate, error) {
	return r.find(ctx, bson.M{"trainerId": trainerID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
}

func (r *mongoTemplateRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.WorkoutTemplate, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	templates := []domain.WorkoutTemplate{}
	if err = cursor.All(ctx, &templates); err != nil {
		return nil, err
	}
	return templates, nil
}

func EnsureTemplateIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "trainerId", Value: 1}, {Key: "name", Value: 1}},
		},
	})
}
