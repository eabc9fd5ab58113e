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

const sessionCollectionName = "workout_sessions"

// mongoSessionRepository implements repository.WorkoutSessionRepository.
// Set logs live inside the session document so a batch is one atomic update.
type mongoSessionRepository struct {
	collection *mongo.Collection
}

func NewMongoSessionRepository(db *mongo.Database) repository.WorkoutSessionRepository {
	return &mongoSessionRepository{
		collection: db.Collection(sessionCollectionName),
	}
}

func (r *mongoSessionRepository) Create(ctx context.Context, session *domain.WorkoutSession) (primitive.ObjectID, error) {
	if session.TrainerID == primitive.NilObjectID {
		return primitive.NilObjectID, errors.New("workout session requires trainerId")
	}
	session.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	session.CreatedAt = now
	session.UpdatedAt = now
	if session.SetLogs == nil {
		session.SetLogs = []domain.WorkoutSetLog{}
	}
	if session.Exercises == nil {
		session.Exercises = []domain.SessionExercise{}
	}

	result, err := r.collection.InsertOne(ctx, session)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoSessionRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.WorkoutSession, error) {
	var session domain.WorkoutSession
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&session); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// ListInRange returns sessions dated from <= sessionDate < to.
func (r *mongoSessionRepository) ListInRange(ctx context.Context, from, to time.Time) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{"sessionDate": bson.M{"$gte": from, "$lt": to}},
		options.Find().SetSort(bson.D{{Key: "sessionDate", Value: 1}, {Key: "createdAt", Value: 1}}))
}

func (r *mongoSessionRepository) FindForOccurrence(ctx context.Context, classID primitive.ObjectID, from, to time.Time) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{
		"classId":     classID,
		"sessionDate": bson.M{"$gte": from, "$lt": to},
	}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
}

// ListByClientExercise returns the client's sessions with logged sets for the
// exercise, most recent first.
func (r *mongoSessionRepository) ListByClientExercise(ctx context.Context, clientID, exerciseID primitive.ObjectID) ([]domain.WorkoutSession, error) {
	return r.find(ctx, bson.M{
		"clientId":           clientID,
		"setLogs.exerciseId": exerciseID,
	}, options.Find().SetSort(bson.D{{Key: "sessionDate", Value: -1}}))
}

func (r *mongoSessionRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]domain.WorkoutSession, error) {
	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	sessions := []domain.WorkoutSession{}
	if err = cursor.All(ctx, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// AppendSetLogs pushes a whole exercise's sets and advances currentExercise
// in one update, guarded on the index the batch was built for.
func (r *mongoSessionRepository) AppendSetLogs(ctx context.Context, id primitive.ObjectID, expectedExercise int, logs []domain.WorkoutSetLog, completed bool) error {
	now := time.Now().UTC()
	set := bson.M{"updatedAt": now}
	if completed {
		set["completedAt"] = now
	}
	update := bson.M{
		"$push": bson.M{"setLogs": bson.M{"$each": logs}},
		"$inc":  bson.M{"currentExercise": 1},
		"$set":  set,
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "currentExercise": expectedExercise}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		n, err := r.collection.CountDocuments(ctx, bson.M{"_id": id})
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

func EnsureSessionIndexes(ctx context.Context, collection *mongo.Collection) {
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "sessionDate", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "classId", Value: 1}, {Key: "sessionDate", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"classId": bson.M{"$exists": true}}).
				SetName("one_session_per_occurrence"),
		},
		{
			Keys:    bson.D{{Key: "clientId", Value: 1}, {Key: "setLogs.exerciseId", Value: 1}},
			Options: options.Index().SetSparse(true),
		},
	})
}
