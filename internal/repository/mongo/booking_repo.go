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
	bookingCollectionName   = "bookings"
	occupancyCollectionName = "class_occupancy"
)

type mongoBookingRepository struct {
	collection *mongo.Collection
	// one document per booked occurrence: {classId, date, taken}
	occupancy *mongo.Collection
}

func NewMongoBookingRepository(db *mongo.Database) repository.BookingRepository {
	return &mongoBookingRepository{
		collection: db.Collection(bookingCollectionName),
		occupancy:  db.Collection(occupancyCollectionName),
	}
}

// Create stores a booking. A second active booking for the same client and
// occurrence hits the partial unique index and returns ErrConflict.
func (r *mongoBookingRepository) Create(ctx context.Context, booking *domain.Booking) (primitive.ObjectID, error) {
	booking.ID = primitive.NewObjectID()
	now := time.Now().UTC()
	booking.CreatedAt = now
	booking.UpdatedAt = now
	if booking.Status == "" {
		booking.Status = domain.BookingBooked
	}

	result, err := r.collection.InsertOne(ctx, booking)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return primitive.NilObjectID, repository.ErrConflict
		}
		return primitive.NilObjectID, err
	}
	return insertedObjectID(result)
}

func (r *mongoBookingRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// ReserveSpot increments the occurrence's taken count only while it is below
// capacity. The first booking of an occurrence inserts its counter; losing
// that insert race falls back to the guarded increment.
func (r *mongoBookingRepository) ReserveSpot(ctx context.Context, classID primitive.ObjectID, date time.Time, capacity int) error {
	if capacity <= 0 {
		return repository.ErrConflict
	}
	reserved, err := r.incrementBelow(ctx, classID, date, capacity)
	if err != nil || reserved {
		return err
	}

	_, err = r.occupancy.InsertOne(ctx, bson.M{"classId": classID, "date": date, "taken": 1})
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	if reserved, err = r.incrementBelow(ctx, classID, date, capacity); err != nil {
		return err
	}
	if !reserved {
		return repository.ErrConflict
	}
	return nil
}

func (r *mongoBookingRepository) incrementBelow(ctx context.Context, classID primitive.ObjectID, date time.Time, capacity int) (bool, error) {
	result, err := r.occupancy.UpdateOne(ctx,
		bson.M{"classId": classID, "date": date, "taken": bson.M{"$lt": capacity}},
		bson.M{"$inc": bson.M{"taken": 1}},
	)
	if err != nil {
		return false, err
	}
	return result.MatchedCount == 1, nil
}

func (r *mongoBookingRepository) ReleaseSpot(ctx context.Context, classID primitive.ObjectID, date time.Time) error {
	_, err := r.occupancy.UpdateOne(ctx,
		bson.M{"classId": classID, "date": date, "taken": bson.M{"$gt": 0}},
		bson.M{"$inc": bson.M{"taken": -1}},
	)
	return err
}

func (r *mongoBookingRepository) FindActive(ctx context.Context, classID, clientID primitive.ObjectID, date time.Time) (*domain.Booking, error) {
	return r.findOne(ctx, bson.M{
		"classId":  classID,
		"clientId": clientID,
		"date":     date,
		"status":   domain.BookingBooked,
	})
}

func (r *mongoBookingRepository) findOne(ctx context.Context, filter bson.M) (*domain.Booking, error) {
	var booking domain.Booking
	if err := r.collection.FindOne(ctx, filter).Decode(&booking); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &booking, nil
}

// ListByClient returns the client's bookings with from <= date < to.
func (r *mongoBookingRepository) ListByClient(ctx context.Context, clientID primitive.ObjectID, from, to time.Time) ([]domain.Booking, error) {
	filter := bson.M{
		"clientId": clientID,
		"date":     bson.M{"$gte": from, "$lt": to},
	}
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	bookings := []domain.Booking{}
	if err = cursor.All(ctx, &bookings); err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *mongoBookingRepository) UpdateStatus(ctx context.Context, id primitive.ObjectID, status domain.BookingStatus) error {
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id, "status": bson.M{"$ne": status}}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		if _, err = r.GetByID(ctx, id); err != nil {
			return err
		}
		return repository.ErrConflict
	}
	return nil
}

func EnsureBookingIndexes(ctx context.Context, collection, occupancy *mongo.Collection) {
	createIndexes(ctx, occupancy, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "classId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("one_counter_per_occurrence"),
		},
	})
	createIndexes(ctx, collection, []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "classId", Value: 1}, {Key: "clientId", Value: 1}, {Key: "date", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": domain.BookingBooked}).
				SetName("one_active_booking_per_occurrence"),
		},
		{
			Keys: bson.D{{Key: "clientId", Value: 1}, {Key: "date", Value: 1}},
		},
	})
}
