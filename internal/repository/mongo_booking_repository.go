package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"car-rental-service/internal/model"
)

type MongoBookingRepository struct {
	coll *mongo.Collection
}

func NewMongoBookingRepository(db *mongo.Database) *MongoBookingRepository {
	return &MongoBookingRepository{coll: db.Collection(bookingsCollection)}
}

func (r *MongoBookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("MongoBookingRepository.Create: %w", err)
	}
	return nil
}

// GetByBooker joins every booking of bookerID with its listing and booker.
func (r *MongoBookingRepository) GetByBooker(ctx context.Context, bookerID string) ([]model.BookingDetail, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"bookerId": bookerID}}},
		{{Key: "$sort", Value: bson.M{"_id": 1}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         listingsCollection,
			"localField":   "post",
			"foreignField": "_id",
			"as":           "post",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$post", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$lookup", Value: bson.M{
			"from":         usersCollection,
			"localField":   "bookerId",
			"foreignField": "_id",
			"as":           "bookerId",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$bookerId", "preserveNullAndEmptyArrays": true}}},
	}

	cur, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("MongoBookingRepository.GetByBooker: %w", err)
	}
	out := []model.BookingDetail{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, fmt.Errorf("MongoBookingRepository.GetByBooker: decode: %w", err)
	}
	return out, nil
}
