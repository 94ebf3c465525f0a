package repository

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	usersCollection    = "users"
	listingsCollection = "posts"
	bookingsCollection = "bookings"
)

// NewMongoStores wires the Mongo implementations of every store to db.
func NewMongoStores(db *mongo.Database) Stores {
	return Stores{
		Users:    NewMongoUserRepository(db),
		Listings: NewMongoListingRepository(db),
		Bookings: NewMongoBookingRepository(db),
	}
}

// EnsureMongoIndexes creates the lookup indexes used by the stores. It is idempotent.
func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	indexes := map[string]string{
		usersCollection:    "email",
		listingsCollection: "owner",
		bookingsCollection: "bookerId",
	}
	for coll, field := range indexes {
		model := mongo.IndexModel{Keys: bson.D{{Key: field, Value: 1}}}
		if _, err := db.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("EnsureMongoIndexes: %s.%s: %w", coll, field, err)
		}
	}
	return nil
}
