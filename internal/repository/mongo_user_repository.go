package repository

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"car-rental-service/internal/model"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(usersCollection)}
}

func (r *MongoUserRepository) Create(ctx context.Context, u *model.User) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	if _, err := r.coll.InsertOne(ctx, u); err != nil {
		return fmt.Errorf("MongoUserRepository.Create: %w", err)
	}
	return nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"_id": id}, "GetByID")
}

// GetByEmail returns the oldest user registered with email.
func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, bson.M{"email": email}, "GetByEmail")
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M, op string) (*model.User, error) {
	var u model.User
	opts := options.FindOne().SetSort(bson.D{{Key: "_id", Value: 1}})
	if err := r.coll.FindOne(ctx, filter, opts).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("MongoUserRepository.%s: %w", op, err)
	}
	return &u, nil
}
