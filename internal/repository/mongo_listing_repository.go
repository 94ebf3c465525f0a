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

type MongoListingRepository struct {
	coll *mongo.Collection
}

func NewMongoListingRepository(db *mongo.Database) *MongoListingRepository {
	return &MongoListingRepository{coll: db.Collection(listingsCollection)}
}

func (r *MongoListingRepository) Create(ctx context.Context, l *model.Listing) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	if _, err := r.coll.InsertOne(ctx, l); err != nil {
		return fmt.Errorf("MongoListingRepository.Create: %w", err)
	}
	return nil
}

func (r *MongoListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("MongoListingRepository.GetByID: %w", err)
	}
	return &l, nil
}

func (r *MongoListingRepository) GetByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	list, err := r.find(ctx, bson.M{"owner": ownerID})
	if err != nil {
		return nil, fmt.Errorf("MongoListingRepository.GetByOwner: %w", err)
	}
	return list, nil
}

func (r *MongoListingRepository) GetAll(ctx context.Context) ([]model.Listing, error) {
	list, err := r.find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("MongoListingRepository.GetAll: %w", err)
	}
	return list, nil
}

func (r *MongoListingRepository) find(ctx context.Context, filter bson.M) ([]model.Listing, error) {
	cur, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	list := []model.Listing{}
	if err := cur.All(ctx, &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *MongoListingRepository) Update(ctx context.Context, l *model.Listing) error {
	update := bson.M{"$set": bson.M{
		"title":       l.Title,
		"photos":      l.Photos,
		"description": l.Description,
		"price":       l.Price,
		"features":    l.Features,
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": l.ID}, update, opts).Decode(l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return ErrNotFound
		}
		return fmt.Errorf("MongoListingRepository.Update: %w", err)
	}
	return nil
}

func (r *MongoListingRepository) Delete(ctx context.Context, id string) (*model.Listing, error) {
	var l model.Listing
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&l); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("MongoListingRepository.Delete: %w", err)
	}
	return &l, nil
}
