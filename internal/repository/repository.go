package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"car-rental-service/internal/model"
)

// ErrNotFound is returned when the requested document does not exist.
var ErrNotFound = errors.New("not found")

type UserStore interface {
	Create(ctx context.Context, u *model.User) error
	GetByID(ctx context.Context, id string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	GetByOwner(ctx context.Context, ownerID string) ([]model.Listing, error)
	GetAll(ctx context.Context) ([]model.Listing, error)
	// Update replaces the mutable fields of the stored listing with l's and
	// refreshes l from the stored document.
	Update(ctx context.Context, l *model.Listing) error
	Delete(ctx context.Context, id string) (*model.Listing, error)
}

type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	GetByBooker(ctx context.Context, bookerID string) ([]model.BookingDetail, error)
}

// Stores groups one implementation of every store.
type Stores struct {
	Users    UserStore
	Listings ListingStore
	Bookings BookingStore
}

// NewID returns a 24-hex-character id. Ids generated by one process sort in creation order.
func NewID() string {
	return primitive.NewObjectID().Hex()
}
