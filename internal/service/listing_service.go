package service

import (
	"context"
	"fmt"

	"car-rental-service/internal/model"
	"car-rental-service/internal/repository"
)

// ListingService contains the listing operations. With enforceOwnership set, update and
// delete are refused unless the acting user owns the listing.
type ListingService struct {
	listings         repository.ListingStore
	enforceOwnership bool
}

func NewListingService(listings repository.ListingStore, enforceOwnership bool) *ListingService {
	return &ListingService{listings: listings, enforceOwnership: enforceOwnership}
}

func (s *ListingService) EnforcesOwnership() bool {
	return s.enforceOwnership
}

func (s *ListingService) Create(ctx context.Context, ownerID string, f model.ListingFields) (*model.Listing, error) {
	l := &model.Listing{OwnerID: ownerID}
	f.Apply(l)
	if err := s.listings.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("ListingService.Create: %w", err)
	}
	return l, nil
}

// Update replaces every mutable field of listing id. actorID is ignored unless
// ownership is enforced.
func (s *ListingService) Update(ctx context.Context, actorID, id string, f model.ListingFields) (*model.Listing, error) {
	if err := s.checkOwner(ctx, actorID, id); err != nil {
		return nil, fmt.Errorf("ListingService.Update: %w", err)
	}
	l := &model.Listing{ID: id}
	f.Apply(l)
	if err := s.listings.Update(ctx, l); err != nil {
		return nil, fmt.Errorf("ListingService.Update: %w", err)
	}
	return l, nil
}

func (s *ListingService) GetByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	list, err := s.listings.GetByOwner(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("ListingService.GetByOwner: %w", err)
	}
	return list, nil
}

func (s *ListingService) GetAll(ctx context.Context) ([]model.Listing, error) {
	list, err := s.listings.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListingService.GetAll: %w", err)
	}
	return list, nil
}

func (s *ListingService) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingService.GetByID: %w", err)
	}
	return l, nil
}

// Delete removes listing id and returns it. Bookings referencing it are kept.
func (s *ListingService) Delete(ctx context.Context, actorID, id string) (*model.Listing, error) {
	if err := s.checkOwner(ctx, actorID, id); err != nil {
		return nil, fmt.Errorf("ListingService.Delete: %w", err)
	}
	l, err := s.listings.Delete(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ListingService.Delete: %w", err)
	}
	return l, nil
}

func (s *ListingService) checkOwner(ctx context.Context, actorID, id string) error {
	if !s.enforceOwnership {
		return nil
	}
	current, err := s.listings.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.OwnerID != actorID {
		return ErrForbidden
	}
	return nil
}
