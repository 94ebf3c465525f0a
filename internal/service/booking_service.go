package service

import (
	"context"
	"fmt"

	"car-rental-service/internal/model"
	"car-rental-service/internal/repository"
)

// BookingService records bookings as submitted; dates, listing and total are not checked.
type BookingService struct {
	bookings repository.BookingStore
}

func NewBookingService(bookings repository.BookingStore) *BookingService {
	return &BookingService{bookings: bookings}
}

func (s *BookingService) Create(ctx context.Context, b *model.Booking) error {
	b.ID = ""
	if err := s.bookings.Create(ctx, b); err != nil {
		return fmt.Errorf("BookingService.Create: %w", err)
	}
	return nil
}

func (s *BookingService) GetByBooker(ctx context.Context, bookerID string) ([]model.BookingDetail, error) {
	list, err := s.bookings.GetByBooker(ctx, bookerID)
	if err != nil {
		return nil, fmt.Errorf("BookingService.GetByBooker: %w", err)
	}
	return list, nil
}
