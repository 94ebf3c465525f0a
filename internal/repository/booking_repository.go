package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"car-rental-service/internal/model"
)

type BookingRepository struct {
	DB *sqlx.DB
}

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{DB: db}
}

func (r *BookingRepository) Create(ctx context.Context, b *model.Booking) error {
	if b.ID == "" {
		b.ID = NewID()
	}
	_, err := r.DB.NamedExecContext(ctx, `
		INSERT INTO bookings (id, post_id, booker_id, name, phone, pick_up, drop_off, total)
		VALUES (:id, :post_id, :booker_id, :name, :phone, :pick_up, :drop_off, :total)
	`, b)
	if err != nil {
		return fmt.Errorf("BookingRepository.Create: %w", err)
	}
	return nil
}

// GetByBooker loads the bookings of bookerID and expands their listings and booker.
func (r *BookingRepository) GetByBooker(ctx context.Context, bookerID string) ([]model.BookingDetail, error) {
	var bookings []model.Booking
	const q = `
		SELECT id, post_id, booker_id, name, phone, pick_up, drop_off, total
		FROM bookings
		WHERE booker_id = ?
		ORDER BY id
	`
	if err := r.DB.SelectContext(ctx, &bookings, r.DB.Rebind(q), bookerID); err != nil {
		return nil, fmt.Errorf("BookingRepository.GetByBooker: %w", err)
	}
	out := make([]model.BookingDetail, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}

	listings, err := r.listingsByID(ctx, bookings)
	if err != nil {
		return nil, err
	}
	var booker *model.User
	booker, err = NewUserRepository(r.DB).GetByID(ctx, bookerID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("BookingRepository.GetByBooker: booker: %w", err)
	}

	for _, b := range bookings {
		d := model.BookingDetail{
			ID:      b.ID,
			Booker:  booker,
			Name:    b.Name,
			Phone:   b.Phone,
			PickUp:  b.PickUp,
			DropOff: b.DropOff,
			Total:   b.Total,
		}
		if l, ok := listings[b.ListingID]; ok {
			l := l
			d.Listing = &l
		}
		out = append(out, d)
	}
	return out, nil
}

func (r *BookingRepository) listingsByID(ctx context.Context, bookings []model.Booking) (map[string]model.Listing, error) {
	seen := make(map[string]struct{}, len(bookings))
	ids := make([]string, 0, len(bookings))
	for _, b := range bookings {
		if _, ok := seen[b.ListingID]; ok {
			continue
		}
		seen[b.ListingID] = struct{}{}
		ids = append(ids, b.ListingID)
	}

	query, args, err := sqlx.In(`SELECT `+listingColumns+` FROM posts WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("BookingRepository.listingsByID: %w", err)
	}
	var list []model.Listing
	if err := r.DB.SelectContext(ctx, &list, r.DB.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("BookingRepository.listingsByID: %w", err)
	}

	byID := make(map[string]model.Listing, len(list))
	for _, l := range list {
		byID[l.ID] = l
	}
	return byID, nil
}
