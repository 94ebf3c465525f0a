package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"car-rental-service/internal/model"
)

const listingColumns = `id, owner_id, title, photos, description, price, features`

type ListingRepository struct {
	DB *sqlx.DB
}

func NewListingRepository(db *sqlx.DB) *ListingRepository {
	return &ListingRepository{DB: db}
}

// Create inserts l, assigning an id when it has none.
func (r *ListingRepository) Create(ctx context.Context, l *model.Listing) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	_, err := r.DB.NamedExecContext(ctx, `
        INSERT INTO posts
            (id, owner_id, title, photos, description, price, features)
        VALUES
            (:id, :owner_id, :title, :photos, :description, :price, :features)
    `, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Create: %w", err)
	}
	return nil
}

// GetByID returns ErrNotFound for an unknown id.
func (r *ListingRepository) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	return getListing(ctx, r.DB, id)
}

func (r *ListingRepository) GetByOwner(ctx context.Context, ownerID string) ([]model.Listing, error) {
	list := []model.Listing{}
	q := r.DB.Rebind(`SELECT ` + listingColumns + ` FROM posts WHERE owner_id = ? ORDER BY id`)
	if err := r.DB.SelectContext(ctx, &list, q, ownerID); err != nil {
		return nil, fmt.Errorf("ListingRepository.GetByOwner: %w", err)
	}
	return list, nil
}

func (r *ListingRepository) GetAll(ctx context.Context) ([]model.Listing, error) {
	list := []model.Listing{}
	if err := r.DB.SelectContext(ctx, &list, `SELECT `+listingColumns+` FROM posts ORDER BY id`); err != nil {
		return nil, fmt.Errorf("ListingRepository.GetAll: %w", err)
	}
	return list, nil
}

// Update replaces the mutable fields and reloads l from the row.
func (r *ListingRepository) Update(ctx context.Context, l *model.Listing) error {
	res, err := r.DB.NamedExecContext(ctx, `
        UPDATE posts SET
            title       = :title,
            photos      = :photos,
            description = :description,
            price       = :price,
            features    = :features
        WHERE id = :id
    `, l)
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("ListingRepository.Update: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}

	stored, err := getListing(ctx, r.DB, l.ID)
	if err != nil {
		return err
	}
	*l = *stored
	return nil
}

// Delete removes the listing and returns it as it was stored.
func (r *ListingRepository) Delete(ctx context.Context, id string) (deleted *model.Listing, err error) {
	tx, err := r.DB.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("ListingRepository.BeginTxx: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	deleted, err = getListing(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, tx.Rebind(`DELETE FROM posts WHERE id = ?`), id); err != nil {
		return nil, fmt.Errorf("ListingRepository.Delete: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("ListingRepository commit: %w", err)
	}
	return deleted, nil
}

type queryer interface {
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	Rebind(query string) string
}

func getListing(ctx context.Context, q queryer, id string) (*model.Listing, error) {
	var l model.Listing
	err := q.GetContext(ctx, &l, q.Rebind(`SELECT `+listingColumns+` FROM posts WHERE id = ?`), id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("ListingRepository.GetByID: %w", err)
	}
	return &l, nil
}
