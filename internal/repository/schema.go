package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Column types are chosen so the same DDL runs on Postgres and SQLite.
var sqlSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id       TEXT PRIMARY KEY,
		name     TEXT NOT NULL,
		email    TEXT NOT NULL,
		password TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS users_email_idx ON users (email)`,
	`CREATE TABLE IF NOT EXISTS posts (
		id          TEXT PRIMARY KEY,
		owner_id    TEXT NOT NULL,
		title       TEXT NOT NULL,
		photos      TEXT NOT NULL,
		description TEXT NOT NULL,
		price       DOUBLE PRECISION NOT NULL,
		features    TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS posts_owner_idx ON posts (owner_id)`,
	`CREATE TABLE IF NOT EXISTS bookings (
		id        TEXT PRIMARY KEY,
		post_id   TEXT NOT NULL,
		booker_id TEXT NOT NULL,
		name      TEXT NOT NULL,
		phone     TEXT NOT NULL,
		pick_up   TIMESTAMP NOT NULL,
		drop_off  TIMESTAMP NOT NULL,
		total     DOUBLE PRECISION NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS bookings_booker_idx ON bookings (booker_id)`,
}

// MigrateSQL creates the tables used by the SQL stores.
func MigrateSQL(ctx context.Context, db *sqlx.DB) error {
	for _, stmt := range sqlSchema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("MigrateSQL: %w", err)
		}
	}
	return nil
}

// NewSQLStores wires the sqlx implementations of every store to db.
func NewSQLStores(db *sqlx.DB) Stores {
	return Stores{
		Users:    NewUserRepository(db),
		Listings: NewListingRepository(db),
		Bookings: NewBookingRepository(db),
	}
}
