package model

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// Listing is a rental offering ("post") owned by a user.
type Listing struct {
	ID          string     `bson:"_id" db:"id" json:"_id"`
	OwnerID     string     `bson:"owner" db:"owner_id" json:"owner"`
	Title       string     `bson:"title" db:"title" json:"title"`
	Photos      StringList `bson:"photos" db:"photos" json:"photos"`
	Description string     `bson:"description" db:"description" json:"description"`
	Price       float64    `bson:"price" db:"price" json:"price"`
	Features    StringList `bson:"features" db:"features" json:"features"`
}

// ListingFields are the mutable fields of a listing; update replaces all of them.
// Price is a pointer so that an explicit 0 is told apart from a missing price.
type ListingFields struct {
	Title       string     `json:"title" binding:"required"`
	Photos      StringList `json:"photos"`
	Description string     `json:"description" binding:"required"`
	Price       *float64   `json:"price" binding:"required"`
	Features    StringList `json:"features"`
}

// Apply overwrites every mutable field of l.
func (f ListingFields) Apply(l *Listing) {
	l.Title = f.Title
	l.Photos = f.Photos.orEmpty()
	l.Description = f.Description
	l.Price = 0
	if f.Price != nil {
		l.Price = *f.Price
	}
	l.Features = f.Features.orEmpty()
}

// StringList is an ordered list of strings. SQL stores keep it as a JSON array column.
type StringList []string

func (s StringList) orEmpty() StringList {
	if s == nil {
		return StringList{}
	}
	return s
}

func (s StringList) Value() (driver.Value, error) {
	b, err := json.Marshal(s.orEmpty())
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *StringList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*s = StringList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList.Scan: unsupported type %T", src)
	}
	var out []string
	if err := json.Unmarshal(raw, &out); err != nil {
		return fmt.Errorf("StringList.Scan: %w", err)
	}
	*s = StringList(out).orEmpty()
	return nil
}
