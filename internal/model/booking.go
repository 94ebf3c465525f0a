package model

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Booking reserves a listing for a date range. Bookings are never modified after creation.
type Booking struct {
	ID        string      `bson:"_id" db:"id" json:"_id"`
	ListingID string      `bson:"post" db:"post_id" json:"post"`
	BookerID  string      `bson:"bookerId" db:"booker_id" json:"bookerId"`
	Name      string      `bson:"name" db:"name" json:"name"`
	Phone     PhoneNumber `bson:"phone" db:"phone" json:"phone"`
	PickUp    time.Time   `bson:"pickUp" db:"pick_up" json:"pickUp"`
	DropOff   time.Time   `bson:"dropOff" db:"drop_off" json:"dropOff"`
	Total     float64     `bson:"total" db:"total" json:"total"`
}

// BookingDetail is a booking with its listing and booker expanded. Either may be nil
// when the referenced document no longer exists.
type BookingDetail struct {
	ID      string      `bson:"_id" json:"_id"`
	Listing *Listing    `bson:"post" json:"post"`
	Booker  *User       `bson:"bookerId" json:"bookerId"`
	Name    string      `bson:"name" json:"name"`
	Phone   PhoneNumber `bson:"phone" json:"phone"`
	PickUp  time.Time   `bson:"pickUp" json:"pickUp"`
	DropOff time.Time   `bson:"dropOff" json:"dropOff"`
	Total   float64     `bson:"total" json:"total"`
}

// PhoneNumber accepts both JSON numbers and JSON strings.
type PhoneNumber string

func (p *PhoneNumber) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" {
		*p = ""
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(b, &str); err != nil {
			return err
		}
		*p = PhoneNumber(strings.TrimSpace(str))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("phone: %w", err)
	}
	*p = PhoneNumber(n.String())
	return nil
}
