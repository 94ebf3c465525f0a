package model

// User is a registered identity. Password holds the bcrypt hash and is never serialized to JSON.
type User struct {
	ID       string `bson:"_id" db:"id" json:"_id"`
	Name     string `bson:"name" db:"name" json:"name"`
	Email    string `bson:"email" db:"email" json:"email"`
	Password string `bson:"password" db:"password" json:"-"`
}
