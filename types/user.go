package types

import "time"

// User represents an account in the marketplace.
type User struct {
	// ID is the unique identifier of the user.
	ID int64 `json:"id" db:"id"`

	// Email is the user's unique login address. Uniqueness is enforced
	// at registration time.
	Email string `json:"email" db:"email"`

	// Nickname is the user's public display name.
	Nickname string `json:"nickname" db:"nickname"`

	// Image is an optional URL of the user's avatar.
	Image *string `json:"image" db:"image"`

	// PasswordHash stores the bcrypt digest of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// CreatedAt is the timestamp when the account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the account.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
