package types

import "time"

// Product represents an item listed for sale in the marketplace.
type Product struct {
	// ID is the unique identifier of the product.
	ID int64 `json:"id" db:"id"`

	// UserID is the identifier of the user who listed the product.
	// Only this user may modify or delete it.
	UserID int64 `json:"user_id" db:"user_id"`

	// Name is the product's display name.
	Name string `json:"name" db:"name"`

	// Description contains the seller-supplied product description.
	Description string `json:"description" db:"description"`

	// Price is the asking price in the smallest currency unit.
	// Price is a tracked field: changing it notifies every user who has
	// favorited the product.
	Price int64 `json:"price" db:"price"`

	// Tags are free-form labels used for filtering and search.
	Tags []string `json:"tags" db:"tags"`

	// Images are URLs of the product's uploaded images.
	Images []string `json:"images" db:"images"`

	// CreatedAt is the timestamp at which the product was listed.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the product.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// FavoriteCount is the number of users who have favorited the product,
	// derived from reaction edges at read time.
	FavoriteCount int64 `json:"favorite_count" db:"-"`

	// IsFavorited reports whether the requesting user has favorited the
	// product. Always false for anonymous requests.
	IsFavorited bool `json:"is_favorited" db:"-"`
}

// OwnerID returns the identifier of the product's owner.
func (p Product) OwnerID() int64 { return p.UserID }
