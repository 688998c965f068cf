package types

import "time"

// Comment represents a comment attached to either an article or a product.
// Exactly one of ArticleID and ProductID is set.
type Comment struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	ArticleID *int64    `json:"article_id" db:"article_id"`
	ProductID *int64    `json:"product_id" db:"product_id"`
	Content   string    `json:"content" db:"content"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// OwnerID returns the identifier of the comment's author.
func (c Comment) OwnerID() int64 { return c.UserID }
