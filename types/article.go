package types

import "time"

// Article represents a community board post.
type Article struct {
	// ID is the unique identifier of the article.
	ID int64 `json:"id" db:"id"`

	// UserID is the identifier of the author. Only the author may modify
	// or delete the article.
	UserID int64 `json:"user_id" db:"user_id"`

	// Title is the article's title.
	Title string `json:"title" db:"title"`

	// Content is the article body.
	Content string `json:"content" db:"content"`

	// Image is an optional URL of an attached image.
	Image *string `json:"image" db:"image"`

	// CreatedAt is the timestamp at which the article was posted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the article.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`

	// LikeCount is the number of users who have liked the article,
	// derived from reaction edges at read time.
	LikeCount int64 `json:"like_count" db:"-"`

	// IsLiked reports whether the requesting user has liked the article.
	// Always false for anonymous requests.
	IsLiked bool `json:"is_liked" db:"-"`
}

// OwnerID returns the identifier of the article's author.
func (a Article) OwnerID() int64 { return a.UserID }
