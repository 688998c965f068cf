package types

import "time"

// ReactionKind distinguishes the two reaction edge types.
type ReactionKind string

const (
	// ReactionLike is a like on an article.
	ReactionLike ReactionKind = "like"

	// ReactionFavorite is a favorite on a product. Favoriting subscribes
	// the user to price-change notifications for that product.
	ReactionFavorite ReactionKind = "favorite"
)

// Reaction is an edge between a user and a resource. Its existence is the
// sole source of truth for "has reacted": aggregate counts are always
// derived from edge cardinality, never stored separately.
//
// Edges are unique per (kind, resource, user); the database unique
// constraint on that triple is what makes a concurrent double-add a
// detectable conflict rather than a race.
type Reaction struct {
	ID         int64        `json:"id" db:"id"`
	Kind       ReactionKind `json:"kind" db:"kind"`
	ResourceID int64        `json:"resource_id" db:"resource_id"`
	UserID     int64        `json:"user_id" db:"user_id"`
	CreatedAt  time.Time    `json:"created_at" db:"created_at"`
}

// ReactionSummary is a count/flag pair computed from a single snapshot of
// the edge set, so the two values can never disagree under concurrent
// writes.
type ReactionSummary struct {
	Count     int64 `json:"count"`
	IsReacted bool  `json:"is_reacted"`
}
