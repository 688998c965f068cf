package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/pandamarket/apiserver/types"
)

// ReactionRepository handles persistence for reaction edges.
type ReactionRepository struct {
	db *sql.DB
}

func NewReactionRepository(db *sql.DB) *ReactionRepository {
	return &ReactionRepository{db: db}
}

// Insert adds a reaction edge. A concurrent or repeated add surfaces as
// ErrDuplicate through the unique constraint on (kind, resource_id, user_id).
func (r *ReactionRepository) Insert(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.Reaction, error) {
	reaction := types.Reaction{
		Kind:       kind,
		ResourceID: resourceID,
		UserID:     userID,
		CreatedAt:  time.Now(),
	}

	const query = `
		INSERT INTO reactions (kind, resource_id, user_id, created_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		reaction.Kind,
		reaction.ResourceID,
		reaction.UserID,
		reaction.CreatedAt,
	).Scan(&reaction.ID); err != nil {
		return types.Reaction{}, mapUniqueViolation(err)
	}
	return reaction, nil
}

// Delete removes a reaction edge. Deleting an absent edge returns
// ErrNotFound; callers treat that as a successful no-op.
func (r *ReactionRepository) Delete(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) error {
	const query = `
		DELETE FROM reactions
		WHERE kind = $1 AND resource_id = $2 AND user_id = $3`
	result, err := r.db.ExecContext(ctx, query, kind, resourceID, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Summarize computes the edge count and the requester flag from one
// statement, so both values come from the same snapshot of the edge set.
// A zero userID yields a false flag.
func (r *ReactionRepository) Summarize(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.ReactionSummary, error) {
	const query = `
		SELECT COUNT(1),
			COUNT(1) FILTER (WHERE user_id = $3) > 0
		FROM reactions
		WHERE kind = $1 AND resource_id = $2`
	var summary types.ReactionSummary
	if err := r.db.QueryRowContext(ctx, query, kind, resourceID, userID).Scan(
		&summary.Count,
		&summary.IsReacted,
	); err != nil {
		return types.ReactionSummary{}, err
	}
	return summary, nil
}

// ListUserIDs returns the distinct users holding an edge of the given kind
// on the resource.
func (r *ReactionRepository) ListUserIDs(ctx context.Context, kind types.ReactionKind, resourceID int64) ([]int64, error) {
	const query = `
		SELECT DISTINCT user_id
		FROM reactions
		WHERE kind = $1 AND resource_id = $2`
	rows, err := r.db.QueryContext(ctx, query, kind, resourceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var userIDs []int64
	for rows.Next() {
		var userID int64
		if err := rows.Scan(&userID); err != nil {
			return nil, err
		}
		userIDs = append(userIDs, userID)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return userIDs, nil
}
