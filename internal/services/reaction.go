package services

import (
	"context"
	"errors"

	"github.com/pandamarket/apiserver/internal/store"
	"github.com/pandamarket/apiserver/types"
)

// ReactionRepository defines persistence operations for reaction edges.
type ReactionRepository interface {
	Insert(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.Reaction, error)
	Delete(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) error
	Summarize(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.ReactionSummary, error)
	ListUserIDs(ctx context.Context, kind types.ReactionKind, resourceID int64) ([]int64, error)
}

// ReactionService implements idempotent add/remove toggling over reaction
// edges. The database unique constraint, not an in-process check, is what
// makes a concurrent double-add detectable.
type ReactionService struct {
	repo ReactionRepository
}

func NewReactionService(repo ReactionRepository) *ReactionService {
	return &ReactionService{repo: repo}
}

// Add inserts the edge and reports whether this call created it. A
// pre-existing edge is a success with created=false, never an error.
func (s *ReactionService) Add(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (created bool, err error) {
	if _, err := s.repo.Insert(ctx, kind, resourceID, userID); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Remove deletes the edge. Removing an absent edge is a no-op success.
func (s *ReactionService) Remove(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) error {
	if err := s.repo.Delete(ctx, kind, resourceID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil
		}
		return err
	}
	return nil
}

// Summarize returns the edge count and requester flag, both computed from
// the same snapshot. userID zero means anonymous and yields a false flag.
func (s *ReactionService) Summarize(ctx context.Context, kind types.ReactionKind, resourceID, userID int64) (types.ReactionSummary, error) {
	return s.repo.Summarize(ctx, kind, resourceID, userID)
}
