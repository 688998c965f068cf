package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pandamarket/apiserver/types"
)

// ArticleRepository defines persistence operations for articles.
type ArticleRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Article, int, error)
	Get(ctx context.Context, id int64) (types.Article, error)
	Create(ctx context.Context, article types.Article) (types.Article, error)
	Update(ctx context.Context, article types.Article) (types.Article, error)
	Delete(ctx context.Context, id int64) error
}

// ArticleService encapsulates article use-cases. Articles have no tracked
// fields, so mutations never fan out.
type ArticleService struct {
	repo      ArticleRepository
	reactions ReactionRepository
}

func NewArticleService(repo ArticleRepository, reactions ReactionRepository) *ArticleService {
	return &ArticleService{repo: repo, reactions: reactions}
}

// ArticleInput is the payload for Create.
type ArticleInput struct {
	Title   string
	Content string
	Image   *string
}

// ArticlePatch carries the fields of a partial update; nil means "leave
// unchanged".
type ArticlePatch struct {
	Title   *string
	Content *string
	Image   *string
}

func (s *ArticleService) List(ctx context.Context, offset, limit int) ([]types.Article, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Get returns the article with its like count and the requester's like
// flag. requesterID zero means anonymous.
func (s *ArticleService) Get(ctx context.Context, id, requesterID int64) (types.Article, error) {
	article, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Article{}, err
	}
	return s.withLikes(ctx, article, requesterID)
}

func (s *ArticleService) Create(ctx context.Context, ownerID int64, input ArticleInput) (types.Article, error) {
	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return types.Article{}, fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(input.Content) == "" {
		return types.Article{}, fmt.Errorf("%w: content is required", ErrValidation)
	}

	return s.repo.Create(ctx, types.Article{
		UserID:  ownerID,
		Title:   input.Title,
		Content: input.Content,
		Image:   input.Image,
	})
}

// Update applies a partial mutation after the lookup/ownership sequence.
func (s *ArticleService) Update(ctx context.Context, id, requesterID int64, patch ArticlePatch) (types.Article, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Article{}, err
	}
	if err := authorizeMutation(current, requesterID); err != nil {
		return types.Article{}, err
	}

	updated := current
	if patch.Title != nil {
		updated.Title = strings.TrimSpace(*patch.Title)
		if updated.Title == "" {
			return types.Article{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
		}
	}
	if patch.Content != nil {
		updated.Content = *patch.Content
	}
	if patch.Image != nil {
		updated.Image = patch.Image
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return types.Article{}, err
	}
	return s.withLikes(ctx, saved, requesterID)
}

// Delete removes the article after the lookup/ownership sequence. Like
// edges are removed with it.
func (s *ArticleService) Delete(ctx context.Context, id, requesterID int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeMutation(current, requesterID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// WithLikes decorates each article with its like count/flag.
func (s *ArticleService) WithLikes(ctx context.Context, articles []types.Article, requesterID int64) ([]types.Article, error) {
	decorated := make([]types.Article, 0, len(articles))
	for _, article := range articles {
		article, err := s.withLikes(ctx, article, requesterID)
		if err != nil {
			return nil, err
		}
		decorated = append(decorated, article)
	}
	return decorated, nil
}

func (s *ArticleService) withLikes(ctx context.Context, article types.Article, requesterID int64) (types.Article, error) {
	summary, err := s.reactions.Summarize(ctx, types.ReactionLike, article.ID, requesterID)
	if err != nil {
		return types.Article{}, err
	}
	article.LikeCount = summary.Count
	article.IsLiked = summary.IsReacted
	return article, nil
}
