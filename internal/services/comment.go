package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pandamarket/apiserver/types"
)

// CommentRepository defines persistence operations for comments.
type CommentRepository interface {
	ListByArticle(ctx context.Context, articleID int64, offset, limit int) ([]types.Comment, int, error)
	ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]types.Comment, int, error)
	Get(ctx context.Context, id int64) (types.Comment, error)
	Create(ctx context.Context, comment types.Comment) (types.Comment, error)
	Update(ctx context.Context, comment types.Comment) (types.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// CommentService encapsulates comment use-cases for both parent kinds.
type CommentService struct {
	repo     CommentRepository
	articles ArticleRepository
	products ProductRepository
}

func NewCommentService(repo CommentRepository, articles ArticleRepository, products ProductRepository) *CommentService {
	return &CommentService{repo: repo, articles: articles, products: products}
}

func (s *CommentService) ListByArticle(ctx context.Context, articleID int64, offset, limit int) ([]types.Comment, int, error) {
	if _, err := s.articles.Get(ctx, articleID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByArticle(ctx, articleID, offset, limit)
}

func (s *CommentService) ListByProduct(ctx context.Context, productID int64, offset, limit int) ([]types.Comment, int, error) {
	if _, err := s.products.Get(ctx, productID); err != nil {
		return nil, 0, err
	}
	return s.repo.ListByProduct(ctx, productID, offset, limit)
}

// CreateOnArticle adds a comment to the article. Any authenticated user
// may comment; ownership only applies to later mutation of the comment.
func (s *CommentService) CreateOnArticle(ctx context.Context, articleID, authorID int64, content string) (types.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return types.Comment{}, err
	}
	if _, err := s.articles.Get(ctx, articleID); err != nil {
		return types.Comment{}, err
	}
	return s.repo.Create(ctx, types.Comment{
		UserID:    authorID,
		ArticleID: &articleID,
		Content:   strings.TrimSpace(content),
	})
}

// CreateOnProduct adds a comment to the product.
func (s *CommentService) CreateOnProduct(ctx context.Context, productID, authorID int64, content string) (types.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return types.Comment{}, err
	}
	if _, err := s.products.Get(ctx, productID); err != nil {
		return types.Comment{}, err
	}
	return s.repo.Create(ctx, types.Comment{
		UserID:    authorID,
		ProductID: &productID,
		Content:   strings.TrimSpace(content),
	})
}

// Update changes the comment's content after the lookup/ownership
// sequence.
func (s *CommentService) Update(ctx context.Context, id, requesterID int64, content string) (types.Comment, error) {
	if err := validateCommentContent(content); err != nil {
		return types.Comment{}, err
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Comment{}, err
	}
	if err := authorizeMutation(current, requesterID); err != nil {
		return types.Comment{}, err
	}

	current.Content = strings.TrimSpace(content)
	return s.repo.Update(ctx, current)
}

// Delete removes the comment after the lookup/ownership sequence.
func (s *CommentService) Delete(ctx context.Context, id, requesterID int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeMutation(current, requesterID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return fmt.Errorf("%w: content is required", ErrValidation)
	}
	return nil
}
