package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/pandamarket/apiserver/types"
)

// ProductRepository defines persistence operations for products.
type ProductRepository interface {
	List(ctx context.Context, offset, limit int) ([]types.Product, int, error)
	Get(ctx context.Context, id int64) (types.Product, error)
	Create(ctx context.Context, product types.Product) (types.Product, error)
	Update(ctx context.Context, product types.Product) (types.Product, error)
	Delete(ctx context.Context, id int64) error
}

// PriceChangeNotifier fans a price change out to the given recipients.
type PriceChangeNotifier interface {
	CreatePriceChanged(ctx context.Context, productID, newPrice int64, recipientIDs []int64) error
}

// ProductService encapsulates product use-cases, including the tracked
// price mutation with favorite fan-out.
type ProductService struct {
	repo      ProductRepository
	reactions ReactionRepository
	notifier  PriceChangeNotifier
}

func NewProductService(repo ProductRepository, reactions ReactionRepository, notifier PriceChangeNotifier) *ProductService {
	return &ProductService{
		repo:      repo,
		reactions: reactions,
		notifier:  notifier,
	}
}

// ProductInput is the payload for Create.
type ProductInput struct {
	Name        string
	Description string
	Price       int64
	Tags        []string
	Images      []string
}

// ProductPatch carries the fields of a partial update; nil means "leave
// unchanged".
type ProductPatch struct {
	Name        *string
	Description *string
	Price       *int64
	Tags        []string
	Images      []string
}

func (s *ProductService) List(ctx context.Context, offset, limit int) ([]types.Product, int, error) {
	return s.repo.List(ctx, offset, limit)
}

// Get returns the product with its favorite count and the requester's
// favorite flag. requesterID zero means anonymous.
func (s *ProductService) Get(ctx context.Context, id, requesterID int64) (types.Product, error) {
	product, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}
	return s.withFavorites(ctx, product, requesterID)
}

func (s *ProductService) Create(ctx context.Context, ownerID int64, input ProductInput) (types.Product, error) {
	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return types.Product{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	if input.Price < 0 {
		return types.Product{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
	}

	return s.repo.Create(ctx, types.Product{
		UserID:      ownerID,
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Tags:        input.Tags,
		Images:      input.Images,
	})
}

// Update applies a partial mutation. The sequence is fixed: lookup, then
// ownership, then apply, then tracked-change detection. When the price
// changed, every user holding a favorite edge that existed before the
// update receives exactly one PRICE_CHANGED notification; the favoriter
// set is read only after the update has been persisted.
//
// If the notification batch ultimately fails, the committed price change
// is NOT rolled back; the failure surfaces as *FanOutError alongside the
// updated product.
func (s *ProductService) Update(ctx context.Context, id, requesterID int64, patch ProductPatch) (types.Product, error) {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Product{}, err
	}
	if err := authorizeMutation(current, requesterID); err != nil {
		return types.Product{}, err
	}

	updated := current
	if patch.Name != nil {
		updated.Name = strings.TrimSpace(*patch.Name)
		if updated.Name == "" {
			return types.Product{}, fmt.Errorf("%w: name must not be empty", ErrValidation)
		}
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if patch.Price != nil {
		if *patch.Price < 0 {
			return types.Product{}, fmt.Errorf("%w: price must not be negative", ErrValidation)
		}
		updated.Price = *patch.Price
	}
	if patch.Tags != nil {
		updated.Tags = patch.Tags
	}
	if patch.Images != nil {
		updated.Images = patch.Images
	}

	saved, err := s.repo.Update(ctx, updated)
	if err != nil {
		return types.Product{}, err
	}

	saved, err = s.withFavorites(ctx, saved, requesterID)
	if err != nil {
		return types.Product{}, err
	}

	if saved.Price == current.Price {
		return saved, nil
	}

	recipientIDs, err := s.reactions.ListUserIDs(ctx, types.ReactionFavorite, id)
	if err != nil {
		return saved, &FanOutError{ProductID: id, Err: err}
	}
	if err := s.notifier.CreatePriceChanged(ctx, id, saved.Price, recipientIDs); err != nil {
		return saved, &FanOutError{ProductID: id, Recipients: len(recipientIDs), Err: err}
	}
	return saved, nil
}

// Delete removes the product after the same lookup/ownership sequence.
// Reaction edges go with it; notifications that reference the product are
// retained as historical facts, and no fan-out occurs.
func (s *ProductService) Delete(ctx context.Context, id, requesterID int64) error {
	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := authorizeMutation(current, requesterID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// WithFavorites decorates each product with its favorite count/flag.
func (s *ProductService) WithFavorites(ctx context.Context, products []types.Product, requesterID int64) ([]types.Product, error) {
	decorated := make([]types.Product, 0, len(products))
	for _, product := range products {
		product, err := s.withFavorites(ctx, product, requesterID)
		if err != nil {
			return nil, err
		}
		decorated = append(decorated, product)
	}
	return decorated, nil
}

func (s *ProductService) withFavorites(ctx context.Context, product types.Product, requesterID int64) (types.Product, error) {
	summary, err := s.reactions.Summarize(ctx, types.ReactionFavorite, product.ID, requesterID)
	if err != nil {
		return types.Product{}, err
	}
	product.FavoriteCount = summary.Count
	product.IsFavorited = summary.IsReacted
	return product, nil
}
