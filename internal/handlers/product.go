package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pandamarket/apiserver/internal/services"
	"github.com/pandamarket/apiserver/types"
)

// ProductHandler provides HTTP handlers for products, their favorites
// and their comment threads.
type ProductHandler struct {
	productService *services.ProductService
	reactions      *services.ReactionService
	comments       *services.CommentService
}

// NewProductHandler constructs a handler with the provided services.
func NewProductHandler(productService *services.ProductService, reactions *services.ReactionService, comments *services.CommentService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		reactions:      reactions,
		comments:       comments,
	}
}

// ProductRouter registers product routes on the given router.
func ProductRouter(r chi.Router, handler *ProductHandler) {
	r.Get("/", handler.ListProducts)
	r.With(RequireAuth).Post("/", handler.CreateProduct)
	r.Route("/{productID}", func(r chi.Router) {
		r.Get("/", handler.GetProduct)
		r.With(RequireAuth).Patch("/", handler.UpdateProduct)
		r.With(RequireAuth).Delete("/", handler.DeleteProduct)
		r.With(RequireAuth).Post("/favorites", handler.AddFavorite)
		r.With(RequireAuth).Delete("/favorites", handler.RemoveFavorite)
		r.Get("/comments", handler.ListComments)
		r.With(RequireAuth).Post("/comments", handler.CreateComment)
	})
}

// ListProducts returns a page of products, newest first.
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	products, total, err := h.productService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err, "failed to list products")
		return
	}
	products, err = h.productService.WithFavorites(r.Context(), products, requesterID(r))
	if err != nil {
		writeServiceError(w, err, "failed to list products")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Product]{
		Items: products,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetProduct returns a single product with its favorite summary.
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.productService.Get(r.Context(), id, requesterID(r))
	if err != nil {
		writeServiceError(w, err, "failed to load product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// CreateProduct creates a product owned by the authenticated user.
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req ProductRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	product, err := h.productService.Create(r.Context(), requesterID(r), services.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create product")
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct applies a partial update. Only the fields present in
// the body change; a price change triggers notification fan-out for
// every user that had the product favorited.
func (h *ProductHandler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req ProductPatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	product, err := h.productService.Update(r.Context(), id, requesterID(r), services.ProductPatch{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Tags:        req.Tags,
		Images:      req.Images,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product owned by the authenticated user.
func (h *ProductHandler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if err := h.productService.Delete(r.Context(), id, requesterID(r)); err != nil {
		writeServiceError(w, err, "failed to delete product")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddFavorite marks the product as favorited by the requester. Adding
// an existing favorite is a no-op that reports the current summary.
func (h *ProductHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	userID := requesterID(r)

	// The product must exist before the edge does.
	if _, err := h.productService.Get(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "failed to load product")
		return
	}

	created, err := h.reactions.Add(r.Context(), types.ReactionFavorite, id, userID)
	if err != nil {
		writeServiceError(w, err, "failed to add favorite")
		return
	}

	summary, err := h.reactions.Summarize(r.Context(), types.ReactionFavorite, id, userID)
	if err != nil {
		writeServiceError(w, err, "failed to add favorite")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, summary)
}

// RemoveFavorite clears the requester's favorite. Removing an absent
// favorite succeeds.
func (h *ProductHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	userID := requesterID(r)

	if _, err := h.productService.Get(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "failed to load product")
		return
	}

	if err := h.reactions.Remove(r.Context(), types.ReactionFavorite, id, userID); err != nil {
		writeServiceError(w, err, "failed to remove favorite")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments returns a page of the product's comments.
func (h *ProductHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, total, err := h.comments.ListByProduct(r.Context(), id, offset, limit)
	if err != nil {
		writeServiceError(w, err, "failed to list comments")
		return
	}
	writeJSON(w, http.StatusOK, ListResponse[types.Comment]{
		Items: comments,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// CreateComment adds a comment to the product.
func (h *ProductHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "productID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.comments.CreateOnProduct(r.Context(), id, requesterID(r), req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to create comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type ProductRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Price       int64    `json:"price"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}

type ProductPatchRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Price       *int64   `json:"price"`
	Tags        []string `json:"tags"`
	Images      []string `json:"images"`
}
