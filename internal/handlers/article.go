package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/pandamarket/apiserver/internal/services"
	"github.com/pandamarket/apiserver/types"
)

// ArticleHandler provides HTTP handlers for articles, their likes and
// their comment threads.
type ArticleHandler struct {
	articleService *services.ArticleService
	reactions      *services.ReactionService
	comments       *services.CommentService
}

// NewArticleHandler constructs a handler with the provided services.
func NewArticleHandler(articleService *services.ArticleService, reactions *services.ReactionService, comments *services.CommentService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
		reactions:      reactions,
		comments:       comments,
	}
}

// ArticleRouter registers article routes on the given router.
func ArticleRouter(r chi.Router, handler *ArticleHandler) {
	r.Get("/", handler.ListArticles)
	r.With(RequireAuth).Post("/", handler.CreateArticle)
	r.Route("/{articleID}", func(r chi.Router) {
		r.Get("/", handler.GetArticle)
		r.With(RequireAuth).Patch("/", handler.UpdateArticle)
		r.With(RequireAuth).Delete("/", handler.DeleteArticle)
		r.With(RequireAuth).Post("/likes", handler.AddLike)
		r.With(RequireAuth).Delete("/likes", handler.RemoveLike)
		r.Get("/comments", handler.ListComments)
		r.With(RequireAuth).Post("/comments", handler.CreateComment)
	})
}

// ListArticles returns a page of articles, newest first.
func (h *ArticleHandler) ListArticles(w http.ResponseWriter, r *http.Request) {
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	articles, total, err := h.articleService.List(r.Context(), offset, limit)
	if err != nil {
		writeServiceError(w, err, "failed to list articles")
		return
	}
	articles, err = h.articleService.WithLikes(r.Context(), articles, requesterID(r))
	if err != nil {
		writeServiceError(w, err, "failed to list articles")
		return
	}

	writeJSON(w, http.StatusOK, ListResponse[types.Article]{
		Items: articles,
		Page:  page,
		Limit: limit,
		Total: total,
	})
}

// GetArticle returns a single article with its like summary.
func (h *ArticleHandler) GetArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	article, err := h.articleService.Get(r.Context(), id, requesterID(r))
	if err != nil {
		writeServiceError(w, err, "failed to load article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// CreateArticle creates an article owned by the authenticated user.
func (h *ArticleHandler) CreateArticle(w http.ResponseWriter, r *http.Request) {
	var req ArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	article, err := h.articleService.Create(r.Context(), requesterID(r), services.ArticleInput{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		writeServiceError(w, err, "failed to create article")
		return
	}
	writeJSON(w, http.StatusCreated, article)
}

// UpdateArticle applies a partial update to an owned article.
func (h *ArticleHandler) UpdateArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	var req ArticlePatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	article, err := h.articleService.Update(r.Context(), id, requesterID(r), services.ArticlePatch{
		Title:   req.Title,
		Content: req.Content,
		Image:   req.Image,
	})
	if err != nil {
		writeServiceError(w, err, "failed to update article")
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// DeleteArticle removes an article owned by the authenticated user.
func (h *ArticleHandler) DeleteArticle(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	if err := h.articleService.Delete(r.Context(), id, requesterID(r)); err != nil {
		writeServiceError(w, err, "failed to delete article")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddLike marks the article as liked by the requester. Liking twice is
// a no-op that reports the current summary.
func (h *ArticleHandler) AddLike(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	userID := requesterID(r)

	if _, err := h.articleService.Get(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "failed to load article")
		return
	}

	created, err := h.reactions.Add(r.Context(), types.ReactionLike, id, userID)
	if err != nil {
		writeServiceError(w, err, "failed to add like")
		return
	}

	summary, err := h.reactions.Summarize(r.Context(), types.ReactionLike, id, userID)
	if err != nil {
		writeServiceError(w, err, "failed to add like")
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, summary)
}

// RemoveLike clears the requester's like. Removing an absent like
// succeeds.
func (h *ArticleHandler) RemoveLike(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	userID := requesterID(r)

	if _, err := h.articleService.Get(r.Context(), id, userID); err != nil {
		writeServiceError(w, err, "failed to load article")
		return
	}

	if err := h.reactions.Remove(r.Context(), types.ReactionLike, id, userID); err != nil {
		writeServiceError(w, err, "failed to remove like")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListComments returns a page of the article's comments.
func (h *ArticleHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}
	page, limit, offset, err := parsePagination(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	comments, total, err := h.comments.ListByArticle(r.Context(), id, offset, limit)
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

// CreateComment adds a comment to the article.
func (h *ArticleHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r, "articleID")
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid article id")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	comment, err := h.comments.CreateOnArticle(r.Context(), id, requesterID(r), req.Content)
	if err != nil {
		writeServiceError(w, err, "failed to create comment")
		return
	}
	writeJSON(w, http.StatusCreated, comment)
}

type ArticleRequest struct {
	Title   string  `json:"title"`
	Content string  `json:"content"`
	Image   *string `json:"image"`
}

type ArticlePatchRequest struct {
	Title   *string `json:"title"`
	Content *string `json:"content"`
	Image   *string `json:"image"`
}
