package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/pandamarket/apiserver/internal/storage"
)

const (
	maxImageBytes  = 5 << 20
	formFieldImage = "image"
	imageKeyPrefix = "images"
)

var imageContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

var imageExtTypes = map[string]string{
	".png": "image/png",
	".jpg": "image/jpeg",
}

// ImageHandler serves product and article images from object storage.
type ImageHandler struct {
	storage       *storage.Storage
	publicBaseURL string
}

// NewImageHandler constructs a handler over the given storage.
func NewImageHandler(storage *storage.Storage, publicBaseURL string) *ImageHandler {
	return &ImageHandler{
		storage:       storage,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
}

// ImageRouter registers image routes on the given router.
func ImageRouter(r chi.Router, handler *ImageHandler) {
	r.With(RequireAuth).Post("/", handler.UploadImage)
	r.Get("/{imageName}", handler.GetImage)
	r.With(RequireAuth).Delete("/{imageName}", handler.DeleteImage)
}

// UploadImage accepts a multipart PNG or JPEG of at most 5 MiB and
// stores it under a random key, returning the public URL.
func (h *ImageHandler) UploadImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImageBytes+4096)
	if err := r.ParseMultipartForm(maxImageBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := r.FormFile(formFieldImage)
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing image file")
		return
	}
	defer file.Close()

	if header.Size > maxImageBytes {
		writeError(w, http.StatusBadRequest, "image exceeds the 5 MiB limit")
		return
	}

	contentType := header.Header.Get("Content-Type")
	ext, ok := imageContentTypes[contentType]
	if !ok {
		writeError(w, http.StatusBadRequest, "only png and jpeg images are accepted")
		return
	}

	key := path.Join(imageKeyPrefix, uuid.NewString()+ext)
	if err := h.storage.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to store image")
		return
	}

	writeJSON(w, http.StatusCreated, ImageResponse{
		URL: fmt.Sprintf("%s/%s", h.publicBaseURL, key),
	})
}

// GetImage streams a stored image. Unknown extensions and missing
// objects both read as 404 so the key space stays opaque.
func (h *ImageHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "imageName")
	contentType, ok := imageExtTypes[path.Ext(name)]
	if !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	object, err := h.storage.Get(r.Context(), path.Join(imageKeyPrefix, name))
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read image")
		return
	}
	defer object.Close()

	w.Header().Set("Content-Type", contentType)
	_, _ = io.Copy(w, object)
}

// DeleteImage removes a stored image. Deleting an absent image is a
// no-op success.
func (h *ImageHandler) DeleteImage(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "imageName")
	if _, ok := imageExtTypes[path.Ext(name)]; !ok {
		writeError(w, http.StatusNotFound, "image not found")
		return
	}

	if err := h.storage.Delete(r.Context(), path.Join(imageKeyPrefix, name)); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete image")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type ImageResponse struct {
	URL string `json:"url"`
}
