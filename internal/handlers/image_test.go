package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"path"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/pandamarket/apiserver/internal/auth"
	"github.com/pandamarket/apiserver/internal/handlers"
	"github.com/pandamarket/apiserver/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memObjectStore keeps objects in a map, standing in for minio/gcs.
type memObjectStore struct {
	objects map[string][]byte
}

func newMemObjectStore() *memObjectStore {
	return &memObjectStore{objects: map[string][]byte{}}
}

func (s *memObjectStore) EnsureBucket(ctx context.Context) error { return nil }

func (s *memObjectStore) Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.objects[key] = data
	return nil
}

func (s *memObjectStore) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (s *memObjectStore) Delete(ctx context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

func (s *memObjectStore) Bucket() string { return "test-bucket" }

var _ storage.ObjectStorage = (*memObjectStore)(nil)

func newImageEnv(t *testing.T) (*chi.Mux, *memObjectStore, *auth.TokenManager) {
	t.Helper()

	tokens, err := auth.NewTokenManager("test-access-secret", "test-refresh-secret", 15*time.Minute, 7*24*time.Hour)
	require.NoError(t, err)
	objects := newMemObjectStore()
	handler := handlers.NewImageHandler(storage.NewStorage(objects), "http://localhost:8080")
	session := handlers.NewSession(tokens, nil)

	router := chi.NewRouter()
	router.Use(session.WithSession)
	router.Route("/images", func(r chi.Router) {
		handlers.ImageRouter(r, handler)
	})
	return router, objects, tokens
}

func addAccessCookie(t *testing.T, req *http.Request, tokens *auth.TokenManager, userID int64) {
	t.Helper()
	token, err := tokens.Issue(auth.KindAccess, userID)
	require.NoError(t, err)
	req.AddCookie(&http.Cookie{Name: auth.AccessTokenCookie, Value: token})
}

func imageUploadRequest(t *testing.T, contentType string, body []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="image"; filename="photo"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(body)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/images", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return req
}

func TestUploadImage_RequiresSession(t *testing.T) {
	router, _, _ := newImageEnv(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, imageUploadRequest(t, "image/png", []byte("png-bytes")))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUploadImage_RejectsUnsupportedType(t *testing.T) {
	router, _, tokens := newImageEnv(t)

	req := imageUploadRequest(t, "image/gif", []byte("gif-bytes"))
	addAccessCookie(t, req, tokens, 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImage_UploadThenDownload(t *testing.T) {
	router, _, tokens := newImageEnv(t)
	content := []byte("png-bytes")

	req := imageUploadRequest(t, "image/png", content)
	addAccessCookie(t, req, tokens, 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	var uploaded struct {
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &uploaded))
	name := path.Base(uploaded.URL)

	// Downloads are public.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/"+name, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, content, rec.Body.Bytes())
}

func TestGetImage_Missing(t *testing.T) {
	router, _, _ := newImageEnv(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/no-such-image.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	// Unknown extensions never reach storage.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/images/secrets.txt", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteImage_RemovesObject(t *testing.T) {
	router, objects, tokens := newImageEnv(t)
	objects.objects["images/gone.jpg"] = []byte("jpg-bytes")

	req := httptest.NewRequest(http.MethodDelete, "/images/gone.jpg", nil)
	addAccessCookie(t, req, tokens, 1)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, objects.objects)

	// Deleting an absent image stays a no-op success.
	req = httptest.NewRequest(http.MethodDelete, "/images/gone.jpg", nil)
	addAccessCookie(t, req, tokens, 1)
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestDeleteImage_RequiresSession(t *testing.T) {
	router, objects, _ := newImageEnv(t)
	objects.objects["images/kept.png"] = []byte("png-bytes")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/images/kept.png", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Len(t, objects.objects, 1)
}
