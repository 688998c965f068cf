package handlers_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pandamarket/apiserver/internal/store"
	"github.com/pandamarket/apiserver/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListNotifications_RequiresSession(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(httptest.NewRequest(http.MethodGet, "/notifications", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestListNotifications_ReturnsOwnOnly(t *testing.T) {
	env := newTestEnv(t)

	env.notifications.On("ListByUser", mock.Anything, int64(5), 0, 20).
		Return([]types.Notification{
			{ID: 1, UserID: 5, Type: types.NotificationPriceChanged,
				Payload: types.NotificationPayload{ProductID: 10, Price: 45000}},
		}, 1, nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications", nil)
	env.authenticate(t, req, 5)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Items []types.Notification `json:"items"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(10), body.Items[0].Payload.ProductID)
}

func TestUnreadCount(t *testing.T) {
	env := newTestEnv(t)

	env.notifications.On("CountUnread", mock.Anything, int64(5)).Return(int64(3), nil)

	req := httptest.NewRequest(http.MethodGet, "/notifications/unread-count", nil)
	env.authenticate(t, req, 5)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":3}`, rec.Body.String())
}

func TestMarkRead_ForeignNotificationForbidden(t *testing.T) {
	env := newTestEnv(t)

	env.notifications.On("Get", mock.Anything, int64(1)).
		Return(types.Notification{ID: 1, UserID: 99}, nil)

	req := httptest.NewRequest(http.MethodPatch, "/notifications/1/read", nil)
	env.authenticate(t, req, 5)
	rec := env.do(req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestMarkRead_Missing(t *testing.T) {
	env := newTestEnv(t)

	env.notifications.On("Get", mock.Anything, int64(1)).
		Return(types.Notification{}, store.ErrNotFound)

	req := httptest.NewRequest(http.MethodPatch, "/notifications/1/read", nil)
	env.authenticate(t, req, 5)
	rec := env.do(req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMarkRead_Succeeds(t *testing.T) {
	env := newTestEnv(t)

	env.notifications.On("Get", mock.Anything, int64(1)).
		Return(types.Notification{ID: 1, UserID: 5}, nil)
	env.notifications.On("MarkRead", mock.Anything, int64(1), mock.AnythingOfType("time.Time")).
		Return(nil)

	req := httptest.NewRequest(http.MethodPatch, "/notifications/1/read", nil)
	env.authenticate(t, req, 5)
	rec := env.do(req)

	require.Equal(t, http.StatusOK, rec.Code)
	var notification types.Notification
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notification))
	assert.NotNil(t, notification.ReadAt)
}
