package services

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pandamarket/apiserver/internal/store"
	"github.com/pandamarket/apiserver/types"
	"go.uber.org/zap"
)

// notificationBatchAttempts bounds retries of the batch insert before the
// failure is surfaced to the caller.
const notificationBatchAttempts = 3

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []types.Notification) error
	ListByUser(ctx context.Context, userID int64, offset, limit int) ([]types.Notification, int, error)
	CountUnread(ctx context.Context, userID int64) (int64, error)
	Get(ctx context.Context, id int64) (types.Notification, error)
	MarkRead(ctx context.Context, id int64, readAt time.Time) error
}

// EventPublisher publishes a notification event to a broker channel.
// Satisfied by *mq.MQ; nil disables publishing.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// NotificationService persists notification batches and exposes the
// recipient-facing read operations.
type NotificationService struct {
	repo      NotificationRepository
	publisher EventPublisher
	channel   string
	logger    *zap.SugaredLogger
}

func NewNotificationService(repo NotificationRepository, publisher EventPublisher, channel string, logger *zap.SugaredLogger) *NotificationService {
	return &NotificationService{
		repo:      repo,
		publisher: publisher,
		channel:   channel,
		logger:    logger,
	}
}

// priceChangedEvent is the payload published to the broker after a
// successful fan-out batch. Real-time consumers use it to push the
// notification to connected clients; the database rows remain the source
// of truth.
type priceChangedEvent struct {
	ProductID  int64   `json:"product_id"`
	Price      int64   `json:"price"`
	Recipients []int64 `json:"recipients"`
}

// CreatePriceChanged persists one PRICE_CHANGED notification per
// recipient as a single all-or-nothing batch, retrying a bounded number
// of times. On success the event is additionally published to the broker
// best-effort: a publish failure is logged, never surfaced.
func (s *NotificationService) CreatePriceChanged(ctx context.Context, productID, newPrice int64, recipientIDs []int64) error {
	if len(recipientIDs) == 0 {
		return nil
	}

	notifications := make([]types.Notification, 0, len(recipientIDs))
	for _, recipientID := range recipientIDs {
		notifications = append(notifications, types.Notification{
			UserID: recipientID,
			Type:   types.NotificationPriceChanged,
			Payload: types.NotificationPayload{
				ProductID: productID,
				Price:     newPrice,
			},
		})
	}

	var err error
	for attempt := 1; attempt <= notificationBatchAttempts; attempt++ {
		if err = s.repo.CreateBatch(ctx, notifications); err == nil {
			break
		}
		s.logger.Warnw("notification batch insert failed",
			"product_id", productID,
			"recipients", len(recipientIDs),
			"attempt", attempt,
			"error", err,
		)
	}
	if err != nil {
		return err
	}

	s.publishEvent(ctx, priceChangedEvent{
		ProductID:  productID,
		Price:      newPrice,
		Recipients: recipientIDs,
	})
	return nil
}

func (s *NotificationService) publishEvent(ctx context.Context, event priceChangedEvent) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		s.logger.Errorw("failed to encode notification event", "error", err)
		return
	}
	attrs := map[string]string{"type": string(types.NotificationPriceChanged)}
	if _, err := s.publisher.Publish(ctx, s.channel, data, attrs); err != nil {
		s.logger.Warnw("failed to publish notification event",
			"channel", s.channel,
			"product_id", event.ProductID,
			"error", err,
		)
	}
}

// ListForUser returns the recipient's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID int64, offset, limit int) ([]types.Notification, int, error) {
	return s.repo.ListByUser(ctx, userID, offset, limit)
}

// CountUnread returns the recipient's number of unread notifications.
func (s *NotificationService) CountUnread(ctx context.Context, userID int64) (int64, error) {
	return s.repo.CountUnread(ctx, userID)
}

// MarkRead marks the notification read. Only the recipient may do so;
// marking an already-read notification is a no-op success.
func (s *NotificationService) MarkRead(ctx context.Context, id, requesterID int64) (types.Notification, error) {
	notification, err := s.repo.Get(ctx, id)
	if err != nil {
		return types.Notification{}, err
	}
	if notification.UserID != requesterID {
		return types.Notification{}, ErrForbidden
	}

	if notification.ReadAt == nil {
		readAt := time.Now()
		if err := s.repo.MarkRead(ctx, id, readAt); err != nil && !errors.Is(err, store.ErrNotFound) {
			return types.Notification{}, err
		}
		notification.ReadAt = &readAt
	}
	return notification, nil
}
