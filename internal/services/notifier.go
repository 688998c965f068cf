package services

import (
	"context"
	"encoding/json"

	"github.com/pandamarket/apiserver/internal/mq"
	"github.com/pandamarket/apiserver/types"
	"go.uber.org/zap"
)

// EventSource consumes notification events from a broker channel.
// Satisfied by *mq.MQ.
type EventSource interface {
	Subscribe(ctx context.Context, channel string, handler mq.Handler) error
}

// Pusher delivers a notification payload to one recipient. It is the
// realtime side of the channel NotificationService publishes to.
type Pusher interface {
	Push(ctx context.Context, userID int64, payload types.NotificationPayload) error
}

// Notifier consumes price-change events from the broker and pushes them
// to their recipients. The database rows remain the source of truth;
// delivery here is realtime only, so dropped events are recoverable by
// listing notifications.
type Notifier struct {
	source  EventSource
	channel string
	pusher  Pusher
	logger  *zap.SugaredLogger
}

func NewNotifier(source EventSource, channel string, pusher Pusher, logger *zap.SugaredLogger) *Notifier {
	return &Notifier{
		source:  source,
		channel: channel,
		pusher:  pusher,
		logger:  logger,
	}
}

// Run consumes the channel until ctx is done.
func (n *Notifier) Run(ctx context.Context) error {
	return n.source.Subscribe(ctx, n.channel, n.handle)
}

func (n *Notifier) handle(ctx context.Context, msg mq.Message) error {
	if msg.Attributes["type"] != string(types.NotificationPriceChanged) {
		n.logger.Debugw("skipping event of unhandled type",
			"message_id", msg.ID,
			"type", msg.Attributes["type"],
		)
		return nil
	}

	var event priceChangedEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		// Undecodable payloads are acked, not requeued.
		n.logger.Errorw("dropping undecodable event", "message_id", msg.ID, "error", err)
		return nil
	}

	payload := types.NotificationPayload{
		ProductID: event.ProductID,
		Price:     event.Price,
	}
	for _, recipientID := range event.Recipients {
		if err := n.pusher.Push(ctx, recipientID, payload); err != nil {
			return err
		}
	}
	return nil
}

// LogPusher records deliveries in the log. It stands in where no
// realtime transport is connected.
type LogPusher struct {
	logger *zap.SugaredLogger
}

func NewLogPusher(logger *zap.SugaredLogger) *LogPusher {
	return &LogPusher{logger: logger}
}

func (p *LogPusher) Push(ctx context.Context, userID int64, payload types.NotificationPayload) error {
	p.logger.Infow("price changed",
		"user_id", userID,
		"product_id", payload.ProductID,
		"price", payload.Price,
	)
	return nil
}
