package types

import "time"

// NotificationType enumerates the kinds of notifications the system
// produces. Notifications are created only as a side effect of a tracked
// mutation, never directly by a client request.
type NotificationType string

const (
	// NotificationPriceChanged is sent to every user who has favorited a
	// product whose price changed.
	NotificationPriceChanged NotificationType = "PRICE_CHANGED"
)

// NotificationPayload is the small structured record carried by a
// notification. For PRICE_CHANGED it holds the product and its new price.
//
// The payload is a historical fact: it is retained even if the referenced
// product is later deleted.
type NotificationPayload struct {
	ProductID int64 `json:"product_id"`
	Price     int64 `json:"price"`
}

// Notification represents a message delivered to a single user.
type Notification struct {
	// ID is the unique identifier of the notification.
	ID int64 `json:"id" db:"id"`

	// UserID is the identifier of the recipient.
	UserID int64 `json:"user_id" db:"user_id"`

	// Type is the notification kind.
	Type NotificationType `json:"type" db:"type"`

	// Payload carries the type-specific structured record.
	Payload NotificationPayload `json:"payload" db:"payload"`

	// ReadAt is the time the recipient read the notification, or nil.
	ReadAt *time.Time `json:"read_at" db:"read_at"`

	// CreatedAt is the timestamp at which the notification was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
