package entity

import "time"

type NotificationType string

const (
	NotificationNewOrder    NotificationType = "new_order"
	NotificationOrderStatus NotificationType = "order_status"
	NotificationOrderSynced NotificationType = "order_synced"
)

// Notification is persisted for every event. Delivered records a live push
// over the user's socket; Read is set when the user acknowledges it.
type Notification struct {
	ID        string                 `json:"id"`
	UserID    string                 `json:"userId"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	Delivered bool                   `json:"delivered"`
	Read      bool                   `json:"read"`
	CreatedAt time.Time              `json:"createdAt"`
}
