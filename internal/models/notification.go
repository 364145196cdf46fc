package models

import "time"

// Notification kind enums.
const (
	NotificationCreditAdded     = "credit_added"
	NotificationMessageReceived = "message_received"
)

type Notification struct {
	ID        int64     `json:"id"`
	AccountID int64     `json:"account_id"`
	Kind      string    `json:"kind"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
