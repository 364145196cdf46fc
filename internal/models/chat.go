package models

import "time"

// ChatMessage is one message in the thread between two accounts. SentAt is
// assigned by the server at write time; caller-supplied timestamps are
// ignored. Messages are append-only.
type ChatMessage struct {
	ID         int64     `json:"id"`
	SenderID   int64     `json:"sender_id"`
	ReceiverID int64     `json:"receiver_id"`
	Body       string    `json:"body"`
	SentAt     time.Time `json:"sent_at"`
}
