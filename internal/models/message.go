package models

import (
	"time"

	"github.com/google/uuid"
)

// Message is the record returned right after a message is stored.
type Message struct {
	ID           uuid.UUID `json:"id"`
	FromUsername string    `json:"from_username"`
	ToUsername   string    `json:"to_username"`
	Body         string    `json:"body"`
	SentAt       time.Time `json:"sent_at"`
}

// MessageDetail is a message with both participants' display info.
// ReadAt is nil until the recipient marks it read.
type MessageDetail struct {
	ID       uuid.UUID   `json:"id"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
	FromUser UserSummary `json:"from_user"`
	ToUser   UserSummary `json:"to_user"`
}

// IsParticipant reports whether username sent or received the message.
func (m *MessageDetail) IsParticipant(username string) bool {
	return m.FromUser.Username == username || m.ToUser.Username == username
}

// IsRecipient reports whether username received the message.
func (m *MessageDetail) IsRecipient(username string) bool {
	return m.ToUser.Username == username
}

// SentMessage is an outbox entry.
type SentMessage struct {
	ID     uuid.UUID   `json:"id"`
	ToUser UserSummary `json:"to_user"`
	Body   string      `json:"body"`
	SentAt time.Time   `json:"sent_at"`
	ReadAt *time.Time  `json:"read_at"`
}

// ReceivedMessage is an inbox entry.
type ReceivedMessage struct {
	ID       uuid.UUID   `json:"id"`
	FromUser UserSummary `json:"from_user"`
	Body     string      `json:"body"`
	SentAt   time.Time   `json:"sent_at"`
	ReadAt   *time.Time  `json:"read_at"`
}

// ReadReceipt is returned when a message is marked read.
type ReadReceipt struct {
	ID     uuid.UUID `json:"id"`
	ReadAt time.Time `json:"read_at"`
}
