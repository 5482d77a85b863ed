// Package domain contains core concepts of the messaging system.
// This file defines the Message record exchanged between two users.
// Receipt timestamps are owned by the receipt state machine in receipt.go.
package domain

import (
	"time"

	"github.com/google/uuid"

	"dm-lab/errors"
)

// Location is an optional geographic payload attached to a message.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// Message is a direct message between exactly two users.
// Text, Image, Location and Audio are the payload fields; at least one
// must be present at creation. The three receipt timestamps are each set
// at most once and are never rolled back.
type Message struct {
	ID          uuid.UUID  `json:"id"`
	SenderID    string     `json:"senderId"`
	ReceiverID  string     `json:"receiverId"`
	Text        string     `json:"text,omitempty"`
	Image       string     `json:"image,omitempty"`
	Location    *Location  `json:"location,omitempty"`
	Audio       string     `json:"audio,omitempty"`
	Lang        string     `json:"lang,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeliveredAt *time.Time `json:"deliveredAt"`
	ReceivedAt  *time.Time `json:"receivedAt"`
	SeenAt      *time.Time `json:"seenAt"`
}

// HasPayload reports whether the message carries at least one payload field.
func (m Message) HasPayload() bool {
	return m.Text != "" || m.Image != "" || m.Location != nil || m.Audio != ""
}

// Validate checks the creation invariants of a message.
func (m Message) Validate() error {
	if !m.HasPayload() {
		return errors.ErrEmptyPayload
	}
	if m.SenderID == m.ReceiverID {
		return errors.ErrSelfConversation
	}
	return nil
}

// OtherParty returns the conversation partner of the given user.
func (m Message) OtherParty(userID string) string {
	if m.SenderID == userID {
		return m.ReceiverID
	}
	return m.SenderID
}
