// Package event defines the events pushed over a live connection.
// Events are transport-independent; the websocket layer only encodes them.
package event

import "dm-lab/domain"

// Wire event names, shared with the clients.
const (
	NameOnlineUsers    = "getOnlineUsers"
	NameNewMessage     = "newMessage"
	NameReceiptUpdated = "receiptUpdated"
	NameUpdateReceipt  = "updateReceipt"
)

// DomainEvent is anything that can be fanned out to a live connection.
type DomainEvent interface {
	EventName() string
}

// PresenceChanged carries the full snapshot of currently connected user ids.
// Always a full set, never a delta.
type PresenceChanged struct {
	Online []string
}

func (PresenceChanged) EventName() string { return NameOnlineUsers }

// MessageCreated is pushed to the receiver right after persistence.
type MessageCreated struct {
	Message domain.Message
}

func (MessageCreated) EventName() string { return NameNewMessage }

// ReceiptUpdated is pushed to the original sender after a receipt transition.
type ReceiptUpdated struct {
	Message domain.Message
}

func (ReceiptUpdated) EventName() string { return NameReceiptUpdated }
