package domain

import (
	"time"

	"dm-lab/errors"
)

// ReceiptStatus is a client-originated receipt event.
type ReceiptStatus string

const (
	StatusDelivered ReceiptStatus = "delivered"
	StatusReceived  ReceiptStatus = "received"
	StatusSeen      ReceiptStatus = "seen"
)

// ApplyReceipt advances the receipt timestamps of a message.
// It is a pure function so the transition table can be tested without a
// store or a live connection.
//
// Rules:
//   - delivered: set DeliveredAt if unset.
//   - received: set ReceivedAt if unset. Tracked independently, it does not
//     gate the seen transition.
//   - seen with DeliveredAt unset: set BOTH DeliveredAt and SeenAt to the
//     same instant. A receiving client can observe a message on screen
//     before any delivered event ever fired (it was offline at send time);
//     the backfill keeps "seen without delivered" unrepresentable.
//   - seen with DeliveredAt set: set SeenAt only.
//
// Timestamps are set at most once and never overwritten, which makes every
// transition idempotent under duplicate or out-of-order status events.
// The second return value reports whether the record changed.
func ApplyReceipt(m Message, status ReceiptStatus, now time.Time) (Message, bool, error) {
	switch status {
	case StatusDelivered:
		if m.DeliveredAt != nil {
			return m, false, nil
		}
		m.DeliveredAt = &now
		return m, true, nil

	case StatusReceived:
		if m.ReceivedAt != nil {
			return m, false, nil
		}
		m.ReceivedAt = &now
		return m, true, nil

	case StatusSeen:
		if m.SeenAt != nil {
			return m, false, nil
		}
		if m.DeliveredAt == nil {
			m.DeliveredAt = &now
		}
		m.SeenAt = &now
		return m, true, nil

	default:
		return m, false, errors.ErrUnknownStatus
	}
}
