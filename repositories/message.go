package repositories

import (
	"encoding/json"
	errs "errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"dm-lab/domain"
	"dm-lab/errors"
)

type IMessageRepository interface {
	Create(message domain.Message) error
	GetByID(id uuid.UUID) (domain.Message, error)
	Conversation(userA, userB string, cursor *string) ([]domain.Message, *string, error)
	UpdateReceipt(id uuid.UUID, status domain.ReceiptStatus, now time.Time) (domain.Message, bool, error)
	DeleteConversation(userA, userB string) error
}

// MessageRepository is the durable record of messages between two users.
// It owns persisted messages exclusively; live-connection state never
// touches this store.
type MessageRepository struct {
	db            *badger.DB
	log           *slog.Logger
	limitMessages *int
}

func NewMessageRepository(db *badger.DB, log *slog.Logger, limitMessages *int) MessageRepository {
	return MessageRepository{db: db, log: log, limitMessages: limitMessages}
}

// ConversationKey returns the order-independent key of the two participants.
func ConversationKey(userA, userB string) string {
	if userB < userA {
		userA, userB = userB, userA
	}
	return userA + "|" + userB
}

// Create persists a message under two keys:
//  1. "msg:{conv}:{timestamp_padded}:{uuid}" — chronological prefix scans
//     thanks to 19-digit zero padding, with the UUID as a collision
//     disconnector if two messages land on the same nanosecond.
//  2. "msgid:{uuid}" -> primary key — receipt updates address a message by
//     id alone, without knowing the conversation or the creation time.
func (m MessageRepository) Create(message domain.Message) error {
	if err := message.Validate(); err != nil {
		return err
	}
	primary := primaryKey(message)
	bytes, err := json.Marshal(message)
	if err != nil {
		return err
	}
	return m.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(primary), bytes); err != nil {
			return err
		}
		return txn.Set([]byte(idKey(message.ID)), []byte(primary))
	})
}

// GetByID resolves the id index, then loads the record.
func (m MessageRepository) GetByID(id uuid.UUID) (domain.Message, error) {
	var message domain.Message
	err := m.db.View(func(txn *badger.Txn) error {
		var err error
		message, _, err = getByID(txn, id)
		return err
	})
	return message, err
}

// UpdateReceipt advances one message's receipt timestamps inside a single
// transaction: load, apply the pure transition, store. Badger retries the
// transaction on conflict, so two concurrent updates to the same message
// serialize and the set-at-most-once rule holds with no separate read call.
// The bool reports whether the record actually changed.
func (m MessageRepository) UpdateReceipt(id uuid.UUID, status domain.ReceiptStatus, now time.Time) (domain.Message, bool, error) {
	var updated domain.Message
	var changed bool

	err := m.db.Update(func(txn *badger.Txn) error {
		message, primary, err := getByID(txn, id)
		if err != nil {
			return err
		}

		updated, changed, err = domain.ApplyReceipt(message, status, now)
		if err != nil {
			return err
		}
		if !changed {
			return nil
		}

		bytes, err := json.Marshal(updated)
		if err != nil {
			return err
		}
		return txn.Set([]byte(primary), bytes)
	})
	if err != nil {
		return domain.Message{}, false, err
	}
	return updated, changed, nil
}

// Conversation retrieves messages between two users using a prefix scan,
// newest first, with cursor pagination. Thanks to the padded timestamp in
// the key, messages are naturally sorted by time. It stops once the
// configured limitMessages is reached.
func (m MessageRepository) Conversation(userA, userB string, cursor *string) ([]domain.Message, *string, error) {
	var byteMessages [][]byte
	var lastKey string

	err := m.db.View(func(txn *badger.Txn) error {
		prefixStr := fmt.Sprintf("msg:%s:", ConversationKey(userA, userB))
		prefix := []byte(prefixStr)
		prefixLen := len(prefixStr)
		options := badger.DefaultIteratorOptions
		options.Reverse = true
		it := txn.NewIterator(options)
		defer it.Close()

		var seekKey []byte
		switch cursor {
		case nil:
			// Seek past the newest possible timestamp, then walk backwards
			seekKey = append(prefix, []byte("9999999999999999999")...)
		default:
			seekKey = append(prefix, []byte(*cursor)...)
		}

		it.Seek(seekKey)

		if cursor != nil && it.ValidForPrefix(prefix) {
			it.Next()
		}

		for ; it.ValidForPrefix(prefix); it.Next() {
			if m.limitMessages != nil && len(byteMessages) == *m.limitMessages {
				m.log.Debug(fmt.Sprintf("Maximum of %d messages reached", *m.limitMessages))
				break
			}
			item := it.Item()
			lastKey = string(item.Key()[prefixLen:])
			err := item.Value(func(value []byte) error {
				byteMessages = append(byteMessages, append([]byte(nil), value...))
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	messages := make([]domain.Message, 0, len(byteMessages))
	for _, b := range byteMessages {
		var message domain.Message
		if err = json.Unmarshal(b, &message); err != nil {
			return nil, nil, err
		}
		messages = append(messages, message)
	}
	return messages, &lastKey, nil
}

// DeleteConversation removes every message between the two users,
// including the id index entries.
func (m MessageRepository) DeleteConversation(userA, userB string) error {
	prefix := []byte(fmt.Sprintf("msg:%s:", ConversationKey(userA, userB)))
	return m.db.Update(func(txn *badger.Txn) error {
		options := badger.DefaultIteratorOptions
		options.PrefetchValues = false
		it := txn.NewIterator(options)
		defer it.Close()

		var keys [][]byte
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().KeyCopy(nil)
			keys = append(keys, key)
			// "msg:{conv}:{ts}:{uuid}" — the uuid is the last segment
			parts := strings.Split(string(key), ":")
			if id, err := uuid.Parse(parts[len(parts)-1]); err == nil {
				keys = append(keys, []byte(idKey(id)))
			}
		}
		for _, key := range keys {
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

func getByID(txn *badger.Txn, id uuid.UUID) (domain.Message, string, error) {
	item, err := txn.Get([]byte(idKey(id)))
	if err != nil {
		if errs.Is(err, badger.ErrKeyNotFound) {
			return domain.Message{}, "", errors.ErrMessageNotFound
		}
		return domain.Message{}, "", err
	}

	var primary string
	if err := item.Value(func(value []byte) error {
		primary = string(value)
		return nil
	}); err != nil {
		return domain.Message{}, "", err
	}

	item, err = txn.Get([]byte(primary))
	if err != nil {
		if errs.Is(err, badger.ErrKeyNotFound) {
			return domain.Message{}, "", errors.ErrMessageNotFound
		}
		return domain.Message{}, "", err
	}

	var message domain.Message
	if err := item.Value(func(value []byte) error {
		return json.Unmarshal(value, &message)
	}); err != nil {
		return domain.Message{}, "", err
	}
	return message, primary, nil
}

func primaryKey(message domain.Message) string {
	return fmt.Sprintf("msg:%s:%019d:%s",
		ConversationKey(message.SenderID, message.ReceiverID),
		message.CreatedAt.UnixNano(),
		message.ID,
	)
}

func idKey(id uuid.UUID) string {
	return "msgid:" + id.String()
}
