package repositories

import (
	"context"
	"log/slog"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"

	"dm-lab/domain"
)

type ISearchRepository interface {
	Index(message domain.Message) error
	Search(ctx context.Context, userID, terms string) ([]SearchHit, error)
}

// SearchHit is one full-text match inside the caller's conversations.
type SearchHit struct {
	MessageID  uuid.UUID `json:"messageId"`
	SenderID   string    `json:"senderId"`
	ReceiverID string    `json:"receiverId"`
	Text       string    `json:"text"`
	Lang       string    `json:"lang,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}

// SearchRepository maintains a Bluge full-text index next to the Badger
// store. Only text payloads are indexed; media messages have nothing to
// search on.
type SearchRepository struct {
	writer *bluge.Writer
	log    *slog.Logger
	limit  int
}

func NewSearchRepository(writer *bluge.Writer, log *slog.Logger, limit int) *SearchRepository {
	return &SearchRepository{writer: writer, log: log, limit: limit}
}

// Index adds or replaces one message document.
func (s *SearchRepository) Index(message domain.Message) error {
	if message.Text == "" {
		return nil
	}
	doc := bluge.NewDocument(message.ID.String()).
		AddField(bluge.NewTextField("text", message.Text).StoreValue()).
		AddField(bluge.NewKeywordField("sender", message.SenderID).StoreValue()).
		AddField(bluge.NewKeywordField("receiver", message.ReceiverID).StoreValue()).
		AddField(bluge.NewKeywordField("lang", message.Lang).StoreValue()).
		AddField(bluge.NewKeywordField("created_at", message.CreatedAt.UTC().Format(time.RFC3339Nano)).StoreValue())

	return s.writer.Update(doc.ID(), doc)
}

// Search matches terms against the text of messages the user sent or
// received. Scoped to the caller: one user must never surface another
// conversation's content.
func (s *SearchRepository) Search(ctx context.Context, userID, terms string) ([]SearchHit, error) {
	reader, err := s.writer.Reader()
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = reader.Close()
	}()

	participant := bluge.NewBooleanQuery().
		AddShould(bluge.NewTermQuery(userID).SetField("sender")).
		AddShould(bluge.NewTermQuery(userID).SetField("receiver")).
		SetMinShould(1)

	query := bluge.NewBooleanQuery().
		AddMust(bluge.NewMatchQuery(terms).SetField("text")).
		AddMust(participant)

	iterator, err := reader.Search(ctx, bluge.NewTopNSearch(s.limit, query))
	if err != nil {
		return nil, err
	}

	var hits []SearchHit
	for match, err := iterator.Next(); match != nil; match, err = iterator.Next() {
		if err != nil {
			return nil, err
		}
		var hit SearchHit
		visitErr := match.VisitStoredFields(func(field string, value []byte) bool {
			switch field {
			case "_id":
				if id, parseErr := uuid.Parse(string(value)); parseErr == nil {
					hit.MessageID = id
				}
			case "text":
				hit.Text = string(value)
			case "sender":
				hit.SenderID = string(value)
			case "receiver":
				hit.ReceiverID = string(value)
			case "lang":
				hit.Lang = string(value)
			case "created_at":
				if at, parseErr := time.Parse(time.RFC3339Nano, string(value)); parseErr == nil {
					hit.CreatedAt = at
				}
			}
			return true
		})
		if visitErr != nil {
			return nil, visitErr
		}
		hits = append(hits, hit)
	}
	return hits, nil
}
