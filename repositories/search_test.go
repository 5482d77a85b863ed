package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/blugelabs/bluge"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"dm-lab/domain"
	"dm-lab/internal"
)

func newSearchRepo(t *testing.T) *SearchRepository {
	t.Helper()
	writer, err := bluge.OpenWriter(bluge.InMemoryOnlyConfig())
	require.NoError(t, err)
	t.Cleanup(func() { _ = writer.Close() })
	return NewSearchRepository(writer, internal.GetLoggerFromString("ERROR"), 10)
}

func TestSearchRepository_IndexAndSearch(t *testing.T) {
	req := require.New(t)
	repo := newSearchRepo(t)

	// Given an indexed text message
	msg := domain.Message{
		ID:         uuid.New(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "lunch at the harbor tomorrow",
		Lang:       "en",
		CreatedAt:  time.Now().UTC(),
	}
	req.NoError(repo.Index(msg))

	// When one of the participants searches a word
	hits, err := repo.Search(context.Background(), "bob", "harbor")

	// Then the message surfaces with its stored fields
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(msg.ID, hits[0].MessageID)
	req.Equal("alice", hits[0].SenderID)
	req.Equal("bob", hits[0].ReceiverID)
	req.Equal("lunch at the harbor tomorrow", hits[0].Text)
	req.Equal("en", hits[0].Lang)
}

func TestSearchRepository_ScopedToParticipant(t *testing.T) {
	req := require.New(t)
	repo := newSearchRepo(t)

	// Given a message between alice and bob
	req.NoError(repo.Index(domain.Message{
		ID:         uuid.New(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Text:       "our secret harbor plan",
		CreatedAt:  time.Now().UTC(),
	}))

	// When an outsider searches for it
	hits, err := repo.Search(context.Background(), "mallory", "harbor")

	// Then nothing leaks across conversations
	req.NoError(err)
	req.Empty(hits)
}

func TestSearchRepository_MediaOnlyMessagesAreSkipped(t *testing.T) {
	req := require.New(t)
	repo := newSearchRepo(t)

	// Given a message with no text payload
	req.NoError(repo.Index(domain.Message{
		ID:         uuid.New(),
		SenderID:   "alice",
		ReceiverID: "bob",
		Image:      "https://cdn.example.com/pier.png",
		CreatedAt:  time.Now().UTC(),
	}))

	hits, err := repo.Search(context.Background(), "alice", "pier")

	req.NoError(err)
	req.Empty(hits)
}

func TestSearchRepository_ReindexReplacesDocument(t *testing.T) {
	req := require.New(t)
	repo := newSearchRepo(t)

	// Given a message indexed twice with edited text
	id := uuid.New()
	original := domain.Message{ID: id, SenderID: "alice", ReceiverID: "bob", Text: "meet at the dock", CreatedAt: time.Now().UTC()}
	req.NoError(repo.Index(original))
	edited := original
	edited.Text = "meet at the station"
	req.NoError(repo.Index(edited))

	// Then only the latest version is findable
	hits, err := repo.Search(context.Background(), "alice", "dock")
	req.NoError(err)
	req.Empty(hits)

	hits, err = repo.Search(context.Background(), "alice", "station")
	req.NoError(err)
	req.Len(hits, 1)
	req.Equal(id, hits[0].MessageID)
}
