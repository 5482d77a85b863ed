package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/abadojack/whatlanggo"
	"github.com/google/uuid"

	"dm-lab/contract"
	"dm-lab/domain"
	"dm-lab/moderation"
	"dm-lab/observability"
	"dm-lab/repositories"
	"dm-lab/runtime"
)

type IChatService interface {
	SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error)
	Conversation(userA, userB string, cursor *string) ([]domain.Message, *string, error)
	UpdateReceipt(ctx context.Context, messageID uuid.UUID, status domain.ReceiptStatus) (domain.Message, error)
	Search(ctx context.Context, userID, terms string) ([]repositories.SearchHit, error)
	DeleteConversation(userA, userB string) error
	OnlineUsers() []string
}

type SendMessageCommand struct {
	SenderID   string
	ReceiverID string
	Text       string
	Image      string
	Location   *domain.Location
	Audio      string
}

// ChatService implements the send/receipt flows on top of the store, the
// registry and the router. Real-time pushes are strictly gated on
// persistence: a store failure means no event ever reaches a connection.
type ChatService struct {
	log       *slog.Logger
	messages  repositories.IMessageRepository
	search    repositories.ISearchRepository
	router    *runtime.Router
	registry  contract.IRegistry
	moderator *moderation.Moderator
	monitor   *observability.Monitor
}

func NewChatService(log *slog.Logger,
	messages repositories.IMessageRepository,
	search repositories.ISearchRepository,
	router *runtime.Router,
	registry contract.IRegistry,
	moderator *moderation.Moderator,
	monitor *observability.Monitor) *ChatService {
	return &ChatService{
		log:       log,
		messages:  messages,
		search:    search,
		router:    router,
		registry:  registry,
		moderator: moderator,
		monitor:   monitor,
	}
}

// SendMessage validates, moderates, persists and finally routes a message.
// The returned record is exactly what was persisted and pushed.
func (s *ChatService) SendMessage(ctx context.Context, cmd SendMessageCommand) (domain.Message, error) {
	text := cmd.Text
	if text != "" && s.moderator != nil {
		censored, words := s.moderator.Censor(text)
		if len(words) > 0 {
			s.log.Info("Moderated outgoing message", "sender_id", cmd.SenderID, "matches", len(words))
		}
		text = censored
	}

	message := domain.Message{
		ID:         uuid.New(),
		SenderID:   cmd.SenderID,
		ReceiverID: cmd.ReceiverID,
		Text:       text,
		Image:      cmd.Image,
		Location:   cmd.Location,
		Audio:      cmd.Audio,
		Lang:       detectLang(text),
		CreatedAt:  time.Now().UTC(),
	}

	if err := message.Validate(); err != nil {
		return domain.Message{}, err
	}
	if err := ValidateMediaRef(message.Image, MediaImage); err != nil {
		return domain.Message{}, err
	}
	if err := ValidateMediaRef(message.Audio, MediaAudio); err != nil {
		return domain.Message{}, err
	}

	if err := s.messages.Create(message); err != nil {
		return domain.Message{}, err
	}
	s.monitor.IncrMessagesSent()

	if err := s.search.Index(message); err != nil {
		// The durable record is the source of truth; a stale index entry
		// only weakens search results.
		s.log.Warn("Failed to index message for search", "message_id", message.ID, "error", err)
	}

	s.router.Route(ctx, message)
	return message, nil
}

// Conversation hydrates the history between two users, newest first.
func (s *ChatService) Conversation(userA, userB string, cursor *string) ([]domain.Message, *string, error) {
	return s.messages.Conversation(userA, userB, cursor)
}

// UpdateReceipt advances the receipt state of one message and, when the
// record changed, notifies the original sender's live connection.
func (s *ChatService) UpdateReceipt(ctx context.Context, messageID uuid.UUID, status domain.ReceiptStatus) (domain.Message, error) {
	updated, changed, err := s.messages.UpdateReceipt(messageID, status, time.Now().UTC())
	if err != nil {
		return domain.Message{}, err
	}
	if changed {
		s.monitor.IncrReceiptUpdates()
		s.router.NotifySender(ctx, updated)
	}
	return updated, nil
}

func (s *ChatService) Search(ctx context.Context, userID, terms string) ([]repositories.SearchHit, error) {
	return s.search.Search(ctx, userID, strings.TrimSpace(terms))
}

func (s *ChatService) DeleteConversation(userA, userB string) error {
	return s.messages.DeleteConversation(userA, userB)
}

func (s *ChatService) OnlineUsers() []string {
	return s.registry.OnlineUsers()
}

// detectLang tags reliable language detections only; a short "ok" or an
// emoji-only message stays untagged.
func detectLang(text string) string {
	if text == "" {
		return ""
	}
	info := whatlanggo.Detect(text)
	if !info.IsReliable() {
		return ""
	}
	return info.Lang.Iso6391()
}
