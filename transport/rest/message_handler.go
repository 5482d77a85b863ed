package rest

import (
	errs "errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"dm-lab/domain"
	"dm-lab/errors"
	"dm-lab/repositories"
	"dm-lab/services"
)

// MessageHandler exposes conversation history, send and receipt endpoints.
type MessageHandler struct {
	log   *slog.Logger
	chat  services.IChatService
	users repositories.IUserRepository
}

func NewMessageHandler(log *slog.Logger, chat services.IChatService, users repositories.IUserRepository) *MessageHandler {
	return &MessageHandler{log: log, chat: chat, users: users}
}

type sendRequest struct {
	Text     string           `json:"text,omitempty"`
	Image    string           `json:"image,omitempty"`
	Location *domain.Location `json:"location,omitempty"`
	Audio    string           `json:"audio,omitempty"`
}

type receiptUpdateRequest struct {
	MessageID string `json:"messageId"`
	Status    string `json:"status"`
}

type conversationResponse struct {
	Messages []domain.Message `json:"messages"`
	Cursor   *string          `json:"cursor,omitempty"`
}

// Users returns everyone but the caller, for the contacts sidebar.
func (h *MessageHandler) Users(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.ListUsersExcept(UserID(r))
	if err != nil {
		h.log.Error("Failed to list users", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// Conversation hydrates the history with the user in the path, newest
// first, with cursor pagination.
func (h *MessageHandler) Conversation(w http.ResponseWriter, r *http.Request) {
	otherID := mux.Vars(r)["id"]

	var cursor *string
	if c := r.URL.Query().Get("cursor"); c != "" {
		cursor = &c
	}

	messages, next, err := h.chat.Conversation(UserID(r), otherID, cursor)
	if err != nil {
		h.log.Error("Failed to load conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{Messages: messages, Cursor: next})
}

// Send persists a message to the user in the path and pushes it to the
// receiver's connection when there is one.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	message, err := h.chat.SendMessage(r.Context(), services.SendMessageCommand{
		SenderID:   UserID(r),
		ReceiverID: mux.Vars(r)["id"],
		Text:       req.Text,
		Image:      req.Image,
		Location:   req.Location,
		Audio:      req.Audio,
	})
	switch {
	case errs.Is(err, errors.ErrEmptyPayload),
		errs.Is(err, errors.ErrSelfConversation),
		errs.Is(err, errors.ErrUnsupportedMedia):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.log.Error("Send failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusCreated, message)
}

// UpdateReceipt is the request-based receipt endpoint. Unlike the
// real-time channel it accepts all three statuses, including "received".
func (h *MessageHandler) UpdateReceipt(w http.ResponseWriter, r *http.Request) {
	var req receiptUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid body")
		return
	}

	status := domain.ReceiptStatus(req.Status)
	switch status {
	case domain.StatusDelivered, domain.StatusReceived, domain.StatusSeen:
	default:
		writeError(w, http.StatusBadRequest, "invalid status provided")
		return
	}

	messageID, err := uuid.Parse(req.MessageID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid message id")
		return
	}

	message, err := h.chat.UpdateReceipt(r.Context(), messageID, status)
	switch {
	case errs.Is(err, errors.ErrMessageNotFound):
		writeError(w, http.StatusNotFound, "message not found")
		return
	case err != nil:
		h.log.Error("Receipt update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, message)
}

// Search runs a full-text query over the caller's conversations.
func (h *MessageHandler) Search(w http.ResponseWriter, r *http.Request) {
	terms := r.URL.Query().Get("q")
	if terms == "" {
		writeError(w, http.StatusBadRequest, "missing query")
		return
	}

	hits, err := h.chat.Search(r.Context(), UserID(r), terms)
	if err != nil {
		h.log.Error("Search failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, hits)
}

// DeleteChat removes the whole conversation with the user in the path.
func (h *MessageHandler) DeleteChat(w http.ResponseWriter, r *http.Request) {
	if err := h.chat.DeleteConversation(UserID(r), mux.Vars(r)["id"]); err != nil {
		h.log.Error("Failed to delete conversation", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "conversation deleted"})
}
