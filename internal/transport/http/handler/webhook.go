package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/labresults-api/internal/application/login"
)

// WebhookHandler receives Telegram webhook updates and runs the
// code-issuance flow. svc is nil when no bot token was configured; the
// webhook path is the only one for which that is a hard error.
type WebhookHandler struct {
	svc login.Service
}

func NewWebhookHandler(svc login.Service) *WebhookHandler {
	return &WebhookHandler{svc: svc}
}

func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.svc == nil {
		writeError(w, http.StatusInternalServerError, "telegram bot is not configured")
		return
	}

	var update tgbotapi.Update
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		writeError(w, http.StatusBadRequest, "invalid update payload")
		return
	}

	outcome, err := h.svc.HandleChatEvent(r.Context(), toChatEvent(&update))
	if err != nil {
		httpError(w, err)
		return
	}

	switch outcome.Kind {
	case login.OutcomeIgnored:
		writeJSON(w, http.StatusOK, WebhookAck{OK: true, Message: "no message from user"})
	case login.OutcomeContactRequested:
		writeJSON(w, http.StatusOK, WebhookAck{OK: true, Message: "phone number requested"})
	default:
		writeJSON(w, http.StatusOK, WebhookAck{OK: true, Message: "code sent successfully"})
	}
}

// toChatEvent flattens a provider update into the issuer's input. Updates
// without a message sender map to an event with an empty SenderID, which
// the service acknowledges as a no-op.
func toChatEvent(update *tgbotapi.Update) login.ChatEvent {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return login.ChatEvent{}
	}
	ev := login.ChatEvent{
		SenderID:  strconv.FormatInt(msg.From.ID, 10),
		FirstName: msg.From.FirstName,
		LastName:  msg.From.LastName,
	}
	if msg.Chat != nil {
		ev.ChatID = msg.Chat.ID
	}
	// Accept only the sender's own shared contact, not forwarded ones.
	if msg.Contact != nil && msg.Contact.UserID == msg.From.ID {
		ev.ContactPhone = msg.Contact.PhoneNumber
	}
	return ev
}
