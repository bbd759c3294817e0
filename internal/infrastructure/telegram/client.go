package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Sender dispatches outbound messages over the Telegram Bot API.
// The webhook handler depends on this interface so tests can stub it.
type Sender interface {
	// SendText sends a plain text message to the chat.
	SendText(chatID int64, text string) error
	// RequestContact sends a prompt with a reply keyboard carrying a
	// share-contact button.
	RequestContact(chatID int64, text, buttonLabel string) error
}

type client struct {
	api *tgbotapi.BotAPI
}

// NewClient creates a Sender backed by the Bot API. Fails when the token
// is empty or rejected by Telegram.
func NewClient(token string) (Sender, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("telegram bot token is empty")
	}
	api, err := tgbotapi.NewBotAPI(strings.TrimSpace(token))
	if err != nil {
		return nil, fmt.Errorf("create telegram bot api: %w", err)
	}
	return &client{api: api}, nil
}

func (c *client) SendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	// Drop any previously sent contact keyboard.
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram send message: %w", err)
	}
	return nil
}

func (c *client) RequestContact(chatID int64, text, buttonLabel string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact(buttonLabel),
		),
	)
	keyboard.OneTimeKeyboard = true
	keyboard.ResizeKeyboard = true
	msg.ReplyMarkup = keyboard
	if _, err := c.api.Send(msg); err != nil {
		return fmt.Errorf("telegram request contact: %w", err)
	}
	return nil
}
