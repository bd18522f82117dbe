package notify

import (
	"fmt"
	"html"
	"sync"

	"github.com/charmbracelet/log"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram posts notifications to a single chat through the Bot API.
type Telegram struct {
	api    sender
	chatID int64
	logger *log.Logger
	wg     sync.WaitGroup
}

// NewTelegram authorises the bot token and returns a notifier for chatID.
func NewTelegram(token string, chatID int64, logger *log.Logger) (*Telegram, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: %w", err)
	}
	return &Telegram{api: api, chatID: chatID, logger: logger}, nil
}

// Notify sends in the background; failures are logged.
func (t *Telegram) Notify(title, body string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		if err := t.deliver(title, body); err != nil {
			t.logger.Error("telegram notify failed", "err", err)
		}
	}()
}

func (t *Telegram) deliver(title, body string) error {
	msg := tgbotapi.NewMessage(t.chatID, formatHTML(title, body))
	msg.ParseMode = tgbotapi.ModeHTML
	_, err := t.api.Send(msg)
	return err
}

// Close waits for messages still in flight.
func (t *Telegram) Close() error {
	t.wg.Wait()
	return nil
}

func formatHTML(title, body string) string {
	return fmt.Sprintf("🌱 <b>%s</b>\n%s", html.EscapeString(title), html.EscapeString(body))
}
