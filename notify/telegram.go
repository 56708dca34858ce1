// Package notify relays scrape progress to a Telegram chat.
package notify

import (
	"fmt"
	"html"
	"sync"

	"zillow-scraper/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

const queueSize = 32

// sender is the part of *tgbotapi.BotAPI used here
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Telegram sends messages to one chat. As a scraper.Reporter it queues
// messages and delivers them from its own goroutine, so a slow API never
// stalls scrolling.
type Telegram struct {
	bot    sender
	chatID int64

	queue     chan string
	done      chan struct{}
	closeOnce sync.Once
}

// NewTelegram connects to the bot API with token
func NewTelegram(token string, chatID int64) (*Telegram, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	log.Printf("Authorized on Telegram account %s", bot.Self.UserName)
	return newTelegram(bot, chatID), nil
}

func newTelegram(bot sender, chatID int64) *Telegram {
	t := &Telegram{
		bot:    bot,
		chatID: chatID,
		queue:  make(chan string, queueSize),
		done:   make(chan struct{}),
	}
	go t.deliver()
	return t
}

// Send delivers plain text immediately
func (t *Telegram) Send(text string) error {
	return t.send(text, "")
}

func (t *Telegram) send(text, parseMode string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = parseMode
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

// Report queues a message for events worth a chat notification. Messages
// are dropped when the queue is full.
func (t *Telegram) Report(e scraper.Event) {
	text, ok := FormatEvent(e)
	if !ok {
		return
	}
	select {
	case t.queue <- text:
	default:
		log.Printf("Warning: Telegram queue full, dropping %s event for page %d", e.Kind, e.Page)
	}
}

// Close delivers the queued messages and stops the sender goroutine. Report
// must not be called after Close.
func (t *Telegram) Close() {
	t.closeOnce.Do(func() {
		close(t.queue)
		<-t.done
	})
}

func (t *Telegram) deliver() {
	defer close(t.done)
	for text := range t.queue {
		if err := t.send(text, tgbotapi.ModeHTML); err != nil {
			log.Printf("Error sending status update: %v", err)
		}
	}
}

// FormatEvent renders the chat message for e. Only completed pages,
// warnings and the final event are relayed.
func FormatEvent(e scraper.Event) (string, bool) {
	switch e.Kind {
	case scraper.KindPageCompleted:
		return fmt.Sprintf("📄 %s\nTotal so far: %d", html.EscapeString(e.Message), e.Records), true
	case scraper.KindWarning:
		text := "⚠️ " + html.EscapeString(e.Message)
		if e.Err != nil {
			text += "\n<code>" + html.EscapeString(e.Err.Error()) + "</code>"
		}
		return text, true
	case scraper.KindTerminated:
		if e.Err != nil {
			return fmt.Sprintf("❌ Scraping failed on page %d: <code>%s</code>", e.Page, html.EscapeString(e.Err.Error())), true
		}
		return fmt.Sprintf("✅ %s\nListings collected: %d", html.EscapeString(e.Message), e.Records), true
	}
	return "", false
}
