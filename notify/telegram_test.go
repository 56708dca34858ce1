package notify

import (
	"errors"
	"sync"
	"testing"

	"zillow-scraper/scraper"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeBot struct {
	mu   sync.Mutex
	sent []tgbotapi.MessageConfig
	err  error
}

func (b *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return tgbotapi.Message{}, b.err
	}
	b.sent = append(b.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func TestFormatEvent(t *testing.T) {
	tests := []struct {
		name  string
		event scraper.Event
		want  string
		ok    bool
	}{
		{
			name:  "page completed",
			event: scraper.Event{Kind: scraper.KindPageCompleted, Page: 2, Message: "Page 2: 40 new listings", Records: 81},
			want:  "📄 Page 2: 40 new listings\nTotal so far: 81",
			ok:    true,
		},
		{
			name:  "warning escapes markup",
			event: scraper.Event{Kind: scraper.KindWarning, Message: "count <unknown>", Err: errors.New("a & b")},
			want:  "⚠️ count &lt;unknown&gt;\n<code>a &amp; b</code>",
			ok:    true,
		},
		{
			name:  "finished",
			event: scraper.Event{Kind: scraper.KindTerminated, Page: 3, Message: "Scraping finished: end_of_pagination", Records: 100},
			want:  "✅ Scraping finished: end_of_pagination\nListings collected: 100",
			ok:    true,
		},
		{
			name:  "aborted",
			event: scraper.Event{Kind: scraper.KindTerminated, Page: 1, Err: errors.New("timeout")},
			want:  "❌ Scraping failed on page 1: <code>timeout</code>",
			ok:    true,
		},
		{
			name:  "page started is not relayed",
			event: scraper.Event{Kind: scraper.KindPageStarted, Page: 1},
		},
		{
			name:  "retry is not relayed",
			event: scraper.Event{Kind: scraper.KindRetry, Page: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := FormatEvent(tt.event)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTelegram_ReportDeliversInOrder(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(bot, 42)

	tg.Report(scraper.Event{Kind: scraper.KindPageStarted, Page: 1})
	tg.Report(scraper.Event{Kind: scraper.KindPageCompleted, Page: 1, Message: "Page 1", Records: 5})
	tg.Report(scraper.Event{Kind: scraper.KindTerminated, Page: 1, Message: "done", Records: 5})
	tg.Close()

	require.Len(t, bot.sent, 2)
	assert.Equal(t, int64(42), bot.sent[0].ChatID)
	assert.Equal(t, tgbotapi.ModeHTML, bot.sent[0].ParseMode)
	assert.Contains(t, bot.sent[0].Text, "Page 1")
	assert.Contains(t, bot.sent[1].Text, "done")
}

func TestTelegram_SendIsPlainText(t *testing.T) {
	bot := &fakeBot{}
	tg := newTelegram(bot, 7)
	defer tg.Close()

	text := "✅ https://www.zillow.com/homes/austin-tx_rb/?a=1&category=SEMANTIC <done>"
	require.NoError(t, tg.Send(text))

	require.Len(t, bot.sent, 1)
	assert.Empty(t, bot.sent[0].ParseMode)
	assert.Equal(t, text, bot.sent[0].Text)
}

func TestTelegram_CloseTwice(t *testing.T) {
	tg := newTelegram(&fakeBot{}, 1)
	tg.Close()
	assert.NotPanics(t, tg.Close)
}

func TestTelegram_SendError(t *testing.T) {
	tg := newTelegram(&fakeBot{err: errors.New("forbidden")}, 1)
	defer tg.Close()

	err := tg.Send("hi")
	assert.ErrorContains(t, err, "forbidden")
}
