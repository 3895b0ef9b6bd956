package notifier

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v4"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const maxCaptionLen = 1024

// TelegramNotifier sends messages and charts via the Telegram Bot API.
type TelegramNotifier struct {
	ChatID int64
	bot    *tgbotapi.BotAPI
	log    zerolog.Logger
}

// NewTelegramNotifier authorizes the bot, optionally through an HTTP proxy.
func NewTelegramNotifier(botToken string, chatID int64, proxyURL string) (*TelegramNotifier, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		if u, err := url.Parse(proxyURL); err == nil {
			transport.Proxy = http.ProxyURL(u)
		}
	}
	client := &http.Client{Timeout: 60 * time.Second, Transport: transport}

	bot, err := tgbotapi.NewBotAPIWithClient(botToken, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("authorize telegram bot: %w", err)
	}
	logger := log.With().Str("component", "telegram").Logger()
	logger.Info().Str("username", bot.Self.UserName).Msg("authorized on telegram")
	return &TelegramNotifier{ChatID: chatID, bot: bot, log: logger}, nil
}

// Send sends an HTML message to the configured chat.
func (t *TelegramNotifier) Send(text string) error {
	return t.sendText(t.ChatID, text)
}

func (t *TelegramNotifier) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// SendChart uploads a PNG chart with an HTML caption.
func (t *TelegramNotifier) SendChart(png []byte, caption string) error {
	return t.sendPhoto(t.ChatID, png, caption)
}

func (t *TelegramNotifier) sendPhoto(chatID int64, png []byte, caption string) error {
	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileBytes{Name: "chart.png", Bytes: png})
	text, isHTML := fitCaption(caption)
	photo.Caption = text
	if isHTML {
		photo.ParseMode = tgbotapi.ModeHTML
	}
	if _, err := t.bot.Send(photo); err != nil {
		return fmt.Errorf("send chart: %w", err)
	}
	return nil
}

// fitCaption keeps an HTML caption that fits. A longer one is reduced to
// plain text and cut on a rune boundary, so no tag or entity is split.
func fitCaption(caption string) (string, bool) {
	if utf8.RuneCountInString(caption) <= maxCaptionLen {
		return caption, true
	}
	var b strings.Builder
	inTag := false
	for _, r := range caption {
		switch {
		case r == '<':
			inTag = true
		case r == '>' && inTag:
			inTag = false
		case !inTag:
			b.WriteRune(r)
		}
	}
	plain := []rune(html.UnescapeString(b.String()))
	if len(plain) > maxCaptionLen {
		plain = plain[:maxCaptionLen]
	}
	return string(plain), false
}

// SendWithRetry sends a message with exponential backoff retry.
func (t *TelegramNotifier) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	return t.retry(ctx, maxRetries, func() error { return t.Send(text) })
}

// SendChartWithRetry uploads a chart with exponential backoff retry.
func (t *TelegramNotifier) SendChartWithRetry(ctx context.Context, png []byte, caption string, maxRetries int) error {
	return t.retry(ctx, maxRetries, func() error { return t.SendChart(png, caption) })
}

func (t *TelegramNotifier) retry(ctx context.Context, maxRetries int, op func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = time.Second
	policy := backoff.WithContext(backoff.WithMaxRetries(b, uint64(maxRetries)), ctx)

	attempt := 0
	err := backoff.RetryNotify(op, policy, func(err error, wait time.Duration) {
		attempt++
		t.log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msg("telegram send failed")
	})
	if err != nil {
		return fmt.Errorf("all %d retries exhausted: %w", maxRetries+1, err)
	}
	return nil
}
