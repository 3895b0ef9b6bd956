package notifier

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Reply is the answer to a bot command. Chart, when set, is sent as a photo
// with Text as its caption.
type Reply struct {
	Text  string
	Chart []byte
}

// CommandHandler is called when a user command is received.
type CommandHandler func(ctx context.Context, command string) Reply

// StartPolling begins long-polling for Telegram commands. Only messages from
// the configured chat are handled. Blocks until ctx is cancelled.
func (t *TelegramNotifier) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			t.log.Info().Msg("telegram polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			chatID := update.Message.Chat.ID
			if chatID != t.ChatID {
				t.log.Warn().Int64("chat_id", chatID).Msg("ignoring message from unknown chat")
				continue
			}
			text := strings.TrimSpace(update.Message.Text)
			t.log.Info().Str("command", text).Msg("received command")

			reply := handler(ctx, text)
			var err error
			switch {
			case len(reply.Chart) > 0:
				err = t.sendPhoto(chatID, reply.Chart, reply.Text)
			case reply.Text != "":
				err = t.sendText(chatID, reply.Text)
			}
			if err != nil {
				t.log.Error().Err(err).Msg("send reply")
			}
		}
	}
}
