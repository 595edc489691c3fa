package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"
)

// telegramSender posts replies through the Bot API. All sends share one
// limiter so bursts of replies stay under Telegram's flood limits.
type telegramSender struct {
	bot     BotAPI
	limiter *rate.Limiter
}

func newTelegramSender(bot BotAPI, perSecond int) *telegramSender {
	limit := rate.Inf
	if perSecond > 0 {
		limit = rate.Limit(perSecond)
	}
	return &telegramSender{bot: bot, limiter: rate.NewLimiter(limit, 1)}
}

// Send posts text as Markdown, retrying as plain text when Telegram rejects
// the markup.
func (s *telegramSender) Send(ctx context.Context, chatID int64, text string) error {
	if s.bot == nil {
		return fmt.Errorf("telegram bot not configured")
	}
	if err := s.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("waiting for send slot: %w", err)
	}

	msg := tgbotapi.NewMessage(chatID, markdownFences(text))
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := s.bot.Send(msg); err != nil {
		slog.Warn("Error sending Markdown message. Retrying as plain text", "chat_id", chatID, "err", err)
		msg.Text = text
		msg.ParseMode = ""
		if _, err := s.bot.Send(msg); err != nil {
			return fmt.Errorf("sending message: %w", err)
		}
	}
	return nil
}

// markdownFences puts a newline after every opening ``` that is directly
// followed by text. Telegram's Markdown reads that text as the block's
// language tag and drops it.
func markdownFences(text string) string {
	const fence = "```"
	if !strings.Contains(text, fence) {
		return text
	}

	var b strings.Builder
	b.Grow(len(text) + 8)
	open := false
	for {
		i := strings.Index(text, fence)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i+len(fence)])
		text = text[i+len(fence):]
		if !open && text != "" && text[0] != '\n' {
			b.WriteByte('\n')
		}
		open = !open
	}
}

// inboundFromUpdate extracts the fields the dispatcher needs from a Telegram
// update. ok is false for updates that carry no text message.
func inboundFromUpdate(update tgbotapi.Update) (Inbound, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || msg.Text == "" {
		return Inbound{}, false
	}
	in := Inbound{ChatID: msg.Chat.ID, HasChat: true, Text: msg.Text}
	if msg.From != nil {
		in.SenderID = msg.From.ID
	}
	return in, true
}
