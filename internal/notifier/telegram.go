// Package notifier delivers briefings over Telegram.
package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Notifier is the delivery surface the scheduler depends on.
type Notifier interface {
	Send(text string) error
	SendWithRetry(ctx context.Context, text string, maxRetries int) error
}

// CommandHandler is called with the received command (e.g. "/brief") and
// returns the reply text.
type CommandHandler func(command string) string

// Telegram sends HTML messages to one chat and optionally long-polls for
// commands.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *logrus.Entry
}

// NewTelegram builds the bot client with optional proxy support.
func NewTelegram(token string, chatID int64, proxyURL string) (*Telegram, error) {
	transport := &http.Transport{}
	if proxyURL != "" {
		u, err := url.Parse(proxyURL)
		if err != nil {
			return nil, fmt.Errorf("parse proxy url: %w", err)
		}
		transport.Proxy = http.ProxyURL(u)
	}
	client := &http.Client{Timeout: 35 * time.Second, Transport: transport}

	bot, err := tgbotapi.NewBotAPIWithClient(token, tgbotapi.APIEndpoint, client)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &Telegram{
		bot:    bot,
		chatID: chatID,
		log:    logrus.WithField("component", "notifier"),
	}, nil
}

// Send delivers one HTML message to the configured chat.
func (t *Telegram) Send(text string) error {
	msg := tgbotapi.NewMessage(t.chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// SendWithRetry retries Send with exponential backoff (1s, 2s, 4s, ...).
// The terminal failure returns immediately, without a trailing backoff.
func (t *Telegram) SendWithRetry(ctx context.Context, text string, maxRetries int) error {
	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		lastErr = t.Send(text)
		if lastErr == nil {
			return nil
		}
		if i == maxRetries {
			break
		}
		backoff := time.Duration(1<<uint(i)) * time.Second
		t.log.WithError(lastErr).Warnf("send failed (attempt %d/%d), retrying in %v", i+1, maxRetries+1, backoff)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
	}
	return fmt.Errorf("all %d attempts exhausted: %w", maxRetries+1, lastErr)
}

// StartPolling long-polls for updates and replies to commands from the
// configured chat. Blocks until ctx is cancelled.
func (t *Telegram) StartPolling(ctx context.Context, handler CommandHandler) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := t.bot.GetUpdatesChan(u)
	defer t.bot.StopReceivingUpdates()

	for {
		select {
		case <-ctx.Done():
			t.log.Info("polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || !update.Message.IsCommand() {
				continue
			}
			if update.Message.Chat != nil && update.Message.Chat.ID != t.chatID {
				continue
			}

			cmd := "/" + update.Message.Command()
			t.log.WithField("command", cmd).Info("command received")
			reply := handler(cmd)
			if reply == "" {
				continue
			}
			if err := t.Send(reply); err != nil {
				t.log.WithError(err).Warn("command reply failed")
			}
		}
	}
}

// Noop discards every message. Used when Telegram is unconfigured.
type Noop struct{}

func (Noop) Send(string) error                                { return nil }
func (Noop) SendWithRetry(context.Context, string, int) error { return nil }
