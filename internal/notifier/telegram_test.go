package notifier

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTelegram serves the bot API from an httptest server. getMe always
// succeeds so client construction works; sendMessage is handed to send.
func newTestTelegram(t *testing.T, send http.HandlerFunc) *Telegram {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/getMe") {
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"briefbot"}}`)
			return
		}
		send(w, r)
	}))
	t.Cleanup(srv.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("TESTTOKEN", srv.URL+"/bot%s/%s", srv.Client())
	require.NoError(t, err)
	return &Telegram{
		bot:    bot,
		chatID: 7,
		log:    logrus.WithField("component", "notifier"),
	}
}

func TestSendWithRetrySucceedsFirstAttempt(t *testing.T) {
	calls := 0
	tg := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `{"ok":true,"result":{"message_id":1,"date":1,"chat":{"id":7,"type":"private"},"text":"hi"}}`)
	})

	err := tg.SendWithRetry(context.Background(), "hi", 3)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestSendWithRetryTerminalFailureReturnsImmediately(t *testing.T) {
	calls := 0
	tg := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"boom"}`)
	})

	start := time.Now()
	err := tg.SendWithRetry(context.Background(), "hi", 0)
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "attempts exhausted")
	assert.Equal(t, 1, calls)
	// The final attempt must not sleep its backoff before returning.
	assert.Less(t, elapsed, time.Second)
}

func TestSendWithRetryHonorsContext(t *testing.T) {
	tg := newTestTelegram(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"ok":false,"error_code":500,"description":"boom"}`)
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := tg.SendWithRetry(ctx, "hi", 3)
	assert.ErrorIs(t, err, context.Canceled)
}
