package bot

import (
	"context"
	"fmt"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestStartPolling_DispatchesUntilChannelCloses(t *testing.T) {
	app, tg, st := testBotApp(&fakeCatalog{})

	updates := make(chan tgbotapi.Update, 4)
	tg.updates = updates
	updates <- commandUpdate(1, "/start")
	updates <- commandUpdate(2, "/start")
	updates <- commandUpdate(1, "/stop")
	updates <- textUpdate(2, "ignored")
	close(updates)

	if err := app.StartPolling(context.Background()); err != nil {
		t.Fatalf("start polling: %v", err)
	}
	if _, ok := tg.requests[0].(tgbotapi.DeleteWebhookConfig); !ok {
		t.Fatalf("expected webhook removal before polling, got %#v", tg.requests[0])
	}
	if chats := st.Chats(); len(chats) != 1 || chats[0] != 2 {
		t.Fatalf("unexpected subscriptions %v", chats)
	}
	if len(tg.sentMessages) != 3 {
		t.Fatalf("expected 3 replies, got %d", len(tg.sentMessages))
	}
}

type stoppableBot struct {
	recordingTelegramBot
	stopped bool
}

func (s *stoppableBot) StopReceivingUpdates() { s.stopped = true }

func TestStartPolling_StopsOnContextCancel(t *testing.T) {
	app, _, _ := testBotApp(&fakeCatalog{})
	tg := &stoppableBot{}
	app.tg = tg

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- app.StartPolling(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("polling did not stop")
	}
	if !tg.stopped {
		t.Fatal("expected StopReceivingUpdates to be called")
	}
}

func TestStartPolling_FailsWhenWebhookRemovalFails(t *testing.T) {
	app, tg, _ := testBotApp(&fakeCatalog{})
	tg.requestErr = func(tgbotapi.Chattable) error { return fmt.Errorf("unauthorized") }

	if err := app.StartPolling(context.Background()); err == nil {
		t.Fatal("expected delete webhook error")
	}
}
