package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cinema-bot/internal/bot"
	"cinema-bot/internal/idempotency"
	"cinema-bot/internal/logger"
	"cinema-bot/internal/tmdb"
	"cinema-bot/internal/webhook"
	"cinema-bot/pkg/store"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

func main() {
	_ = godotenv.Load()
	cfg := bot.LoadConfig()
	log := logger.New(cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("cinema bot stopped")
	}
}

func run(cfg *bot.Config, log zerolog.Logger) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration: %w", err)
	}

	st, err := store.Open(cfg.StateFile)
	if err != nil {
		log.Warn().Err(err).Str("file", cfg.StateFile).Msg("starting with an empty subscription set")
	} else {
		log.Info().Int("chats", len(st.Chats())).Msg("subscriptions loaded")
	}

	movies, err := tmdb.NewClient(cfg.TMDBBaseURL, cfg.TMDBAPIKey, cfg.TMDBLanguage, cfg.TMDBRegion)
	if err != nil {
		return fmt.Errorf("tmdb client: %w", err)
	}

	app, err := bot.NewBotApp(cfg, movies, st, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TelegramMode == bot.ModePolling {
		log.Info().Msg("starting telegram bot in polling mode")
		return app.StartPolling(ctx)
	}

	guard, closeGuard := newGuard(cfg, log)
	defer closeGuard()

	srv := webhook.NewServer(app, app.Telegram(), guard, cfg.TelegramToken, cfg.WebhookURL(), log)
	if err := srv.RegisterWebhook(); err != nil {
		log.Error().Err(err).Msg("initial webhook registration failed, GET / retries it")
	}

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 60 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

func newGuard(cfg *bot.Config, log zerolog.Logger) (idempotency.Guard, func()) {
	if cfg.RedisURL == "" {
		return idempotency.NewMemoryGuard(idempotency.DefaultMaxEntries, idempotency.DefaultTTL, time.Now), func() {}
	}
	g, err := idempotency.NewRedisGuard(cfg.RedisURL, "cinema-bot:", idempotency.DefaultTTL)
	if err != nil {
		log.Warn().Err(err).Msg("invalid REDIS_URL, using in-memory update guard")
		return idempotency.NewMemoryGuard(idempotency.DefaultMaxEntries, idempotency.DefaultTTL, time.Now), func() {}
	}
	return g, func() { _ = g.Close() }
}
