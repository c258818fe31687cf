package webhook

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"sync"
	"time"

	"cinema-bot/internal/idempotency"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

const (
	maxBodyBytes     = 2 << 20
	reregisterPause  = 100 * time.Millisecond
	acknowledgement  = "!"
	registeredNotice = "Cinema bot is up and the webhook was re-registered!"
)

// UpdateHandler processes one decoded platform update.
type UpdateHandler interface {
	HandleUpdate(ctx context.Context, upd tgbotapi.Update)
}

// Registrar performs platform API calls used for webhook registration.
type Registrar interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Server struct {
	handler    UpdateHandler
	registrar  Registrar
	guard      idempotency.Guard
	log        zerolog.Logger
	webhookURL string
	mux        *http.ServeMux
	sleep      func(time.Duration)

	// dispatchMu keeps update processing sequential.
	dispatchMu sync.Mutex
}

// NewServer exposes GET / for webhook re-registration and POST /<secretPath>
// for update delivery. guard may be nil.
func NewServer(handler UpdateHandler, registrar Registrar, guard idempotency.Guard, secretPath, webhookURL string, log zerolog.Logger) *Server {
	mux := http.NewServeMux()
	s := &Server{
		handler:    handler,
		registrar:  registrar,
		guard:      guard,
		log:        log.With().Str("component", "webhook").Logger(),
		webhookURL: webhookURL,
		mux:        mux,
		sleep:      time.Sleep,
	}
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/"+secretPath, s.handleUpdate)
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// RegisterWebhook removes the current webhook, pauses briefly and registers webhookURL.
func (s *Server) RegisterWebhook() error {
	if _, err := s.registrar.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	s.sleep(reregisterPause)
	cfg, err := tgbotapi.NewWebhook(s.webhookURL)
	if err != nil {
		return fmt.Errorf("webhook config: %w", err)
	}
	if _, err := s.registrar.Request(cfg); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}
	return nil
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet {
		writeText(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.log.Info().Msg("re-registering webhook")
	if err := s.RegisterWebhook(); err != nil {
		s.log.Error().Err(err).Msg("webhook registration failed")
		writeText(w, http.StatusBadGateway, "webhook registration failed")
		return
	}
	s.log.Info().Msg("webhook registered")
	writeText(w, http.StatusOK, registeredNotice)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeText(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil || mediaType != "application/json" {
		writeText(w, http.StatusForbidden, "forbidden")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		writeText(w, http.StatusBadRequest, "unreadable body")
		return
	}
	var upd tgbotapi.Update
	if err := json.Unmarshal(body, &upd); err != nil {
		s.log.Warn().Err(err).Msg("rejecting malformed update")
		writeText(w, http.StatusBadRequest, "malformed update")
		return
	}

	marked := false
	if s.guard != nil {
		seen, err := s.guard.Seen(r.Context(), upd.UpdateID)
		switch {
		case err != nil:
			s.log.Warn().Err(err).Int("update_id", upd.UpdateID).Msg("idempotency check failed, processing anyway")
		case seen:
			s.log.Debug().Int("update_id", upd.UpdateID).Msg("skipping redelivered update")
			writeText(w, http.StatusOK, acknowledgement)
			return
		default:
			marked = true
		}
	}

	s.dispatch(r.Context(), upd, marked)
	writeText(w, http.StatusOK, acknowledgement)
}

// dispatch runs the handler under dispatchMu. If the handler panics, the
// update mark is dropped so a redelivery is processed, and the panic continues.
func (s *Server) dispatch(ctx context.Context, upd tgbotapi.Update, marked bool) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	defer func() {
		rec := recover()
		if rec == nil {
			return
		}
		if marked {
			if err := s.guard.Forget(context.Background(), upd.UpdateID); err != nil {
				s.log.Warn().Err(err).Int("update_id", upd.UpdateID).Msg("could not release update mark")
			}
		}
		s.log.Error().Interface("panic", rec).Int("update_id", upd.UpdateID).Msg("update handler panicked")
		panic(rec)
	}()
	s.handler.HandleUpdate(ctx, upd)
}

func writeText(w http.ResponseWriter, status int, text string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(text))
}
