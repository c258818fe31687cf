package bot

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"cinema-bot/internal/tmdb"
	"cinema-bot/pkg/store"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

type TelegramBotInterface interface {
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// MovieCatalog is the subset of the metadata client the bot relies on.
type MovieCatalog interface {
	FetchCategory(ctx context.Context, category tmdb.Category, page int) ([]tmdb.MovieSummary, error)
	FetchClassics(ctx context.Context, page int) ([]tmdb.MovieSummary, error)
	FetchDetails(ctx context.Context, mediaType string, id int64) (*tmdb.MovieDetails, error)
}

var newTelegramBot = func(token string) (TelegramBotInterface, error) {
	return tgbotapi.NewBotAPI(token)
}

const (
	classicsKey     = "classics"
	suggestionLabel = "🎲 Suggestion"
	suggestionPages = 10
	mediaTypeMovie  = "movie"
)

type menuButton struct {
	Label    string
	Category string
	Title    string
}

var menuButtons = []menuButton{
	{Label: "🎬 Now Playing", Category: string(tmdb.NowPlaying), Title: "🎬 Now Playing in Theaters"},
	{Label: "🌟 Popular", Category: string(tmdb.Popular), Title: "🌟 Popular Movies"},
	{Label: "🚀 Upcoming", Category: string(tmdb.Upcoming), Title: "🚀 Upcoming Releases"},
	{Label: "🏆 Top Rated", Category: string(tmdb.TopRated), Title: "🏆 Top Rated Movies"},
	{Label: "🏛️ Classics", Category: classicsKey, Title: "🏛️ Cinema Classics"},
}

func lookupMenuButton(text string) (menuButton, bool) {
	for _, b := range menuButtons {
		if b.Label == text {
			return b, true
		}
	}
	return menuButton{}, false
}

type BotApp struct {
	tg     TelegramBotInterface
	cfg    *Config
	movies MovieCatalog
	store  store.Store
	log    zerolog.Logger
	intn   func(n int) int
}

func NewBotApp(cfg *Config, movies MovieCatalog, st store.Store, log zerolog.Logger) (*BotApp, error) {
	tg, err := newTelegramBot(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &BotApp{
		tg:     tg,
		cfg:    cfg,
		movies: movies,
		store:  st,
		log:    log.With().Str("component", "bot").Logger(),
		intn:   rand.Intn,
	}, nil
}

// Telegram exposes the platform client for webhook registration.
func (a *BotApp) Telegram() TelegramBotInterface {
	return a.tg
}

// HandleUpdate dispatches a single platform update by type. Updates other
// than messages and callback queries are ignored.
func (a *BotApp) HandleUpdate(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		a.handleCallbackQuery(ctx, upd.CallbackQuery)
	case upd.Message != nil:
		a.handleMessage(ctx, upd.Message)
	default:
		a.log.Debug().Int("update_id", upd.UpdateID).Msg("ignoring unsupported update")
	}
}

// StartPolling consumes updates via long polling until ctx is done or the channel closes.
func (a *BotApp) StartPolling(ctx context.Context) error {
	if _, err := a.tg.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", err)
	}
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := a.tg.GetUpdatesChan(u)
	for {
		select {
		case <-ctx.Done():
			if s, ok := a.tg.(interface{ StopReceivingUpdates() }); ok {
				s.StopReceivingUpdates()
			}
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			a.HandleUpdate(ctx, upd)
		}
	}
}

func (a *BotApp) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.Chat == nil {
		return
	}
	chatID := msg.Chat.ID
	if msg.IsCommand() {
		if !a.addressedToMe(msg) {
			return
		}
		switch msg.Command() {
		case "start", "help", "ajuda":
			a.handleStart(chatID)
		case "stop":
			a.handleStop(chatID)
		}
		return
	}

	text := strings.TrimSpace(msg.Text)
	if text == suggestionLabel {
		a.sendSuggestion(ctx, chatID)
		return
	}
	if btn, ok := lookupMenuButton(text); ok {
		a.sendMovieList(ctx, chatID, btn)
	}
	// other free text is ignored
}

// addressedToMe rejects commands of the form /cmd@otherbot.
func (a *BotApp) addressedToMe(msg *tgbotapi.Message) bool {
	_, target, ok := strings.Cut(msg.CommandWithAt(), "@")
	if !ok || target == "" {
		return true
	}
	return strings.EqualFold(target, a.cfg.BotUsername)
}

func (a *BotApp) handleStart(chatID int64) {
	if err := a.store.Add(chatID); err != nil {
		a.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to persist subscription")
	}
	msg := tgbotapi.NewMessage(chatID, "Hi! I'm your Cinema Bot. Use the buttons to discover movies!")
	msg.ReplyMarkup = mainKeyboard()
	a.send(msg)
}

func (a *BotApp) handleStop(chatID int64) {
	removed, err := a.store.Remove(chatID)
	if err != nil {
		a.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to persist unsubscription")
	}
	if !removed {
		return
	}
	a.sendText(chatID, "You will no longer receive suggestions. Send /start to turn them back on.")
}

func mainKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuButtons[0].Label),
			tgbotapi.NewKeyboardButton(menuButtons[1].Label),
			tgbotapi.NewKeyboardButton(menuButtons[2].Label),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuButtons[3].Label),
			tgbotapi.NewKeyboardButton(menuButtons[4].Label),
			tgbotapi.NewKeyboardButton(suggestionLabel),
		),
	)
	kb.ResizeKeyboard = true
	return kb
}

func (a *BotApp) sendMovieList(ctx context.Context, chatID int64, btn menuButton) {
	a.sendText(chatID, fmt.Sprintf("Searching <b>%s</b>...", escape(btn.Title)))

	var (
		movies []tmdb.MovieSummary
		err    error
	)
	if btn.Category == classicsKey {
		movies, err = a.movies.FetchClassics(ctx, 1)
	} else {
		movies, err = a.movies.FetchCategory(ctx, tmdb.Category(btn.Category), 1)
	}
	if err != nil {
		a.log.Error().Err(err).Str("category", btn.Category).Msg("movie listing failed")
	}
	if len(movies) == 0 {
		a.sendText(chatID, "❌ No movies found for this category.")
		return
	}
	if len(movies) > maxListItems {
		movies = movies[:maxListItems]
	}

	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(movies))
	for _, m := range movies {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(listLabel(m), detailsToken(m.ID)),
		))
	}
	msg := tgbotapi.NewMessage(chatID, fmt.Sprintf("Pick a movie from <b>%s</b>:", escape(btn.Title)))
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	a.send(msg)
}

func (a *BotApp) sendSuggestion(ctx context.Context, chatID int64) {
	a.sendText(chatID, "🎲 Looking for a great suggestion...")

	page := a.intn(suggestionPages) + 1
	movies, err := a.movies.FetchCategory(ctx, tmdb.Popular, page)
	if err != nil {
		a.log.Error().Err(err).Int("page", page).Msg("suggestion listing failed")
	}
	if len(movies) == 0 {
		a.sendText(chatID, "❌ Couldn't find a suggestion.")
		return
	}
	pick := movies[a.intn(len(movies))]
	a.showMovieDetails(ctx, chatID, pick.ID, nil)
}

func (a *BotApp) handleCallbackQuery(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	if _, err := a.tg.Request(tgbotapi.NewCallback(cb.ID, "")); err != nil {
		a.log.Warn().Err(err).Str("callback_id", cb.ID).Msg("failed to answer callback query")
	}
	if cb.Message == nil || cb.Message.Chat == nil {
		return
	}

	token, ok := parseCallbackToken(cb.Data)
	if !ok {
		a.log.Debug().Str("data", cb.Data).Msg("ignoring malformed callback token")
		return
	}
	switch token.Action {
	case actionDetails:
		movieID, err := strconv.ParseInt(token.Value, 10, 64)
		if err != nil || movieID <= 0 {
			a.log.Debug().Str("data", cb.Data).Msg("ignoring callback with invalid movie id")
			return
		}
		a.showMovieDetails(ctx, cb.Message.Chat.ID, movieID, cb.Message)
	default:
		a.log.Debug().Str("action", token.Action).Msg("ignoring unknown callback action")
	}
}

// showMovieDetails sends the detail view. When replace is set, that message is
// deleted first on a best-effort basis.
func (a *BotApp) showMovieDetails(ctx context.Context, chatID, movieID int64, replace *tgbotapi.Message) {
	details, err := a.movies.FetchDetails(ctx, mediaTypeMovie, movieID)
	if err != nil || details == nil {
		a.log.Error().Err(err).Int64("movie_id", movieID).Msg("movie details failed")
		a.sendText(chatID, "❌ Could not load the movie details.")
		return
	}

	text := formatDetails(details)
	if replace != nil {
		if _, err := a.tg.Request(tgbotapi.NewDeleteMessage(chatID, replace.MessageID)); err != nil {
			a.log.Warn().Err(err).Int("message_id", replace.MessageID).Msg("could not delete replaced message")
		}
	}
	trailer, hasTrailer := details.TrailerURL()

	if posterURL, ok := tmdb.PosterURL(details.PosterPath, tmdb.DefaultPosterSize); ok {
		photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(posterURL))
		photo.Caption = text
		photo.ParseMode = tgbotapi.ModeHTML
		if hasTrailer {
			photo.ReplyMarkup = trailerKeyboard(trailer)
		}
		_, sendErr := a.tg.Send(photo)
		if sendErr == nil {
			return
		}
		a.log.Warn().Err(sendErr).Int64("movie_id", movieID).Msg("poster send failed, falling back to text")
	}

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if hasTrailer {
		msg.ReplyMarkup = trailerKeyboard(trailer)
	}
	a.send(msg)
}

func trailerKeyboard(url string) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(tgbotapi.NewInlineKeyboardButtonURL("▶️ Trailer", url)),
	)
}

func (a *BotApp) sendText(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	a.send(msg)
}

func (a *BotApp) send(c tgbotapi.Chattable) {
	if _, err := a.tg.Send(c); err != nil {
		a.log.Error().Err(err).Msg("telegram send failed")
	}
}
