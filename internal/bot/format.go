package bot

import (
	"fmt"
	"math"
	"strings"

	"cinema-bot/internal/tmdb"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const (
	maxListItems = 5
	castLimit    = 3
	notAvailable = "N/A"
)

// formatRating renders rating/2 stars, rounded half to even, followed by the numeric score.
func formatRating(rating float64) string {
	if math.IsNaN(rating) || rating < 0 {
		rating = 0
	}
	stars := int(math.RoundToEven(rating / 2))
	if stars > 5 {
		stars = 5
	}
	score := fmt.Sprintf("(%.1f/10)", rating)
	if stars == 0 {
		return score
	}
	return strings.Repeat("⭐", stars) + " " + score
}

func formatRuntime(minutes int) string {
	return fmt.Sprintf("%dh %dmin", minutes/60, minutes%60)
}

func listLabel(m tmdb.MovieSummary) string {
	title := m.Title
	if title == "" {
		title = notAvailable
	}
	return fmt.Sprintf("%s (%s)", title, m.Year())
}

func escape(s string) string {
	return tgbotapi.EscapeText(tgbotapi.ModeHTML, s)
}

// formatDetails builds the HTML caption of the detail view.
func formatDetails(d *tmdb.MovieDetails) string {
	title := d.Title
	if title == "" {
		title = notAvailable
	}
	release := d.ReleaseDate
	if release == "" {
		release = notAvailable
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🎬 <b>%s</b>\n\n", escape(title))
	b.WriteString(formatRating(d.VoteAverage))
	fmt.Fprintf(&b, "\n📅 <b>Release:</b> %s", escape(release))
	if genres := d.GenreNames(); len(genres) > 0 {
		fmt.Fprintf(&b, "\n🎭 <b>Genres:</b> %s", escape(strings.Join(genres, ", ")))
	}
	if d.Runtime > 0 {
		fmt.Fprintf(&b, "\n⏳ <b>Runtime:</b> %s", formatRuntime(d.Runtime))
	}
	if cast := d.TopCast(castLimit); len(cast) > 0 {
		fmt.Fprintf(&b, "\n👥 <b>Cast:</b> %s", escape(strings.Join(cast, ", ")))
	}
	if overview := strings.TrimSpace(d.Overview); overview != "" {
		fmt.Fprintf(&b, "\n\n📖 <b>Overview:</b>\n<i>%s</i>", escape(overview))
	}
	return b.String()
}
