package bot

import (
	"strings"
	"testing"

	"cinema-bot/internal/tmdb"
)

func TestFormatRating(t *testing.T) {
	cases := []struct {
		rating float64
		want   string
	}{
		{7.0, "⭐⭐⭐⭐ (7.0/10)"},
		{0, "(0.0/10)"},
		{-3, "(0.0/10)"},
		{0.9, "(0.9/10)"},
		{8.4, "⭐⭐⭐⭐ (8.4/10)"},
		{10, "⭐⭐⭐⭐⭐ (10.0/10)"},
		{5.0, "⭐⭐ (5.0/10)"},
		{1.0, "(1.0/10)"},
		{3.0, "⭐⭐ (3.0/10)"},
		{9.0, "⭐⭐⭐⭐ (9.0/10)"},
		{12, "⭐⭐⭐⭐⭐ (12.0/10)"},
	}
	for _, tc := range cases {
		if got := formatRating(tc.rating); got != tc.want {
			t.Fatalf("formatRating(%v)=%q want %q", tc.rating, got, tc.want)
		}
	}
}

func TestFormatRuntime(t *testing.T) {
	if got := formatRuntime(139); got != "2h 19min" {
		t.Fatalf("unexpected runtime %q", got)
	}
	if got := formatRuntime(45); got != "0h 45min" {
		t.Fatalf("unexpected runtime %q", got)
	}
}

func TestListLabel(t *testing.T) {
	if got := listLabel(tmdb.MovieSummary{Title: "Alien", ReleaseDate: "1979-05-25"}); got != "Alien (1979)" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := listLabel(tmdb.MovieSummary{Title: "Untitled"}); got != "Untitled (????)" {
		t.Fatalf("unexpected label %q", got)
	}
	if got := listLabel(tmdb.MovieSummary{}); got != "N/A (????)" {
		t.Fatalf("unexpected label %q", got)
	}
}

func TestFormatDetails_Full(t *testing.T) {
	d := &tmdb.MovieDetails{
		MovieSummary: tmdb.MovieSummary{Title: "Fight Club", ReleaseDate: "1999-10-15", VoteAverage: 7.0},
		Overview:     "A ticking-time-bomb insomniac.",
		Runtime:      139,
		Genres:       []tmdb.Genre{{Name: "Drama"}, {Name: "Thriller"}},
		Credits:      tmdb.Credits{Cast: []tmdb.CastMember{{Name: "Edward Norton"}, {Name: "Brad Pitt"}}},
	}

	want := "🎬 <b>Fight Club</b>\n\n" +
		"⭐⭐⭐⭐ (7.0/10)\n" +
		"📅 <b>Release:</b> 1999-10-15\n" +
		"🎭 <b>Genres:</b> Drama, Thriller\n" +
		"⏳ <b>Runtime:</b> 2h 19min\n" +
		"👥 <b>Cast:</b> Edward Norton, Brad Pitt\n\n" +
		"📖 <b>Overview:</b>\n<i>A ticking-time-bomb insomniac.</i>"
	if got := formatDetails(d); got != want {
		t.Fatalf("unexpected details:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatDetails_OmitsOptionalLines(t *testing.T) {
	got := formatDetails(&tmdb.MovieDetails{})

	want := "🎬 <b>N/A</b>\n\n(0.0/10)\n📅 <b>Release:</b> N/A"
	if got != want {
		t.Fatalf("unexpected minimal details %q want %q", got, want)
	}
}

func TestFormatDetails_MarkupCharactersStayLiteral(t *testing.T) {
	got := formatDetails(&tmdb.MovieDetails{
		MovieSummary: tmdb.MovieSummary{Title: "M*A*S*H <Uncut> & More"},
		Overview:     "Hawkeye_Pierce runs the 4077th with [brackets] and `ticks`",
		Credits:      tmdb.Credits{Cast: []tmdb.CastMember{{Name: "Alan <Alda>"}}},
	})
	if !strings.Contains(got, "🎬 <b>M*A*S*H &lt;Uncut&gt; &amp; More</b>") {
		t.Fatalf("expected escaped title, got %q", got)
	}
	if !strings.Contains(got, "<i>Hawkeye_Pierce runs the 4077th with [brackets] and `ticks`</i>") {
		t.Fatalf("expected literal overview, got %q", got)
	}
	if !strings.Contains(got, "<b>Cast:</b> Alan &lt;Alda&gt;") {
		t.Fatalf("expected escaped cast, got %q", got)
	}
	if strings.Contains(got, "\\") {
		t.Fatalf("unexpected backslash escapes in %q", got)
	}
}
