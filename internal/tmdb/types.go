package tmdb

// Category is a movie listing endpoint under /movie/.
type Category string

const (
	NowPlaying Category = "now_playing"
	Popular    Category = "popular"
	Upcoming   Category = "upcoming"
	TopRated   Category = "top_rated"
)

// MovieSummary is one entry of a listing or discovery page.
// Absent fields decode to their zero value: empty Title and ReleaseDate,
// empty PosterPath (no poster) and VoteAverage 0.
type MovieSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// Year is the first four characters of ReleaseDate, or "????" when unknown.
func (m MovieSummary) Year() string {
	if len(m.ReleaseDate) < 4 {
		return "????"
	}
	return m.ReleaseDate[:4]
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
	Order     int    `json:"order"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
}

type Video struct {
	Key      string `json:"key"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type Videos struct {
	Results []Video `json:"results"`
}

// MovieDetails is the /movie/{id} payload with credits and videos appended.
// Runtime 0, no genres and an empty overview mean the value is unknown.
type MovieDetails struct {
	MovieSummary
	Overview string  `json:"overview"`
	Runtime  int     `json:"runtime"`
	Genres   []Genre `json:"genres"`
	Credits  Credits `json:"credits"`
	Videos   Videos  `json:"videos"`
}

func (d *MovieDetails) GenreNames() []string {
	out := make([]string, 0, len(d.Genres))
	for _, g := range d.Genres {
		if g.Name != "" {
			out = append(out, g.Name)
		}
	}
	return out
}

// TopCast returns up to n cast names in billing order.
func (d *MovieDetails) TopCast(n int) []string {
	out := make([]string, 0, n)
	for _, c := range d.Credits.Cast {
		if len(out) == n {
			break
		}
		if c.Name != "" {
			out = append(out, c.Name)
		}
	}
	return out
}

// TrailerURL returns a YouTube link for the first trailer, preferring official ones.
func (d *MovieDetails) TrailerURL() (string, bool) {
	var found *Video
	for i := range d.Videos.Results {
		v := &d.Videos.Results[i]
		if v.Site != "YouTube" || v.Type != "Trailer" || v.Key == "" {
			continue
		}
		if found == nil || (v.Official && !found.Official) {
			found = v
		}
	}
	if found == nil {
		return "", false
	}
	return "https://www.youtube.com/watch?v=" + found.Key, true
}

type listResponse struct {
	Page    int            `json:"page"`
	Results []MovieSummary `json:"results"`
}
