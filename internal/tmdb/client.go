package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"time"
)

const (
	DefaultBaseURL    = "https://api.themoviedb.org/3"
	ImageBaseURL      = "https://image.tmdb.org/t/p/"
	DefaultPosterSize = "w500"

	requestTimeout = 10 * time.Second
)

// ErrMalformed is returned when a response body cannot be decoded or fails validation.
var ErrMalformed = errors.New("tmdb: malformed response")

// APIError is returned for non-2xx responses.
type APIError struct {
	StatusCode int
	Path       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("tmdb: HTTP %d for %s", e.StatusCode, e.Path)
}

type Client struct {
	base     *url.URL
	apiKey   string
	language string
	region   string
	http     *http.Client
}

func NewClient(baseURL, apiKey, language, region string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, err
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("tmdb: invalid base url %q", baseURL)
	}
	return &Client{
		base:     u,
		apiKey:   apiKey,
		language: language,
		region:   region,
		http:     &http.Client{Timeout: requestTimeout},
	}, nil
}

// FetchCategory returns one page of a listing filtered by the client region.
func (c *Client) FetchCategory(ctx context.Context, category Category, page int) ([]MovieSummary, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	if c.region != "" {
		q.Set("region", c.region)
	}
	return c.fetchPage(ctx, "/movie/"+string(category), q)
}

// FetchClassics discovers well rated, widely voted movies released up to 2000.
func (c *Client) FetchClassics(ctx context.Context, page int) ([]MovieSummary, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("sort_by", "popularity.desc")
	q.Set("vote_average.gte", "7.5")
	q.Set("vote_count.gte", "500")
	q.Set("primary_release_date.lte", "2000-12-31")
	return c.fetchPage(ctx, "/discover/movie", q)
}

// FetchDetails loads a single item with credits, watch providers and videos appended.
func (c *Client) FetchDetails(ctx context.Context, mediaType string, id int64) (*MovieDetails, error) {
	q := url.Values{}
	q.Set("append_to_response", "credits,watch/providers,videos")
	var out MovieDetails
	if err := c.get(ctx, fmt.Sprintf("/%s/%d", mediaType, id), q, &out); err != nil {
		return nil, err
	}
	if out.ID <= 0 {
		return nil, fmt.Errorf("%w: missing id for %s/%d", ErrMalformed, mediaType, id)
	}
	return &out, nil
}

func (c *Client) fetchPage(ctx context.Context, p string, q url.Values) ([]MovieSummary, error) {
	var out listResponse
	if err := c.get(ctx, p, q, &out); err != nil {
		return nil, err
	}
	results := out.Results[:0]
	for _, m := range out.Results {
		if m.ID > 0 {
			results = append(results, m)
		}
	}
	return results, nil
}

func (c *Client) get(ctx context.Context, p string, q url.Values, dest any) error {
	u := *c.base
	u.Path = path.Join(c.base.Path, p)
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		// the url carries the api key, keep it out of logs
		var uerr *url.Error
		if errors.As(err, &uerr) {
			return fmt.Errorf("tmdb request %s: %w", p, uerr.Err)
		}
		return fmt.Errorf("tmdb request %s: %w", p, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &APIError{StatusCode: resp.StatusCode, Path: p}
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return fmt.Errorf("%w: decode %s: %v", ErrMalformed, p, err)
	}
	return nil
}

// PosterURL composes the image URL for a poster path; ok is false when path is empty.
func PosterURL(posterPath, size string) (string, bool) {
	if posterPath == "" {
		return "", false
	}
	if size == "" {
		size = DefaultPosterSize
	}
	return ImageBaseURL + size + posterPath, true
}
