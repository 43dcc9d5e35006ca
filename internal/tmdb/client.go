// Package tmdb wraps the TMDB API for discovering, searching and fetching movies.
package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/handsomefox/moodflix/internal/metrics"
)

const (
	DefaultBaseURL      = "https://api.themoviedb.org/3"
	DefaultSort         = "popularity.desc"
	DefaultVoteCountMin = 100

	language = "en-US"
)

var ErrInvalidWindow = errors.New("invalid trending window")

type Client struct {
	apiKey    string
	readToken string
	baseURL   string
	http      *http.Client
}

type Option func(*Client)

// WithBaseURL points the client at another API root, e.g. a test server.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base = strings.TrimRight(strings.TrimSpace(base), "/"); base != "" {
			c.baseURL = base
		}
	}
}

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// StatusError is returned when TMDB answers with a non-2xx status.
type StatusError struct {
	Op         string
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("tmdb %s failed: %s", e.Op, e.Status)
}

// IsNotFound reports whether err is an upstream 404.
func IsNotFound(err error) bool {
	var statusErr *StatusError
	return errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusNotFound
}

func New(apiKey, readToken string, opts ...Option) *Client {
	if strings.TrimSpace(readToken) == "" && looksLikeJWT(apiKey) {
		readToken = apiKey
		apiKey = ""
	}
	c := &Client{
		apiKey:    apiKey,
		readToken: readToken,
		baseURL:   DefaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// DiscoverParams narrows a discover/movie listing. Nil pointers leave the
// corresponding TMDB filter unset; VoteCountMin nil means DefaultVoteCountMin.
type DiscoverParams struct {
	GenreIDs       []int
	Page           int
	SortBy         string
	VoteAverageMin *float64
	VoteCountMin   *int
	YearFrom       *int
	YearTo         *int
}

func (p *DiscoverParams) values() url.Values {
	page := p.Page
	if page < 1 {
		page = 1
	}
	sortBy := strings.TrimSpace(p.SortBy)
	if sortBy == "" {
		sortBy = DefaultSort
	}
	voteCountMin := DefaultVoteCountMin
	if p.VoteCountMin != nil {
		voteCountMin = *p.VoteCountMin
	}

	values := url.Values{}
	values.Set("page", strconv.Itoa(page))
	values.Set("sort_by", sortBy)
	values.Set("include_adult", "false")
	values.Set("include_video", "false")
	values.Set("vote_count.gte", strconv.Itoa(voteCountMin))
	values.Set("language", language)

	if len(p.GenreIDs) > 0 {
		ids := make([]string, 0, len(p.GenreIDs))
		for _, id := range p.GenreIDs {
			ids = append(ids, strconv.Itoa(id))
		}
		values.Set("with_genres", strings.Join(ids, "|"))
	}
	if p.VoteAverageMin != nil && *p.VoteAverageMin > 0 {
		values.Set("vote_average.gte", strconv.FormatFloat(*p.VoteAverageMin, 'f', -1, 64))
	}
	if p.YearFrom != nil {
		values.Set("primary_release_date.gte", fmt.Sprintf("%04d-01-01", *p.YearFrom))
	}
	if p.YearTo != nil {
		values.Set("primary_release_date.lte", fmt.Sprintf("%04d-12-31", *p.YearTo))
	}
	return values
}

func (c *Client) DiscoverMovies(ctx context.Context, params DiscoverParams) (MoviePage, error) {
	var page MoviePage
	if err := c.get(ctx, "discover", "/discover/movie", params.values(), &page); err != nil {
		return MoviePage{}, err
	}
	return page, nil
}

func (c *Client) SearchMovies(ctx context.Context, query string, page int) (MoviePage, error) {
	if page < 1 {
		page = 1
	}
	values := url.Values{}
	values.Set("query", query)
	values.Set("page", strconv.Itoa(page))
	values.Set("include_adult", "false")
	values.Set("language", language)

	var out MoviePage
	if err := c.get(ctx, "search", "/search/movie", values, &out); err != nil {
		return MoviePage{}, err
	}
	return out, nil
}

// MovieDetails fetches one movie with credits, videos and similar movies
// appended in the same round trip.
func (c *Client) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	values := url.Values{}
	values.Set("append_to_response", "credits,videos,similar")
	values.Set("language", language)

	var out MovieDetails
	if err := c.get(ctx, "details", "/movie/"+strconv.FormatInt(id, 10), values, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TrendingMovies lists trending movies for window "day" or "week".
func (c *Client) TrendingMovies(ctx context.Context, window string) (MoviePage, error) {
	if window != "day" && window != "week" {
		return MoviePage{}, ErrInvalidWindow
	}
	values := url.Values{}
	values.Set("language", language)

	var out MoviePage
	if err := c.get(ctx, "trending", "/trending/movie/"+window, values, &out); err != nil {
		return MoviePage{}, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, op, path string, values url.Values, dst any) (err error) {
	if c.apiKey != "" {
		values.Set("api_key", c.apiKey)
	}
	endpoint := c.baseURL + path + "?" + values.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	c.applyAuth(req)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		metrics.ObserveUpstream(op, 0, time.Since(start))
		return fmt.Errorf("tmdb %s: %w", op, err)
	}
	metrics.ObserveUpstream(op, resp.StatusCode, time.Since(start))

	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Op: op, StatusCode: resp.StatusCode, Status: resp.Status}
	}
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("tmdb %s: decode: %w", op, err)
	}
	return nil
}

func (c *Client) applyAuth(req *http.Request) {
	if strings.TrimSpace(c.readToken) == "" {
		return
	}
	req.Header.Set("Authorization", "Bearer "+strings.TrimSpace(c.readToken))
}

func looksLikeJWT(token string) bool {
	parts := strings.Split(strings.TrimSpace(token), ".")
	return len(parts) == 3 && len(token) > 80
}

func yearFromDate(date string) string {
	if len(date) < 4 {
		return ""
	}
	return date[:4]
}
