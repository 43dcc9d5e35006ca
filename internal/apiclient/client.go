// Package apiclient calls the moodflix HTTP API from client code.
package apiclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/handsomefox/moodflix/internal/moods"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

const DefaultBaseURL = "http://localhost:8080"

// Filters are the optional year range and rating floor a user applies on
// top of a mood.
type Filters struct {
	YearFrom  *int
	YearTo    *int
	RatingMin *float64
}

func (f Filters) Empty() bool {
	return f.YearFrom == nil && f.YearTo == nil && f.RatingMin == nil
}

// Query mirrors the /api/movies parameters. Text wins over MoodID on the
// server; with neither set the server lists popular movies.
type Query struct {
	MoodID  string
	Text    string
	Page    int
	Filters Filters
}

func (q *Query) Values() url.Values {
	values := url.Values{}
	if q.MoodID != "" {
		values.Set("moodId", q.MoodID)
	}
	if q.Text != "" {
		values.Set("query", q.Text)
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	values.Set("page", strconv.Itoa(page))
	if q.Filters.YearFrom != nil {
		values.Set("yearFrom", strconv.Itoa(*q.Filters.YearFrom))
	}
	if q.Filters.YearTo != nil {
		values.Set("yearTo", strconv.Itoa(*q.Filters.YearTo))
	}
	if q.Filters.RatingMin != nil {
		values.Set("ratingMin", strconv.FormatFloat(*q.Filters.RatingMin, 'f', -1, 64))
	}
	return values
}

// APIError is a non-2xx answer from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("moodflix api: status %d", e.StatusCode)
	}
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, hc *http.Client) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{baseURL: baseURL, http: hc}
}

func (c *Client) Movies(ctx context.Context, q Query) (tmdb.MoviePage, error) {
	var page tmdb.MoviePage
	if err := c.get(ctx, "/api/movies", q.Values(), &page); err != nil {
		return tmdb.MoviePage{}, err
	}
	return page, nil
}

func (c *Client) MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error) {
	var out tmdb.MovieDetails
	if err := c.get(ctx, "/api/movies/"+strconv.FormatInt(id, 10), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Moods(ctx context.Context) ([]moods.Mood, error) {
	var out []moods.Mood
	if err := c.get(ctx, "/api/moods", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Trending(ctx context.Context, window string) (tmdb.MoviePage, error) {
	values := url.Values{}
	values.Set("window", window)
	var page tmdb.MoviePage
	if err := c.get(ctx, "/api/trending", values, &page); err != nil {
		return tmdb.MoviePage{}, err
	}
	return page, nil
}

func (c *Client) get(ctx context.Context, path string, values url.Values, dst any) (err error) {
	endpoint := c.baseURL + path
	if len(values) > 0 {
		endpoint += "?" + values.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, http.NoBody)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			err = errors.Join(err, cerr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		var payload struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
		}
		return apiErr
	}
	return json.NewDecoder(resp.Body).Decode(dst)
}
