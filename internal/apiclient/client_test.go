package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueryValues(t *testing.T) {
	from, to := 1980, 1989
	rating := 7.5
	q := Query{
		MoodID:  "cry",
		Page:    3,
		Filters: Filters{YearFrom: &from, YearTo: &to, RatingMin: &rating},
	}
	v := q.Values()
	assert.Equal(t, "cry", v.Get("moodId"))
	assert.Equal(t, "3", v.Get("page"))
	assert.Equal(t, "1980", v.Get("yearFrom"))
	assert.Equal(t, "1989", v.Get("yearTo"))
	assert.Equal(t, "7.5", v.Get("ratingMin"))
	assert.False(t, v.Has("query"))

	empty := Query{}
	v = empty.Values()
	assert.Equal(t, url.Values{"page": {"1"}}, v)
}

func TestMovies(t *testing.T) {
	var got url.Values
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/movies", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":2,"total_pages":9,"total_results":170,"results":[{"id":27205,"title":"Inception"}]}`))
	}))
	defer srv.Close()

	c := New(srv.URL+"/", nil)
	page, err := c.Movies(context.Background(), Query{Text: "Inception", Page: 2})
	require.NoError(t, err)

	assert.Equal(t, "Inception", got.Get("query"))
	assert.Equal(t, "2", got.Get("page"))
	assert.Equal(t, 9, page.TotalPages)
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Inception", page.Results[0].Title)
}

func TestErrorCarriesServerMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Invalid mood ID"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Movies(context.Background(), Query{MoodID: "bogus"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "Invalid mood ID", err.Error())
}

func TestErrorWithoutBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).Moods(context.Background())
	require.Error(t, err)
	assert.Equal(t, "moodflix api: status 502", err.Error())
}

func TestMoodsAndDetails(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/moods", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":"laugh","label":"I need to laugh","genreIds":[35]}]`))
	})
	mux.HandleFunc("/api/movies/550", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":550,"title":"Fight Club","runtime":139}`))
	})
	mux.HandleFunc("/api/trending", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "day", r.URL.Query().Get("window"))
		_, _ = w.Write([]byte(`{"page":1,"total_pages":1,"results":[]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := New(srv.URL, nil)
	ms, err := c.Moods(context.Background())
	require.NoError(t, err)
	require.Len(t, ms, 1)
	assert.Equal(t, []int{35}, ms[0].GenreIDs)

	d, err := c.MovieDetails(context.Background(), 550)
	require.NoError(t, err)
	assert.Equal(t, "Fight Club", d.Title)
	require.NotNil(t, d.Runtime)
	assert.Equal(t, 139, *d.Runtime)

	_, err = c.Trending(context.Background(), "day")
	require.NoError(t, err)
}
