// Package handlers wires the HTTP API: mood-driven discovery, search,
// movie details and the mood catalog.
package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/handsomefox/moodflix/internal/moods"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

// MovieSource is the upstream catalog. *tmdb.Client satisfies it.
type MovieSource interface {
	DiscoverMovies(ctx context.Context, params tmdb.DiscoverParams) (tmdb.MoviePage, error)
	SearchMovies(ctx context.Context, query string, page int) (tmdb.MoviePage, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
	TrendingMovies(ctx context.Context, window string) (tmdb.MoviePage, error)
}

type Handler struct {
	tmdb MovieSource
}

type Config struct {
	TMDB MovieSource
}

func New(cfg *Config) (*Handler, error) {
	if cfg == nil || cfg.TMDB == nil {
		return nil, errors.New("tmdb client is required")
	}
	return &Handler{tmdb: cfg.TMDB}, nil
}

// RegisterRoutes mounts the API under the router it is given. The caller
// decides the prefix.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/movies", func(r chi.Router) {
		r.Method(http.MethodGet, "/", Adapt(h.getMovies))
		r.Method(http.MethodGet, "/{id}", Adapt(h.getMovie))
	})
	r.Route("/moods", func(r chi.Router) {
		r.Method(http.MethodGet, "/", Adapt(h.getMoods))
		r.Method(http.MethodGet, "/{id}", Adapt(h.getMood))
	})
	r.Method(http.MethodGet, "/trending", Adapt(h.getTrending))

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, &errorResponse{Message: "Not found"})
	})
}

// Health reports liveness. It never calls upstream.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

const fetchMoviesFailed = "Failed to fetch movies"

// getMovies resolves, in order: free-text search, mood discovery, popular
// discovery. Search ignores the mood and the filters.
func (h *Handler) getMovies(w http.ResponseWriter, r *http.Request) error {
	req, err := parseMoviesRequest(r.URL.Query())
	if err != nil {
		return err
	}

	var page tmdb.MoviePage
	switch {
	case req.Query != "":
		page, err = h.tmdb.SearchMovies(r.Context(), req.Query, req.Page)
	case req.MoodID != "":
		mood, ok := moods.ByID(req.MoodID)
		if !ok {
			return badRequest("Invalid mood ID")
		}
		page, err = h.tmdb.DiscoverMovies(r.Context(), req.discover(&mood))
	default:
		page, err = h.tmdb.DiscoverMovies(r.Context(), req.discover(nil))
	}
	if err != nil {
		return upstream(fetchMoviesFailed, err)
	}
	if page.Results == nil {
		page.Results = []tmdb.Movie{}
	}

	writeJSON(w, http.StatusOK, page)
	return nil
}

func (h *Handler) getMovie(w http.ResponseWriter, r *http.Request) error {
	id, err := idParam(r, "id")
	if err != nil {
		return notFound("Movie not found")
	}

	details, err := h.tmdb.MovieDetails(r.Context(), id)
	if err != nil {
		if tmdb.IsNotFound(err) {
			return notFound("Movie not found")
		}
		return upstream("Failed to fetch movie", err)
	}

	writeJSON(w, http.StatusOK, details)
	return nil
}

func (h *Handler) getMoods(w http.ResponseWriter, r *http.Request) error {
	raw := strings.TrimSpace(r.URL.Query().Get("genre"))
	if raw == "" {
		writeJSON(w, http.StatusOK, moods.All())
		return nil
	}

	genreID, err := strconv.Atoi(raw)
	if err != nil || genreID <= 0 {
		return badRequest("Invalid genre")
	}
	matched := moods.ByGenre(genreID)
	if matched == nil {
		matched = []moods.Mood{}
	}
	writeJSON(w, http.StatusOK, matched)
	return nil
}

func (h *Handler) getMood(w http.ResponseWriter, r *http.Request) error {
	mood, ok := moods.ByID(chi.URLParam(r, "id"))
	if !ok {
		return notFound("Mood not found")
	}
	writeJSON(w, http.StatusOK, mood)
	return nil
}

func (h *Handler) getTrending(w http.ResponseWriter, r *http.Request) error {
	window := strings.TrimSpace(r.URL.Query().Get("window"))
	switch window {
	case "":
		window = "week"
	case "day", "week":
	default:
		return badRequest("Invalid time window")
	}

	page, err := h.tmdb.TrendingMovies(r.Context(), window)
	if err != nil {
		return upstream(fetchMoviesFailed, err)
	}
	if page.Results == nil {
		page.Results = []tmdb.Movie{}
	}

	writeJSON(w, http.StatusOK, page)
	return nil
}
