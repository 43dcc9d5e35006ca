package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/handsomefox/moodflix/internal/apiclient"
	"github.com/handsomefox/moodflix/internal/favorites"
	"github.com/handsomefox/moodflix/internal/moods"
	"github.com/handsomefox/moodflix/internal/results"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

type catalog interface {
	Moods(ctx context.Context) ([]moods.Mood, error)
	MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
	Trending(ctx context.Context, window string) (tmdb.MoviePage, error)
}

type session struct {
	api     catalog
	results *results.Controller
	favs    *favorites.Store
	in      *bufio.Scanner
	out     io.Writer
	moods   []moods.Mood
}

func newSession(api catalog, rc *results.Controller, favs *favorites.Store, in io.Reader, out io.Writer) *session {
	return &session{
		api:     api,
		results: rc,
		favs:    favs,
		in:      bufio.NewScanner(in),
		out:     out,
	}
}

const helpText = `commands:
  moods                          list moods
  mood <id>                      movies for a mood
  search <text>                  search by title
  trending [day|week]            trending movies
  more                           load the next page
  shuffle                        jump to a random page
  filter [from=Y] [to=Y] [rating=R]
                                 refine the listing; no arguments clears
  retry                          repeat the last failed request
  pick [n]                       choose n random movies from the listing
  info <n>                       details for listing entry n
  fav <n>                        toggle listing entry n as favorite
  favs                           list favorites
  unfav <movie id>               remove a favorite
  clear                          remove all favorites
  quit`

func (s *session) run(ctx context.Context) error {
	fmt.Fprintln(s.out, "MoodFlix. Type 'help' for commands.")
	for {
		fmt.Fprint(s.out, "> ")
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		quit, err := s.exec(ctx, s.in.Text())
		if err != nil {
			fmt.Fprintln(s.out, "error:", err)
		}
		if quit || ctx.Err() != nil {
			return nil
		}
	}
}

func (s *session) exec(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	switch cmd {
	case "quit", "exit", "q":
		return true, nil
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		return false, nil
	case "moods":
		return false, s.listMoods(ctx)
	case "mood":
		if len(args) != 1 {
			return false, errors.New("usage: mood <id>")
		}
		return false, s.selectMood(ctx, args[0])
	case "search":
		text := strings.TrimSpace(strings.Join(args, " "))
		if text == "" {
			return false, errors.New("usage: search <text>")
		}
		return false, s.listing(s.results.Search(ctx, text))
	case "trending":
		window := "week"
		if len(args) > 0 {
			window = args[0]
		}
		return false, s.trending(ctx, window)
	case "more":
		return false, s.listing(s.results.LoadMore(ctx))
	case "shuffle":
		return false, s.listing(s.results.Shuffle(ctx))
	case "filter":
		f, err := parseFilters(args)
		if err != nil {
			return false, err
		}
		return false, s.listing(s.results.ApplyFilters(ctx, f))
	case "retry":
		return false, s.listing(s.results.Retry(ctx))
	case "pick":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return false, errors.New("usage: pick [n]")
			}
			n = v
		}
		s.pick(n)
		return false, nil
	case "info":
		m, err := s.entry(args)
		if err != nil {
			return false, err
		}
		return false, s.info(ctx, m.ID)
	case "fav":
		m, err := s.entry(args)
		if err != nil {
			return false, err
		}
		if s.favs.Toggle(&m) {
			fmt.Fprintf(s.out, "added %q to favorites\n", m.Title)
		} else {
			fmt.Fprintf(s.out, "removed %q from favorites\n", m.Title)
		}
		return false, nil
	case "favs":
		s.listFavorites()
		return false, nil
	case "unfav":
		if len(args) != 1 {
			return false, errors.New("usage: unfav <movie id>")
		}
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return false, errors.New("usage: unfav <movie id>")
		}
		if !s.favs.IsFavorite(id) {
			return false, fmt.Errorf("movie %d is not a favorite", id)
		}
		s.favs.Remove(id)
		fmt.Fprintln(s.out, "removed")
		return false, nil
	case "clear":
		s.clearFavorites()
		return false, nil
	default:
		return false, fmt.Errorf("unknown command %q, try 'help'", cmd)
	}
}

func (s *session) loadMoods(ctx context.Context) error {
	if s.moods != nil {
		return nil
	}
	ms, err := s.api.Moods(ctx)
	if err != nil {
		return err
	}
	s.moods = ms
	return nil
}

func (s *session) listMoods(ctx context.Context) error {
	if err := s.loadMoods(ctx); err != nil {
		return err
	}
	for _, m := range s.moods {
		fmt.Fprintf(s.out, "  %-8s %s %s - %s\n", m.ID, m.Emoji, m.Label, m.Description)
	}
	return nil
}

func (s *session) selectMood(ctx context.Context, id string) error {
	if err := s.loadMoods(ctx); err != nil {
		return err
	}
	for _, m := range s.moods {
		if m.ID == id {
			return s.listing(s.results.SelectMood(ctx, m))
		}
	}
	return fmt.Errorf("unknown mood %q, see 'moods'", id)
}

func (s *session) trending(ctx context.Context, window string) error {
	page, err := s.api.Trending(ctx, window)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "trending this %s:\n", window)
	for i := range page.Results {
		s.printMovie(i+1, &page.Results[i])
	}
	return nil
}

// listing prints the controller state after an action. Sentinel results
// become friendly notes instead of errors.
func (s *session) listing(err error) error {
	switch {
	case errors.Is(err, results.ErrNoMorePages):
		fmt.Fprintln(s.out, "no more pages")
		return nil
	case errors.Is(err, results.ErrNoContext):
		return errors.New("pick a mood or search first")
	case errors.Is(err, results.ErrBusy):
		return errors.New("still loading")
	case err != nil:
		return fmt.Errorf("%w (type 'retry' to try again)", err)
	}

	st := s.results.Snapshot()
	switch {
	case st.Mood != nil:
		fmt.Fprintf(s.out, "%s %s\n", st.Mood.Emoji, st.Mood.Label)
	case st.Query != "":
		fmt.Fprintf(s.out, "results for %q\n", st.Query)
	default:
		fmt.Fprintln(s.out, "popular movies")
	}
	if len(st.Movies) == 0 {
		fmt.Fprintln(s.out, "  no movies found")
		return nil
	}
	for i := range st.Movies {
		s.printMovie(i+1, &st.Movies[i])
	}
	fmt.Fprintf(s.out, "page %d of %d\n", st.Page, st.TotalPages)
	return nil
}

func (s *session) printMovie(n int, m *tmdb.Movie) {
	mark := " "
	if s.favs.IsFavorite(m.ID) {
		mark = "♥"
	}
	year := m.Year()
	if year == "" {
		year = "----"
	}
	fmt.Fprintf(s.out, "%s %3d. %s (%s) ★ %.1f\n", mark, n, m.Title, year, m.VoteAverage)
}

func (s *session) pick(n int) {
	picked := s.results.Pick(n)
	if len(picked) == 0 {
		fmt.Fprintln(s.out, "nothing to pick from")
		return
	}
	for i := range picked {
		s.printMovie(i+1, &picked[i])
	}
}

// entry resolves a 1-based listing index.
func (s *session) entry(args []string) (tmdb.Movie, error) {
	if len(args) != 1 {
		return tmdb.Movie{}, errors.New("expected a listing number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return tmdb.Movie{}, errors.New("expected a listing number")
	}
	movies := s.results.Snapshot().Movies
	if n < 1 || n > len(movies) {
		return tmdb.Movie{}, fmt.Errorf("no entry %d in the listing", n)
	}
	return movies[n-1], nil
}

func (s *session) info(ctx context.Context, id int64) error {
	d, err := s.api.MovieDetails(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(s.out, "%s (%s)\n", d.Title, d.Year())
	if d.Tagline != nil && *d.Tagline != "" {
		fmt.Fprintf(s.out, "  %s\n", *d.Tagline)
	}
	if d.Runtime != nil && *d.Runtime > 0 {
		fmt.Fprintf(s.out, "  runtime: %d min\n", *d.Runtime)
	}
	if dir, ok := d.Director(); ok {
		fmt.Fprintf(s.out, "  director: %s\n", dir.Name)
	}
	fmt.Fprintf(s.out, "  rating: %.1f (%d votes)\n", d.VoteAverage, d.VoteCount)
	if d.Overview != "" {
		fmt.Fprintf(s.out, "  %s\n", d.Overview)
	}
	fmt.Fprintf(s.out, "  poster: %s\n", tmdb.ImageURL(d.PosterPath, "w500"))
	if backdrop := tmdb.BackdropURL(d.BackdropPath, ""); backdrop != "" {
		fmt.Fprintf(s.out, "  backdrop: %s\n", backdrop)
	}
	if v, ok := d.Trailer(); ok {
		fmt.Fprintf(s.out, "  trailer: https://www.youtube.com/watch?v=%s\n", v.Key)
	}
	return nil
}

func (s *session) listFavorites() {
	items := s.favs.List()
	if len(items) == 0 {
		fmt.Fprintln(s.out, "no favorites yet")
		return
	}
	for _, it := range items {
		fmt.Fprintf(s.out, "  %-8d %s  %s\n", it.MovieID, it.Title, tmdb.ImageURL(it.PosterPath, "w200"))
	}
}

func (s *session) clearFavorites() {
	n := s.favs.Len()
	if n == 0 {
		fmt.Fprintln(s.out, "no favorites yet")
		return
	}
	fmt.Fprintf(s.out, "remove all %d favorites? [y/N] ", n)
	if !s.in.Scan() {
		return
	}
	switch strings.ToLower(strings.TrimSpace(s.in.Text())) {
	case "y", "yes":
		s.favs.Clear()
		fmt.Fprintln(s.out, "favorites cleared")
	default:
		fmt.Fprintln(s.out, "kept")
	}
}

// parseFilters reads key=value pairs. Unknown keys and malformed values
// are rejected so a typo does not silently widen the listing.
func parseFilters(args []string) (apiclient.Filters, error) {
	var f apiclient.Filters
	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return apiclient.Filters{}, fmt.Errorf("bad filter %q, expected key=value", arg)
		}
		switch strings.ToLower(key) {
		case "from":
			y, err := strconv.Atoi(val)
			if err != nil {
				return apiclient.Filters{}, fmt.Errorf("bad year %q", val)
			}
			f.YearFrom = &y
		case "to":
			y, err := strconv.Atoi(val)
			if err != nil {
				return apiclient.Filters{}, fmt.Errorf("bad year %q", val)
			}
			f.YearTo = &y
		case "rating":
			r, err := strconv.ParseFloat(val, 64)
			if err != nil {
				return apiclient.Filters{}, fmt.Errorf("bad rating %q", val)
			}
			f.RatingMin = &r
		default:
			return apiclient.Filters{}, fmt.Errorf("unknown filter %q", key)
		}
	}
	return f, nil
}
