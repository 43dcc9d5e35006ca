// Package results drives a paginated movie listing: mood selection,
// load-more, shuffle and filter changes.
//
// The controller does not cancel or fence in-flight requests. A slow
// response may land after a newer action has reset the listing and will
// still be applied.
package results

import (
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/handsomefox/moodflix/internal/apiclient"
	"github.com/handsomefox/moodflix/internal/moods"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

// MaxShufflePage caps the page a shuffle may land on.
const MaxShufflePage = 20

var (
	ErrBusy        = errors.New("a request is already in flight")
	ErrNoMorePages = errors.New("no more pages")
	ErrNoContext   = errors.New("nothing selected")
)

// Fetcher loads one page of the listing.
type Fetcher interface {
	Movies(ctx context.Context, q apiclient.Query) (tmdb.MoviePage, error)
}

// Rand picks shuffle pages. *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

type Status int

const (
	Idle Status = iota
	Loading
	Ready
	Failed
)

func (s Status) String() string {
	switch s {
	case Loading:
		return "loading"
	case Ready:
		return "ready"
	case Failed:
		return "error"
	default:
		return "idle"
	}
}

// State is a point-in-time copy of the controller.
type State struct {
	Status     Status
	Movies     []tmdb.Movie
	Err        string
	Page       int
	TotalPages int
	Filters    apiclient.Filters
	Mood       *moods.Mood
	Query      string
}

type mode int

const (
	// fresh starts a new listing; failure clears it.
	fresh mode = iota
	next
	shuffle
)

type attempt struct {
	query apiclient.Query
	mode  mode
}

type Controller struct {
	fetcher Fetcher
	rnd     Rand

	mu         sync.Mutex
	status     Status
	movies     []tmdb.Movie
	errMsg     string
	page       int
	totalPages int
	filters    apiclient.Filters
	mood       *moods.Mood
	text       string
	active     bool
	last       *attempt
}

type Option func(*Controller)

func WithRand(r Rand) Option {
	return func(c *Controller) {
		if r != nil {
			c.rnd = r
		}
	}
}

func New(f Fetcher, opts ...Option) *Controller {
	c := &Controller{
		fetcher: f,
		rnd:     globalRand{},
		page:    1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SelectMood resets filters and replaces the listing with page 1 of mood.
func (c *Controller) SelectMood(ctx context.Context, mood moods.Mood) error {
	c.mu.Lock()
	c.mood = &mood
	c.text = ""
	c.filters = apiclient.Filters{}
	c.active = true
	c.page = 1
	a := attempt{query: c.queryLocked(1), mode: fresh}
	c.mu.Unlock()

	return c.run(ctx, a)
}

// Search replaces the listing with page 1 of a free-text search.
func (c *Controller) Search(ctx context.Context, text string) error {
	c.mu.Lock()
	c.mood = nil
	c.text = text
	c.filters = apiclient.Filters{}
	c.active = true
	c.page = 1
	a := attempt{query: c.queryLocked(1), mode: fresh}
	c.mu.Unlock()

	return c.run(ctx, a)
}

// ApplyFilters replaces the active filters and reloads from page 1. With
// nothing selected it applies to the default popular listing.
func (c *Controller) ApplyFilters(ctx context.Context, f apiclient.Filters) error {
	c.mu.Lock()
	c.filters = f
	c.active = true
	c.page = 1
	a := attempt{query: c.queryLocked(1), mode: fresh}
	c.mu.Unlock()

	return c.run(ctx, a)
}

// LoadMore appends the next page. It returns ErrBusy or ErrNoMorePages
// without issuing a request when it does not apply.
func (c *Controller) LoadMore(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case !c.active:
		c.mu.Unlock()
		return ErrNoContext
	case c.page >= c.totalPages:
		c.mu.Unlock()
		return ErrNoMorePages
	case c.status == Loading:
		c.mu.Unlock()
		return ErrBusy
	}
	a := attempt{query: c.queryLocked(c.page + 1), mode: next}
	c.mu.Unlock()

	return c.run(ctx, a)
}

// Shuffle replaces the listing with a random page in
// [1, min(totalPages, MaxShufflePage)].
func (c *Controller) Shuffle(ctx context.Context) error {
	c.mu.Lock()
	switch {
	case !c.active:
		c.mu.Unlock()
		return ErrNoContext
	case c.status == Loading:
		c.mu.Unlock()
		return ErrBusy
	}
	limit := max(min(c.totalPages, MaxShufflePage), 1)
	page := c.rnd.IntN(limit) + 1
	a := attempt{query: c.queryLocked(page), mode: shuffle}
	c.mu.Unlock()

	return c.run(ctx, a)
}

// Retry re-issues the last attempted request.
func (c *Controller) Retry(ctx context.Context) error {
	c.mu.Lock()
	if c.last == nil {
		c.mu.Unlock()
		return ErrNoContext
	}
	a := *c.last
	c.mu.Unlock()

	return c.run(ctx, a)
}

// Reset returns the controller to idle with nothing selected.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = Idle
	c.movies = nil
	c.errMsg = ""
	c.page = 1
	c.totalPages = 0
	c.filters = apiclient.Filters{}
	c.mood = nil
	c.text = ""
	c.active = false
	c.last = nil
}

func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := State{
		Status:     c.status,
		Movies:     slices.Clone(c.movies),
		Err:        c.errMsg,
		Page:       c.page,
		TotalPages: c.totalPages,
		Filters:    c.filters,
		Query:      c.text,
	}
	if c.mood != nil {
		m := *c.mood
		s.Mood = &m
	}
	return s
}

// Pick returns up to n random movies from the current listing.
func (c *Controller) Pick(n int) []tmdb.Movie {
	c.mu.Lock()
	defer c.mu.Unlock()
	return tmdb.RandomMovies(c.movies, n, c.rnd.IntN)
}

func (c *Controller) queryLocked(page int) apiclient.Query {
	q := apiclient.Query{
		Text:    c.text,
		Page:    page,
		Filters: c.filters,
	}
	if c.mood != nil {
		q.MoodID = c.mood.ID
	}
	return q
}

func (c *Controller) run(ctx context.Context, a attempt) error {
	c.mu.Lock()
	c.status = Loading
	c.errMsg = ""
	c.last = &a
	c.mu.Unlock()

	page, err := c.fetcher.Movies(ctx, a.query)

	c.mu.Lock()
	defer c.mu.Unlock()
	if err != nil {
		c.status = Failed
		c.errMsg = err.Error()
		if a.mode == fresh {
			c.movies = nil
			c.totalPages = 0
			c.page = 1
		}
		return err
	}

	c.status = Ready
	switch a.mode {
	case fresh:
		c.movies = page.Results
		c.totalPages = page.TotalPages
		c.page = 1
	case next:
		c.movies = append(c.movies, page.Results...)
		c.page = a.query.Page
	case shuffle:
		c.movies = page.Results
		c.page = a.query.Page
	}
	return nil
}
