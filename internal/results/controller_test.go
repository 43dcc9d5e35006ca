package results

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/handsomefox/moodflix/internal/apiclient"
	"github.com/handsomefox/moodflix/internal/moods"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

type fakeFetcher struct {
	mu         sync.Mutex
	totalPages int
	err        error
	calls      []apiclient.Query
	block      chan struct{}
	started    chan struct{}
}

func (f *fakeFetcher) Movies(_ context.Context, q apiclient.Query) (tmdb.MoviePage, error) {
	f.mu.Lock()
	f.calls = append(f.calls, q)
	block, started, err := f.block, f.started, f.err
	f.mu.Unlock()

	if started != nil {
		started <- struct{}{}
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return tmdb.MoviePage{}, err
	}
	return tmdb.MoviePage{
		Page:       q.Page,
		TotalPages: f.totalPages,
		Results: []tmdb.Movie{
			{ID: int64(q.Page*100 + 1)},
			{ID: int64(q.Page*100 + 2)},
		},
	}, nil
}

func (f *fakeFetcher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeFetcher) lastCall() apiclient.Query {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[len(f.calls)-1]
}

type fixedRand struct {
	value int
	seen  []int
}

func (r *fixedRand) IntN(n int) int {
	r.seen = append(r.seen, n)
	return min(r.value, n-1)
}

func laugh(t *testing.T) moods.Mood {
	t.Helper()
	m, ok := moods.ByID("laugh")
	require.True(t, ok)
	return m
}

func TestSelectMoodFetchesFirstPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	require.Equal(t, Idle, c.Snapshot().Status)

	require.NoError(t, c.SelectMood(context.Background(), laugh(t)))

	q := f.lastCall()
	assert.Equal(t, "laugh", q.MoodID)
	assert.Equal(t, 1, q.Page)
	assert.True(t, q.Filters.Empty())

	s := c.Snapshot()
	assert.Equal(t, Ready, s.Status)
	assert.Equal(t, 1, s.Page)
	assert.Equal(t, 5, s.TotalPages)
	assert.Len(t, s.Movies, 2)
	require.NotNil(t, s.Mood)
	assert.Equal(t, "laugh", s.Mood.ID)
}

func TestLoadMoreStopsAtLastPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	for range 4 {
		require.NoError(t, c.LoadMore(ctx))
	}
	require.ErrorIs(t, c.LoadMore(ctx), ErrNoMorePages)

	s := c.Snapshot()
	assert.Equal(t, 5, s.Page)
	assert.Len(t, s.Movies, 10)
	assert.Equal(t, 5, f.count())
	assert.Equal(t, int64(501), s.Movies[8].ID)
}

func TestLoadMoreWithoutContext(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	require.ErrorIs(t, c.LoadMore(context.Background()), ErrNoContext)
	require.ErrorIs(t, c.Shuffle(context.Background()), ErrNoContext)
	assert.Zero(t, f.count())
}

func TestShuffleReplacesWithRandomPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 500}
	r := &fixedRand{value: 6}
	c := New(f, WithRand(r))
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))
	require.NoError(t, c.LoadMore(ctx))

	require.NoError(t, c.Shuffle(ctx))

	assert.Equal(t, []int{MaxShufflePage}, r.seen)
	assert.Equal(t, 7, f.lastCall().Page)
	s := c.Snapshot()
	assert.Equal(t, 7, s.Page)
	assert.Len(t, s.Movies, 2, "shuffle replaces instead of appending")
	assert.Equal(t, int64(701), s.Movies[0].ID)
}

func TestShuffleRangeFollowsTotalPages(t *testing.T) {
	f := &fakeFetcher{totalPages: 3}
	r := &fixedRand{value: 100}
	c := New(f, WithRand(r))
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	require.NoError(t, c.Shuffle(ctx))
	assert.Equal(t, []int{3}, r.seen)
	assert.Equal(t, 3, f.lastCall().Page)
}

func TestShuffleWithNoPagesUsesFirstPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 0}
	r := &fixedRand{}
	c := New(f, WithRand(r))
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	require.NoError(t, c.Shuffle(ctx))
	assert.Equal(t, []int{1}, r.seen)
	assert.Equal(t, 1, f.lastCall().Page)
}

func TestApplyFiltersResetsToFirstPage(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))
	require.NoError(t, c.LoadMore(ctx))

	from := 1990
	rating := 8.0
	require.NoError(t, c.ApplyFilters(ctx, apiclient.Filters{YearFrom: &from, RatingMin: &rating}))

	q := f.lastCall()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, "laugh", q.MoodID)
	require.NotNil(t, q.Filters.YearFrom)
	assert.Equal(t, 1990, *q.Filters.YearFrom)

	s := c.Snapshot()
	assert.Equal(t, 1, s.Page)
	assert.Len(t, s.Movies, 2)
	assert.Equal(t, &from, s.Filters.YearFrom)

	// filters follow the context into load-more
	require.NoError(t, c.LoadMore(ctx))
	assert.Equal(t, &rating, f.lastCall().Filters.RatingMin)

	// a new mood drops them
	require.NoError(t, c.SelectMood(ctx, laugh(t)))
	assert.True(t, f.lastCall().Filters.Empty())
	assert.True(t, c.Snapshot().Filters.Empty())
}

func TestSearchContext(t *testing.T) {
	f := &fakeFetcher{totalPages: 2}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	require.NoError(t, c.Search(ctx, "Inception"))
	q := f.lastCall()
	assert.Equal(t, "Inception", q.Text)
	assert.Empty(t, q.MoodID)

	require.NoError(t, c.LoadMore(ctx))
	assert.Equal(t, 2, f.lastCall().Page)
	assert.Equal(t, "Inception", f.lastCall().Text)

	s := c.Snapshot()
	assert.Nil(t, s.Mood)
	assert.Equal(t, "Inception", s.Query)
}

func TestFirstPageFailureClearsMovies(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	f.err = errors.New("Failed to fetch movies")
	require.Error(t, c.SelectMood(ctx, laugh(t)))

	s := c.Snapshot()
	assert.Equal(t, Failed, s.Status)
	assert.Equal(t, "Failed to fetch movies", s.Err)
	assert.Empty(t, s.Movies)
}

func TestFailedMoodSwitchBlocksLoadMore(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	cry, ok := moods.ByID("cry")
	require.True(t, ok)
	f.mu.Lock()
	f.err = errors.New("boom")
	f.mu.Unlock()
	require.Error(t, c.SelectMood(ctx, cry))

	s := c.Snapshot()
	assert.Zero(t, s.TotalPages)
	assert.Equal(t, 1, s.Page)

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	require.ErrorIs(t, c.LoadMore(ctx), ErrNoMorePages)
	assert.Equal(t, 2, f.count())

	require.NoError(t, c.Retry(ctx))
	q := f.lastCall()
	assert.Equal(t, "cry", q.MoodID)
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 5, c.Snapshot().TotalPages)
}

func TestLoadMoreFailureKeepsMovies(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	f.err = errors.New("boom")
	require.Error(t, c.LoadMore(ctx))

	s := c.Snapshot()
	assert.Equal(t, Failed, s.Status)
	assert.Equal(t, 1, s.Page)
	assert.Len(t, s.Movies, 2)
	assert.Equal(t, 2, f.count(), "no automatic retry")
}

func TestRetryReissuesLastRequest(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.ErrorIs(t, c.Retry(ctx), ErrNoContext)

	f.err = errors.New("boom")
	require.Error(t, c.SelectMood(ctx, laugh(t)))

	f.mu.Lock()
	f.err = nil
	f.mu.Unlock()
	require.NoError(t, c.Retry(ctx))

	q := f.lastCall()
	assert.Equal(t, "laugh", q.MoodID)
	assert.Equal(t, 1, q.Page)
	s := c.Snapshot()
	assert.Equal(t, Ready, s.Status)
	assert.Empty(t, s.Err)
	assert.Len(t, s.Movies, 2)
}

func TestBusyRejectsLoadMoreAndShuffle(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	ctx := context.Background()
	require.NoError(t, c.SelectMood(ctx, laugh(t)))

	f.mu.Lock()
	f.block = make(chan struct{})
	f.started = make(chan struct{}, 1)
	f.mu.Unlock()

	done := make(chan error, 1)
	go func() { done <- c.LoadMore(ctx) }()
	<-f.started

	assert.Equal(t, Loading, c.Snapshot().Status)
	require.ErrorIs(t, c.LoadMore(ctx), ErrBusy)
	require.ErrorIs(t, c.Shuffle(ctx), ErrBusy)

	close(f.block)
	require.NoError(t, <-done)
	assert.Equal(t, 2, c.Snapshot().Page)
	assert.Equal(t, 2, f.count())
}

func TestReset(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f)
	require.NoError(t, c.SelectMood(context.Background(), laugh(t)))

	c.Reset()
	s := c.Snapshot()
	assert.Equal(t, Idle, s.Status)
	assert.Empty(t, s.Movies)
	assert.Equal(t, 1, s.Page)
	assert.Zero(t, s.TotalPages)
	assert.Nil(t, s.Mood)
}

func TestPick(t *testing.T) {
	f := &fakeFetcher{totalPages: 5}
	c := New(f, WithRand(&fixedRand{}))
	require.NoError(t, c.SelectMood(context.Background(), laugh(t)))

	picked := c.Pick(1)
	require.Len(t, picked, 1)
	assert.Equal(t, int64(101), picked[0].ID)
	assert.Len(t, c.Pick(5), 2)
}

func TestStatusString(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "loading", Loading.String())
	assert.Equal(t, "ready", Ready.String())
	assert.Equal(t, "error", Failed.String())
}
