package handlers

import (
	"net/url"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/handsomefox/moodflix/internal/moods"
	"github.com/handsomefox/moodflix/internal/tmdb"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

type moviesRequest struct {
	MoodID    string
	Query     string
	Page      int      `validate:"min=1,max=500"`
	YearFrom  *int     `validate:"omitempty,min=1870,max=2100"`
	YearTo    *int     `validate:"omitempty,min=1870,max=2100"`
	RatingMin *float64 `validate:"omitempty,min=0,max=10"`
}

// parseMoviesRequest reads the listing query. Malformed numbers are treated
// as absent; a missing or malformed page means page 1.
func parseMoviesRequest(q url.Values) (*moviesRequest, error) {
	req := &moviesRequest{
		MoodID:    strings.TrimSpace(q.Get("moodId")),
		Query:     strings.TrimSpace(q.Get("query")),
		Page:      1,
		YearFrom:  optionalInt(q.Get("yearFrom")),
		YearTo:    optionalInt(q.Get("yearTo")),
		RatingMin: optionalFloat(q.Get("ratingMin")),
	}
	if page := optionalInt(q.Get("page")); page != nil {
		req.Page = *page
	}

	if err := validatorInstance().Struct(req); err != nil {
		return nil, badRequest("Invalid query parameters")
	}
	if req.YearFrom != nil && req.YearTo != nil && *req.YearFrom > *req.YearTo {
		return nil, badRequest("Invalid query parameters")
	}
	return req, nil
}

// discover builds TMDB discover parameters. An explicit ratingMin replaces
// the mood's own minimum.
func (req *moviesRequest) discover(mood *moods.Mood) tmdb.DiscoverParams {
	params := tmdb.DiscoverParams{
		Page:     req.Page,
		SortBy:   tmdb.DefaultSort,
		YearFrom: req.YearFrom,
		YearTo:   req.YearTo,
	}
	if mood != nil {
		params.GenreIDs = mood.GenreIDs
		params.SortBy = mood.SortOrder()
		params.VoteAverageMin = mood.VoteAverageMin
	}
	if req.RatingMin != nil {
		params.VoteAverageMin = ptr(*req.RatingMin)
	}
	return params
}
