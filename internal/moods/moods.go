// Package moods holds the static mood catalog and its lookups.
package moods

import "slices"

// TMDB genre ids used by the catalog:
// 12 Adventure, 14 Fantasy, 16 Animation, 18 Drama, 27 Horror, 28 Action,
// 35 Comedy, 53 Thriller, 99 Documentary, 878 Sci-Fi, 9648 Mystery,
// 10749 Romance, 10751 Family.

const DefaultSort = "popularity.desc"

type Mood struct {
	ID             string   `json:"id"`
	Emoji          string   `json:"emoji"`
	Label          string   `json:"label"`
	Description    string   `json:"description"`
	Color          string   `json:"color"`
	GenreIDs       []int    `json:"genreIds"`
	Keywords       []int    `json:"keywords,omitempty"`
	SortBy         string   `json:"sortBy,omitempty"`
	VoteAverageMin *float64 `json:"voteAverageMin,omitempty"`
}

// SortOrder returns the mood's sort order, falling back to popularity.
func (m Mood) SortOrder() string {
	if m.SortBy == "" {
		return DefaultSort
	}
	return m.SortBy
}

var catalog = []Mood{
	{
		ID:             "cry",
		Emoji:          "😢",
		Label:          "I want to cry",
		Description:    "Emotional dramas and tearjerkers",
		Color:          "from-blue-500 to-indigo-600",
		GenreIDs:       []int{18, 10749},
		VoteAverageMin: rating(7.0),
	},
	{
		ID:             "smart",
		Emoji:          "🧠",
		Label:          "I want to feel smarter",
		Description:    "Mind-bending thrillers and documentaries",
		Color:          "from-purple-500 to-violet-600",
		GenreIDs:       []int{99, 9648, 878},
		VoteAverageMin: rating(7.5),
	},
	{
		ID:          "explode",
		Emoji:       "💥",
		Label:       "I want to see things explode",
		Description: "Action blockbusters and disaster films",
		Color:       "from-orange-500 to-red-600",
		GenreIDs:    []int{28, 12},
		SortBy:      DefaultSort,
	},
	{
		ID:             "laugh",
		Emoji:          "😂",
		Label:          "I need to laugh",
		Description:    "Comedies and feel-good films",
		Color:          "from-yellow-400 to-orange-500",
		GenreIDs:       []int{35},
		VoteAverageMin: rating(6.5),
	},
	{
		ID:             "cozy",
		Emoji:          "🌙",
		Label:          "Cozy comfort watch",
		Description:    "Familiar favorites and low-stakes plots",
		Color:          "from-amber-400 to-yellow-500",
		GenreIDs:       []int{10751, 35, 16},
		VoteAverageMin: rating(6.5),
	},
	{
		ID:             "reality",
		Emoji:          "🤯",
		Label:          "Make me question reality",
		Description:    "Sci-fi and psychological thrillers",
		Color:          "from-pink-500 to-purple-600",
		GenreIDs:       []int{878, 53, 9648},
		VoteAverageMin: rating(7.0),
	},
	{
		ID:             "escape",
		Emoji:          "🏃",
		Label:          "I want to escape",
		Description:    "Fantasy, adventure, and world-building",
		Color:          "from-emerald-500 to-teal-600",
		GenreIDs:       []int{14, 12, 878},
		VoteAverageMin: rating(6.5),
	},
	{
		ID:             "scare",
		Emoji:          "💀",
		Label:          "Scare me",
		Description:    "Horror and suspense",
		Color:          "from-gray-700 to-gray-900",
		GenreIDs:       []int{27, 53},
		VoteAverageMin: rating(6.0),
	},
}

func rating(v float64) *float64 { return &v }

// All returns a copy of the catalog in display order.
func All() []Mood {
	out := make([]Mood, len(catalog))
	for i := range catalog {
		out[i] = catalog[i].clone()
	}
	return out
}

// ByID looks a mood up by its exact identifier.
func ByID(id string) (Mood, bool) {
	for i := range catalog {
		if catalog[i].ID == id {
			return catalog[i].clone(), true
		}
	}
	return Mood{}, false
}

// ByGenre returns every mood whose genre list contains genreID.
func ByGenre(genreID int) []Mood {
	var out []Mood
	for i := range catalog {
		if slices.Contains(catalog[i].GenreIDs, genreID) {
			out = append(out, catalog[i].clone())
		}
	}
	return out
}

// clone keeps callers from mutating the catalog through shared slices.
func (m Mood) clone() Mood {
	m.GenreIDs = slices.Clone(m.GenreIDs)
	m.Keywords = slices.Clone(m.Keywords)
	if m.VoteAverageMin != nil {
		m.VoteAverageMin = rating(*m.VoteAverageMin)
	}
	return m
}
