package tmdb

// Movie is a discovery/search result as TMDB returns it.
type Movie struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	Adult            bool    `json:"adult"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Video            bool    `json:"video"`
}

// Year is the four digit release year, or "" when TMDB has no date.
func (m *Movie) Year() string {
	return yearFromDate(m.ReleaseDate)
}

type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

type MovieDetails struct {
	Movie

	Runtime             *int                `json:"runtime"`
	Genres              []Genre             `json:"genres"`
	Tagline             *string             `json:"tagline"`
	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Status              string              `json:"status"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`

	// Present when requested through append_to_response.
	Credits *Credits     `json:"credits,omitempty"`
	Videos  *VideoList   `json:"videos,omitempty"`
	Similar *SimilarList `json:"similar,omitempty"`
}

// Director returns the first crew member credited as director.
func (d *MovieDetails) Director() (CrewMember, bool) {
	if d.Credits == nil {
		return CrewMember{}, false
	}
	for _, c := range d.Credits.Crew {
		if c.Job == "Director" {
			return c, true
		}
	}
	return CrewMember{}, false
}

// Trailer returns the first YouTube trailer.
func (d *MovieDetails) Trailer() (Video, bool) {
	if d.Videos == nil {
		return Video{}, false
	}
	for _, v := range d.Videos.Results {
		if v.Type == "Trailer" && v.Site == "YouTube" {
			return v, true
		}
	}
	return Video{}, false
}

type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type ProductionCompany struct {
	ID            int64   `json:"id"`
	Name          string  `json:"name"`
	LogoPath      *string `json:"logo_path"`
	OriginCountry string  `json:"origin_country"`
}

type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO639_1    string `json:"iso_639_1"`
	Name        string `json:"name"`
}

type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Character   string  `json:"character"`
	ProfilePath *string `json:"profile_path"`
	Order       int     `json:"order"`
}

type CrewMember struct {
	ID          int64   `json:"id"`
	Name        string  `json:"name"`
	Job         string  `json:"job"`
	Department  string  `json:"department"`
	ProfilePath *string `json:"profile_path"`
}

type Video struct {
	ID       string `json:"id"`
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

type VideoList struct {
	Results []Video `json:"results"`
}

type SimilarList struct {
	Results []Movie `json:"results"`
}
