package tmdb

const (
	ImageBaseURL = "https://image.tmdb.org/t/p"

	// NoPoster is served by the frontend when a movie has no poster.
	NoPoster = "/images/no-poster.svg"
)

// ImageURL builds a poster address for size (w200, w300, w500, w780 or
// original). An empty size means w500.
func ImageURL(path *string, size string) string {
	if path == nil || *path == "" {
		return NoPoster
	}
	if size == "" {
		size = "w500"
	}
	return ImageBaseURL + "/" + size + *path
}

// BackdropURL builds a backdrop address; an empty size means w1280.
// Movies without a backdrop yield "".
func BackdropURL(path *string, size string) string {
	if path == nil || *path == "" {
		return ""
	}
	if size == "" {
		size = "w1280"
	}
	return ImageBaseURL + "/" + size + *path
}

// RandomMovies returns up to n movies drawn without replacement from movies.
// intn must return a value in [0, k) for k > 0.
func RandomMovies(movies []Movie, n int, intn func(k int) int) []Movie {
	if n <= 0 || len(movies) == 0 {
		return []Movie{}
	}
	pool := append([]Movie(nil), movies...)
	n = min(n, len(pool))
	for i := range n {
		j := i + intn(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}
