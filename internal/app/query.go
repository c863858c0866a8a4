package app

import (
	"fmt"
	"strings"

	"reelbase/pkg/domain"
)

const (
	popularLimit   = 10
	highRatedFloor = 8.0
)

// MoviesByCategory serves the fixed browse shelves. "popular" is the ten
// highest rated movies, "high_rated" is everything rated at least 8.0, and a
// genre name returns that genre sorted by rating. Unknown categories are
// rejected.
func (a *App) MoviesByCategory(category string) ([]domain.Movie, error) {
	switch strings.ToLower(strings.TrimSpace(category)) {
	case "popular":
		return a.store.TopRatedMovies(popularLimit)
	case "high_rated":
		return a.store.MoviesRatedAtLeast(highRatedFloor)
	case "action", "comedy", "drama":
		return a.store.MoviesByGenre(capitalize(category))
	default:
		return nil, fmt.Errorf("%w: unknown category %q", ErrInvalidArgument, category)
	}
}

// capitalize upper-cases the first letter to match stored genre names
// ("action" queries the "Action" genre).
func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
