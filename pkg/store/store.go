package store

import "reelbase/pkg/domain"

// MovieFilter holds the ad-hoc catalog filters. Empty fields are skipped;
// set fields compose conjunctively.
type MovieFilter struct {
	Genre string
	Year  string
}

// Store defines persistence operations for movies, reviews, users,
// watchlists, and recommendation preference bags. The service layer holds
// no authoritative state between requests; everything lives here.
type Store interface {
	// movies
	SaveMovie(domain.Movie) error
	GetMovie(id string) (domain.Movie, bool, error)
	FindMovieByTitle(title string) (domain.Movie, bool, error)
	ListMovies(filter MovieFilter) ([]domain.Movie, error)
	TopRatedMovies(limit int) ([]domain.Movie, error)
	MoviesRatedAtLeast(min float64) ([]domain.Movie, error)
	MoviesByGenre(genre string) ([]domain.Movie, error)
	DeleteMovie(id string) error

	// reviews (sub-records owned by one movie)
	SaveReview(domain.Review) error
	GetReview(movieID, reviewID string) (domain.Review, bool, error)
	ListReviews(movieID string) ([]domain.Review, error)
	DeleteReview(movieID, reviewID string) error

	// users
	SaveUser(domain.User) error
	GetUser(id string) (domain.User, bool, error)
	GetUserByEmail(email string) (domain.User, bool, error)
	ListUsers() ([]domain.User, error)
	DeleteUser(id string) error
	ListDeviceTokens() ([]string, error)

	// watchlists. Add and Remove perform the whole read-modify-write inside
	// the store so concurrent updates to the same user cannot lose writes.
	WatchlistAdd(userID, movieID string) ([]string, error)
	WatchlistRemove(userID, movieID string) ([]string, error)
	Watchlist(userID string) ([]string, error)

	// preference bags consumed by the external recommendation service
	SavePreferences(userID string, prefs map[string]any) error
	GetPreferences(userID string) (map[string]any, bool, error)
}
