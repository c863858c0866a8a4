package domain

import "time"

// Movie is a catalog record keyed by the metadata provider's identifier.
// Genres is always a normalized set of trimmed strings; provider fields that
// have no dedicated column are kept verbatim in Extra.
type Movie struct {
	ID        string         `json:"id"`
	Title     string         `json:"title"`
	Genres    []string       `json:"genres"`
	Year      string         `json:"year"`
	Rating    float64        `json:"rating"`
	Poster    string         `json:"poster,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// Review belongs to exactly one movie.
type Review struct {
	ID        string    `json:"id"`
	MovieID   string    `json:"movieId"`
	AuthorID  string    `json:"authorId"`
	Rating    float64   `json:"rating"`
	Body      string    `json:"review"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RatingSummary is the on-demand aggregate over a movie's reviews.
type RatingSummary struct {
	AverageRating float64 `json:"averageRating"`
	TotalReviews  int     `json:"totalReviews"`
}

// User mirrors the identity provider's user id. Claims holds custom claims
// (the admin flag plus an arbitrary role map); DeviceToken is the optional
// push-notification registration.
type User struct {
	ID           string         `json:"uid"`
	Email        string         `json:"email"`
	DisplayName  string         `json:"displayName"`
	PasswordHash string         `json:"-"`
	Preferences  map[string]any `json:"preferences,omitempty"`
	DeviceToken  string         `json:"-"`
	Claims       map[string]any `json:"customClaims,omitempty"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	LastLoginAt  time.Time      `json:"lastLoginAt,omitzero"`
}

// Admin reports whether the user's persisted claims carry the admin flag.
func (u User) Admin() bool {
	v, ok := u.Claims["admin"].(bool)
	return ok && v
}

// Watchlist is one per user: an unordered set of movie ids.
type Watchlist struct {
	UserID    string    `json:"uid"`
	MovieIDs  []string  `json:"movies"`
	UpdatedAt time.Time `json:"updatedAt"`
}
