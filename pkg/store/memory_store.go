package store

import (
	"sort"
	"strings"
	"sync"

	"reelbase/pkg/domain"
)

// MemoryStore is an in-process Store used by tests and local development.
// It mirrors GormStore semantics, including insertion-order listings and
// atomic watchlist updates.
type MemoryStore struct {
	mu          sync.RWMutex
	movies      map[string]domain.Movie
	movieOrder  []string
	reviews     map[string][]domain.Review // movieID -> reviews, insertion order
	users       map[string]domain.User
	userOrder   []string
	email       map[string]string // email -> user ID
	watchlists  map[string][]string
	preferences map[string]map[string]any
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		movies:      make(map[string]domain.Movie),
		reviews:     make(map[string][]domain.Review),
		users:       make(map[string]domain.User),
		email:       make(map[string]string),
		watchlists:  make(map[string][]string),
		preferences: make(map[string]map[string]any),
	}
}

// movies

func (m *MemoryStore) SaveMovie(mv domain.Movie) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.movies[mv.ID]; !exists {
		m.movieOrder = append(m.movieOrder, mv.ID)
	}
	m.movies[mv.ID] = mv
	return nil
}

func (m *MemoryStore) GetMovie(id string) (domain.Movie, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mv, ok := m.movies[id]
	return mv, ok, nil
}

func (m *MemoryStore) FindMovieByTitle(title string) (domain.Movie, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range m.movieOrder {
		if mv, ok := m.movies[id]; ok && mv.Title == title {
			return mv, true, nil
		}
	}
	return domain.Movie{}, false, nil
}

func (m *MemoryStore) ListMovies(filter MovieFilter) ([]domain.Movie, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.Movie, 0, len(m.movieOrder))
	for _, id := range m.movieOrder {
		mv, ok := m.movies[id]
		if !ok {
			continue
		}
		if filter.Genre != "" && !hasGenre(mv, filter.Genre) {
			continue
		}
		if filter.Year != "" && mv.Year != filter.Year {
			continue
		}
		out = append(out, mv)
	}
	return out, nil
}

func (m *MemoryStore) TopRatedMovies(limit int) ([]domain.Movie, error) {
	out, err := m.ListMovies(MovieFilter{})
	if err != nil {
		return nil, err
	}
	sortByRatingDesc(out)
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryStore) MoviesRatedAtLeast(min float64) ([]domain.Movie, error) {
	all, err := m.ListMovies(MovieFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]domain.Movie, 0, len(all))
	for _, mv := range all {
		if mv.Rating >= min {
			out = append(out, mv)
		}
	}
	sortByRatingDesc(out)
	return out, nil
}

func (m *MemoryStore) MoviesByGenre(genre string) ([]domain.Movie, error) {
	out, err := m.ListMovies(MovieFilter{Genre: genre})
	if err != nil {
		return nil, err
	}
	sortByRatingDesc(out)
	return out, nil
}

func (m *MemoryStore) DeleteMovie(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.movies, id)
	kept := m.movieOrder[:0]
	for _, existing := range m.movieOrder {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	m.movieOrder = kept
	return nil
}

// reviews

func (m *MemoryStore) SaveReview(r domain.Review) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.reviews[r.MovieID]
	for i, existing := range list {
		if existing.ID == r.ID {
			list[i] = r
			return nil
		}
	}
	m.reviews[r.MovieID] = append(list, r)
	return nil
}

func (m *MemoryStore) GetReview(movieID, reviewID string) (domain.Review, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, r := range m.reviews[movieID] {
		if r.ID == reviewID {
			return r, true, nil
		}
	}
	return domain.Review{}, false, nil
}

func (m *MemoryStore) ListReviews(movieID string) ([]domain.Review, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Review{}, m.reviews[movieID]...), nil
}

func (m *MemoryStore) DeleteReview(movieID, reviewID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.reviews[movieID]
	kept := list[:0]
	for _, r := range list {
		if r.ID != reviewID {
			kept = append(kept, r)
		}
	}
	m.reviews[movieID] = kept
	return nil
}

// users

func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, exists := m.users[u.ID]
	if !exists {
		m.userOrder = append(m.userOrder, u.ID)
	}
	if exists && !strings.EqualFold(existing.Email, u.Email) {
		delete(m.email, strings.ToLower(existing.Email))
	}
	m.users[u.ID] = u
	m.email[strings.ToLower(u.Email)] = u.ID
	return nil
}

func (m *MemoryStore) GetUser(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) GetUserByEmail(email string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	id, ok := m.email[strings.ToLower(email)]
	if !ok {
		return domain.User{}, false, nil
	}
	u, ok := m.users[id]
	return u, ok, nil
}

func (m *MemoryStore) ListUsers() ([]domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]domain.User, 0, len(m.userOrder))
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if u, ok := m.users[id]; ok {
		delete(m.email, strings.ToLower(u.Email))
	}
	delete(m.users, id)
	kept := m.userOrder[:0]
	for _, existing := range m.userOrder {
		if existing != id {
			kept = append(kept, existing)
		}
	}
	m.userOrder = kept
	return nil
}

func (m *MemoryStore) ListDeviceTokens() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0)
	for _, id := range m.userOrder {
		if u, ok := m.users[id]; ok && u.DeviceToken != "" {
			out = append(out, u.DeviceToken)
		}
	}
	return out, nil
}

// watchlists

func (m *MemoryStore) WatchlistAdd(userID, movieID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.watchlists[userID]
	for _, id := range list {
		if id == movieID {
			return append([]string{}, list...), nil
		}
	}
	list = append(list, movieID)
	m.watchlists[userID] = list
	return append([]string{}, list...), nil
}

func (m *MemoryStore) WatchlistRemove(userID, movieID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	list := m.watchlists[userID]
	kept := make([]string, 0, len(list))
	for _, id := range list {
		if id != movieID {
			kept = append(kept, id)
		}
	}
	m.watchlists[userID] = kept
	return append([]string{}, kept...), nil
}

func (m *MemoryStore) Watchlist(userID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string{}, m.watchlists[userID]...), nil
}

// preference bags

func (m *MemoryStore) SavePreferences(userID string, prefs map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := make(map[string]any, len(prefs))
	for k, v := range prefs {
		copied[k] = v
	}
	m.preferences[userID] = copied
	return nil
}

func (m *MemoryStore) GetPreferences(userID string) (map[string]any, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	prefs, ok := m.preferences[userID]
	if !ok {
		return nil, false, nil
	}
	copied := make(map[string]any, len(prefs))
	for k, v := range prefs {
		copied[k] = v
	}
	return copied, true, nil
}

func hasGenre(mv domain.Movie, genre string) bool {
	for _, g := range mv.Genres {
		if g == genre {
			return true
		}
	}
	return false
}

func sortByRatingDesc(movies []domain.Movie) {
	sort.SliceStable(movies, func(i, j int) bool {
		return movies[i].Rating > movies[j].Rating
	})
}

var _ Store = (*MemoryStore)(nil)
