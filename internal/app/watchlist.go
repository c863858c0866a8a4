package app

import (
	"fmt"
	"strings"
)

// WatchlistAdd appends a movie to the user's watchlist. Adding a movie that
// is already present is a no-op and returns the unchanged list.
func (a *App) WatchlistAdd(userID, movieID string) ([]string, error) {
	if strings.TrimSpace(movieID) == "" {
		return nil, fmt.Errorf("%w: movie id required", ErrInvalidArgument)
	}
	ids, err := a.store.WatchlistAdd(userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("watchlist add: %w", err)
	}
	return ids, nil
}

// WatchlistRemove deletes a movie from the user's watchlist. Removing a movie
// that is not present is a no-op.
func (a *App) WatchlistRemove(userID, movieID string) ([]string, error) {
	if strings.TrimSpace(movieID) == "" {
		return nil, fmt.Errorf("%w: movie id required", ErrInvalidArgument)
	}
	ids, err := a.store.WatchlistRemove(userID, movieID)
	if err != nil {
		return nil, fmt.Errorf("watchlist remove: %w", err)
	}
	return ids, nil
}

// Watchlist returns the user's current watchlist, empty when none exists.
func (a *App) Watchlist(userID string) ([]string, error) {
	ids, err := a.store.Watchlist(userID)
	if err != nil {
		return nil, fmt.Errorf("watchlist get: %w", err)
	}
	return ids, nil
}
