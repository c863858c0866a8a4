package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"reelbase/internal/util"
	"reelbase/pkg/domain"
	"reelbase/pkg/notify"
	"reelbase/pkg/omdb"
	"reelbase/pkg/store"
)

// GetOrFetchMovie returns the catalog record for a title, consulting the
// metadata provider only on a cache miss. The returned bool reports whether
// the provider was called. Records are keyed by the provider's id, so a
// re-fetch of a known movie under a different title updates in place instead
// of duplicating.
func (a *App) GetOrFetchMovie(ctx context.Context, title string) (domain.Movie, bool, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Movie{}, false, fmt.Errorf("%w: title required", ErrInvalidArgument)
	}

	cached, ok, err := a.store.FindMovieByTitle(title)
	if err != nil {
		return domain.Movie{}, false, fmt.Errorf("lookup title: %w", err)
	}
	if ok {
		return cached, false, nil
	}

	detail, err := a.provider.FetchByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, omdb.ErrNotFound) {
			return domain.Movie{}, true, fmt.Errorf("%w: no match for %q", ErrNotFound, title)
		}
		return domain.Movie{}, true, fmt.Errorf("%w: %v", ErrUpstream, err)
	}

	movie := movieFromDetail(detail)
	_, existed, err := a.store.GetMovie(movie.ID)
	if err != nil {
		return domain.Movie{}, true, fmt.Errorf("check movie: %w", err)
	}
	if err := a.store.SaveMovie(movie); err != nil {
		return domain.Movie{}, true, fmt.Errorf("save movie: %w", err)
	}
	if !existed {
		a.announceNewMovie(ctx, movie)
	}
	return movie, true, nil
}

// announceNewMovie runs the post-persist side effects: a push notification to
// every registered device and an archived copy of the poster. Both are best
// effort; failures are logged and never surface to the caller.
func (a *App) announceNewMovie(ctx context.Context, movie domain.Movie) {
	logger := util.LoggerFromContext(ctx)
	// the tasks are independent: each logs its own failure and none can
	// cancel the other
	sideCtx := context.WithoutCancel(ctx)
	var g errgroup.Group
	if a.dispatcher != nil {
		g.Go(func() error {
			if err := a.pushNewMovie(sideCtx, movie); err != nil {
				logger.Warn("push notification failed", "movie_id", movie.ID, "error", err)
			}
			return nil
		})
	}
	if a.posters != nil {
		g.Go(func() error {
			if err := a.posters.Archive(sideCtx, movie.ID, movie.Poster); err != nil {
				logger.Warn("poster archive failed", "movie_id", movie.ID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (a *App) pushNewMovie(ctx context.Context, movie domain.Movie) error {
	tokens, err := a.store.ListDeviceTokens()
	if err != nil {
		return fmt.Errorf("list device tokens: %w", err)
	}
	if len(tokens) == 0 {
		return nil
	}
	return a.dispatcher.Push(ctx, tokens, notify.Notification{
		Title: "New movie added",
		Body:  fmt.Sprintf("%s is now available", movie.Title),
	})
}

// SearchMovies runs a free-text search against the metadata provider without
// touching the catalog.
func (a *App) SearchMovies(ctx context.Context, query string) ([]omdb.SearchItem, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: search query required", ErrInvalidArgument)
	}
	items, err := a.provider.Search(ctx, query)
	if err != nil {
		if errors.Is(err, omdb.ErrNotFound) {
			return []omdb.SearchItem{}, nil
		}
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return items, nil
}

// GetMovieByID retrieves one catalog record.
func (a *App) GetMovieByID(id string) (domain.Movie, error) {
	movie, ok, err := a.store.GetMovie(id)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("fetch movie: %w", err)
	}
	if !ok {
		return domain.Movie{}, fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}
	return movie, nil
}

// ListMovies returns catalog records matching the optional genre/year filters.
func (a *App) ListMovies(filter store.MovieFilter) ([]domain.Movie, error) {
	return a.store.ListMovies(filter)
}

// UpdateMovie applies a partial update to a stored movie. Known fields map to
// their columns; everything else lands in the provider extras.
func (a *App) UpdateMovie(id string, patch map[string]any) (domain.Movie, error) {
	if len(patch) == 0 {
		return domain.Movie{}, fmt.Errorf("%w: empty update", ErrInvalidArgument)
	}
	movie, ok, err := a.store.GetMovie(id)
	if err != nil {
		return domain.Movie{}, fmt.Errorf("fetch movie: %w", err)
	}
	if !ok {
		return domain.Movie{}, fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}
	applyMoviePatch(&movie, patch)
	movie.UpdatedAt = time.Now().UTC()
	if err := a.store.SaveMovie(movie); err != nil {
		return domain.Movie{}, fmt.Errorf("update movie: %w", err)
	}
	return movie, nil
}

// DeleteMovie removes a catalog record.
func (a *App) DeleteMovie(id string) error {
	_, ok, err := a.store.GetMovie(id)
	if err != nil {
		return fmt.Errorf("fetch movie: %w", err)
	}
	if !ok {
		return fmt.Errorf("%w: movie %s", ErrNotFound, id)
	}
	return a.store.DeleteMovie(id)
}

// movieFromDetail normalizes a provider payload into a catalog record.
// The comma-joined genre string becomes a trimmed set and an unparseable
// rating (the provider sends "N/A") coerces to 0.
func movieFromDetail(d omdb.Detail) domain.Movie {
	now := time.Now().UTC()
	return domain.Movie{
		ID:        d.ImdbID,
		Title:     d.Title,
		Genres:    splitGenres(d.Genre),
		Year:      d.Year,
		Rating:    parseRating(d.ImdbRating),
		Poster:    d.Poster,
		Extra:     d.Raw,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func splitGenres(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if g := strings.TrimSpace(p); g != "" {
			out = append(out, g)
		}
	}
	return out
}

func parseRating(raw string) float64 {
	rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0
	}
	return rating
}

func applyMoviePatch(movie *domain.Movie, patch map[string]any) {
	for key, value := range patch {
		switch key {
		case "title":
			if s, ok := value.(string); ok {
				movie.Title = s
			}
		case "year":
			if s, ok := value.(string); ok {
				movie.Year = s
			}
		case "poster":
			if s, ok := value.(string); ok {
				movie.Poster = s
			}
		case "rating":
			switch v := value.(type) {
			case float64:
				movie.Rating = v
			case string:
				movie.Rating = parseRating(v)
			}
		case "genres":
			switch v := value.(type) {
			case string:
				movie.Genres = splitGenres(v)
			case []any:
				genres := make([]string, 0, len(v))
				for _, item := range v {
					if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
						genres = append(genres, strings.TrimSpace(s))
					}
				}
				movie.Genres = genres
			}
		default:
			if movie.Extra == nil {
				movie.Extra = map[string]any{}
			}
			movie.Extra[key] = value
		}
	}
}
