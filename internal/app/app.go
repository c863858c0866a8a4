package app

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"reelbase/internal/identity"
	"reelbase/internal/mlclient"
	"reelbase/pkg/notify"
	"reelbase/pkg/omdb"
	"reelbase/pkg/storage"
	"reelbase/pkg/store"
)

// MetadataProvider fetches title metadata from the external catalog API.
type MetadataProvider interface {
	FetchByTitle(ctx context.Context, title string) (omdb.Detail, error)
	Search(ctx context.Context, query string) ([]omdb.SearchItem, error)
}

// Recommender forwards recommendation and training calls to the ML service.
type Recommender interface {
	Recommend(ctx context.Context, preferences map[string]any) (json.RawMessage, error)
	Train(ctx context.Context) (json.RawMessage, error)
}

// ResetTokens issues and consumes single-use password reset tokens.
type ResetTokens interface {
	Issue(ctx context.Context, uid string) (string, error)
	Consume(ctx context.Context, token string) (string, error)
}

// Config holds runtime configuration for the core application.
type Config struct {
	DatabaseURL string
	Store       store.Store

	OMDBAPIKey  string
	OMDBBaseURL string
	Provider    MetadataProvider

	AMQPURL    string
	PushQueue  string
	Dispatcher notify.Dispatcher

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool
	Posters        storage.PosterStore

	MLServiceURL string
	Recommender  Recommender

	RedisAddr     string
	RedisPassword string
	ResetTokenTTL time.Duration
	ResetTokens   ResetTokens

	Identity *identity.Service
}

// App is the core application service wiring together storage, the metadata
// provider, the identity service, and the side-effect collaborators.
type App struct {
	store       store.Store
	provider    MetadataProvider
	dispatcher  notify.Dispatcher
	posters     storage.PosterStore
	identity    *identity.Service
	resetTokens ResetTokens
	ml          Recommender
}

// New constructs the application. Dispatcher, Posters, Recommender, and
// ResetTokens are optional; the operations depending on them degrade when
// absent instead of failing construction.
func New(cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		var err error
		dataStore, err = store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	}

	provider := cfg.Provider
	if provider == nil {
		if cfg.OMDBAPIKey == "" {
			return nil, fmt.Errorf("omdb API key required")
		}
		provider = omdb.NewClient(cfg.OMDBBaseURL, cfg.OMDBAPIKey)
	}

	if cfg.Identity == nil {
		return nil, fmt.Errorf("identity service required")
	}

	dispatcher := cfg.Dispatcher
	if dispatcher == nil && cfg.AMQPURL != "" {
		var err error
		dispatcher, err = notify.NewAMQPDispatcher(cfg.AMQPURL, cfg.PushQueue)
		if err != nil {
			return nil, fmt.Errorf("init push dispatcher: %w", err)
		}
	}

	posters := cfg.Posters
	if posters == nil && cfg.MinioEndpoint != "" {
		var err error
		posters, err = storage.NewMinioPosterStore(cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioUseSSL)
		if err != nil {
			return nil, fmt.Errorf("init poster store: %w", err)
		}
	}

	ml := cfg.Recommender
	if ml == nil && cfg.MLServiceURL != "" {
		ml = mlclient.New(cfg.MLServiceURL)
	}

	resetTokens := cfg.ResetTokens
	if resetTokens == nil && cfg.RedisAddr != "" {
		var err error
		resetTokens, err = identity.NewResetTokenStore(cfg.RedisAddr, cfg.RedisPassword, cfg.ResetTokenTTL)
		if err != nil {
			return nil, fmt.Errorf("init reset token store: %w", err)
		}
	}

	return &App{
		store:       dataStore,
		provider:    provider,
		dispatcher:  dispatcher,
		posters:     posters,
		identity:    cfg.Identity,
		resetTokens: resetTokens,
		ml:          ml,
	}, nil
}

// Identity exposes the token service for transport-level auth checks.
func (a *App) Identity() *identity.Service {
	return a.identity
}
