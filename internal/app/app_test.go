package app

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"sync"
	"testing"

	"reelbase/internal/identity"
	"reelbase/pkg/notify"
	"reelbase/pkg/omdb"
	"reelbase/pkg/store"
)

type fakeProvider struct {
	detail      omdb.Detail
	fetchErr    error
	searchItems []omdb.SearchItem
	fetchCalls  int
}

func (f *fakeProvider) FetchByTitle(_ context.Context, _ string) (omdb.Detail, error) {
	f.fetchCalls++
	if f.fetchErr != nil {
		return omdb.Detail{}, f.fetchErr
	}
	return f.detail, nil
}

func (f *fakeProvider) Search(_ context.Context, _ string) ([]omdb.SearchItem, error) {
	return f.searchItems, nil
}

type fakeDispatcher struct {
	mu      sync.Mutex
	pushes  [][]string
	pushErr error
}

func (f *fakeDispatcher) Push(_ context.Context, tokens []string, _ notify.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.pushErr != nil {
		return f.pushErr
	}
	f.pushes = append(f.pushes, tokens)
	return nil
}

type fakePosterStore struct {
	mu       sync.Mutex
	archived []string
}

func (f *fakePosterStore) Archive(_ context.Context, movieID, posterURL string) error {
	if posterURL == "" || posterURL == "N/A" {
		return nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, movieID)
	return nil
}

type fakeRecommender struct {
	payload    json.RawMessage
	lastPrefs  map[string]any
	calls      int
	trainCalls int
}

func (f *fakeRecommender) Recommend(_ context.Context, prefs map[string]any) (json.RawMessage, error) {
	f.calls++
	f.lastPrefs = prefs
	return f.payload, nil
}

func (f *fakeRecommender) Train(_ context.Context) (json.RawMessage, error) {
	f.trainCalls++
	return f.payload, nil
}

type fakeResetTokens struct {
	tokens map[string]string
	next   int
}

func (f *fakeResetTokens) Issue(_ context.Context, uid string) (string, error) {
	if f.tokens == nil {
		f.tokens = map[string]string{}
	}
	f.next++
	token := fmt.Sprintf("reset-%d", f.next)
	f.tokens[token] = uid
	return token, nil
}

func (f *fakeResetTokens) Consume(_ context.Context, token string) (string, error) {
	uid, ok := f.tokens[token]
	if !ok {
		return "", identity.ErrResetTokenInvalid
	}
	delete(f.tokens, token)
	return uid, nil
}

func testIdentity(t *testing.T) *identity.Service {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return identity.NewFromKey(key, "test-key", identity.Options{})
}

type testEnv struct {
	app         *App
	store       *store.MemoryStore
	provider    *fakeProvider
	dispatcher  *fakeDispatcher
	posters     *fakePosterStore
	recommender *fakeRecommender
	resetTokens *fakeResetTokens
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		store: store.NewMemoryStore(),
		provider: &fakeProvider{
			detail: omdb.Detail{
				Title:      "Inception",
				Year:       "2010",
				Genre:      "Action, Sci-Fi",
				ImdbID:     "tt1375666",
				ImdbRating: "8.8",
				Poster:     "https://img.example/inception.jpg",
				Raw:        map[string]any{"Director": "Christopher Nolan"},
			},
		},
		dispatcher:  &fakeDispatcher{},
		posters:     &fakePosterStore{},
		recommender: &fakeRecommender{payload: json.RawMessage(`{"movies":["tt1375666"]}`)},
		resetTokens: &fakeResetTokens{},
	}
	a, err := New(Config{
		Store:       env.store,
		Provider:    env.provider,
		Dispatcher:  env.dispatcher,
		Posters:     env.posters,
		Recommender: env.recommender,
		ResetTokens: env.resetTokens,
		Identity:    testIdentity(t),
	})
	if err != nil {
		t.Fatalf("new app: %v", err)
	}
	env.app = a
	return env
}
