package store

import (
	"reflect"
	"testing"

	"reelbase/pkg/domain"
)

func TestMemoryStoreListMoviesFilters(t *testing.T) {
	m := NewMemoryStore()
	seed := []domain.Movie{
		{ID: "tt1", Title: "A", Genres: []string{"Action"}, Year: "2010", Rating: 7},
		{ID: "tt2", Title: "B", Genres: []string{"Action", "Drama"}, Year: "2012", Rating: 8},
		{ID: "tt3", Title: "C", Genres: []string{"Comedy"}, Year: "2010", Rating: 6},
	}
	for _, mv := range seed {
		if err := m.SaveMovie(mv); err != nil {
			t.Fatalf("save %s: %v", mv.ID, err)
		}
	}

	tests := []struct {
		name   string
		filter MovieFilter
		want   []string
	}{
		{"no filter", MovieFilter{}, []string{"tt1", "tt2", "tt3"}},
		{"genre", MovieFilter{Genre: "Action"}, []string{"tt1", "tt2"}},
		{"year", MovieFilter{Year: "2010"}, []string{"tt1", "tt3"}},
		{"genre and year", MovieFilter{Genre: "Action", Year: "2010"}, []string{"tt1"}},
		{"no match", MovieFilter{Genre: "Horror"}, []string{}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			movies, err := m.ListMovies(tc.filter)
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			got := make([]string, 0, len(movies))
			for _, mv := range movies {
				got = append(got, mv.ID)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ids = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestMemoryStoreUserEmailIndex(t *testing.T) {
	m := NewMemoryStore()
	if err := m.SaveUser(domain.User{ID: "u-1", Email: "viewer@example.com"}); err != nil {
		t.Fatalf("save user: %v", err)
	}

	user, ok, err := m.GetUserByEmail("viewer@example.com")
	if err != nil || !ok || user.ID != "u-1" {
		t.Fatalf("lookup = (%+v, %v, %v)", user, ok, err)
	}

	// email change moves the index entry
	if err := m.SaveUser(domain.User{ID: "u-1", Email: "renamed@example.com"}); err != nil {
		t.Fatalf("update user: %v", err)
	}
	if _, ok, _ := m.GetUserByEmail("viewer@example.com"); ok {
		t.Fatal("stale email entry survived the update")
	}
	if _, ok, _ := m.GetUserByEmail("renamed@example.com"); !ok {
		t.Fatal("new email not indexed")
	}
}

func TestMemoryStoreListDeviceTokens(t *testing.T) {
	m := NewMemoryStore()
	users := []domain.User{
		{ID: "u-1", Email: "a@example.com", DeviceToken: "tok-a"},
		{ID: "u-2", Email: "b@example.com"},
		{ID: "u-3", Email: "c@example.com", DeviceToken: "tok-c"},
	}
	for _, u := range users {
		if err := m.SaveUser(u); err != nil {
			t.Fatalf("save %s: %v", u.ID, err)
		}
	}

	tokens, err := m.ListDeviceTokens()
	if err != nil {
		t.Fatalf("list tokens: %v", err)
	}
	if want := []string{"tok-a", "tok-c"}; !reflect.DeepEqual(tokens, want) {
		t.Fatalf("tokens = %v, want %v", tokens, want)
	}
}

func TestMemoryStoreWatchlistAtomicOps(t *testing.T) {
	m := NewMemoryStore()

	ids, err := m.WatchlistAdd("u-1", "tt1")
	if err != nil || !reflect.DeepEqual(ids, []string{"tt1"}) {
		t.Fatalf("add = (%v, %v)", ids, err)
	}
	ids, err = m.WatchlistAdd("u-1", "tt1")
	if err != nil || !reflect.DeepEqual(ids, []string{"tt1"}) {
		t.Fatalf("duplicate add = (%v, %v)", ids, err)
	}
	ids, err = m.WatchlistRemove("u-1", "tt-missing")
	if err != nil || !reflect.DeepEqual(ids, []string{"tt1"}) {
		t.Fatalf("no-op remove = (%v, %v)", ids, err)
	}
	ids, err = m.WatchlistRemove("u-1", "tt1")
	if err != nil || len(ids) != 0 {
		t.Fatalf("remove = (%v, %v)", ids, err)
	}
}

func TestMemoryStorePreferencesRoundTrip(t *testing.T) {
	m := NewMemoryStore()
	prefs := map[string]any{"genres": []any{"Action"}, "minRating": 7.5}
	if err := m.SavePreferences("u-1", prefs); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, ok, err := m.GetPreferences("u-1")
	if err != nil || !ok {
		t.Fatalf("get = (%v, %v)", ok, err)
	}
	if got["minRating"] != 7.5 {
		t.Fatalf("prefs = %v", got)
	}

	// stored bag is isolated from caller mutation
	prefs["minRating"] = 1.0
	got, _, _ = m.GetPreferences("u-1")
	if got["minRating"] != 7.5 {
		t.Fatal("stored preferences must be copied")
	}
}

func TestMemoryStoreReviews(t *testing.T) {
	m := NewMemoryStore()
	reviews := []domain.Review{
		{ID: "r-1", MovieID: "tt1", Rating: 4},
		{ID: "r-2", MovieID: "tt1", Rating: 5},
	}
	for _, r := range reviews {
		if err := m.SaveReview(r); err != nil {
			t.Fatalf("save %s: %v", r.ID, err)
		}
	}

	list, err := m.ListReviews("tt1")
	if err != nil || len(list) != 2 {
		t.Fatalf("list = (%v, %v)", list, err)
	}

	// save with an existing id replaces in place
	if err := m.SaveReview(domain.Review{ID: "r-1", MovieID: "tt1", Rating: 2}); err != nil {
		t.Fatalf("update review: %v", err)
	}
	got, ok, err := m.GetReview("tt1", "r-1")
	if err != nil || !ok || got.Rating != 2 {
		t.Fatalf("get = (%+v, %v, %v)", got, ok, err)
	}

	if err := m.DeleteReview("tt1", "r-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, ok, _ := m.GetReview("tt1", "r-1"); ok {
		t.Fatal("deleted review still present")
	}
}
