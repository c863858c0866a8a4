package app

import (
	"errors"
	"fmt"
	"testing"
)

func TestMoviesByCategoryPopular(t *testing.T) {
	env := newTestEnv(t)
	for i := 0; i < 12; i++ {
		seedMovie(t, env, fmt.Sprintf("tt%02d", i), fmt.Sprintf("Movie %d", i), []string{"Drama"}, float64(i))
	}

	movies, err := env.app.MoviesByCategory("popular")
	if err != nil {
		t.Fatalf("popular: %v", err)
	}
	if len(movies) != 10 {
		t.Fatalf("popular count = %d, want 10", len(movies))
	}
	for i := 1; i < len(movies); i++ {
		if movies[i-1].Rating < movies[i].Rating {
			t.Fatalf("popular not sorted desc at %d: %v < %v", i, movies[i-1].Rating, movies[i].Rating)
		}
	}
	if movies[0].Rating != 11 {
		t.Fatalf("top rating = %v, want 11", movies[0].Rating)
	}
}

func TestMoviesByCategoryHighRated(t *testing.T) {
	env := newTestEnv(t)
	seedMovie(t, env, "tt1", "Low", []string{"Drama"}, 6.4)
	seedMovie(t, env, "tt2", "Edge", []string{"Drama"}, 8.0)
	seedMovie(t, env, "tt3", "High", []string{"Drama"}, 9.3)

	movies, err := env.app.MoviesByCategory("high_rated")
	if err != nil {
		t.Fatalf("high_rated: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("high_rated count = %d, want 2", len(movies))
	}
	if movies[0].ID != "tt3" || movies[1].ID != "tt2" {
		t.Fatalf("high_rated order = %s, %s", movies[0].ID, movies[1].ID)
	}
}

func TestMoviesByCategoryGenre(t *testing.T) {
	env := newTestEnv(t)
	seedMovie(t, env, "tt1", "Punchline", []string{"Comedy"}, 6.0)
	seedMovie(t, env, "tt2", "Explosions", []string{"Action"}, 7.0)
	seedMovie(t, env, "tt3", "Both", []string{"Action", "Comedy"}, 8.0)

	// the lowercase category queries the capitalized stored genre
	movies, err := env.app.MoviesByCategory("action")
	if err != nil {
		t.Fatalf("action: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("action count = %d, want 2", len(movies))
	}
	if movies[0].ID != "tt3" {
		t.Fatalf("action top = %s, want tt3", movies[0].ID)
	}
}

func TestMoviesByCategoryUnknown(t *testing.T) {
	env := newTestEnv(t)
	if _, err := env.app.MoviesByCategory("horror"); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestMoviesByCategoryEmptyShelf(t *testing.T) {
	env := newTestEnv(t)
	// an empty shelf for a valid category is not a service error; the HTTP
	// layer renders it as a not-found response, distinct from the invalid
	// argument an unknown category raises
	movies, err := env.app.MoviesByCategory("comedy")
	if err != nil {
		t.Fatalf("comedy: %v", err)
	}
	if len(movies) != 0 {
		t.Fatalf("comedy count = %d, want 0", len(movies))
	}
}
