package omdb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestFetchByTitle(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("t")
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("apiKey = %q", r.URL.Query().Get("apiKey"))
		}
		w.Write([]byte(`{
			"Title": "Inception",
			"Year": "2010",
			"Genre": "Action, Sci-Fi",
			"imdbID": "tt1375666",
			"imdbRating": "8.8",
			"Poster": "https://img.example/p.jpg",
			"Type": "movie",
			"Director": "Christopher Nolan",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	detail, err := client.FetchByTitle(context.Background(), "Inception")
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if gotQuery != "Inception" {
		t.Fatalf("t query = %q", gotQuery)
	}
	if detail.ImdbID != "tt1375666" || detail.ImdbRating != "8.8" {
		t.Fatalf("detail = %+v", detail)
	}
	if detail.Raw["Director"] != "Christopher Nolan" {
		t.Fatalf("raw payload not retained: %v", detail.Raw)
	}
	if _, ok := detail.Raw["Response"]; ok {
		t.Fatal("envelope field must not leak into the raw payload")
	}
}

func TestFetchByTitleNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Movie not found!"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	_, err := client.FetchByTitle(context.Background(), "No Such Movie")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestFetchByTitleAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"Response":"False","Error":"Invalid API key!"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad-key")
	_, err := client.FetchByTitle(context.Background(), "Inception")
	if err == nil || errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want non-not-found API error", err)
	}
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("s") != "batman" {
			t.Errorf("s query = %q", r.URL.Query().Get("s"))
		}
		w.Write([]byte(`{
			"Search": [
				{"Title": "Batman Begins", "Year": "2005", "imdbID": "tt0372784", "Type": "movie"},
				{"Title": "The Batman", "Year": "2022", "imdbID": "tt1877830", "Type": "movie"}
			],
			"totalResults": "2",
			"Response": "True"
		}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	items, err := client.Search(context.Background(), "batman")
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(items) != 2 || items[0].ImdbID != "tt0372784" {
		t.Fatalf("items = %+v", items)
	}
}

func TestFetchByTitleHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "test-key")
	if _, err := client.FetchByTitle(context.Background(), "Inception"); err == nil {
		t.Fatal("expected error for HTTP 401")
	}
}
