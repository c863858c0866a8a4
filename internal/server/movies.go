package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"reelbase/pkg/domain"
	"reelbase/pkg/store"
)

func (s *Server) handleFetchMovie(w http.ResponseWriter, r *http.Request) {
	movie, fetched, err := s.app.GetOrFetchMovie(r.Context(), r.PathValue("title"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	message := "Movie found in database"
	if fetched {
		message = "Movie fetched and saved"
	}
	writeData(w, http.StatusOK, message, movie)
}

func (s *Server) handleSearchMovies(w http.ResponseWriter, r *http.Request) {
	items, err := s.app.SearchMovies(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	if len(items) == 0 {
		writeJSON(w, http.StatusNotFound, envelope{Message: "No movie Found"})
		return
	}
	writeData(w, http.StatusOK, "Search results", items)
}

func (s *Server) handleListMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.app.ListMovies(store.MovieFilter{})
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Movies", movies)
}

func (s *Server) handleFilterMovies(w http.ResponseWriter, r *http.Request) {
	filter := store.MovieFilter{
		Genre: r.URL.Query().Get("genre"),
		Year:  r.URL.Query().Get("year"),
	}
	movies, err := s.app.ListMovies(filter)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Filtered movies", movies)
}

func (s *Server) handlePopularMovies(w http.ResponseWriter, r *http.Request) {
	movies, err := s.app.MoviesByCategory("popular")
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Popular movies", movies)
}

func (s *Server) handleMoviesByCategory(w http.ResponseWriter, r *http.Request) {
	category := r.PathValue("category")
	movies, err := s.app.MoviesByCategory(category)
	if err != nil {
		writeAppError(w, err)
		return
	}
	// an empty shelf for a known category is a not-found response, not an
	// invalid category
	if len(movies) == 0 {
		writeJSON(w, http.StatusNotFound, envelope{Message: fmt.Sprintf("No movies found in '%s' category", category)})
		return
	}
	writeData(w, http.StatusOK, "Movies by category", movies)
}

func (s *Server) handleGetMovie(w http.ResponseWriter, r *http.Request) {
	movie, err := s.app.GetMovieByID(r.PathValue("id"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Movie", movie)
}

func (s *Server) handleUpdateMovie(w http.ResponseWriter, r *http.Request, _ domain.User) {
	var patch map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	movie, err := s.app.UpdateMovie(r.PathValue("id"), patch)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Movie updated", movie)
}

func (s *Server) handleDeleteMovie(w http.ResponseWriter, r *http.Request) {
	if err := s.app.DeleteMovie(r.PathValue("id")); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: "Movie deleted"})
}
