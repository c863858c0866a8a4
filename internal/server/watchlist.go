package server

import (
	"encoding/json"
	"io"
	"net/http"

	"reelbase/pkg/domain"
)

type watchlistRequest struct {
	MovieID string `json:"movieId"`
}

func (s *Server) handleWatchlistAdd(w http.ResponseWriter, r *http.Request, _ domain.User) {
	var req watchlistRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ids, err := s.app.WatchlistAdd(r.PathValue("uid"), req.MovieID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Added to watchlist", ids)
}

func (s *Server) handleWatchlistGet(w http.ResponseWriter, r *http.Request, _ domain.User) {
	ids, err := s.app.Watchlist(r.PathValue("uid"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Watchlist", ids)
}

func (s *Server) handleWatchlistRemove(w http.ResponseWriter, r *http.Request, _ domain.User) {
	var req watchlistRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	ids, err := s.app.WatchlistRemove(r.PathValue("uid"), req.MovieID)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Removed from watchlist", ids)
}
