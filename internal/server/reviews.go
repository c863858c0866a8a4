package server

import (
	"encoding/json"
	"io"
	"net/http"

	"reelbase/pkg/domain"
)

type reviewRequest struct {
	Rating float64 `json:"rating"`
	Review string  `json:"review"`
}

func (s *Server) handleAddReview(w http.ResponseWriter, r *http.Request, user domain.User) {
	var req reviewRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	review, err := s.app.AddReview(r.PathValue("movieId"), user.ID, req.Rating, req.Review)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusCreated, "Review added", review)
}

func (s *Server) handleListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := s.app.ListReviews(r.PathValue("movieId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Reviews", reviews)
}

func (s *Server) handleEditReview(w http.ResponseWriter, r *http.Request, _ domain.User) {
	var req reviewRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	review, err := s.app.EditReview(r.PathValue("movieId"), r.PathValue("reviewId"), req.Rating, req.Review)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Review updated", review)
}

func (s *Server) handleDeleteReview(w http.ResponseWriter, r *http.Request, _ domain.User) {
	if err := s.app.DeleteReview(r.PathValue("movieId"), r.PathValue("reviewId")); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: "Review deleted"})
}

func (s *Server) handleAverageRating(w http.ResponseWriter, r *http.Request) {
	summary, err := s.app.AverageRating(r.PathValue("movieId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Average rating", summary)
}
