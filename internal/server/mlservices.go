package server

import (
	"encoding/json"
	"io"
	"net/http"
)

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	payload, err := s.app.Recommendations(r.Context(), r.PathValue("userId"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Recommendations", payload)
}

func (s *Server) handleTrain(w http.ResponseWriter, r *http.Request) {
	payload, err := s.app.TrainModel(r.Context())
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeData(w, http.StatusOK, "Training triggered", payload)
}

func (s *Server) handleSavePreferences(w http.ResponseWriter, r *http.Request) {
	var prefs map[string]any
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&prefs); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.app.SavePreferences(r.PathValue("userId"), prefs); err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, envelope{Message: "Preferences saved"})
}
