package server

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/pokeapi"
	"github.com/notjagan/dexweb/pkg/quiz"
	"github.com/notjagan/dexweb/pkg/romhack"
	"github.com/notjagan/dexweb/pkg/typechart"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

// errorBody is the uniform error payload. Retryable tells the UI to
// render a retry affordance.
type errorBody struct {
	Error     string `json:"error"`
	Retryable bool   `json:"retryable"`
}

func writeError(w http.ResponseWriter, status int, message string, retryable bool) {
	writeJSON(w, status, errorBody{Error: message, Retryable: retryable})
}

// writeFromError maps domain errors onto HTTP statuses. Not-found is
// terminal; upstream failures are retryable.
func writeFromError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, pokeapi.ErrNotFound), errors.Is(err, romhack.ErrNotFound):
		writeError(w, http.StatusNotFound, "no matching record", false)
	case errors.Is(err, typechart.ErrUnknownType):
		writeError(w, http.StatusBadRequest, err.Error(), false)
	case errors.Is(err, dex.ErrAllFailed), errors.Is(err, quiz.ErrNoRound):
		writeError(w, http.StatusBadGateway, "data source unavailable", true)
	default:
		writeError(w, http.StatusBadGateway, "failed to reach data source", true)
	}
}
