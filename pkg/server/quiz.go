package server

import (
	"encoding/json"
	"net/http"

	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/quiz"
	"github.com/notjagan/dexweb/pkg/typechart"
)

// quizSubject is the part of a round shown to the player. The computed
// chart stays server-side; scoring recomputes it from the cached
// relations.
type quizSubject struct {
	ID          int         `json:"id"`
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	Sprites     dex.Sprites `json:"sprites"`
	Types       []string    `json:"types"`
}

func subjectOf(p *dex.Pokemon) quizSubject {
	return quizSubject{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Sprites:     p.Sprites,
		Types:       p.Types,
	}
}

type quizRoundResponse struct {
	Pokemon quizSubject           `json:"pokemon"`
	Choices []typechart.TypeEntry `json:"choices"`
}

func (s *Server) handleQuizRound(w http.ResponseWriter, r *http.Request) {
	round, err := s.game.NewRound(r.Context())
	if err != nil {
		writeFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizRoundResponse{
		Pokemon: subjectOf(round.Pokemon),
		Choices: typechart.Types(),
	})
}

type quizScoreRequest struct {
	Pokemon  string   `json:"pokemon"`
	Selected []string `json:"selected"`
}

type quizScoreResponse struct {
	Pokemon        string      `json:"pokemon"`
	Result         quiz.Result `json:"result"`
	SuperEffective []string    `json:"superEffective"`
}

func (s *Server) handleQuizScore(w http.ResponseWriter, r *http.Request) {
	var req quizScoreRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "malformed score request", false)
		return
	}
	if req.Pokemon == "" {
		writeError(w, http.StatusBadRequest, "missing pokemon", false)
		return
	}

	pokemon, err := s.dex.PokemonByIDOrName(r.Context(), req.Pokemon)
	if err != nil {
		writeFromError(w, err)
		return
	}

	table, err := pokemon.Effectiveness(r.Context())
	if err != nil {
		writeFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, quizScoreResponse{
		Pokemon:        pokemon.Name,
		Result:         quiz.Score(req.Selected, table),
		SuperEffective: table.SuperEffective(),
	})
}
