package server

import (
	"log"
	"net/http"
	"strconv"

	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/typechart"
)

const defaultPageLimit = 50

func (s *Server) registerRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/types", s.handleTypes)
	mux.HandleFunc("GET /api/pokedex", s.handlePokedex)
	mux.HandleFunc("GET /api/pokemon/{idOrName}", s.handlePokemon)
	mux.HandleFunc("POST /api/pokemon/{idOrName}/retry", s.handleRetry)
	mux.HandleFunc("GET /api/pokemon/{idOrName}/effectiveness", s.handleEffectiveness)
	mux.HandleFunc("GET /api/quiz", s.handleQuizRound)
	mux.HandleFunc("POST /api/quiz/score", s.handleQuizScore)
	mux.HandleFunc("GET /api/quiz/play", s.handleQuizPlay)
	mux.HandleFunc("GET /api/romhack/pokedex", s.handleRomhackPokedex)
	mux.HandleFunc("GET /api/romhack/pokemon/{name}", s.handleRomhackPokemon)
	mux.HandleFunc("GET /api/romhack/pokemon/{name}/effectiveness", s.handleRomhackEffectiveness)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "no such route", false)
	})
}

func (s *Server) handleTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, typechart.Types())
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return fallback
	}

	return value
}

func (s *Server) handlePokedex(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	limit := queryInt(r, "limit", defaultPageLimit)
	offset := queryInt(r, "offset", 0)

	results, hasNext, err := s.dex.Search(r.Context(), query, limit, offset)
	if err != nil {
		writeFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"hasNext": hasNext,
	})
}

type pokemonResponse struct {
	*dex.Pokemon
	Prev      *dex.NavLink   `json:"prev,omitempty"`
	Next      *dex.NavLink   `json:"next,omitempty"`
	Evolution *dex.Evolution `json:"evolution,omitempty"`
}

func (s *Server) handlePokemon(w http.ResponseWriter, r *http.Request) {
	pokemon, err := s.dex.PokemonByIDOrName(r.Context(), r.PathValue("idOrName"))
	if err != nil {
		writeFromError(w, err)
		return
	}

	resp := pokemonResponse{Pokemon: pokemon}

	prev, next, err := pokemon.NavLinks(r.Context())
	if err != nil {
		// The record itself is renderable; neighbors are decoration.
		log.Printf("could not resolve nav links for pokemon %q: %v", pokemon.Name, err)
	} else {
		resp.Prev = prev
		resp.Next = next
	}

	evo, err := pokemon.Evolution(r.Context())
	if err != nil {
		log.Printf("could not resolve evolution for pokemon %q: %v", pokemon.Name, err)
	} else {
		resp.Evolution = evo
	}

	s.dex.Preload(pokemon.ID)

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRetry(w http.ResponseWriter, r *http.Request) {
	idOrName := r.PathValue("idOrName")
	err := s.dex.Invalidate(r.Context(), idOrName)
	if err != nil {
		writeFromError(w, err)
		return
	}

	pokemon, err := s.dex.PokemonByIDOrName(r.Context(), idOrName)
	if err != nil {
		writeFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, pokemonResponse{Pokemon: pokemon})
}

type effectivenessResponse struct {
	Pokemon        string            `json:"pokemon"`
	DefendingTypes []string          `json:"defendingTypes"`
	Table          typechart.Table   `json:"table"`
	Groups         []typechart.Group `json:"groups"`
	SuperEffective []string          `json:"superEffective"`
}

func (s *Server) handleEffectiveness(w http.ResponseWriter, r *http.Request) {
	pokemon, err := s.dex.PokemonByIDOrName(r.Context(), r.PathValue("idOrName"))
	if err != nil {
		writeFromError(w, err)
		return
	}

	table, err := pokemon.Effectiveness(r.Context())
	if err != nil {
		writeFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, effectivenessResponse{
		Pokemon:        pokemon.Name,
		DefendingTypes: pokemon.Types,
		Table:          table,
		Groups:         table.Groups(true),
		SuperEffective: table.SuperEffective(),
	})
}

func (s *Server) handleRomhackPokedex(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.romhack.All())
}

func (s *Server) handleRomhackPokemon(w http.ResponseWriter, r *http.Request) {
	pokemon, err := s.romhack.ByName(r.PathValue("name"))
	if err != nil {
		writeFromError(w, err)
		return
	}

	resp := map[string]any{"pokemon": pokemon}
	evo, err := s.romhack.EvolutionOverride(pokemon.Name)
	if err == nil {
		resp["evolution"] = evo
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRomhackEffectiveness(w http.ResponseWriter, r *http.Request) {
	pokemon, err := s.romhack.ByName(r.PathValue("name"))
	if err != nil {
		writeFromError(w, err)
		return
	}

	relations, err := s.dex.Relations(r.Context(), pokemon.FinalTypes)
	if err != nil {
		writeFromError(w, err)
		return
	}

	abilities := pokemon.FinalAbilities
	if pokemon.HiddenAbility != "" {
		abilities = append(append([]string{}, abilities...), pokemon.HiddenAbility)
	}

	table, err := typechart.Compute(relations, abilities)
	if err != nil {
		writeFromError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, effectivenessResponse{
		Pokemon:        pokemon.Name,
		DefendingTypes: pokemon.FinalTypes,
		Table:          table,
		Groups:         table.Groups(true),
		SuperEffective: table.SuperEffective(),
	})
}
