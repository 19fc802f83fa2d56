package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/notjagan/dexweb/pkg/cache"
	"github.com/notjagan/dexweb/pkg/config"
	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/pokeapi"
	"github.com/notjagan/dexweb/pkg/romhack"
	"github.com/notjagan/dexweb/pkg/server"
)

// upstream fakes the remote data API with a three-member dex.
type upstream struct {
	mu   sync.Mutex
	hits map[string]int

	srv *httptest.Server
}

func newUpstream(t *testing.T) *upstream {
	t.Helper()

	u := &upstream{hits: make(map[string]int)}
	u.srv = httptest.NewServer(http.HandlerFunc(u.handle))
	t.Cleanup(u.srv.Close)

	return u
}

func (u *upstream) count(path string) int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.hits[path]
}

func (u *upstream) handle(w http.ResponseWriter, r *http.Request) {
	u.mu.Lock()
	u.hits[r.URL.Path]++
	u.mu.Unlock()

	writeJSON := func(v any) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(v)
	}

	names := map[string]int{"bulbasaur": 1, "ivysaur": 2, "venusaur": 3}
	ids := map[int]string{1: "bulbasaur", 2: "ivysaur", 3: "venusaur"}
	base := u.srv.URL

	switch {
	case r.URL.Path == "/pokemon":
		results := make([]map[string]string, 0, len(ids))
		for id := 1; id <= len(ids); id++ {
			results = append(results, map[string]string{
				"name": ids[id],
				"url":  fmt.Sprintf("%s/pokemon/%d/", base, id),
			})
		}
		writeJSON(map[string]any{"count": len(results), "results": results})

	case strings.HasPrefix(r.URL.Path, "/pokemon-species/"):
		writeJSON(map[string]any{
			"id":              1,
			"evolution_chain": map[string]string{"url": base + "/evolution-chain/1/"},
		})

	case strings.HasPrefix(r.URL.Path, "/evolution-chain/"):
		writeJSON(map[string]any{
			"id": 1,
			"chain": map[string]any{
				"species":    map[string]string{"name": "bulbasaur"},
				"evolves_to": []any{},
			},
		})

	case strings.HasPrefix(r.URL.Path, "/pokemon/"):
		key := strings.Trim(strings.TrimPrefix(r.URL.Path, "/pokemon/"), "/")
		id, ok := names[key]
		if !ok {
			var err error
			id, err = strconv.Atoi(key)
			if err != nil || ids[id] == "" {
				http.NotFound(w, r)
				return
			}
		}
		writeJSON(map[string]any{
			"id":      id,
			"name":    ids[id],
			"sprites": map[string]string{"front_default": fmt.Sprintf("%s/sprites/%d.png", base, id)},
			"abilities": []map[string]any{
				{"ability": map[string]string{"name": "overgrow"}, "is_hidden": false, "slot": 1},
			},
			"stats": []map[string]any{
				{"base_stat": 45, "stat": map[string]string{"name": "hp"}},
			},
			"types": []map[string]any{
				{"slot": 1, "type": map[string]string{"name": "grass"}},
				{"slot": 2, "type": map[string]string{"name": "poison"}},
			},
			"species": map[string]string{"name": ids[id], "url": fmt.Sprintf("%s/pokemon-species/%d/", base, id)},
		})

	case strings.HasPrefix(r.URL.Path, "/type/"):
		name := strings.Trim(strings.TrimPrefix(r.URL.Path, "/type/"), "/")
		relations := map[string]map[string][]string{
			"grass": {
				"double": {"fire", "ice", "poison", "flying", "bug"},
				"half":   {"water", "grass", "electric", "ground"},
			},
			"poison": {
				"double": {"ground", "psychic"},
				"half":   {"grass", "fighting", "poison", "bug", "fairy"},
			},
		}
		rel, ok := relations[name]
		if !ok {
			http.NotFound(w, r)
			return
		}
		toResources := func(names []string) []map[string]string {
			out := make([]map[string]string, len(names))
			for i, n := range names {
				out[i] = map[string]string{"name": n}
			}
			return out
		}
		writeJSON(map[string]any{
			"id":   1,
			"name": name,
			"damage_relations": map[string]any{
				"double_damage_from": toResources(rel["double"]),
				"half_damage_from":   toResources(rel["half"]),
				"no_damage_from":     []any{},
			},
		})

	default:
		http.NotFound(w, r)
	}
}

type testApp struct {
	srv      *httptest.Server
	dex      *dex.Dex
	upstream *upstream
}

func newApp(t *testing.T) *testApp {
	t.Helper()

	u := newUpstream(t)

	store, err := cache.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})

	cfg := config.Default()
	cfg.API.BaseURL = u.srv.URL
	cfg.Dex.MaxID = 3

	d := dex.New(pokeapi.New(u.srv.URL), store, dex.Options{
		ListWindow:   24 * time.Hour,
		DetailWindow: 5 * time.Minute,
		MaxID:        3,
	})

	rh, err := romhack.Load()
	if err != nil {
		t.Fatalf("load romhack dex: %v", err)
	}

	srv := httptest.NewServer(server.New(cfg, d, rh).Handler())
	t.Cleanup(srv.Close)

	return &testApp{srv: srv, dex: d, upstream: u}
}

func getJSON(t *testing.T, url string, dest any) int {
	t.Helper()

	resp, err := http.Get(url)
	if err != nil {
		t.Fatalf("get %s: %v", url, err)
	}
	defer resp.Body.Close()

	if dest != nil {
		if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
			t.Fatalf("decode %s: %v", url, err)
		}
	}

	return resp.StatusCode
}

func TestTypesEndpoint(t *testing.T) {
	app := newApp(t)

	var types []map[string]any
	if code := getJSON(t, app.srv.URL+"/api/types", &types); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(types) != 18 {
		t.Errorf("expected 18 types, got %d", len(types))
	}
}

func TestPokedexSearch(t *testing.T) {
	app := newApp(t)

	var body struct {
		Results []dex.IndexEntry `json:"results"`
		HasNext bool             `json:"hasNext"`
	}
	code := getJSON(t, app.srv.URL+"/api/pokedex?q=ivy", &body)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Results) != 1 || body.Results[0].Name != "ivysaur" {
		t.Errorf("unexpected search results: %+v", body.Results)
	}
}

func TestPokemonDetail(t *testing.T) {
	app := newApp(t)

	var body struct {
		ID          int          `json:"id"`
		DisplayName string       `json:"displayName"`
		Next        *dex.NavLink `json:"next"`
		Prev        *dex.NavLink `json:"prev"`
	}
	code := getJSON(t, app.srv.URL+"/api/pokemon/ivysaur", &body)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if body.ID != 2 || body.DisplayName != "Ivysaur" {
		t.Errorf("unexpected detail: %+v", body)
	}
	if body.Prev == nil || body.Prev.Name != "bulbasaur" || body.Next == nil || body.Next.Name != "venusaur" {
		t.Errorf("unexpected nav links: prev=%+v next=%+v", body.Prev, body.Next)
	}

	// The detail view kicks off neighbor preloads.
	app.dex.WaitPreloads()
	if got := app.upstream.count("/pokemon/1"); got != 1 {
		t.Errorf("neighbor 1 fetched %d times, want 1", got)
	}
	if got := app.upstream.count("/pokemon/3"); got != 1 {
		t.Errorf("neighbor 3 fetched %d times, want 1", got)
	}
}

func TestPokemonNotFound(t *testing.T) {
	app := newApp(t)

	var body struct {
		Error     string `json:"error"`
		Retryable bool   `json:"retryable"`
	}
	code := getJSON(t, app.srv.URL+"/api/pokemon/missingno", &body)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
	if body.Retryable {
		t.Error("not-found must not be marked retryable")
	}
}

func TestEffectivenessEndpoint(t *testing.T) {
	app := newApp(t)

	var body struct {
		DefendingTypes []string `json:"defendingTypes"`
		SuperEffective []string `json:"superEffective"`
		Table          []struct {
			Type   string `json:"type"`
			Factor int    `json:"factor"`
		} `json:"table"`
	}
	code := getJSON(t, app.srv.URL+"/api/pokemon/bulbasaur/effectiveness", &body)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(body.Table) != 18 {
		t.Errorf("expected 18 table entries, got %d", len(body.Table))
	}

	want := map[string]bool{"fire": true, "flying": true, "ice": true, "psychic": true}
	if len(body.SuperEffective) != len(want) {
		t.Errorf("unexpected super-effective set: %v", body.SuperEffective)
	}
	for _, name := range body.SuperEffective {
		if !want[name] {
			t.Errorf("unexpected super-effective type %q", name)
		}
	}
}

func TestRetryEndpoint(t *testing.T) {
	app := newApp(t)

	if code := getJSON(t, app.srv.URL+"/api/pokemon/bulbasaur", nil); code != http.StatusOK {
		t.Fatalf("priming load failed: %d", code)
	}

	resp, err := http.Post(app.srv.URL+"/api/pokemon/bulbasaur/retry", "application/json", nil)
	if err != nil {
		t.Fatalf("post retry: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	// Retry invalidates the cache entry and refetches.
	if got := app.upstream.count("/pokemon/bulbasaur"); got != 2 {
		t.Errorf("upstream fetched %d times, want 2", got)
	}
}

func TestQuizRoundAndScore(t *testing.T) {
	app := newApp(t)

	var round struct {
		Pokemon struct {
			Name  string   `json:"name"`
			Types []string `json:"types"`
		} `json:"pokemon"`
		Choices []struct {
			Name string `json:"name"`
		} `json:"choices"`
	}
	code := getJSON(t, app.srv.URL+"/api/quiz", &round)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if round.Pokemon.Name == "" || len(round.Choices) != 18 {
		t.Errorf("unexpected round: %+v", round)
	}

	// Every fake creature is grass/poison, so the winning guess is
	// always the same four types.
	guess := map[string]any{
		"pokemon":  round.Pokemon.Name,
		"selected": []string{"fire", "flying", "ice", "psychic"},
	}
	payload, _ := json.Marshal(guess)
	resp, err := http.Post(app.srv.URL+"/api/quiz/score", "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("post score: %v", err)
	}
	defer resp.Body.Close()

	var scored struct {
		Result struct {
			Win       bool     `json:"win"`
			Incorrect []string `json:"incorrect"`
			Missed    []string `json:"missed"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&scored); err != nil {
		t.Fatalf("decode score: %v", err)
	}
	if !scored.Result.Win {
		t.Errorf("expected winning guess, got %+v", scored.Result)
	}
}

func TestQuizScoreRejectsMalformed(t *testing.T) {
	app := newApp(t)

	resp, err := http.Post(app.srv.URL+"/api/quiz/score", "application/json", strings.NewReader("{"))
	if err != nil {
		t.Fatalf("post score: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestQuizPlayWebsocket(t *testing.T) {
	app := newApp(t)

	url := "ws" + strings.TrimPrefix(app.srv.URL, "http") + "/api/quiz/play"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial quiz websocket: %v", err)
	}
	defer conn.Close()

	var round struct {
		Event   string `json:"event"`
		Pokemon struct {
			Name string `json:"name"`
		} `json:"pokemon"`
	}
	if err := conn.ReadJSON(&round); err != nil {
		t.Fatalf("read round: %v", err)
	}
	if round.Event != "round" || round.Pokemon.Name == "" {
		t.Fatalf("unexpected round message: %+v", round)
	}

	err = conn.WriteJSON(map[string]any{"selected": []string{"fire", "flying", "ice", "psychic"}})
	if err != nil {
		t.Fatalf("write guess: %v", err)
	}

	var result struct {
		Event  string `json:"event"`
		Result struct {
			Win bool `json:"win"`
		} `json:"result"`
	}
	if err := conn.ReadJSON(&result); err != nil {
		t.Fatalf("read result: %v", err)
	}
	if result.Event != "result" || !result.Result.Win {
		t.Errorf("unexpected result message: %+v", result)
	}
}

func TestRomhackEndpoints(t *testing.T) {
	app := newApp(t)

	var all []romhack.Pokemon
	if code := getJSON(t, app.srv.URL+"/api/romhack/pokedex", &all); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(all) == 0 {
		t.Fatal("expected a non-empty romhack dex")
	}

	var detail struct {
		Pokemon   romhack.Pokemon    `json:"pokemon"`
		Evolution *romhack.Evolution `json:"evolution"`
	}
	code := getJSON(t, app.srv.URL+"/api/romhack/pokemon/gloom", &detail)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if detail.Pokemon.DisplayName != "Gloom" {
		t.Errorf("unexpected record: %+v", detail.Pokemon)
	}
	if detail.Evolution == nil || detail.Evolution.Target != "Vileplume" {
		t.Errorf("unexpected evolution override: %+v", detail.Evolution)
	}

	var eff struct {
		SuperEffective []string `json:"superEffective"`
	}
	code = getJSON(t, app.srv.URL+"/api/romhack/pokemon/gloom/effectiveness", &eff)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if len(eff.SuperEffective) != 4 {
		t.Errorf("unexpected super-effective set for gloom: %v", eff.SuperEffective)
	}

	if code := getJSON(t, app.srv.URL+"/api/romhack/pokemon/missingno", nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}

func TestUnknownRoute(t *testing.T) {
	app := newApp(t)

	if code := getJSON(t, app.srv.URL+"/api/nope", nil); code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", code)
	}
}
