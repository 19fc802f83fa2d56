// Package pokeapi is a thin read-only client for the public Pokémon
// REST API.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

type Client struct {
	baseURL string
	http    *http.Client
}

// New builds a client against the given base URL, e.g.
// "https://pokeapi.co/api/v2".
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

var (
	ErrNotFound      = errors.New("no matching record")
	ErrUnexpectedAPI = errors.New("unexpected response from data API")
)

func get[T any](ctx context.Context, c *Client, path string, query url.Values) (*T, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request for %q: %w", path, err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request for %q failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("resource %q: %w", path, ErrNotFound)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("resource %q returned status %d: %w", path, resp.StatusCode, ErrUnexpectedAPI)
	}

	var value T
	err = json.NewDecoder(resp.Body).Decode(&value)
	if err != nil {
		return nil, fmt.Errorf("failed to decode response for %q: %w", path, err)
	}

	return &value, nil
}

// NamedResource is the name+url pair the API uses for cross-references.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// ID extracts the numeric identifier from the resource URL.
func (r NamedResource) ID() (int, error) {
	trimmed := strings.TrimRight(r.URL, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return 0, fmt.Errorf("resource url %q has no id segment: %w", r.URL, ErrUnexpectedAPI)
	}

	id, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0, fmt.Errorf("resource url %q has no numeric id: %w", r.URL, ErrUnexpectedAPI)
	}

	return id, nil
}

// Page is one page of the paged pokemon listing.
type Page struct {
	Count    int             `json:"count"`
	Next     *string         `json:"next"`
	Previous *string         `json:"previous"`
	Results  []NamedResource `json:"results"`
}

// ListPokemon fetches one page of the name+url index.
func (c *Client) ListPokemon(ctx context.Context, limit, offset int) (*Page, error) {
	query := url.Values{}
	query.Set("limit", strconv.Itoa(limit))
	query.Set("offset", strconv.Itoa(offset))

	return get[Page](ctx, c, "/pokemon", query)
}

type Sprites struct {
	FrontDefault string `json:"front_default"`
	FrontShiny   string `json:"front_shiny"`
}

type AbilitySlot struct {
	Ability  NamedResource `json:"ability"`
	IsHidden bool          `json:"is_hidden"`
	Slot     int           `json:"slot"`
}

type StatValue struct {
	BaseStat int           `json:"base_stat"`
	Stat     NamedResource `json:"stat"`
}

type TypeSlot struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

type Pokemon struct {
	ID        int           `json:"id"`
	Name      string        `json:"name"`
	Sprites   Sprites       `json:"sprites"`
	Abilities []AbilitySlot `json:"abilities"`
	Stats     []StatValue   `json:"stats"`
	Types     []TypeSlot    `json:"types"`
	Species   NamedResource `json:"species"`
}

// Pokemon fetches a detail record by numeric id or name.
func (c *Client) Pokemon(ctx context.Context, idOrName string) (*Pokemon, error) {
	return get[Pokemon](ctx, c, "/pokemon/"+url.PathEscape(strings.ToLower(idOrName)), nil)
}

type Species struct {
	ID             int `json:"id"`
	EvolutionChain struct {
		URL string `json:"url"`
	} `json:"evolution_chain"`
}

// Species fetches the species record for a pokemon, which links to its
// evolution chain.
func (c *Client) Species(ctx context.Context, id int) (*Species, error) {
	return get[Species](ctx, c, "/pokemon-species/"+strconv.Itoa(id), nil)
}

// ChainLink is one node of the recursive evolution tree.
type ChainLink struct {
	Species   NamedResource `json:"species"`
	EvolvesTo []ChainLink   `json:"evolves_to"`
}

type EvolutionChain struct {
	ID    int       `json:"id"`
	Chain ChainLink `json:"chain"`
}

// EvolutionChain fetches the evolution tree by chain id.
func (c *Client) EvolutionChain(ctx context.Context, id int) (*EvolutionChain, error) {
	return get[EvolutionChain](ctx, c, "/evolution-chain/"+strconv.Itoa(id), nil)
}

// TypeRecord carries the damage-relation triples for one type.
type TypeRecord struct {
	ID              int    `json:"id"`
	Name            string `json:"name"`
	DamageRelations struct {
		DoubleDamageFrom []NamedResource `json:"double_damage_from"`
		HalfDamageFrom   []NamedResource `json:"half_damage_from"`
		NoDamageFrom     []NamedResource `json:"no_damage_from"`
	} `json:"damage_relations"`
}

// Type fetches the damage relations for a type by id or name.
func (c *Client) Type(ctx context.Context, idOrName string) (*TypeRecord, error) {
	return get[TypeRecord](ctx, c, "/type/"+url.PathEscape(strings.ToLower(idOrName)), nil)
}
