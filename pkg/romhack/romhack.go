// Package romhack serves the bundled dex for the romhack variant from
// static JSON shipped in the binary.
package romhack

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

//go:embed data/pokedex.json data/evolutions.json
var dataFS embed.FS

type Stats struct {
	HP        int `json:"hp"`
	Attack    int `json:"attack"`
	Defense   int `json:"defense"`
	SpAttack  int `json:"sp_attack"`
	SpDefense int `json:"sp_defense"`
	Speed     int `json:"speed"`
}

type Sprites struct {
	Default string `json:"default"`
	Shiny   string `json:"shiny,omitempty"`
}

// Changes flags which aspects of a creature the romhack altered
// relative to the base game.
type Changes struct {
	Stats     bool `json:"stats"`
	Types     bool `json:"types"`
	Abilities bool `json:"abilities"`
	Evolution bool `json:"evolution"`
}

// Pokemon is one record of the romhack dex. HiddenAbility is an
// explicit field in the dataset; when it is empty no ability is marked
// hidden, rather than guessing from position.
type Pokemon struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	DisplayName    string   `json:"displayName"`
	Stats          Stats    `json:"stats"`
	Sprites        Sprites  `json:"sprites"`
	FinalTypes     []string `json:"final_types"`
	FinalAbilities []string `json:"final_abilities"`
	HiddenAbility  string   `json:"hidden_ability,omitempty"`
	Changes        Changes  `json:"changes_bb2r"`
}

// evolutionOverride pairs a display name with its free-text method.
type evolutionOverride struct {
	Name   string `json:"name"`
	Method string `json:"method"`
}

type Dex struct {
	pokemon   []Pokemon
	byName    map[string]*Pokemon
	overrides map[string]string
}

// Load parses the embedded dataset. It is cheap enough to call once at
// startup.
func Load() (*Dex, error) {
	raw, err := dataFS.ReadFile("data/pokedex.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded pokedex data: %w", err)
	}

	var pokemon []Pokemon
	err = json.Unmarshal(raw, &pokemon)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded pokedex data: %w", err)
	}

	raw, err = dataFS.ReadFile("data/evolutions.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded evolution data: %w", err)
	}

	var overrides []evolutionOverride
	err = json.Unmarshal(raw, &overrides)
	if err != nil {
		return nil, fmt.Errorf("failed to decode embedded evolution data: %w", err)
	}

	d := &Dex{
		pokemon:   pokemon,
		byName:    make(map[string]*Pokemon, len(pokemon)),
		overrides: make(map[string]string, len(overrides)),
	}
	for i := range d.pokemon {
		p := &d.pokemon[i]
		d.byName[strings.ToLower(p.Name)] = p
		d.byName[strings.ToLower(p.DisplayName)] = p
	}
	for _, o := range overrides {
		d.overrides[strings.ToLower(o.Name)] = o.Method
	}

	return d, nil
}

// All returns the full dex in dataset order.
func (d *Dex) All() []Pokemon {
	out := make([]Pokemon, len(d.pokemon))
	copy(out, d.pokemon)
	return out
}

var ErrNotFound = errors.New("no matching romhack record")

// ByName looks up a record by slug or display name, ignoring case.
func (d *Dex) ByName(name string) (*Pokemon, error) {
	p, ok := d.byName[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("romhack pokemon %q: %w", name, ErrNotFound)
	}

	return p, nil
}

// EvolutionOverride returns the parsed evolution method override for a
// creature, or ErrNoOverride when the dataset has none for it.
func (d *Dex) EvolutionOverride(name string) (*Evolution, error) {
	text, ok := d.overrides[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("romhack pokemon %q: %w", name, ErrNoOverride)
	}

	evo, err := ParseEvolution(text)
	if err != nil {
		return nil, fmt.Errorf("override for %q: %w", name, err)
	}

	return evo, nil
}
