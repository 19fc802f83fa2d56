package dex

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/notjagan/dexweb/pkg/cache"
	"github.com/notjagan/dexweb/pkg/pokeapi"
	"github.com/notjagan/dexweb/pkg/typechart"
)

type Ability struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	IsHidden    bool   `json:"isHidden"`
}

type Stat struct {
	Name string `json:"name"`
	Base int    `json:"base"`
}

// Pokemon is the detail record rendered by the dex view. The dex
// back-pointer powers the lazy relations and is not serialized.
type Pokemon struct {
	dex *Dex

	ID          int       `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	SpeciesID   int       `json:"speciesId"`
	Sprites     Sprites   `json:"sprites"`
	Types       []string  `json:"types"`
	Abilities   []Ability `json:"abilities"`
	Stats       []Stat    `json:"stats"`

	effectiveness typechart.Table
	evolution     *Evolution
}

type Sprites struct {
	Default string `json:"default"`
	Shiny   string `json:"shiny,omitempty"`
}

func detailKey(idOrName string) string {
	return "pokemon:" + strings.ToLower(idOrName)
}

func fromRecord(d *Dex, rec *pokeapi.Pokemon) (*Pokemon, error) {
	speciesID, err := rec.Species.ID()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve species for pokemon %q: %w", rec.Name, err)
	}

	types := make([]string, len(rec.Types))
	for _, slot := range rec.Types {
		if slot.Slot < 1 || slot.Slot > len(types) {
			return nil, fmt.Errorf("pokemon %q has type in slot %d: %w", rec.Name, slot.Slot, pokeapi.ErrUnexpectedAPI)
		}
		types[slot.Slot-1] = slot.Type.Name
	}

	abilities := make([]Ability, len(rec.Abilities))
	for i, slot := range rec.Abilities {
		abilities[i] = Ability{
			Name:        slot.Ability.Name,
			DisplayName: pokeapi.DisplayName(slot.Ability.Name),
			IsHidden:    slot.IsHidden,
		}
	}

	stats := make([]Stat, len(rec.Stats))
	for i, sv := range rec.Stats {
		stats[i] = Stat{Name: sv.Stat.Name, Base: sv.BaseStat}
	}

	return &Pokemon{
		dex:         d,
		ID:          rec.ID,
		Name:        rec.Name,
		DisplayName: pokeapi.DisplayName(rec.Name),
		SpeciesID:   speciesID,
		Sprites: Sprites{
			Default: rec.Sprites.FrontDefault,
			Shiny:   rec.Sprites.FrontShiny,
		},
		Types:     types,
		Abilities: abilities,
		Stats:     stats,
	}, nil
}

// PokemonByIDOrName returns the detail record, serving from the cache
// while it is fresh and refetching otherwise.
func (d *Dex) PokemonByIDOrName(ctx context.Context, idOrName string) (*Pokemon, error) {
	var pokemon Pokemon
	err := d.store.Get(ctx, detailKey(idOrName), d.detailWindow, &pokemon)
	if err == nil {
		pokemon.dex = d
		return &pokemon, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		return nil, fmt.Errorf("failed to read pokemon %q from cache: %w", idOrName, err)
	}

	rec, err := d.client.Pokemon(ctx, idOrName)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pokemon %q: %w", idOrName, err)
	}

	p, err := fromRecord(d, rec)
	if err != nil {
		return nil, err
	}

	// Store under both the id and name keys so preloads by id satisfy
	// later lookups by name.
	err = d.store.Put(ctx, detailKey(strconv.Itoa(p.ID)), p)
	if err != nil {
		return nil, fmt.Errorf("failed to cache pokemon %d: %w", p.ID, err)
	}
	err = d.store.Put(ctx, detailKey(p.Name), p)
	if err != nil {
		return nil, fmt.Errorf("failed to cache pokemon %q: %w", p.Name, err)
	}

	return p, nil
}

// PokemonByID is PokemonByIDOrName for a numeric id.
func (d *Dex) PokemonByID(ctx context.Context, id int) (*Pokemon, error) {
	return d.PokemonByIDOrName(ctx, strconv.Itoa(id))
}

// Invalidate drops the cached detail record for a pokemon, backing the
// manual retry affordance.
func (d *Dex) Invalidate(ctx context.Context, idOrName string) error {
	err := d.store.Invalidate(ctx, detailKey(idOrName))
	if err != nil {
		return fmt.Errorf("failed to invalidate pokemon %q: %w", idOrName, err)
	}

	return nil
}

func typeKey(name string) string {
	return "type:" + name
}

// damageRelation loads the damage triple for one defending type. Type
// data is immutable in practice, so it shares the long list window.
func (d *Dex) damageRelation(ctx context.Context, name string) (*typechart.DamageRelation, error) {
	var rel typechart.DamageRelation
	err := d.store.Get(ctx, typeKey(name), d.listWindow, &rel)
	if err == nil {
		return &rel, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		return nil, fmt.Errorf("failed to read type %q from cache: %w", name, err)
	}

	rec, err := d.client.Type(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch type %q: %w", name, err)
	}

	rel = typechart.DamageRelation{
		Type:             rec.Name,
		DoubleDamageFrom: resourceNames(rec.DamageRelations.DoubleDamageFrom),
		HalfDamageFrom:   resourceNames(rec.DamageRelations.HalfDamageFrom),
		NoDamageFrom:     resourceNames(rec.DamageRelations.NoDamageFrom),
	}

	err = d.store.Put(ctx, typeKey(name), rel)
	if err != nil {
		return nil, fmt.Errorf("failed to cache type %q: %w", name, err)
	}

	return &rel, nil
}

// Relations loads the damage triples for a set of defending types, all
// or nothing.
func (d *Dex) Relations(ctx context.Context, names []string) ([]typechart.DamageRelation, error) {
	relations := make([]typechart.DamageRelation, len(names))
	for i, name := range names {
		rel, err := d.damageRelation(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("could not get damage relation for defending type %q: %w", name, err)
		}
		relations[i] = *rel
	}

	return relations, nil
}

func resourceNames(resources []pokeapi.NamedResource) []string {
	names := make([]string, len(resources))
	for i, res := range resources {
		names[i] = res.Name
	}
	return names
}

// Effectiveness computes the defensive chart for the pokemon. A failed
// relation fetch fails the whole computation; there is no silent
// partial table.
func (p *Pokemon) Effectiveness(ctx context.Context) (typechart.Table, error) {
	if p.effectiveness != nil {
		return p.effectiveness, nil
	}

	relations, err := p.dex.Relations(ctx, p.Types)
	if err != nil {
		return nil, fmt.Errorf("could not get damage relations for pokemon %q: %w", p.Name, err)
	}

	abilities := make([]string, len(p.Abilities))
	for i, ability := range p.Abilities {
		abilities[i] = ability.Name
	}

	table, err := typechart.Compute(relations, abilities)
	if err != nil {
		return nil, fmt.Errorf("could not compute effectiveness for pokemon %q: %w", p.Name, err)
	}
	p.effectiveness = table

	return table, nil
}

// NavLink points at a numeric neighbor for prev/next pagination.
type NavLink struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

// NavLinks resolves the pokemon's numeric neighbors against the index.
// A neighbor outside the valid id range is nil.
func (p *Pokemon) NavLinks(ctx context.Context) (prev, next *NavLink, err error) {
	link := func(id int) (*NavLink, error) {
		if id < 1 || id > p.dex.maxID {
			return nil, nil
		}
		entry, err := p.dex.indexByID(ctx, id)
		if err != nil {
			if errors.Is(err, pokeapi.ErrNotFound) {
				return nil, nil
			}
			return nil, err
		}
		return &NavLink{ID: entry.ID, Name: entry.Name, DisplayName: entry.DisplayName}, nil
	}

	prev, err = link(p.ID - 1)
	if err != nil {
		return nil, nil, fmt.Errorf("could not resolve previous link for pokemon %q: %w", p.Name, err)
	}
	next, err = link(p.ID + 1)
	if err != nil {
		return nil, nil, fmt.Errorf("could not resolve next link for pokemon %q: %w", p.Name, err)
	}

	return prev, next, nil
}
