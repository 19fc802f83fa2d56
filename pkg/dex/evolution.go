package dex

import (
	"context"
	"fmt"

	"github.com/notjagan/dexweb/pkg/pokeapi"
)

// Evolution is one node of a species' evolution tree.
type Evolution struct {
	Name        string      `json:"name"`
	DisplayName string      `json:"displayName"`
	EvolvesTo   []Evolution `json:"evolvesTo,omitempty"`
}

func fromChainLink(link pokeapi.ChainLink) Evolution {
	evo := Evolution{
		Name:        link.Species.Name,
		DisplayName: pokeapi.DisplayName(link.Species.Name),
	}
	for _, child := range link.EvolvesTo {
		evo.EvolvesTo = append(evo.EvolvesTo, fromChainLink(child))
	}

	return evo
}

// Evolution resolves the pokemon's evolution tree via its species
// record. The result is memoized on the entity, not the cache: chains
// are small and always rendered next to an already-cached detail.
func (p *Pokemon) Evolution(ctx context.Context) (*Evolution, error) {
	if p.evolution != nil {
		return p.evolution, nil
	}

	species, err := p.dex.client.Species(ctx, p.SpeciesID)
	if err != nil {
		return nil, fmt.Errorf("could not get species for pokemon %q: %w", p.Name, err)
	}

	chainID, err := (pokeapi.NamedResource{URL: species.EvolutionChain.URL}).ID()
	if err != nil {
		return nil, fmt.Errorf("could not resolve evolution chain for pokemon %q: %w", p.Name, err)
	}

	chain, err := p.dex.client.EvolutionChain(ctx, chainID)
	if err != nil {
		return nil, fmt.Errorf("could not get evolution chain %d: %w", chainID, err)
	}

	evo := fromChainLink(chain.Chain)
	p.evolution = &evo

	return &evo, nil
}
