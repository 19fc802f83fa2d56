package quiz

import (
	"context"
	"errors"
	"fmt"

	"github.com/notjagan/dexweb/pkg/dex"
	"github.com/notjagan/dexweb/pkg/typechart"
)

// Game builds quiz rounds over a dex.
type Game struct {
	dex         *dex.Dex
	maxAttempts int
}

func NewGame(d *dex.Dex, maxAttempts int) *Game {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	return &Game{dex: d, maxAttempts: maxAttempts}
}

// Round is one quiz question: a creature and its precomputed chart.
type Round struct {
	Pokemon *dex.Pokemon
	Table   typechart.Table
}

var ErrNoRound = errors.New("could not build a quiz round")

// NewRound picks a random creature whose defensive chart can be
// computed, retrying transient failures up to the configured attempt
// count before surfacing a terminal error.
func (g *Game) NewRound(ctx context.Context) (*Round, error) {
	var lastErr error
	for attempt := 0; attempt < g.maxAttempts; attempt++ {
		pokemon, err := g.dex.Random(ctx, 1)
		if err != nil {
			lastErr = err
			continue
		}

		table, err := pokemon.Effectiveness(ctx)
		if err != nil {
			lastErr = err
			continue
		}

		return &Round{Pokemon: pokemon, Table: table}, nil
	}

	return nil, fmt.Errorf("%w after %d attempts: %w", ErrNoRound, g.maxAttempts, lastErr)
}

// Score grades a guess against this round's chart.
func (r *Round) Score(selected []string) Result {
	return Score(selected, r.Table)
}
