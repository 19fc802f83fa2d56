package dex

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
)

var ErrOutOfAttempts = errors.New("random selection ran out of attempts")

// Random picks a random pokemon by id, retrying transient failures up
// to maxAttempts times before giving up.
func (d *Dex) Random(ctx context.Context, maxAttempts int) (*Pokemon, error) {
	if maxAttempts < 1 {
		maxAttempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		id := rand.Intn(d.maxID) + 1
		pokemon, err := d.PokemonByID(ctx, id)
		if err != nil {
			lastErr = err
			d.logf("random pick %d failed (attempt %d/%d): %v", id, attempt+1, maxAttempts, err)
			continue
		}

		return pokemon, nil
	}

	return nil, fmt.Errorf("gave up after %d attempts: %w: %w", maxAttempts, ErrOutOfAttempts, lastErr)
}
