package dex

import (
	"context"
	"strconv"
	"time"
)

// Preload opportunistically fetches the numeric neighbors of id so the
// next prev/next click is served from the cache. It returns
// immediately; fetches run detached from the caller's context so a
// quick navigation away still populates the cache harmlessly. Failures
// are logged and never surfaced.
func (d *Dex) Preload(id int) {
	for _, neighbor := range []int{id - 1, id + 1} {
		if neighbor < 1 || neighbor > d.maxID {
			continue
		}

		neighbor := neighbor
		d.preloads.Add(1)
		go func() {
			defer d.preloads.Done()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			key := detailKey(strconv.Itoa(neighbor))
			cached, err := d.store.Contains(ctx, key, d.detailWindow)
			if err != nil {
				d.logf("preload probe for pokemon %d failed: %v", neighbor, err)
				return
			}
			if cached {
				return
			}

			_, err = d.PokemonByID(ctx, neighbor)
			if err != nil {
				d.logf("preload of pokemon %d failed: %v", neighbor, err)
			}
		}()
	}
}

// WaitPreloads blocks until all in-flight preloads settle. Tests and
// shutdown use it; request handlers never do.
func (d *Dex) WaitPreloads() {
	d.preloads.Wait()
}
