// Package dex orchestrates the remote data fetcher and the expiring
// cache into the Pokédex views: detail lookups, the searchable index,
// defensive type charts and neighbor preloading.
package dex

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/notjagan/dexweb/pkg/cache"
	"github.com/notjagan/dexweb/pkg/pokeapi"
)

type Dex struct {
	client *pokeapi.Client
	store  *cache.Store

	listWindow   time.Duration
	detailWindow time.Duration
	maxID        int
	pageSize     int
	logf         func(format string, args ...any)

	preloads sync.WaitGroup
}

type Options struct {
	ListWindow   time.Duration
	DetailWindow time.Duration
	MaxID        int
}

func New(client *pokeapi.Client, store *cache.Store, opts Options) *Dex {
	return &Dex{
		client:       client,
		store:        store,
		listWindow:   opts.ListWindow,
		detailWindow: opts.DetailWindow,
		maxID:        opts.MaxID,
		pageSize:     200,
		logf:         log.Printf,
	}
}

// MaxID is the highest valid dex number for navigation purposes.
func (d *Dex) MaxID() int {
	return d.maxID
}

// IndexEntry is one row of the minimal name/id index used for search
// and neighbor naming.
type IndexEntry struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
}

var ErrAllFailed = errors.New("every batch member failed")

const indexKey = "index"

// Index returns the full name/id listing, from cache when fresh. Pages
// are fetched concurrently; a failed page drops its entries, and only
// the failure of every page fails the load.
func (d *Dex) Index(ctx context.Context) ([]IndexEntry, error) {
	var entries []IndexEntry
	err := d.store.Get(ctx, indexKey, d.listWindow, &entries)
	if err == nil {
		return entries, nil
	}
	if !errors.Is(err, cache.ErrMiss) {
		return nil, fmt.Errorf("failed to read index from cache: %w", err)
	}

	first, err := d.client.ListPokemon(ctx, d.pageSize, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch first index page: %w", err)
	}

	count := first.Count
	pages := (count + d.pageSize - 1) / d.pageSize

	results := make([][]pokeapi.NamedResource, pages)
	results[0] = first.Results

	var wg sync.WaitGroup
	var mu sync.Mutex
	failures := 0
	for page := 1; page < pages; page++ {
		page := page
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, err := d.client.ListPokemon(ctx, d.pageSize, page*d.pageSize)
			if err != nil {
				d.logf("index page %d dropped: %v", page, err)
				mu.Lock()
				failures++
				mu.Unlock()
				return
			}
			results[page] = p.Results
		}()
	}
	wg.Wait()

	if pages > 1 && failures == pages-1 {
		return nil, fmt.Errorf("failed to fetch index pages: %w", ErrAllFailed)
	}

	entries = make([]IndexEntry, 0, count)
	for _, page := range results {
		for _, res := range page {
			id, err := res.ID()
			if err != nil {
				d.logf("index entry %q dropped: %v", res.Name, err)
				continue
			}
			entries = append(entries, IndexEntry{
				ID:          id,
				Name:        res.Name,
				DisplayName: pokeapi.DisplayName(res.Name),
			})
		}
	}

	err = d.store.Put(ctx, indexKey, entries)
	if err != nil {
		return nil, fmt.Errorf("failed to cache index: %w", err)
	}

	return entries, nil
}

// Search filters the index by a free-text query matching either a name
// substring or an id substring. An empty query matches everything.
func (d *Dex) Search(ctx context.Context, query string, limit, offset int) ([]IndexEntry, bool, error) {
	entries, err := d.Index(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to load index for search: %w", err)
	}

	needle := strings.ToLower(strings.TrimSpace(query))
	matches := make([]IndexEntry, 0, len(entries))
	for _, entry := range entries {
		if needle == "" ||
			strings.Contains(entry.Name, needle) ||
			strings.Contains(strconv.Itoa(entry.ID), needle) {
			matches = append(matches, entry)
		}
	}

	if offset >= len(matches) {
		return []IndexEntry{}, false, nil
	}
	matches = matches[offset:]

	hasNext := false
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
		hasNext = true
	}

	return matches, hasNext, nil
}

// indexByID returns the index entry for the given id, if present.
func (d *Dex) indexByID(ctx context.Context, id int) (*IndexEntry, error) {
	entries, err := d.Index(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.ID == id {
			return &entry, nil
		}
	}

	return nil, fmt.Errorf("no index entry with id %d: %w", id, pokeapi.ErrNotFound)
}
