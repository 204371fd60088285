package tmdb

import (
	"context"
	"sync"
)

// GenreSource is the subset of the client the cache needs.
type GenreSource interface {
	MovieGenres(ctx context.Context) (map[int64]string, error)
	TVGenres(ctx context.Context) (map[int64]string, error)
}

// GenreCache lazily resolves genre ids to display names. The movie and TV
// genre lists are fetched once on first use and merged; when both lists
// define an id the TV name wins because it is fetched second. Concurrent
// first uses may fetch twice, which is harmless.
type GenreCache struct {
	source GenreSource

	mu     sync.Mutex
	names  map[int64]string
	loaded bool
}

// NewGenreCache creates an empty cache backed by the supplied source.
func NewGenreCache(source GenreSource) *GenreCache {
	return &GenreCache{source: source}
}

// Names resolves the supplied genre ids, dropping any that are unknown.
func (g *GenreCache) Names(ctx context.Context, ids []int64) []string {
	if g == nil || len(ids) == 0 {
		return nil
	}
	table := g.lookupTable(ctx)
	if len(table) == 0 {
		return nil
	}
	resolved := make([]string, 0, len(ids))
	for _, id := range ids {
		if name, ok := table[id]; ok {
			resolved = append(resolved, name)
		}
	}
	return resolved
}

func (g *GenreCache) lookupTable(ctx context.Context) map[int64]string {
	g.mu.Lock()
	if g.loaded {
		table := g.names
		g.mu.Unlock()
		return table
	}
	g.mu.Unlock()

	if g.source == nil {
		return nil
	}
	merged := make(map[int64]string)
	movieGenres, movieErr := g.source.MovieGenres(ctx)
	for id, name := range movieGenres {
		merged[id] = name
	}
	tvGenres, tvErr := g.source.TVGenres(ctx)
	for id, name := range tvGenres {
		merged[id] = name
	}
	if movieErr != nil || tvErr != nil {
		// Partial fetch stays uncached so a later call can retry.
		if len(merged) == 0 {
			return nil
		}
		return merged
	}

	g.mu.Lock()
	g.names = merged
	g.loaded = true
	g.mu.Unlock()
	return merged
}
