package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"shelfscan/internal/catalog/tmdb"
)

type searchMode string

const (
	searchModeMovie searchMode = "movie"
	searchModeTV    searchMode = "tv"
)

type searchCacheEntry struct {
	results []tmdb.Candidate
	expires time.Time
}

// catalogSearch rate-limits and caches primary-catalog lookups so a shelf
// full of near-identical spines does not hammer the search endpoints.
type catalogSearch struct {
	client     tmdb.Searcher
	cache      map[string]searchCacheEntry
	cacheTTL   time.Duration
	rateLimit  time.Duration
	mu         sync.Mutex
	lastLookup time.Time
}

func newCatalogSearch(client tmdb.Searcher) *catalogSearch {
	if client == nil {
		return &catalogSearch{}
	}
	return &catalogSearch{
		client:     client,
		cache:      make(map[string]searchCacheEntry),
		cacheTTL:   10 * time.Minute,
		rateLimit:  250 * time.Millisecond,
		lastLookup: time.Unix(0, 0),
	}
}

func (s *catalogSearch) search(ctx context.Context, title string, opts tmdb.SearchOptions, mode searchMode) ([]tmdb.Candidate, error) {
	if s == nil || s.client == nil {
		return nil, errors.New("catalog client unavailable")
	}

	key := fmt.Sprintf("%s|%s|%s", mode, strings.ToLower(strings.TrimSpace(title)), opts.CacheKey())
	now := time.Now()

	s.mu.Lock()
	if entry, ok := s.cache[key]; ok && now.Before(entry.expires) {
		results := entry.results
		s.mu.Unlock()
		return results, nil
	}

	wait := s.rateLimit - now.Sub(s.lastLookup)
	if wait > 0 {
		s.mu.Unlock()
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
		s.mu.Lock()
	}
	s.lastLookup = time.Now()
	s.mu.Unlock()

	var (
		results []tmdb.Candidate
		err     error
	)
	switch mode {
	case searchModeTV:
		results, err = s.client.SearchTVWithOptions(ctx, title, opts)
	default:
		results, err = s.client.SearchMovieWithOptions(ctx, title, opts)
	}
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.cache != nil {
		s.cache[key] = searchCacheEntry{results: results, expires: time.Now().Add(s.cacheTTL)}
	}
	s.mu.Unlock()
	return results, nil
}
