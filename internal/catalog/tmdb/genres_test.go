package tmdb_test

import (
	"context"
	"errors"
	"testing"

	"shelfscan/internal/catalog/tmdb"
)

type fakeGenreSource struct {
	movie      map[int64]string
	tv         map[int64]string
	movieErr   error
	tvErr      error
	movieCalls int
}

func (f *fakeGenreSource) MovieGenres(ctx context.Context) (map[int64]string, error) {
	f.movieCalls++
	if f.movieErr != nil {
		return nil, f.movieErr
	}
	return f.movie, nil
}

func (f *fakeGenreSource) TVGenres(ctx context.Context) (map[int64]string, error) {
	if f.tvErr != nil {
		return nil, f.tvErr
	}
	return f.tv, nil
}

func TestGenreCacheMergesAndCaches(t *testing.T) {
	source := &fakeGenreSource{
		movie: map[int64]string{28: "Action", 18: "Drama"},
		tv:    map[int64]string{18: "Drama", 10765: "Sci-Fi & Fantasy"},
	}
	cache := tmdb.NewGenreCache(source)

	names := cache.Names(context.Background(), []int64{28, 10765, 999})
	if len(names) != 2 || names[0] != "Action" || names[1] != "Sci-Fi & Fantasy" {
		t.Fatalf("Names = %v", names)
	}

	cache.Names(context.Background(), []int64{18})
	if source.movieCalls != 1 {
		t.Fatalf("expected single fetch, got %d", source.movieCalls)
	}
}

func TestGenreCachePartialFetchNotCached(t *testing.T) {
	source := &fakeGenreSource{
		movie: map[int64]string{28: "Action"},
		tvErr: errors.New("tv list unavailable"),
	}
	cache := tmdb.NewGenreCache(source)

	if names := cache.Names(context.Background(), []int64{28}); len(names) != 1 {
		t.Fatalf("expected partial result, got %v", names)
	}

	source.tvErr = nil
	source.tv = map[int64]string{10765: "Sci-Fi & Fantasy"}
	if names := cache.Names(context.Background(), []int64{10765}); len(names) != 1 {
		t.Fatalf("expected retry to load tv genres, got %v", names)
	}
	if source.movieCalls != 2 {
		t.Fatalf("expected refetch after partial load, got %d calls", source.movieCalls)
	}
}

func TestGenreCacheMovieFetchFailureNotCached(t *testing.T) {
	source := &fakeGenreSource{
		movieErr: errors.New("movie list unavailable"),
		tv:       map[int64]string{10765: "Sci-Fi & Fantasy"},
	}
	cache := tmdb.NewGenreCache(source)

	if names := cache.Names(context.Background(), []int64{10765}); len(names) != 1 {
		t.Fatalf("expected partial result, got %v", names)
	}

	source.movieErr = nil
	source.movie = map[int64]string{28: "Action"}
	if names := cache.Names(context.Background(), []int64{28}); len(names) != 1 {
		t.Fatalf("expected retry to load movie genres, got %v", names)
	}
	if source.movieCalls != 2 {
		t.Fatalf("expected refetch after failed movie load, got %d calls", source.movieCalls)
	}
}

func TestGenreCacheNilSafe(t *testing.T) {
	var cache *tmdb.GenreCache
	if names := cache.Names(context.Background(), []int64{1}); names != nil {
		t.Fatalf("nil cache should return nil, got %v", names)
	}
}
