package tmdb_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfscan/internal/catalog/tmdb"
)

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := tmdb.New("", "https://example.com", "en-US"); err == nil {
		t.Fatal("expected error when api key missing")
	}
}

func TestSearchMovieSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("api_key") != "key" {
			t.Fatalf("expected api_key query parameter, got %q", r.URL.RawQuery)
		}
		if r.URL.Query().Get("primary_release_year") != "1999" {
			t.Fatalf("expected year filter, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"page":1,"results":[{"id":603,"title":"The Matrix","release_date":"1999-03-31"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	results, err := client.SearchMovieWithOptions(context.Background(), "The Matrix", tmdb.SearchOptions{Year: 1999})
	if err != nil {
		t.Fatalf("SearchMovieWithOptions returned error: %v", err)
	}
	if len(results) != 1 || results[0].DisplayName() != "The Matrix" {
		t.Fatalf("unexpected results: %#v", results)
	}
	if results[0].Year() != 1999 {
		t.Fatalf("Year() = %d, want 1999", results[0].Year())
	}
}

func TestSearchCapsResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"page":1,"results":[`)
		for i := 0; i < 8; i++ {
			if i > 0 {
				fmt.Fprint(w, ",")
			}
			fmt.Fprintf(w, `{"id":%d,"name":"Show %d"}`, i+1, i+1)
		}
		fmt.Fprint(w, `]}`)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	results, err := client.SearchTVWithOptions(context.Background(), "Show", tmdb.SearchOptions{})
	if err != nil {
		t.Fatalf("SearchTVWithOptions returned error: %v", err)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 capped results, got %d", len(results))
	}
}

func TestSearchMovieHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"status_code":500}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.SearchMovieWithOptions(context.Background(), "fail", tmdb.SearchOptions{}); err == nil {
		t.Fatal("expected error when catalog returns non-200")
	}
}

func TestSearchMovieEmptyQuery(t *testing.T) {
	client, err := tmdb.New("key", "https://example.com", "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.SearchMovieWithOptions(context.Background(), "   ", tmdb.SearchOptions{}); err == nil {
		t.Fatal("expected error for empty query")
	}
}

func TestMovieDetailsAppendsCredits(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/603" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("append_to_response") != "credits" {
			t.Fatalf("expected credits appended, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":603,"title":"The Matrix","runtime":136,"imdb_id":"tt0133093","credits":{"crew":[{"name":"Lana Wachowski","job":"Director"},{"name":"Someone Else","job":"Producer"}]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	detail, err := client.MovieDetails(context.Background(), 603)
	if err != nil {
		t.Fatalf("MovieDetails returned error: %v", err)
	}
	if detail.Director() != "Lana Wachowski" {
		t.Fatalf("Director() = %q", detail.Director())
	}
	if detail.Runtime != 136 || detail.IMDBID != "tt0133093" {
		t.Fatalf("unexpected detail: %#v", detail)
	}
}

func TestTVDetailsAppendsExternalIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("append_to_response") != "external_ids" {
			t.Fatalf("expected external_ids appended, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":1396,"name":"Breaking Bad","number_of_seasons":5,"status":"Ended","networks":[{"name":"AMC"}],"created_by":[{"name":"Vince Gilligan"}],"external_ids":{"imdb_id":"tt0903747","tvdb_id":81189}}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	detail, err := client.TVDetails(context.Background(), 1396)
	if err != nil {
		t.Fatalf("TVDetails returned error: %v", err)
	}
	if detail.Network() != "AMC" || detail.NumberOfSeasons != 5 {
		t.Fatalf("unexpected detail: %#v", detail)
	}
	if detail.ExternalIDs.TVDBID != 81189 {
		t.Fatalf("tvdb id = %d", detail.ExternalIDs.TVDBID)
	}
	creators := detail.Creators()
	if len(creators) != 1 || creators[0] != "Vince Gilligan" {
		t.Fatalf("Creators() = %v", creators)
	}
}

func TestFindByExternalID(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/find/tt0133093" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("external_source") != "imdb_id" {
			t.Fatalf("expected imdb_id source, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"movie_results":[{"id":603,"title":"The Matrix"}],"tv_results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("key", server.URL, "")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	found, err := client.FindByExternalID(context.Background(), "tt0133093", "imdb_id")
	if err != nil {
		t.Fatalf("FindByExternalID returned error: %v", err)
	}
	if len(found.MovieResults) != 1 || found.MovieResults[0].ID != 603 {
		t.Fatalf("unexpected find result: %#v", found)
	}
}
