package tvdb_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfscan/internal/catalog/tvdb"
)

func newStubServer(t *testing.T, loginCalls *int, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/login" {
			if loginCalls != nil {
				*loginCalls++
			}
			var payload map[string]string
			if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload["apikey"] != "key" {
				t.Fatalf("unexpected login payload: %v (err %v)", payload, err)
			}
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"data":{"token":"tok-1"}}`))
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-1" {
			t.Fatalf("missing bearer token, got %q", got)
		}
		handler(w, r)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestSearchLogsInOnceAndFilters(t *testing.T) {
	loginCalls := 0
	server := newStubServer(t, &loginCalls, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("type") != "series" || q.Get("year") != "2005" {
			t.Fatalf("unexpected query %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"name":"Doctor Who","year":"2005","type":"series","tvdb_id":"78804"}]}`))
	})

	client, err := tvdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	opts := tvdb.SearchOptions{Kind: "series", Year: 2005}
	results, err := client.Search(context.Background(), "Doctor Who", opts)
	if err != nil {
		t.Fatalf("Search returned error: %v", err)
	}
	if len(results) != 1 || results[0].NumericID() != 78804 {
		t.Fatalf("unexpected results: %#v", results)
	}
	if results[0].YearInt() != 2005 {
		t.Fatalf("YearInt = %d", results[0].YearInt())
	}

	if _, err := client.Search(context.Background(), "Doctor Who", opts); err != nil {
		t.Fatalf("second Search returned error: %v", err)
	}
	if loginCalls != 1 {
		t.Fatalf("expected one login, got %d", loginCalls)
	}
}

func TestNumericIDPriorityOrder(t *testing.T) {
	cases := []struct {
		name   string
		result tvdb.SearchResult
		want   int64
	}{
		{"pure numeric field wins", tvdb.SearchResult{TVDBID: "78804", ID: "series-99", ObjectID: "series-1"}, 78804},
		{"composite field strips prefix", tvdb.SearchResult{ID: "series-81189"}, 81189},
		{"fallback field", tvdb.SearchResult{ObjectID: "movie-550"}, 550},
		{"malformed first field skipped", tvdb.SearchResult{TVDBID: "n/a", ID: "series-42"}, 42},
		{"nothing parses", tvdb.SearchResult{TVDBID: "", ID: "series-", ObjectID: "x"}, 0},
	}
	for _, tc := range cases {
		if got := tc.result.NumericID(); got != tc.want {
			t.Fatalf("%s: NumericID = %d, want %d", tc.name, got, tc.want)
		}
	}
}

func TestLookupByRemoteID(t *testing.T) {
	server := newStubServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/search/remoteid/tt0903747" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[{"series":{"id":81189}}]}`))
	})

	client, err := tvdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	id, err := client.LookupByRemoteID(context.Background(), "tt0903747")
	if err != nil {
		t.Fatalf("LookupByRemoteID returned error: %v", err)
	}
	if id != 81189 {
		t.Fatalf("id = %d, want 81189", id)
	}
}

func TestLookupByRemoteIDUnknown(t *testing.T) {
	server := newStubServer(t, nil, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"data":[]}`))
	})

	client, err := tvdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	id, err := client.LookupByRemoteID(context.Background(), "tt0000000")
	if err != nil {
		t.Fatalf("LookupByRemoteID returned error: %v", err)
	}
	if id != 0 {
		t.Fatalf("expected 0 for unknown id, got %d", id)
	}
}

func TestLoginFailureSurfacesError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(server.Close)

	client, err := tvdb.New("key", server.URL)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if _, err := client.Search(context.Background(), "anything", tvdb.SearchOptions{}); err == nil {
		t.Fatal("expected error when login fails")
	}
}
