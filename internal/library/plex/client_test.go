package plex_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"shelfscan/internal/library/plex"
)

func TestLibrariesFiltersKinds(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.Header.Get("X-Plex-Token") != "tok" {
			t.Fatal("missing token header")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"MediaContainer":{"Directory":[
			{"key":"1","title":"Movies","type":"movie"},
			{"key":"2","title":"Music","type":"artist"},
			{"key":"3","title":"TV Shows","type":"show"}
		]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := plex.New(server.URL, "tok")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	libraries, err := client.Libraries(context.Background())
	if err != nil {
		t.Fatalf("Libraries returned error: %v", err)
	}
	if len(libraries) != 2 {
		t.Fatalf("expected music filtered out, got %#v", libraries)
	}
	if libraries[0].Kind != "movie" || libraries[1].Kind != "show" {
		t.Fatalf("unexpected kinds: %#v", libraries)
	}
}

func TestItemsRequestsGuids(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/library/sections/3/all" {
			t.Fatalf("unexpected path %q", r.URL.Path)
		}
		if r.URL.Query().Get("includeGuids") != "1" {
			t.Fatalf("expected includeGuids, got %q", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"MediaContainer":{"Metadata":[
			{"ratingKey":"49915","title":"Breaking Bad","year":2008,
			 "Guid":[{"id":"imdb://tt0903747"},{"id":"tmdb://1396"},{"id":"tvdb://81189"}]}
		]}}`))
	}))
	t.Cleanup(server.Close)

	client, err := plex.New(server.URL, "tok")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	items, err := client.Items(context.Background(), "3")
	if err != nil {
		t.Fatalf("Items returned error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("unexpected items: %#v", items)
	}
	ids := items[0].ExternalIDs()
	if ids.IMDB != "tt0903747" || ids.TMDB != 1396 || ids.TVDB != 81189 {
		t.Fatalf("unexpected ids: %#v", ids)
	}
}

func TestExternalIDsLegacyGUID(t *testing.T) {
	cases := []struct {
		name string
		item plex.Item
		want plex.ExternalIDs
	}{
		{
			"legacy imdb with query",
			plex.Item{LegacyGUID: "com.plexapp.agents.imdb://tt0133093?lang=en"},
			plex.ExternalIDs{IMDB: "tt0133093"},
		},
		{
			"legacy tvdb with episode path",
			plex.Item{LegacyGUID: "com.plexapp.agents.thetvdb://81189/1/3?lang=en"},
			plex.ExternalIDs{TVDB: 81189},
		},
		{
			"legacy moviedb",
			plex.Item{LegacyGUID: "com.plexapp.agents.themoviedb://603?lang=en"},
			plex.ExternalIDs{TMDB: 603},
		},
		{
			"structured preferred over legacy",
			plex.Item{
				LegacyGUID: "com.plexapp.agents.imdb://tt0000001",
				GUIDs: []struct {
					ID string `json:"id"`
				}{{ID: "imdb://tt0133093"}},
			},
			plex.ExternalIDs{IMDB: "tt0133093"},
		},
		{
			"unparseable agent",
			plex.Item{LegacyGUID: "local://3149"},
			plex.ExternalIDs{},
		},
	}
	for _, tc := range cases {
		if got := tc.item.ExternalIDs(); got != tc.want {
			t.Fatalf("%s: ExternalIDs = %#v, want %#v", tc.name, got, tc.want)
		}
	}
}
