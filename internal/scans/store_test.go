package scans_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"shelfscan/internal/scans"
)

func newStore(t *testing.T) *scans.Store {
	t.Helper()
	store, err := scans.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func createScan(t *testing.T, store *scans.Store) *scans.Scan {
	t.Helper()
	imageID, err := store.PutImage(context.Background(), []byte("jpeg-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("PutImage returned error: %v", err)
	}
	scan, err := store.CreateScan(context.Background(), imageID, "test/model")
	if err != nil {
		t.Fatalf("CreateScan returned error: %v", err)
	}
	return scan
}

func TestReopenKeepsDataAndRevision(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	store, err := scans.Open(path)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	scan := createScan(t, store)
	if err := store.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}

	reopened, err := scans.Open(path)
	if err != nil {
		t.Fatalf("reopen returned error: %v", err)
	}
	t.Cleanup(func() { _ = reopened.Close() })

	got, err := reopened.GetScan(context.Background(), scan.ID)
	if err != nil {
		t.Fatalf("GetScan after reopen: %v", err)
	}
	if got.Status != scans.StatusPending {
		t.Fatalf("status = %q, want pending", got.Status)
	}
}

func TestCreateScanDefaults(t *testing.T) {
	store := newStore(t)
	scan := createScan(t, store)
	if scan.ID == "" {
		t.Fatal("expected generated scan id")
	}
	if scan.Status != scans.StatusPending {
		t.Fatalf("status = %q, want pending", scan.Status)
	}
	if scan.CreatedAt.IsZero() {
		t.Fatal("created_at not set")
	}
}

func TestPutImageDeduplicates(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	first, err := store.PutImage(ctx, []byte("same-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("PutImage returned error: %v", err)
	}
	second, err := store.PutImage(ctx, []byte("same-bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("second PutImage returned error: %v", err)
	}
	if first != second {
		t.Fatalf("identical bytes stored twice: %d vs %d", first, second)
	}
	other, err := store.PutImage(ctx, []byte("different"), "image/png")
	if err != nil {
		t.Fatalf("third PutImage returned error: %v", err)
	}
	if other == first {
		t.Fatal("different bytes deduplicated")
	}

	image, err := store.GetImage(ctx, first)
	if err != nil {
		t.Fatalf("GetImage returned error: %v", err)
	}
	if string(image.Data) != "same-bytes" || image.MIMEType != "image/jpeg" {
		t.Fatalf("unexpected image: %#v", image)
	}
}

func TestStatusTransitionsAndRawOutput(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	scan := createScan(t, store)

	if err := store.UpdateScanStatus(ctx, scan.ID, scans.StatusAnalyzing, ""); err != nil {
		t.Fatalf("UpdateScanStatus returned error: %v", err)
	}
	if err := store.SetRawModelOutput(ctx, scan.ID, `{"items":[]}`, "other/model"); err != nil {
		t.Fatalf("SetRawModelOutput returned error: %v", err)
	}
	if err := store.UpdateScanStatus(ctx, scan.ID, scans.StatusError, "vision failed"); err != nil {
		t.Fatalf("UpdateScanStatus returned error: %v", err)
	}

	fetched, err := store.GetScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("GetScan returned error: %v", err)
	}
	if fetched.Status != scans.StatusError || fetched.ErrorMessage != "vision failed" {
		t.Fatalf("unexpected scan: %#v", fetched)
	}
	if fetched.RawModelOutput != `{"items":[]}` || fetched.ModelID != "other/model" {
		t.Fatalf("raw output not stored: %#v", fetched)
	}

	if err := store.UpdateScanStatus(ctx, scan.ID, scans.Status("bogus"), ""); err == nil {
		t.Fatal("expected error for invalid status")
	}
}

func TestReplaceItemsPreservesOrder(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	scan := createScan(t, store)

	items := []*scans.Item{
		{
			RawTitle: "The Matrix", RawKind: "movie", RawYear: 1999,
			Confidence: scans.ConfidenceHigh, Source: scans.SourceCatalog,
			TMDBID: 603, IMDBID: "tt0133093", Title: "The Matrix",
			Genres: []string{"Action", "Science Fiction"}, Year: 1999,
			Rating: 8.2, Runtime: 136, Detail: "Lana Wachowski",
		},
		{
			RawTitle: "Unreadable Spine", RawKind: "other",
			Confidence: scans.ConfidenceUnmatched, Source: scans.SourceNone,
		},
	}
	if err := store.ReplaceItems(ctx, scan.ID, items); err != nil {
		t.Fatalf("ReplaceItems returned error: %v", err)
	}

	stored, err := store.ItemsForScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("ItemsForScan returned error: %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("expected 2 items, got %d", len(stored))
	}
	if stored[0].Position != 0 || stored[1].Position != 1 {
		t.Fatalf("positions wrong: %d, %d", stored[0].Position, stored[1].Position)
	}
	if stored[0].TMDBID != 603 || len(stored[0].Genres) != 2 {
		t.Fatalf("enriched fields lost: %#v", stored[0])
	}
	if stored[1].Confidence != scans.ConfidenceUnmatched || stored[1].TMDBID != 0 {
		t.Fatalf("unmatched item carries catalog fields: %#v", stored[1])
	}

	// Replacement discards the old set.
	if err := store.ReplaceItems(ctx, scan.ID, items[:1]); err != nil {
		t.Fatalf("second ReplaceItems returned error: %v", err)
	}
	stored, err = store.ItemsForScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("ItemsForScan returned error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 item after replace, got %d", len(stored))
	}
}

func TestUpdateItem(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	scan := createScan(t, store)

	seed := []*scans.Item{{
		RawTitle: "Matrix", RawKind: "movie",
		Confidence: scans.ConfidenceUnmatched, Source: scans.SourceNone,
	}}
	if err := store.ReplaceItems(ctx, scan.ID, seed); err != nil {
		t.Fatalf("ReplaceItems returned error: %v", err)
	}
	stored, err := store.ItemsForScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("ItemsForScan returned error: %v", err)
	}

	item := stored[0]
	item.RawTitle = "The Matrix"
	item.Confidence = scans.ConfidenceHigh
	item.Source = scans.SourceCatalog
	item.TMDBID = 603
	if err := store.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem returned error: %v", err)
	}

	fetched, err := store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem returned error: %v", err)
	}
	if fetched.RawTitle != "The Matrix" || fetched.TMDBID != 603 {
		t.Fatalf("update lost: %#v", fetched)
	}
}

func TestDeleteScanCascades(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	scan := createScan(t, store)

	items := []*scans.Item{{
		RawTitle: "X", RawKind: "movie",
		Confidence: scans.ConfidenceUnmatched, Source: scans.SourceNone,
	}}
	if err := store.ReplaceItems(ctx, scan.ID, items); err != nil {
		t.Fatalf("ReplaceItems returned error: %v", err)
	}

	if err := store.DeleteScan(ctx, scan.ID); err != nil {
		t.Fatalf("DeleteScan returned error: %v", err)
	}
	if _, err := store.GetScan(ctx, scan.ID); !errors.Is(err, scans.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	remaining, err := store.ItemsForScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("ItemsForScan returned error: %v", err)
	}
	if len(remaining) != 0 {
		t.Fatalf("items survived cascade: %#v", remaining)
	}
	// The stored image is shared state and survives.
	if _, err := store.GetImage(ctx, scan.ImageID); err != nil {
		t.Fatalf("image should survive scan deletion: %v", err)
	}
}

func TestListScansNewestFirst(t *testing.T) {
	store := newStore(t)
	first := createScan(t, store)
	second := createScan(t, store)

	listed, err := store.ListScans(context.Background(), 0)
	if err != nil {
		t.Fatalf("ListScans returned error: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("expected 2 scans, got %d", len(listed))
	}
	ids := map[string]bool{listed[0].ID: true, listed[1].ID: true}
	if !ids[first.ID] || !ids[second.ID] {
		t.Fatalf("missing scans in listing: %#v", listed)
	}

	limited, err := store.ListScans(context.Background(), 1)
	if err != nil {
		t.Fatalf("ListScans with limit returned error: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limit ignored, got %d", len(limited))
	}
}

func TestUsageLedger(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()
	scan := createScan(t, store)

	records := []scans.UsageRecord{
		{ScanID: scan.ID, Model: "test/model", PromptTokens: 900, CompletionTokens: 50, TotalTokens: 950, Cost: 0.004},
		{ScanID: scan.ID, Model: "test/model", PromptTokens: 900, CompletionTokens: 60, TotalTokens: 960, Cost: 0.005},
	}
	for _, record := range records {
		if err := store.AppendUsage(ctx, record); err != nil {
			t.Fatalf("AppendUsage returned error: %v", err)
		}
	}

	listed, err := store.UsageForScan(ctx, scan.ID)
	if err != nil {
		t.Fatalf("UsageForScan returned error: %v", err)
	}
	if len(listed) != 2 || listed[0].TotalTokens != 950 {
		t.Fatalf("unexpected ledger: %#v", listed)
	}

	total, err := store.TotalCost(ctx)
	if err != nil {
		t.Fatalf("TotalCost returned error: %v", err)
	}
	if total < 0.0089 || total > 0.0091 {
		t.Fatalf("total cost = %v", total)
	}
}

func TestSettingsUpsert(t *testing.T) {
	store := newStore(t)
	ctx := context.Background()

	if err := store.UpsertSetting(ctx, "match_accept_threshold", "0.5"); err != nil {
		t.Fatalf("UpsertSetting returned error: %v", err)
	}
	if err := store.UpsertSetting(ctx, "match_accept_threshold", "0.6"); err != nil {
		t.Fatalf("second UpsertSetting returned error: %v", err)
	}

	settings, err := store.Settings(ctx)
	if err != nil {
		t.Fatalf("Settings returned error: %v", err)
	}
	if settings["match_accept_threshold"] != "0.6" {
		t.Fatalf("unexpected settings: %#v", settings)
	}
}
