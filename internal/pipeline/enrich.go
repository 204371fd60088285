package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"shelfscan/internal/library/plex"
	"shelfscan/internal/logging"
	"shelfscan/internal/resolver"
	"shelfscan/internal/scans"
	"shelfscan/internal/services"
	"shelfscan/internal/vision"
)

// LibraryLister is the personal-library surface the pipeline depends on.
type LibraryLister interface {
	Libraries(ctx context.Context) ([]plex.Library, error)
	Items(ctx context.Context, libraryKey string) ([]plex.Item, error)
}

// libraryFetcher wraps the optional library lister with the pipeline's
// fail-soft policy: any library error degrades to an empty (or partial)
// snapshot with a warning, never a failed scan.
type libraryFetcher struct {
	lister LibraryLister
}

func newLibraryFetcher(lister LibraryLister) libraryFetcher {
	return libraryFetcher{lister: lister}
}

func (f libraryFetcher) fetch(ctx context.Context, logger *slog.Logger) []resolver.LibraryItem {
	if f.lister == nil {
		return nil
	}
	libraries, err := f.lister.Libraries(ctx)
	if err != nil {
		logger.Warn("library listing unavailable", logging.Error(err))
		return nil
	}
	var raw []plex.Item
	for _, library := range libraries {
		items, err := f.lister.Items(ctx, library.Key)
		if err != nil {
			logger.Warn("library section unavailable",
				logging.String("library", library.Title),
				logging.Error(err))
			continue
		}
		raw = append(raw, items...)
	}
	return resolver.FlattenLibrary(raw)
}

// runEnrichment resolves every identified item concurrently, cross-references
// the personal library, and persists the results in identification order.
func (p *Pipeline) runEnrichment(ctx context.Context, task *Task, rawItems []vision.Item) error {
	if err := p.transition(ctx, task, scans.StatusEnriching); err != nil {
		return err
	}

	// One library snapshot per run, shared read-only across the workers.
	library := p.library.fetch(ctx, p.logger)

	resolved := make([]*scans.Item, len(rawItems))
	var wg sync.WaitGroup
	for idx, raw := range rawItems {
		wg.Add(1)
		go func(idx int, raw vision.Item) {
			defer wg.Done()
			resolved[idx] = p.resolveOne(ctx, raw)
		}(idx, raw)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return err
	}

	for _, item := range resolved {
		resolver.CrossReference(item, library)
	}
	if err := p.store.ReplaceItems(ctx, task.scanID, resolved); err != nil {
		return services.Wrap(nil, "enriching", "persist items", "", err)
	}
	return nil
}

// resolveOne isolates a single item's resolution: a panic in one lookup
// degrades that item to unmatched instead of tearing down the scan.
func (p *Pipeline) resolveOne(ctx context.Context, raw vision.Item) (item *scans.Item) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("item resolution panicked",
				logging.String("title", raw.Title),
				logging.Any("panic", r))
			item = unmatchedItem(raw)
		}
	}()
	item = p.resolver.Resolve(ctx, raw)
	if item == nil {
		item = unmatchedItem(raw)
	}
	return item
}

func unmatchedItem(raw vision.Item) *scans.Item {
	return &scans.Item{
		RawTitle:   raw.Title,
		RawCreator: raw.Creator,
		RawKind:    string(raw.Kind),
		RawYear:    raw.Year,
		Confidence: scans.ConfidenceUnmatched,
		Source:     scans.SourceNone,
	}
}
