package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"shelfscan/internal/logging"
	"shelfscan/internal/notifications"
	"shelfscan/internal/resolver"
	"shelfscan/internal/scans"
	"shelfscan/internal/services"
	"shelfscan/internal/vision"
)

// Identifier is the vision-model surface the pipeline depends on.
type Identifier interface {
	IdentifyShelf(ctx context.Context, image []byte, mimeType string) (*vision.Identification, error)
}

// ItemResolver resolves one raw identified item into an enriched record.
type ItemResolver interface {
	Resolve(ctx context.Context, raw vision.Item) *scans.Item
}

// Options bounds the image preparation step.
type Options struct {
	ModelID      string
	MaxImageEdge int
	JPEGQuality  int
}

// Pipeline orchestrates scans end to end.
type Pipeline struct {
	logger     *slog.Logger
	store      *scans.Store
	identifier Identifier
	resolver   ItemResolver
	library    libraryFetcher
	notifier   notifications.Service
	opts       Options
}

// New constructs a pipeline. The library lister may be nil when no
// personal library is configured; the notifier may be nil.
func New(logger *slog.Logger, store *scans.Store, identifier Identifier, itemResolver ItemResolver, library LibraryLister, notifier notifications.Service, opts Options) *Pipeline {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pipeline{
		logger:     logger.With(logging.String(logging.FieldComponent, "pipeline")),
		store:      store,
		identifier: identifier,
		resolver:   itemResolver,
		library:    newLibraryFetcher(library),
		notifier:   notifier,
		opts:       opts,
	}
}

// StartScan stores the photograph (content-addressed; identical bytes
// reuse the stored row), creates the scan record, and drives it to a
// terminal state in the background.
func (p *Pipeline) StartScan(ctx context.Context, imageData []byte, mimeType string) (*Task, error) {
	if p.identifier == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pending", "start scan", "vision model not configured", nil)
	}
	imageID, err := p.store.PutImage(ctx, imageData, mimeType)
	if err != nil {
		return nil, services.Wrap(nil, "pending", "store image", "", err)
	}
	scan, err := p.store.CreateScan(ctx, imageID, p.opts.ModelID)
	if err != nil {
		return nil, services.Wrap(nil, "pending", "create scan", "", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := newTask(scan.ID, cancel)
	task.emit(Event{Type: EventCreated, Status: scan.Status, Scan: scan})

	go p.runAnalysis(runCtx, task, scan)
	return task, nil
}

// Rescan re-runs analysis and enrichment against the scan's stored image,
// producing a fresh raw vision response that overwrites the prior one.
func (p *Pipeline) Rescan(ctx context.Context, scanID string) (*Task, error) {
	if p.identifier == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pending", "rescan", "vision model not configured", nil)
	}
	scan, err := p.store.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := newTask(scan.ID, cancel)
	task.emit(Event{Type: EventCreated, Status: scan.Status, Scan: scan})

	go p.runAnalysis(runCtx, task, scan)
	return task, nil
}

// Reenrich re-parses the stored raw vision response and re-runs enrichment
// only, replacing the scan's persisted items. Fails fast when no raw
// response was ever stored.
func (p *Pipeline) Reenrich(ctx context.Context, scanID string) (*Task, error) {
	scan, err := p.store.GetScan(ctx, scanID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(scan.RawModelOutput) == "" {
		return nil, services.Wrap(services.ErrValidation, "enriching", "re-enrich", "scan has no stored vision output", nil)
	}
	items, err := vision.ParseItems(scan.RawModelOutput)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "enriching", "re-enrich", "stored vision output is not parseable", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	task := newTask(scan.ID, cancel)
	task.emit(Event{Type: EventCreated, Status: scan.Status, Scan: scan})

	go func() {
		if err := p.runEnrichment(runCtx, task, items); err != nil {
			p.fail(runCtx, task, err)
			return
		}
		p.complete(runCtx, task, len(items))
	}()
	return task, nil
}

// EditItem re-resolves one item with a user-corrected title/creator. The
// item's kind is fixed from the existing record and the result is
// persisted as an update at the same position.
func (p *Pipeline) EditItem(ctx context.Context, itemID int64, title, creator string) (*scans.Item, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrValidation, "enriching", "edit item", "title must not be empty", nil)
	}
	existing, err := p.store.GetItem(ctx, itemID)
	if err != nil {
		return nil, err
	}

	raw := vision.Item{
		Title:   title,
		Creator: strings.TrimSpace(creator),
		Kind:    vision.Kind(existing.RawKind),
		Year:    existing.RawYear,
	}
	resolved := p.resolver.Resolve(ctx, raw)
	if resolved == nil {
		resolved = unmatchedItem(raw)
	}
	if library := p.library.fetch(ctx, p.logger); len(library) > 0 {
		resolver.CrossReference(resolved, library)
	}

	resolved.ID = existing.ID
	resolved.ScanID = existing.ScanID
	resolved.Position = existing.Position
	if err := p.store.UpdateItem(ctx, resolved); err != nil {
		return nil, err
	}
	return p.store.GetItem(ctx, itemID)
}

// runAnalysis drives analyzing -> enriching -> complete for one scan.
func (p *Pipeline) runAnalysis(ctx context.Context, task *Task, scan *scans.Scan) {
	if err := p.transition(ctx, task, scans.StatusAnalyzing); err != nil {
		p.fail(ctx, task, err)
		return
	}
	if p.notifier != nil {
		if err := p.notifier.NotifyScanStarted(ctx, task.scanID); err != nil {
			p.logger.Warn("scan-started notification failed", logging.Error(err))
		}
	}

	image, err := p.store.GetImage(ctx, scan.ImageID)
	if err != nil {
		p.fail(ctx, task, services.Wrap(nil, "analyzing", "load image", "", err))
		return
	}
	prepared, mimeType, err := prepareImage(image.Data, p.opts.MaxImageEdge, p.opts.JPEGQuality)
	if err != nil {
		p.fail(ctx, task, services.Wrap(services.ErrValidation, "analyzing", "prepare image", "", err))
		return
	}

	identification, err := p.identifier.IdentifyShelf(ctx, prepared, mimeType)
	if err != nil {
		p.fail(ctx, task, services.Wrap(nil, "analyzing", "vision call", "", err))
		return
	}
	if usage := identification.Usage; usage.TotalTokens > 0 || usage.Cost > 0 {
		record := scans.UsageRecord{
			ScanID:           task.scanID,
			Model:            usage.Model,
			PromptTokens:     usage.PromptTokens,
			CompletionTokens: usage.CompletionTokens,
			TotalTokens:      usage.TotalTokens,
			Cost:             usage.Cost,
		}
		if err := p.store.AppendUsage(ctx, record); err != nil {
			p.logger.Warn("usage ledger append failed", logging.Error(err))
		}
	}
	modelID := identification.Usage.Model
	if modelID == "" {
		modelID = p.opts.ModelID
	}
	if err := p.store.SetRawModelOutput(ctx, task.scanID, identification.RawOutput, modelID); err != nil {
		p.fail(ctx, task, services.Wrap(nil, "analyzing", "store vision output", "", err))
		return
	}

	if err := p.runEnrichment(ctx, task, identification.Items); err != nil {
		p.fail(ctx, task, err)
		return
	}
	p.complete(ctx, task, len(identification.Items))
}

func (p *Pipeline) transition(ctx context.Context, task *Task, status scans.Status) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := p.store.UpdateScanStatus(ctx, task.scanID, status, ""); err != nil {
		return err
	}
	task.emit(Event{Type: EventStatusChanged, Status: status})
	return nil
}

func (p *Pipeline) complete(ctx context.Context, task *Task, identified int) {
	if err := p.store.UpdateScanStatus(ctx, task.scanID, scans.StatusComplete, ""); err != nil {
		p.fail(ctx, task, err)
		return
	}
	scan, err := p.store.GetScan(ctx, task.scanID)
	if err != nil {
		p.fail(ctx, task, err)
		return
	}
	items, err := p.store.ItemsForScan(ctx, task.scanID)
	if err != nil {
		p.fail(ctx, task, err)
		return
	}

	matched := 0
	for _, item := range items {
		if item.Confidence != scans.ConfidenceUnmatched {
			matched++
		}
	}
	if p.notifier != nil {
		if err := p.notifier.NotifyScanCompleted(ctx, task.scanID, identified, matched); err != nil {
			p.logger.Warn("scan-completed notification failed", logging.Error(err))
		}
	}
	p.logger.Info("scan complete",
		logging.String("scan_id", task.scanID),
		logging.Int("identified", identified),
		logging.Int("matched", matched))

	task.emit(Event{Type: EventCompleted, Status: scans.StatusComplete, Scan: scan, Items: items})
	task.finish(scan, items, nil)
}

func (p *Pipeline) fail(ctx context.Context, task *Task, cause error) {
	message := failureMessage(cause)
	p.logger.Error("scan failed",
		logging.String("scan_id", task.scanID),
		logging.Error(cause))

	// The status write uses a fresh context so cancellation cannot leave
	// the scan stuck in a non-terminal state.
	statusCtx := context.WithoutCancel(ctx)
	if err := p.store.UpdateScanStatus(statusCtx, task.scanID, scans.StatusError, message); err != nil {
		p.logger.Error("error-status write failed", logging.Error(err))
	}
	if p.notifier != nil {
		if err := p.notifier.NotifyScanFailed(statusCtx, task.scanID, message); err != nil {
			p.logger.Warn("scan-failed notification failed", logging.Error(err))
		}
	}

	task.emit(Event{Type: EventFailed, Status: scans.StatusError, Message: message})
	task.finish(nil, nil, cause)
}

func failureMessage(err error) string {
	if err == nil {
		return "unknown failure"
	}
	if errors.Is(err, context.Canceled) {
		return "scan cancelled"
	}
	return fmt.Sprintf("%v", err)
}
