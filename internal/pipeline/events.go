package pipeline

import (
	"context"
	"sync"

	"shelfscan/internal/scans"
)

// EventType identifies one scan lifecycle event.
type EventType string

const (
	EventCreated       EventType = "created"
	EventStatusChanged EventType = "status-changed"
	EventCompleted     EventType = "completed-with-result"
	EventFailed        EventType = "failed-with-message"
)

// Event is one entry in a task's ordered lifecycle sequence.
type Event struct {
	Type   EventType
	ScanID string
	Status scans.Status
	Scan   *scans.Scan
	Items  []*scans.Item
	// Message is set for failed-with-message events.
	Message string
}

const eventBuffer = 16

// Task is the handle for one running pipeline operation. Cancellation is
// best effort: the pipeline checks the context at suspension points but a
// scan already past its last network call runs to completion.
type Task struct {
	scanID string
	cancel context.CancelFunc

	events chan Event

	mu    sync.Mutex
	done  chan struct{}
	scan  *scans.Scan
	items []*scans.Item
	err   error
}

func newTask(scanID string, cancel context.CancelFunc) *Task {
	return &Task{
		scanID: scanID,
		cancel: cancel,
		events: make(chan Event, eventBuffer),
		done:   make(chan struct{}),
	}
}

// ScanID returns the scan this task is driving.
func (t *Task) ScanID() string {
	return t.scanID
}

// Events returns the ordered lifecycle event stream. The channel is closed
// after the terminal event; consumers that fall behind lose intermediate
// events rather than blocking the pipeline.
func (t *Task) Events() <-chan Event {
	return t.events
}

// Cancel requests best-effort cancellation.
func (t *Task) Cancel() {
	if t.cancel != nil {
		t.cancel()
	}
}

// Wait blocks until the task reaches a terminal state and returns the
// final scan snapshot with its items.
func (t *Task) Wait(ctx context.Context) (*scans.Scan, []*scans.Item, error) {
	select {
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	case <-t.done:
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.scan, t.items, t.err
}

func (t *Task) emit(event Event) {
	event.ScanID = t.scanID
	select {
	case t.events <- event:
	default:
		// Listener fell behind or nobody is listening.
	}
}

func (t *Task) finish(scan *scans.Scan, items []*scans.Item, err error) {
	t.mu.Lock()
	t.scan = scan
	t.items = items
	t.err = err
	t.mu.Unlock()
	close(t.done)
	close(t.events)
}
