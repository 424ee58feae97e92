package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

const defaultBufferSize = 256

// Trail accepts entries from request paths and persists them from a
// background worker. Record never blocks the caller: when the buffer is full
// the entry is dropped and counted, because a slow trail must not slow a
// payment.
type Trail struct {
	store  Store
	logger *slog.Logger
	inbox  chan Event
	done   sync.WaitGroup

	mu      sync.Mutex
	dropped int
	closed  bool
}

// NewTrail starts the background writer.
func NewTrail(store Store, logger *slog.Logger) *Trail {
	t := &Trail{
		store:  store,
		logger: logger,
		inbox:  make(chan Event, defaultBufferSize),
	}
	t.done.Add(1)
	go t.run()
	return t
}

// Record queues an entry. Missing ID and timestamp are filled in.
func (t *Trail) Record(event Event) {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	select {
	case t.inbox <- event:
		t.mu.Unlock()
	default:
		t.dropped++
		n := t.dropped
		t.mu.Unlock()
		t.logger.Warn("audit trail buffer full, entry dropped",
			"action", event.Action,
			"dropped_total", n,
		)
	}
}

// Dropped returns how many entries have been discarded since start.
func (t *Trail) Dropped() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.dropped
}

// Close drains queued entries and stops the worker.
func (t *Trail) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	t.mu.Unlock()

	close(t.inbox)
	t.done.Wait()
}

func (t *Trail) run() {
	defer t.done.Done()
	for event := range t.inbox {
		if err := t.store.Append(context.Background(), event); err != nil {
			t.logger.Error("append audit event",
				"action", event.Action,
				"error", err,
			)
		}
	}
}
