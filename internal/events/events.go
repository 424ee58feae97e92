package events

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Event is a funding fact published for downstream consumers (reporting,
// notifications). Publishing is best-effort; the datastore remains the source
// of truth.
type Event struct {
	Type           string    `json:"type"`
	OccurredAt     time.Time `json:"occurredAt"`
	SlotID         string    `json:"slotId,omitempty"`
	SponsorID      string    `json:"sponsorId,omitempty"`
	ContributionID string    `json:"contributionId,omitempty"`
	IntentID       string    `json:"intentId,omitempty"`
	Amount         string    `json:"amount,omitempty"`
	Outcome        string    `json:"outcome,omitempty"`
}

// Event types.
const (
	TypeContributionCompleted = "contribution.completed"
	TypeContributionFailed    = "contribution.failed"
	TypeSlotFullyFunded       = "slot.fully_funded"
)

// Publisher emits funding events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close()
}

// Recorder is an in-process Publisher for tests and for running without
// Kafka configured.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder constructs an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Publish(_ context.Context, event Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now()
	}
	r.events = append(r.events, event)
	return nil
}

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

func (r *Recorder) Close() {}

// LogPublisher writes events to the log. It stands in for Kafka when no
// brokers are configured.
type LogPublisher struct {
	logger *slog.Logger
}

func NewLog(logger *slog.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

func (p *LogPublisher) Publish(ctx context.Context, event Event) error {
	p.logger.InfoContext(ctx, "funding event",
		"type", event.Type,
		"slot_id", event.SlotID,
		"intent_id", event.IntentID,
		"amount", event.Amount,
	)
	return nil
}

func (p *LogPublisher) Close() {}
