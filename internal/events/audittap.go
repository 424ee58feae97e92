package events

import (
	"context"

	"harambee/pkg/platform/audit"
)

// AuditedPublisher copies every funding event into the durable audit trail
// before handing it to the wrapped publisher. Kafka delivery is best-effort;
// the trail row is what reconciliation falls back on.
type AuditedPublisher struct {
	next  Publisher
	trail *audit.Trail
}

// WithAudit decorates a publisher with trail recording.
func WithAudit(next Publisher, trail *audit.Trail) *AuditedPublisher {
	return &AuditedPublisher{next: next, trail: trail}
}

func (p *AuditedPublisher) Publish(ctx context.Context, event Event) error {
	if action, ok := auditAction(event.Type); ok {
		p.trail.Record(audit.Event{
			OccurredAt: event.OccurredAt,
			Action:     action,
			ActorID:    event.SponsorID,
			SlotID:     event.SlotID,
			IntentID:   event.IntentID,
			Amount:     event.Amount,
			Detail:     event.Outcome,
		})
	}
	return p.next.Publish(ctx, event)
}

// Close stops the wrapped publisher. The trail has its own lifecycle; main
// closes it after the publisher so late events still land.
func (p *AuditedPublisher) Close() {
	p.next.Close()
}

func auditAction(eventType string) (audit.Action, bool) {
	switch eventType {
	case TypeContributionCompleted:
		return audit.ActionContributionCompleted, true
	case TypeContributionFailed:
		return audit.ActionContributionFailed, true
	case TypeSlotFullyFunded:
		return audit.ActionSlotFullyFunded, true
	default:
		return "", false
	}
}
