// Package events publishes domain events after a business operation commits.
package events

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"retailpos/backend/internal/xid"
)

const (
	SaleCreated   = "sale.created"
	SaleMarked    = "sale.marked"
	SaleCancelled = "sale.cancelled"
	SaleCompleted = "sale.completed"
	SaleRefunded  = "sale.refunded"

	CreditCreated = "credit.created"
	CreditDecided = "credit.decided"
	CreditSettled = "credit.settled"

	StockRequestCreated  = "stock_request.created"
	StockRequestDecided  = "stock_request.decided"
	StockRequestReleased = "stock_request.released"

	InventoryAdjusted        = "inventory.adjusted"
	InventoryArrivalRecorded = "inventory.arrival_recorded"

	CashEntryRecorded = "cash.entry_recorded"
	CashSessionOpened = "cash.session_opened"
	CashSessionClosed = "cash.session_closed"
	CashReconciled    = "cash.reconciled"

	MessagePosted = "message.posted"
)

const (
	producerName = "retailpos-backend"
	eventVersion = 1
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	LocationID    string          `json:"location_id"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// NewEnvelope marshals payload and wraps it with routing metadata.
func NewEnvelope(eventType, locationID, correlationID string, payload any) (Envelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Envelope{}, err
	}
	return Envelope{
		EventID:       xid.New("evt"),
		EventType:     eventType,
		EventVersion:  eventVersion,
		OccurredAt:    time.Now().UTC(),
		Producer:      producerName,
		LocationID:    locationID,
		CorrelationID: correlationID,
		Payload:       raw,
	}, nil
}

type Publisher interface {
	Publish(ctx context.Context, envelopes ...Envelope) error
	Close() error
}

type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ...Envelope) error { return nil }
func (NoopPublisher) Close() error                               { return nil }

// Recorder keeps published envelopes in memory. Tests use it to assert on
// what a service emitted.
type Recorder struct {
	mu        sync.Mutex
	Envelopes []Envelope
}

func (r *Recorder) Publish(_ context.Context, envelopes ...Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Envelopes = append(r.Envelopes, envelopes...)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Types returns the event types recorded so far, in order.
func (r *Recorder) Types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.Envelopes))
	for _, env := range r.Envelopes {
		out = append(out, env.EventType)
	}
	return out
}
