// Package kafka publishes domain events for downstream consumers (analytics,
// notification pipelines).  Publishing is fire-and-forget: event delivery
// failures are logged, never surfaced to API callers.
package kafka

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event types carried on the service topic.
const (
	EventPredictionCompleted     = "prediction.completed"
	EventBulkPredictionCompleted = "prediction.bulk_completed"
	EventTendersImported         = "tenders.imported"
	EventAwardsImported          = "awards.imported"
)

// EventEnvelope standardizes event messages on the wire.
type EventEnvelope struct {
	EventID    string          `json:"event_id"`
	Type       string          `json:"type"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// NewEnvelope wraps payload in a versionless envelope with a fresh event ID.
func NewEnvelope(eventType string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &EventEnvelope{
		EventID:    uuid.NewString(),
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Payload:    raw,
	}, nil
}

// PredictionCompletedPayload describes a finished single evaluation.
type PredictionCompletedPayload struct {
	TenderID       string  `json:"tender_id"`
	BidAmount      int64   `json:"bid_amount"`
	WinProbability float64 `json:"win_probability"`
	Rank           string  `json:"rank"`
	Confidence     string  `json:"confidence"`
}

// BulkPredictionCompletedPayload describes a finished bulk evaluation.
type BulkPredictionCompletedPayload struct {
	Requested int `json:"requested"`
	Evaluated int `json:"evaluated"`
	Failed    int `json:"failed"`
}

// ImportCompletedPayload describes a finished data load.
type ImportCompletedPayload struct {
	Source string `json:"source"`
	Rows   int    `json:"rows"`
}
