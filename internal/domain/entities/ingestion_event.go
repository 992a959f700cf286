package entities

import (
	"time"

	"github.com/google/uuid"
)

// IngestionEventType represents the type of ingestion event
type IngestionEventType string

const (
	IngestionEventTypeCompleted IngestionEventType = "ingestion_completed"
	IngestionEventTypeRebuilt   IngestionEventType = "partner_stats_rebuilt"
)

// IngestionEvent is published on the event bus after a batch of records
// lands, so downstream caches can drop stale aggregation responses.
type IngestionEvent struct {
	ID         string             `json:"id"`
	EventType  IngestionEventType `json:"event_type"`
	SourceKind string             `json:"source_kind"`
	BatchID    string             `json:"batch_id"`
	Inserted   int                `json:"inserted"`
	RangeStart *time.Time         `json:"range_start,omitempty"`
	RangeEnd   *time.Time         `json:"range_end,omitempty"`
	Timestamp  time.Time          `json:"timestamp"`
}

// NewIngestionEvent creates a new ingestion event
func NewIngestionEvent(eventType IngestionEventType, sourceKind, batchID string, inserted int, rangeStart, rangeEnd *time.Time) *IngestionEvent {
	return &IngestionEvent{
		ID:         uuid.NewString(),
		EventType:  eventType,
		SourceKind: sourceKind,
		BatchID:    batchID,
		Inserted:   inserted,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
		Timestamp:  time.Now(),
	}
}
