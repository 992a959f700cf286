package entities

import (
	"time"
)

// SyncRecord is the audit row written after every ingestion run, successful
// or partial. It ties the uploaded file to the batch of records it produced.
type SyncRecord struct {
	ID           string     `json:"id" db:"id"`
	FileName     string     `json:"file_name" db:"file_name"`
	ContentHash  string     `json:"content_hash" db:"content_hash"`
	SourceKind   string     `json:"source_kind" db:"source_kind"`
	BatchID      string     `json:"batch_id" db:"batch_id"`
	Mode         string     `json:"mode" db:"mode"`
	RangeStart   *time.Time `json:"range_start" db:"range_start"`
	RangeEnd     *time.Time `json:"range_end" db:"range_end"`
	ParsedCount  int        `json:"parsed_count" db:"parsed_count"`
	MatchedCount int        `json:"matched_count" db:"matched_count"`
	SkippedCount int        `json:"skipped_count" db:"skipped_count"`
	RevenueAdded float64    `json:"revenue_added" db:"revenue_added"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}
