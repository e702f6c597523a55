// internal/catalog/pipeline/models.go
package pipeline

import (
	"time"

	"storefront/internal/catalog/enrichment"
	"storefront/internal/catalog/parser"
	"storefront/internal/catalog/upsert"
)

const (
	statusSuccess   = "success"
	statusFailed    = "failed"
	statusCancelled = "cancelled"
)

// Result summarises one ingestion run.
type Result struct {
	RunID      string           `json:"runId"`
	Sources    []parser.Stats   `json:"sources"`
	Skipped    []string         `json:"skippedSources,omitempty"`
	Products   int              `json:"products"`
	Enrichment enrichment.Stats `json:"enrichment"`
	Ack        *upsert.Ack      `json:"ack,omitempty"`
	Duration   time.Duration    `json:"duration"`
}
