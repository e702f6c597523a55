// internal/catalog/pipeline/seed.go
package pipeline

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"

	"storefront/internal/catalog/parser"
	"storefront/internal/catalog/upsert"
	apperrors "storefront/internal/common/errors"
	"storefront/internal/models"
)

// Seed uploads an already normalized JSON array of products without enrichment.
func (p *Pipeline) Seed(ctx context.Context, path string) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Sources: []parser.Stats{}}
	log := p.logger.With(map[string]interface{}{"runId": result.RunID, "seed": path})

	data, err := os.ReadFile(path)
	if err != nil {
		return p.finish(ctx, log, result, start, apperrors.NewSourceReadFailedError(path, err))
	}

	var products []models.Product
	if err := json.Unmarshal(data, &products); err != nil {
		return p.finish(ctx, log, result, start, apperrors.NewSourceReadFailedError(path, err))
	}
	result.Products = len(products)

	ack, err := p.indexer.Upsert(upsert.ContextWithTaskID(ctx, result.RunID), products)
	if err != nil {
		return p.finish(ctx, log, result, start, err)
	}
	result.Ack = ack

	return p.finish(ctx, log, result, start, nil)
}
