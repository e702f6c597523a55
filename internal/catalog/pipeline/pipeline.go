// internal/catalog/pipeline/pipeline.go
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"storefront/internal/catalog/enrichment"
	"storefront/internal/catalog/parser"
	"storefront/internal/catalog/upsert"
	apperrors "storefront/internal/common/errors"
	"storefront/internal/common/logger"
	"storefront/internal/common/observability"
	"storefront/internal/models"
)

const ComponentName = "catalog-pipeline"

// SourceParser turns one source file into products.
type SourceParser interface {
	Parse(ctx context.Context, path, category string) ([]models.Product, parser.Stats, error)
}

// Enricher decorates products in place and never fails the run.
type Enricher interface {
	Enrich(ctx context.Context, products []models.Product) enrichment.Stats
}

// Indexer writes the finished list in one logical upsert.
type Indexer interface {
	Upsert(ctx context.Context, products []models.Product) (*upsert.Ack, error)
}

type Pipeline struct {
	config   *Config
	parser   SourceParser
	enricher Enricher
	indexer  Indexer
	obs      *observability.Observability
	logger   logger.Logger
}

func New(config *Config, p SourceParser, e Enricher, idx Indexer, obs *observability.Observability, log logger.Logger) *Pipeline {
	if config == nil {
		config = LoadConfig()
	}
	return &Pipeline{
		config:   config,
		parser:   p,
		enricher: e,
		indexer:  idx,
		obs:      obs,
		logger:   log.With(map[string]interface{}{"component": ComponentName}),
	}
}

// DiscoverSources lists the catalog files in dir sorted by name so reruns see the same
// order and therefore assign the same IDs.
func DiscoverSources(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, apperrors.NewSourceReadFailedError(dir, err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if _, err := parser.FormatFromPath(entry.Name()); err != nil {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// RunDir runs over every catalog file in dir, or in the configured source directory
// when dir is empty.
func (p *Pipeline) RunDir(ctx context.Context, dir string) (*Result, error) {
	if dir == "" {
		dir = p.config.SourceDir
	}
	paths, err := DiscoverSources(dir)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		p.logger.Warn("no catalog sources found", map[string]interface{}{"dir": dir})
	}
	return p.Run(ctx, paths)
}

// Run parses every source in order, enriches the combined list and upserts it once.
// Unreadable sources are skipped. A cancelled context never reaches the index.
func (p *Pipeline) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Sources: []parser.Stats{}}
	log := p.logger.With(map[string]interface{}{"runId": result.RunID})

	log.Info("run started", map[string]interface{}{"sources": len(paths)})

	var products []models.Product
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return p.finish(ctx, log, result, start, apperrors.NewRunCancelledError(err))
		}

		category := parser.CategoryFor(filepath.Base(path))
		parsed, stats, err := p.parser.Parse(ctx, path, category)
		if err != nil {
			fields := apperrors.AsStandardError(err).Fields()
			fields["source"] = path
			log.Error("source skipped", fields)
			result.Skipped = append(result.Skipped, path)
			continue
		}
		result.Sources = append(result.Sources, stats)
		products = append(products, parsed...)
	}
	result.Products = len(products)

	// two sources mapping to one category would collide on IDs
	if err := upsert.CheckUniqueIDs(products); err != nil {
		return p.finish(ctx, log, result, start, err)
	}

	result.Enrichment = p.enricher.Enrich(ctx, products)

	if err := ctx.Err(); err != nil {
		return p.finish(ctx, log, result, start, apperrors.NewRunCancelledError(err))
	}

	ack, err := p.indexer.Upsert(upsert.ContextWithTaskID(ctx, result.RunID), products)
	if err != nil {
		return p.finish(ctx, log, result, start, err)
	}
	result.Ack = ack

	return p.finish(ctx, log, result, start, nil)
}

func (p *Pipeline) finish(ctx context.Context, log logger.Logger, result *Result, start time.Time, err error) (*Result, error) {
	result.Duration = time.Since(start)

	status := statusSuccess
	switch {
	case apperrors.HasCode(err, apperrors.ErrCodeRunCancelled):
		status = statusCancelled
	case err != nil:
		status = statusFailed
	}
	p.obs.RecordRun(context.WithoutCancel(ctx), status, result.Duration, result.Products)

	if err != nil {
		fields := apperrors.AsStandardError(err).Fields()
		fields["status"] = status
		fields["durationMs"] = result.Duration.Milliseconds()
		log.Error("run failed", fields)
		return result, err
	}

	log.Info("run completed", map[string]interface{}{
		"sources":    len(result.Sources),
		"skipped":    strings.Join(result.Skipped, ","),
		"products":   result.Products,
		"indexed":    result.Ack.Indexed,
		"durationMs": result.Duration.Milliseconds(),
	})
	return result, nil
}
