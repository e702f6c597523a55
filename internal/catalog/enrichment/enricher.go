// internal/catalog/enrichment/enricher.go
package enrichment

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	apperrors "storefront/internal/common/errors"
	"storefront/internal/common/logger"
	"storefront/internal/common/metrics"
	"storefront/internal/common/validation"
	"storefront/internal/models"
)

const (
	ComponentName = "enrichment-stage"

	stageImage     = "image"
	stageEmbedding = "embedding"
)

// Enricher backfills images and attaches embeddings. Per-product failures degrade that
// product only; Enrich never returns an error.
type Enricher struct {
	config   *Config
	searcher ImageSearcher
	resolver ImageResolver
	embedder Embedder
	cache    *Cache
	limiter  *rate.Limiter
	logger   logger.Logger
}

type Option func(*Enricher)

// WithImageSearcher enables image backfill. Without it blank images get the placeholder.
func WithImageSearcher(s ImageSearcher) Option {
	return func(e *Enricher) { e.searcher = s }
}

func WithResolver(r ImageResolver) Option {
	return func(e *Enricher) { e.resolver = r }
}

// WithEmbedder enables embeddings. Without it products are left without vectors.
func WithEmbedder(m Embedder) Option {
	return func(e *Enricher) { e.embedder = m }
}

func WithCache(c *Cache) Option {
	return func(e *Enricher) { e.cache = c }
}

func NewEnricher(config *Config, log logger.Logger, opts ...Option) *Enricher {
	if config == nil {
		config = LoadConfig()
	}
	e := &Enricher{
		config: config,
		logger: log.With(map[string]interface{}{"component": ComponentName}),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.resolver == nil {
		e.resolver = NewNoImageResolver(e.logger)
	}
	if config.RatePerSecond > 0 {
		burst := config.Burst
		if burst < 1 {
			burst = 1
		}
		e.limiter = rate.NewLimiter(rate.Limit(config.RatePerSecond), burst)
	}
	return e
}

// Enrich mutates products in place. Output order equals input order.
func (e *Enricher) Enrich(ctx context.Context, products []models.Product) Stats {
	var stats Stats
	if len(products) == 0 {
		return stats
	}

	if e.embedder == nil {
		e.logger.Info("embedding disabled, no API key configured", nil)
	}
	if e.searcher == nil {
		e.logger.Info("image search disabled, blank images get the placeholder", nil)
	}

	limit := e.config.Concurrency
	if limit < 1 {
		limit = 1
	}
	every := int64(e.config.ProgressEvery)
	if every < 1 {
		every = 10
	}
	total := len(products)

	outcomes := make([]itemOutcome, total)
	var processed atomic.Int64

	var g errgroup.Group
	g.SetLimit(limit)
	for i := range products {
		i := i
		g.Go(func() error {
			outcomes[i] = e.enrichOne(ctx, &products[i])
			if n := processed.Add(1); n%every == 0 {
				e.logger.Info("enrichment progress", map[string]interface{}{
					"processed": n,
					"total":     total,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	for _, o := range outcomes {
		stats.Processed++
		switch o.image {
		case "kept":
			stats.ImagesKept++
		case "resolved":
			stats.ImagesResolved++
		default:
			stats.ImagesPlaceholder++
		}
		switch o.embedding {
		case "embedded":
			stats.Embedded++
		case "failed":
			stats.EmbeddingFailed++
		default:
			stats.EmbeddingSkipped++
		}
	}

	e.logger.Info("enrichment completed", map[string]interface{}{
		"processed":         stats.Processed,
		"imagesResolved":    stats.ImagesResolved,
		"imagesPlaceholder": stats.ImagesPlaceholder,
		"embedded":          stats.Embedded,
		"embeddingFailed":   stats.EmbeddingFailed,
	})
	return stats
}

func (e *Enricher) enrichOne(ctx context.Context, p *models.Product) (out itemOutcome) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("enrichment panicked", map[string]interface{}{
				"productId": p.ID,
				"panic":     fmt.Sprint(r),
			})
			if out.image == "" {
				if !p.HasImage() {
					p.Image = e.config.PlaceholderURL
				}
				out.image = "placeholder"
			}
			if out.embedding == "" {
				out.embedding = "failed"
			}
		}
	}()

	out.image = e.backfillImage(ctx, p)
	out.embedding = e.embed(ctx, p)
	return out
}

func (e *Enricher) backfillImage(ctx context.Context, p *models.Product) string {
	if p.HasImage() {
		metrics.EnrichmentOutcomes.WithLabelValues(stageImage, "kept").Inc()
		return "kept"
	}

	url, err := e.lookupImage(ctx, p)
	if err != nil {
		e.logFailure(stageImage, p.ID, err)
	}
	if url == "" {
		p.Image = e.config.PlaceholderURL
		metrics.EnrichmentOutcomes.WithLabelValues(stageImage, "placeholder").Inc()
		return "placeholder"
	}

	p.Image = url
	metrics.EnrichmentOutcomes.WithLabelValues(stageImage, "resolved").Inc()
	return "resolved"
}

func (e *Enricher) lookupImage(ctx context.Context, p *models.Product) (string, error) {
	if e.searcher == nil {
		return "", nil
	}

	query := ImageQuery(*p)
	if cached, ok := e.cache.GetImage(ctx, query); ok {
		return cached, nil
	}

	if err := e.wait(ctx); err != nil {
		return "", err
	}

	start := time.Now()
	result, err := e.searcher.Search(ctx, query)
	metrics.EnrichmentDuration.WithLabelValues(stageImage).Observe(time.Since(start).Seconds())
	if err != nil {
		return "", err
	}

	url, err := e.resolver.Resolve(ctx, *result)
	if err != nil {
		return "", err
	}
	if url == "" || !validation.ValidateURL(url) {
		return "", nil
	}

	e.cache.SetImage(ctx, query, url)
	return url, nil
}

func (e *Enricher) embed(ctx context.Context, p *models.Product) string {
	if e.embedder == nil {
		return "skipped"
	}

	text := p.EmbeddingText()
	if vec, ok := e.cache.GetEmbedding(ctx, text); ok && len(vec) == e.config.Dimensions {
		p.Embedding = vec
		metrics.EnrichmentOutcomes.WithLabelValues(stageEmbedding, "cached").Inc()
		return "embedded"
	}

	if err := e.wait(ctx); err != nil {
		e.logFailure(stageEmbedding, p.ID, err)
		return "failed"
	}

	start := time.Now()
	vec, err := e.embedder.Embed(ctx, text)
	metrics.EnrichmentDuration.WithLabelValues(stageEmbedding).Observe(time.Since(start).Seconds())
	if err == nil && len(vec) != e.config.Dimensions {
		err = fmt.Errorf("%w: got %d, want %d", ErrEmbeddingDimension, len(vec), e.config.Dimensions)
	}
	if err != nil {
		e.logFailure(stageEmbedding, p.ID, err)
		metrics.EnrichmentOutcomes.WithLabelValues(stageEmbedding, "failed").Inc()
		return "failed"
	}

	p.Embedding = vec
	e.cache.SetEmbedding(ctx, text, vec)
	metrics.EnrichmentOutcomes.WithLabelValues(stageEmbedding, "embedded").Inc()
	return "embedded"
}

func (e *Enricher) wait(ctx context.Context) error {
	if e.limiter == nil {
		return ctx.Err()
	}
	return e.limiter.Wait(ctx)
}

func (e *Enricher) logFailure(stage, productID string, err error) {
	e.logger.Warn("enrichment failed, continuing", apperrors.NewEnrichmentFailedError(stage, productID, err).Fields())
}
