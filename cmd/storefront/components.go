// cmd/storefront/components.go
package main

import (
	"context"
	"time"

	"storefront/internal/catalog/enrichment"
	"storefront/internal/catalog/parser"
	"storefront/internal/catalog/pipeline"
	"storefront/internal/catalog/upsert"
	"storefront/internal/common/config"
	"storefront/internal/common/database"
	"storefront/internal/common/observability"
)

func (a *app) connectElasticsearch(ctx context.Context) (*database.ElasticsearchClient, error) {
	var es *database.ElasticsearchClient
	err := retryWithBackoff(ctx, func() error {
		var err error
		es, err = database.NewElasticsearch(a.cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return es.Ping(ctx)
	}, 5, 2*time.Second, a.log, "Elasticsearch connection")
	if err != nil {
		return nil, err
	}
	a.log.Info("Elasticsearch connected successfully", map[string]interface{}{
		"url": a.cfg.Database.Elasticsearch.GetURL(),
	})
	return es, nil
}

// connectRedis returns nil when the cache is disabled or unreachable; enrichment then
// runs uncached.
func (a *app) connectRedis(ctx context.Context) *database.RedisClient {
	if !a.cfg.Database.Redis.Enabled {
		return nil
	}

	redis, err := database.NewRedis(a.cfg.Database.Redis)
	if err == nil {
		err = redis.Ping(ctx)
	}
	if err != nil {
		a.log.Warn("redis unavailable, enrichment cache disabled", map[string]interface{}{"error": err})
		if redis != nil {
			_ = redis.Close()
		}
		return nil
	}
	a.log.Info("Redis connected successfully", map[string]interface{}{"address": a.cfg.Database.Redis.Address})
	return redis
}

func (a *app) newUpserter(es *database.ElasticsearchClient) (*upsert.Upserter, error) {
	ic := a.cfg.Index
	return upsert.NewUpserter(&upsert.Config{
		Index:      ic.Name,
		ChunkDocs:  ic.ChunkDocs,
		ChunkBytes: ic.ChunkBytes,
		Dimensions: a.cfg.Enrichment.Embedding.Dimensions,
		Timeout:    config.GetDuration(ic.Timeout),
	}, es, a.log)
}

func (a *app) newEnricher(redis *database.RedisClient) *enrichment.Enricher {
	ec := a.cfg.Enrichment
	cfg := &enrichment.Config{
		Concurrency:        ec.Concurrency,
		RatePerSecond:      ec.RatePerSecond,
		Burst:              ec.Burst,
		ProgressEvery:      ec.ProgressEvery,
		PlaceholderURL:     ec.PlaceholderURL,
		CacheTTL:           config.GetDuration(ec.CacheTTL),
		ImageSearchURL:     ec.ImageSearch.BaseURL,
		ImageSearchAPIKey:  ec.ImageSearch.APIKey,
		ImageSearchTimeout: config.GetDuration(ec.ImageSearch.Timeout),
		EmbeddingURL:       ec.Embedding.BaseURL,
		EmbeddingAPIKey:    ec.Embedding.APIKey,
		EmbeddingModel:     ec.Embedding.Model,
		Dimensions:         ec.Embedding.Dimensions,
		EmbeddingTimeout:   config.GetDuration(ec.Embedding.Timeout),
	}

	opts := []enrichment.Option{
		enrichment.WithResolver(enrichment.NewResolver(ec.ImageSearch.Resolver, a.log)),
	}
	if cfg.ImageSearchAPIKey != "" {
		opts = append(opts, enrichment.WithImageSearcher(
			enrichment.NewExaSearcher(cfg.ImageSearchURL, cfg.ImageSearchAPIKey, cfg.ImageSearchTimeout)))
	}
	if cfg.EmbeddingAPIKey != "" {
		opts = append(opts, enrichment.WithEmbedder(enrichment.NewOpenAIEmbedder(
			cfg.EmbeddingAPIKey, cfg.EmbeddingURL, cfg.EmbeddingModel, cfg.Dimensions, cfg.EmbeddingTimeout)))
	}
	if redis != nil {
		opts = append(opts, enrichment.WithCache(enrichment.NewCache(redis, cfg.CacheTTL, cfg.EmbeddingModel, a.log)))
	}

	return enrichment.NewEnricher(cfg, a.log, opts...)
}

func (a *app) newParser() *parser.Parser {
	return parser.NewParser(&parser.Config{
		MaxPerSource:     a.cfg.Catalog.MaxPerSource,
		DescriptionLimit: a.cfg.Catalog.DescriptionLimit,
	}, a.log)
}

// newPipeline wires every ingestion stage. The returned cleanup closes the backends.
func (a *app) newPipeline(ctx context.Context) (*pipeline.Pipeline, *upsert.Upserter, func(), error) {
	if err := config.ValidateForIngest(a.cfg); err != nil {
		return nil, nil, nil, err
	}

	es, err := a.connectElasticsearch(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	upserter, err := a.newUpserter(es)
	if err != nil {
		return nil, nil, nil, err
	}

	redis := a.connectRedis(ctx)
	obs := observability.New(a.cfg.App.Name, a.log)

	p := pipeline.New(&pipeline.Config{
		SourceDir: a.cfg.Catalog.SourceDir,
	}, a.newParser(), a.newEnricher(redis), upserter, obs, a.log)

	cleanup := func() {
		obs.Shutdown()
		if redis != nil {
			_ = redis.Close()
		}
	}
	return p, upserter, cleanup, nil
}
