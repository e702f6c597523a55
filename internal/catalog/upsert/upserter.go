// internal/catalog/upsert/upserter.go
package upsert

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"storefront/internal/common/database"
	apperrors "storefront/internal/common/errors"
	commonhttp "storefront/internal/common/http"
	"storefront/internal/common/logger"
	"storefront/internal/common/metrics"
	"storefront/internal/common/validation"
	"storefront/internal/models"
)

const ComponentName = "batch-upserter"

var (
	ErrBulkRejected   = errors.New("BULK_REQUEST_REJECTED")
	ErrBulkItemFailed = errors.New("BULK_ITEM_FAILED")
)

type taskIDKey struct{}

// ContextWithTaskID tags the upsert issued under ctx with a caller chosen task ID.
func ContextWithTaskID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, taskIDKey{}, id)
}

func taskIDFrom(ctx context.Context) string {
	if id, ok := ctx.Value(taskIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

// Upserter writes product batches to Elasticsearch keyed by product ID.
type Upserter struct {
	config    *Config
	es        *database.ElasticsearchClient
	validator *validation.Validator
	logger    logger.Logger
}

func NewUpserter(config *Config, es *database.ElasticsearchClient, log logger.Logger) (*Upserter, error) {
	if config == nil {
		config = LoadConfig()
	}
	validator, err := validation.NewValidator(validation.ProductSchema(config.Dimensions))
	if err != nil {
		return nil, err
	}
	return &Upserter{
		config:    config,
		es:        es,
		validator: validator,
		logger: log.With(map[string]interface{}{
			"component": ComponentName,
			"index":     config.Index,
		}),
	}, nil
}

// CheckUniqueIDs rejects a batch in which two products share an ID.
func CheckUniqueIDs(products []models.Product) error {
	seen := make(map[string]struct{}, len(products))
	for _, p := range products {
		if _, dup := seen[p.ID]; dup {
			return apperrors.NewDuplicateDocumentIDError(p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Validate checks every product before anything is sent.
func (u *Upserter) Validate(products []models.Product) error {
	if err := CheckUniqueIDs(products); err != nil {
		return err
	}
	for _, p := range products {
		res, err := u.validator.Validate(p)
		if err != nil {
			return apperrors.NewDocumentValidationFailedError(fmt.Sprintf("%s: %v", p.ID, err))
		}
		if !res.Valid {
			return apperrors.NewDocumentValidationFailedError(fmt.Sprintf("%s: %s", p.ID, strings.Join(res.GetErrorMessages(), "; ")))
		}
	}
	return nil
}

// Upsert replaces or inserts every product. The call succeeds only if every chunk is
// fully accepted; chunks written before a failing one stay written.
func (u *Upserter) Upsert(ctx context.Context, products []models.Product) (*Ack, error) {
	ack := &Ack{Index: u.config.Index, TaskID: taskIDFrom(ctx)}
	if len(products) == 0 {
		return ack, nil
	}

	if err := u.Validate(products); err != nil {
		metrics.UpsertFailures.WithLabelValues(u.config.Index, string(apperrors.AsStandardError(err).Code)).Inc()
		return nil, err
	}

	chunks, err := u.buildChunks(products)
	if err != nil {
		return nil, apperrors.NewBatchUpsertFailedError(u.config.Index, err)
	}

	log := u.logger.With(map[string]interface{}{"taskId": ack.TaskID})
	for i, chunk := range chunks {
		indexed, took, err := u.sendChunk(ctx, chunk)
		ack.Indexed += indexed
		ack.TookMs += took
		if err != nil {
			metrics.UpsertFailures.WithLabelValues(u.config.Index, string(apperrors.ErrCodeBatchUpsertFailed)).Inc()
			log.Error("bulk chunk failed", map[string]interface{}{
				"chunk":   i + 1,
				"chunks":  len(chunks),
				"indexed": ack.Indexed,
				"error":   err,
			})
			return nil, apperrors.NewBatchUpsertFailedError(u.config.Index, err)
		}
		ack.Chunks++
		metrics.DocumentsUpserted.WithLabelValues(u.config.Index).Add(float64(indexed))
	}

	log.Info("batch upserted", map[string]interface{}{
		"indexed": ack.Indexed,
		"chunks":  ack.Chunks,
		"tookMs":  ack.TookMs,
	})
	return ack, nil
}

type chunk struct {
	body []byte
	docs int
}

// buildChunks encodes products as bulk NDJSON, bounded by document count and body size.
// A single document larger than the byte bound travels alone.
func (u *Upserter) buildChunks(products []models.Product) ([]chunk, error) {
	var chunks []chunk
	var buf bytes.Buffer
	docs := 0

	flush := func() {
		if docs == 0 {
			return
		}
		chunks = append(chunks, chunk{body: append([]byte(nil), buf.Bytes()...), docs: docs})
		buf.Reset()
		docs = 0
	}

	for _, p := range products {
		entry, err := encodeEntry(u.config.Index, p)
		if err != nil {
			return nil, fmt.Errorf("encode %s: %w", p.ID, err)
		}
		if docs > 0 && (docs >= u.config.ChunkDocs || buf.Len()+len(entry) > u.config.ChunkBytes) {
			flush()
		}
		buf.Write(entry)
		docs++
	}
	flush()
	return chunks, nil
}

func encodeEntry(index string, p models.Product) ([]byte, error) {
	action, err := json.Marshal(bulkAction{Index: bulkActionMeta{Index: index, ID: p.ID}})
	if err != nil {
		return nil, err
	}
	doc, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(action)+len(doc)+2)
	out = append(out, action...)
	out = append(out, '\n')
	out = append(out, doc...)
	out = append(out, '\n')
	return out, nil
}

func (u *Upserter) sendChunk(ctx context.Context, c chunk) (int, int64, error) {
	client := u.es.Client
	if u.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, u.config.Timeout)
		defer cancel()
	}

	res, err := client.Bulk(
		bytes.NewReader(c.body),
		client.Bulk.WithContext(ctx),
		client.Bulk.WithIndex(u.config.Index),
	)
	if err != nil {
		return 0, 0, fmt.Errorf("bulk request: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return 0, 0, fmt.Errorf("%w: %s: %s", ErrBulkRejected, res.Status(), commonhttp.ReadSnippet(res.Body, 1024))
	}

	var decoded bulkResponse
	if err := json.NewDecoder(res.Body).Decode(&decoded); err != nil {
		return 0, 0, fmt.Errorf("decode bulk response: %w", err)
	}

	indexed := 0
	var failures []string
	for _, item := range decoded.Items {
		for _, result := range item {
			if result.Error == nil && result.Status >= 200 && result.Status < 300 {
				indexed++
				continue
			}
			reason := fmt.Sprintf("status %d", result.Status)
			if result.Error != nil {
				reason = result.Error.Type + ": " + result.Error.Reason
			}
			if len(failures) < 5 {
				failures = append(failures, result.ID+" ("+reason+")")
			}
		}
	}

	if decoded.Errors || len(failures) > 0 {
		return indexed, decoded.Took, fmt.Errorf("%w: %d of %d documents: %s",
			ErrBulkItemFailed, c.docs-indexed, c.docs, strings.Join(failures, ", "))
	}
	return indexed, decoded.Took, nil
}
