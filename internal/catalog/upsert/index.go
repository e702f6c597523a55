// internal/catalog/upsert/index.go
package upsert

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	apperrors "storefront/internal/common/errors"
	commonhttp "storefront/internal/common/http"
)

// IndexMapping makes category and brand facetable keywords and stores the embedding as
// a dense vector of the given dimensions.
func IndexMapping(dimensions int) string {
	return fmt.Sprintf(`{
  "mappings": {
    "properties": {
      "id":          {"type": "keyword"},
      "name":        {"type": "text"},
      "description": {"type": "text"},
      "brand":       {"type": "keyword"},
      "category":    {"type": "keyword"},
      "price":       {"type": "float"},
      "image":       {"type": "keyword", "index": false},
      "description_vector": {
        "type": "dense_vector",
        "dims": %d,
        "index": true,
        "similarity": "cosine"
      }
    }
  }
}`, dimensions)
}

// EnsureIndex creates the index with its mapping when it does not exist yet.
// It reports whether the index was created.
func (u *Upserter) EnsureIndex(ctx context.Context) (bool, error) {
	exists, err := u.es.IndexExists(ctx, u.config.Index)
	if err != nil {
		return false, apperrors.NewIndexSetupFailedError(u.config.Index, err)
	}
	if exists {
		u.logger.Debug("index already exists", nil)
		return false, nil
	}

	client := u.es.Client
	res, err := client.Indices.Create(
		u.config.Index,
		client.Indices.Create.WithContext(ctx),
		client.Indices.Create.WithBody(strings.NewReader(IndexMapping(u.config.Dimensions))),
	)
	if err != nil {
		return false, apperrors.NewIndexSetupFailedError(u.config.Index, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body := commonhttp.ReadSnippet(res.Body, 1024)
		// lost a race with another creator
		if res.StatusCode == http.StatusBadRequest && strings.Contains(body, "resource_already_exists_exception") {
			return false, nil
		}
		return false, apperrors.NewIndexSetupFailedError(u.config.Index, fmt.Errorf("%s: %s", res.Status(), body))
	}

	u.logger.Info("index created", map[string]interface{}{"dimensions": u.config.Dimensions})
	return true, nil
}
