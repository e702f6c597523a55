package pipeline

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/catalog/enrichment"
	"storefront/internal/catalog/parser"
	"storefront/internal/catalog/upsert"
	"storefront/internal/common/config"
	"storefront/internal/common/database"
	"storefront/internal/common/logger"
)

const e2eDims = 4

// ==========================================
// End to end with faked backends
// ==========================================

func TestPipeline_EndToEnd(t *testing.T) {
	exa := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "exa-key", r.Header.Get("x-api-key"))
		_, _ = io.WriteString(w, `{"results":[{"url":"https://shop.example.com/p","title":"p","image":"https://cdn.example.com/found.png"}]}`)
	}))
	defer exa.Close()

	openai := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Input) == 1 && strings.Contains(req.Input[0], "Broken") {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = io.WriteString(w, `{"error":{"message":"bad input","type":"invalid_request_error"}}`)
			return
		}
		_, _ = io.WriteString(w, `{"object":"list","model":"text-embedding-3-small","data":[{"object":"embedding","index":0,"embedding":[0.1,0.2,0.3,0.4]}]}`)
	}))
	defer openai.Close()

	var mu sync.Mutex
	var docs []map[string]interface{}
	es := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.Header().Set("Content-Type", "application/json")
		if !strings.HasSuffix(r.URL.Path, "/_bulk") {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		mu.Lock()
		defer mu.Unlock()
		var items []string
		sc := bufio.NewScanner(r.Body)
		line := 0
		for sc.Scan() {
			if line%2 == 1 {
				var doc map[string]interface{}
				assert.NoError(t, json.Unmarshal(sc.Bytes(), &doc))
				docs = append(docs, doc)
				items = append(items, fmt.Sprintf(`{"index":{"_id":%q,"status":201}}`, doc["id"]))
			}
			line++
		}
		_, _ = fmt.Fprintf(w, `{"took":3,"errors":false,"items":[%s]}`, strings.Join(items, ","))
	}))
	defer es.Close()

	dir := t.TempDir()
	csv := "Title,Price,Image URL,Key Features\n" +
		"HP Pavilion 15,\"₹66,400\",https://cdn.example.com/hp.png,Ryzen 7\n" +
		",₹100,,no name\n" +
		"Broken Model X,₹8300,https://cdn.example.com/x.png,\n" +
		"Lenovo IdeaPad,8300,,Slim\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "laptops.csv"), []byte(csv), 0o600))

	log := logger.NewTestLogger(t)

	enrichCfg := enrichment.LoadConfig()
	enrichCfg.Dimensions = e2eDims
	enricher := enrichment.NewEnricher(enrichCfg, log,
		enrichment.WithImageSearcher(enrichment.NewExaSearcher(exa.URL, "exa-key", time.Second)),
		enrichment.WithResolver(enrichment.NewResolver("result", log)),
		enrichment.WithEmbedder(enrichment.NewOpenAIEmbedder("sk-test", openai.URL+"/v1", enrichment.DefaultModel, e2eDims, time.Second)),
	)

	esClient, err := database.NewElasticsearch(config.ElasticsearchConfig{URL: es.URL})
	require.NoError(t, err)
	upsertCfg := upsert.LoadConfig()
	upsertCfg.Dimensions = e2eDims
	upserter, err := upsert.NewUpserter(upsertCfg, esClient, log)
	require.NoError(t, err)

	p := New(&Config{SourceDir: dir}, parser.NewParser(parser.LoadConfig(), log), enricher, upserter, nil, log)
	result, err := p.RunDir(context.Background(), "")
	require.NoError(t, err)

	assert.Equal(t, 3, result.Products)
	assert.Equal(t, 1, result.Sources[0].Skipped)
	assert.Equal(t, 2, result.Enrichment.Embedded)
	assert.Equal(t, 1, result.Enrichment.EmbeddingFailed)
	assert.Equal(t, 1, result.Enrichment.ImagesResolved)
	assert.Equal(t, result.RunID, result.Ack.TaskID)
	assert.Equal(t, 3, result.Ack.Indexed)

	require.Len(t, docs, 3)
	assert.Equal(t, "laptops-0", docs[0]["id"])
	assert.Equal(t, "HP", docs[0]["brand"])
	assert.Equal(t, 800.0, docs[0]["price"])
	assert.Len(t, docs[0]["description_vector"], e2eDims)

	assert.Equal(t, "laptops-1", docs[1]["id"])
	assert.Equal(t, "Broken Model X", docs[1]["description"])
	assert.NotContains(t, docs[1], "description_vector")

	assert.Equal(t, "Lenovo", docs[2]["brand"])
	assert.Equal(t, "https://cdn.example.com/found.png", docs[2]["image"])
	assert.Equal(t, 100.0, docs[2]["price"])
}
