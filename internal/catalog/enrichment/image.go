// internal/catalog/enrichment/image.go
package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	commonhttp "storefront/internal/common/http"
	"storefront/internal/common/logger"
	"storefront/internal/models"
)

var (
	ErrImageSearchFailed = errors.New("IMAGE_SEARCH_FAILED")
	ErrNoImageFound      = errors.New("NO_IMAGE_FOUND")
)

// ImageSearcher finds the page most likely to show a product.
type ImageSearcher interface {
	Search(ctx context.Context, query string) (*SearchResult, error)
}

// ImageResolver turns a search hit into a raw image URL. An empty URL means unresolved.
type ImageResolver interface {
	Resolve(ctx context.Context, result SearchResult) (string, error)
}

// ImageQuery is the lookup text for a product.
func ImageQuery(p models.Product) string {
	return fmt.Sprintf("%s %s product image", p.Brand, p.Name)
}

// ExaSearcher calls an Exa compatible /search endpoint.
type ExaSearcher struct {
	baseURL string
	apiKey  string
	client  *commonhttp.Client
}

func NewExaSearcher(baseURL, apiKey string, timeout time.Duration) *ExaSearcher {
	return &ExaSearcher{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		client:  commonhttp.NewClient(timeout),
	}
}

func (s *ExaSearcher) Search(ctx context.Context, query string) (*SearchResult, error) {
	body := searchRequest{
		Query:         query,
		Type:          "keyword",
		NumResults:    1,
		UseAutoprompt: true,
	}

	resp, err := s.client.PostJSON(ctx, s.baseURL+"/search", map[string]string{"x-api-key": s.apiKey}, body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImageSearchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: status %d: %s", ErrImageSearchFailed, resp.StatusCode, commonhttp.ReadSnippet(resp.Body, 512))
	}

	var decoded searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrImageSearchFailed, err)
	}
	if len(decoded.Results) == 0 {
		return nil, ErrNoImageFound
	}
	return &decoded.Results[0], nil
}

// NoImageResolver never produces an image, so every blank image ends as the placeholder.
// TODO: fetch result.URL and read its og:image meta tag.
type NoImageResolver struct {
	logger logger.Logger
}

func NewNoImageResolver(log logger.Logger) *NoImageResolver {
	return &NoImageResolver{logger: log}
}

func (r *NoImageResolver) Resolve(_ context.Context, result SearchResult) (string, error) {
	r.logger.Debug("image page found but not resolved", map[string]interface{}{
		"pageUrl": result.URL,
		"title":   result.Title,
	})
	return "", nil
}

// ResultImageResolver trusts the image field some search providers return with a hit.
type ResultImageResolver struct{}

func (ResultImageResolver) Resolve(_ context.Context, result SearchResult) (string, error) {
	return strings.TrimSpace(result.Image), nil
}

// NewResolver picks a resolver by config name: "result" or anything else for none.
func NewResolver(name string, log logger.Logger) ImageResolver {
	if name == "result" {
		return ResultImageResolver{}
	}
	return NewNoImageResolver(log)
}

var _ ImageSearcher = (*ExaSearcher)(nil)
