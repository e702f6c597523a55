// internal/catalog/enrichment/models.go
package enrichment

// Stats summarizes one Enrich call.
type Stats struct {
	Processed         int `json:"processed"`
	ImagesKept        int `json:"imagesKept"`
	ImagesResolved    int `json:"imagesResolved"`
	ImagesPlaceholder int `json:"imagesPlaceholder"`
	Embedded          int `json:"embedded"`
	EmbeddingFailed   int `json:"embeddingFailed"`
	EmbeddingSkipped  int `json:"embeddingSkipped"`
}

// SearchResult is the first hit of an image lookup.
type SearchResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Image string `json:"image,omitempty"`
}

type searchRequest struct {
	Query         string `json:"query"`
	Type          string `json:"type"`
	NumResults    int    `json:"numResults"`
	UseAutoprompt bool   `json:"useAutoprompt"`
}

type searchResponse struct {
	Results []SearchResult `json:"results"`
}

// itemOutcome is written only by the goroutine owning that product index.
type itemOutcome struct {
	image     string // "kept", "resolved" or "placeholder"
	embedding string // "embedded", "failed" or "skipped"
}
