// internal/models/product.go
package models

import "strings"

// RawRecord is one source row keyed by header name.
type RawRecord map[string]string

// Product is the normalized catalog document written to the search index.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Brand       string    `json:"brand"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Image       string    `json:"image"`
	Embedding   []float32 `json:"description_vector,omitempty"`
}

// EmbeddingText is the text embedded for semantic search.
func (p Product) EmbeddingText() string {
	return p.Name + " " + p.Brand + " " + p.Category + " " + p.Description
}

// HasImage reports whether an image URL is already set.
func (p Product) HasImage() bool {
	return strings.TrimSpace(p.Image) != ""
}
