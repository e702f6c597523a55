// internal/catalog/parser/category.go
package parser

import (
	"path/filepath"
	"strings"
)

const DefaultCategory = "Electronics"

type categoryRule struct {
	keyword  string
	category string
}

// categoryRules are matched against the lower-cased file name, top to bottom.
// It is a coarse heuristic: "laptop-bags.csv" is still Laptops.
var categoryRules = []categoryRule{
	{keyword: "laptop", category: "Laptops"},
	{keyword: "mobile", category: "Smartphones"},
	{keyword: "earphone", category: "Audio"},
}

// CategoryFor derives a category from a source file name.
func CategoryFor(filename string) string {
	base := strings.ToLower(filepath.Base(filename))
	for _, rule := range categoryRules {
		if strings.Contains(base, rule.keyword) {
			return rule.category
		}
	}
	return DefaultCategory
}
