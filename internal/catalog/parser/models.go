// internal/catalog/parser/models.go
package parser

type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

// Stats describes what happened to the rows of one source.
type Stats struct {
	Source    string `json:"source"`
	Category  string `json:"category"`
	Rows      int    `json:"rows"`
	Emitted   int    `json:"emitted"`
	Skipped   int    `json:"skipped"`
	Truncated int    `json:"truncated"`
}

// Column aliases, first present non-blank value wins.
var (
	nameColumns        = []string{"Title", "name"}
	priceColumns       = []string{"Price", "price"}
	imageColumns       = []string{"Image URL", "image"}
	descriptionColumns = []string{"Key Features", "description"}
)
