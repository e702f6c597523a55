// internal/catalog/parser/parser.go
package parser

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	apperrors "storefront/internal/common/errors"
	"storefront/internal/common/logger"
	"storefront/internal/common/metrics"
	"storefront/internal/models"
)

const ComponentName = "record-parser"

var (
	ErrUnsupportedFormat = errors.New("UNSUPPORTED_SOURCE_FORMAT")
	ErrMalformedSource   = errors.New("MALFORMED_SOURCE")
)

// Parser turns one tabular source into normalized products.
type Parser struct {
	config *Config
	logger logger.Logger
}

func NewParser(config *Config, log logger.Logger) *Parser {
	if config == nil {
		config = LoadConfig()
	}
	return &Parser{
		config: config,
		logger: log.With(map[string]interface{}{"component": ComponentName}),
	}
}

// FormatFromPath picks the reader for a file by extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return FormatCSV, nil
	case ".tsv":
		return FormatTSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
}

// Parse reads the file at path. Any failure to open or read it is SOURCE_READ_FAILED;
// rows that cannot become products are only counted.
func (p *Parser) Parse(ctx context.Context, path, category string) ([]models.Product, Stats, error) {
	stats := Stats{Source: path, Category: category}

	format, err := FormatFromPath(path)
	if err != nil {
		return nil, stats, apperrors.NewSourceReadFailedError(path, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, stats, apperrors.NewSourceReadFailedError(path, err)
	}
	defer f.Close()

	products, stats, err := p.parse(ctx, f, format, category)
	stats.Source = path
	if err != nil {
		return nil, stats, apperrors.NewSourceReadFailedError(path, err)
	}

	p.logger.Info("source parsed", map[string]interface{}{
		"source":    path,
		"category":  category,
		"rows":      stats.Rows,
		"emitted":   stats.Emitted,
		"skipped":   stats.Skipped,
		"truncated": stats.Truncated,
	})
	return products, stats, nil
}

// ParseReader parses an already opened source.
func (p *Parser) ParseReader(r io.Reader, format Format, category string) ([]models.Product, Stats, error) {
	return p.parse(context.Background(), r, format, category)
}

func (p *Parser) parse(ctx context.Context, r io.Reader, format Format, category string) ([]models.Product, Stats, error) {
	stats := Stats{Category: category}

	rows, err := openRows(r, format)
	if err != nil {
		return nil, stats, err
	}
	defer rows.Close()

	header, err := rows.Next()
	if errors.Is(err, io.EOF) {
		return []models.Product{}, stats, nil
	}
	if err != nil {
		return nil, stats, fmt.Errorf("%w: header: %v", ErrMalformedSource, err)
	}
	header = normalizeHeader(header)

	products := make([]models.Product, 0)
	idPrefix := strings.ToLower(category) + "-"

	for {
		if err := ctx.Err(); err != nil {
			return nil, stats, err
		}

		cells, err := rows.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, stats, fmt.Errorf("%w: row %d: %v", ErrMalformedSource, stats.Rows+1, err)
		}
		stats.Rows++

		if p.config.MaxPerSource > 0 && stats.Emitted >= p.config.MaxPerSource {
			stats.Truncated++
			continue
		}

		product, ok := p.normalize(toRecord(header, cells), category)
		if !ok {
			stats.Skipped++
			metrics.RecordsSkipped.WithLabelValues(category, "missing_name").Inc()
			p.logger.Debug("row skipped", map[string]interface{}{
				"row":    stats.Rows,
				"reason": "missing name",
			})
			continue
		}

		product.ID = idPrefix + strconv.Itoa(stats.Emitted)
		products = append(products, product)
		stats.Emitted++
	}

	metrics.RecordsParsed.WithLabelValues(category).Add(float64(stats.Emitted))
	if stats.Truncated > 0 {
		metrics.RecordsSkipped.WithLabelValues(category, "over_cap").Add(float64(stats.Truncated))
	}
	return products, stats, nil
}

// normalize maps one raw record onto a product. The ID is assigned by the caller.
func (p *Parser) normalize(rec models.RawRecord, category string) (models.Product, bool) {
	name := firstValue(rec, nameColumns)
	if name == "" {
		return models.Product{}, false
	}

	description := firstValue(rec, descriptionColumns)
	if description == "" {
		description = name
	}

	return models.Product{
		Name:        name,
		Description: TruncateDescription(description, p.config.DescriptionLimit),
		Brand:       ExtractBrand(name),
		Price:       NormalizePrice(firstValue(rec, priceColumns)),
		Category:    category,
		Image:       firstValue(rec, imageColumns),
	}, true
}

func normalizeHeader(header []string) []string {
	out := make([]string, len(header))
	for i, h := range header {
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		out[i] = normalizeColumn(h)
	}
	return out
}

// toRecord pairs cells with header names. Short rows leave columns absent,
// cells past the header are dropped.
func toRecord(header, cells []string) models.RawRecord {
	rec := make(models.RawRecord, len(header))
	for i, name := range header {
		if i >= len(cells) || name == "" {
			continue
		}
		if _, dup := rec[name]; dup {
			continue
		}
		rec[name] = cells[i]
	}
	return rec
}

// rowSource yields rows including the header; io.EOF marks the end.
type rowSource interface {
	Next() ([]string, error)
	Close() error
}

func openRows(r io.Reader, format Format) (rowSource, error) {
	switch format {
	case FormatCSV, FormatTSV:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		cr.LazyQuotes = true
		if format == FormatTSV {
			cr.Comma = '\t'
		}
		return &delimitedRows{reader: cr}, nil
	case FormatXLSX:
		sheet, err := openSheet(r)
		if err != nil {
			return nil, err
		}
		return sheet, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
}

type delimitedRows struct {
	reader *csv.Reader
}

func (d *delimitedRows) Next() ([]string, error) { return d.reader.Read() }

func (d *delimitedRows) Close() error { return nil }

// sheetRows streams the first worksheet of a workbook.
type sheetRows struct {
	file *excelize.File
	rows *excelize.Rows
}

func openSheet(r io.Reader) (*sheetRows, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		f.Close()
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrMalformedSource)
	}

	rows, err := f.Rows(sheets[0])
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", ErrMalformedSource, err)
	}
	return &sheetRows{file: f, rows: rows}, nil
}

func (s *sheetRows) Next() ([]string, error) {
	if !s.rows.Next() {
		if err := s.rows.Error(); err != nil {
			return nil, err
		}
		return nil, io.EOF
	}
	return s.rows.Columns()
}

func (s *sheetRows) Close() error {
	_ = s.rows.Close()
	return s.file.Close()
}
