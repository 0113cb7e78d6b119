package sync

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
)

// requiredColumns are the feed columns every row must carry. The feed may
// ship extra columns; description is picked up when present.
var requiredColumns = []string{"productID", "name", "price"}

// feedColumns maps feed column names to their position in the header
type feedColumns struct {
	code        int
	name        int
	price       int
	description int // -1 when the feed carries no description column
}

// FeedSource downloads the raw CSV product feed
type FeedSource interface {
	FetchProductCSV(ctx context.Context) ([]byte, error)
}

// ImportReport summarizes one CSV import run
type ImportReport struct {
	Rows       int    `json:"rows"`
	Updated    int    `json:"updated"`
	Unchanged  int    `json:"unchanged"`
	Skipped    int    `json:"skipped"`
	ArchivedTo string `json:"archivedTo"`
}

// CSVImporter refreshes mirrored products from the ERP's CSV price feed.
// The feed carries no GUIDs, so rows are matched by product code and can
// only update products the reconciler has already mirrored.
type CSVImporter struct {
	source     FeedSource
	products   catalog.ProductRepository
	importsDir string
	logger     *zap.Logger
}

// NewCSVImporter creates a new CSVImporter
func NewCSVImporter(source FeedSource, products catalog.ProductRepository, importsDir string, logger *zap.Logger) *CSVImporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CSVImporter{
		source:     source,
		products:   products,
		importsDir: importsDir,
		logger:     logger,
	}
}

// Import downloads the feed, archives the raw file, and applies valid rows.
// A malformed header aborts the run with zero writes; malformed rows are
// skipped individually.
func (i *CSVImporter) Import(ctx context.Context) (*ImportReport, error) {
	raw, err := i.source.FetchProductCSV(ctx)
	if err != nil {
		return nil, err
	}

	archived, err := i.archive(raw)
	if err != nil {
		// An archive failure should not block the price refresh.
		i.logger.Warn("Feed archive failed", zap.Error(err))
	}

	reader := csv.NewReader(bytes.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, shared.NewDomainError("INVALID_FEED", "Feed is empty or unreadable")
	}
	columns, err := resolveColumns(header)
	if err != nil {
		return nil, err
	}

	report := &ImportReport{ArchivedTo: archived}

	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			report.Rows++
			report.Skipped++
			continue
		}
		report.Rows++

		if err := i.applyRow(ctx, row, columns, report); err != nil {
			report.Skipped++
			code := ""
			if columns.code < len(row) {
				code = row[columns.code]
			}
			i.logger.Warn("Skipping feed row",
				zap.String("product_code", code),
				zap.Error(err),
			)
		}
	}

	i.logger.Info("CSV feed import finished",
		zap.Int("rows", report.Rows),
		zap.Int("updated", report.Updated),
		zap.Int("unchanged", report.Unchanged),
		zap.Int("skipped", report.Skipped),
		zap.String("archived_to", report.ArchivedTo),
	)

	return report, nil
}

// applyRow updates one mirrored product from a feed row
func (i *CSVImporter) applyRow(ctx context.Context, row []string, columns feedColumns, report *ImportReport) error {
	if columns.code >= len(row) || columns.name >= len(row) || columns.price >= len(row) {
		return shared.NewDomainError("INVALID_FEED_ROW", "Row is missing required fields")
	}

	code, name := row[columns.code], row[columns.name]
	if code == "" {
		return shared.NewDomainError("INVALID_FEED_ROW", "Row carries no product code")
	}
	if name == "" {
		return shared.NewDomainError("INVALID_FEED_ROW", "Row carries no product name")
	}

	price, err := cleanPrice(row[columns.price])
	if err != nil {
		return err
	}

	product, err := i.products.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			// The feed has no GUIDs; a code the reconciler has never
			// mirrored cannot be created from here.
			return shared.NewDomainError("UNKNOWN_PRODUCT_CODE", "No mirrored product for code "+code)
		}
		return err
	}

	description := product.Description
	if columns.description >= 0 && columns.description < len(row) {
		if d := row[columns.description]; d != "" && d != "NaN" {
			description = d
		}
	}
	if !product.Apply(code, name, description, price) {
		report.Unchanged++
		return nil
	}
	if err := i.products.Save(ctx, product); err != nil {
		return err
	}
	report.Updated++
	return nil
}

// archive writes the raw feed to the imports directory with a timestamped name
func (i *CSVImporter) archive(raw []byte) (string, error) {
	if i.importsDir == "" {
		return "", nil
	}
	if err := os.MkdirAll(i.importsDir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("products_%s.csv", time.Now().Format("20060102T150405"))
	path := filepath.Join(i.importsDir, name)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// resolveColumns locates the required feed columns in the header. Extra
// columns are tolerated; a missing required column rejects the feed.
func resolveColumns(header []string) (feedColumns, error) {
	index := make(map[string]int, len(header))
	for idx, name := range header {
		if _, seen := index[name]; !seen {
			index[name] = idx
		}
	}
	for _, want := range requiredColumns {
		if _, ok := index[want]; !ok {
			return feedColumns{}, shared.NewDomainError("INVALID_FEED", "Feed header is missing column "+want)
		}
	}
	columns := feedColumns{
		code:        index["productID"],
		name:        index["name"],
		price:       index["price"],
		description: -1,
	}
	if idx, ok := index["description"]; ok {
		columns.description = idx
	}
	return columns, nil
}
