package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"storefront/internal/domain"
)

type ItemWriter interface {
	Upsert(ctx context.Context, item domain.Item) (*domain.Item, error)
}

// CSVImporter reads catalog CSV exports and inserts/updates items.
// Expected headers: slug, name, price_yen.
type CSVImporter struct {
	reader   *csv.Reader
	itemRepo ItemWriter
}

func NewCSVImporter(r io.Reader, repo ItemWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	return &CSVImporter{
		reader:   csvr,
		itemRepo: repo,
	}
}

// Run parses CSV rows and upserts items keyed by slug.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)

	var imported int
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return imported, fmt.Errorf("read row: %w", err)
		}

		slug := pick(record, index, "slug")
		name := pick(record, index, "name")
		priceStr := pick(record, index, "price_yen")
		if slug == "" && name == "" && priceStr == "" {
			continue
		}
		if slug == "" || name == "" || priceStr == "" {
			return imported, fmt.Errorf("invalid item row (missing required fields) for slug %q", slug)
		}
		price, err := strconv.ParseInt(priceStr, 10, 64)
		if err != nil || price < 0 {
			return imported, fmt.Errorf("invalid price for slug %q: %s", slug, priceStr)
		}

		if _, err := i.itemRepo.Upsert(ctx, domain.Item{
			Slug:     slug,
			Name:     name,
			PriceYen: price,
		}); err != nil {
			return imported, fmt.Errorf("upsert item %q: %w", slug, err)
		}
		imported++
	}

	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(h)] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}
