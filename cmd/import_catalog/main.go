// Command import_catalog loads option prices from a CSV or PDF price sheet.
// Each row reads category,name,price[,description]; a leading header row is
// skipped.
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/shopspring/decimal"

	"dessertbox/internal/catalog"
	"dessertbox/internal/config"
	"dessertbox/internal/db"
	applog "dessertbox/internal/log"
	"dessertbox/internal/pricing"
	"dessertbox/internal/store"
)

type optionUpserter interface {
	UpsertOption(ctx context.Context, category pricing.Category, name string, price decimal.Decimal, description string) (bool, error)
}

type priceRow struct {
	Category    pricing.Category
	Name        string
	Price       decimal.Decimal
	Description string
}

func main() {
	sheetPath := "price-sheet.csv"
	if len(os.Args) > 1 {
		sheetPath = os.Args[1]
	}

	if err := run(context.Background(), sheetPath); err != nil {
		fmt.Fprintf(os.Stderr, "import failed: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, sheetPath string) error {
	if strings.TrimSpace(sheetPath) == "" {
		return fmt.Errorf("price sheet path must not be empty")
	}
	if _, err := os.Stat(sheetPath); err != nil {
		return fmt.Errorf("locate price sheet: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return fmt.Errorf("set log level: %w", err)
	}

	rows, err := readSheet(sheetPath)
	if err != nil {
		return fmt.Errorf("read price sheet: %w", err)
	}

	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close(database)

	if err := db.AutoMigrate(database); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}

	cache, closeCache := sharedCache(ctx, cfg.Cache)
	defer closeCache()

	// Servers sharing the Redis snapshot see the new prices on their next
	// read. Process-local caches expire after CATALOG_CACHE_TTL.
	service := catalog.NewService(store.NewCatalogStore(database), cache, cfg.Cache.TTL)
	created, updated, err := importRows(ctx, service, rows)
	if err != nil {
		return err
	}
	fmt.Printf("Imported %d options (%d created, %d updated) from %s\n", created+updated, created, updated, filepath.Base(sheetPath))
	return nil
}

// sharedCache returns the Redis snapshot cache the servers read, or nil when
// none is configured or reachable.
func sharedCache(ctx context.Context, cfg config.CacheConfig) (catalog.Cache, func()) {
	if strings.TrimSpace(cfg.RedisURL) == "" {
		return nil, func() {}
	}
	redisCache, err := catalog.NewRedisCache(cfg.RedisURL)
	if err != nil {
		applog.Error(ctx, "invalid redis url, cached catalogs expire on their own", "error", err)
		return nil, func() {}
	}
	if err := redisCache.Ping(ctx); err != nil {
		applog.Error(ctx, "redis unreachable, cached catalogs expire on their own", "error", err)
		_ = redisCache.Close()
		return nil, func() {}
	}
	return redisCache, func() { _ = redisCache.Close() }
}

func importRows(ctx context.Context, upserter optionUpserter, rows []priceRow) (created, updated int, err error) {
	for idx, row := range rows {
		isNew, err := upserter.UpsertOption(ctx, row.Category, row.Name, row.Price, row.Description)
		if err != nil {
			return created, updated, fmt.Errorf("import row %d (%s %q): %w", idx+1, row.Category, row.Name, err)
		}
		if isNew {
			created++
		} else {
			updated++
		}
		applog.Debug(ctx, "catalog option imported", "category", string(row.Category), "name", row.Name, "price", row.Price.StringFixed(2), "created", isNew)
	}
	return created, updated, nil
}

func readSheet(path string) ([]priceRow, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		text, err := extractTextFromPDF(data)
		if err != nil {
			return nil, fmt.Errorf("extract pdf text: %w", err)
		}
		return parseSheet(strings.NewReader(text))
	}
	return parseSheet(bytes.NewReader(data))
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	for i := 1; i <= reader.NumPage(); i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

func parseSheet(r io.Reader) ([]priceRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var rows []priceRow
	line := 0
	for {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		line++
		if isBlank(fields) {
			continue
		}
		if line == 1 && strings.EqualFold(strings.TrimSpace(fields[0]), "category") {
			continue
		}
		row, err := parseRow(fields)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, errors.New("price sheet has no rows")
	}
	return rows, nil
}

func parseRow(fields []string) (priceRow, error) {
	if len(fields) < 3 {
		return priceRow{}, fmt.Errorf("expected category,name,price but got %d fields", len(fields))
	}
	category, ok := pricing.ParseCategory(fields[0])
	if !ok {
		return priceRow{}, fmt.Errorf("unknown category %q", strings.TrimSpace(fields[0]))
	}
	name := strings.Join(strings.Fields(fields[1]), " ")
	if name == "" {
		return priceRow{}, errors.New("name must not be empty")
	}
	price, err := parsePrice(fields[2])
	if err != nil {
		return priceRow{}, err
	}
	row := priceRow{Category: category, Name: name, Price: price}
	if len(fields) > 3 {
		row.Description = strings.TrimSpace(strings.Join(fields[3:], ","))
	}
	return row, nil
}

func parsePrice(value string) (decimal.Decimal, error) {
	cleaned := strings.TrimSpace(value)
	cleaned = strings.TrimPrefix(cleaned, "+")
	cleaned = strings.TrimPrefix(cleaned, "$")
	price, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("invalid price %q", strings.TrimSpace(value))
	}
	if price.IsNegative() {
		return decimal.Decimal{}, fmt.Errorf("price must not be negative: %s", price)
	}
	return pricing.Round(price), nil
}

func isBlank(fields []string) bool {
	for _, field := range fields {
		if strings.TrimSpace(field) != "" {
			return false
		}
	}
	return true
}
