//go:build ignore

// Writes sample catalogue files under data/catalog for the importer:
//
//	go run scripts/generate_sample_catalog.go
//	go run ./cmd/importer data/catalog/apparel.jsonl.gz data/catalog/homeware.jsonl.gz
package main

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"storefront/internal/model"

	"github.com/shopspring/decimal"
)

func price(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func pricePtr(s string) *decimal.Decimal {
	d := price(s)
	return &d
}

func main() {
	dataDir := "data/catalog"

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("Failed to create directory: %v", err)
	}

	inactive := false
	catalogs := map[string][]model.ProductImport{
		"apparel.jsonl.gz": {
			{SKU: "TEE-CLASSIC-M", Title: "Classic Cotton Tee", Price: price("19.99"), Stock: 120},
			{SKU: "HOODIE-ZIP-L", Title: "Zip Hoodie", Price: price("54.00"), DiscountPrice: pricePtr("44.50"), Stock: 35},
			{SKU: "SOCKS-3PK", Title: "Everyday Socks 3-Pack", Price: price("12.00"), Stock: 0},
		},
		"homeware.jsonl.gz": {
			{SKU: "MUG-350", Title: "Stoneware Mug 350ml", Price: price("14.00"), Stock: 60},
			{SKU: "CANDLE-FIG", Title: "Fig Candle", Price: price("22.00"), DiscountPrice: pricePtr("18.00"), Stock: 15},
			{SKU: "VASE-OLD", Title: "Discontinued Vase", Price: price("40.00"), Stock: 2, IsActive: &inactive},
		},
	}

	for filename, products := range catalogs {
		path := filepath.Join(dataDir, filename)

		if err := writeCatalog(path, products); err != nil {
			log.Fatalf("Failed to create %s: %v", filename, err)
		}

		fmt.Printf("Created %s with %d products\n", path, len(products))
	}
}

func writeCatalog(path string, products []model.ProductImport) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	gzipWriter := gzip.NewWriter(file)
	defer gzipWriter.Close()

	enc := json.NewEncoder(gzipWriter)
	for _, p := range products {
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("failed to write product %s: %w", p.SKU, err)
		}
	}

	return nil
}
