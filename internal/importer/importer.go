// Package importer loads product catalogue files and upserts them into the
// products table.
//
// Catalogue files are gzipped JSON lines, one product per line. They can be
// read from local disk or from S3 with a local fallback.
package importer

import (
	"context"
	"fmt"
	"sync"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/rs/zerolog"
)

// Loader reads one catalogue file.
type Loader interface {
	// Load reads a gzipped catalogue file and returns its records.
	Load(ctx context.Context, path string) (*Catalog, error)
}

// Result summarises an import run.
type Result struct {
	Files    int `json:"files"`
	Records  int `json:"records"`
	Rejected int `json:"rejected"`
	Upserted int `json:"upserted"`
}

// Importer merges catalogue files and writes them in a single transaction.
type Importer struct {
	loader   Loader
	db       repository.TxBeginner
	products repository.ProductRepository
	logger   zerolog.Logger
}

// New creates a new catalogue importer.
func New(loader Loader, db repository.TxBeginner, products repository.ProductRepository, logger zerolog.Logger) *Importer {
	return &Importer{
		loader:   loader,
		db:       db,
		products: products,
		logger:   logger.With().Str("component", "catalog-importer").Logger(),
	}
}

// LoadAll loads every path concurrently and merges the results in path
// order, so a SKU present in several files takes its last file's record.
func (im *Importer) LoadAll(ctx context.Context, paths []string) (*Catalog, error) {
	type loadResult struct {
		catalog *Catalog
		err     error
	}

	results := make([]loadResult, len(paths))
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(index int, path string) {
			defer wg.Done()
			c, err := im.loader.Load(ctx, path)
			results[index] = loadResult{catalog: c, err: err}
		}(i, path)
	}

	wg.Wait()

	merged := NewCatalog()
	for i, res := range results {
		if res.err != nil {
			im.logger.Error().Err(res.err).Str("file", paths[i]).Msg("failed to load catalogue file")
			return nil, fmt.Errorf("failed to load catalogue file %s: %w", paths[i], res.err)
		}
		merged.Merge(res.catalog)
		im.logger.Info().
			Str("file", paths[i]).
			Int("records", res.catalog.Size()).
			Int("rejected", res.catalog.Rejected()).
			Msg("catalogue file loaded")
	}

	return merged, nil
}

// Import loads paths and upserts the merged catalogue. Nothing is written
// unless every file loads and every record upserts.
func (im *Importer) Import(ctx context.Context, paths []string) (result *Result, err error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalogue files given")
	}

	catalog, err := im.LoadAll(ctx, paths)
	if err != nil {
		return nil, err
	}

	result = &Result{
		Files:    len(paths),
		Records:  catalog.Size(),
		Rejected: catalog.Rejected(),
	}

	if catalog.Size() == 0 {
		im.logger.Warn().Int("files", len(paths)).Msg("catalogue is empty, nothing to import")
		return result, nil
	}

	tx, err := im.db.BeginTx(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}

	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(ctx); rbErr != nil {
				im.logger.Error().Err(rbErr).Msg("failed to rollback transaction")
			}
		}
	}()

	result.Upserted, err = im.products.UpsertBySKU(ctx, tx, catalog.Products())
	if err != nil {
		return nil, fmt.Errorf("failed to import catalogue: %w", err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit catalogue import: %w", err)
	}

	im.logger.Info().
		Int("files", result.Files).
		Int("records", result.Records).
		Int("rejected", result.Rejected).
		Int("upserted", result.Upserted).
		Msg("catalogue imported")

	return result, nil
}

// validate reports why a record cannot be imported, or nil.
func validate(p *model.ProductImport) error {
	switch {
	case p.SKU == "":
		return fmt.Errorf("sku is required")
	case p.Title == "":
		return fmt.Errorf("title is required")
	case p.Price.IsNegative():
		return fmt.Errorf("price must not be negative")
	case p.DiscountPrice != nil && p.DiscountPrice.IsNegative():
		return fmt.Errorf("discount price must not be negative")
	case p.Stock < 0:
		return fmt.Errorf("stock must not be negative")
	}
	return nil
}
