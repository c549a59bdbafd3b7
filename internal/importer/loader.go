package importer

import (
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for gzipped catalogue files on local disk.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalogue loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads a gzipped catalogue file from disk.
func (l *fileLoader) Load(ctx context.Context, path string) (*Catalog, error) {
	l.logger.Info().Str("file", path).Msg("loading catalogue file")

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalogue file %s: %w", path, err)
	}
	defer file.Close()

	return readCatalog(ctx, file, path, l.logger)
}

// readCatalog decodes a gzipped JSON-lines stream. Blank lines are ignored;
// lines that fail to decode or validate are counted as rejected and skipped.
func readCatalog(ctx context.Context, r io.Reader, source string, logger zerolog.Logger) (*Catalog, error) {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader for %s: %w", source, err)
	}
	defer gzipReader.Close()

	catalog := NewCatalog()

	scanner := bufio.NewScanner(gzipReader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if lineNo%10_000 == 0 {
			if err := ctx.Err(); err != nil {
				logger.Warn().Str("source", source).Msg("catalogue loading cancelled")
				return nil, err
			}
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p model.ProductImport
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			logger.Warn().Err(err).Str("source", source).Int("line", lineNo).Msg("skipping malformed record")
			catalog.rejected++
			continue
		}
		p.SKU = strings.TrimSpace(p.SKU)
		if err := validate(&p); err != nil {
			logger.Warn().Err(err).Str("source", source).Int("line", lineNo).Msg("skipping invalid record")
			catalog.rejected++
			continue
		}

		catalog.Add(p)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading catalogue %s: %w", source, err)
	}

	return catalog, nil
}
