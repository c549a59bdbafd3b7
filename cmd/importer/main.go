package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/importer"
	"storefront/internal/repository"

	"github.com/joho/godotenv"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s FILE.jsonl.gz...\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		return fmt.Errorf("no catalogue files given")
	}

	_ = godotenv.Load()

	cfg, err := config.LoadTooling()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := config.NewLogger(cfg.Logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := database.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer pool.Close()

	var s3Loader importer.Loader
	if cfg.S3.Enabled {
		s3Loader, err = importer.NewS3Loader(ctx, cfg.S3.Bucket, cfg.S3.Region, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("failed to initialise S3 loader, using local file system only")
		}
	}
	loader := importer.NewFallbackLoader(s3Loader, importer.NewFileLoader(logger), cfg.S3.Prefix, logger)

	im := importer.New(
		loader,
		repository.NewTxBeginner(pool),
		repository.NewProductRepository(pool, logger),
		logger,
	)

	res, err := im.Import(ctx, flag.Args())
	if err != nil {
		return err
	}

	return json.NewEncoder(os.Stdout).Encode(res)
}
