package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"olistfeatures/internal/config"
	"olistfeatures/internal/dataset"
	"olistfeatures/internal/exporter"
	"olistfeatures/internal/features"
	"olistfeatures/internal/infrastructure"
)

func main() {
	dataDir := flag.String("data", "", "directory holding the Olist CSV files (defaults to config)")
	outputDir := flag.String("out", "", "output directory for feature tables (defaults to config)")
	formats := flag.String("formats", "", "comma-separated output formats: csv,xlsx,parquet (defaults to config)")
	withDistance := flag.Bool("with-distance", false, "add the seller-customer distance column to the order table")
	allOrders := flag.Bool("all-orders", false, "include non-delivered orders in the order table")
	categoryAgg := flag.String("category-agg", "", "category rollup statistic: mean or median (defaults to config)")
	flag.Parse()

	// .env is optional; env vars feed config.Load
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	applyFlags(cfg, *dataDir, *outputDir, *formats, *withDistance, *allOrders, *categoryAgg)

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("Failed to initialize logger", "error", err)
		os.Exit(1)
	}
	defer infrastructure.CloseLogFile()

	runID := uuid.New().String()
	ctx := infrastructure.WithRunID(context.Background(), runID)

	logger.InfoContext(ctx, "Starting feature report",
		"data_dir", cfg.Paths.DataDir,
		"output_dir", cfg.Paths.OutputDir,
		"formats", cfg.Report.Formats,
		"with_distance", cfg.Report.WithDistance,
		"all_orders", cfg.Report.AllOrders,
		"category_agg", cfg.Report.CategoryAgg)

	if err := run(ctx, cfg, logger); err != nil {
		logger.ErrorContext(ctx, "Feature report failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "Feature report complete", "output_dir", cfg.Paths.OutputDir)
}

// applyFlags lets command-line flags override the loaded configuration
func applyFlags(cfg *config.Config, dataDir, outputDir, formats string, withDistance, allOrders bool, categoryAgg string) {
	if dataDir != "" {
		cfg.Paths.DataDir = dataDir
	}
	if outputDir != "" {
		cfg.Paths.OutputDir = outputDir
	}
	if formats != "" {
		cfg.Report.Formats = strings.Split(formats, ",")
	}
	if withDistance {
		cfg.Report.WithDistance = true
	}
	if allOrders {
		cfg.Report.AllOrders = true
	}
	if categoryAgg != "" {
		cfg.Report.CategoryAgg = categoryAgg
	}
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	data, err := dataset.Load(ctx, cfg.Paths.DataDir, logger)
	if err != nil {
		return err
	}

	opts := features.TrainingOptions{
		IsDelivered:  !cfg.Report.AllOrders,
		WithDistance: cfg.Report.WithDistance,
	}

	var (
		orderRows    []features.OrderTrainingRow
		productRows  []features.ProductTrainingRow
		categoryRows []features.CategoryRow
		sellerRows   []features.SellerTrainingRow
	)

	// The dataset snapshot is read-only, so the three engines can run
	// concurrently
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		orderRows = features.NewOrderFeatures(data, logger).TrainingData(gctx, opts)
		return nil
	})
	g.Go(func() error {
		engine := features.NewProductFeatures(data, logger)
		productRows = engine.TrainingData(gctx)
		var err error
		categoryRows, err = engine.CategoryAggregate(gctx, features.AggFunc(cfg.Report.CategoryAgg))
		return err
	})
	g.Go(func() error {
		sellerRows = features.NewSellerFeatures(data, logger).TrainingData(gctx)
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}

	if err := os.MkdirAll(cfg.Paths.OutputDir, 0755); err != nil {
		return err
	}

	if cfg.HasFormat("csv") {
		csvExporter := exporter.NewFeatureExporter(cfg.Paths.OutputDir)
		if err := csvExporter.ExportOrderTraining(orderRows, opts.WithDistance); err != nil {
			return err
		}
		if err := csvExporter.ExportProductTraining(productRows); err != nil {
			return err
		}
		if err := csvExporter.ExportSellerTraining(sellerRows); err != nil {
			return err
		}
		if err := csvExporter.ExportCategories(categoryRows); err != nil {
			return err
		}
	}

	if cfg.HasFormat("xlsx") {
		workbook := exporter.NewWorkbookWriter(cfg.Paths.OutputDir)
		if err := workbook.Write(orderRows, productRows, sellerRows, opts.WithDistance); err != nil {
			return err
		}
	}

	if cfg.HasFormat("parquet") {
		parquetWriter := exporter.NewParquetWriter(cfg.Paths.OutputDir)
		if err := parquetWriter.WriteOrders(orderRows); err != nil {
			return err
		}
		if err := parquetWriter.WriteProducts(productRows); err != nil {
			return err
		}
		if err := parquetWriter.WriteSellers(sellerRows); err != nil {
			return err
		}
	}

	logger.InfoContext(ctx, "Feature tables written",
		"orders", len(orderRows),
		"products", len(productRows),
		"sellers", len(sellerRows),
		"categories", len(categoryRows))
	return nil
}
