package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	"nytf/internal/config"
	"nytf/internal/dataset"
	"nytf/internal/exporter"
	"nytf/internal/geo"
	"nytf/internal/infrastructure"
	"nytf/internal/pipeline"
)

func main() {
	train := flag.String("train", "", "training csv (defaults to <raw_dir>/train.csv)")
	test := flag.String("test", "", "optional test csv to transform with the fitted pipeline")
	out := flag.String("out", "", "output csv for training features (defaults to <out_dir>/train_features.csv)")
	testOut := flag.String("test-out", "", "output csv for test features (defaults to <out_dir>/test_features.csv)")
	xlsx := flag.Bool("xlsx", false, "also write an xlsx workbook next to each csv")
	configFile := flag.String("config", "featurize.yaml", "configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Warn("Failed to initialize logger, using default", "error", err)
		logger = slog.Default()
	}

	if err := cfg.EnsureDirectories(); err != nil {
		logger.Error("Failed to create required directories", "error", err)
		os.Exit(1)
	}

	if *train == "" {
		*train = cfg.RawPath("train.csv")
	}
	if *out == "" {
		*out = cfg.OutPath("train_features.csv")
	}
	if *testOut == "" {
		*testOut = cfg.OutPath("test_features.csv")
	}

	ctx := infrastructure.ContextWithTraceID(context.Background())
	if err := run(ctx, cfg, *train, *test, *out, *testOut, *xlsx, logger); err != nil {
		infrastructure.LoggerWithContext(ctx).Error("featurize run failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, train, test, out, testOut string, xlsx bool, logger *slog.Logger) error {
	logger.InfoContext(ctx, "starting featurize run",
		slog.String("train", train),
		slog.String("test", test),
		slog.String("out", out))

	records, err := dataset.LoadCSV(train, dataset.LoadOptions{DropKey: true, RequireFare: true}, logger)
	if err != nil {
		return err
	}

	cleanCfg := dataset.CleanConfig{
		FareMin:   cfg.Cleaning.FareMin,
		FareMax:   cfg.Cleaning.FareMax,
		CheckFare: true,
		Bounds: geo.Bounds{
			LatMin: cfg.Cleaning.LatMin,
			LatMax: cfg.Cleaning.LatMax,
			LonMin: cfg.Cleaning.LonMin,
			LonMax: cfg.Cleaning.LonMax,
		},
	}
	records, _ = dataset.Clean(records, cleanCfg, logger)

	p, err := pipeline.New(pipelineOptions(cfg), logger)
	if err != nil {
		return err
	}

	features, err := p.FitTransform(ctx, records)
	if err != nil {
		return err
	}
	if err := writeOutputs(out, features, xlsx, logger); err != nil {
		return err
	}

	if test == "" {
		return nil
	}

	testRecords, err := dataset.LoadCSV(test, dataset.LoadOptions{}, logger)
	if err != nil {
		return err
	}
	// Test exports have no fare column, so only the coordinate filter
	// applies and the fare passthrough is dropped after the transform.
	testClean := cleanCfg
	testClean.CheckFare = false
	testRecords, _ = dataset.Clean(testRecords, testClean, logger)

	testFeatures, err := p.Transform(ctx, testRecords)
	if err != nil {
		return err
	}
	testFeatures, err = dropColumn(testFeatures, pipeline.ColFareAmount)
	if err != nil {
		return err
	}
	return writeOutputs(testOut, testFeatures, xlsx, logger)
}

func dropColumn(frame *dataset.Frame, name string) (*dataset.Frame, error) {
	var keep []string
	for _, col := range frame.Columns() {
		if col != name {
			keep = append(keep, col)
		}
	}
	return frame.Select(keep...)
}

func pipelineOptions(cfg *config.Config) pipeline.Options {
	return pipeline.Options{
		Timezone:         cfg.Features.Timezone,
		TemporalFeatures: cfg.Features.TemporalFeatures,
		BusinessFlags:    cfg.Features.BusinessFlags,
		CyclicHour:       cfg.Features.CyclicHour,
		GeoDistances:     cfg.Features.GeoDistances,
		AngleUnit:        cfg.Features.AngleUnit,
		SphereRadiusKm:   cfg.Features.SphereRadiusKm,
		PlaneRotation:    cfg.Features.PlaneRotation,
		HolidayScores:    cfg.Features.HolidayScores,
		HolidayState:     cfg.Features.HolidayState,
		IncludeFare:      true,
		Workers:          cfg.Features.Workers,
	}
}

func writeOutputs(path string, frame *dataset.Frame, xlsx bool, logger *slog.Logger) error {
	csvWriter := exporter.NewCSVWriter(logger)
	if err := csvWriter.WriteFrame(path, frame, exporter.WriteOptions{BOMPrefix: true}); err != nil {
		return err
	}
	if !xlsx {
		return nil
	}
	xlsxWriter := exporter.NewXLSXWriter(logger)
	return xlsxWriter.WriteFrame(strings.TrimSuffix(path, ".csv")+".xlsx", frame)
}
