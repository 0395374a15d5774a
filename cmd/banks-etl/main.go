package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aluiziolira/go-scrape-banks/config"
	"github.com/aluiziolira/go-scrape-banks/models"
	"github.com/aluiziolira/go-scrape-banks/pipeline"
	"github.com/aluiziolira/go-scrape-banks/scraper"
)

func main() {
	defaultCfg := config.DefaultConfig()

	verbose := flag.Bool("v", false, "Enable verbose logging")
	metricsFile := flag.String("metrics-file", defaultCfg.MetricsFile, "Write Prometheus metrics to this textfile after the run")

	flag.Parse()

	logger, level := newLogger(*verbose)
	slog.SetDefault(logger)
	slog.SetLogLoggerLevel(level.Level())

	cfg := config.DefaultConfig()
	cfg.Verbose = *verbose
	cfg.MetricsFile = *metricsFile
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", slog.Any("error", err))
		os.Exit(1)
	}

	os.Exit(run(cfg))
}

func run(cfg *config.Config) int {
	slog.Info("starting etl",
		slog.String("url", cfg.URL),
		slog.String("output", cfg.OutputFile),
		slog.String("database", cfg.DBPath),
		slog.String("table", cfg.TableName),
	)

	s, err := scraper.NewScraper(cfg)
	if err != nil {
		slog.Error("initialising scraper", slog.Any("error", err))
		return 1
	}
	defer func() {
		if err := s.Metrics.WriteTextfile(cfg.MetricsFile); err != nil {
			slog.Error("metrics export failed", slog.Any("error", err))
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.NewPipeline(cfg, s, pipeline.WithMetrics(s.Metrics))

	startTime := time.Now()
	result, err := p.Run(ctx)
	if err != nil {
		slog.Error("etl failed", slog.Any("error", err))
		return 1
	}

	printSummary(result, time.Since(startTime))
	return 0
}

func printSummary(result *models.RunResult, duration time.Duration) {
	separator := "--------------------------------------------------"
	fmt.Println("\n" + separator)
	fmt.Println("ETL complete")
	fmt.Printf("  Extracted:     %d\n", result.ExtractedRows)
	fmt.Printf("  Skipped rows:  %d\n", result.SkippedRows)
	fmt.Printf("  Loaded:        %d\n", result.LoadedRows)
	fmt.Printf("  Duration:      %v\n", duration)
	fmt.Printf("  CSV file:      %s\n", result.OutputFile)
	fmt.Printf("  Database:      %s (table %s)\n", result.DBPath, result.TableName)
	fmt.Println(separator)
}

func newLogger(verbose bool) (*slog.Logger, *slog.LevelVar) {
	level := &slog.LevelVar{}
	if verbose {
		level.Set(slog.LevelDebug)
	} else {
		level.Set(slog.LevelInfo)
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if isTerminal(os.Stdout) {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return slog.New(handler), level
}

func isTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}
