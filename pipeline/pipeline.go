package pipeline

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aluiziolira/go-scrape-banks/config"
	"github.com/aluiziolira/go-scrape-banks/models"
	"github.com/aluiziolira/go-scrape-banks/scraper"
	"github.com/aluiziolira/go-scrape-banks/store"
)

// Milestones appended to the progress log, in run order.
const (
	MsgPreliminaries    = "Preliminaries complete. Initiating ETL process"
	MsgExtracted        = "Data extraction complete. Initiating Transformation process"
	MsgTransformed      = "Data transformation complete. Initiating Loading process"
	MsgCSVSaved         = "Data saved to CSV file"
	MsgSQLConnected     = "SQL Connection initiated"
	MsgTableLoaded      = "Data loaded to Database as a table, Executing queries"
	MsgProcessComplete  = "Process Complete"
	MsgConnectionClosed = "Server Connection closed"
)

// Extractor produces the records a run starts from.
type Extractor interface {
	Extract(ctx context.Context) ([]models.Record, error)
}

type skipCounter interface {
	SkippedRows() int
}

// Pipeline runs extract, transform and load strictly in sequence.
type Pipeline struct {
	cfg       *config.Config
	extractor Extractor
	progress  *ProgressLog
	stdout    io.Writer
	metrics   *scraper.Metrics
}

// Option customises a Pipeline.
type Option func(*Pipeline)

// WithStdout redirects query output.
func WithStdout(w io.Writer) Option {
	return func(p *Pipeline) { p.stdout = w }
}

// WithMetrics records sink and stage counters on m.
func WithMetrics(m *scraper.Metrics) Option {
	return func(p *Pipeline) { p.metrics = m }
}

// WithProgressLog replaces the progress log built from cfg.LogFile.
func WithProgressLog(l *ProgressLog) Option {
	return func(p *Pipeline) { p.progress = l }
}

// NewPipeline wires a run over cfg.
func NewPipeline(cfg *config.Config, extractor Extractor, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:       cfg,
		extractor: extractor,
		progress:  NewProgressLog(cfg.LogFile),
		stdout:    os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one full ETL pass. The first failure stops the run; outputs already
// written by earlier stages are left in place.
func (p *Pipeline) Run(ctx context.Context) (*models.RunResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	result := &models.RunResult{
		StartTime:  time.Now(),
		OutputFile: p.cfg.OutputFile,
		DBPath:     p.cfg.DBPath,
		TableName:  p.cfg.TableName,
	}

	if err := p.milestone(MsgPreliminaries); err != nil {
		return nil, err
	}

	records, err := p.extractor.Extract(ctx)
	if err != nil {
		return nil, fmt.Errorf("extract: %w", err)
	}
	result.ExtractedRows = len(records)
	if counter, ok := p.extractor.(skipCounter); ok {
		result.SkippedRows = counter.SkippedRows()
	}
	if err := p.milestone(MsgExtracted); err != nil {
		return nil, err
	}

	rates, err := LoadRates(p.cfg.RatesFile)
	if err != nil {
		return nil, p.fail("config", fmt.Errorf("transform: %w", err))
	}
	enriched, err := Transform(records, rates)
	if err != nil {
		return nil, p.fail("config", fmt.Errorf("transform: %w", err))
	}
	if err := p.milestone(MsgTransformed); err != nil {
		return nil, err
	}

	if err := WriteCSV(enriched, p.cfg.OutputFile); err != nil {
		return nil, p.fail("io", fmt.Errorf("load csv %s: %w", p.cfg.OutputFile, err))
	}
	p.metrics.AddLoaded("csv", len(enriched))
	if err := p.milestone(MsgCSVSaved); err != nil {
		return nil, err
	}

	if err := p.load(ctx, enriched); err != nil {
		return nil, err
	}

	result.LoadedRows = len(enriched)
	result.EndTime = time.Now()

	slog.Debug("pipeline run finished",
		slog.Int("extracted", result.ExtractedRows),
		slog.Int("skipped", result.SkippedRows),
		slog.Int("loaded", result.LoadedRows),
	)
	return result, nil
}

// load owns the database handle for the rest of the run; it is released on every path.
func (p *Pipeline) load(ctx context.Context, records []models.EnrichedRecord) error {
	st, err := store.Open(ctx, p.cfg.DBPath)
	if err != nil {
		return p.fail("sqlite", fmt.Errorf("load database: %w", err))
	}
	defer st.Close()

	if err := p.milestone(MsgSQLConnected); err != nil {
		return err
	}

	if err := st.ReplaceTable(ctx, p.cfg.TableName, records); err != nil {
		return p.fail("sqlite", fmt.Errorf("load database: %w", err))
	}
	p.metrics.AddLoaded("sqlite", len(records))
	if err := p.milestone(MsgTableLoaded); err != nil {
		return err
	}

	for _, query := range store.DefaultQueries(p.cfg.TableName) {
		if err := st.RunQuery(ctx, query, p.stdout); err != nil {
			return p.fail("query", err)
		}
	}
	if err := p.milestone(MsgProcessComplete); err != nil {
		return err
	}

	if err := st.Close(); err != nil {
		return p.fail("sqlite", fmt.Errorf("close database: %w", err))
	}
	return p.milestone(MsgConnectionClosed)
}

func (p *Pipeline) milestone(message string) error {
	if err := p.progress.Log(message); err != nil {
		return p.fail("io", fmt.Errorf("progress log: %w", err))
	}
	slog.Info(message)
	return nil
}

func (p *Pipeline) fail(errorType string, err error) error {
	p.metrics.IncError(errorType)
	return err
}
