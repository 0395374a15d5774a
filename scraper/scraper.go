package scraper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"github.com/aluiziolira/go-scrape-banks/config"
	"github.com/aluiziolira/go-scrape-banks/models"
)

// Scraper wraps the colly collector that fetches the bank listing page.
type Scraper struct {
	cfg       *config.Config
	collector *colly.Collector
	logger    *slog.Logger
	Metrics   *Metrics

	skipped int
}

// NewScraper builds a scraper instance configured from cfg.
func NewScraper(cfg *config.Config) (*Scraper, error) {
	parsed, err := url.Parse(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}
	if parsed.Host == "" {
		return nil, fmt.Errorf("source url must include a host")
	}

	collector := colly.NewCollector(
		colly.AllowedDomains(parsed.Hostname()),
		colly.UserAgent(cfg.UserAgent),
		colly.AllowURLRevisit(),
	)

	collector.SetRequestTimeout(cfg.Timeout)
	collector.WithTransport(&http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	})

	return &Scraper{
		cfg:       cfg,
		collector: collector,
		logger:    slog.Default(),
		Metrics:   NewMetrics(),
	}, nil
}

// WithTransport replaces the HTTP transport used by the collector.
func (s *Scraper) WithTransport(rt http.RoundTripper) {
	s.collector.WithTransport(rt)
}

// WithLogger routes row diagnostics to logger.
func (s *Scraper) WithLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	s.logger = logger
}

// SkippedRows reports how many rows the last Extract dropped.
func (s *Scraper) SkippedRows() int {
	return s.skipped
}

// Extract fetches the configured page and returns the records of its first table body.
func (s *Scraper) Extract(ctx context.Context) ([]models.Record, error) {
	body, err := s.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	result, err := ParseTable(bytes.NewReader(body), s.logger)
	if err != nil {
		s.Metrics.IncError(errorTypeLabel(err))
		return nil, fmt.Errorf("extract %s: %w", s.cfg.URL, err)
	}

	s.skipped = len(result.Skipped)
	for range result.Skipped {
		s.Metrics.IncSkipped()
	}
	s.Metrics.AddExtracted(len(result.Records))

	slog.Debug("table extracted",
		slog.Int("records", len(result.Records)),
		slog.Int("skipped", len(result.Skipped)),
	)
	return result.Records, nil
}

// Fetch returns the raw body served at the configured URL.
func (s *Scraper) Fetch(ctx context.Context) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c := s.collector.Clone()

	var (
		body     []byte
		fetchErr error
	)

	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Ctx.Put("start", time.Now())
		s.Metrics.IncRequest("started")
	})

	c.OnResponse(func(r *colly.Response) {
		if start, ok := r.Request.Ctx.GetAny("start").(time.Time); ok {
			s.Metrics.ObserveDuration(time.Since(start))
		}
		s.Metrics.IncRequest("completed")
		body = r.Body
	})

	c.OnError(func(r *colly.Response, err error) {
		statusCode := 0
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = classifyError(err, statusCode)
	})

	if err := c.Visit(s.cfg.URL); err != nil && fetchErr == nil {
		fetchErr = classifyError(err, 0)
	}
	if fetchErr == nil && ctx.Err() != nil {
		fetchErr = ctx.Err()
	}

	if fetchErr != nil {
		category := errorTypeLabel(fetchErr)
		s.Metrics.IncError(category)
		slog.Error("request error",
			slog.String("url", s.cfg.URL),
			slog.String("category", category),
			slog.Any("error", fetchErr),
		)
		return nil, fmt.Errorf("fetch %s: %w", s.cfg.URL, fetchErr)
	}

	return body, nil
}

func classifyError(err error, statusCode int) error {
	if err == nil && statusCode == 0 {
		return nil
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout{Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return ErrTimeout{Err: err}
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return ErrConnection{Err: err}
	}

	if statusCode != 0 {
		wrapped := err
		if wrapped == nil {
			wrapped = fmt.Errorf("http status %d", statusCode)
		}
		switch statusCode {
		case http.StatusForbidden:
			return ErrForbidden{Err: wrapped}
		case http.StatusNotFound:
			return ErrNotFound{Err: wrapped}
		case http.StatusTooManyRequests:
			return ErrRateLimited{Err: wrapped}
		}
		if statusCode < http.StatusOK || statusCode >= http.StatusMultipleChoices || err != nil {
			return ErrHTTPStatus{StatusCode: statusCode, Err: wrapped}
		}
	}

	return err
}
