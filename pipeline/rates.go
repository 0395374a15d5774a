package pipeline

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aluiziolira/go-scrape-banks/models"
)

// ConfigError reports a missing or malformed exchange rate source.
type ConfigError struct {
	Path string
	Err  error
}

func (e *ConfigError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("rates: %v", e.Err)
	}
	return fmt.Sprintf("rates %s: %v", e.Path, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// LoadRates reads a Currency,Rate CSV file into a rate table.
func LoadRates(path string) (models.RateTable, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &ConfigError{Path: path, Err: err}
	}
	defer f.Close()

	rates, err := ReadRates(f)
	if err != nil {
		var cfgErr *ConfigError
		if errors.As(err, &cfgErr) {
			cfgErr.Path = path
		}
		return nil, err
	}
	return rates, nil
}

// ReadRates parses rate rows from r. The header must name a Currency and a Rate column;
// every code in models.RequiredCurrencies must be present with a positive rate.
func ReadRates(r io.Reader) (models.RateTable, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, &ConfigError{Err: fmt.Errorf("read csv: %w", err)}
	}
	if len(rows) == 0 {
		return nil, &ConfigError{Err: errors.New("empty rate file")}
	}

	codeIdx, rateIdx := -1, -1
	for i, column := range rows[0] {
		column = strings.TrimSpace(strings.TrimPrefix(column, "\ufeff"))
		switch {
		case strings.EqualFold(column, "Currency"):
			codeIdx = i
		case strings.EqualFold(column, "Rate"):
			rateIdx = i
		}
	}
	if codeIdx < 0 || rateIdx < 0 {
		return nil, &ConfigError{Err: fmt.Errorf("header %v must contain Currency and Rate", rows[0])}
	}

	rates := make(models.RateTable, len(rows)-1)
	for line, row := range rows[1:] {
		code := strings.ToUpper(strings.TrimSpace(row[codeIdx]))
		if code == "" {
			return nil, &ConfigError{Err: fmt.Errorf("line %d: empty currency code", line+2)}
		}
		if _, dup := rates[code]; dup {
			return nil, &ConfigError{Err: fmt.Errorf("line %d: duplicate currency %s", line+2, code)}
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(row[rateIdx]), 64)
		if err != nil {
			return nil, &ConfigError{Err: fmt.Errorf("line %d: rate for %s: %w", line+2, code, err)}
		}
		if rate <= 0 || math.IsInf(rate, 0) || math.IsNaN(rate) {
			return nil, &ConfigError{Err: fmt.Errorf("line %d: rate for %s must be positive, got %v", line+2, code, rate)}
		}
		rates[code] = rate
	}

	if err := requireCurrencies(rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func requireCurrencies(rates models.RateTable) error {
	var missing []string
	for _, code := range models.RequiredCurrencies {
		if _, ok := rates[code]; !ok {
			missing = append(missing, code)
		}
	}
	if len(missing) > 0 {
		return &ConfigError{Err: fmt.Errorf("missing required currencies %s", strings.Join(missing, ","))}
	}
	return nil
}
