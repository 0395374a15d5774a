package parser

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/aluiziolira/go-scrape-banks/models"
)

// ValidateRecord ensures the extractor captured a usable record.
func ValidateRecord(r *models.Record) error {
	if r == nil {
		return fmt.Errorf("record is nil")
	}
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("record missing name")
	}
	if math.IsNaN(r.MarketCapUSD) || math.IsInf(r.MarketCapUSD, 0) {
		return fmt.Errorf("record %s has non-finite market cap", r.Name)
	}
	if r.MarketCapUSD < 0 {
		return fmt.Errorf("record %s has negative market cap %v", r.Name, r.MarketCapUSD)
	}
	return nil
}

// StripMarker drops the single trailing unit marker from a market cap cell.
func StripMarker(text string) string {
	if text == "" {
		return ""
	}
	_, size := utf8.DecodeLastRuneInString(text)
	return text[:len(text)-size]
}

// ParseMarketCap strips the trailing marker and parses the remaining figure.
func ParseMarketCap(text string) (float64, error) {
	figure := strings.TrimSpace(StripMarker(text))
	if figure == "" {
		return 0, fmt.Errorf("empty market cap in %q", text)
	}
	value, err := strconv.ParseFloat(figure, 64)
	if err != nil {
		return 0, fmt.Errorf("parse market cap %q: %w", figure, err)
	}
	return value, nil
}

// NormalizeName collapses runs of whitespace, including non-breaking spaces.
func NormalizeName(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
