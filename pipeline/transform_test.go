package pipeline

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aluiziolira/go-scrape-banks/models"
)

func fixedRates() models.RateTable {
	return models.RateTable{"GBP": 0.8, "EUR": 0.93, "INR": 82.1}
}

func TestTransformPinnedValues(t *testing.T) {
	records := []models.Record{
		{Name: "Bank A", MarketCapUSD: 300},
		{Name: "Bank B", MarketCapUSD: 150.5},
		{Name: "Round Bank", MarketCapUSD: 100},
	}

	got, err := Transform(records, fixedRates())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}

	want := []models.EnrichedRecord{
		{Record: records[0], MarketCapGBP: 240, MarketCapEUR: 279, MarketCapINR: 24630},
		{Record: records[1], MarketCapGBP: 120.4, MarketCapEUR: 139.97, MarketCapINR: 12356.05},
		{Record: records[2], MarketCapGBP: 80, MarketCapEUR: 93, MarketCapINR: 8210},
	}
	if len(got) != len(want) {
		t.Fatalf("records=%d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("record %d = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestConvertRounding(t *testing.T) {
	tests := []struct {
		name     string
		usd      float64
		rate     float64
		expected float64
	}{
		{name: "exact", usd: 100, rate: 0.8, expected: 80},
		{name: "half rounds away from zero", usd: 150.5, rate: 0.93, expected: 139.97},
		{name: "below half", usd: 1.234, rate: 1, expected: 1.23},
		{name: "half at second decimal", usd: 0.125, rate: 1, expected: 0.13},
		{name: "zero", usd: 0, rate: 82.1, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Convert(tt.usd, tt.rate); got != tt.expected {
				t.Errorf("Convert(%v, %v) = %v, want %v", tt.usd, tt.rate, got, tt.expected)
			}
		})
	}
}

func TestTransformPreservesOrderAndEmptyInput(t *testing.T) {
	got, err := Transform(nil, fixedRates())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("records=%d, want 0", len(got))
	}

	records := []models.Record{{Name: "Z"}, {Name: "A"}, {Name: "M"}}
	got, err = Transform(records, fixedRates())
	if err != nil {
		t.Fatalf("transform: %v", err)
	}
	for i := range records {
		if got[i].Name != records[i].Name {
			t.Fatalf("order changed at %d: %s != %s", i, got[i].Name, records[i].Name)
		}
	}
}

func TestTransformMissingCurrency(t *testing.T) {
	_, err := Transform([]models.Record{{Name: "Bank", MarketCapUSD: 1}}, models.RateTable{"GBP": 0.8, "EUR": 0.93})
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || !strings.Contains(err.Error(), "INR") {
		t.Fatalf("expected ConfigError naming INR, got %v", err)
	}
}

func TestLoadRates(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    models.RateTable
		wantErr string
	}{
		{
			name:    "standard file",
			content: "Currency,Rate\nEUR,0.93\nGBP,0.8\nINR,82.95\n",
			want:    models.RateTable{"EUR": 0.93, "GBP": 0.8, "INR": 82.95},
		},
		{
			name:    "reordered columns and extra code",
			content: "\ufeffrate,currency\n0.93,eur\n0.8,GBP\n82.1,INR\n1.5,CAD\n",
			want:    models.RateTable{"EUR": 0.93, "GBP": 0.8, "INR": 82.1, "CAD": 1.5},
		},
		{
			name:    "missing required code",
			content: "Currency,Rate\nEUR,0.93\nGBP,0.8\n",
			wantErr: "INR",
		},
		{
			name:    "bad header",
			content: "Code,Multiplier\nEUR,0.93\n",
			wantErr: "header",
		},
		{
			name:    "non numeric rate",
			content: "Currency,Rate\nEUR,abc\nGBP,0.8\nINR,82.1\n",
			wantErr: "rate for EUR",
		},
		{
			name:    "non positive rate",
			content: "Currency,Rate\nEUR,0\nGBP,0.8\nINR,82.1\n",
			wantErr: "must be positive",
		},
		{
			name:    "duplicate code",
			content: "Currency,Rate\nEUR,0.93\nEUR,0.94\nGBP,0.8\nINR,82.1\n",
			wantErr: "duplicate",
		},
		{
			name:    "ragged row",
			content: "Currency,Rate\nEUR,0.93,extra\n",
			wantErr: "read csv",
		},
		{
			name:    "empty file",
			content: "",
			wantErr: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "exchange_rate.csv")
			if err := os.WriteFile(path, []byte(tt.content), 0o644); err != nil {
				t.Fatalf("write rates: %v", err)
			}

			got, err := LoadRates(path)
			if tt.wantErr != "" {
				var cfgErr *ConfigError
				if !errors.As(err, &cfgErr) || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected ConfigError containing %q, got %v", tt.wantErr, err)
				}
				if cfgErr.Path != path {
					t.Fatalf("error path = %q, want %q", cfgErr.Path, path)
				}
				return
			}
			if err != nil {
				t.Fatalf("load rates: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("rates = %v, want %v", got, tt.want)
			}
			for code, rate := range tt.want {
				if got[code] != rate {
					t.Fatalf("rate[%s] = %v, want %v", code, got[code], rate)
				}
			}
		})
	}
}

func TestLoadRatesMissingFile(t *testing.T) {
	_, err := LoadRates(filepath.Join(t.TempDir(), "nope.csv"))
	var cfgErr *ConfigError
	if !errors.As(err, &cfgErr) || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected ConfigError wrapping ErrNotExist, got %v", err)
	}
}
