package pipeline

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/aluiziolira/go-scrape-banks/models"
)

func enrichedFixture() []models.EnrichedRecord {
	return []models.EnrichedRecord{
		{Record: models.Record{Name: "Bank A", MarketCapUSD: 300}, MarketCapGBP: 240, MarketCapEUR: 279, MarketCapINR: 24630},
		{Record: models.Record{Name: "Bank, B", MarketCapUSD: 150.5}, MarketCapGBP: 120.4, MarketCapEUR: 139.97, MarketCapINR: 12356.05},
	}
}

func TestCSVWriterRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "banks.csv")
	records := enrichedFixture()

	if err := WriteCSV(records, path); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows=%d, want 3", len(rows))
	}
	for i, column := range models.Columns {
		if rows[0][i] != column {
			t.Fatalf("unexpected header: %v", rows[0])
		}
	}

	for i, want := range records {
		row := rows[i+1]
		values := make([]float64, 4)
		for j := range values {
			v, err := strconv.ParseFloat(row[j+1], 64)
			if err != nil {
				t.Fatalf("row %d column %d: %v", i, j+1, err)
			}
			values[j] = v
		}
		got := models.EnrichedRecord{
			Record:       models.Record{Name: row[0], MarketCapUSD: values[0]},
			MarketCapGBP: values[1],
			MarketCapEUR: values[2],
			MarketCapINR: values[3],
		}
		if got != want {
			t.Fatalf("row %d = %+v, want %+v", i, got, want)
		}
	}
}

func TestWriteCSVOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "banks.csv")
	if err := os.WriteFile(path, []byte("stale,content\n1,2\n3,4\n5,6\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}

	if err := WriteCSV(enrichedFixture()[:1], path); err != nil {
		t.Fatalf("write csv: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "Name,MarketCapUSD,MarketCapGBP,MarketCapEUR,MarketCapINR\nBank A,300.0,240.0,279.0,24630.0\n"
	if string(data) != want {
		t.Fatalf("csv = %q, want %q", data, want)
	}
}

func TestCSVWriterValidateHeaderOnly(t *testing.T) {
	writer, err := NewCSVWriter(filepath.Join(t.TempDir(), "banks.csv"))
	if err != nil {
		t.Fatalf("create csv writer: %v", err)
	}
	defer writer.Close()

	if err := writer.Validate(); err != nil {
		t.Fatalf("header-only file should validate: %v", err)
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		input    float64
		expected string
	}{
		{input: 300, expected: "300.0"},
		{input: 150.5, expected: "150.5"},
		{input: 139.97, expected: "139.97"},
		{input: 12356.05, expected: "12356.05"},
		{input: 0, expected: "0.0"},
	}

	for _, tt := range tests {
		if got := FormatFloat(tt.input); got != tt.expected {
			t.Errorf("FormatFloat(%v) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestProgressLogAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "code_log.txt")
	ticks := []time.Time{
		time.Date(2024, time.January, 2, 3, 4, 5, 0, time.Local),
		time.Date(2024, time.December, 31, 23, 59, 59, 0, time.Local),
	}
	next := 0
	log := NewProgressLog(path).WithClock(func() time.Time {
		ts := ticks[next]
		next++
		return ts
	})

	if err := log.Log("first"); err != nil {
		t.Fatalf("log first: %v", err)
	}
	if err := log.Log("second"); err != nil {
		t.Fatalf("log second: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	want := "2024-Jan-02-03:04:05 : first\n2024-Dec-31-23:59:59 : second\n"
	if string(data) != want {
		t.Fatalf("log = %q, want %q", data, want)
	}
}

func TestProgressLogUnwritable(t *testing.T) {
	dir := t.TempDir()
	if err := NewProgressLog(dir).Log("cannot write to a directory"); err == nil {
		t.Fatalf("expected error writing to a directory path")
	}
}
