// Package models defines data structures for the banks ETL.
package models

import "time"

// Currency codes every rate table must provide.
const (
	CurrencyGBP = "GBP"
	CurrencyEUR = "EUR"
	CurrencyINR = "INR"
)

// RequiredCurrencies lists the codes the transform converts into, in column order.
var RequiredCurrencies = []string{CurrencyGBP, CurrencyEUR, CurrencyINR}

// Columns is the fixed output column order shared by the CSV and database sinks.
var Columns = []string{"Name", "MarketCapUSD", "MarketCapGBP", "MarketCapEUR", "MarketCapINR"}

// Record is one bank row extracted from the source table.
type Record struct {
	Name         string  `csv:"Name" json:"name"`
	MarketCapUSD float64 `csv:"MarketCapUSD" json:"market_cap_usd"`
}

// EnrichedRecord is a Record with its market cap converted into the required currencies.
type EnrichedRecord struct {
	Record
	MarketCapGBP float64 `csv:"MarketCapGBP" json:"market_cap_gbp"`
	MarketCapEUR float64 `csv:"MarketCapEUR" json:"market_cap_eur"`
	MarketCapINR float64 `csv:"MarketCapINR" json:"market_cap_inr"`
}

// RateTable maps a currency code to its USD multiplier.
type RateTable map[string]float64

// RunResult holds the overall result of one pipeline run.
type RunResult struct {
	StartTime     time.Time
	EndTime       time.Time
	ExtractedRows int
	SkippedRows   int
	LoadedRows    int
	OutputFile    string
	DBPath        string
	TableName     string
}
