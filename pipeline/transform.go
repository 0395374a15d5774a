package pipeline

import (
	"github.com/shopspring/decimal"

	"github.com/aluiziolira/go-scrape-banks/models"
)

// Transform derives the GBP, EUR and INR market caps for every record, preserving order.
func Transform(records []models.Record, rates models.RateTable) ([]models.EnrichedRecord, error) {
	if err := requireCurrencies(rates); err != nil {
		return nil, err
	}

	gbp := decimal.NewFromFloat(rates[models.CurrencyGBP])
	eur := decimal.NewFromFloat(rates[models.CurrencyEUR])
	inr := decimal.NewFromFloat(rates[models.CurrencyINR])

	out := make([]models.EnrichedRecord, 0, len(records))
	for _, record := range records {
		usd := decimal.NewFromFloat(record.MarketCapUSD)
		out = append(out, models.EnrichedRecord{
			Record:       record,
			MarketCapGBP: convert(usd, gbp),
			MarketCapEUR: convert(usd, eur),
			MarketCapINR: convert(usd, inr),
		})
	}
	return out, nil
}

// Convert returns usd*rate rounded half away from zero to two decimals.
func Convert(usd, rate float64) float64 {
	return convert(decimal.NewFromFloat(usd), decimal.NewFromFloat(rate))
}

// Rounds the exact decimal product: 150.5*0.93 is 139.965 and becomes 139.97.
func convert(usd, rate decimal.Decimal) float64 {
	return usd.Mul(rate).Round(2).InexactFloat64()
}
