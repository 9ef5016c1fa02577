// Package seed holds the bundled instrument and news fixtures.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
	newsservice "github.com/zappabad/stockwire/internal/news/service"
)

var (
	//go:embed instruments.json
	instrumentsJSON []byte

	//go:embed news.json
	newsJSON []byte
)

// Instruments returns the bundled instruments with their history.
func Instruments() ([]market.Record, error) {
	return ParseInstruments(instrumentsJSON)
}

// News returns the bundled news script in publish order.
func News() ([]news.Item, error) {
	return ParseNews(newsJSON)
}

// ParseInstruments decodes and validates a JSON array of instrument records.
// Each history must be oldest first and end at the record's price.
func ParseInstruments(data []byte) ([]market.Record, error) {
	var records []market.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("decode instruments: %w", err)
	}

	seen := make(map[string]bool, len(records))
	for _, rec := range records {
		if rec.Ticker == "" {
			return nil, fmt.Errorf("instrument without ticker")
		}
		if seen[rec.Ticker] {
			return nil, fmt.Errorf("duplicate ticker %s", rec.Ticker)
		}
		seen[rec.Ticker] = true

		if !rec.Sector.Valid() {
			return nil, fmt.Errorf("%s: %w", rec.Ticker, market.ErrUnknownSector)
		}
		prev := ""
		for _, s := range rec.History {
			if err := market.CheckDate(s.Date); err != nil {
				return nil, fmt.Errorf("%s: %w", rec.Ticker, err)
			}
			if s.Date < prev {
				return nil, fmt.Errorf("%s: history not oldest first at %s", rec.Ticker, s.Date)
			}
			prev = s.Date
		}
		if n := len(rec.History); n > 0 && !rec.History[n-1].Price.Equal(rec.Price) {
			return nil, fmt.Errorf("%s: price %s does not match last sample %s", rec.Ticker, rec.Price, rec.History[n-1].Price)
		}
	}
	return records, nil
}

// ParseNews decodes and validates a JSON array of news items.
func ParseNews(data []byte) ([]news.Item, error) {
	var items []news.Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("decode news: %w", err)
	}
	for i, it := range items {
		if err := newsservice.Validate(it); err != nil {
			return nil, fmt.Errorf("news %d: %w", i, err)
		}
	}
	return items, nil
}
