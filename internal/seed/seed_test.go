package seed

import (
	"errors"
	"testing"

	"github.com/zappabad/stockwire/internal/market"
)

func TestBundledInstruments(t *testing.T) {
	records, err := Instruments()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	covered := make(map[market.Sector]bool)
	for _, rec := range records {
		covered[rec.Sector] = true
		if len(rec.History) == 0 {
			t.Errorf("%s: expected a history", rec.Ticker)
		}
	}
	for _, s := range market.Sectors() {
		if !covered[s] {
			t.Errorf("expected at least one %s instrument", s)
		}
	}
}

func TestBundledNews(t *testing.T) {
	items, err := News()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) == 0 {
		t.Fatal("expected scripted news")
	}
	for i := 1; i < len(items); i++ {
		if items[i].Date < items[i-1].Date {
			t.Errorf("expected script in date order at %d", i)
		}
	}
}

func TestParseInstrumentsRejects(t *testing.T) {
	cases := map[string]string{
		"sector":  `[{"ticker":"X","name":"X","sector":"Tech","price":"1"}]`,
		"date":    `[{"ticker":"X","name":"X","sector":"Energy","price":"1","history":[{"date":"2025-5-1","price":"1"}]}]`,
		"order":   `[{"ticker":"X","name":"X","sector":"Energy","price":"1","history":[{"date":"2025-05-02","price":"2"},{"date":"2025-05-01","price":"1"}]}]`,
		"price":   `[{"ticker":"X","name":"X","sector":"Energy","price":"5","history":[{"date":"2025-05-01","price":"1"}]}]`,
		"dup":     `[{"ticker":"X","name":"X","sector":"Energy","price":"1"},{"ticker":"X","name":"Y","sector":"Energy","price":"1"}]`,
		"ticker":  `[{"ticker":"","name":"X","sector":"Energy","price":"1"}]`,
		"garbage": `{`,
	}
	for name, data := range cases {
		if _, err := ParseInstruments([]byte(data)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	_, err := ParseInstruments([]byte(cases["sector"]))
	if !errors.Is(err, market.ErrUnknownSector) {
		t.Errorf("expected ErrUnknownSector, got %v", err)
	}
}

func TestParseNewsRejects(t *testing.T) {
	if _, err := ParseNews([]byte(`[{"impact":11,"title":"x","sector":"Energy","date":"2025-05-01"}]`)); err == nil {
		t.Error("expected impact error")
	}
	items, err := ParseNews([]byte(`[{"impact":4,"title":"x","sector":"energy","date":"2025-05-01","positive":true}]`))
	if err != nil || len(items) != 1 || items[0].Sector != market.SectorEnergy || !items[0].Positive {
		t.Errorf("unexpected parse result: %+v (%v)", items, err)
	}
}
