package desk

import (
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/advisor"
	"github.com/zappabad/stockwire/internal/market"
	marketservice "github.com/zappabad/stockwire/internal/market/service"
	"github.com/zappabad/stockwire/internal/news"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Instruments = []market.Record{
		{
			Listing: market.Listing{Ticker: "AAPL", Name: "Apple", Sector: market.SectorTechnology, Price: dec("175")},
			History: []market.PriceSample{
				{Date: "2025-04-28", Price: dec("170")},
				{Date: "2025-04-29", Price: dec("172")},
				{Date: "2025-04-30", Price: dec("175")},
			},
		},
		{
			Listing: market.Listing{Ticker: "JPM", Name: "JPMorgan", Sector: market.SectorFinance, Price: dec("190")},
		},
	}
	return cfg
}

func newTestDesk(t *testing.T) *Desk {
	t.Helper()
	d, err := NewDesk(testConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func TestDeskPublishAdjustsMarket(t *testing.T) {
	d := newTestDesk(t)

	n, err := d.Publish(news.Item{Impact: 10, Title: "Chip boom", Sector: market.SectorTechnology, Date: "2025-05-01", Positive: true})
	if err != nil || n != 1 {
		t.Fatalf("expected 1 adjusted, got %d (%v)", n, err)
	}
	q, _ := d.Market.Find("AAPL")
	if !q.Price.Equal(dec("183.75")) || q.HistoryLen != 4 {
		t.Errorf("unexpected AAPL quote: %+v", q)
	}
}

func TestDeskAdvise(t *testing.T) {
	d := newTestDesk(t)

	// 175 is above the 172.33 average of the seeded history.
	a, err := d.Advise("AAPL")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !a.Trend || a.Action != advisor.ActionWait {
		t.Errorf("expected WAIT without news, got %+v", a)
	}

	d.Publish(news.Item{Impact: 7, Title: "Good quarter", Sector: market.SectorTechnology, Date: "2025-05-01", Positive: true})
	a, _ = d.Advise("AAPL")
	if a.Action != advisor.ActionBuy || !a.PositiveNews {
		t.Errorf("expected BUY with positive news, got %+v", a)
	}

	if _, err := d.Advise("NOPE"); !errors.Is(err, marketservice.ErrUnknownTicker) {
		t.Errorf("expected ErrUnknownTicker, got %v", err)
	}
}

func TestDeskSnapshotRestore(t *testing.T) {
	d := newTestDesk(t)
	d.Publish(news.Item{Impact: 3, Title: "a", Sector: market.SectorFinance, Date: "2025-05-03"})
	d.Publish(news.Item{Impact: 9, Title: "b", Sector: market.SectorHealth, Date: "2025-05-01"})
	d.News.SortByDate()

	snap := d.Snapshot()
	if snap.Version != SnapshotVersion || len(snap.Instruments) != 2 || len(snap.News) != 2 || !snap.ByDate {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	other, err := NewDesk(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer other.Close()

	if err := other.Restore(snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	items := other.News.Items()
	if items[0].Title != "b" || items[1].Title != "a" || !other.News.ByDate() {
		t.Errorf("expected feed order b, a by date, got %+v", items)
	}
	jpm, _ := other.Market.Find("JPM")
	want, _ := d.Market.Find("JPM")
	if !jpm.Price.Equal(want.Price) || jpm.HistoryLen != want.HistoryLen {
		t.Errorf("expected JPM %+v, got %+v", want, jpm)
	}
}

func TestDeskSnapshotConsistentWithPublish(t *testing.T) {
	d := newTestDesk(t)
	const published = 200

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < published; i++ {
			item := news.Item{Impact: i%10 + 1, Title: fmt.Sprintf("tick %d", i), Sector: market.SectorTechnology, Date: "2025-05-01"}
			// Both paths must be safe against a concurrent snapshot.
			if i%2 == 0 {
				d.Publish(item)
			} else {
				d.News.Publish(item)
			}
		}
	}()

	check := func(snap Snapshot) {
		t.Helper()
		var aapl market.Record
		for _, rec := range snap.Instruments {
			if rec.Ticker == "AAPL" {
				aapl = rec
			}
		}
		// Each published item appends one AAPL sample to the seeded three.
		if want := 3 + len(snap.News); len(aapl.History) != want {
			t.Fatalf("snapshot has %d items but %d AAPL samples, want %d", len(snap.News), len(aapl.History), want)
		}
	}

	for running := true; running; {
		select {
		case <-done:
			running = false
		default:
		}
		check(d.Snapshot())
	}

	final := d.Snapshot()
	check(final)
	if len(final.News) != published {
		t.Errorf("expected %d items, got %d", published, len(final.News))
	}
}

func TestDeskRestoreRejectsInvalid(t *testing.T) {
	d := newTestDesk(t)

	if err := d.Restore(Snapshot{Version: 99}); err == nil {
		t.Error("expected version error")
	}

	bad := d.Snapshot()
	bad.News = []news.Item{{Impact: 0, Title: "x", Sector: market.SectorEnergy, Date: "2025-05-01"}}
	if err := d.Restore(bad); err == nil {
		t.Error("expected validation error")
	}
	if d.Market.Len() != 2 {
		t.Errorf("expected state kept, got %d instruments", d.Market.Len())
	}
}
