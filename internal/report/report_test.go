package report

import (
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestFormatMoney(t *testing.T) {
	cases := []struct {
		amount   string
		currency string
		want     string
	}{
		{"183.75", "USD", "$183.75"},
		{"1", "USD", "$1.00"},
		{"1234.5", "USD", "$1,234.50"},
		{"99.999", "USD", "$100.00"},
		{"12.5", "NOPE", "12.50"},
	}
	for _, tc := range cases {
		if got := FormatMoney(dec(tc.amount), tc.currency); got != tc.want {
			t.Errorf("FormatMoney(%s, %s): expected %q, got %q", tc.amount, tc.currency, tc.want, got)
		}
	}
}

func TestMarkdown(t *testing.T) {
	cfg := desk.DefaultConfig()
	cfg.Instruments = []market.Record{
		{Listing: market.Listing{Ticker: "AAPL", Name: "Apple", Sector: market.SectorTechnology, Price: dec("175")}},
		{Listing: market.Listing{Ticker: "XOM", Name: "Exxon", Sector: market.SectorEnergy, Price: dec("110")}},
	}
	d, err := desk.NewDesk(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer d.Close()

	if _, err := d.Publish(news.Item{Impact: 2, Title: "Spill", Sector: market.SectorEnergy, Date: "2025-05-01"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < news.CrisisCount; i++ {
		if _, err := d.Publish(news.Item{Impact: 9, Title: "Recall", Sector: market.SectorHealth, Date: "2025-05-02"}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	md := Markdown(d, "USD")
	for _, want := range []string{
		"| AAPL | Apple | Technology | $175.00 |",
		"Cheapest: **XOM**",
		"| Energy | $105.60 |",
		"Crisis alert",
		"**Spill** (Energy)",
		"## Recommendations",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("expected report to contain %q\n%s", want, md)
		}
	}
	if strings.Contains(md, "| Health |") {
		t.Error("expected empty sectors to be omitted")
	}

	out, err := Render(md, 80)
	if err != nil {
		t.Fatalf("unexpected render error: %v", err)
	}
	if !strings.Contains(out, "AAPL") {
		t.Error("expected rendered report to mention AAPL")
	}
}
