package advisor

import (
	"math"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

func samples(prices ...string) []market.PriceSample {
	out := make([]market.PriceSample, len(prices))
	for i, p := range prices {
		out[i] = market.PriceSample{Date: "2025-05-01", Price: decimal.RequireFromString(p)}
	}
	return out
}

func TestAdviseTrendWithNews(t *testing.T) {
	hist := samples("100", "100", "100", "100", "100")
	feed := []news.Item{
		{Impact: 9, Sector: market.SectorFinance, Positive: true},
		{Impact: 6, Sector: market.SectorTechnology, Positive: true},
	}

	a := Advise("AAPL", market.SectorTechnology, decimal.NewFromInt(110), hist, feed)
	if !a.Trend || !a.PositiveNews || a.Action != ActionBuy {
		t.Errorf("expected BUY on trend with news, got %+v", a)
	}
	if !a.MovingAverage.Equal(decimal.NewFromInt(100)) {
		t.Errorf("expected moving average 100, got %s", a.MovingAverage)
	}
}

func TestAdviseTrendWithoutNews(t *testing.T) {
	hist := samples("100", "100")
	feed := []news.Item{
		{Impact: 5, Sector: market.SectorTechnology, Positive: true},
		{Impact: 9, Sector: market.SectorTechnology, Positive: false},
	}

	a := Advise("AAPL", market.SectorTechnology, decimal.NewFromInt(101), hist, feed)
	if !a.Trend || a.PositiveNews || a.Action != ActionWait {
		t.Errorf("expected WAIT, got %+v", a)
	}
}

func TestAdviseNoTrendLowVolatility(t *testing.T) {
	hist := samples("100", "101", "99", "100", "100")

	a := Advise("KO", market.SectorConsumer, decimal.NewFromInt(100), hist, nil)
	if a.Trend || a.Action != ActionBuy {
		t.Errorf("expected BUY on low volatility, got %+v", a)
	}
	if a.VolatilityPct >= MaxVolatilityPct {
		t.Errorf("expected low volatility, got %v", a.VolatilityPct)
	}
}

func TestAdviseNoTrendHighVolatility(t *testing.T) {
	hist := samples("80", "120", "80", "120", "100")

	a := Advise("XOM", market.SectorEnergy, decimal.NewFromInt(90), hist, nil)
	if a.Trend || a.Action != ActionDontBuy {
		t.Errorf("expected DONT_BUY, got %+v", a)
	}
}

func TestAdviseUsesOnlyWindow(t *testing.T) {
	// The sixth sample would pull the average above the price.
	hist := samples("100", "100", "100", "100", "100", "1000")

	a := Advise("X", market.SectorEnergy, decimal.NewFromInt(105), hist, nil)
	if !a.Trend {
		t.Errorf("expected trend over the last 5 samples, got %+v", a)
	}
}

func TestVolatility(t *testing.T) {
	if v := Volatility(nil); v != 0 {
		t.Errorf("expected 0 without samples, got %v", v)
	}
	// mean 100, population stddev 10
	v := Volatility(samples("90", "110"))
	if math.Abs(v-10) > 1e-9 {
		t.Errorf("expected 10%%, got %v", v)
	}
}
