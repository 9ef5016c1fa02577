package advisor

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

type Action string

const (
	ActionBuy     Action = "BUY"
	ActionWait    Action = "WAIT"
	ActionDontBuy Action = "DONT_BUY"
)

const (
	// Window is the number of recent samples the advice looks at.
	Window = 5
	// PositiveImpact is the minimum impact of a supporting news item.
	PositiveImpact = 6
	// MaxVolatilityPct is the exclusive upper bound of "low volatility".
	MaxVolatilityPct = 3.0
)

// Advice is a buy recommendation together with the figures behind it.
type Advice struct {
	Ticker        string          `json:"ticker"`
	Action        Action          `json:"action"`
	Price         decimal.Decimal `json:"price"`
	MovingAverage decimal.Decimal `json:"moving_average"`
	Trend         bool            `json:"trend"`
	PositiveNews  bool            `json:"positive_news"`
	VolatilityPct float64         `json:"volatility_pct"`
}

// Advise decides whether to buy an instrument priced at price.
//
// samples are the instrument's most recent samples, newest first; only the
// first Window are used. feed is searched for a positive item on sector.
// An uptrend (price above the moving average) is a buy only when the news
// backs it; otherwise it is a wait. Without an uptrend, low volatility is
// still a buy.
func Advise(ticker string, sector market.Sector, price decimal.Decimal, samples []market.PriceSample, feed []news.Item) Advice {
	if len(samples) > Window {
		samples = samples[:Window]
	}

	a := Advice{
		Ticker:        ticker,
		Price:         price,
		MovingAverage: mean(samples),
	}
	a.Trend = price.GreaterThan(a.MovingAverage)

	if a.Trend {
		a.PositiveNews = hasPositiveNews(sector, feed)
		if a.PositiveNews {
			a.Action = ActionBuy
		} else {
			a.Action = ActionWait
		}
		return a
	}

	a.VolatilityPct = Volatility(samples)
	if a.VolatilityPct < MaxVolatilityPct {
		a.Action = ActionBuy
	} else {
		a.Action = ActionDontBuy
	}
	return a
}

func hasPositiveNews(sector market.Sector, feed []news.Item) bool {
	for _, it := range feed {
		if it.Sector == sector && it.Impact >= PositiveImpact && it.Positive {
			return true
		}
	}
	return false
}

func mean(samples []market.PriceSample) decimal.Decimal {
	if len(samples) == 0 {
		return decimal.Zero
	}
	sum := decimal.Zero
	for _, s := range samples {
		sum = sum.Add(s.Price)
	}
	return sum.Div(decimal.NewFromInt(int64(len(samples))))
}

// Volatility is the population standard deviation of the sample prices as a
// percentage of their mean. It is 0 without samples or with a zero mean.
func Volatility(samples []market.PriceSample) float64 {
	m := mean(samples)
	if !m.IsPositive() {
		return 0
	}
	variance := decimal.Zero
	for _, s := range samples {
		d := s.Price.Sub(m)
		variance = variance.Add(d.Mul(d))
	}
	variance = variance.Div(decimal.NewFromInt(int64(len(samples))))
	stddev := math.Sqrt(variance.InexactFloat64())
	return stddev / m.InexactFloat64() * 100
}
