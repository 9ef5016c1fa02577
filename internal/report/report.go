package report

import (
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/charmbracelet/glamour"
	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/advisor"
	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

// FormatMoney renders amount in currency using its minor-unit precision.
// Unknown currency codes fall back to a plain two-decimal string.
func FormatMoney(amount decimal.Decimal, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return amount.StringFixed(2)
	}
	minor := amount.Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), cur.Code).Display()
}

// Markdown builds the desk report: instruments, sector averages, the feed and
// one recommendation per instrument.
func Markdown(d *desk.Desk, currency string) string {
	var b strings.Builder

	b.WriteString("# Market report\n\n")

	quotes := d.Market.Quotes()
	b.WriteString("## Instruments\n\n")
	b.WriteString("| Ticker | Name | Sector | Price | Last sample |\n")
	b.WriteString("|---|---|---|---:|---|\n")
	for _, q := range quotes {
		last := q.LastDate
		if last == "" {
			last = "-"
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			q.Ticker, q.Name, q.Sector, FormatMoney(q.Price, currency), last)
	}

	if cheap, ok := d.Market.Cheapest(); ok {
		rich, _ := d.Market.MostExpensive()
		fmt.Fprintf(&b, "\nCheapest: **%s** at %s. Most expensive: **%s** at %s.\n",
			cheap.Ticker, FormatMoney(cheap.Price, currency),
			rich.Ticker, FormatMoney(rich.Price, currency))
	}

	b.WriteString("\n## Sectors\n\n")
	b.WriteString("| Sector | Average price |\n|---|---:|\n")
	for _, s := range market.Sectors() {
		avg := d.Market.SectorAverage(s)
		if avg.IsZero() {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s |\n", s, FormatMoney(avg, currency))
	}

	items := d.News.Items()
	order := "impact"
	if d.News.ByDate() {
		order = "date"
	}
	fmt.Fprintf(&b, "\n## News (%d, by %s)\n\n", len(items), order)
	if d.News.CrisisAlert() {
		fmt.Fprintf(&b, "> **Crisis alert**: %d or more items at impact %d and above.\n\n", news.CrisisCount, news.CrisisImpact)
	}
	if len(items) > 0 {
		fmt.Fprintf(&b, "Average impact: %.2f\n\n", d.News.AverageImpact())
		for _, it := range items {
			tone := "-"
			if it.Positive {
				tone = "+"
			}
			fmt.Fprintf(&b, "- `%s` [%d%s] **%s** (%s)\n", it.Date, it.Impact, tone, it.Title, it.Sector)
		}
	}

	b.WriteString("\n## Recommendations\n\n")
	b.WriteString("| Ticker | Action | Moving average | Volatility |\n|---|---|---:|---:|\n")
	for _, q := range quotes {
		adv, err := d.Advise(q.Ticker)
		if err != nil {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
			adv.Ticker, adv.Action, FormatMoney(adv.MovingAverage, currency), volatility(adv))
	}

	return b.String()
}

func volatility(a advisor.Advice) string {
	if a.Trend {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", a.VolatilityPct)
}

// Render formats markdown for a terminal of the given width.
func Render(markdown string, width int) (string, error) {
	if width <= 0 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", fmt.Errorf("create renderer: %w", err)
	}
	return r.Render(markdown)
}
