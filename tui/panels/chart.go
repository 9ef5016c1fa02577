package panels

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/advisor"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/report"
	"github.com/zappabad/stockwire/tui/styles"
)

// ChartPanel plots the price history of one instrument as vertical bars,
// oldest sample on the left, with the current recommendation underneath.
type ChartPanel struct {
	ticker   string
	samples  []market.PriceSample // oldest first
	advice   advisor.Advice
	hasAdv   bool
	currency string

	focused bool
	width   int
	height  int
}

// NewChartPanel creates a new chart panel.
func NewChartPanel(currency string) *ChartPanel {
	return &ChartPanel{currency: currency}
}

// Init initializes the panel.
func (p *ChartPanel) Init() tea.Cmd {
	return nil
}

// Update handles messages for the panel.
func (p *ChartPanel) Update(msg tea.Msg) (*ChartPanel, tea.Cmd) {
	return p, nil
}

// View renders the panel.
func (p *ChartPanel) View() string {
	name := "No ticker"
	if p.ticker != "" {
		name = p.ticker
	}

	var content strings.Builder

	chartHeight := p.height - 8 // borders, title, axis, advice
	if chartHeight < 3 {
		chartHeight = 3
	}

	if len(p.samples) == 0 {
		content.WriteString(styles.MutedStyle.Render("No price history yet..."))
	} else {
		content.WriteString(p.renderChart(p.width-4, chartHeight))
	}

	if p.hasAdv {
		content.WriteString("\n")
		content.WriteString(p.renderAdvice())
	}

	panelStyle := styles.PanelStyle
	if p.focused {
		panelStyle = styles.FocusedPanelStyle
	}

	title := styles.RenderTitle(fmt.Sprintf("📉 History - %s", name), p.focused)
	panel := lipgloss.JoinVertical(lipgloss.Left, title, content.String())

	return panelStyle.Width(p.width - 2).Height(p.height - 2).Render(panel)
}

func (p *ChartPanel) renderChart(width, height int) string {
	// 9 chars for the price axis, 2 per sample column.
	columns := (width - 10) / 2
	if columns < 1 {
		columns = 1
	}
	samples := p.samples
	if len(samples) > columns {
		samples = samples[len(samples)-columns:]
	}

	minPrice, maxPrice := samples[0].Price, samples[0].Price
	for _, s := range samples {
		minPrice = decimal.Min(minPrice, s.Price)
		maxPrice = decimal.Max(maxPrice, s.Price)
	}
	// Pad the range by 10% so flat series still get some height.
	pad := maxPrice.Sub(minPrice).Mul(decimal.NewFromFloat(0.1))
	if pad.IsZero() {
		pad = maxPrice.Mul(decimal.NewFromFloat(0.01))
	}
	lo := minPrice.Sub(pad).InexactFloat64()
	hi := maxPrice.Add(pad).InexactFloat64()

	var result strings.Builder

	for row := 0; row < height; row++ {
		level := yToPrice(row, lo, hi, height)
		result.WriteString(styles.ChartAxisStyle.Render(fmt.Sprintf("%8.2f │", level)))

		for i, s := range samples {
			style := styles.ChartUpStyle
			if i > 0 && s.Price.LessThan(samples[i-1].Price) {
				style = styles.ChartDownStyle
			}
			if s.Price.InexactFloat64() >= level {
				result.WriteString(style.Render("┃"))
			} else {
				result.WriteString(" ")
			}
			result.WriteString(" ")
		}
		result.WriteString("\n")
	}

	result.WriteString(styles.ChartAxisStyle.Render("─────────┴"))
	result.WriteString(styles.ChartAxisStyle.Render(strings.Repeat("──", len(samples))))
	result.WriteString("\n")

	// First and last dates under the axis.
	first, last := samples[0].Date, samples[len(samples)-1].Date
	axis := "          " + first
	if len(samples) > 1 && last != first {
		gap := len(samples)*2 - len(first) - len(last)
		if gap < 1 {
			gap = 1
		}
		axis += strings.Repeat(" ", gap) + last
	}
	result.WriteString(styles.ChartLabelStyle.Render(axis))

	return result.String()
}

func yToPrice(y int, lo, hi float64, height int) float64 {
	if height <= 1 {
		return lo
	}
	ratio := float64(y) / float64(height-1)
	return hi - ratio*(hi-lo)
}

func (p *ChartPanel) renderAdvice() string {
	a := p.advice

	var action string
	switch a.Action {
	case advisor.ActionBuy:
		action = styles.PositiveStyle.Render(string(a.Action))
	case advisor.ActionDontBuy:
		action = styles.NegativeStyle.Render(string(a.Action))
	default:
		action = styles.NewsImportantStyle.Render(string(a.Action))
	}

	detail := fmt.Sprintf("MA%d %s", advisor.Window, report.FormatMoney(a.MovingAverage, p.currency))
	if a.Trend {
		detail += " · uptrend"
		if a.PositiveNews {
			detail += " · backed by news"
		}
	} else {
		detail += fmt.Sprintf(" · volatility %.2f%%", a.VolatilityPct)
	}
	return action + " " + styles.MutedStyle.Render(detail)
}

// SetFocus sets the focus state of the panel.
func (p *ChartPanel) SetFocus(focused bool) {
	p.focused = focused
}

// SetSize sets the panel dimensions.
func (p *ChartPanel) SetSize(width, height int) {
	p.width = width
	p.height = height
}

// SetHistory sets the charted ticker and its samples, newest first as the
// market service returns them.
func (p *ChartPanel) SetHistory(ticker string, newestFirst []market.PriceSample) {
	p.ticker = ticker
	p.samples = make([]market.PriceSample, len(newestFirst))
	for i, s := range newestFirst {
		p.samples[len(newestFirst)-1-i] = s
	}
}

// SetAdvice sets the recommendation shown under the chart.
func (p *ChartPanel) SetAdvice(a advisor.Advice) {
	p.advice = a
	p.hasAdv = true
}

// Ticker returns the charted ticker.
func (p *ChartPanel) Ticker() string {
	return p.ticker
}
