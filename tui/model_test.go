package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/engine"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func newTestDesk(t *testing.T) *desk.Desk {
	t.Helper()
	cfg := desk.DefaultConfig()
	cfg.Instruments = []market.Record{
		{
			Listing: market.Listing{Ticker: "AAPL", Name: "Apple", Sector: market.SectorTechnology, Price: dec("175")},
			History: []market.PriceSample{
				{Date: "2025-04-29", Price: dec("170")},
				{Date: "2025-04-30", Price: dec("175")},
			},
		},
		{Listing: market.Listing{Ticker: "XOM", Name: "Exxon", Sector: market.SectorEnergy, Price: dec("110")}},
	}
	d, err := desk.NewDesk(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	t.Cleanup(d.Close)
	return d
}

func press(m *Model, k string) {
	var msg tea.KeyMsg
	switch k {
	case "tab":
		msg = tea.KeyMsg{Type: tea.KeyTab}
	case "down":
		msg = tea.KeyMsg{Type: tea.KeyDown}
	default:
		msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
	}
	m.Update(msg)
}

func TestModelKeys(t *testing.T) {
	d := newTestDesk(t)
	script := []news.Item{
		{Impact: 8, Title: "Rally", Sector: market.SectorTechnology, Date: "2025-05-02", Positive: true},
		{Impact: 4, Title: "Glut", Sector: market.SectorEnergy, Date: "2025-05-01"},
	}
	sim := engine.NewSimulation(d, script)
	m := NewModel(d, Options{Simulation: sim})

	if m.instrumentsPanel.SelectedTicker() != "AAPL" {
		t.Fatalf("expected AAPL selected, got %q", m.instrumentsPanel.SelectedTicker())
	}
	if m.chartPanel.Ticker() != "AAPL" {
		t.Errorf("expected chart on AAPL, got %q", m.chartPanel.Ticker())
	}

	press(m, "n")
	press(m, "n")
	if d.News.Len() != 2 || sim.Remaining() != 0 {
		t.Fatalf("expected 2 published, got %d (remaining %d)", d.News.Len(), sim.Remaining())
	}
	press(m, "n")
	if m.statusMsg != "Script exhausted" {
		t.Errorf("unexpected status: %q", m.statusMsg)
	}

	press(m, "s")
	if !d.News.ByDate() {
		t.Error("expected feed sorted by date")
	}

	press(m, "x")
	if d.News.Len() != 1 || !strings.Contains(m.statusMsg, "Glut") {
		t.Errorf("expected earliest item extracted, got len %d status %q", d.News.Len(), m.statusMsg)
	}

	press(m, "p")
	if !m.instrumentsPanel.ByPrice() {
		t.Error("expected price ordering")
	}
	if m.instrumentsPanel.SelectedTicker() != "AAPL" {
		t.Errorf("expected selection kept on AAPL, got %q", m.instrumentsPanel.SelectedTicker())
	}

	press(m, "down")
	if m.chartPanel.Ticker() != "XOM" {
		t.Errorf("expected chart to follow selection, got %q", m.chartPanel.Ticker())
	}

	press(m, "tab")
	if m.focusedPanel != FocusChart {
		t.Errorf("expected chart focus, got %d", m.focusedPanel)
	}
}

func TestModelView(t *testing.T) {
	d := newTestDesk(t)
	m := NewModel(d, Options{})

	if got := m.View(); got != "Initializing..." {
		t.Errorf("expected placeholder before size, got %q", got)
	}

	m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	view := m.View()
	for _, want := range []string{"Instruments", "AAPL", "$175.00", "Sectors", "News"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}

	rows := m.sectorsPanel.Rows()
	if len(rows) != len(market.Sectors()) {
		t.Fatalf("expected a row per sector, got %d", len(rows))
	}
	if rows[0].Sector != market.SectorTechnology || rows[0].Instruments != 1 || !rows[0].Average.Equal(dec("175")) {
		t.Errorf("unexpected technology row: %+v", rows[0])
	}
}
