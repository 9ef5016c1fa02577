package view

import (
	"sync"

	"github.com/shopspring/decimal"
	"github.com/zappabad/stockwire/internal/market"
)

// Quote is a point-in-time copy of one instrument.
type Quote struct {
	Ticker     string          `json:"ticker"`
	Name       string          `json:"name"`
	Sector     market.Sector   `json:"sector"`
	Price      decimal.Decimal `json:"price"`
	LastDate   string          `json:"last_date,omitempty"`
	HistoryLen int             `json:"history_len"`
}

// NewQuote copies the visible state of inst.
func NewQuote(inst *market.Instrument) Quote {
	q := Quote{
		Ticker:     inst.Ticker(),
		Name:       inst.Name(),
		Sector:     inst.Sector(),
		Price:      inst.Price(),
		HistoryLen: inst.HistoryLen(),
	}
	if last, ok := inst.LastSample(); ok {
		q.LastDate = last.Date
	}
	return q
}

// Quotes copies a list of instruments, keeping its order.
func Quotes(list []*market.Instrument) []Quote {
	out := make([]Quote, len(list))
	for i, inst := range list {
		out[i] = NewQuote(inst)
	}
	return out
}

// PriceEvent is emitted whenever a sample is appended to an instrument.
type PriceEvent struct {
	Ticker string          `json:"ticker"`
	Sector market.Sector   `json:"sector"`
	Date   string          `json:"date"`
	Old    decimal.Decimal `json:"old"`
	New    decimal.Decimal `json:"new"`
}

// Up reports whether the price rose.
func (e PriceEvent) Up() bool { return e.New.GreaterThan(e.Old) }

// Down reports whether the price fell.
func (e PriceEvent) Down() bool { return e.New.LessThan(e.Old) }

// FromAdjustment converts a registry adjustment into an event.
func FromAdjustment(a market.Adjustment) PriceEvent {
	return PriceEvent{Ticker: a.Ticker, Sector: a.Sector, Date: a.Date, Old: a.Old, New: a.New}
}

// MarketView keeps the latest price change per ticker.
type MarketView struct {
	mu         sync.RWMutex
	lastChange map[string]PriceEvent
}

// NewMarketView creates a new MarketView.
func NewMarketView() *MarketView {
	return &MarketView{
		lastChange: make(map[string]PriceEvent),
	}
}

// Apply records ev as the latest change of its ticker.
func (v *MarketView) Apply(ev PriceEvent) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.lastChange[ev.Ticker] = ev
}

// LastChange returns the latest change recorded for ticker.
func (v *MarketView) LastChange(ticker string) (PriceEvent, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	ev, ok := v.lastChange[ticker]
	return ev, ok
}

// Snapshot returns a copy of the latest change per ticker.
func (v *MarketView) Snapshot() map[string]PriceEvent {
	v.mu.RLock()
	defer v.mu.RUnlock()

	out := make(map[string]PriceEvent, len(v.lastChange))
	for k, ev := range v.lastChange {
		out[k] = ev
	}
	return out
}
