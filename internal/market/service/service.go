package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/market"
	marketview "github.com/zappabad/stockwire/internal/market/view"
	"github.com/zappabad/stockwire/pkg/logger"
	"github.com/zappabad/stockwire/pkg/metrics"
)

var (
	ErrUnknownTicker = errors.New("unknown ticker")
	ErrInvalidPrice  = errors.New("invalid price")
	ErrEmptyTicker   = errors.New("empty ticker")
)

// MarketService owns a registry and serializes every access to it.
// Each appended price sample is published as a PriceEvent.
type MarketService struct {
	cfg   Config
	log   *zap.Logger
	mview *marketview.MarketView

	mu  sync.RWMutex
	reg *market.Registry

	externalEvents chan marketview.PriceEvent
	droppedEvents  atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	isClosed  bool
}

// NewMarketService creates a MarketService seeded with listings. Listings that
// fail validation are skipped and logged.
func NewMarketService(listings []market.Listing, cfg Config) *MarketService {
	if cfg.PriceEventBuffer <= 0 {
		cfg.PriceEventBuffer = DefaultConfig().PriceEventBuffer
	}

	s := &MarketService{
		cfg:            cfg,
		log:            logger.Named("market"),
		mview:          marketview.NewMarketView(),
		reg:            market.NewRegistry(),
		externalEvents: make(chan marketview.PriceEvent, cfg.PriceEventBuffer),
		closed:         make(chan struct{}),
	}

	for _, l := range listings {
		if _, err := s.Insert(l); err != nil {
			s.log.Warn("skipping listing", zap.String("ticker", l.Ticker), zap.Error(err))
		}
	}

	return s
}

func validateListing(l market.Listing) error {
	if strings.TrimSpace(l.Ticker) == "" {
		return ErrEmptyTicker
	}
	if !l.Sector.Valid() {
		return fmt.Errorf("%w: %s", market.ErrUnknownSector, l.Ticker)
	}
	if l.Price.IsNegative() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, l.Price)
	}
	return nil
}

// Insert registers a listing. It reports false without error when the ticker
// already exists; the existing instrument is left untouched.
func (s *MarketService) Insert(l market.Listing) (bool, error) {
	if err := validateListing(l); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	created := s.reg.Insert(l.Ticker, l.Name, l.Sector, l.Price)
	if created {
		metrics.RegistrySize.Set(float64(s.reg.Len()))
	}
	s.log.Debug("insert", zap.String("ticker", l.Ticker), zap.Bool("created", created))
	return created, nil
}

// Find returns a quote for ticker.
func (s *MarketService) Find(ticker string) (marketview.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.reg.Find(ticker)
	if !ok {
		return marketview.Quote{}, false
	}
	return marketview.NewQuote(inst), true
}

// Quotes returns every instrument in ticker order.
func (s *MarketService) Quotes() []marketview.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return marketview.Quotes(s.reg.OrderedList())
}

// QuotesByPrice returns every instrument, most expensive first.
func (s *MarketService) QuotesByPrice() []marketview.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return marketview.Quotes(s.reg.SortedByPriceDescending())
}

// QuotesInRange returns instruments priced within [lo, hi] in ticker order.
func (s *MarketService) QuotesInRange(lo, hi decimal.Decimal) []marketview.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return marketview.Quotes(s.reg.RangeQuery(lo, hi))
}

func (s *MarketService) Cheapest() (marketview.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.reg.Cheapest()
	if !ok {
		return marketview.Quote{}, false
	}
	return marketview.NewQuote(inst), true
}

func (s *MarketService) MostExpensive() (marketview.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.reg.MostExpensive()
	if !ok {
		return marketview.Quote{}, false
	}
	return marketview.NewQuote(inst), true
}

// SectorAverage returns the mean current price of sector, zero when empty.
func (s *MarketService) SectorAverage(sector market.Sector) decimal.Decimal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.SectorAverage(sector)
}

// AddPrice appends a dated closing price and makes it the current price.
func (s *MarketService) AddPrice(ticker, date string, price decimal.Decimal) error {
	if err := market.CheckDate(date); err != nil {
		return err
	}
	if !price.IsPositive() {
		return fmt.Errorf("%w: %s", ErrInvalidPrice, price)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	inst, ok := s.reg.Find(ticker)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	old := inst.Price()
	s.reg.AddPrice(ticker, date, price)
	metrics.PriceSamples.Inc()

	s.emit(marketview.PriceEvent{
		Ticker: inst.Ticker(),
		Sector: inst.Sector(),
		Date:   date,
		Old:    old,
		New:    price,
	})
	return nil
}

// ApplySectorAdjustment moves every instrument of sector by the impact
// percentage and returns how many instruments changed.
func (s *MarketService) ApplySectorAdjustment(sector market.Sector, impact int, date string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	adjusted := s.reg.ApplySectorAdjustment(sector, impact, date)
	if len(adjusted) == 0 {
		s.log.Debug("adjustment hit empty sector", zap.Stringer("sector", sector))
		return 0
	}

	metrics.RecordAdjustment(sector.String(), len(adjusted))
	s.log.Debug("sector adjusted",
		zap.Stringer("sector", sector),
		zap.Int("impact", impact),
		zap.Int("instruments", len(adjusted)),
	)

	for _, a := range adjusted {
		s.emit(marketview.FromAdjustment(a))
	}
	return len(adjusted)
}

// emit must be called with mu held.
func (s *MarketService) emit(ev marketview.PriceEvent) {
	// Always update view (authoritative)
	s.mview.Apply(ev)

	if s.isClosed {
		return
	}
	if s.cfg.DropSlowSubscriber {
		select {
		case s.externalEvents <- ev:
		default:
			s.droppedEvents.Add(1)
			metrics.RecordDropped("market")
		}
		return
	}
	select {
	case s.externalEvents <- ev:
	case <-s.closed:
	}
}

// History returns the samples of ticker, newest first.
func (s *MarketService) History(ticker string) ([]market.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.reg.Find(ticker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return inst.Samples(), nil
}

// RecentHistory returns up to n samples of ticker, newest first.
func (s *MarketService) RecentHistory(ticker string, n int) ([]market.PriceSample, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.reg.Find(ticker)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return inst.RecentSamples(n), nil
}

// MovingAverage averages the last window samples of ticker.
func (s *MarketService) MovingAverage(ticker string, window int) (decimal.Decimal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inst, ok := s.reg.Find(ticker)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrUnknownTicker, ticker)
	}
	return inst.MovingAverage(window), nil
}

// LastChange returns the latest price event seen for ticker.
func (s *MarketService) LastChange(ticker string) (marketview.PriceEvent, bool) {
	return s.mview.LastChange(ticker)
}

// Changes returns the latest price event per ticker.
func (s *MarketService) Changes() map[string]marketview.PriceEvent {
	return s.mview.Snapshot()
}

func (s *MarketService) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Len()
}

// Records exports every instrument with its history oldest first.
func (s *MarketService) Records() []market.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.reg.Records()
}

// Replace drops every instrument and loads records in their place. No price
// events are emitted for replayed history.
func (s *MarketService) Replace(records []market.Record) (int, error) {
	for _, rec := range records {
		if err := validateListing(rec.Listing); err != nil {
			return 0, err
		}
		for _, smp := range rec.History {
			if err := market.CheckDate(smp.Date); err != nil {
				return 0, fmt.Errorf("%s: %w", rec.Ticker, err)
			}
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.reg.Clear()
	n := s.reg.Load(records)
	metrics.RegistrySize.Set(float64(s.reg.Len()))
	s.log.Info("registry replaced", zap.Int("instruments", n))
	return n, nil
}

// Events returns the price events channel for subscribers.
func (s *MarketService) Events() <-chan marketview.PriceEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped price events.
func (s *MarketService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close stops event delivery and closes the events channel.
func (s *MarketService) Close() {
	s.closeOnce.Do(func() {
		// Unblock a pending send before taking the lock.
		close(s.closed)

		s.mu.Lock()
		defer s.mu.Unlock()

		s.isClosed = true
		close(s.externalEvents)
	})
}
