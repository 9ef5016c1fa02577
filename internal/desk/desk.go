package desk

import (
	"fmt"
	"sync"

	"github.com/zappabad/stockwire/internal/advisor"
	"github.com/zappabad/stockwire/internal/market"
	marketservice "github.com/zappabad/stockwire/internal/market/service"
	"github.com/zappabad/stockwire/internal/news"
	newsservice "github.com/zappabad/stockwire/internal/news/service"
)

// SnapshotVersion is bumped whenever the Snapshot layout changes.
const SnapshotVersion = 1

// Desk owns the market and news services and couples them: every published
// item adjusts the market.
type Desk struct {
	Market *marketservice.MarketService
	News   *newsservice.NewsService

	cfg Config
	mu  sync.Mutex
}

// NewDesk creates a Desk and loads cfg.Instruments.
func NewDesk(cfg Config) (*Desk, error) {
	d := &Desk{cfg: cfg}

	d.Market = marketservice.NewMarketService(nil, cfg.MarketConfig)
	if _, err := d.Market.Replace(cfg.Instruments); err != nil {
		d.Market.Close()
		return nil, fmt.Errorf("load instruments: %w", err)
	}

	d.News = newsservice.NewNewsService(cfg.NewsConfig, d.Market)

	return d, nil
}

// Publish sends item through the news service, adjusting its sector. It is
// serialized with Restore.
func (d *Desk) Publish(item news.Item) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.News.Publish(item)
}

// Advise returns a buy recommendation for ticker based on its recent history
// and the news currently in the feed.
func (d *Desk) Advise(ticker string) (advisor.Advice, error) {
	q, ok := d.Market.Find(ticker)
	if !ok {
		return advisor.Advice{}, fmt.Errorf("%w: %s", marketservice.ErrUnknownTicker, ticker)
	}
	recent, err := d.Market.RecentHistory(ticker, advisor.Window)
	if err != nil {
		return advisor.Advice{}, err
	}
	return advisor.Advise(q.Ticker, q.Sector, q.Price, recent, d.News.BySector(q.Sector)), nil
}

// Snapshot is the persisted state of a desk.
type Snapshot struct {
	Version     int             `json:"version"`
	Instruments []market.Record `json:"instruments"`
	News        []news.Item     `json:"news"`
	ByDate      bool            `json:"by_date"`
}

// Snapshot captures every instrument with its history and the feed in its
// current order.
func (d *Desk) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()

	snap := Snapshot{Version: SnapshotVersion}
	d.News.Capture(func(items []news.Item, byDate bool) {
		snap.News = items
		snap.ByDate = byDate
		snap.Instruments = d.Market.Records()
	})
	return snap
}

// Restore replaces the desk state with snap. Nothing changes when snap does
// not validate.
func (d *Desk) Restore(snap Snapshot) error {
	if snap.Version != SnapshotVersion {
		return fmt.Errorf("unsupported snapshot version %d", snap.Version)
	}
	for _, it := range snap.News {
		if err := newsservice.Validate(it); err != nil {
			return fmt.Errorf("restore news: %w", err)
		}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, err := d.Market.Replace(snap.Instruments); err != nil {
		return fmt.Errorf("restore instruments: %w", err)
	}
	return d.News.Replace(snap.News, snap.ByDate)
}

// Close shuts down all desk subsystems in reverse dependency order. It does
// not take mu, so a Publish blocked on a full event channel is released.
func (d *Desk) Close() {
	// Stop news first; it drives the market.
	if d.News != nil {
		d.News.Close()
	}
	if d.Market != nil {
		d.Market.Close()
	}
}
