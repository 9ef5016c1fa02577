package postgres

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/market"
	marketview "github.com/zappabad/stockwire/internal/market/view"
	newsview "github.com/zappabad/stockwire/internal/news/view"
	"github.com/zappabad/stockwire/pkg/logger"
	"github.com/zappabad/stockwire/pkg/metrics"
)

const schema = `
CREATE TABLE IF NOT EXISTS news_archive (
	id           BIGSERIAL PRIMARY KEY,
	seq          BIGINT NOT NULL,
	impact       SMALLINT NOT NULL,
	title        TEXT NOT NULL,
	description  TEXT NOT NULL DEFAULT '',
	sector       TEXT NOT NULL,
	news_date    DATE NOT NULL,
	positive     BOOLEAN NOT NULL DEFAULT FALSE,
	adjusted     INTEGER NOT NULL DEFAULT 0,
	archived_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS price_samples (
	id           BIGSERIAL PRIMARY KEY,
	ticker       TEXT NOT NULL,
	sector       TEXT NOT NULL,
	sample_date  DATE NOT NULL,
	old_price    NUMERIC(18,6) NOT NULL,
	new_price    NUMERIC(18,6) NOT NULL,
	archived_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_price_samples_ticker ON price_samples (ticker, id);
`

// Archive appends published news and price samples to Postgres. Attach
// feeds it from the service event channels.
type Archive struct {
	pool *pgxpool.Pool
	log  *zap.Logger

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

func NewArchive(cfg *config.Config) (*Archive, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	if cfg.DatabaseMaxConns > 0 {
		poolConfig.MaxConns = cfg.DatabaseMaxConns
	}
	poolConfig.MaxConnIdleTime = 30 * time.Minute

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}

	return &Archive{
		pool:   pool,
		log:    logger.Named("archive"),
		closed: make(chan struct{}),
	}, nil
}

// EnsureSchema creates the archive tables when missing.
func (a *Archive) EnsureSchema(ctx context.Context) error {
	if _, err := a.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// RecordNews archives one published item.
func (a *Archive) RecordNews(ctx context.Context, ev newsview.NewsEvent) (err error) {
	timer := metrics.NewTimer()
	defer func() { metrics.RecordStorage("postgres", "record_news", err, timer.Elapsed()) }()

	it := ev.Item
	_, err = a.pool.Exec(ctx, `
		INSERT INTO news_archive (seq, impact, title, description, sector, news_date, positive, adjusted)
		VALUES ($1, $2, $3, $4, $5, $6::date, $7, $8)`,
		ev.Seq, it.Impact, it.Title, it.Description, it.Sector.String(), it.Date, it.Positive, ev.Adjusted,
	)
	if err != nil {
		return fmt.Errorf("record news: %w", err)
	}
	return nil
}

// RecordSample archives one appended price sample.
func (a *Archive) RecordSample(ctx context.Context, ev marketview.PriceEvent) (err error) {
	timer := metrics.NewTimer()
	defer func() { metrics.RecordStorage("postgres", "record_sample", err, timer.Elapsed()) }()

	_, err = a.pool.Exec(ctx, `
		INSERT INTO price_samples (ticker, sector, sample_date, old_price, new_price)
		VALUES ($1, $2, $3::date, $4::numeric, $5::numeric)`,
		ev.Ticker, ev.Sector.String(), ev.Date, ev.Old.String(), ev.New.String(),
	)
	if err != nil {
		return fmt.Errorf("record sample: %w", err)
	}
	return nil
}

// RecordSamples archives a batch of price events in one round trip.
func (a *Archive) RecordSamples(ctx context.Context, evs []marketview.PriceEvent) (err error) {
	if len(evs) == 0 {
		return nil
	}
	timer := metrics.NewTimer()
	defer func() { metrics.RecordStorage("postgres", "record_samples", err, timer.Elapsed()) }()

	batch := &pgx.Batch{}
	for _, ev := range evs {
		batch.Queue(`
			INSERT INTO price_samples (ticker, sector, sample_date, old_price, new_price)
			VALUES ($1, $2, $3::date, $4::numeric, $5::numeric)`,
			ev.Ticker, ev.Sector.String(), ev.Date, ev.Old.String(), ev.New.String(),
		)
	}
	if err = a.pool.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("record samples: %w", err)
	}
	return nil
}

// RecentNews returns the last limit archived items, newest first.
func (a *Archive) RecentNews(ctx context.Context, limit int) ([]newsview.NewsEvent, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT seq, impact, title, description, sector, to_char(news_date, 'YYYY-MM-DD'), positive, adjusted
		FROM news_archive
		ORDER BY id DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query news: %w", err)
	}
	defer rows.Close()

	var out []newsview.NewsEvent
	for rows.Next() {
		var (
			ev     newsview.NewsEvent
			sector string
		)
		if err := rows.Scan(&ev.Seq, &ev.Item.Impact, &ev.Item.Title, &ev.Item.Description,
			&sector, &ev.Item.Date, &ev.Item.Positive, &ev.Adjusted); err != nil {
			return nil, fmt.Errorf("scan news: %w", err)
		}
		if ev.Item.Sector, err = market.ParseSector(sector); err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

// Samples returns the archived samples of ticker in archive order.
func (a *Archive) Samples(ctx context.Context, ticker string) ([]market.PriceSample, error) {
	rows, err := a.pool.Query(ctx, `
		SELECT to_char(sample_date, 'YYYY-MM-DD'), new_price::text
		FROM price_samples
		WHERE ticker = $1
		ORDER BY id`, ticker)
	if err != nil {
		return nil, fmt.Errorf("query samples: %w", err)
	}
	defer rows.Close()

	var out []market.PriceSample
	for rows.Next() {
		var date, price string
		if err := rows.Scan(&date, &price); err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		p, err := decimal.NewFromString(price)
		if err != nil {
			return nil, fmt.Errorf("parse price %q: %w", price, err)
		}
		out = append(out, market.PriceSample{Date: date, Price: p})
	}
	return out, rows.Err()
}

// AttachNewsEvents archives every event from events in a goroutine until the
// channel closes or the archive is closed.
func (a *Archive) AttachNewsEvents(events <-chan newsview.NewsEvent) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		for {
			select {
			case <-a.closed:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				if err := a.RecordNews(context.Background(), ev); err != nil {
					a.log.Error("archive news", zap.String("title", ev.Item.Title), zap.Error(err))
				}
			}
		}
	}()
}

// sampleBatch caps how many queued price events go into one batch. A sector
// adjustment emits one event per instrument back to back.
const sampleBatch = 64

// nextBatch appends first and then whatever is already queued on events, up
// to limit, without blocking. open is false once events has been closed.
func nextBatch(buf []marketview.PriceEvent, first marketview.PriceEvent, events <-chan marketview.PriceEvent, limit int) (batch []marketview.PriceEvent, open bool) {
	batch = append(buf[:0], first)
	for len(batch) < limit {
		select {
		case ev, ok := <-events:
			if !ok {
				return batch, false
			}
			batch = append(batch, ev)
		default:
			return batch, true
		}
	}
	return batch, true
}

func (a *Archive) recordBatch(batch []marketview.PriceEvent) {
	var err error
	if len(batch) == 1 {
		err = a.RecordSample(context.Background(), batch[0])
	} else {
		err = a.RecordSamples(context.Background(), batch)
	}
	if err != nil {
		a.log.Error("archive samples", zap.Int("samples", len(batch)), zap.Error(err))
	}
}

// AttachPriceEvents archives events from events in a goroutine until the
// channel closes or the archive is closed. Queued events are written in
// batches.
func (a *Archive) AttachPriceEvents(events <-chan marketview.PriceEvent) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		buf := make([]marketview.PriceEvent, 0, sampleBatch)
		for {
			select {
			case <-a.closed:
				return
			case ev, ok := <-events:
				if !ok {
					return
				}
				batch, open := nextBatch(buf, ev, events, sampleBatch)
				a.recordBatch(batch)
				if !open {
					return
				}
			}
		}
	}()
}

func (a *Archive) HealthCheck(ctx context.Context) error {
	return a.pool.Ping(ctx)
}

// Close stops the listeners and closes the pool.
func (a *Archive) Close() {
	a.closeOnce.Do(func() {
		close(a.closed)
	})
	a.wg.Wait()
	a.pool.Close()
}
