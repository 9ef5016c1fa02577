package cache

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/config"
	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

func newTestStore(t *testing.T) *SnapshotStore {
	t.Helper()
	url := os.Getenv("REDIS_URL")
	if url == "" {
		t.Skip("REDIS_URL not set")
	}
	cfg := &config.Config{
		RedisURL:    url,
		SnapshotKey: fmt.Sprintf("stockwire:test:%d", time.Now().UnixNano()),
		SnapshotTTL: time.Minute,
	}
	store, err := NewSnapshotStore(cfg)
	if err != nil {
		t.Skipf("redis unavailable: %v", err)
	}
	t.Cleanup(func() {
		store.Delete(context.Background())
		store.Close()
	})
	return store
}

func TestSnapshotStoreRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if _, err := store.Load(ctx); !errors.Is(err, ErrNoSnapshot) {
		t.Fatalf("expected ErrNoSnapshot, got %v", err)
	}

	snap := desk.Snapshot{
		Version: desk.SnapshotVersion,
		Instruments: []market.Record{{
			Listing: market.Listing{Ticker: "KO", Name: "Coca-Cola", Sector: market.SectorConsumer, Price: decimal.RequireFromString("60.5")},
			History: []market.PriceSample{{Date: "2025-05-01", Price: decimal.RequireFromString("60.5")}},
		}},
		News:   []news.Item{{Impact: 7, Title: "Sales up", Sector: market.SectorConsumer, Date: "2025-05-01", Positive: true}},
		ByDate: true,
	}
	if err := store.Save(ctx, snap); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got.Instruments) != 1 || got.Instruments[0].Sector != market.SectorConsumer {
		t.Errorf("unexpected instruments: %+v", got.Instruments)
	}
	if !got.Instruments[0].Price.Equal(decimal.RequireFromString("60.5")) {
		t.Errorf("expected price 60.5, got %s", got.Instruments[0].Price)
	}
	if len(got.News) != 1 || !got.ByDate || !got.News[0].Positive {
		t.Errorf("unexpected news: %+v", got)
	}
}

func TestNewSnapshotStoreBadURL(t *testing.T) {
	if _, err := NewSnapshotStore(&config.Config{RedisURL: "not-a-url"}); err == nil {
		t.Error("expected parse error")
	}
}
