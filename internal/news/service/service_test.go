package service

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/market"
	marketservice "github.com/zappabad/stockwire/internal/market/service"
	"github.com/zappabad/stockwire/internal/news"
)

func item(impact int, title string, sector market.Sector, date string) news.Item {
	return news.Item{Impact: impact, Title: title, Sector: sector, Date: date}
}

func TestNewsServicePublish(t *testing.T) {
	svc := NewNewsService(DefaultConfig(), nil)
	defer svc.Close()

	for _, it := range []news.Item{
		item(5, "five", market.SectorEnergy, "2025-05-03"),
		item(9, "nine-a", market.SectorFinance, "2025-05-01"),
		item(9, "nine-b", market.SectorHealth, "2025-05-02"),
		item(3, "three", market.SectorEnergy, "2025-05-04"),
	} {
		if _, err := svc.Publish(it); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	items := svc.Items()
	want := []string{"nine-a", "nine-b", "five", "three"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("position %d: expected %s, got %s", i, title, items[i].Title)
		}
	}

	// Wait for dispatcher
	time.Sleep(20 * time.Millisecond)

	latest := svc.Latest(10)
	if len(latest) != 4 || latest[0].Item.Title != "five" || latest[3].Item.Title != "three" {
		t.Errorf("expected tape in publish order, got %+v", latest)
	}
	if latest[0].Seq >= latest[1].Seq {
		t.Errorf("expected increasing sequence numbers, got %d, %d", latest[0].Seq, latest[1].Seq)
	}
}

func TestNewsServiceValidation(t *testing.T) {
	svc := NewNewsService(DefaultConfig(), nil)
	defer svc.Close()

	cases := []struct {
		item news.Item
		want error
	}{
		{item(0, "t", market.SectorEnergy, "2025-05-01"), ErrInvalidImpact},
		{item(11, "t", market.SectorEnergy, "2025-05-01"), ErrInvalidImpact},
		{item(5, "  ", market.SectorEnergy, "2025-05-01"), ErrEmptyTitle},
		{item(5, "t", market.SectorUnknown, "2025-05-01"), market.ErrUnknownSector},
		{item(5, "t", market.SectorEnergy, "May 1"), market.ErrInvalidDate},
	}
	for _, tc := range cases {
		if _, err := svc.Publish(tc.item); !errors.Is(err, tc.want) {
			t.Errorf("Publish(%+v): expected %v, got %v", tc.item, tc.want, err)
		}
	}
	if svc.Len() != 0 {
		t.Errorf("expected rejected items to stay out of the feed, got %d", svc.Len())
	}
}

func TestNewsServiceAdjustsMarket(t *testing.T) {
	mkt := marketservice.NewMarketService([]market.Listing{
		{Ticker: "AAPL", Name: "Apple", Sector: market.SectorTechnology, Price: decimal.NewFromInt(175)},
		{Ticker: "JPM", Name: "JPMorgan", Sector: market.SectorFinance, Price: decimal.NewFromInt(190)},
	}, marketservice.DefaultConfig())
	defer mkt.Close()

	svc := NewNewsService(DefaultConfig(), mkt)
	defer svc.Close()

	n, err := svc.Publish(item(10, "Chip breakthrough", market.SectorTechnology, "2025-05-02"))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 adjusted, got %d (%v)", n, err)
	}
	q, _ := mkt.Find("AAPL")
	if !q.Price.Equal(decimal.RequireFromString("183.75")) || q.LastDate != "2025-05-02" {
		t.Errorf("unexpected AAPL quote: %+v", q)
	}

	// Sector without instruments still enters the feed.
	n, err = svc.Publish(item(2, "Drug recall", market.SectorHealth, "2025-05-03"))
	if err != nil || n != 0 {
		t.Errorf("expected 0 adjusted, got %d (%v)", n, err)
	}
	if svc.Len() != 2 {
		t.Errorf("expected 2 items, got %d", svc.Len())
	}
}

func TestNewsServiceExtractAndSort(t *testing.T) {
	svc := NewNewsService(DefaultConfig(), nil)
	defer svc.Close()

	if _, err := svc.Extract(); !errors.Is(err, ErrFeedEmpty) {
		t.Errorf("expected ErrFeedEmpty, got %v", err)
	}

	svc.Publish(item(3, "a", market.SectorEnergy, "2025-05-03"))
	svc.Publish(item(9, "b", market.SectorEnergy, "2025-05-10"))
	svc.Publish(item(6, "c", market.SectorEnergy, "2025-05-01"))

	svc.SortByDate()
	if !svc.ByDate() {
		t.Error("expected ByDate after sort")
	}
	head, _ := svc.Peek()
	if head.Title != "c" {
		t.Errorf("expected c first by date, got %s", head.Title)
	}

	for i := 0; i < 3; i++ {
		if _, err := svc.Extract(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if svc.ByDate() {
		t.Error("expected ByDate to reset once drained")
	}
}

func TestNewsServiceQueries(t *testing.T) {
	svc := NewNewsService(DefaultConfig(), nil)
	defer svc.Close()

	svc.Publish(item(8, "Oil rises", market.SectorEnergy, "2025-05-01"))
	svc.Publish(item(9, "Oil supply shock", market.SectorEnergy, "2025-05-02"))
	svc.Publish(item(10, "Bank run", market.SectorFinance, "2025-05-03"))
	svc.Publish(item(1, "Quiet day", market.SectorHealth, "2025-05-04"))

	if got := svc.BySector(market.SectorEnergy); len(got) != 2 {
		t.Errorf("expected 2 energy items, got %d", len(got))
	}
	if got := svc.ByKeyword("Oil"); len(got) != 2 {
		t.Errorf("expected 2 keyword matches, got %d", len(got))
	}
	if !svc.CrisisAlert() {
		t.Error("expected crisis alert")
	}
	if avg := svc.AverageImpact(); avg != 7 {
		t.Errorf("expected average 7, got %v", avg)
	}
}

func TestNewsServiceReplace(t *testing.T) {
	svc := NewNewsService(DefaultConfig(), nil)
	defer svc.Close()

	svc.Publish(item(5, "old", market.SectorEnergy, "2025-05-01"))

	items := []news.Item{
		item(2, "x", market.SectorEnergy, "2025-05-01"),
		item(9, "y", market.SectorEnergy, "2025-05-02"),
	}
	if err := svc.Replace(items, true); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := svc.Items()
	if len(got) != 2 || got[0].Title != "x" || !svc.ByDate() {
		t.Errorf("expected exact restore, got %+v", got)
	}

	bad := []news.Item{item(0, "z", market.SectorEnergy, "2025-05-01")}
	if err := svc.Replace(bad, false); !errors.Is(err, ErrInvalidImpact) {
		t.Errorf("expected ErrInvalidImpact, got %v", err)
	}
	if svc.Len() != 2 {
		t.Errorf("expected failed replace to keep feed, got %d", svc.Len())
	}
}

func TestNewsServiceClose(t *testing.T) {
	svc := NewNewsService(DefaultConfig(), nil)
	svc.Close()
	svc.Close()

	if _, err := svc.Publish(item(5, "late", market.SectorEnergy, "2025-05-01")); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, ok := <-svc.Events(); ok {
		t.Error("expected closed events channel")
	}
}
