package news

import (
	"testing"

	"github.com/zappabad/stockwire/internal/market"
)

func impacts(items []Item) []int {
	out := make([]int, len(items))
	for i, it := range items {
		out[i] = it.Impact
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestFeedInsertOrder(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 5, Title: "five"})
	f.Insert(Item{Impact: 9, Title: "nine-a"})
	f.Insert(Item{Impact: 9, Title: "nine-b"})
	f.Insert(Item{Impact: 3, Title: "three"})

	items := f.Items()
	if got, want := impacts(items), []int{9, 9, 5, 3}; !equalInts(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if items[0].Title != "nine-a" || items[1].Title != "nine-b" {
		t.Errorf("expected equal impacts in insertion order, got %s, %s", items[0].Title, items[1].Title)
	}
	if f.Len() != 4 {
		t.Errorf("expected 4 items, got %d", f.Len())
	}
}

func TestFeedInsertEqualToHeadGoesAfter(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 7, Title: "first"})
	f.Insert(Item{Impact: 7, Title: "second"})
	f.Insert(Item{Impact: 2, Title: "low"})
	f.Insert(Item{Impact: 7, Title: "third"})

	items := f.Items()
	want := []string{"first", "second", "third", "low"}
	for i, title := range want {
		if items[i].Title != title {
			t.Errorf("position %d: expected %s, got %s", i, title, items[i].Title)
		}
	}
}

func TestFeedExtractDrains(t *testing.T) {
	f := NewFeed()
	for _, imp := range []int{4, 10, 1, 7, 7, 2, 9} {
		f.Insert(Item{Impact: imp})
	}

	prev := MaxImpact + 1
	count := 0
	for {
		it, ok := f.Extract()
		if !ok {
			break
		}
		if it.Impact > prev {
			t.Errorf("impact increased from %d to %d", prev, it.Impact)
		}
		prev = it.Impact
		count++
	}
	if count != 7 {
		t.Errorf("expected 7 extractions, got %d", count)
	}
	if !f.Empty() || f.Len() != 0 {
		t.Error("expected feed to be empty")
	}
	if _, ok := f.Extract(); ok {
		t.Error("expected extract on empty feed to fail")
	}
}

func TestFeedSortByDate(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 3, Title: "a", Date: "2025-05-03"})
	f.Insert(Item{Impact: 9, Title: "b", Date: "2025-05-10"})
	f.Insert(Item{Impact: 6, Title: "c", Date: "2025-05-01"})
	f.Insert(Item{Impact: 5, Title: "d", Date: "2025-05-03"})

	f.SortByDate()
	if !f.ByDate() {
		t.Error("expected ByDate after sort")
	}

	first := f.Items()
	for i := 1; i < len(first); i++ {
		if first[i-1].Date > first[i].Date {
			t.Errorf("dates out of order at %d: %s > %s", i, first[i-1].Date, first[i].Date)
		}
	}
	// Impact order was b, c, d, a; equal dates keep it.
	if first[1].Title != "d" || first[2].Title != "a" {
		t.Errorf("expected d before a on equal dates, got %s, %s", first[1].Title, first[2].Title)
	}

	f.SortByDate()
	second := f.Items()
	for i := range first {
		if first[i].Title != second[i].Title {
			t.Errorf("second sort changed order at %d: %s vs %s", i, first[i].Title, second[i].Title)
		}
	}
}

func TestFeedByDateResetsWhenDrained(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 1, Date: "2025-05-01"})
	f.SortByDate()
	f.Extract()
	if f.ByDate() {
		t.Error("expected ByDate to reset on an empty feed")
	}
}

func TestFeedFind(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 8, Title: "Oil rises", Sector: market.SectorEnergy})
	f.Insert(Item{Impact: 4, Title: "New tax", Sector: market.SectorFinance})
	f.Insert(Item{Impact: 6, Title: "Oil supply shock", Sector: market.SectorEnergy})

	energy := f.FindBySector(market.SectorEnergy)
	if len(energy) != 2 || energy[0].Title != "Oil rises" || energy[1].Title != "Oil supply shock" {
		t.Errorf("unexpected sector matches: %+v", energy)
	}
	if got := f.FindBySector(market.SectorHealth); len(got) != 0 {
		t.Errorf("expected no health news, got %d", len(got))
	}

	if got := f.FindByKeyword("Oil"); len(got) != 2 {
		t.Errorf("expected 2 keyword matches, got %d", len(got))
	}
	if got := f.FindByKeyword("oil"); len(got) != 0 {
		t.Errorf("expected case-sensitive match to miss, got %d", len(got))
	}
}

func TestFeedCrisisAlert(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 8})
	f.Insert(Item{Impact: 2})
	f.Insert(Item{Impact: 10})
	if f.CrisisAlert() {
		t.Error("expected no alert with 2 severe items")
	}

	f.Insert(Item{Impact: 9})
	if !f.CrisisAlert() {
		t.Error("expected alert with 3 severe items")
	}

	// Order does not matter.
	f.SortByDate()
	if !f.CrisisAlert() {
		t.Error("expected alert after reordering")
	}
}

func TestFeedAverageImpact(t *testing.T) {
	f := NewFeed()
	if avg := f.AverageImpact(); avg != 0 {
		t.Errorf("expected 0 on empty feed, got %v", avg)
	}
	f.Insert(Item{Impact: 2})
	f.Insert(Item{Impact: 3})
	f.Insert(Item{Impact: 7})
	if avg := f.AverageImpact(); avg != 4 {
		t.Errorf("expected 4, got %v", avg)
	}
}

func TestFeedReset(t *testing.T) {
	f := NewFeed()
	f.Insert(Item{Impact: 1})

	f.Reset([]Item{{Impact: 2, Title: "x"}, {Impact: 9, Title: "y"}}, true)
	items := f.Items()
	if len(items) != 2 || items[0].Title != "x" || items[1].Title != "y" {
		t.Errorf("expected exact order [x y], got %+v", items)
	}
	if !f.ByDate() {
		t.Error("expected ByDate to be restored")
	}
	if head, ok := f.Peek(); !ok || head.Title != "x" {
		t.Errorf("expected head x, got %+v", head)
	}
}
