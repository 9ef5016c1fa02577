package engine

import (
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
)

// Adjuster moves the prices of a sector. The market service implements it.
type Adjuster interface {
	ApplySectorAdjustment(sector market.Sector, impact int, date string) int
}

// ApplyNews applies item's impact to every instrument of its sector, recording
// the new prices under the item's date. It returns how many instruments moved.
func ApplyNews(a Adjuster, item news.Item) int {
	if a == nil {
		return 0
	}
	return a.ApplySectorAdjustment(item.Sector, item.Impact, item.Date)
}
