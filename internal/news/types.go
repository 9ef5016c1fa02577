package news

import "github.com/zappabad/stockwire/internal/market"

// Impact bounds. Impact is the feed's priority key.
const (
	MinImpact = 1
	MaxImpact = 10
)

// Item is a news event that can move the prices of one sector.
type Item struct {
	Impact      int           `json:"impact"`
	Title       string        `json:"title"`
	Description string        `json:"description"`
	Sector      market.Sector `json:"sector"`
	Date        string        `json:"date"`
	Positive    bool          `json:"positive"`
}
