package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/zappabad/stockwire/internal/market"
	marketview "github.com/zappabad/stockwire/internal/market/view"
	"github.com/zappabad/stockwire/internal/news"
)

type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      int       `json:"code"`
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type HealthResponse struct {
	Status    string                   `json:"status"`
	Version   string                   `json:"version"`
	Timestamp time.Time                `json:"timestamp"`
	Services  map[string]ServiceHealth `json:"services,omitempty"`
}

type ServiceHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Error   string `json:"error,omitempty"`
}

type InstrumentListResponse struct {
	Data  []marketview.Quote `json:"data"`
	Count int                `json:"count"`
}

type InstrumentDetailResponse struct {
	marketview.Quote
	MovingAverage decimal.Decimal      `json:"moving_average"`
	Window        int                  `json:"window"`
	History       []market.PriceSample `json:"history"`
}

type CreateInstrumentResponse struct {
	Created bool             `json:"created"`
	Quote   marketview.Quote `json:"quote"`
}

type AddPriceRequest struct {
	Date  string          `json:"date"`
	Price decimal.Decimal `json:"price"`
}

type SectorAverageResponse struct {
	Sector  market.Sector   `json:"sector"`
	Average decimal.Decimal `json:"average"`
}

type NewsListResponse struct {
	Data   []news.Item `json:"data"`
	Count  int         `json:"count"`
	ByDate bool        `json:"by_date"`
}

type PublishResponse struct {
	Item     news.Item `json:"item"`
	Adjusted int       `json:"adjusted"`
}

type NewsStatsResponse struct {
	Count         int     `json:"count"`
	AverageImpact float64 `json:"average_impact"`
	CrisisAlert   bool    `json:"crisis_alert"`
	ByDate        bool    `json:"by_date"`
	Dropped       int64   `json:"dropped_events"`
}

type SnapshotResponse struct {
	Status      string `json:"status"`
	Instruments int    `json:"instruments"`
	News        int    `json:"news"`
}
