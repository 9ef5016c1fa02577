package api

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/desk"
	"github.com/zappabad/stockwire/internal/market"
	marketservice "github.com/zappabad/stockwire/internal/market/service"
	marketview "github.com/zappabad/stockwire/internal/market/view"
	"github.com/zappabad/stockwire/internal/news"
	newsservice "github.com/zappabad/stockwire/internal/news/service"
	newsview "github.com/zappabad/stockwire/internal/news/view"
	"github.com/zappabad/stockwire/internal/storage/cache"
	"github.com/zappabad/stockwire/pkg/logger"
)

const Version = "1.0.0"

// SnapshotStore persists desk snapshots.
type SnapshotStore interface {
	Save(ctx context.Context, snap desk.Snapshot) error
	Load(ctx context.Context) (desk.Snapshot, error)
	HealthCheck(ctx context.Context) error
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Archive reads back what the Postgres archive recorded.
type Archive interface {
	HealthChecker
	RecentNews(ctx context.Context, limit int) ([]newsview.NewsEvent, error)
	Samples(ctx context.Context, ticker string) ([]market.PriceSample, error)
}

type Handler struct {
	desk    *desk.Desk
	store   SnapshotStore
	archive Archive
	window  int
}

// NewHandler creates a Handler. store and archive may be nil.
func NewHandler(d *desk.Desk, store SnapshotStore, archive Archive, window int) *Handler {
	if window <= 0 {
		window = 5
	}
	return &Handler{desk: d, store: store, archive: archive, window: window}
}

// fail maps domain errors to HTTP errors for ErrorHandler.
func fail(err error) error {
	code := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, marketservice.ErrUnknownTicker),
		errors.Is(err, newsservice.ErrFeedEmpty),
		errors.Is(err, cache.ErrNoSnapshot):
		code = fiber.StatusNotFound
	case errors.Is(err, marketservice.ErrInvalidPrice),
		errors.Is(err, marketservice.ErrEmptyTicker),
		errors.Is(err, market.ErrUnknownSector),
		errors.Is(err, market.ErrInvalidDate),
		errors.Is(err, newsservice.ErrInvalidImpact),
		errors.Is(err, newsservice.ErrEmptyTitle):
		code = fiber.StatusBadRequest
	case errors.Is(err, newsservice.ErrClosed):
		code = fiber.StatusServiceUnavailable
	}
	return fiber.NewError(code, err.Error())
}

func decimalQuery(c *fiber.Ctx, key string) (decimal.Decimal, bool, error) {
	raw := c.Query(key)
	if raw == "" {
		return decimal.Zero, false, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, fiber.NewError(fiber.StatusBadRequest, "invalid "+key)
	}
	return d, true, nil
}

func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:    "healthy",
		Version:   Version,
		Timestamp: time.Now(),
	})
}

func (h *Handler) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	services := make(map[string]ServiceHealth)
	check := func(name string, hc HealthChecker) {
		start := time.Now()
		if err := hc.HealthCheck(ctx); err != nil {
			services[name] = ServiceHealth{Status: "unhealthy", Error: err.Error()}
			return
		}
		services[name] = ServiceHealth{Status: "healthy", Latency: time.Since(start).String()}
	}
	if h.store != nil {
		check("redis", h.store)
	}
	if h.archive != nil {
		check("postgres", h.archive)
	}

	status := "ready"
	for _, s := range services {
		if s.Status != "healthy" {
			status = "not_ready"
			break
		}
	}

	response := HealthResponse{
		Status:    status,
		Version:   Version,
		Timestamp: time.Now(),
		Services:  services,
	}
	if status != "ready" {
		return c.Status(fiber.StatusServiceUnavailable).JSON(response)
	}
	return c.JSON(response)
}

func (h *Handler) ListInstruments(c *fiber.Ctx) error {
	lo, hasMin, err := decimalQuery(c, "min")
	if err != nil {
		return err
	}
	hi, hasMax, err := decimalQuery(c, "max")
	if err != nil {
		return err
	}

	mkt := h.desk.Market
	var quotes []marketview.Quote
	switch {
	case hasMin || hasMax:
		if !hasMax {
			hi = decimal.New(1, 18)
		}
		quotes = mkt.QuotesInRange(lo, hi)
	case c.Query("sort") == "price":
		quotes = mkt.QuotesByPrice()
	default:
		quotes = mkt.Quotes()
	}

	return c.JSON(InstrumentListResponse{Data: quotes, Count: len(quotes)})
}

func (h *Handler) CreateInstrument(c *fiber.Ctx) error {
	var l market.Listing
	if err := c.BodyParser(&l); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	created, err := h.desk.Market.Insert(l)
	if err != nil {
		return fail(err)
	}
	q, _ := h.desk.Market.Find(l.Ticker)

	logger.Info("instrument registered",
		zap.String("ticker", l.Ticker),
		zap.Bool("created", created),
		zap.String("request_id", getRequestID(c)))

	status := fiber.StatusCreated
	if !created {
		status = fiber.StatusOK
	}
	return c.Status(status).JSON(CreateInstrumentResponse{Created: created, Quote: q})
}

func (h *Handler) Cheapest(c *fiber.Ctx) error {
	q, ok := h.desk.Market.Cheapest()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no instruments")
	}
	return c.JSON(q)
}

func (h *Handler) MostExpensive(c *fiber.Ctx) error {
	q, ok := h.desk.Market.MostExpensive()
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "no instruments")
	}
	return c.JSON(q)
}

func (h *Handler) GetInstrument(c *fiber.Ctx) error {
	ticker := c.Params("ticker")
	window := c.QueryInt("window", h.window)
	if window <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "window must be positive")
	}

	q, ok := h.desk.Market.Find(ticker)
	if !ok {
		return fail(marketservice.ErrUnknownTicker)
	}
	ma, err := h.desk.Market.MovingAverage(ticker, window)
	if err != nil {
		return fail(err)
	}
	hist, err := h.desk.Market.History(ticker)
	if err != nil {
		return fail(err)
	}

	return c.JSON(InstrumentDetailResponse{
		Quote:         q,
		MovingAverage: ma,
		Window:        window,
		History:       hist,
	})
}

func (h *Handler) AddPrice(c *fiber.Ctx) error {
	// Params alias the request buffer, which fasthttp reuses.
	ticker := utils.CopyString(c.Params("ticker"))

	var req AddPriceRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := h.desk.Market.AddPrice(ticker, req.Date, req.Price); err != nil {
		return fail(err)
	}

	q, _ := h.desk.Market.Find(ticker)
	return c.Status(fiber.StatusCreated).JSON(q)
}

func (h *Handler) GetAdvice(c *fiber.Ctx) error {
	advice, err := h.desk.Advise(c.Params("ticker"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(advice)
}

func (h *Handler) ListSectors(c *fiber.Ctx) error {
	sectors := market.Sectors()
	out := make([]SectorAverageResponse, len(sectors))
	for i, s := range sectors {
		out[i] = SectorAverageResponse{Sector: s, Average: h.desk.Market.SectorAverage(s)}
	}
	return c.JSON(fiber.Map{
		"data":  out,
		"count": len(out),
	})
}

func (h *Handler) SectorAverage(c *fiber.Ctx) error {
	sector, err := market.ParseSector(c.Params("sector"))
	if err != nil {
		return fail(err)
	}
	return c.JSON(SectorAverageResponse{Sector: sector, Average: h.desk.Market.SectorAverage(sector)})
}

func (h *Handler) ListNews(c *fiber.Ctx) error {
	var items []news.Item
	switch {
	case c.Query("sector") != "":
		sector, err := market.ParseSector(c.Query("sector"))
		if err != nil {
			return fail(err)
		}
		items = h.desk.News.BySector(sector)
	case c.Query("q") != "":
		items = h.desk.News.ByKeyword(c.Query("q"))
	default:
		items = h.desk.News.Items()
	}
	if items == nil {
		items = []news.Item{}
	}
	return c.JSON(NewsListResponse{Data: items, Count: len(items), ByDate: h.desk.News.ByDate()})
}

func (h *Handler) PublishNews(c *fiber.Ctx) error {
	var item news.Item
	if err := c.BodyParser(&item); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	adjusted, err := h.desk.Publish(item)
	if err != nil {
		return fail(err)
	}

	logger.Info("news published",
		zap.String("title", item.Title),
		zap.Int("adjusted", adjusted),
		zap.String("request_id", getRequestID(c)))

	return c.Status(fiber.StatusCreated).JSON(PublishResponse{Item: item, Adjusted: adjusted})
}

func (h *Handler) ExtractNews(c *fiber.Ctx) error {
	item, err := h.desk.News.Extract()
	if err != nil {
		return fail(err)
	}
	return c.JSON(item)
}

func (h *Handler) SortNews(c *fiber.Ctx) error {
	h.desk.News.SortByDate()
	items := h.desk.News.Items()
	return c.JSON(NewsListResponse{Data: items, Count: len(items), ByDate: true})
}

func (h *Handler) NewsStats(c *fiber.Ctx) error {
	svc := h.desk.News
	return c.JSON(NewsStatsResponse{
		Count:         svc.Len(),
		AverageImpact: svc.AverageImpact(),
		CrisisAlert:   svc.CrisisAlert(),
		ByDate:        svc.ByDate(),
		Dropped:       svc.DroppedEvents(),
	})
}

func (h *Handler) NewsTape(c *fiber.Ctx) error {
	events := h.desk.News.Latest(c.QueryInt("limit", 20))
	if events == nil {
		events = []newsview.NewsEvent{}
	}
	return c.JSON(fiber.Map{
		"data":  events,
		"count": len(events),
	})
}

func (h *Handler) NewsArchive(c *fiber.Ctx) error {
	if h.archive == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "archive not configured")
	}
	limit := c.QueryInt("limit", 50)
	if limit <= 0 {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be positive")
	}
	events, err := h.archive.RecentNews(c.Context(), limit)
	if err != nil {
		return fail(err)
	}
	if events == nil {
		events = []newsview.NewsEvent{}
	}
	return c.JSON(fiber.Map{
		"data":  events,
		"count": len(events),
	})
}

func (h *Handler) InstrumentArchive(c *fiber.Ctx) error {
	if h.archive == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "archive not configured")
	}
	ticker := c.Params("ticker")
	samples, err := h.archive.Samples(c.Context(), ticker)
	if err != nil {
		return fail(err)
	}
	if samples == nil {
		samples = []market.PriceSample{}
	}
	return c.JSON(fiber.Map{
		"ticker": ticker,
		"data":   samples,
		"count":  len(samples),
	})
}

func (h *Handler) GetSnapshot(c *fiber.Ctx) error {
	return c.JSON(h.desk.Snapshot())
}

func (h *Handler) SaveSnapshot(c *fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "snapshot store not configured")
	}
	snap := h.desk.Snapshot()
	if err := h.store.Save(c.Context(), snap); err != nil {
		return fail(err)
	}
	return c.JSON(SnapshotResponse{Status: "saved", Instruments: len(snap.Instruments), News: len(snap.News)})
}

func (h *Handler) RestoreSnapshot(c *fiber.Ctx) error {
	if h.store == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "snapshot store not configured")
	}
	snap, err := h.store.Load(c.Context())
	if err != nil {
		return fail(err)
	}
	if err := h.desk.Restore(snap); err != nil {
		return fiber.NewError(fiber.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(SnapshotResponse{Status: "restored", Instruments: len(snap.Instruments), News: len(snap.News)})
}
