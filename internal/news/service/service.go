package service

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/engine"
	"github.com/zappabad/stockwire/internal/market"
	"github.com/zappabad/stockwire/internal/news"
	newsview "github.com/zappabad/stockwire/internal/news/view"
	"github.com/zappabad/stockwire/pkg/logger"
	"github.com/zappabad/stockwire/pkg/metrics"
)

var (
	ErrInvalidImpact = errors.New("impact out of range")
	ErrEmptyTitle    = errors.New("empty title")
	ErrFeedEmpty     = errors.New("news feed is empty")
	ErrClosed        = errors.New("news service closed")
)

// NewsService owns the news feed. Publishing an item inserts it into the feed
// and applies its impact to the market through the Adjuster.
type NewsService struct {
	cfg  Config
	log  *zap.Logger
	tape *newsview.Tape
	adj  engine.Adjuster

	mu   sync.Mutex
	feed *news.Feed

	seq atomic.Int64

	internalEvents chan newsview.NewsEvent
	externalEvents chan newsview.NewsEvent
	droppedEvents  atomic.Int64

	closed    chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewNewsService creates a NewsService. adj may be nil, in which case
// publishing moves no prices.
func NewNewsService(cfg Config, adj engine.Adjuster) *NewsService {
	if cfg.TapeCapacity <= 0 {
		cfg.TapeCapacity = DefaultConfig().TapeCapacity
	}
	if cfg.DispatchBuffer <= 0 {
		cfg.DispatchBuffer = DefaultConfig().DispatchBuffer
	}
	if cfg.SubscriberBuffer <= 0 {
		cfg.SubscriberBuffer = DefaultConfig().SubscriberBuffer
	}

	s := &NewsService{
		cfg:            cfg,
		log:            logger.Named("news"),
		tape:           newsview.NewTape(cfg.TapeCapacity),
		adj:            adj,
		feed:           news.NewFeed(),
		internalEvents: make(chan newsview.NewsEvent, cfg.DispatchBuffer),
		externalEvents: make(chan newsview.NewsEvent, cfg.SubscriberBuffer),
		closed:         make(chan struct{}),
	}

	s.wg.Add(1)
	go s.runEventDispatcher()

	return s
}

func (s *NewsService) runEventDispatcher() {
	defer s.wg.Done()
	defer close(s.externalEvents)

	for {
		select {
		case <-s.closed:
			return
		case ev := <-s.internalEvents:
			// Always update tape (authoritative)
			s.tape.Apply(ev)

			if s.cfg.DropSlowSubscriber {
				select {
				case s.externalEvents <- ev:
				default:
					s.droppedEvents.Add(1)
					metrics.RecordDropped("news")
				}
			} else {
				select {
				case s.externalEvents <- ev:
				case <-s.closed:
					return
				}
			}
		}
	}
}

// Validate checks an item against the rules every published item must meet.
func Validate(item news.Item) error {
	if item.Impact < news.MinImpact || item.Impact > news.MaxImpact {
		return fmt.Errorf("%w: %d (want %d-%d)", ErrInvalidImpact, item.Impact, news.MinImpact, news.MaxImpact)
	}
	if strings.TrimSpace(item.Title) == "" {
		return ErrEmptyTitle
	}
	if !item.Sector.Valid() {
		return fmt.Errorf("%w: %s", market.ErrUnknownSector, item.Title)
	}
	return market.CheckDate(item.Date)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidImpact):
		return "impact"
	case errors.Is(err, ErrEmptyTitle):
		return "title"
	case errors.Is(err, market.ErrUnknownSector):
		return "sector"
	case errors.Is(err, market.ErrInvalidDate):
		return "date"
	default:
		return "other"
	}
}

func (s *NewsService) isClosed() bool {
	select {
	case <-s.closed:
		return true
	default:
		return false
	}
}

// Publish validates item, inserts it into the feed and adjusts its sector.
// It returns how many instruments moved.
func (s *NewsService) Publish(item news.Item) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}
	if err := Validate(item); err != nil {
		metrics.RecordRejected(rejectReason(err))
		s.log.Warn("news rejected", zap.String("title", item.Title), zap.Error(err))
		return 0, err
	}

	s.mu.Lock()
	s.feed.Insert(item)
	adjusted := engine.ApplyNews(s.adj, item)
	s.updateGauges()
	s.mu.Unlock()

	metrics.RecordPublished(item.Sector.String())
	s.log.Debug("news published",
		zap.String("title", item.Title),
		zap.Int("impact", item.Impact),
		zap.Stringer("sector", item.Sector),
		zap.Int("adjusted", adjusted),
	)

	ev := newsview.NewsEvent{Seq: s.seq.Add(1), Item: item, Adjusted: adjusted}
	select {
	case s.internalEvents <- ev:
	case <-s.closed:
	}
	return adjusted, nil
}

// updateGauges must be called with mu held.
func (s *NewsService) updateGauges() {
	metrics.FeedSize.Set(float64(s.feed.Len()))
	metrics.SetCrisis(s.feed.CrisisAlert())
}

// Extract removes and returns the head of the feed.
func (s *NewsService) Extract() (news.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.feed.Extract()
	if !ok {
		return news.Item{}, ErrFeedEmpty
	}
	s.updateGauges()
	return item, nil
}

// SortByDate reorders the feed by ascending date.
func (s *NewsService) SortByDate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feed.SortByDate()
	s.log.Debug("feed sorted by date", zap.Int("items", s.feed.Len()))
}

func (s *NewsService) ByDate() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.ByDate()
}

// BySector returns the items of sector in feed order.
func (s *NewsService) BySector(sector market.Sector) []news.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.FindBySector(sector)
}

// ByKeyword returns the items whose title contains keyword.
func (s *NewsService) ByKeyword(keyword string) []news.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.FindByKeyword(keyword)
}

func (s *NewsService) CrisisAlert() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.CrisisAlert()
}

func (s *NewsService) AverageImpact() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.AverageImpact()
}

// Items returns the feed in its current order.
func (s *NewsService) Items() []news.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Items()
}

// Capture calls fn with the feed while holding the feed lock. Publish adjusts
// the market under the same lock, so reads of the market inside fn see exactly
// the adjustments of the items passed in.
func (s *NewsService) Capture(fn func(items []news.Item, byDate bool)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.feed.Items(), s.feed.ByDate())
}

func (s *NewsService) Peek() (news.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Peek()
}

func (s *NewsService) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.feed.Len()
}

// Replace swaps the feed contents for items in exactly the given order without
// touching prices. The tape is cleared.
func (s *NewsService) Replace(items []news.Item, byDate bool) error {
	for _, it := range items {
		if err := Validate(it); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.feed.Reset(items, byDate)
	s.tape.Reset()
	s.updateGauges()
	s.log.Info("feed replaced", zap.Int("items", len(items)), zap.Bool("by_date", byDate))
	return nil
}

// Latest returns the last n published events, oldest first.
func (s *NewsService) Latest(n int) []newsview.NewsEvent {
	return s.tape.Latest(n)
}

// Events returns the external events channel for subscribers.
func (s *NewsService) Events() <-chan newsview.NewsEvent {
	return s.externalEvents
}

// DroppedEvents returns the count of dropped external events.
func (s *NewsService) DroppedEvents() int64 {
	return s.droppedEvents.Load()
}

// Close shuts down the news service.
func (s *NewsService) Close() {
	s.closeOnce.Do(func() {
		close(s.closed)
	})
	s.wg.Wait()
}
