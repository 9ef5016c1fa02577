package engine

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/zappabad/stockwire/internal/news"
	"github.com/zappabad/stockwire/pkg/logger"
)

// Publisher accepts news items. The desk and the news service implement it.
type Publisher interface {
	Publish(item news.Item) (int, error)
}

// Simulation replays a scripted list of news items, one per step.
type Simulation struct {
	pub    Publisher
	script []news.Item
	next   int
	log    *zap.Logger

	TickCount int
}

// NewSimulation wires a script to a publisher. The script is copied.
func NewSimulation(pub Publisher, script []news.Item) *Simulation {
	return &Simulation{
		pub:    pub,
		script: append([]news.Item(nil), script...),
		log:    logger.Named("simulation"),
	}
}

// Step publishes the next scripted item. It reports false once the script is
// exhausted. A rejected item still consumes its step.
func (s *Simulation) Step() (news.Item, bool, error) {
	if s.next >= len(s.script) {
		return news.Item{}, false, nil
	}
	item := s.script[s.next]
	s.next++
	s.TickCount++

	adjusted, err := s.pub.Publish(item)
	if err != nil {
		s.log.Warn("scripted item rejected", zap.Int("tick", s.TickCount), zap.String("title", item.Title), zap.Error(err))
		return item, true, err
	}
	s.log.Debug("tick",
		zap.Int("tick", s.TickCount),
		zap.String("title", item.Title),
		zap.Int("adjusted", adjusted),
	)
	return item, true, nil
}

// Remaining returns the number of unpublished items.
func (s *Simulation) Remaining() int {
	return len(s.script) - s.next
}

// Run steps every interval until the script is exhausted or ctx is done.
// It returns ctx.Err() on cancellation and nil on exhaustion.
func (s *Simulation) Run(ctx context.Context, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for s.Remaining() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Step()
		}
	}
	s.log.Info("script exhausted", zap.Int("ticks", s.TickCount))
	return nil
}
