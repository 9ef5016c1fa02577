package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	NewsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockwire_news_published_total",
		Help: "Total number of news items published",
	}, []string{"sector"})

	NewsRejected = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockwire_news_rejected_total",
		Help: "Total number of news items rejected by validation",
	}, []string{"reason"})

	SectorAdjustments = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockwire_sector_adjustments_total",
		Help: "Total number of sector adjustments applied",
	}, []string{"sector"})

	InstrumentsAdjusted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockwire_instruments_adjusted_total",
		Help: "Total number of instrument prices moved by news",
	})

	PriceSamples = promauto.NewCounter(prometheus.CounterOpts{
		Name: "stockwire_price_samples_total",
		Help: "Total number of price samples recorded",
	})

	RegistrySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockwire_registry_instruments",
		Help: "Number of instruments in the registry",
	})

	FeedSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockwire_feed_items",
		Help: "Number of items currently in the news feed",
	})

	CrisisAlert = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "stockwire_crisis_alert",
		Help: "1 while the news feed is in crisis, 0 otherwise",
	})

	DroppedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockwire_dropped_events_total",
		Help: "Events dropped because a subscriber was slow",
	}, []string{"stream"})

	StorageOperations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "stockwire_storage_operations_total",
		Help: "Total number of storage operations",
	}, []string{"backend", "operation", "status"})

	StorageDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "stockwire_storage_duration_seconds",
		Help:    "Duration of storage operations",
		Buckets: prometheus.DefBuckets,
	}, []string{"backend", "operation"})
)

func RecordPublished(sector string) {
	NewsPublished.WithLabelValues(sector).Inc()
}

func RecordRejected(reason string) {
	NewsRejected.WithLabelValues(reason).Inc()
}

func RecordAdjustment(sector string, instruments int) {
	SectorAdjustments.WithLabelValues(sector).Inc()
	InstrumentsAdjusted.Add(float64(instruments))
	PriceSamples.Add(float64(instruments))
}

func RecordDropped(stream string) {
	DroppedEvents.WithLabelValues(stream).Inc()
}

func SetCrisis(active bool) {
	if active {
		CrisisAlert.Set(1)
		return
	}
	CrisisAlert.Set(0)
}

func RecordStorage(backend, operation string, err error, duration time.Duration) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	StorageOperations.WithLabelValues(backend, operation, status).Inc()
	StorageDuration.WithLabelValues(backend, operation).Observe(duration.Seconds())
}

type Timer struct {
	start time.Time
}

func NewTimer() *Timer {
	return &Timer{
		start: time.Now(),
	}
}

func (t *Timer) Elapsed() time.Duration {
	return time.Since(t.start)
}
