package view

import (
	"sync"

	"github.com/zappabad/stockwire/internal/news"
)

// NewsEvent announces a published item and how many instruments it moved.
type NewsEvent struct {
	Seq      int64     `json:"seq"`
	Item     news.Item `json:"item"`
	Adjusted int       `json:"adjusted"`
}

// Tape is a bounded ring buffer of published items in publish order,
// independent of the feed's priority order.
type Tape struct {
	mu    sync.RWMutex
	buf   []NewsEvent
	size  int
	start int
	count int
}

// NewTape creates a Tape with the given capacity.
func NewTape(capacity int) *Tape {
	if capacity <= 0 {
		capacity = 100
	}
	return &Tape{
		buf:  make([]NewsEvent, capacity),
		size: capacity,
	}
}

// Apply appends an event, overwriting the oldest when full.
func (t *Tape) Apply(ev NewsEvent) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.count < t.size {
		t.buf[(t.start+t.count)%t.size] = ev
		t.count++
		return
	}
	// overwrite oldest
	t.buf[t.start] = ev
	t.start = (t.start + 1) % t.size
}

// Latest returns the last n events, oldest first.
func (t *Tape) Latest(n int) []NewsEvent {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if n <= 0 || t.count == 0 {
		return nil
	}
	if n > t.count {
		n = t.count
	}

	out := make([]NewsEvent, n)
	first := (t.start + (t.count - n)) % t.size
	for i := 0; i < n; i++ {
		out[i] = t.buf[(first+i)%t.size]
	}
	return out
}

// Count returns the number of events held.
func (t *Tape) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.count
}

// Reset drops every event.
func (t *Tape) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start, t.count = 0, 0
	clear(t.buf)
}
