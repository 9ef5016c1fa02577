package news

import (
	"slices"
	"strings"

	"github.com/zappabad/stockwire/internal/market"
)

// Crisis thresholds: CrisisCount items at CrisisImpact or above raise the alert.
const (
	CrisisImpact = 8
	CrisisCount  = 3
)

type node struct {
	item Item
	next *node
}

// Feed is a singly linked priority list of news items. After inserts it is
// ordered by descending impact, first-in first among equal impacts. SortByDate
// replaces that order with ascending date order until the feed is rebuilt.
// It is not safe for concurrent use.
type Feed struct {
	head   *node
	size   int
	byDate bool
}

// NewFeed creates an empty Feed.
func NewFeed() *Feed {
	return &Feed{}
}

// Insert places item after every existing item with an equal or higher impact.
func (f *Feed) Insert(item Item) {
	n := &node{item: item}
	f.size++

	if f.head == nil || item.Impact > f.head.item.Impact {
		n.next = f.head
		f.head = n
		return
	}

	cur := f.head
	for cur.next != nil && cur.next.item.Impact >= item.Impact {
		cur = cur.next
	}
	n.next = cur.next
	cur.next = n
}

// Extract removes and returns the head item.
func (f *Feed) Extract() (Item, bool) {
	if f.head == nil {
		return Item{}, false
	}
	n := f.head
	f.head = n.next
	n.next = nil
	f.size--
	if f.head == nil {
		f.byDate = false
	}
	return n.item, true
}

// SortByDate reorders the feed by ascending date. Items sharing a date keep
// their relative order, so sorting twice changes nothing.
func (f *Feed) SortByDate() {
	if f.head == nil {
		return
	}
	nodes := make([]*node, 0, f.size)
	for n := f.head; n != nil; n = n.next {
		nodes = append(nodes, n)
	}
	slices.SortStableFunc(nodes, func(a, b *node) int {
		return strings.Compare(a.item.Date, b.item.Date)
	})
	for i := 0; i < len(nodes)-1; i++ {
		nodes[i].next = nodes[i+1]
	}
	nodes[len(nodes)-1].next = nil
	f.head = nodes[0]
	f.byDate = true
}

// ByDate reports whether the last reordering was SortByDate. Inserts made
// afterwards still splice by impact.
func (f *Feed) ByDate() bool {
	return f.byDate
}

// FindBySector returns the items affecting sector, in feed order.
func (f *Feed) FindBySector(sector market.Sector) []Item {
	var out []Item
	for n := f.head; n != nil; n = n.next {
		if n.item.Sector == sector {
			out = append(out, n.item)
		}
	}
	return out
}

// FindByKeyword returns the items whose title contains keyword (case-sensitive).
func (f *Feed) FindByKeyword(keyword string) []Item {
	var out []Item
	for n := f.head; n != nil; n = n.next {
		if strings.Contains(n.item.Title, keyword) {
			out = append(out, n.item)
		}
	}
	return out
}

// CrisisAlert reports whether at least CrisisCount items have impact >= CrisisImpact.
func (f *Feed) CrisisAlert() bool {
	count := 0
	for n := f.head; n != nil; n = n.next {
		if n.item.Impact >= CrisisImpact {
			count++
			if count >= CrisisCount {
				return true
			}
		}
	}
	return false
}

// AverageImpact is the mean impact of all items, or 0 for an empty feed.
func (f *Feed) AverageImpact() float64 {
	if f.size == 0 {
		return 0
	}
	sum := 0
	for n := f.head; n != nil; n = n.next {
		sum += n.item.Impact
	}
	return float64(sum) / float64(f.size)
}

// Items returns a copy of the feed in its current order.
func (f *Feed) Items() []Item {
	out := make([]Item, 0, f.size)
	for n := f.head; n != nil; n = n.next {
		out = append(out, n.item)
	}
	return out
}

// Peek returns the head item without removing it.
func (f *Feed) Peek() (Item, bool) {
	if f.head == nil {
		return Item{}, false
	}
	return f.head.item, true
}

func (f *Feed) Len() int    { return f.size }
func (f *Feed) Empty() bool { return f.head == nil }

// Reset replaces the feed contents with items in exactly the given order. It is
// meant for restoring a previously captured feed.
func (f *Feed) Reset(items []Item, byDate bool) {
	f.Clear()
	var tail *node
	for _, it := range items {
		n := &node{item: it}
		if tail == nil {
			f.head = n
		} else {
			tail.next = n
		}
		tail = n
		f.size++
	}
	f.byDate = byDate && f.head != nil
}

// Clear drops every item.
func (f *Feed) Clear() {
	for f.head != nil {
		f.Extract()
	}
	f.byDate = false
}
