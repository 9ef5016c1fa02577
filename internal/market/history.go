package market

import "github.com/shopspring/decimal"

type sampleNode struct {
	sample PriceSample
	next   *sampleNode
}

// PriceHistory is a newest-first list of price samples. Insertion is always at
// the head; date order is the caller's responsibility.
type PriceHistory struct {
	head *sampleNode
	size int
}

// AddSample prepends a sample.
func (h *PriceHistory) AddSample(date string, price decimal.Decimal) {
	h.head = &sampleNode{
		sample: PriceSample{Date: date, Price: price},
		next:   h.head,
	}
	h.size++
}

// MovingAverage averages at most window samples starting from the most recently
// added one. It returns zero for an empty history or a non-positive window.
func (h *PriceHistory) MovingAverage(window int) decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for n := h.head; n != nil && count < window; n = n.next {
		sum = sum.Add(n.sample.Price)
		count++
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// Samples returns a copy of the history, newest insertion first.
func (h *PriceHistory) Samples() []PriceSample {
	out := make([]PriceSample, 0, h.size)
	for n := h.head; n != nil; n = n.next {
		out = append(out, n.sample)
	}
	return out
}

// Recent returns up to n samples, newest insertion first.
func (h *PriceHistory) Recent(n int) []PriceSample {
	if n <= 0 {
		return nil
	}
	out := make([]PriceSample, 0, min(n, h.size))
	for node := h.head; node != nil && len(out) < n; node = node.next {
		out = append(out, node.sample)
	}
	return out
}

// Head returns the most recently added sample.
func (h *PriceHistory) Head() (PriceSample, bool) {
	if h.head == nil {
		return PriceSample{}, false
	}
	return h.head.sample, true
}

// Len returns the number of samples.
func (h *PriceHistory) Len() int {
	return h.size
}

// clear unlinks every node so nothing outlives the history.
func (h *PriceHistory) clear() {
	for n := h.head; n != nil; {
		next := n.next
		n.next = nil
		n = next
	}
	h.head = nil
	h.size = 0
}
