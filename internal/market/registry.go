package market

import (
	"slices"

	"github.com/shopspring/decimal"
)

// Instrument is a registry node: one ticker with its current price and history.
type Instrument struct {
	ticker  string
	name    string
	sector  Sector
	price   decimal.Decimal
	history PriceHistory

	left, right *Instrument
}

func (i *Instrument) Ticker() string         { return i.ticker }
func (i *Instrument) Name() string           { return i.name }
func (i *Instrument) Sector() Sector         { return i.sector }
func (i *Instrument) Price() decimal.Decimal { return i.price }

// Samples returns the price history, newest insertion first.
func (i *Instrument) Samples() []PriceSample { return i.history.Samples() }

// RecentSamples returns up to n samples, newest insertion first.
func (i *Instrument) RecentSamples(n int) []PriceSample { return i.history.Recent(n) }

// MovingAverage averages the last window recorded samples.
func (i *Instrument) MovingAverage(window int) decimal.Decimal {
	return i.history.MovingAverage(window)
}

// HistoryLen returns the number of recorded samples.
func (i *Instrument) HistoryLen() int { return i.history.Len() }

// LastSample returns the most recently recorded sample.
func (i *Instrument) LastSample() (PriceSample, bool) { return i.history.Head() }

// record appends a sample and makes it the current price.
func (i *Instrument) record(date string, price decimal.Decimal) {
	i.history.AddSample(date, price)
	i.price = price
}

// Adjustment describes one price change made by a sector adjustment.
type Adjustment struct {
	Ticker string
	Sector Sector
	Date   string
	Old    decimal.Decimal
	New    decimal.Decimal
}

// AdjustmentPercentage maps an impact level to a fractional price change:
// +1% per point above 5, -1% per point below 6.
func AdjustmentPercentage(impact int) decimal.Decimal {
	if impact > 5 {
		return decimal.New(int64(impact-5), -2)
	}
	return decimal.New(-int64(6-impact), -2)
}

// AdjustPrice applies the impact percentage to price, floored at MinPrice.
func AdjustPrice(price decimal.Decimal, impact int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Add(AdjustmentPercentage(impact))
	return decimal.Max(MinPrice, price.Mul(factor))
}

// Registry is an unbalanced binary search tree of instruments keyed by ticker.
// It is not safe for concurrent use.
type Registry struct {
	root *Instrument
	size int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Insert adds an instrument unless the ticker is already present. It reports
// whether a new instrument was created; an existing one is never modified.
func (r *Registry) Insert(ticker, name string, sector Sector, price decimal.Decimal) bool {
	if _, ok := r.Find(ticker); ok {
		return false
	}

	node := &Instrument{ticker: ticker, name: name, sector: sector, price: price}
	r.size++

	if r.root == nil {
		r.root = node
		return true
	}

	cur := r.root
	for {
		if ticker < cur.ticker {
			if cur.left == nil {
				cur.left = node
				return true
			}
			cur = cur.left
		} else {
			if cur.right == nil {
				cur.right = node
				return true
			}
			cur = cur.right
		}
	}
}

// Find looks up an instrument by exact ticker.
func (r *Registry) Find(ticker string) (*Instrument, bool) {
	cur := r.root
	for cur != nil {
		switch {
		case ticker == cur.ticker:
			return cur, true
		case ticker < cur.ticker:
			cur = cur.left
		default:
			cur = cur.right
		}
	}
	return nil, false
}

// AddPrice records a dated closing price for ticker and makes it the current
// price. It reports false when the ticker is unknown.
func (r *Registry) AddPrice(ticker, date string, price decimal.Decimal) bool {
	inst, ok := r.Find(ticker)
	if !ok {
		return false
	}
	inst.record(date, price)
	return true
}

// OrderedList returns every instrument in ascending ticker order. The slice is
// built fresh on each call.
func (r *Registry) OrderedList() []*Instrument {
	out := make([]*Instrument, 0, r.size)
	stack := make([]*Instrument, 0, 16)
	cur := r.root
	for cur != nil || len(stack) > 0 {
		for cur != nil {
			stack = append(stack, cur)
			cur = cur.left
		}
		cur = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		out = append(out, cur)
		cur = cur.right
	}
	return out
}

// SortedByPriceDescending orders instruments by current price, highest first.
// Equal prices keep ascending ticker order.
func (r *Registry) SortedByPriceDescending() []*Instrument {
	list := r.OrderedList()
	slices.SortStableFunc(list, func(a, b *Instrument) int {
		return b.price.Cmp(a.price)
	})
	return list
}

// RangeQuery returns instruments priced within [lo, hi], in ticker order.
func (r *Registry) RangeQuery(lo, hi decimal.Decimal) []*Instrument {
	var out []*Instrument
	for _, inst := range r.OrderedList() {
		if inst.price.Cmp(lo) >= 0 && inst.price.Cmp(hi) <= 0 {
			out = append(out, inst)
		}
	}
	return out
}

// Cheapest returns the lowest priced instrument; ties go to the first ticker.
func (r *Registry) Cheapest() (*Instrument, bool) {
	var best *Instrument
	for _, inst := range r.OrderedList() {
		if best == nil || inst.price.LessThan(best.price) {
			best = inst
		}
	}
	return best, best != nil
}

// MostExpensive returns the highest priced instrument; ties go to the first ticker.
func (r *Registry) MostExpensive() (*Instrument, bool) {
	var best *Instrument
	for _, inst := range r.OrderedList() {
		if best == nil || inst.price.GreaterThan(best.price) {
			best = inst
		}
	}
	return best, best != nil
}

// SectorAverage is the mean current price of the sector's instruments, or
// zero when the sector has none.
func (r *Registry) SectorAverage(sector Sector) decimal.Decimal {
	sum := decimal.Zero
	count := 0
	for _, inst := range r.OrderedList() {
		if inst.sector == sector {
			sum = sum.Add(inst.price)
			count++
		}
	}
	if count == 0 {
		return decimal.Zero
	}
	return sum.Div(decimal.NewFromInt(int64(count)))
}

// ApplySectorAdjustment moves the price of every instrument in sector by the
// impact percentage and records the result as a sample dated date. A sector
// without instruments is a no-op and yields no adjustments.
func (r *Registry) ApplySectorAdjustment(sector Sector, impact int, date string) []Adjustment {
	var out []Adjustment
	for _, inst := range r.OrderedList() {
		if inst.sector != sector {
			continue
		}
		old := inst.price
		inst.record(date, AdjustPrice(old, impact))
		out = append(out, Adjustment{
			Ticker: inst.ticker,
			Sector: sector,
			Date:   date,
			Old:    old,
			New:    inst.price,
		})
	}
	return out
}

// Len returns the number of instruments.
func (r *Registry) Len() int {
	return r.size
}

// Clear releases every instrument and its history.
func (r *Registry) Clear() {
	if r.root == nil {
		return
	}
	stack := []*Instrument{r.root}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n.left != nil {
			stack = append(stack, n.left)
		}
		if n.right != nil {
			stack = append(stack, n.right)
		}
		n.left, n.right = nil, nil
		n.history.clear()
	}
	r.root = nil
	r.size = 0
}

// Records exports every instrument in ticker order with its history oldest first.
func (r *Registry) Records() []Record {
	list := r.OrderedList()
	out := make([]Record, len(list))
	for i, inst := range list {
		samples := inst.Samples()
		slices.Reverse(samples)
		out[i] = Record{
			Listing: Listing{Ticker: inst.ticker, Name: inst.name, Sector: inst.sector, Price: inst.price},
			History: samples,
		}
	}
	return out
}

// Load inserts records and replays their histories. Records whose ticker is
// already present are skipped like any duplicate insert.
func (r *Registry) Load(records []Record) int {
	loaded := 0
	for _, rec := range records {
		if !r.Insert(rec.Ticker, rec.Name, rec.Sector, rec.Price) {
			continue
		}
		inst, _ := r.Find(rec.Ticker)
		for _, s := range rec.History {
			inst.record(s.Date, s.Price)
		}
		loaded++
	}
	return loaded
}
