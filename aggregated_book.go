package book

import (
	"sync/atomic"

	"github.com/igrmk/treemap/v2"
	"github.com/shopspring/decimal"
)

// AggregatedBook maintains a simplified view of the order book, tracking only
// price levels and their aggregated sizes. It is designed for downstream
// consumers that rebuild depth from the Sequencer's BookEvent stream.
//
// Unlike the matching core, which retains emptied Limits forever, this view
// drops a level as soon as its size reaches zero: it answers depth queries,
// not tree-shape ones.
type AggregatedBook struct {
	seqID atomic.Uint64 // last applied Sequence, for gap detection
	bid   *treemap.TreeMap[decimal.Decimal, decimal.Decimal]
	ask   *treemap.TreeMap[decimal.Decimal, decimal.Decimal]
}

// NewAggregatedBook creates an AggregatedBook with empty bid and ask sides.
func NewAggregatedBook() *AggregatedBook {
	return &AggregatedBook{
		bid: treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](func(a, b decimal.Decimal) bool {
			return a.LessThan(b)
		}),
		ask: treemap.NewWithKeyCompare[decimal.Decimal, decimal.Decimal](func(a, b decimal.Decimal) bool {
			return a.LessThan(b)
		}),
	}
}

// SequenceID returns the last applied sequence ID.
func (ab *AggregatedBook) SequenceID() uint64 {
	return ab.seqID.Load()
}

// Rebuild resets the view to empty and positions it after the given sequence,
// so replay can resume mid-stream (e.g. from a snapshot boundary).
func (ab *AggregatedBook) Rebuild(seq uint64) {
	ab.bid.Clear()
	ab.ask.Clear()
	ab.seqID.Store(seq)
}

// Replay applies one BookEvent. Events must arrive in sequence order; a
// non-contiguous sequence reports ErrSequenceGap and leaves the view
// untouched. Reject events change nothing but still advance the sequence.
func (ab *AggregatedBook) Replay(ev *BookEvent) error {
	if ev.Sequence != ab.seqID.Load()+1 {
		return ErrSequenceGap
	}

	for _, ch := range DepthChangesFor(ev) {
		ab.apply(ch)
	}

	ab.seqID.Store(ev.Sequence)
	return nil
}

func (ab *AggregatedBook) apply(ch DepthChange) {
	side := ab.bid
	if ch.Side == Sell {
		side = ab.ask
	}

	size, ok := side.Get(ch.Price)
	if !ok {
		size = decimal.Zero
	}
	size = size.Add(ch.SizeDiff)

	if size.Sign() <= 0 {
		side.Del(ch.Price)
		return
	}
	side.Set(ch.Price, size)
}

// Size returns the aggregated size at a price level, or zero if the level
// does not exist.
func (ab *AggregatedBook) Size(side Side, price decimal.Decimal) decimal.Decimal {
	tm := ab.bid
	if side == Sell {
		tm = ab.ask
	}
	size, ok := tm.Get(price)
	if !ok {
		return decimal.Zero
	}
	return size
}

// Levels returns the number of non-empty price levels on a side.
func (ab *AggregatedBook) Levels(side Side) int {
	if side == Sell {
		return ab.ask.Len()
	}
	return ab.bid.Len()
}

// Depth returns up to limit levels, best price first: bids descending, asks
// ascending.
func (ab *AggregatedBook) Depth(side Side, limit int) []*DepthItem {
	result := make([]*DepthItem, 0, limit)

	if side == Buy {
		for it := ab.bid.Reverse(); it.Valid() && len(result) < limit; it.Next() {
			result = append(result, &DepthItem{Price: it.Key(), Size: it.Value()})
		}
		return result
	}

	for it := ab.ask.Iterator(); it.Valid() && len(result) < limit; it.Next() {
		result = append(result, &DepthItem{Price: it.Key(), Size: it.Value()})
	}
	return result
}
