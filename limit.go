package book

import (
	"github.com/shopspring/decimal"
)

// Limit is one price level on one side of the book. It plays two roles at
// once: a node in the side's AVL tree keyed by price (limit_tree.go) and the
// head of the FIFO queue of orders resting at that price.
//
// A Limit is created on the first order at its price and is never removed from
// the tree, even after its queue empties. Under sustained two-sided flow an
// emptied level is expected to refill, so removal is deferred forever. Tests
// assert this retention rather than rely on tree shrinkage.
type Limit struct {
	price decimal.Decimal
	side  Side

	// Queue aggregates. totalVolume always equals the sum of the queued
	// orders' remaining quantities.
	size        int
	totalVolume decimal.Decimal

	// Tree links. height follows the AVL convention: -1 for a nil child,
	// 0 for a leaf.
	parent     *Limit
	leftChild  *Limit
	rightChild *Limit
	height     int

	// Queue ends.
	headOrder *Order
	tailOrder *Order

	// Rotations need the book to repoint the side's tree root, since Limit
	// nodes carry no separate root marker.
	book *OrderBook
}

func newLimit(price decimal.Decimal, side Side, b *OrderBook) *Limit {
	return &Limit{
		price:       price,
		side:        side,
		totalVolume: decimal.Zero,
		book:        b,
	}
}

func (l *Limit) Price() decimal.Decimal { return l.price }

func (l *Limit) Side() Side { return l.side }

// Size returns the number of orders resting at this price.
func (l *Limit) Size() int { return l.size }

// TotalVolume returns the sum of the resting orders' remaining quantities.
func (l *Limit) TotalVolume() decimal.Decimal { return l.totalVolume }

func (l *Limit) HeadOrder() *Order { return l.headOrder }

func (l *Limit) TailOrder() *Order { return l.tailOrder }

// addOrder appends o at the tail of the queue, preserving time priority
// within the price. O(1).
func (l *Limit) addOrder(o *Order) {
	if l.headOrder == nil {
		l.headOrder = o
		l.tailOrder = o
	} else {
		l.tailOrder.next = o
		o.prev = l.tailOrder
		l.tailOrder = o
	}
	l.size++
	l.totalVolume = l.totalVolume.Add(o.quantity)
	o.parentLimit = l
}

// removeOrder splices o out of the queue. O(1) given o's own links. The total
// volume is debited by o's quantity at the moment of removal, which keeps it
// equal to the sum of the remaining orders' quantities.
func (l *Limit) removeOrder(o *Order) {
	switch {
	case l.headOrder == o && l.tailOrder == o:
		l.headOrder = nil
		l.tailOrder = nil
	case l.headOrder == o:
		l.headOrder = o.next
		o.next.prev = nil
	case l.tailOrder == o:
		l.tailOrder = o.prev
		o.prev.next = nil
	default:
		o.prev.next = o.next
		o.next.prev = o.prev
	}
	o.next = nil
	o.prev = nil
	o.parentLimit = nil

	l.size--
	l.totalVolume = l.totalVolume.Sub(o.quantity)
}

// nextInsideOrder returns the order with the best remaining priority reachable
// from this Limit: its own head when the queue is non-empty, otherwise the
// head of the adjacent price level.
//
// The adjacency walk leans on the AVL balance invariant. A buy Limit that held
// the highest price sits at the bottom right of its tree, has no right child
// and at most a height-0 left child, so the next-highest price is the left
// child if present, else the parent. The sell side mirrors this with the right
// child, finding the next-lowest price. O(1) amortized, O(height) worst case.
func (l *Limit) nextInsideOrder() *Order {
	if l.headOrder != nil {
		return l.headOrder
	}

	if l.side == Buy {
		if l.leftChild != nil {
			return l.leftChild.headOrder
		}
		if l.parent != nil {
			return l.parent.headOrder
		}
		return nil
	}

	if l.rightChild != nil {
		return l.rightChild.headOrder
	}
	if l.parent != nil {
		return l.parent.headOrder
	}
	return nil
}
