package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Trade is the result of one matching step.
type Trade struct {
	BuyOrderID  OrderID
	SellOrderID OrderID
	Quantity    decimal.Decimal
	BuyPrice    decimal.Decimal
	SellPrice   decimal.Decimal
	Spread      decimal.Decimal

	// PartialSide names the side whose order was only partially filled and
	// stays resting. Zero when both orders filled exactly.
	PartialSide Side
}

// OrderBook is the aggregate root of the matching core: two Limit trees, two
// id-indexed order directories, two price-indexed limit directories, and the
// two priority cursors.
//
// The book is single-threaded with no internal synchronization. All calls,
// reads included, must be serialized by one logical caller; Sequencer
// (sequencer.go) is the intended way to do that.
type OrderBook struct {
	buyTree  *Limit
	sellTree *Limit

	// Priority cursors: the order at the front of the best-price queue on
	// each side, or nil when the side is empty.
	highestBuy *Order
	lowestSell *Order

	buyOrders  map[uint64]*Order
	sellOrders map[uint64]*Order

	// Price directories, keyed by the canonical decimal string. Entries are
	// never removed: an emptied Limit stays registered (see Limit).
	buyLimits  map[string]*Limit
	sellLimits map[string]*Limit

	nextBuyID  uint64
	nextSellID uint64

	// Cumulative realized spread: sum over trades of (buyPrice - sellPrice)
	// times the matched quantity.
	profit decimal.Decimal
}

func NewOrderBook() *OrderBook {
	return &OrderBook{
		buyOrders:  make(map[uint64]*Order),
		sellOrders: make(map[uint64]*Order),
		buyLimits:  make(map[string]*Limit),
		sellLimits: make(map[string]*Limit),
		profit:     decimal.Zero,
	}
}

func (b *OrderBook) ordersFor(side Side) map[uint64]*Order {
	if side == Buy {
		return b.buyOrders
	}
	return b.sellOrders
}

func (b *OrderBook) limitsFor(side Side) map[string]*Limit {
	if side == Buy {
		return b.buyLimits
	}
	return b.sellLimits
}

// AddOrder admits a limit order and returns its handle. The order is appended
// to the queue of its price level; the level is created and inserted into the
// side's tree on the first order at that price.
func (b *OrderBook) AddOrder(price, quantity decimal.Decimal, side Side) (OrderID, error) {
	if quantity.Sign() <= 0 {
		return OrderID{}, ErrInvalidQuantity
	}

	id := OrderID{Side: side}
	if side == Buy {
		id.Seq = b.nextBuyID
		b.nextBuyID++
	} else {
		id.Seq = b.nextSellID
		b.nextSellID++
	}
	order := newOrder(id, price, quantity, time.Now())

	limits := b.limitsFor(side)
	key := price.String()
	limit, ok := limits[key]
	if !ok {
		limit = newLimit(price, side, b)
		limits[key] = limit
		limit.addOrder(order)
		if side == Buy {
			if b.buyTree == nil {
				b.buyTree = limit
			} else {
				b.buyTree.insertLimit(limit)
			}
		} else {
			if b.sellTree == nil {
				b.sellTree = limit
			} else {
				b.sellTree.insertLimit(limit)
			}
		}
	} else {
		limit.addOrder(order)
	}

	// Strict comparison: a price tie never displaces the incumbent cursor
	// order, preserving its time priority.
	if side == Buy {
		if b.highestBuy == nil || price.GreaterThan(b.highestBuy.price) {
			b.highestBuy = order
		}
	} else {
		if b.lowestSell == nil || price.LessThan(b.lowestSell.price) {
			b.lowestSell = order
		}
	}

	b.ordersFor(side)[id.Seq] = order
	return id, nil
}

// Order looks up a resting order by handle.
func (b *OrderBook) Order(id OrderID) (*Order, bool) {
	o, ok := b.ordersFor(id.Side)[id.Seq]
	return o, ok
}

// CancelOrder removes a resting order. Cancelling an unknown or already
// removed handle reports ErrOrderNotFound and leaves the book untouched.
// The order's Limit stays in the tree and the price directory even when its
// queue empties.
func (b *OrderBook) CancelOrder(id OrderID) error {
	orders := b.ordersFor(id.Side)
	order, ok := orders[id.Seq]
	if !ok {
		return ErrOrderNotFound
	}

	limit := order.parentLimit
	limit.removeOrder(order)

	if id.Side == Buy {
		if order == b.highestBuy {
			b.highestBuy = limit.nextInsideOrder()
		}
	} else {
		if order == b.lowestSell {
			b.lowestSell = limit.nextInsideOrder()
		}
	}

	delete(orders, id.Seq)
	return nil
}

// ExecuteOrder runs one matching step between the two cursor orders under
// price-time priority. It reports ErrNoCrossingOrders when either side is
// empty or the best bid is below the best ask; callers loop to drain the book.
//
// The trade quantity is the smaller order's quantity: that order leaves the
// book entirely, while with unequal quantities the larger one stays resting
// with its quantity reduced.
func (b *OrderBook) ExecuteOrder() (*Trade, error) {
	buy, sell := b.highestBuy, b.lowestSell
	if buy == nil || sell == nil || buy.price.LessThan(sell.price) {
		return nil, ErrNoCrossingOrders
	}

	spread := buy.price.Sub(sell.price)
	cmp := buy.quantity.Cmp(sell.quantity)

	if cmp == 0 {
		qty := buy.quantity
		buyLimit := buy.parentLimit
		sellLimit := sell.parentLimit
		buyLimit.removeOrder(buy)
		sellLimit.removeOrder(sell)

		b.profit = b.profit.Add(spread.Mul(qty))
		delete(b.buyOrders, buy.id.Seq)
		delete(b.sellOrders, sell.id.Seq)

		b.highestBuy = buyLimit.nextInsideOrder()
		b.lowestSell = sellLimit.nextInsideOrder()

		return &Trade{
			BuyOrderID:  buy.id,
			SellOrderID: sell.id,
			Quantity:    qty,
			BuyPrice:    buy.price,
			SellPrice:   sell.price,
			Spread:      spread,
		}, nil
	}

	lower, higher := buy, sell
	if cmp > 0 {
		lower, higher = sell, buy
	}
	qty := lower.quantity

	lowerLimit := lower.parentLimit
	lowerLimit.removeOrder(lower)
	higher.DecreaseQuantity(qty)

	b.profit = b.profit.Add(spread.Mul(qty))
	delete(b.ordersFor(lower.id.Side), lower.id.Seq)

	// Only the consumed side's cursor moves: the larger order keeps its
	// identity and stays at the front of its queue.
	if lower.id.Side == Buy {
		b.highestBuy = lowerLimit.nextInsideOrder()
	} else {
		b.lowestSell = lowerLimit.nextInsideOrder()
	}

	return &Trade{
		BuyOrderID:  buy.id,
		SellOrderID: sell.id,
		Quantity:    qty,
		BuyPrice:    buy.price,
		SellPrice:   sell.price,
		Spread:      spread,
		PartialSide: higher.id.Side,
	}, nil
}

// VolumeAtPrice reports the resting volume at a price level. A price with no
// Limit on that side reports ErrNoVolumeAtPrice; an emptied-but-retained Limit
// reports zero without error.
func (b *OrderBook) VolumeAtPrice(price decimal.Decimal, side Side) (decimal.Decimal, error) {
	limit, ok := b.limitsFor(side)[price.String()]
	if !ok {
		return decimal.Zero, ErrNoVolumeAtPrice
	}
	return limit.totalVolume, nil
}

// BestBid returns the price of the highest resting buy order.
func (b *OrderBook) BestBid() (decimal.Decimal, error) {
	if b.highestBuy == nil {
		return decimal.Zero, ErrNoBestBid
	}
	return b.highestBuy.price, nil
}

// BestAsk returns the price of the lowest resting sell order.
func (b *OrderBook) BestAsk() (decimal.Decimal, error) {
	if b.lowestSell == nil {
		return decimal.Zero, ErrNoBestAsk
	}
	return b.lowestSell.price, nil
}

// Profit returns the cumulative realized spread across all trades.
func (b *OrderBook) Profit() decimal.Decimal {
	return b.profit
}

// OrderCount returns the number of resting orders on a side.
func (b *OrderBook) OrderCount(side Side) int {
	return len(b.ordersFor(side))
}

// LimitCount returns the number of price levels ever created on a side,
// emptied levels included.
func (b *OrderBook) LimitCount(side Side) int {
	return len(b.limitsFor(side))
}
