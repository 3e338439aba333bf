package book

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order is a resting limit order. Identity (id, side, price, submit time) is
// immutable after admission; only the remaining quantity and the queue links
// change. The queue links are owned by the containing Limit: an Order never
// mutates another Order's links directly.
type Order struct {
	id         OrderID
	price      decimal.Decimal
	quantity   decimal.Decimal
	submitTime time.Time

	// Intrusive doubly-linked FIFO, spliced by the parent Limit.
	next *Order
	prev *Order

	// Non-owning back-reference, set while the order rests in the book.
	parentLimit *Limit
}

func newOrder(id OrderID, price, quantity decimal.Decimal, submitTime time.Time) *Order {
	return &Order{
		id:         id,
		price:      price,
		quantity:   quantity,
		submitTime: submitTime,
	}
}

func (o *Order) ID() OrderID { return o.id }

func (o *Order) Side() Side { return o.id.Side }

func (o *Order) Price() decimal.Decimal { return o.price }

// Quantity returns the remaining quantity.
func (o *Order) Quantity() decimal.Decimal { return o.quantity }

func (o *Order) SubmitTime() time.Time { return o.submitTime }

// DecreaseQuantity reduces the remaining quantity after a partial fill and
// debits the parent Limit's total volume by the same amount.
//
// Precondition (caller contract, not enforced): amount is at most the current
// quantity and the order is resting in the book.
func (o *Order) DecreaseQuantity(amount decimal.Decimal) {
	o.quantity = o.quantity.Sub(amount)
	o.parentLimit.totalVolume = o.parentLimit.totalVolume.Sub(amount)
}
