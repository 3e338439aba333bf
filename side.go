package book

import "fmt"

type Side int8

const (
	Buy  Side = 1
	Sell Side = 2
)

func (s Side) String() string {
	switch s {
	case Buy:
		return "buy"
	case Sell:
		return "sell"
	default:
		return "unknown"
	}
}

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// OrderID is the handle returned by AddOrder and accepted by CancelOrder.
// Sequence numbers are assigned per side starting at 0, so the side tag is
// part of the identity: buy 0 and sell 0 are two different orders.
type OrderID struct {
	Side Side
	Seq  uint64
}

func (id OrderID) String() string {
	return fmt.Sprintf("%s-%d", id.Side, id.Seq)
}
