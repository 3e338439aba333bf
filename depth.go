package book

import (
	"github.com/shopspring/decimal"
)

// DepthChange represents a change in the order book depth.
type DepthChange struct {
	Side     Side
	Price    decimal.Decimal
	SizeDiff decimal.Decimal
}

// DepthItem is one aggregated price level in a depth view.
type DepthItem struct {
	Price decimal.Decimal `json:"price"`
	Size  decimal.Decimal `json:"size"`
}

// DepthChangesFor maps a BookEvent to the per-level depth deltas it implies.
//
// Both parties to a trade were resting in the book, so a trade event reduces
// two levels: the buy level at the buy price and the sell level at the sell
// price, each by the traded quantity. Reject events never entered the book and
// yield no change.
func DepthChangesFor(ev *BookEvent) []DepthChange {
	switch ev.Type {
	case EventOpen:
		return []DepthChange{
			{Side: ev.Side, Price: ev.Price, SizeDiff: ev.Quantity},
		}
	case EventCancel:
		return []DepthChange{
			{Side: ev.Side, Price: ev.Price, SizeDiff: ev.Quantity.Neg()},
		}
	case EventTrade:
		return []DepthChange{
			{Side: Buy, Price: ev.BuyPrice, SizeDiff: ev.Quantity.Neg()},
			{Side: Sell, Price: ev.SellPrice, SizeDiff: ev.Quantity.Neg()},
		}
	case EventReject:
		return nil
	}

	return nil
}
