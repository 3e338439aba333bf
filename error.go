package book

import "errors"

var (
	ErrInvalidQuantity  = errors.New("order quantity must be positive")
	ErrOrderNotFound    = errors.New("order does not exist")
	ErrNoVolumeAtPrice  = errors.New("there is no volume at this limit price")
	ErrNoBestBid        = errors.New("there is no best bid")
	ErrNoBestAsk        = errors.New("there is no best ask")
	ErrNoCrossingOrders = errors.New("there are no orders to execute")
	ErrSequenceGap      = errors.New("event sequence gap detected")
	ErrTimeout          = errors.New("timeout")
	ErrShutdown         = errors.New("sequencer is shutting down")
)
