package book

import (
	"context"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/xid"
	"github.com/shopspring/decimal"
)

// CommandType represents the type of command sent to the sequencer.
type CommandType int

const (
	CmdPlaceOrder CommandType = iota
	CmdCancelOrder
	CmdExecute
	CmdVolumeAtPrice
	CmdBestBid
	CmdBestAsk
	CmdStats
)

// Command is the unified envelope for everything entering the sequencer loop.
// A single channel keeps ordering deterministic. ID is a correlation id for
// log lines; Resp, when set, carries the synchronous reply.
type Command struct {
	ID      xid.ID
	Type    CommandType
	Payload any
	Resp    chan any
}

type PlaceOrderRequest struct {
	Side     Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

type VolumeRequest struct {
	Side  Side
	Price decimal.Decimal
}

// BookStats contains usage statistics for the order book.
type BookStats struct {
	BidOrderCount int
	AskOrderCount int
	BidLimitCount int
	AskLimitCount int
}

type cmdResult struct {
	err  error
	data any
}

// Sequencer serializes all access to one OrderBook through a single command
// channel feeding a single loop, giving trades and price-level mutations a
// total order. The core itself has no synchronization; this is the one
// logical writer it assumes.
//
// Every applied mutation is published as a BookEvent with a contiguous
// sequence number.
type Sequencer struct {
	book             *OrderBook
	seqID            atomic.Uint64
	isShutdown       atomic.Bool
	cmdChan          chan Command
	done             chan struct{}
	shutdownComplete chan struct{}
	publisher        EventPublisher
}

// NewSequencer creates a sequencer around a fresh OrderBook. The publisher may
// be nil, in which case events are dropped.
func NewSequencer(publisher EventPublisher) *Sequencer {
	return &Sequencer{
		book:             NewOrderBook(),
		cmdChan:          make(chan Command, 32768),
		done:             make(chan struct{}),
		shutdownComplete: make(chan struct{}),
		publisher:        publisher,
	}
}

// PlaceOrder submits a limit order and waits for its handle.
func (s *Sequencer) PlaceOrder(ctx context.Context, req *PlaceOrderRequest) (OrderID, error) {
	if s.isShutdown.Load() {
		return OrderID{}, ErrShutdown
	}

	resp := make(chan any, 1)
	select {
	case s.cmdChan <- Command{ID: xid.New(), Type: CmdPlaceOrder, Payload: req, Resp: resp}:
	case <-ctx.Done():
		return OrderID{}, ErrTimeout
	}

	select {
	case res := <-resp:
		r, _ := res.(cmdResult)
		if r.err != nil {
			return OrderID{}, r.err
		}
		id, _ := r.data.(OrderID)
		return id, nil
	case <-ctx.Done():
		return OrderID{}, ErrTimeout
	}
}

// CancelOrder submits a cancellation asynchronously. An unknown handle is
// reported in the log, not to the caller.
func (s *Sequencer) CancelOrder(ctx context.Context, id OrderID) error {
	if s.isShutdown.Load() {
		return ErrShutdown
	}

	select {
	case s.cmdChan <- Command{ID: xid.New(), Type: CmdCancelOrder, Payload: id}:
		return nil
	case <-ctx.Done():
		return ErrTimeout
	}
}

// Execute runs one matching step. ErrNoCrossingOrders means the book is
// drained for now; callers loop until they see it.
func (s *Sequencer) Execute(ctx context.Context) (*Trade, error) {
	if s.isShutdown.Load() {
		return nil, ErrShutdown
	}

	resp := make(chan any, 1)
	select {
	case s.cmdChan <- Command{ID: xid.New(), Type: CmdExecute, Resp: resp}:
	case <-ctx.Done():
		return nil, ErrTimeout
	}

	select {
	case res := <-resp:
		r, _ := res.(cmdResult)
		if r.err != nil {
			return nil, r.err
		}
		trade, _ := r.data.(*Trade)
		return trade, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

// VolumeAtPrice reports the resting volume at a price level.
func (s *Sequencer) VolumeAtPrice(ctx context.Context, side Side, price decimal.Decimal) (decimal.Decimal, error) {
	res, err := s.query(ctx, Command{ID: xid.New(), Type: CmdVolumeAtPrice, Payload: &VolumeRequest{Side: side, Price: price}})
	if err != nil {
		return decimal.Zero, err
	}
	vol, _ := res.(decimal.Decimal)
	return vol, nil
}

// BestBid reports the highest resting buy price.
func (s *Sequencer) BestBid(ctx context.Context) (decimal.Decimal, error) {
	res, err := s.query(ctx, Command{ID: xid.New(), Type: CmdBestBid})
	if err != nil {
		return decimal.Zero, err
	}
	price, _ := res.(decimal.Decimal)
	return price, nil
}

// BestAsk reports the lowest resting sell price.
func (s *Sequencer) BestAsk(ctx context.Context) (decimal.Decimal, error) {
	res, err := s.query(ctx, Command{ID: xid.New(), Type: CmdBestAsk})
	if err != nil {
		return decimal.Zero, err
	}
	price, _ := res.(decimal.Decimal)
	return price, nil
}

// Stats returns usage statistics for the order book.
func (s *Sequencer) Stats(ctx context.Context) (*BookStats, error) {
	res, err := s.query(ctx, Command{ID: xid.New(), Type: CmdStats})
	if err != nil {
		return nil, err
	}
	stats, _ := res.(*BookStats)
	return stats, nil
}

func (s *Sequencer) query(ctx context.Context, cmd Command) (any, error) {
	if s.isShutdown.Load() {
		return nil, ErrShutdown
	}

	cmd.Resp = make(chan any, 1)
	select {
	case s.cmdChan <- cmd:
	case <-ctx.Done():
		return nil, ErrTimeout
	}

	select {
	case res := <-cmd.Resp:
		r, _ := res.(cmdResult)
		if r.err != nil {
			return nil, r.err
		}
		return r.data, nil
	case <-ctx.Done():
		return nil, ErrTimeout
	}
}

// Start runs the sequencer loop until Shutdown is called. It processes
// commands strictly in arrival order.
func (s *Sequencer) Start() error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	for {
		select {
		case <-s.done:
			return s.drain()
		case cmd := <-s.cmdChan:
			s.dispatch(cmd)
		}
	}
}

// Shutdown signals the loop to stop accepting new commands and waits for the
// pending ones to drain, or for the context to expire.
func (s *Sequencer) Shutdown(ctx context.Context) error {
	if s.isShutdown.CompareAndSwap(false, true) {
		close(s.done)
	}

	select {
	case <-s.shutdownComplete:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// drain processes the remaining mutating commands before returning. Read-only
// commands are consumed but not answered; their callers time out via context.
func (s *Sequencer) drain() error {
	defer close(s.shutdownComplete)

	for {
		select {
		case cmd := <-s.cmdChan:
			switch cmd.Type {
			case CmdPlaceOrder, CmdCancelOrder, CmdExecute:
				s.dispatch(cmd)
			case CmdVolumeAtPrice, CmdBestBid, CmdBestAsk, CmdStats:
				// Read-only, no-op during drain.
			}
		default:
			return nil
		}
	}
}

func (s *Sequencer) dispatch(cmd Command) {
	switch cmd.Type {
	case CmdPlaceOrder:
		req, ok := cmd.Payload.(*PlaceOrderRequest)
		if !ok {
			return
		}
		id, err := s.applyPlace(req)
		s.respond(cmd, cmdResult{err: err, data: id})

	case CmdCancelOrder:
		id, ok := cmd.Payload.(OrderID)
		if !ok {
			return
		}
		if err := s.applyCancel(id); err != nil {
			logger.Warn("order book: cancel rejected",
				"cmd_id", cmd.ID.String(),
				"order_id", id.String(),
				"error", err.Error())
		}

	case CmdExecute:
		trade, err := s.applyExecute()
		s.respond(cmd, cmdResult{err: err, data: trade})

	case CmdVolumeAtPrice:
		req, ok := cmd.Payload.(*VolumeRequest)
		if !ok {
			return
		}
		vol, err := s.book.VolumeAtPrice(req.Price, req.Side)
		s.respond(cmd, cmdResult{err: err, data: vol})

	case CmdBestBid:
		price, err := s.book.BestBid()
		s.respond(cmd, cmdResult{err: err, data: price})

	case CmdBestAsk:
		price, err := s.book.BestAsk()
		s.respond(cmd, cmdResult{err: err, data: price})

	case CmdStats:
		s.respond(cmd, cmdResult{data: &BookStats{
			BidOrderCount: s.book.OrderCount(Buy),
			AskOrderCount: s.book.OrderCount(Sell),
			BidLimitCount: s.book.LimitCount(Buy),
			AskLimitCount: s.book.LimitCount(Sell),
		}})
	}
}

func (s *Sequencer) respond(cmd Command, res cmdResult) {
	if cmd.Resp == nil {
		return
	}
	select {
	case cmd.Resp <- res:
	default:
		// Non-blocking send; if no one is listening, drop it.
	}
}

func (s *Sequencer) applyPlace(req *PlaceOrderRequest) (OrderID, error) {
	id, err := s.book.AddOrder(req.Price, req.Quantity, req.Side)
	if err != nil {
		ev := acquireBookEvent()
		ev.Sequence = s.seqID.Add(1)
		ev.Type = EventReject
		ev.Side = req.Side
		ev.Price = req.Price
		ev.Quantity = req.Quantity
		ev.Reason = err.Error()
		ev.CreatedAt = time.Now().UTC()
		s.publish(ev)
		return OrderID{}, err
	}

	ev := acquireBookEvent()
	ev.Sequence = s.seqID.Add(1)
	ev.Type = EventOpen
	ev.Side = req.Side
	ev.OrderID = id
	ev.Price = req.Price
	ev.Quantity = req.Quantity
	ev.CreatedAt = time.Now().UTC()
	s.publish(ev)

	return id, nil
}

func (s *Sequencer) applyCancel(id OrderID) error {
	// Capture price and remaining quantity before removal; the cancel event
	// must carry what actually left the book.
	order, ok := s.book.Order(id)
	if !ok {
		return ErrOrderNotFound
	}
	price := order.Price()
	quantity := order.Quantity()

	if err := s.book.CancelOrder(id); err != nil {
		return err
	}

	ev := acquireBookEvent()
	ev.Sequence = s.seqID.Add(1)
	ev.Type = EventCancel
	ev.Side = id.Side
	ev.OrderID = id
	ev.Price = price
	ev.Quantity = quantity
	ev.CreatedAt = time.Now().UTC()
	s.publish(ev)

	return nil
}

func (s *Sequencer) applyExecute() (*Trade, error) {
	trade, err := s.book.ExecuteOrder()
	if err != nil {
		// No crossing pair is an ordinary report, not an event.
		return nil, err
	}

	ev := acquireBookEvent()
	ev.Sequence = s.seqID.Add(1)
	ev.Type = EventTrade
	ev.Quantity = trade.Quantity
	ev.BuyOrderID = trade.BuyOrderID
	ev.SellOrderID = trade.SellOrderID
	ev.BuyPrice = trade.BuyPrice
	ev.SellPrice = trade.SellPrice
	ev.CreatedAt = time.Now().UTC()
	s.publish(ev)

	return trade, nil
}

func (s *Sequencer) publish(ev *BookEvent) {
	if s.publisher != nil {
		s.publisher.Publish(ev)
	}
	releaseBookEvent(ev)
}
