package book

import (
	"context"
	"sync"
)

// Engine manages one Sequencer per market.
type Engine struct {
	sequencers sync.Map
	publisher  EventPublisher
}

func NewEngine(publisher EventPublisher) *Engine {
	return &Engine{
		publisher: publisher,
	}
}

// Sequencer returns the sequencer for a market, creating and starting it on
// first use.
func (e *Engine) Sequencer(marketID string) *Sequencer {
	v, found := e.sequencers.Load(marketID)
	if !found {
		ns := NewSequencer(e.publisher)
		v, found = e.sequencers.LoadOrStore(marketID, ns)
		if !found {
			go func() {
				_ = ns.Start()
			}()
		}
	}

	seq, _ := v.(*Sequencer)
	return seq
}

func (e *Engine) PlaceOrder(ctx context.Context, marketID string, req *PlaceOrderRequest) (OrderID, error) {
	return e.Sequencer(marketID).PlaceOrder(ctx, req)
}

func (e *Engine) CancelOrder(ctx context.Context, marketID string, id OrderID) error {
	return e.Sequencer(marketID).CancelOrder(ctx, id)
}

func (e *Engine) Execute(ctx context.Context, marketID string) (*Trade, error) {
	return e.Sequencer(marketID).Execute(ctx)
}

// Shutdown drains every market's sequencer. The first error wins; the rest
// still get shut down.
func (e *Engine) Shutdown(ctx context.Context) error {
	var firstErr error
	e.sequencers.Range(func(_, v any) bool {
		seq, _ := v.(*Sequencer)
		if err := seq.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
		return true
	})
	return firstErr
}
