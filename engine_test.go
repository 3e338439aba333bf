package book

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnginePerMarketIsolation(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(NewMemoryEventPublisher())
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = engine.Shutdown(shutdownCtx)
	}()

	// Each market runs its own book, so the first buy in each gets handle 0.
	btcID, err := engine.PlaceOrder(ctx, "BTC-USDT", &PlaceOrderRequest{Side: Buy, Price: d(100), Quantity: d(10)})
	require.NoError(t, err)
	ethID, err := engine.PlaceOrder(ctx, "ETH-USDT", &PlaceOrderRequest{Side: Buy, Price: d(200), Quantity: d(5)})
	require.NoError(t, err)

	assert.Equal(t, OrderID{Side: Buy, Seq: 0}, btcID)
	assert.Equal(t, OrderID{Side: Buy, Seq: 0}, ethID)

	_, err = engine.PlaceOrder(ctx, "BTC-USDT", &PlaceOrderRequest{Side: Sell, Price: d(90), Quantity: d(10)})
	require.NoError(t, err)

	trade, err := engine.Execute(ctx, "BTC-USDT")
	require.NoError(t, err)
	assert.Equal(t, btcID, trade.BuyOrderID)

	// The other market is untouched by the trade.
	_, err = engine.Execute(ctx, "ETH-USDT")
	assert.ErrorIs(t, err, ErrNoCrossingOrders)

	bid, err := engine.Sequencer("ETH-USDT").BestBid(ctx)
	require.NoError(t, err)
	assert.True(t, bid.Equal(d(200)))
}

func TestEngineSequencerReuse(t *testing.T) {
	engine := NewEngine(nil)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = engine.Shutdown(shutdownCtx)
	}()

	first := engine.Sequencer("BTC-USDT")
	assert.Same(t, first, engine.Sequencer("BTC-USDT"))
	assert.NotSame(t, first, engine.Sequencer("ETH-USDT"))
}

func TestEngineCancel(t *testing.T) {
	ctx := context.Background()
	engine := NewEngine(nil)
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = engine.Shutdown(shutdownCtx)
	}()

	id, err := engine.PlaceOrder(ctx, "BTC-USDT", &PlaceOrderRequest{Side: Sell, Price: d(100), Quantity: d(10)})
	require.NoError(t, err)
	require.NoError(t, engine.CancelOrder(ctx, "BTC-USDT", id))

	assert.Eventually(t, func() bool {
		stats, err := engine.Sequencer("BTC-USDT").Stats(ctx)
		return err == nil && stats.AskOrderCount == 0
	}, time.Second, 10*time.Millisecond)
}
