package book

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal {
	return decimal.NewFromInt(v)
}

func mustAdd(t *testing.T, b *OrderBook, side Side, price, quantity int64) OrderID {
	t.Helper()
	id, err := b.AddOrder(d(price), d(quantity), side)
	require.NoError(t, err)
	return id
}

func TestLimitQueueFIFO(t *testing.T) {
	b := NewOrderBook()

	id1 := mustAdd(t, b, Buy, 100, 10)
	id2 := mustAdd(t, b, Buy, 100, 20)
	id3 := mustAdd(t, b, Buy, 100, 30)

	limit := b.buyLimits[d(100).String()]
	require.NotNil(t, limit)

	assert.Equal(t, 3, limit.Size())
	assert.True(t, limit.TotalVolume().Equal(d(60)))

	// Time priority: head is the earliest order, tail the latest.
	assert.Equal(t, id1, limit.HeadOrder().ID())
	assert.Equal(t, id3, limit.TailOrder().ID())
	assert.Equal(t, id2, limit.HeadOrder().next.ID())
}

func TestLimitQueueRemovalCases(t *testing.T) {
	t.Run("interior", func(t *testing.T) {
		b := NewOrderBook()
		head := mustAdd(t, b, Buy, 100, 10)
		mid := mustAdd(t, b, Buy, 100, 10)
		tail := mustAdd(t, b, Buy, 100, 10)

		require.NoError(t, b.CancelOrder(mid))

		limit := b.buyLimits[d(100).String()]
		assert.Equal(t, 2, limit.Size())
		assert.True(t, limit.TotalVolume().Equal(d(20)))
		assert.Equal(t, head, limit.HeadOrder().ID())
		assert.Equal(t, tail, limit.TailOrder().ID())
		assert.Equal(t, limit.TailOrder(), limit.HeadOrder().next)
		assert.Equal(t, limit.HeadOrder(), limit.TailOrder().prev)
	})

	t.Run("head", func(t *testing.T) {
		b := NewOrderBook()
		head := mustAdd(t, b, Buy, 100, 10)
		mid := mustAdd(t, b, Buy, 100, 10)
		tail := mustAdd(t, b, Buy, 100, 10)

		require.NoError(t, b.CancelOrder(head))

		limit := b.buyLimits[d(100).String()]
		assert.Equal(t, mid, limit.HeadOrder().ID())
		assert.Nil(t, limit.HeadOrder().prev)
		assert.Equal(t, tail, limit.TailOrder().ID())
	})

	t.Run("tail", func(t *testing.T) {
		b := NewOrderBook()
		head := mustAdd(t, b, Buy, 100, 10)
		mid := mustAdd(t, b, Buy, 100, 10)
		tail := mustAdd(t, b, Buy, 100, 10)

		require.NoError(t, b.CancelOrder(tail))

		limit := b.buyLimits[d(100).String()]
		assert.Equal(t, head, limit.HeadOrder().ID())
		assert.Equal(t, mid, limit.TailOrder().ID())
		assert.Nil(t, limit.TailOrder().next)
	})

	t.Run("only element", func(t *testing.T) {
		b := NewOrderBook()
		only := mustAdd(t, b, Sell, 100, 10)

		require.NoError(t, b.CancelOrder(only))

		limit := b.sellLimits[d(100).String()]
		require.NotNil(t, limit, "emptied limit must stay registered")
		assert.Nil(t, limit.HeadOrder())
		assert.Nil(t, limit.TailOrder())
		assert.Equal(t, 0, limit.Size())
		assert.True(t, limit.TotalVolume().IsZero())
	})
}

func TestNextInsideOrderPrefersOwnHead(t *testing.T) {
	b := NewOrderBook()

	// Several price levels so the tree has real shape.
	for _, price := range []int64{100, 90, 110, 95, 105, 85} {
		mustAdd(t, b, Buy, price, 10)
	}

	for _, limit := range b.buyLimits {
		assert.Equal(t, limit.HeadOrder(), limit.nextInsideOrder(),
			"non-empty limit at %s must return its own head", limit.Price().String())
	}
}

func TestDecreaseQuantity(t *testing.T) {
	b := NewOrderBook()
	id := mustAdd(t, b, Buy, 100, 10)
	mustAdd(t, b, Buy, 100, 5)

	order, ok := b.Order(id)
	require.True(t, ok)

	order.DecreaseQuantity(d(4))

	assert.True(t, order.Quantity().Equal(d(6)))
	limit := b.buyLimits[d(100).String()]
	assert.True(t, limit.TotalVolume().Equal(d(11)))
	assert.Equal(t, 2, limit.Size(), "partial fill must not change the order count")
}
