// Command bookdemo runs a fixed script against a single order book and logs
// the resulting trades, best bid, and realized profit.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/shopspring/decimal"

	book "github.com/matchcore/orderbook"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	book.SetLogger(logger)

	publisher := book.NewMemoryEventPublisher()
	seq := book.NewSequencer(publisher)
	go func() {
		_ = seq.Start()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	place := func(side book.Side, price, quantity int64) {
		id, err := seq.PlaceOrder(ctx, &book.PlaceOrderRequest{
			Side:     side,
			Price:    decimal.NewFromInt(price),
			Quantity: decimal.NewFromInt(quantity),
		})
		if err != nil {
			logger.Error("place order failed", "error", err)
			os.Exit(1)
		}
		logger.Info("order placed", "id", id.String(), "price", price, "quantity", quantity)
	}

	place(book.Buy, 100, 10)
	place(book.Buy, 90, 10)
	place(book.Buy, 110, 10)
	place(book.Sell, 100, 10)

	for {
		trade, err := seq.Execute(ctx)
		if err != nil {
			if errors.Is(err, book.ErrNoCrossingOrders) {
				logger.Info("no more orders to execute")
				break
			}
			logger.Error("execute failed", "error", err)
			os.Exit(1)
		}
		logger.Info("trade executed",
			"buy_order", trade.BuyOrderID.String(),
			"sell_order", trade.SellOrderID.String(),
			"quantity", trade.Quantity.String(),
			"spread", trade.Spread.String())
	}

	if best, err := seq.BestBid(ctx); err == nil {
		logger.Info("best bid", "price", best.String())
	} else {
		logger.Info("no best bid")
	}

	logger.Info("events published", "count", publisher.Count())

	if err := seq.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", "error", err)
		os.Exit(1)
	}
}
