package bots

import (
	"context"
	"time"

	"limitbook/engine"
)

// SpreadCaptureBot maintains a paired GoodTillCancel bid/ask and re-prices
// whenever the mid moves past ThresholdTicks or the pair outlives Lifetime.
type SpreadCaptureBot struct {
	Interval       time.Duration
	Lifetime       time.Duration
	ThresholdTicks int64
	Quantity       engine.Quantity
}

type pairedOrders struct {
	buyID     engine.OrderId
	sellID    engine.OrderId
	anchorMid engine.Price
	placedAt  time.Time
}

func NewSpreadCaptureBot() *SpreadCaptureBot {
	return &SpreadCaptureBot{
		Interval:       300 * time.Millisecond,
		Lifetime:       3 * time.Second,
		ThresholdTicks: 3,
		Quantity:       1,
	}
}

func (b *SpreadCaptureBot) Start(ctx context.Context, client EngineClient) {
	ticker := time.NewTicker(b.Interval)
	defer ticker.Stop()

	var pair *pairedOrders
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			infos, err := client.Snapshot(ctx)
			if err != nil {
				continue
			}
			pair = b.refreshPair(ctx, client, infos, pair)
		}
	}
}

func (b *SpreadCaptureBot) refreshPair(ctx context.Context, client EngineClient, infos engine.OrderbookLevelInfos, pair *pairedOrders) *pairedOrders {
	bids := infos.Bids()
	asks := infos.Asks()
	if len(bids) == 0 || len(asks) == 0 {
		return b.cancelPair(ctx, client, pair)
	}
	bid, ask := bids[0].Price, asks[0].Price
	mid := (bid + ask) / 2
	threshold := engine.Price(b.ThresholdTicks)

	if pair != nil {
		if time.Since(pair.placedAt) > b.Lifetime {
			return b.cancelPair(ctx, client, pair)
		}
		if absPrice(mid-pair.anchorMid) >= threshold {
			pair = b.cancelPair(ctx, client, pair)
		}
	}

	if pair != nil {
		return pair
	}

	buyPrice := bid
	if mid-1 > 0 {
		buyPrice = mid - 1
	}
	sellPrice := ask
	if sellPrice <= buyPrice {
		sellPrice = buyPrice + 1
	}

	buyID := client.NextID()
	sellID := client.NextID()

	buyOrder := engine.NewOrder(engine.GoodTillCancel, buyID, engine.Buy, buyPrice, b.Quantity)
	sellOrder := engine.NewOrder(engine.GoodTillCancel, sellID, engine.Sell, sellPrice, b.Quantity)

	if _, err := client.SubmitOrder(ctx, buyOrder); err != nil {
		return pair
	}
	if _, err := client.SubmitOrder(ctx, sellOrder); err != nil {
		_ = client.CancelOrder(ctx, buyID)
		return pair
	}

	return &pairedOrders{buyID: buyID, sellID: sellID, anchorMid: mid, placedAt: time.Now()}
}

func (b *SpreadCaptureBot) cancelPair(ctx context.Context, client EngineClient, pair *pairedOrders) *pairedOrders {
	if pair == nil {
		return nil
	}
	_ = client.CancelOrder(ctx, pair.buyID)
	_ = client.CancelOrder(ctx, pair.sellID)
	return nil
}
