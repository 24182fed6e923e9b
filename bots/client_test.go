package bots

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limitbook/engine"
)

func TestThrottledClientSubmitAndOwn(t *testing.T) {
	eng := engine.NewEngine(engine.EngineConfig{})
	t.Cleanup(eng.Close)

	client := NewThrottledClient(eng, nil)
	id := client.NextID()

	order := engine.NewOrder(engine.GoodTillCancel, id, engine.Buy, 100, 5)
	trades, err := client.SubmitOrder(context.Background(), order)
	require.NoError(t, err)
	assert.Empty(t, trades)
	assert.True(t, client.OwnsOrder(id))
}

func TestThrottledClientCrossReportsTrade(t *testing.T) {
	eng := engine.NewEngine(engine.EngineConfig{})
	t.Cleanup(eng.Close)

	client := NewThrottledClient(eng, nil)
	buyID, sellID := client.NextID(), client.NextID()

	_, err := client.SubmitOrder(context.Background(), engine.NewOrder(engine.GoodTillCancel, buyID, engine.Buy, 100, 5))
	require.NoError(t, err)
	_, err = client.SubmitOrder(context.Background(), engine.NewOrder(engine.GoodTillCancel, sellID, engine.Sell, 100, 5))
	require.NoError(t, err)

	select {
	case trade := <-client.Trades():
		assert.Equal(t, buyID, trade.Bid.OrderId)
		assert.Equal(t, sellID, trade.Ask.OrderId)
	default:
		t.Fatal("expected a trade on the client's trade channel")
	}
}

func TestNextIDIsUnique(t *testing.T) {
	eng := engine.NewEngine(engine.EngineConfig{})
	t.Cleanup(eng.Close)
	client := NewThrottledClient(eng, nil)

	a, b := client.NextID(), client.NextID()
	assert.NotEqual(t, a, b)
}
