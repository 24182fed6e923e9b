package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e := NewEngine(EngineConfig{})
	t.Cleanup(e.Close)
	return e
}

func TestGTCRestThenCross(t *testing.T) {
	e := newTestEngine(t)

	trades := e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 10))
	assert.Empty(t, trades)

	trades = e.AddOrder(NewOrder(GoodTillCancel, 2, Sell, 100, 10))
	require.Len(t, trades, 1)
	assert.Equal(t, Quantity(10), trades[0].Bid.Quantity)
	assert.Equal(t, Price(100), trades[0].Bid.Price)
	assert.Equal(t, Price(100), trades[0].Ask.Price)
	assert.Equal(t, 0, e.Size())
}

func TestFAKPartialThenCancelTail(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	trades := e.AddOrder(NewOrder(FillAndKill, 2, Sell, 100, 10))

	require.Len(t, trades, 1)
	assert.EqualValues(t, 5, trades[0].Bid.Quantity)
	assert.Equal(t, 0, e.Size())
}

func TestFOKMiss(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Sell, 100, 5))
	trades := e.AddOrder(NewOrder(FillOrKill, 2, Buy, 100, 10))

	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Size())

	infos := e.GetOrderInfos()
	require.Len(t, infos.Asks(), 1)
	assert.Empty(t, infos.Bids())
}

func TestFOKHitAcrossTwoLevels(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Sell, 100, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Sell, 101, 5))
	trades := e.AddOrder(NewOrder(FillOrKill, 3, Buy, 101, 10))

	require.Len(t, trades, 2)
	assert.Equal(t, 0, e.Size())
}

func TestLevelQuantityStaysAccurateAfterPartialFillOfLevel(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Sell, 100, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Sell, 100, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 3, Buy, 100, 5))

	infos := e.GetOrderInfos()
	require.Len(t, infos.Asks(), 1)
	assert.EqualValues(t, 5, infos.Asks()[0].Quantity, "level quantity must reflect only the surviving order's remaining size")

	trades := e.AddOrder(NewOrder(FillOrKill, 4, Buy, 100, 7))
	assert.Empty(t, trades, "FOK must miss when the level's true resting quantity (5) is below its request (7)")
	assert.Equal(t, 2, e.Size())
}

func TestCancelSuccess(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	e.CancelOrder(1)

	assert.Equal(t, 0, e.Size())
}

func TestCancelIdempotent(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	e.CancelOrder(1)
	e.CancelOrder(1)

	assert.Equal(t, 0, e.Size())
}

func TestModifyChangesSide(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	trades := e.ModifyOrder(OrderModify{Id: 1, Side: Sell, Price: 101, Quantity: 5})

	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Size())

	infos := e.GetOrderInfos()
	assert.Empty(t, infos.Bids())
	require.Len(t, infos.Asks(), 1)
	assert.Equal(t, Price(101), infos.Asks()[0].Price)
}

func TestModifyPreservesOriginalType(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodForDay, 1, Buy, 100, 5))
	e.ModifyOrder(OrderModify{Id: 1, Side: Buy, Price: 99, Quantity: 3})

	require.Equal(t, 1, e.Size())
	e.pruneGoodForDayLocked()
	assert.Equal(t, 0, e.Size(), "modify must preserve the original GoodForDay type so the pruner still reaps it")
}

func TestMarketSweepsWorstPrice(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Sell, 100, 3))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Sell, 101, 3))
	trades := e.AddOrder(NewMarketOrder(3, Buy, 5))

	require.Len(t, trades, 2)
	assert.Equal(t, Price(100), trades[0].Ask.Price)
	assert.EqualValues(t, 3, trades[0].Ask.Quantity)
	assert.Equal(t, Price(101), trades[1].Ask.Price)
	assert.EqualValues(t, 2, trades[1].Ask.Quantity)

	assert.Equal(t, 1, e.Size())
	infos := e.GetOrderInfos()
	require.Len(t, infos.Asks(), 1)
	assert.EqualValues(t, 1, infos.Asks()[0].Quantity)
}

func TestMarketOrderDroppedWhenNoOppositeBook(t *testing.T) {
	e := newTestEngine(t)

	trades := e.AddOrder(NewMarketOrder(1, Buy, 5))
	assert.Empty(t, trades)
	assert.Equal(t, 0, e.Size())
}

func TestDuplicateIdIsNoOp(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	trades := e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 101, 5))

	assert.Empty(t, trades)
	assert.Equal(t, 1, e.Size())
}

func TestAddCancelIdentity(t *testing.T) {
	e := newTestEngine(t)

	before := e.GetOrderInfos()
	trades := e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	require.Empty(t, trades)
	e.CancelOrder(1)
	after := e.GetOrderInfos()

	assert.Equal(t, before.Bids(), after.Bids())
	assert.Equal(t, before.Asks(), after.Asks())
}

func TestBestBidLessThanBestAskInvariant(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 99, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Sell, 105, 5))

	infos := e.GetOrderInfos()
	require.Len(t, infos.Bids(), 1)
	require.Len(t, infos.Asks(), 1)
	assert.Less(t, int32(infos.Bids()[0].Price), int32(infos.Asks()[0].Price))
}

func TestSizeMatchesQueueLengths(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Buy, 99, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 3, Sell, 105, 5))

	assert.Equal(t, 3, e.Size())
	assert.Equal(t, 2, e.bidCount())
	assert.Equal(t, 1, e.askCount())
}

func TestSnapshotFidelity(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Buy, 100, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Buy, 100, 7))

	infos := e.GetOrderInfos()
	require.Len(t, infos.Bids(), 1)
	assert.EqualValues(t, 12, infos.Bids()[0].Quantity)
}

func TestUnknownIdOperationsAreNoOps(t *testing.T) {
	e := newTestEngine(t)

	e.CancelOrder(999)
	trades := e.ModifyOrder(OrderModify{Id: 999, Side: Buy, Price: 1, Quantity: 1})
	assert.Empty(t, trades)
	assert.Equal(t, 0, e.Size())
}

func TestNoRestingMarketOrders(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodTillCancel, 1, Sell, 100, 3))
	e.AddOrder(NewMarketOrder(2, Buy, 3))

	infos := e.GetOrderInfos()
	assert.Empty(t, infos.Bids())
	assert.Empty(t, infos.Asks())
}
