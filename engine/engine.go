package engine

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// EngineConfig controls the GFD pruner and, optionally, metrics/logging.
type EngineConfig struct {
	// GFDHour is the local hour (0-23) at which resting GoodForDay
	// orders are pruned. The zero value selects the default of 16 (4pm),
	// so midnight cannot be selected.
	GFDHour int
	// Clock supplies the current time to the pruner and defaults to
	// the real wall clock.
	Clock Clock
	// Logger receives structured lifecycle/admission logging. Defaults
	// to a no-op logger.
	Logger *zap.Logger
	// Metrics receives trade/order counters. Defaults to a no-op sink.
	Metrics *Metrics
}

func (c EngineConfig) withDefaults() EngineConfig {
	if c.GFDHour == 0 {
		c.GFDHour = defaultGFDHour
	}
	if c.Clock == nil {
		c.Clock = RealClock{}
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Metrics == nil {
		c.Metrics = NewMetrics(nil)
	}
	return c
}

// Engine is a price-time priority matching engine for a single
// instrument. Every public method acquires mu for its entire
// duration, per spec §5 — there is exactly one lock guarding bids,
// asks, orders and the pruner shutdown handshake.
type Engine struct {
	mu    sync.Mutex
	store *bookStore

	logger  *zap.Logger
	metrics *Metrics

	clock   Clock
	gfdHour int
	stopCh  chan struct{}
	stopped bool
	wg      sync.WaitGroup
}

// NewEngine constructs an engine and starts its GFD pruner goroutine.
func NewEngine(cfg EngineConfig) *Engine {
	cfg = cfg.withDefaults()
	e := &Engine{
		store:   newBookStore(),
		logger:  cfg.Logger,
		metrics: cfg.Metrics,
		clock:   cfg.Clock,
		gfdHour: cfg.GFDHour,
		stopCh:  make(chan struct{}),
	}
	e.wg.Add(1)
	go e.runGFDPruner()
	return e
}

// Close signals the GFD pruner to exit and waits for it to do so. It
// must be responsive within one pruner wakeup regardless of how far
// from the GFD deadline the engine currently is (spec §5).
func (e *Engine) Close() {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return
	}
	e.stopped = true
	e.mu.Unlock()

	close(e.stopCh)
	e.wg.Wait()
}

// AddOrder admits order per spec §4.3 and returns any trades it
// produced. Duplicate ids, non-crossing FAKs, and unfillable FOKs are
// benign no-ops: they return (nil, nil), never an error.
func (e *Engine) AddOrder(order *Order) Trades {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.addOrderLocked(order)
}

func (e *Engine) addOrderLocked(order *Order) Trades {
	if e.store.has(order.Id) {
		return nil
	}

	if order.Type == Market {
		if !e.convertMarketOrderLocked(order) {
			return nil
		}
	}

	if order.Type == FillAndKill && !e.canMatch(order.Side, order.Price) {
		e.logger.Debug("rejecting non-crossing FillAndKill", zap.Uint64("order_id", uint64(order.Id)))
		return nil
	}

	if order.Type == FillOrKill && !e.canFullyFill(order.Side, order.Price, order.Initial) {
		e.logger.Debug("rejecting unfillable FillOrKill", zap.Uint64("order_id", uint64(order.Id)))
		return nil
	}

	e.store.place(order)
	e.metrics.observeOrderPlaced()

	trades := e.matchOrders()
	e.metrics.observeTrades(trades)
	return trades
}

// convertMarketOrderLocked rewrites a Market order in place as a
// GoodTillCancel resting at the worst opposite price, per spec §4.3
// step 2. It reports false when there is nothing to trade against, in
// which case the order must be dropped without being placed.
func (e *Engine) convertMarketOrderLocked(order *Order) bool {
	if order.Side == Buy {
		price, level, ok := e.worstAsk()
		if !ok || level.empty() {
			return false
		}
		order.ToGoodTillCancel(price)
		return true
	}
	price, level, ok := e.worstBid()
	if !ok || level.empty() {
		return false
	}
	order.ToGoodTillCancel(price)
	return true
}

// worstAsk returns the highest resting ask price (the worst price for
// a marketable buy to sweep to).
func (e *Engine) worstAsk() (Price, *priceLevel, bool) {
	var price Price
	var level *priceLevel
	found := false
	e.store.asks.Reverse(func(p Price, l *priceLevel) bool {
		price, level, found = p, l, true
		return false
	})
	return price, level, found
}

// worstBid returns the lowest resting bid price (the worst price for a
// marketable sell to sweep to).
func (e *Engine) worstBid() (Price, *priceLevel, bool) {
	var price Price
	var level *priceLevel
	found := false
	e.store.bids.Scan(func(p Price, l *priceLevel) bool {
		price, level, found = p, l, true
		return false
	})
	return price, level, found
}

// CancelOrder removes id from the book. Unknown ids are a no-op.
func (e *Engine) CancelOrder(id OrderId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.cancelOrderLocked(id)
}

func (e *Engine) cancelOrderLocked(id OrderId) {
	if order, ok := e.store.removeByID(id); ok {
		e.store.dropLevelIfEmpty(order.Side, order.Price)
		e.metrics.observeOrderRemoved()
	}
}

// CancelOrders cancels every id in ids under a single lock acquisition,
// so the mutex is taken exactly once per batch. The GFD pruner does not
// call it; it runs the same lock-held cancelOrderLocked loop inside its
// own single acquisition.
func (e *Engine) CancelOrders(ids []OrderId) {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, id := range ids {
		e.cancelOrderLocked(id)
	}
}

// ModifyOrder is a cancel followed by an add that reuses the same id,
// preserving the order's original type and adopting the new
// side/price/quantity. Unknown ids are a no-op. Price-time priority is
// lost on modify by design (spec §4.3).
func (e *Engine) ModifyOrder(mod OrderModify) Trades {
	e.mu.Lock()
	defer e.mu.Unlock()

	loc, ok := e.store.orders[mod.Id]
	if !ok {
		return nil
	}
	originalType := loc.order.Type

	e.cancelOrderLocked(mod.Id)
	return e.addOrderLocked(mod.ToOrder(originalType))
}

// Size returns the current number of live orders.
func (e *Engine) Size() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.size()
}

// GetOrderInfos returns a deep-copy depth snapshot, safe to use after
// the lock is released.
func (e *Engine) GetOrderInfos() OrderbookLevelInfos {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store.snapshot()
}

// bidCount and askCount are test/harness conveniences answering "how
// many live orders rest on this side" without leaking store internals.
func (e *Engine) bidCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return countOrders(e.store.bids)
}

func (e *Engine) askCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return countOrders(e.store.asks)
}

func countOrders(tree interface {
	Scan(func(Price, *priceLevel) bool)
}) int {
	total := 0
	tree.Scan(func(_ Price, l *priceLevel) bool {
		total += l.len()
		return true
	})
	return total
}

// Clock abstracts "what time is it right now, in local wall-clock
// terms", per spec §9's recommendation for portability and testing.
type Clock interface {
	Now() time.Time
}

// RealClock is the production Clock backed by time.Now.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }
