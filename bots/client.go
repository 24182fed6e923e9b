package bots

import (
	"context"
	"encoding/binary"
	"sync"
	"time"

	"github.com/google/uuid"

	"limitbook/engine"
)

// ThrottledClient wraps an *engine.Engine with basic rate limiting and
// bookkeeping, the way the teacher's ThrottledClient wrapped its OrderBook.
type ThrottledClient struct {
	engine   *engine.Engine
	throttle <-chan time.Time
	trades   chan engine.Trade

	mu    sync.Mutex
	owned map[engine.OrderId]struct{}
}

// NewThrottledClient builds a client around eng. throttle may be nil to
// submit without rate limiting.
func NewThrottledClient(eng *engine.Engine, throttle <-chan time.Time) *ThrottledClient {
	return &ThrottledClient{
		engine:   eng,
		throttle: throttle,
		trades:   make(chan engine.Trade, 256),
		owned:    make(map[engine.OrderId]struct{}),
	}
}

// Trades streams the fills returned by orders this client has submitted,
// for the supervisor's PnL tracker to consume. The channel buffers 256
// trades; a fill that arrives while the buffer is full is dropped.
func (c *ThrottledClient) Trades() <-chan engine.Trade {
	return c.trades
}

func (c *ThrottledClient) waitThrottle(ctx context.Context) error {
	if c.throttle == nil {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-c.throttle:
		return nil
	}
}

func (c *ThrottledClient) SubmitOrder(ctx context.Context, order *engine.Order) (engine.Trades, error) {
	if err := c.waitThrottle(ctx); err != nil {
		return nil, err
	}
	trades := c.engine.AddOrder(order)
	c.mu.Lock()
	c.owned[order.Id] = struct{}{}
	c.mu.Unlock()
	for _, t := range trades {
		select {
		case c.trades <- t:
		default:
		}
	}
	return trades, nil
}

func (c *ThrottledClient) CancelOrder(ctx context.Context, id engine.OrderId) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	c.engine.CancelOrder(id)
	return nil
}

func (c *ThrottledClient) Snapshot(ctx context.Context) (engine.OrderbookLevelInfos, error) {
	select {
	case <-ctx.Done():
		return engine.OrderbookLevelInfos{}, ctx.Err()
	default:
	}
	return c.engine.GetOrderInfos(), nil
}

// NextID mints a bot order id from a fresh UUID rather than a shared
// counter, so concurrently running bots never contend on a mutex just to
// pick an id.
func (c *ThrottledClient) NextID() engine.OrderId {
	id := uuid.New()
	return engine.OrderId(binary.BigEndian.Uint64(id[:8]))
}

func (c *ThrottledClient) OwnsOrder(id engine.OrderId) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.owned[id]
	return ok
}
