package bots

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"limitbook/engine"
)

// Supervisor orchestrates multiple bots against a shared throttled client
// and tracks their combined PnL, the way the teacher's Supervisor did
// against its channel-actor OrderBook.
type Supervisor struct {
	bots     []Bot
	client   *ThrottledClient
	pnl      *pnlTracker
	throttle *time.Ticker
	logger   *zap.Logger
}

// NewSupervisor builds a default swarm of bots and a throttled client
// wrapping eng.
func NewSupervisor(eng *engine.Engine, orderInterval time.Duration, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	throttle := time.NewTicker(orderInterval)
	client := NewThrottledClient(eng, throttle.C)
	bots := []Bot{
		NewRandomBidBot(),
		NewRandomAskBot(),
		NewRandomBidBot(),
		NewRandomAskBot(),
		NewSpreadCaptureBot(),
	}
	return &Supervisor{
		bots:     bots,
		client:   client,
		pnl:      &pnlTracker{},
		throttle: throttle,
		logger:   logger,
	}
}

// Start launches all bots and PnL monitoring until ctx is canceled.
func (s *Supervisor) Start(ctx context.Context) {
	logTicker := time.NewTicker(2 * time.Second)
	defer logTicker.Stop()
	defer s.throttle.Stop()

	for _, bot := range s.bots {
		b := bot
		go b.Start(ctx, s.client)
	}

	go s.consumeTrades(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-logTicker.C:
			pos, cash := s.pnl.Snapshot()
			s.logger.Info("bot pnl", zap.Int64("position", pos), zap.Int64("cash", cash))
		}
	}
}

func (s *Supervisor) consumeTrades(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case trade, ok := <-s.client.Trades():
			if !ok {
				return
			}
			s.pnl.Record(trade, s.client)
		}
	}
}

type pnlTracker struct {
	mu       sync.Mutex
	position int64
	cash     int64
}

func (p *pnlTracker) Record(trade engine.Trade, client EngineClient) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if client.OwnsOrder(trade.Bid.OrderId) {
		p.position += int64(trade.Bid.Quantity)
		p.cash -= int64(trade.Bid.Price) * int64(trade.Bid.Quantity)
	}
	if client.OwnsOrder(trade.Ask.OrderId) {
		p.position -= int64(trade.Ask.Quantity)
		p.cash += int64(trade.Ask.Price) * int64(trade.Ask.Quantity)
	}
}

func (p *pnlTracker) Snapshot() (int64, int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.position, p.cash
}
