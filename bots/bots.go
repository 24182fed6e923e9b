// Package bots reproduces the teacher's synthetic order-flow generators
// against the new synchronous engine.Engine instead of the teacher's
// channel-actor OrderBook.
package bots

import (
	"context"

	"limitbook/engine"
)

// Bot represents a synthetic trading agent that can be run under a Supervisor.
type Bot interface {
	Start(ctx context.Context, client EngineClient)
}

// EngineClient abstracts the minimal surface bots need from the matching
// engine, the same separation the teacher drew between its OrderBook and
// the bots package.
type EngineClient interface {
	SubmitOrder(ctx context.Context, order *engine.Order) (engine.Trades, error)
	CancelOrder(ctx context.Context, id engine.OrderId) error
	Snapshot(ctx context.Context) (engine.OrderbookLevelInfos, error)
	NextID() engine.OrderId
	OwnsOrder(id engine.OrderId) bool
}
