package engine

import (
	"fmt"
	"math"
)

// Price is a signed instrument-tick price. InvalidPrice is the sentinel
// used by Market orders before they are converted to a resting GTC price.
type Price int32

// InvalidPrice is outside the range any real order will ever carry.
const InvalidPrice Price = math.MinInt32

// Quantity is an order size in lots.
type Quantity uint32

// OrderId identifies a live order. It is unique across every order the
// engine currently holds.
type OrderId uint64

// Side is which book an order rests on.
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "Buy"
	}
	return "Sell"
}

// OrderType is the lifetime/execution discipline of an order.
type OrderType int

const (
	// GoodTillCancel rests until explicitly cancelled.
	GoodTillCancel OrderType = iota
	// FillAndKill executes what it can immediately and cancels the rest.
	FillAndKill
	// FillOrKill executes fully and immediately or does nothing.
	FillOrKill
	// GoodForDay rests until the daily GFD prune deadline.
	GoodForDay
	// Market executes against the best available opposite price; it is
	// converted to a GoodTillCancel order at the worst opposite price
	// before ever touching the book (see Engine.AddOrder).
	Market
)

func (t OrderType) String() string {
	switch t {
	case GoodTillCancel:
		return "GoodTillCancel"
	case FillAndKill:
		return "FillAndKill"
	case FillOrKill:
		return "FillOrKill"
	case GoodForDay:
		return "GoodForDay"
	case Market:
		return "Market"
	default:
		return "Unknown"
	}
}

// LogicError is a fatal, unrecoverable violation of an engine invariant —
// the caller-error class of spec §7 (overfilling an order, converting a
// non-Market order to GoodTillCancel). It is always raised via panic,
// never returned, since it indicates an engine bug rather than a
// condition callers can meaningfully react to.
type LogicError struct {
	OrderId OrderId
	Msg     string
}

func (e *LogicError) Error() string {
	return e.Msg
}

func newLogicError(id OrderId, format string, args ...any) *LogicError {
	return &LogicError{OrderId: id, Msg: fmt.Sprintf(format, args...)}
}

// Order is a live or about-to-be-placed order.
//
// Invariants: 0 <= Remaining <= Initial; Price == InvalidPrice iff
// Type == Market, and only transiently — a Market order is converted
// to GoodTillCancel before it is ever placed on the book.
type Order struct {
	Type      OrderType
	Id        OrderId
	Side      Side
	Price     Price
	Initial   Quantity
	Remaining Quantity
}

// NewOrder constructs a limit-style order (any type carrying a real price).
func NewOrder(orderType OrderType, id OrderId, side Side, price Price, quantity Quantity) *Order {
	return &Order{
		Type:      orderType,
		Id:        id,
		Side:      side,
		Price:     price,
		Initial:   quantity,
		Remaining: quantity,
	}
}

// NewMarketOrder constructs a Market order; its price is InvalidPrice
// until it is converted by the engine.
func NewMarketOrder(id OrderId, side Side, quantity Quantity) *Order {
	return NewOrder(Market, id, side, InvalidPrice, quantity)
}

// Filled reports whether the order has no remaining quantity.
func (o *Order) Filled() bool { return o.Remaining == 0 }

// FilledQuantity is the quantity executed so far.
func (o *Order) FilledQuantity() Quantity { return o.Initial - o.Remaining }

// Fill executes quantity units of the order.
//
// Panics with a *LogicError if quantity exceeds the remaining quantity —
// this can only happen if the matching loop mis-sized a trade, which is
// an engine bug, not a caller-recoverable condition.
func (o *Order) Fill(quantity Quantity) {
	if quantity > o.Remaining {
		panic(newLogicError(o.Id, "order (%d) cannot be filled with quantity (%d) greater than remaining quantity (%d)", o.Id, quantity, o.Remaining))
	}
	o.Remaining -= quantity
}

// ToGoodTillCancel rewrites a Market order in place as a resting
// GoodTillCancel order at price. Only Market orders may be converted.
//
// Panics with a *LogicError otherwise — converting a non-Market order
// is a caller/engine bug, not a runtime condition to recover from.
func (o *Order) ToGoodTillCancel(price Price) {
	if o.Type != Market {
		panic(newLogicError(o.Id, "order (%d) cannot have its price adjusted, only market orders can", o.Id))
	}
	o.Price = price
	o.Type = GoodTillCancel
}

// OrderModify is a request to replace an existing order's side, price
// and quantity while preserving its identity and (per spec §4.3)
// its original order type.
type OrderModify struct {
	Id       OrderId
	Side     Side
	Price    Price
	Quantity Quantity
}

// ToOrder builds a fresh Order from the modify request, adopting the
// given order type (the original order's type, fetched by the engine
// before the cancel half of the modify).
func (m OrderModify) ToOrder(orderType OrderType) *Order {
	return NewOrder(orderType, m.Id, m.Side, m.Price, m.Quantity)
}

// TradeInfo is one side's leg of a trade.
type TradeInfo struct {
	OrderId  OrderId
	Price    Price
	Quantity Quantity
}

// Trade pairs the bid-side and ask-side legs of a single match. Each
// leg carries its own resting price (see spec §9 / DESIGN.md) rather
// than a single clearing price.
type Trade struct {
	Bid TradeInfo
	Ask TradeInfo
}

// Trades is the result of a command that may have crossed the book.
type Trades []Trade

// LevelInfo is an aggregated price level: a price and the summed
// remaining quantity of every order resting there.
type LevelInfo struct {
	Price    Price
	Quantity Quantity
}

// OrderbookLevelInfos is an immutable depth snapshot, safe to use after
// the engine's lock has been released.
type OrderbookLevelInfos struct {
	bids []LevelInfo
	asks []LevelInfo
}

// NewOrderbookLevelInfos builds a snapshot from independently-owned
// slices; callers must not retain aliases into engine state.
func NewOrderbookLevelInfos(bids, asks []LevelInfo) OrderbookLevelInfos {
	return OrderbookLevelInfos{bids: bids, asks: asks}
}

// Bids returns the bid levels, best (highest price) first.
func (o OrderbookLevelInfos) Bids() []LevelInfo { return o.bids }

// Asks returns the ask levels, best (lowest price) first.
func (o OrderbookLevelInfos) Asks() []LevelInfo { return o.asks }
