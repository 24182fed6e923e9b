package engine

// canMatch reports whether an incoming order at (side, price) is
// marketable against the current best opposite price (spec §4.3).
func (e *Engine) canMatch(side Side, price Price) bool {
	if side == Buy {
		askPrice, _, ok := e.store.bestAsk()
		return ok && price >= askPrice
	}
	bidPrice, _, ok := e.store.bestBid()
	return ok && price <= bidPrice
}

// canFullyFill reports whether an order of quantity at (side, price)
// can be completely satisfied by the currently resting opposite side.
//
// Precondition: canMatch(side, price) is true; otherwise this returns
// false immediately, per spec §4.3.
//
// Reachability, per spec: for a Buy at limit L, a level at price p is
// reachable iff p <= L and p >= best_ask; for a Sell at limit L, p >= L
// and p <= best_bid. The walk skips levels on the wrong side of the
// best opposite price first, then checks the limit, then accumulates —
// the specified resolution of the ambiguous grouping noted in spec §9.
func (e *Engine) canFullyFill(side Side, price Price, quantity Quantity) bool {
	if !e.canMatch(side, price) {
		return false
	}

	var accumulated Quantity
	if side == Buy {
		bestAsk, _, ok := e.store.bestAsk()
		if !ok {
			return false
		}
		e.store.asks.Scan(func(p Price, _ *priceLevel) bool {
			if p < bestAsk {
				return true
			}
			if p > price {
				return false
			}
			accumulated += e.store.levels.quantityAt(p)
			return accumulated < quantity
		})
	} else {
		bestBid, _, ok := e.store.bestBid()
		if !ok {
			return false
		}
		e.store.bids.Reverse(func(p Price, _ *priceLevel) bool {
			if p > bestBid {
				return true
			}
			if p < price {
				return false
			}
			accumulated += e.store.levels.quantityAt(p)
			return accumulated < quantity
		})
	}

	return accumulated >= quantity
}

// matchOrders drains every crossable level pair, emitting a Trade per
// executed fill, then cancels a resting FAK order left at the top of
// either side (spec §4.3 step 5).
func (e *Engine) matchOrders() Trades {
	var trades Trades

	for {
		bidPrice, bidLevel, hasBid := e.store.bestBid()
		askPrice, askLevel, hasAsk := e.store.bestAsk()
		if !hasBid || !hasAsk {
			break
		}
		if bidPrice < askPrice {
			break
		}

		for !bidLevel.empty() && !askLevel.empty() {
			bid := bidLevel.front()
			ask := askLevel.front()

			executed := bid.Remaining
			if ask.Remaining < executed {
				executed = ask.Remaining
			}

			bid.Fill(executed)
			ask.Fill(executed)

			trades = append(trades, Trade{
				Bid: TradeInfo{OrderId: bid.Id, Price: bid.Price, Quantity: executed},
				Ask: TradeInfo{OrderId: ask.Id, Price: ask.Price, Quantity: executed},
			})

			if bid.Filled() {
				bidLevel.popFront()
				delete(e.store.orders, bid.Id)
				e.store.levels.remove(bid.Price, executed)
				e.metrics.observeOrderRemoved()
			} else {
				e.store.levels.match(bid.Price, executed)
			}

			if ask.Filled() {
				askLevel.popFront()
				delete(e.store.orders, ask.Id)
				e.store.levels.remove(ask.Price, executed)
				e.metrics.observeOrderRemoved()
			} else {
				e.store.levels.match(ask.Price, executed)
			}
		}

		e.store.dropLevelIfEmpty(Buy, bidPrice)
		e.store.dropLevelIfEmpty(Sell, askPrice)
	}

	e.cancelFAKTail(Buy)
	e.cancelFAKTail(Sell)

	return trades
}

// cancelFAKTail cancels a resting FillAndKill order left at the top of
// side after the crossing loop stops, per spec §4.3 step 5. A
// non-crossing FAK never reaches here — it is rejected at admission.
func (e *Engine) cancelFAKTail(side Side) {
	var level *priceLevel
	var ok bool
	if side == Buy {
		_, level, ok = e.store.bestBid()
	} else {
		_, level, ok = e.store.bestAsk()
	}
	if !ok || level.empty() {
		return
	}
	top := level.front()
	if top.Type != FillAndKill {
		return
	}
	e.cancelOrderLocked(top.Id)
}
