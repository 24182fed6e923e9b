package bots

import "limitbook/engine"

// midPrice returns the midpoint of the best bid and best ask in infos, or
// whichever side is present if the book is one-sided, or zero if empty.
func midPrice(infos engine.OrderbookLevelInfos) engine.Price {
	var bid, ask engine.Price
	if bids := infos.Bids(); len(bids) > 0 {
		bid = bids[0].Price
	}
	if asks := infos.Asks(); len(asks) > 0 {
		ask = asks[0].Price
	}

	switch {
	case bid > 0 && ask > 0:
		return (bid + ask) / 2
	case bid > 0:
		return bid
	case ask > 0:
		return ask
	default:
		return 0
	}
}

func absPrice(v engine.Price) engine.Price {
	if v < 0 {
		return -v
	}
	return v
}
