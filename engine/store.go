package engine

import (
	"container/list"

	"github.com/tidwall/btree"
)

// btreeDegree is the tidwall/btree node fanout used for both sides of
// the book, matching the degree finalex uses for its own price-level
// trees (internal/trading/orderbook/orderbook.go).
const btreeDegree = 32

// bookStore holds the two-sided, price-ordered resting book plus the
// two indexes that make cancel and depth queries fast: orders (id ->
// stable handle) and levels (price -> aggregated count/quantity).
//
// Both bids and asks are stored ascending by Price; bids are read back
// via Reverse to get descending (best-bid-first) iteration, per
// tidwall/btree's Scan (ascending) / Reverse (descending) pair.
type bookStore struct {
	bids   *btree.Map[Price, *priceLevel]
	asks   *btree.Map[Price, *priceLevel]
	orders map[OrderId]*orderLocation
	levels levelIndex
}

func newBookStore() *bookStore {
	return &bookStore{
		bids:   btree.NewMap[Price, *priceLevel](btreeDegree),
		asks:   btree.NewMap[Price, *priceLevel](btreeDegree),
		orders: make(map[OrderId]*orderLocation),
		levels: make(levelIndex),
	}
}

func (s *bookStore) sideTree(side Side) *btree.Map[Price, *priceLevel] {
	if side == Buy {
		return s.bids
	}
	return s.asks
}

// has reports whether id currently names a live order.
func (s *bookStore) has(id OrderId) bool {
	_, ok := s.orders[id]
	return ok
}

// size is the number of live orders, i.e. |orders|.
func (s *bookStore) size() int { return len(s.orders) }

// place appends order to the tail of its side's queue at order.Price,
// creating the price level if absent, and updates both indexes.
func (s *bookStore) place(order *Order) *list.Element {
	tree := s.sideTree(order.Side)
	level, ok := tree.Get(order.Price)
	if !ok {
		level = newPriceLevel()
		tree.Set(order.Price, level)
	}
	handle := level.pushBack(order)
	s.orders[order.Id] = &orderLocation{order: order, handle: handle, side: order.Side, price: order.Price}
	s.levels.add(order.Price, order.Initial)
	return handle
}

// removeByID erases the order named by id from its queue, dropping the
// price level if it becomes empty, and returns the removed order.
func (s *bookStore) removeByID(id OrderId) (*Order, bool) {
	loc, ok := s.orders[id]
	if !ok {
		return nil, false
	}
	tree := s.sideTree(loc.side)
	level, ok := tree.Get(loc.price)
	if ok {
		level.remove(loc.handle)
		if level.empty() {
			tree.Delete(loc.price)
		}
	}
	delete(s.orders, id)
	s.levels.remove(loc.price, loc.order.Remaining)
	return loc.order, true
}

// dropLevelIfEmpty removes price from side's tree when its queue has
// drained to nothing; called by the matching loop after popping fills.
func (s *bookStore) dropLevelIfEmpty(side Side, price Price) {
	tree := s.sideTree(side)
	if level, ok := tree.Get(price); ok && level.empty() {
		tree.Delete(price)
	}
}

// bestBid returns the highest resting bid price and its queue.
func (s *bookStore) bestBid() (Price, *priceLevel, bool) {
	var price Price
	var level *priceLevel
	found := false
	s.bids.Reverse(func(p Price, l *priceLevel) bool {
		price, level, found = p, l, true
		return false
	})
	return price, level, found
}

// bestAsk returns the lowest resting ask price and its queue.
func (s *bookStore) bestAsk() (Price, *priceLevel, bool) {
	var price Price
	var level *priceLevel
	found := false
	s.asks.Scan(func(p Price, l *priceLevel) bool {
		price, level, found = p, l, true
		return false
	})
	return price, level, found
}

// snapshot deep-copies the current depth into an OrderbookLevelInfos,
// bids best-first (descending), asks best-first (ascending).
func (s *bookStore) snapshot() OrderbookLevelInfos {
	bids := make([]LevelInfo, 0, s.bids.Len())
	asks := make([]LevelInfo, 0, s.asks.Len())
	s.bids.Reverse(func(p Price, l *priceLevel) bool {
		bids = append(bids, LevelInfo{Price: p, Quantity: l.sumRemaining()})
		return true
	})
	s.asks.Scan(func(p Price, l *priceLevel) bool {
		asks = append(asks, LevelInfo{Price: p, Quantity: l.sumRemaining()})
		return true
	})
	return NewOrderbookLevelInfos(bids, asks)
}
