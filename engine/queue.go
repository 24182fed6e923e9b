package engine

import "container/list"

// priceLevel is the FIFO of orders resting at a single price on a
// single side. New arrivals append at the tail; matching consumes from
// the head. container/list gives the stable node handle spec §9 calls
// for: inserting or removing elsewhere in the list never invalidates an
// existing *list.Element.
type priceLevel struct {
	orders *list.List // Value is *Order
}

func newPriceLevel() *priceLevel {
	return &priceLevel{orders: list.New()}
}

func (l *priceLevel) empty() bool { return l.orders.Len() == 0 }

func (l *priceLevel) len() int { return l.orders.Len() }

// pushBack appends order to the tail and returns its stable handle.
func (l *priceLevel) pushBack(order *Order) *list.Element {
	return l.orders.PushBack(order)
}

// front returns the order at the head of the queue, or nil if empty.
func (l *priceLevel) front() *Order {
	if e := l.orders.Front(); e != nil {
		return e.Value.(*Order)
	}
	return nil
}

// popFront removes and returns the order at the head of the queue.
func (l *priceLevel) popFront() *Order {
	e := l.orders.Front()
	if e == nil {
		return nil
	}
	return l.orders.Remove(e).(*Order)
}

// remove erases the node named by handle.
func (l *priceLevel) remove(handle *list.Element) {
	l.orders.Remove(handle)
}

// sumRemaining sums the remaining quantity of every resting order,
// used by GetOrderInfos to build a deep-copy depth snapshot.
func (l *priceLevel) sumRemaining() Quantity {
	var total Quantity
	for e := l.orders.Front(); e != nil; e = e.Next() {
		total += e.Value.(*Order).Remaining
	}
	return total
}

// orderLocation is what the orders id-index stores: the order itself,
// the stable handle into its queue, and enough context (side, price)
// to find its priceLevel with one tree lookup and erase the node in O(1).
type orderLocation struct {
	order  *Order
	handle *list.Element
	side   Side
	price  Price
}
