package engine

import (
	"time"

	"go.uber.org/zap"
)

// defaultGFDHour is the local hour at which resting GoodForDay orders
// are pruned, per spec §4.4.
const defaultGFDHour = 16

// gfdSlack is added to the computed deadline so the pruner wakes
// slightly after the boundary rather than racing it.
const gfdSlack = 100 * time.Millisecond

// nextGFDDeadline computes the next prune instant: today's gfdHour:00
// local time, advanced a day if now has already reached that hour,
// plus gfdSlack.
func nextGFDDeadline(now time.Time, gfdHour int) time.Time {
	deadline := time.Date(now.Year(), now.Month(), now.Day(), gfdHour, 0, 0, 0, now.Location())
	if now.Hour() >= gfdHour {
		deadline = deadline.AddDate(0, 0, 1)
	}
	return deadline.Add(gfdSlack)
}

// runGFDPruner is the background worker of spec §4.4. Go's sync.Cond
// has no timed wait, so the "acquire lock, wait on the shutdown
// condvar with a deadline" handshake described in spec §5 is realized
// with a stop channel selected against a deadline timer instead; the
// pruner never holds the engine lock while sleeping, only while
// scanning and cancelling, which is a strictly smaller critical
// section than the spec's own textbook condition_variable would give
// it. See DESIGN.md.
func (e *Engine) runGFDPruner() {
	defer e.wg.Done()

	for {
		deadline := nextGFDDeadline(e.clock.Now(), e.gfdHour)
		timer := time.NewTimer(time.Until(deadline))

		select {
		case <-e.stopCh:
			timer.Stop()
			return
		case <-timer.C:
		}

		select {
		case <-e.stopCh:
			return
		default:
		}

		e.pruneGoodForDayLocked()
	}
}

// pruneGoodForDayLocked scans orders once under the engine lock and
// cancels every GoodForDay order through cancelOrderLocked while still
// holding it, so the lock is acquired exactly once for the whole sweep
// (spec §4.4, §9's reentrancy note).
func (e *Engine) pruneGoodForDayLocked() {
	e.mu.Lock()
	var ids []OrderId
	for id, loc := range e.store.orders {
		if loc.order.Type == GoodForDay {
			ids = append(ids, id)
		}
	}
	for _, id := range ids {
		e.cancelOrderLocked(id)
	}
	count := len(ids)
	e.mu.Unlock()

	if count > 0 {
		e.metrics.observeGFDPrune(count)
		e.logger.Info("pruned good-for-day orders", zap.Int("count", count))
	}
}
