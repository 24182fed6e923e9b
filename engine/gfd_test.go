package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextGFDDeadlineSameDay(t *testing.T) {
	now := time.Date(2026, 8, 6, 10, 0, 0, 0, time.UTC)
	deadline := nextGFDDeadline(now, 16)
	assert.Equal(t, time.Date(2026, 8, 6, 16, 0, 0, int(gfdSlack), time.UTC), deadline)
}

func TestNextGFDDeadlineRollsToNextDay(t *testing.T) {
	now := time.Date(2026, 8, 6, 16, 30, 0, 0, time.UTC)
	deadline := nextGFDDeadline(now, 16)
	assert.Equal(t, time.Date(2026, 8, 7, 16, 0, 0, int(gfdSlack), time.UTC), deadline)
}

func TestNextGFDDeadlineExactlyAtHour(t *testing.T) {
	now := time.Date(2026, 8, 6, 16, 0, 0, 0, time.UTC)
	deadline := nextGFDDeadline(now, 16)
	assert.Equal(t, time.Date(2026, 8, 7, 16, 0, 0, int(gfdSlack), time.UTC), deadline)
}

func TestPruneGoodForDayLockedCancelsOnlyGFD(t *testing.T) {
	e := newTestEngine(t)

	e.AddOrder(NewOrder(GoodForDay, 1, Buy, 100, 5))
	e.AddOrder(NewOrder(GoodTillCancel, 2, Buy, 99, 5))

	e.pruneGoodForDayLocked()

	require.Equal(t, 1, e.Size())
	infos := e.GetOrderInfos()
	require.Len(t, infos.Bids(), 1)
	assert.Equal(t, Price(99), infos.Bids()[0].Price)
}

// stubClock lets tests drive the pruner's deadline computation without
// waiting on the real wall clock.
type stubClock struct{ now time.Time }

func (c stubClock) Now() time.Time { return c.now }

func TestPrunerExitsPromptlyOnClose(t *testing.T) {
	// A deadline hours away must not delay shutdown: Close must return
	// once the pruner observes the stop channel, regardless of how far
	// off the next GFD sweep is.
	e := NewEngine(EngineConfig{Clock: stubClock{now: time.Now()}})

	done := make(chan struct{})
	go func() {
		e.Close()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Close did not return promptly")
	}
}
