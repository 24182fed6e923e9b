package engine

import (
	"math/rand"
	"testing"
)

func BenchmarkMatchThroughput(b *testing.B) {
	e := NewEngine(EngineConfig{})
	defer e.Close()

	rng := rand.New(rand.NewSource(42))

	orders := make([]*Order, b.N)
	for i := 0; i < b.N; i++ {
		orders[i] = randomBenchmarkOrder(rng, i)
	}

	var matched int

	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		matched += len(e.AddOrder(orders[i]))
	}

	b.StopTimer()
	if elapsed := b.Elapsed(); elapsed > 0 {
		b.ReportMetric(float64(matched)/elapsed.Seconds(), "trades/sec")
	}
}

func randomBenchmarkOrder(rng *rand.Rand, idx int) *Order {
	side := Side(rng.Intn(2))
	base := Price(10_000)
	width := Price(100)

	var price Price
	if side == Buy {
		price = base + Price(rng.Int63n(int64(width)))
	} else {
		price = base - Price(rng.Int63n(int64(width)))
		if price <= 0 {
			price = 1
		}
	}

	quantity := Quantity(rng.Int63n(5) + 1)
	id := OrderId(idx + 1)

	if rng.Intn(5) == 0 {
		return NewMarketOrder(id, side, quantity)
	}
	return NewOrder(GoodTillCancel, id, side, price, quantity)
}
