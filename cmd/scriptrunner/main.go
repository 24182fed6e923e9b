// Command scriptrunner replays an order-book action script against the
// matching engine and checks its final state, the way the original
// project's InputHandler test harness replayed action files against its
// Orderbook: one action per line (A/M/C), then a required R line
// asserting the resulting counts (total orders, bid levels, ask levels).
// A script without an R line is an error.
//
// Line formats:
//
//	A <side> <orderType> <price> <quantity> <orderId>
//	M <orderId> <side> <price> <quantity>
//	C <orderId>
//	R <allCount> <bidCount> <askCount>
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"limitbook/engine"
)

func main() {
	scriptPath := flag.String("script", "", "path to the action script to replay")
	verbose := flag.Bool("v", false, "print each trade as it occurs")
	flag.Parse()

	if *scriptPath == "" {
		fmt.Fprintln(os.Stderr, "usage: scriptrunner -script <path>")
		os.Exit(2)
	}

	f, err := os.Open(*scriptPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer f.Close()

	eng := engine.NewEngine(engine.EngineConfig{})
	defer eng.Close()

	var expected *result
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "R") {
			r, err := parseResult(line)
			if err != nil {
				fatalf(lineNo, err)
			}
			expected = r
			break
		}

		trades, err := applyLine(eng, line)
		if err != nil {
			fatalf(lineNo, err)
		}
		if *verbose {
			for _, t := range trades {
				fmt.Printf("trade bid=%d ask=%d qty=%d\n", t.Bid.OrderId, t.Ask.OrderId, t.Bid.Quantity)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if expected == nil {
		fmt.Fprintln(os.Stderr, "no result line specified")
		os.Exit(1)
	}

	all := eng.Size()
	bids, asks := eng.GetOrderInfos().Bids(), eng.GetOrderInfos().Asks()
	if all != expected.all || len(bids) != expected.bids || len(asks) != expected.asks {
		fmt.Printf("FAIL: got all=%d bids=%d asks=%d, want all=%d bids=%d asks=%d\n",
			all, len(bids), len(asks), expected.all, expected.bids, expected.asks)
		os.Exit(1)
	}
	fmt.Printf("PASS: all=%d bids=%d asks=%d\n", all, len(bids), len(asks))
}

type result struct {
	all, bids, asks int
}

func applyLine(eng *engine.Engine, line string) (engine.Trades, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty line")
	}

	switch fields[0] {
	case "A":
		if len(fields) != 6 {
			return nil, fmt.Errorf("add action wants 5 fields, got %d", len(fields)-1)
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return nil, err
		}
		orderType, err := parseOrderType(fields[2])
		if err != nil {
			return nil, err
		}
		price, err := parsePrice(fields[3])
		if err != nil {
			return nil, err
		}
		quantity, err := parseQuantity(fields[4])
		if err != nil {
			return nil, err
		}
		id, err := parseOrderID(fields[5])
		if err != nil {
			return nil, err
		}

		var order *engine.Order
		if orderType == engine.Market {
			order = engine.NewMarketOrder(id, side, quantity)
		} else {
			order = engine.NewOrder(orderType, id, side, price, quantity)
		}
		return eng.AddOrder(order), nil

	case "M":
		if len(fields) != 5 {
			return nil, fmt.Errorf("modify action wants 4 fields, got %d", len(fields)-1)
		}
		id, err := parseOrderID(fields[1])
		if err != nil {
			return nil, err
		}
		side, err := parseSide(fields[2])
		if err != nil {
			return nil, err
		}
		price, err := parsePrice(fields[3])
		if err != nil {
			return nil, err
		}
		quantity, err := parseQuantity(fields[4])
		if err != nil {
			return nil, err
		}
		return eng.ModifyOrder(engine.OrderModify{Id: id, Side: side, Price: price, Quantity: quantity}), nil

	case "C":
		if len(fields) != 2 {
			return nil, fmt.Errorf("cancel action wants 1 field, got %d", len(fields)-1)
		}
		id, err := parseOrderID(fields[1])
		if err != nil {
			return nil, err
		}
		eng.CancelOrder(id)
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown action %q", fields[0])
	}
}

func parseResult(line string) (*result, error) {
	fields := strings.Fields(line)
	if len(fields) != 4 {
		return nil, fmt.Errorf("result line wants 3 fields, got %d", len(fields)-1)
	}
	all, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("parsing allCount: %w", err)
	}
	bids, err := strconv.Atoi(fields[2])
	if err != nil {
		return nil, fmt.Errorf("parsing bidCount: %w", err)
	}
	asks, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, fmt.Errorf("parsing askCount: %w", err)
	}
	return &result{all: all, bids: bids, asks: asks}, nil
}

func parseSide(s string) (engine.Side, error) {
	switch s {
	case "B":
		return engine.Buy, nil
	case "S":
		return engine.Sell, nil
	default:
		return 0, fmt.Errorf("unknown side %q", s)
	}
}

func parseOrderType(s string) (engine.OrderType, error) {
	switch s {
	case "FillAndKill":
		return engine.FillAndKill, nil
	case "GoodTillCancel":
		return engine.GoodTillCancel, nil
	case "GoodForDay":
		return engine.GoodForDay, nil
	case "FillOrKill":
		return engine.FillOrKill, nil
	case "Market":
		return engine.Market, nil
	default:
		return 0, fmt.Errorf("unknown order type %q", s)
	}
}

func parsePrice(s string) (engine.Price, error) {
	v, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing price: %w", err)
	}
	if v < 0 {
		return 0, fmt.Errorf("parsing price: value is below zero")
	}
	return engine.Price(v), nil
}

func parseQuantity(s string) (engine.Quantity, error) {
	v, err := strconv.ParseUint(s, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("parsing quantity: %w", err)
	}
	return engine.Quantity(v), nil
}

func parseOrderID(s string) (engine.OrderId, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing order id: %w", err)
	}
	return engine.OrderId(v), nil
}

func fatalf(lineNo int, err error) {
	fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNo, err)
	os.Exit(1)
}
