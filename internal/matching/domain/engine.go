package domain

import (
	"container/list"
	"fmt"

	"github.com/shopspring/decimal"
)

const execIDPrefix = "EXEC"

var hundred = decimal.NewFromInt(lotSize)

// Engine owns every instrument's order book and the process-wide execId
// counter. It is the sole owner of book state; no other component reads or
// mutates it directly.
type Engine struct {
	books      map[string]*Book // keyed by SecurityID, partitioned per instrument
	nextExecID uint64
}

// NewEngine constructs an Engine with the execId counter initialized to 1.
func NewEngine() *Engine {
	return &Engine{
		books:      make(map[string]*Book),
		nextExecID: 1,
	}
}

func (e *Engine) bookFor(securityID string) *Book {
	b, ok := e.books[securityID]
	if !ok {
		b = newBook()
		e.books[securityID] = b
	}
	return b
}

func (e *Engine) nextExecId() string {
	id := fmt.Sprintf("%s%016d", execIDPrefix, e.nextExecID)
	e.nextExecID++
	return id
}

// Match runs pure matching against the opposite-side book for order's
// instrument. It never inserts order into the book. A nil result means no
// execution occurred at all.
func (e *Engine) Match(order Order, md *MarketData) *MatchResult {
	book := e.bookFor(order.SecurityID)

	remaining := order.Qty
	var executions []OrderResponse

	priceLimit := order.Price
	if md != nil {
		if order.Side == SideBuy && md.AskPrice.IsPositive() && md.AskPrice.LessThan(priceLimit) {
			priceLimit = md.AskPrice
		}
		if order.Side == SideSell && md.BidPrice.IsPositive() && md.BidPrice.GreaterThan(priceLimit) {
			priceLimit = md.BidPrice
		}
	}

	var emptied []*priceLevel
	visit := func(lvl *priceLevel) bool {
		if order.Side == SideBuy && order.Price.LessThan(lvl.price) {
			return false
		}
		if order.Side == SideSell && lvl.price.LessThan(order.Price) {
			return false
		}
		if order.Side == SideBuy && lvl.price.GreaterThan(priceLimit) {
			return false
		}
		if order.Side == SideSell && lvl.price.LessThan(priceLimit) {
			return false
		}

		var next *list.Element
		for elem := lvl.orders.Front(); elem != nil && remaining.IsPositive(); elem = next {
			next = elem.Next()
			maker := elem.Value.(*BookEntry)
			if maker.Order.SecurityID != order.SecurityID {
				continue
			}

			matchQty := clampOddLot(remaining, maker.RemainingQty)
			if !matchQty.IsPositive() {
				continue
			}

			execID := e.nextExecId()
			maker.RemainingQty = maker.RemainingQty.Sub(matchQty)
			maker.CumQty = maker.CumQty.Add(matchQty)
			remaining = remaining.Sub(matchQty)

			executions = append(executions, OrderResponse{
				Kind:          ResponseExecution,
				ClOrderID:     maker.Order.ClOrderID,
				Market:        maker.Order.Market,
				SecurityID:    maker.Order.SecurityID,
				Side:          maker.Order.Side,
				Price:         maker.Order.Price,
				Qty:           maker.Order.Qty,
				ShareholderID: maker.Order.ShareholderID,
				ExecID:        execID,
				ExecQty:       matchQty,
				ExecPrice:     maker.Order.Price,
			})

			if maker.RemainingQty.IsZero() {
				lvl.orders.Remove(elem)
				delete(book.index, maker.Order.ClOrderID)
			}
		}
		if lvl.orders.Len() == 0 {
			emptied = append(emptied, lvl)
		}
		return remaining.IsPositive()
	}

	if order.Side == SideBuy {
		book.ascendAsks(visit)
	} else {
		book.ascendBids(visit)
	}
	// Emptied levels leave the tree only after the ascent: deleting from a
	// btree while ascending it skips the level that follows.
	for _, lvl := range emptied {
		book.dropLevelIfEmpty(order.Side.Opposite(), lvl)
	}

	if len(executions) == 0 {
		return nil
	}
	return &MatchResult{Executions: executions, RemainingQty: remaining}
}

// clampOddLot applies round-lot protection: when both sides have at least
// a round lot available, the match is
// rounded down to the nearest round lot so a round-lot maker is never left
// with a sub-lot tail by a larger taker. An already-odd-lot maker (or an
// odd-lot taker smaller than a lot) is cleared in full.
func clampOddLot(takerRemaining, makerRemaining decimal.Decimal) decimal.Decimal {
	qty := decimal.Min(takerRemaining, makerRemaining)
	if takerRemaining.GreaterThanOrEqual(hundred) && makerRemaining.GreaterThanOrEqual(hundred) {
		qty = qty.Div(hundred).Floor().Mul(hundred)
	}
	return qty
}

// AddOrder inserts a new entry at the tail of its (side, price) level.
// Duplicate clOrderId is a no-op: the first insertion wins.
func (e *Engine) AddOrder(order Order) {
	book := e.bookFor(order.SecurityID)
	if _, exists := book.lookup(order.ClOrderID); exists {
		return
	}
	book.insert(newBookEntry(order))
}

// CancelOrder splices the target entry out of the book and index,
// returning a CONFIRM with the quantity that had filled and the quantity
// that remained, or a REJECT distinguishing "not found" from "index
// inconsistency" (unreachable in a correct implementation, but handled).
func (e *Engine) CancelOrder(securityID, clOrderID string) CancelResponse {
	book := e.bookFor(securityID)
	entry, ok := book.remove(clOrderID)
	if !ok {
		return CancelResponse{
			Kind:          CancelReject,
			OrigClOrderID: clOrderID,
			RejectCode:    RejectCodeOrderNotFound,
			RejectText:    RejectText(RejectCodeOrderNotFound),
		}
	}
	if entry == nil {
		// Unreachable: book.remove only returns ok=true with a non-nil entry.
		// Kept distinct from "not found" for diagnosability.
		return CancelResponse{
			Kind:          CancelReject,
			OrigClOrderID: clOrderID,
			RejectCode:    RejectCodeIndexInconsistency,
			RejectText:    RejectText(RejectCodeIndexInconsistency),
		}
	}
	entry.CanceledQty = entry.RemainingQty
	return CancelResponse{
		Kind:          CancelConfirm,
		OrigClOrderID: clOrderID,
		Market:        entry.Order.Market,
		SecurityID:    entry.Order.SecurityID,
		ShareholderID: entry.Order.ShareholderID,
		Side:          entry.Order.Side,
		Price:         entry.Order.Price,
		Qty:           entry.Order.Qty,
		CumQty:        entry.CumQty,
		CanceledQty:   entry.CanceledQty,
	}
}

// ReduceOrderQty decrements a maker's remaining quantity, used by
// front-mode reconciliation when the venue reports a resting order filled
// elsewhere. No-op if the order is not resting locally.
func (e *Engine) ReduceOrderQty(securityID, clOrderID string, qty decimal.Decimal) {
	book := e.bookFor(securityID)
	entry, ok := book.lookup(clOrderID)
	if !ok {
		return
	}
	if qty.GreaterThanOrEqual(entry.RemainingQty) {
		entry.CumQty = entry.CumQty.Add(entry.RemainingQty)
		entry.RemainingQty = decimal.Zero
		book.remove(clOrderID)
		return
	}
	entry.RemainingQty = entry.RemainingQty.Sub(qty)
	entry.CumQty = entry.CumQty.Add(qty)
}

// BestPrices exposes top-of-book for a security, used by tests asserting
// the non-crossing invariant.
func (e *Engine) BestPrices(securityID string) (bid, ask decimal.Decimal, hasBid, hasAsk bool) {
	book := e.bookFor(securityID)
	bid, hasBid = book.BestBid()
	ask, hasAsk = book.BestAsk()
	return
}
