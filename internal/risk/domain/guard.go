// Package domain implements the cross-trade risk guard: live per
// shareholder/instrument/side exposure used to detect self-trading before
// an order reaches the matching engine.
package domain

import (
	"github.com/shopspring/decimal"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

// Verdict is the outcome of checkOrder.
type Verdict string

const (
	Passed     Verdict = "PASSED"
	CrossTrade Verdict = "CROSS_TRADE"
)

type liveOrder struct {
	clOrderID string
	remaining decimal.Decimal
}

// Guard tracks, per (shareholderId, securityId, side), the live resting
// orders the coordinator has accepted on this order's behalf. It is the
// sole owner of this state; the matching engine's book is never consulted
// directly.
type Guard struct {
	// shareholderId -> securityId -> side -> live orders
	state map[string]map[string]map[matching.Side][]*liveOrder
}

// NewGuard constructs an empty risk guard.
func NewGuard() *Guard {
	return &Guard{state: make(map[string]map[string]map[matching.Side][]*liveOrder)}
}

func (g *Guard) sideList(shareholderID, securityID string, side matching.Side) []*liveOrder {
	bySecurity, ok := g.state[shareholderID]
	if !ok {
		return nil
	}
	bySide, ok := bySecurity[securityID]
	if !ok {
		return nil
	}
	return bySide[side]
}

// CheckOrder reports CROSS_TRADE if a live resting order exists with the
// same shareholderId and securityId on the opposite side with a positive
// remaining quantity. The price relationship is irrelevant.
func (g *Guard) CheckOrder(order matching.Order) Verdict {
	opposite := g.sideList(order.ShareholderID, order.SecurityID, order.Side.Opposite())
	for _, live := range opposite {
		if live.remaining.IsPositive() {
			return CrossTrade
		}
	}
	return Passed
}

// OnOrderAccepted registers the order with remaining = order.Qty.
func (g *Guard) OnOrderAccepted(order matching.Order) {
	bySecurity, ok := g.state[order.ShareholderID]
	if !ok {
		bySecurity = make(map[string]map[matching.Side][]*liveOrder)
		g.state[order.ShareholderID] = bySecurity
	}
	bySide, ok := bySecurity[order.SecurityID]
	if !ok {
		bySide = make(map[matching.Side][]*liveOrder)
		bySecurity[order.SecurityID] = bySide
	}
	bySide[order.Side] = append(bySide[order.Side], &liveOrder{clOrderID: order.ClOrderID, remaining: order.Qty})
}

// OnOrderExecuted subtracts execQty from the order's remaining, saturating
// at zero, and evicts the record once it reaches zero. Unknown ids are
// silently ignored.
func (g *Guard) OnOrderExecuted(clOrderID string, execQty decimal.Decimal) {
	g.mutate(clOrderID, func(live *liveOrder) {
		live.remaining = live.remaining.Sub(execQty)
		if live.remaining.IsNegative() {
			live.remaining = decimal.Zero
		}
	})
}

// OnOrderCanceled evicts the record for origClOrderId. Unknown ids are
// silently ignored.
func (g *Guard) OnOrderCanceled(origClOrderID string) {
	g.mutate(origClOrderID, nil)
}

// mutate locates the live order across all shareholder/security/side
// buckets and either applies fn, or — if fn is nil, or fn leaves the order
// at zero remaining — evicts it. Cardinality per bucket is expected to
// stay small, so a linear scan is acceptable.
func (g *Guard) mutate(clOrderID string, fn func(*liveOrder)) {
	for _, bySecurity := range g.state {
		for _, bySide := range bySecurity {
			for side, list := range bySide {
				for i, live := range list {
					if live.clOrderID != clOrderID {
						continue
					}
					if fn == nil {
						bySide[side] = append(list[:i], list[i+1:]...)
						return
					}
					fn(live)
					if live.remaining.IsZero() {
						bySide[side] = append(list[:i], list[i+1:]...)
					}
					return
				}
			}
		}
	}
}
