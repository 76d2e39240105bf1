package domain

import (
	"github.com/shopspring/decimal"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

// PendingMatch is a provisional pre-match awaiting venue confirmation in
// front mode. It is created the instant match() reports at least one
// execution and destroyed once every passive-side cancel has returned and
// resolution has emitted its downstream effects.
type PendingMatch struct {
	ActiveOrder  matching.Order
	Executions   []matching.OrderResponse // passive-side reports from match()
	RemainingQty decimal.Decimal

	PendingCancelCount int
	ConfirmedIDs       map[string]struct{}
	RejectedIDs        map[string]struct{}
	RejectedQty        decimal.Decimal
}

func newPendingMatch(order matching.Order, result *matching.MatchResult) *PendingMatch {
	return &PendingMatch{
		ActiveOrder:        order,
		Executions:         result.Executions,
		RemainingQty:       result.RemainingQty,
		PendingCancelCount: len(result.Executions),
		ConfirmedIDs:       make(map[string]struct{}),
		RejectedIDs:        make(map[string]struct{}),
		RejectedQty:        decimal.Zero,
	}
}

// execQtyFor looks up the provisional fill quantity recorded against a
// given maker when it was matched, used to accumulate rejectedQty once the
// venue reports the maker was already filled elsewhere.
func (pm *PendingMatch) execQtyFor(makerID string) decimal.Decimal {
	for _, exec := range pm.Executions {
		if exec.ClOrderID == makerID {
			return exec.ExecQty
		}
	}
	return decimal.Zero
}
