// Package domain implements the matching engine's order book: a
// price/time-priority limit book with partial fills, odd-lot rules and a
// maker-priced execution model.
package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Market is one of the venues this core can front or settle locally for.
type Market string

const (
	MarketXSHG Market = "XSHG"
	MarketXSHE Market = "XSHE"
	MarketBJSE Market = "BJSE"
)

// IsValid reports whether m is a recognized market.
func (m Market) IsValid() bool {
	switch m {
	case MarketXSHG, MarketXSHE, MarketBJSE:
		return true
	default:
		return false
	}
}

// Side is the direction of an order.
type Side string

const (
	SideBuy  Side = "BUY"
	SideSell Side = "SELL"
)

// Opposite returns the other side of the book.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

const lotSize = 100

// Order is an immutable admission record. A BookEntry is what the engine
// actually mutates; Order never changes after it is constructed.
type Order struct {
	ClOrderID     string
	Market        Market
	SecurityID    string
	Side          Side
	Price         decimal.Decimal
	Qty           decimal.Decimal
	ShareholderID string
}

// Validate enforces the admission invariants: positive price, positive
// quantity, and round-lot quantity for BUY orders.
func (o *Order) Validate() error {
	if o.ClOrderID == "" {
		return fmt.Errorf("missing clOrderId")
	}
	if !o.Market.IsValid() {
		return fmt.Errorf("unrecognized market %q", o.Market)
	}
	if o.SecurityID == "" {
		return fmt.Errorf("missing securityId")
	}
	if o.Side != SideBuy && o.Side != SideSell {
		return fmt.Errorf("invalid side %q", o.Side)
	}
	if o.ShareholderID == "" {
		return fmt.Errorf("missing shareholderId")
	}
	if !o.Price.IsPositive() {
		return fmt.Errorf("price must be positive")
	}
	if !o.Qty.IsPositive() {
		return fmt.Errorf("qty must be positive")
	}
	if o.Side == SideBuy && !isRoundLot(o.Qty) {
		return fmt.Errorf("buy qty %s is not a round lot", o.Qty)
	}
	return nil
}

func isRoundLot(qty decimal.Decimal) bool {
	return qty.Mod(decimal.NewFromInt(lotSize)).IsZero()
}

// CancelOrder targets a previously admitted order for removal.
type CancelOrder struct {
	ClOrderID     string // id of this cancel request
	OrigClOrderID string // id of the order being cancelled
	Market        Market
	SecurityID    string
	ShareholderID string
	Side          Side
}

// MarketData is an optional per-instrument reference quote used to
// constrain crossing prices. A zero BidPrice/AskPrice means "no constraint"
// for that side.
type MarketData struct {
	BidPrice decimal.Decimal
	AskPrice decimal.Decimal
}

// BookEntry is the engine's internal, mutable view of a resting Order.
// It is created by addOrder, mutated by match and reduceOrderQty, and
// removed once RemainingQty reaches zero or on cancel.
type BookEntry struct {
	Order         Order
	RemainingQty  decimal.Decimal
	CumQty        decimal.Decimal
	CanceledQty   decimal.Decimal
}

func newBookEntry(o Order) *BookEntry {
	return &BookEntry{
		Order:        o,
		RemainingQty: o.Qty,
		CumQty:       decimal.Zero,
		CanceledQty:  decimal.Zero,
	}
}
