package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

func newOrder(clOrderID string, side matching.Side, shareholderID, securityID string, qty int64) matching.Order {
	return matching.Order{
		ClOrderID:     clOrderID,
		Market:        matching.MarketXSHG,
		SecurityID:    securityID,
		Side:          side,
		Price:         decimal.NewFromInt(10),
		Qty:           decimal.NewFromInt(qty),
		ShareholderID: shareholderID,
	}
}

func TestCheckOrder_PassesWithNoOppositeExposure(t *testing.T) {
	g := NewGuard()
	order := newOrder("C1", matching.SideBuy, "SH1", "600000", 100)
	if v := g.CheckOrder(order); v != Passed {
		t.Fatalf("expected PASSED, got %s", v)
	}
}

func TestCheckOrder_CrossTradeSameShareholderOppositeSide(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideSell, "SH1", "600000", 200)
	g.OnOrderAccepted(resting)

	incoming := newOrder("C2", matching.SideBuy, "SH1", "600000", 100)
	if v := g.CheckOrder(incoming); v != CrossTrade {
		t.Fatalf("expected CROSS_TRADE, got %s", v)
	}
}

func TestCheckOrder_SameSideIsNotACrossTrade(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideBuy, "SH1", "600000", 200)
	g.OnOrderAccepted(resting)

	incoming := newOrder("C2", matching.SideBuy, "SH1", "600000", 100)
	if v := g.CheckOrder(incoming); v != Passed {
		t.Fatalf("expected PASSED, got %s", v)
	}
}

func TestCheckOrder_DifferentShareholderIsNotACrossTrade(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideSell, "SH1", "600000", 200)
	g.OnOrderAccepted(resting)

	incoming := newOrder("C2", matching.SideBuy, "SH2", "600000", 100)
	if v := g.CheckOrder(incoming); v != Passed {
		t.Fatalf("expected PASSED, got %s", v)
	}
}

func TestCheckOrder_DifferentSecurityIsNotACrossTrade(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideSell, "SH1", "600000", 200)
	g.OnOrderAccepted(resting)

	incoming := newOrder("C2", matching.SideBuy, "SH1", "000001", 100)
	if v := g.CheckOrder(incoming); v != Passed {
		t.Fatalf("expected PASSED, got %s", v)
	}
}

func TestOnOrderExecuted_FullyFilledOrderStopsBlockingCrossTrade(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideSell, "SH1", "600000", 100)
	g.OnOrderAccepted(resting)

	g.OnOrderExecuted("C1", decimal.NewFromInt(100))

	incoming := newOrder("C2", matching.SideBuy, "SH1", "600000", 100)
	if v := g.CheckOrder(incoming); v != Passed {
		t.Fatalf("expected PASSED after full fill, got %s", v)
	}
}

func TestOnOrderExecuted_PartialFillStillBlocksCrossTrade(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideSell, "SH1", "600000", 200)
	g.OnOrderAccepted(resting)

	g.OnOrderExecuted("C1", decimal.NewFromInt(100))

	incoming := newOrder("C2", matching.SideBuy, "SH1", "600000", 100)
	if v := g.CheckOrder(incoming); v != CrossTrade {
		t.Fatalf("expected CROSS_TRADE after partial fill, got %s", v)
	}
}

func TestOnOrderCanceled_RemovesExposure(t *testing.T) {
	g := NewGuard()
	resting := newOrder("C1", matching.SideSell, "SH1", "600000", 100)
	g.OnOrderAccepted(resting)

	g.OnOrderCanceled("C1")

	incoming := newOrder("C2", matching.SideBuy, "SH1", "600000", 100)
	if v := g.CheckOrder(incoming); v != Passed {
		t.Fatalf("expected PASSED after cancel, got %s", v)
	}
}

func TestOnOrderCanceled_UnknownIDIsNoOp(t *testing.T) {
	g := NewGuard()
	g.OnOrderCanceled("does-not-exist")
}
