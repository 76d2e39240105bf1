package grpcgateway

import (
	"testing"

	"github.com/shopspring/decimal"

	dispatch "github.com/wyfcoding/exchangecore/internal/dispatch/domain"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

func TestVenueResponseWire_ToDomain_Execution(t *testing.T) {
	w := venueResponseWire{
		Kind:          "EXECUTION",
		ClOrderID:     "CL1",
		Market:        matching.MarketXSHG,
		SecurityID:    "600030",
		Side:          matching.SideBuy,
		Price:         decimal.NewFromInt(10),
		Qty:           decimal.NewFromInt(100),
		ShareholderID: "SH1",
		ExecID:        "EXEC0000000000001",
		ExecQty:       decimal.NewFromInt(100),
		ExecPrice:     decimal.NewFromInt(10),
	}

	got := w.toDomain()

	if got.Kind != dispatch.VenueResponseExecution ||
		got.ClOrderID != "CL1" || got.Market != matching.MarketXSHG ||
		got.SecurityID != "600030" || got.Side != matching.SideBuy ||
		got.ShareholderID != "SH1" || got.ExecID != "EXEC0000000000001" {
		t.Fatalf("toDomain() identifying fields mismatch: %+v", got)
	}
	if !got.Price.Equal(decimal.NewFromInt(10)) || !got.Qty.Equal(decimal.NewFromInt(100)) ||
		!got.ExecQty.Equal(decimal.NewFromInt(100)) || !got.ExecPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("toDomain() decimal fields mismatch: %+v", got)
	}
}

func TestVenueResponseWire_ToDomain_Cancel(t *testing.T) {
	w := venueResponseWire{
		Kind:          "CANCEL",
		OrigClOrderID: "CL1",
	}

	got := w.toDomain()
	if got.Kind != dispatch.VenueResponseCancel {
		t.Fatalf("Kind = %q, want %q", got.Kind, dispatch.VenueResponseCancel)
	}
	if got.OrigClOrderID != "CL1" {
		t.Fatalf("OrigClOrderID = %q, want CL1", got.OrigClOrderID)
	}
}
