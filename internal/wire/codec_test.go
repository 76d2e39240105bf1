package wire

import (
	"testing"

	"github.com/shopspring/decimal"

	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

func TestParseNewOrder_Valid(t *testing.T) {
	req := NewOrderRequest{
		ClOrderID:     "10001",
		Market:        "XSHG",
		SecurityID:    "600030",
		Side:          "B",
		Price:         "10.50",
		Qty:           300,
		ShareholderID: "SH001",
	}

	order, err := ParseNewOrder(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Price.Equal(decimal.NewFromFloat(10.50)) {
		t.Fatalf("price = %s, want 10.50", order.Price)
	}
	if !order.Qty.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("qty = %s, want 300", order.Qty)
	}
	if order.Market != matching.MarketXSHG || order.Side != matching.SideBuy {
		t.Fatalf("market/side not parsed: %+v", order)
	}
}

func TestParseNewOrder_BadPrice(t *testing.T) {
	req := NewOrderRequest{ClOrderID: "10001", Price: "not-a-number", Qty: 300}
	order, err := ParseNewOrder(req)
	if err == nil {
		t.Fatal("expected error for unparseable price")
	}
	if order.ClOrderID != "10001" || !order.Qty.Equal(decimal.NewFromInt(300)) {
		t.Fatalf("expected best-effort order to keep other fields, got %+v", order)
	}
	if !order.Price.IsZero() {
		t.Fatalf("expected zero price on parse failure, got %s", order.Price)
	}
}

func TestParseNewOrder_MissingPriceLeavesZero(t *testing.T) {
	req := NewOrderRequest{ClOrderID: "10001", Side: "B", Qty: 300}
	order, err := ParseNewOrder(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !order.Price.IsZero() {
		t.Fatalf("expected zero price, got %s", order.Price)
	}
}

func TestParseNewOrder_UnrecognizedSideRejects(t *testing.T) {
	req := NewOrderRequest{ClOrderID: "10001", Market: "XSHG", SecurityID: "600030", Side: "X", Price: "10.5", Qty: 300, ShareholderID: "SH001"}
	order, err := ParseNewOrder(req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.Side != matching.Side("") {
		t.Fatalf("expected empty side for unrecognized wire value, got %q", order.Side)
	}
	if err := order.Validate(); err == nil {
		t.Fatal("expected validation failure for unrecognized side")
	}
}

func TestParseCancel_RoundTripsFields(t *testing.T) {
	req := CancelRequest{
		ClOrderID:     "10002",
		OrigClOrderID: "10001",
		Market:        "XSHE",
		SecurityID:    "000001",
		ShareholderID: "SH001",
		Side:          "S",
	}
	c := ParseCancel(req)
	if c.Market != matching.MarketXSHE || c.Side != matching.SideSell || c.OrigClOrderID != "10001" {
		t.Fatalf("unexpected cancel: %+v", c)
	}
}

func TestEncodeOrderResponse_Execution(t *testing.T) {
	r := matching.OrderResponse{
		Kind:       matching.ResponseExecution,
		ClOrderID:  "10001",
		Market:     matching.MarketXSHG,
		SecurityID: "600030",
		Side:       matching.SideBuy,
		Price:      decimal.NewFromFloat(10.5),
		Qty:        decimal.NewFromInt(300),
		ExecID:     "EXEC0000000000000001",
		ExecQty:    decimal.NewFromInt(300),
		ExecPrice:  decimal.NewFromFloat(10.5),
	}
	out := EncodeOrderResponse(r)
	if out.Kind != "EXECUTION" || out.Side != "B" || out.ExecID != "EXEC0000000000000001" || out.ExecQty != "300" {
		t.Fatalf("unexpected encoding: %+v", out)
	}
}

func TestEncodeOrderResponse_Reject_OmitsExecFields(t *testing.T) {
	r := matching.OrderResponse{
		Kind:       matching.ResponseReject,
		ClOrderID:  "10001",
		RejectCode: matching.RejectCodeCrossTrade,
		RejectText: matching.RejectText(matching.RejectCodeCrossTrade),
		Price:      decimal.Zero,
		Qty:        decimal.Zero,
	}
	out := EncodeOrderResponse(r)
	if out.ExecID != "" || out.ExecQty != "" {
		t.Fatalf("expected exec fields empty on reject, got %+v", out)
	}
	if out.RejectCode != matching.RejectCodeCrossTrade {
		t.Fatalf("reject code mismatch: %+v", out)
	}
}

func TestEncodeCancelResponse_Confirm(t *testing.T) {
	r := matching.CancelResponse{
		Kind:          matching.CancelConfirm,
		Side:          matching.SideSell,
		OrigClOrderID: "10001",
		Market:        matching.MarketXSHG,
		SecurityID:    "600030",
		CumQty:        decimal.NewFromInt(100),
		CanceledQty:   decimal.NewFromInt(200),
	}
	out := EncodeCancelResponse(r)
	if out.Side != "S" || out.CumQty != "100" || out.CanceledQty != "200" {
		t.Fatalf("unexpected encoding: %+v", out)
	}
}

func TestEncodeCancelResponse_Reject_OmitsQtyFields(t *testing.T) {
	r := matching.CancelResponse{
		Kind:          matching.CancelReject,
		OrigClOrderID: "10001",
		RejectCode:    matching.RejectCodeOrderNotFound,
		RejectText:    matching.RejectText(matching.RejectCodeOrderNotFound),
	}
	out := EncodeCancelResponse(r)
	if out.CumQty != "" || out.CanceledQty != "" {
		t.Fatalf("expected qty fields empty on reject, got %+v", out)
	}
}

func TestSideFromWire_UnrecognizedValueIsEmpty(t *testing.T) {
	if sideFromWire("") != matching.Side("") {
		t.Fatal("expected empty side for empty wire value")
	}
	if sideFromWire("BUY") != matching.Side("") {
		t.Fatal("expected domain-form side to not be accepted on the wire")
	}
}
