package grpcgateway

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestJSONCodec_Name(t *testing.T) {
	if (jsonCodec{}).Name() != codecName {
		t.Fatalf("Name() = %q, want %q", (jsonCodec{}).Name(), codecName)
	}
}

func TestJSONCodec_MarshalUnmarshalRoundTrip(t *testing.T) {
	c := jsonCodec{}
	in := orderWire{
		ClOrderID:  "CL1",
		Market:     "XSHG",
		SecurityID: "600030",
		Side:       "BUY",
		Price:      decimal.NewFromInt(10),
		Qty:        decimal.NewFromInt(100),
	}

	raw, err := c.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var out orderWire
	if err := c.Unmarshal(raw, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if out.ClOrderID != in.ClOrderID || out.Market != in.Market ||
		out.SecurityID != in.SecurityID || out.Side != in.Side {
		t.Fatalf("round trip identifying fields mismatch: got %+v, want %+v", out, in)
	}
	if !out.Price.Equal(in.Price) || !out.Qty.Equal(in.Qty) {
		t.Fatalf("round trip decimal fields mismatch: got %+v, want %+v", out, in)
	}
}
