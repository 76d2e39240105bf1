package domain

import (
	"encoding/json"
	"testing"

	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

func TestQuote_JSONRoundTrip(t *testing.T) {
	q := Quote{
		Market:     matching.MarketXSHG,
		SecurityID: "600030",
		BidPrice:   "9.98",
		AskPrice:   "10.02",
	}

	raw, err := json.Marshal(q)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Quote
	if err := json.Unmarshal(raw, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got != q {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, q)
	}
}
