package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	risk "github.com/wyfcoding/exchangecore/internal/risk/domain"
)

type fakeClientSink struct {
	orders  []matching.OrderResponse
	cancels []matching.CancelResponse
}

func (f *fakeClientSink) SendOrderResponse(resp matching.OrderResponse)   { f.orders = append(f.orders, resp) }
func (f *fakeClientSink) SendCancelResponse(resp matching.CancelResponse) { f.cancels = append(f.cancels, resp) }

type fakeVenueSink struct {
	orders  []matching.Order
	cancels []matching.CancelOrder
}

func (f *fakeVenueSink) ForwardOrder(order matching.Order) error {
	f.orders = append(f.orders, order)
	return nil
}

func (f *fakeVenueSink) ForwardCancel(cancel matching.CancelOrder) error {
	f.cancels = append(f.cancels, cancel)
	return nil
}

func mkOrder(clOrderID string, side matching.Side, price, qty int64, shareholderID string) matching.Order {
	return matching.Order{
		ClOrderID:     clOrderID,
		Market:        matching.MarketXSHG,
		SecurityID:    "600030",
		Side:          side,
		Price:         decimal.NewFromInt(price),
		Qty:           decimal.NewFromInt(qty),
		ShareholderID: shareholderID,
	}
}

func newPureCoordinator() (*Coordinator, *fakeClientSink) {
	client := &fakeClientSink{}
	c := New(matching.NewEngine(), risk.NewGuard(), client, nil, nil)
	return c, client
}

// Scenario 1: exact match.
func TestHandleNewOrder_ExactMatch(t *testing.T) {
	c, client := newPureCoordinator()
	c.HandleNewOrder(mkOrder("1001", matching.SideBuy, 10, 1000, "SH001"))
	client.orders = nil

	c.HandleNewOrder(mkOrder("1002", matching.SideSell, 10, 1000, "SH002"))

	var execs []matching.OrderResponse
	for _, resp := range client.orders {
		if resp.Kind == matching.ResponseExecution {
			execs = append(execs, resp)
		}
	}
	if len(execs) != 2 {
		t.Fatalf("expected 2 execution reports (maker+taker), got %d", len(execs))
	}
	maker := execs[0]
	if maker.ClOrderID != "1001" || !maker.ExecQty.Equal(decimal.NewFromInt(1000)) || !maker.ExecPrice.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("unexpected maker execution: %+v", maker)
	}
}

// Scenario 2: price priority — best (lowest) ask fills first.
func TestHandleNewOrder_PricePriority(t *testing.T) {
	c, client := newPureCoordinator()
	c.HandleNewOrder(mkOrder("5001", matching.SideSell, 11, 500, "SH002"))
	c.HandleNewOrder(mkOrder("5002", matching.SideSell, 10, 500, "SH003"))
	client.orders = nil

	c.HandleNewOrder(mkOrder("5003", matching.SideBuy, 11, 500, "SH001"))

	found := false
	for _, resp := range client.orders {
		if resp.Kind == matching.ResponseExecution && resp.ClOrderID == "5002" {
			found = true
			if !resp.ExecPrice.Equal(decimal.NewFromInt(10)) {
				t.Fatalf("expected execPrice=10, got %s", resp.ExecPrice)
			}
		}
		if resp.Kind == matching.ResponseExecution && resp.ClOrderID == "5001" {
			t.Fatalf("5001 should not have matched before 5002")
		}
	}
	if !found {
		t.Fatal("expected an execution against 5002")
	}
}

// Scenario 3: odd-lot taker clamp.
func TestHandleNewOrder_OddLotTakerClamp(t *testing.T) {
	c, client := newPureCoordinator()
	c.HandleNewOrder(mkOrder("30001", matching.SideBuy, 10, 200, "SH001"))
	client.orders = nil

	c.HandleNewOrder(mkOrder("30002", matching.SideSell, 10, 150, "SH002"))

	var execQty, confirmQty decimal.Decimal
	for _, resp := range client.orders {
		if resp.Kind == matching.ResponseExecution && resp.ClOrderID == "30002" {
			execQty = resp.ExecQty
		}
		if resp.Kind == matching.ResponseConfirm && resp.ClOrderID == "30002" {
			confirmQty = resp.Qty
		}
	}
	if !execQty.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected execQty=100, got %s", execQty)
	}
	if !confirmQty.Equal(decimal.NewFromInt(50)) {
		t.Fatalf("expected residue confirm qty=50, got %s", confirmQty)
	}
}

// Scenario 4: multi-level sweep.
func TestHandleNewOrder_MultiLevelSweep(t *testing.T) {
	c, client := newPureCoordinator()
	mid := mkOrder("23002", matching.SideSell, 0, 400, "SH002")
	mid.Price = decimal.NewFromFloat(10.5)

	c.HandleNewOrder(mkOrder("23001", matching.SideSell, 10, 300, "SH001"))
	c.HandleNewOrder(mid)
	c.HandleNewOrder(mkOrder("23003", matching.SideSell, 11, 500, "SH003"))
	client.orders = nil

	c.HandleNewOrder(mkOrder("23004", matching.SideBuy, 11, 1200, "SH004"))

	var total decimal.Decimal
	for _, resp := range client.orders {
		if resp.Kind == matching.ResponseExecution && resp.ClOrderID != "23004" {
			total = total.Add(resp.ExecQty)
		}
	}
	if !total.Equal(decimal.NewFromInt(1200)) {
		t.Fatalf("expected total executed 1200, got %s", total)
	}
}

// Scenario 5: partial fill then cancel.
func TestHandleCancel_PartialFillThenCancel(t *testing.T) {
	c, client := newPureCoordinator()
	c.HandleNewOrder(mkOrder("17001", matching.SideBuy, 10, 1000, "SH001"))
	c.HandleNewOrder(mkOrder("17002", matching.SideSell, 10, 500, "SH002"))
	client.cancels = nil

	c.HandleCancel(matching.CancelOrder{ClOrderID: "17003", OrigClOrderID: "17001", SecurityID: "600030"})

	if len(client.cancels) != 1 {
		t.Fatalf("expected 1 cancel response, got %d", len(client.cancels))
	}
	resp := client.cancels[0]
	if resp.Kind != matching.CancelConfirm {
		t.Fatalf("expected CONFIRM, got %s: %s", resp.Kind, resp.RejectText)
	}
	if !resp.CumQty.Equal(decimal.NewFromInt(500)) || !resp.CanceledQty.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected cumQty=500 canceledQty=500, got cum=%s canceled=%s", resp.CumQty, resp.CanceledQty)
	}
}

// Scenario 6: cross-trade reject.
func TestHandleNewOrder_CrossTradeReject(t *testing.T) {
	c, client := newPureCoordinator()
	c.HandleNewOrder(mkOrder("1001", matching.SideBuy, 10, 1000, "SH001"))
	client.orders = nil

	c.HandleNewOrder(mkOrder("1002", matching.SideSell, 9, 500, "SH001"))

	if len(client.orders) != 1 {
		t.Fatalf("expected 1 response, got %d", len(client.orders))
	}
	resp := client.orders[0]
	if resp.Kind != matching.ResponseReject || resp.RejectCode != matching.RejectCodeCrossTrade {
		t.Fatalf("expected cross-trade reject, got %+v", resp)
	}

	if bid, _, hasBid, hasAsk := c.engine.BestPrices("600030"); !hasBid || hasAsk || !bid.Equal(decimal.NewFromInt(10)) {
		t.Fatalf("book should be unchanged: bid=%s hasBid=%v hasAsk=%v", bid, hasBid, hasAsk)
	}
}

func TestHandleNewOrder_InvalidFormatRejected(t *testing.T) {
	c, client := newPureCoordinator()
	bad := mkOrder("bad1", matching.SideBuy, 10, 150, "SH001") // not a round lot

	c.HandleNewOrder(bad)

	if len(client.orders) != 1 || client.orders[0].Kind != matching.ResponseReject || client.orders[0].RejectCode != matching.RejectCodeInvalidFormat {
		t.Fatalf("expected invalid-format reject, got %+v", client.orders)
	}
}

func TestHandleNewOrder_FrontMode_NoMatchForwardsToVenue(t *testing.T) {
	client := &fakeClientSink{}
	venue := &fakeVenueSink{}
	c := New(matching.NewEngine(), risk.NewGuard(), client, venue, nil)

	c.HandleNewOrder(mkOrder("9001", matching.SideBuy, 10, 1000, "SH001"))

	if len(venue.orders) != 1 || venue.orders[0].ClOrderID != "9001" {
		t.Fatalf("expected order forwarded to venue, got %+v", venue.orders)
	}
	if len(client.orders) != 0 {
		t.Fatalf("expected no client response until venue responds, got %+v", client.orders)
	}
}

func TestFrontMode_PendingMatchResolvesOnAllCancelsConfirmed(t *testing.T) {
	client := &fakeClientSink{}
	venue := &fakeVenueSink{}
	c := New(matching.NewEngine(), risk.NewGuard(), client, venue, nil)

	// Seed a resting maker directly into the engine (as if accepted earlier).
	maker := mkOrder("maker1", matching.SideSell, 10, 500, "SH002")
	c.engine.AddOrder(maker)
	c.guard.OnOrderAccepted(maker)

	taker := mkOrder("taker1", matching.SideBuy, 10, 500, "SH001")
	c.HandleNewOrder(taker)

	if len(venue.cancels) != 1 || venue.cancels[0].OrigClOrderID != "maker1" {
		t.Fatalf("expected a venue cancel for maker1, got %+v", venue.cancels)
	}
	if len(client.orders) != 0 {
		t.Fatalf("expected no client executions before venue cancel confirms, got %+v", client.orders)
	}

	c.HandleVenueResponse(VenueResponse{
		Kind:          VenueResponseCancel,
		OrigClOrderID: "maker1",
	})

	var execs []matching.OrderResponse
	for _, resp := range client.orders {
		if resp.Kind == matching.ResponseExecution {
			execs = append(execs, resp)
		}
	}
	if len(execs) != 2 {
		t.Fatalf("expected 2 execution reports after pending match resolves, got %d: %+v", len(execs), client.orders)
	}
	if _, stillPending := c.pending[taker.ClOrderID]; stillPending {
		t.Fatal("expected PendingMatch to be discarded after resolution")
	}
}

func TestFrontMode_PendingMatchRejectionReforwardsUnfilled(t *testing.T) {
	client := &fakeClientSink{}
	venue := &fakeVenueSink{}
	c := New(matching.NewEngine(), risk.NewGuard(), client, venue, nil)

	maker := mkOrder("maker1", matching.SideSell, 10, 500, "SH002")
	c.engine.AddOrder(maker)
	c.guard.OnOrderAccepted(maker)

	taker := mkOrder("taker1", matching.SideBuy, 10, 500, "SH001")
	c.HandleNewOrder(taker)
	venue.orders = nil

	c.HandleVenueResponse(VenueResponse{
		Kind:          VenueResponseCancel,
		OrigClOrderID: "maker1",
		RejectCode:    matching.RejectCodeOrderNotFound,
		RejectText:    matching.RejectText(matching.RejectCodeOrderNotFound),
	})

	if len(venue.orders) != 1 {
		t.Fatalf("expected the rejected quantity to be re-forwarded, got %+v", venue.orders)
	}
	if !venue.orders[0].Qty.Equal(decimal.NewFromInt(500)) {
		t.Fatalf("expected re-forwarded qty=500, got %s", venue.orders[0].Qty)
	}

	var execs []matching.OrderResponse
	for _, resp := range client.orders {
		if resp.Kind == matching.ResponseExecution {
			execs = append(execs, resp)
		}
	}
	if len(execs) != 0 {
		t.Fatalf("expected no execution reports when the maker's cancel was rejected, got %+v", execs)
	}
}
