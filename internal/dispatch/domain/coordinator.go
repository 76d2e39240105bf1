package domain

import (
	"fmt"
	"sync"

	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	risk "github.com/wyfcoding/exchangecore/internal/risk/domain"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// MarketDataProvider supplies the optional per-instrument reference quote
// consulted by the matching engine's crossing gate. A nil provider, or a
// miss, means "no constraint".
type MarketDataProvider interface {
	Quote(market matching.Market, securityID string) (matching.MarketData, bool)
}

const cancelIDPrefix = "CXL"

// Coordinator owns the policy for combining risk, matching, and — in front
// mode — round-tripping cancels with the downstream venue. It is the sole
// owner of the PendingMatch and reverse-map tables; the engine and guard
// never see each other directly.
type Coordinator struct {
	// mu serializes every entrypoint below. The matching/risk/dispatch
	// logic itself never spawns a goroutine or touches a channel, keeping
	// it single-threaded and cooperative; mu exists only to make that true
	// when multiple HTTP handler goroutines and the venue response drain
	// goroutine all call into the same Coordinator.
	mu sync.Mutex

	engine *matching.Engine
	guard  *risk.Guard

	clientSink ClientSink
	venueSink  VenueSink // nil selects pure mode
	marketData MarketDataProvider

	pending       map[string]*PendingMatch // keyed by activeOrder.ClOrderID
	makerToActive map[string]string        // makerId -> activeOrderId

	nextCancelID uint64
}

// New constructs a Coordinator. venueSink may be nil, in which case the
// coordinator runs in pure mode; marketData may be nil, in which case match
// runs with no reference-quote constraint.
func New(engine *matching.Engine, guard *risk.Guard, clientSink ClientSink, venueSink VenueSink, marketData MarketDataProvider) *Coordinator {
	return &Coordinator{
		engine:        engine,
		guard:         guard,
		clientSink:    clientSink,
		venueSink:     venueSink,
		marketData:    marketData,
		pending:       make(map[string]*PendingMatch),
		makerToActive: make(map[string]string),
		nextCancelID:  1,
	}
}

// FrontMode reports whether a venue sink is wired.
func (c *Coordinator) FrontMode() bool {
	return c.venueSink != nil
}

// PendingMatchCount reports how many PendingMatch records are currently
// awaiting venue cancel confirmation, for the pending_matches_active gauge.
func (c *Coordinator) PendingMatchCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// HandleNewOrderWith runs HandleNewOrder with sink installed as the
// client sink for the duration of the call, then restores the standing
// sink. The HTTP adapter uses this to collect exactly the responses one
// request's call produces, under the same lock as every other entrypoint.
func (c *Coordinator) HandleNewOrderWith(order matching.Order, sink ClientSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	standing := c.clientSink
	c.clientSink = sink
	defer func() { c.clientSink = standing }()
	c.handleNewOrder(order)
}

// HandleCancelWith is HandleNewOrderWith's counterpart for cancels.
func (c *Coordinator) HandleCancelWith(cancel matching.CancelOrder, sink ClientSink) {
	c.mu.Lock()
	defer c.mu.Unlock()
	standing := c.clientSink
	c.clientSink = sink
	defer func() { c.clientSink = standing }()
	c.handleCancel(cancel)
}

func (c *Coordinator) nextCancelId() string {
	id := fmt.Sprintf("%s%016d", cancelIDPrefix, c.nextCancelID)
	c.nextCancelID++
	return id
}

func (c *Coordinator) quoteFor(order matching.Order) *matching.MarketData {
	if c.marketData == nil {
		return nil
	}
	md, ok := c.marketData.Quote(order.Market, order.SecurityID)
	if !ok {
		return nil
	}
	return &md
}

// HandleNewOrder runs the full inbound new-order pipeline: validate,
// risk-check, match, then branch on whether a match occurred and on pure
// vs front mode.
func (c *Coordinator) HandleNewOrder(order matching.Order) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handleNewOrder(order)
}

func (c *Coordinator) handleNewOrder(order matching.Order) {
	if err := order.Validate(); err != nil {
		logger.Get().Warn("new order rejected: invalid format", "clOrderId", order.ClOrderID, "error", err)
		c.clientSink.SendOrderResponse(rejectOrder(order, matching.RejectCodeInvalidFormat))
		return
	}

	if c.guard.CheckOrder(order) == risk.CrossTrade {
		logger.Get().Info("new order rejected: cross trade", "clOrderId", order.ClOrderID, "shareholderId", order.ShareholderID, "securityId", order.SecurityID)
		c.clientSink.SendOrderResponse(rejectOrder(order, matching.RejectCodeCrossTrade))
		return
	}

	result := c.engine.Match(order, c.quoteFor(order))

	if result == nil {
		c.handleNoMatch(order)
		return
	}

	if c.venueSink == nil {
		c.handlePureMatch(order, result)
		return
	}
	c.handleFrontMatch(order, result)
}

func (c *Coordinator) handleNoMatch(order matching.Order) {
	if c.venueSink == nil {
		c.engine.AddOrder(order)
		c.guard.OnOrderAccepted(order)
		logger.Get().Info("new order accepted, no match", "clOrderId", order.ClOrderID)
		c.clientSink.SendOrderResponse(confirmOrder(order))
		return
	}

	// Front mode: the book stays authoritative at the venue. The order is
	// never added locally; it is forwarded as-is and risk state is updated
	// so a same-shareholder opposite submitted before the venue responds is
	// still caught.
	c.guard.OnOrderAccepted(order)
	if err := c.venueSink.ForwardOrder(order); err != nil {
		logger.Get().Warn("forward order to venue failed", "clOrderId", order.ClOrderID, "error", err)
	}
}

func (c *Coordinator) handlePureMatch(order matching.Order, result *matching.MatchResult) {
	for _, exec := range result.Executions {
		c.guard.OnOrderExecuted(exec.ClOrderID, exec.ExecQty)
		c.guard.OnOrderExecuted(order.ClOrderID, exec.ExecQty)
		c.clientSink.SendOrderResponse(exec)
		c.clientSink.SendOrderResponse(activeSideReport(order, exec))
	}
	logger.Get().Info("new order matched", "clOrderId", order.ClOrderID, "executions", len(result.Executions), "remainingQty", result.RemainingQty)

	if result.RemainingQty.IsPositive() {
		residue := order
		residue.Qty = result.RemainingQty
		c.engine.AddOrder(residue)
		c.guard.OnOrderAccepted(residue)
		c.clientSink.SendOrderResponse(confirmOrder(residue))
	}
}

func (c *Coordinator) handleFrontMatch(order matching.Order, result *matching.MatchResult) {
	pm := newPendingMatch(order, result)
	c.pending[order.ClOrderID] = pm
	logger.Get().Info("new order pre-matched, awaiting venue cancels", "clOrderId", order.ClOrderID, "pendingCancelCount", pm.PendingCancelCount)

	for _, exec := range result.Executions {
		c.makerToActive[exec.ClOrderID] = order.ClOrderID
		cancel := matching.CancelOrder{
			ClOrderID:     c.nextCancelId(),
			OrigClOrderID: exec.ClOrderID,
			Market:        exec.Market,
			SecurityID:    exec.SecurityID,
			ShareholderID: exec.ShareholderID,
			Side:          exec.Side,
		}
		if err := c.venueSink.ForwardCancel(cancel); err != nil {
			logger.Get().Warn("forward pre-match cancel to venue failed", "origClOrderId", exec.ClOrderID, "error", err)
		}
	}
}

// HandleCancel runs the inbound cancel pipeline.
func (c *Coordinator) HandleCancel(cancel matching.CancelOrder) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handleCancel(cancel)
}

func (c *Coordinator) handleCancel(cancel matching.CancelOrder) {
	if c.venueSink == nil {
		resp := c.engine.CancelOrder(cancel.SecurityID, cancel.OrigClOrderID)
		c.guard.OnOrderCanceled(cancel.OrigClOrderID)
		if resp.Kind == matching.CancelReject && resp.RejectCode == matching.RejectCodeIndexInconsistency {
			logger.Get().Warn("index inconsistency repaired on cancel", "origClOrderId", cancel.OrigClOrderID)
		}
		c.clientSink.SendCancelResponse(resp)
		return
	}
	if err := c.venueSink.ForwardCancel(cancel); err != nil {
		logger.Get().Warn("forward cancel to venue failed", "origClOrderId", cancel.OrigClOrderID, "error", err)
	}
}

// HandleVenueResponse runs the inbound venue-response pipeline. It is
// only ever called in front mode.
func (c *Coordinator) HandleVenueResponse(resp VenueResponse) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch resp.Kind {
	case VenueResponseExecution:
		c.guard.OnOrderExecuted(resp.ClOrderID, resp.ExecQty)
		c.clientSink.SendOrderResponse(matching.OrderResponse{
			Kind:          matching.ResponseExecution,
			ClOrderID:     resp.ClOrderID,
			Market:        resp.Market,
			SecurityID:    resp.SecurityID,
			Side:          resp.Side,
			Price:         resp.Price,
			Qty:           resp.Qty,
			ShareholderID: resp.ShareholderID,
			ExecID:        resp.ExecID,
			ExecQty:       resp.ExecQty,
			ExecPrice:     resp.ExecPrice,
		})
	case VenueResponseCancel:
		if activeID, ok := c.makerToActive[resp.OrigClOrderID]; ok {
			c.resolvePendingCancel(activeID, resp)
			return
		}
		c.guard.OnOrderCanceled(resp.OrigClOrderID)
		kind := matching.CancelConfirm
		if resp.RejectCode != 0 {
			kind = matching.CancelReject
		}
		c.clientSink.SendCancelResponse(matching.CancelResponse{
			Kind:          kind,
			OrigClOrderID: resp.OrigClOrderID,
			Market:        resp.Market,
			SecurityID:    resp.SecurityID,
			ShareholderID: resp.ShareholderID,
			Side:          resp.Side,
			Price:         resp.Price,
			Qty:           resp.Qty,
			RejectCode:    resp.RejectCode,
			RejectText:    resp.RejectText,
		})
	default:
		// An orphan CONFIRM with no tracked cancel or pending match: forward
		// to the client as-is.
		c.clientSink.SendOrderResponse(matching.OrderResponse{
			Kind:          matching.ResponseConfirm,
			ClOrderID:     resp.ClOrderID,
			Market:        resp.Market,
			SecurityID:    resp.SecurityID,
			Side:          resp.Side,
			Price:         resp.Price,
			Qty:           resp.Qty,
			ShareholderID: resp.ShareholderID,
		})
	}
}

// resolvePendingCancel folds one venue cancel response into its
// PendingMatch and, once every passive-side cancel for that match has
// returned, resolves the match.
func (c *Coordinator) resolvePendingCancel(activeID string, resp VenueResponse) {
	delete(c.makerToActive, resp.OrigClOrderID)

	pm, ok := c.pending[activeID]
	if !ok {
		return
	}
	pm.PendingCancelCount--

	if resp.RejectCode != 0 {
		pm.RejectedIDs[resp.OrigClOrderID] = struct{}{}
		pm.RejectedQty = pm.RejectedQty.Add(pm.execQtyFor(resp.OrigClOrderID))
	} else {
		pm.ConfirmedIDs[resp.OrigClOrderID] = struct{}{}
	}

	if pm.PendingCancelCount > 0 {
		return
	}
	c.finalizePendingMatch(pm)
}

func (c *Coordinator) finalizePendingMatch(pm *PendingMatch) {
	delete(c.pending, pm.ActiveOrder.ClOrderID)

	for _, exec := range pm.Executions {
		if _, confirmed := pm.ConfirmedIDs[exec.ClOrderID]; !confirmed {
			continue
		}
		c.guard.OnOrderExecuted(exec.ClOrderID, exec.ExecQty)
		c.guard.OnOrderExecuted(pm.ActiveOrder.ClOrderID, exec.ExecQty)
		c.clientSink.SendOrderResponse(exec)
		c.clientSink.SendOrderResponse(activeSideReport(pm.ActiveOrder, exec))
	}

	unfilled := pm.RejectedQty.Add(pm.RemainingQty)
	if unfilled.IsPositive() {
		reforward := pm.ActiveOrder
		reforward.Qty = unfilled
		if err := c.venueSink.ForwardOrder(reforward); err != nil {
			logger.Get().Warn("re-forward unfilled residue to venue failed", "clOrderId", pm.ActiveOrder.ClOrderID, "error", err)
		}
	}

	c.guard.OnOrderAccepted(pm.ActiveOrder)
	logger.Get().Info("pending match resolved", "clOrderId", pm.ActiveOrder.ClOrderID, "confirmed", len(pm.ConfirmedIDs), "rejected", len(pm.RejectedIDs), "unfilled", unfilled)
}

func rejectOrder(order matching.Order, code int) matching.OrderResponse {
	return matching.OrderResponse{
		Kind:          matching.ResponseReject,
		ClOrderID:     order.ClOrderID,
		Market:        order.Market,
		SecurityID:    order.SecurityID,
		Side:          order.Side,
		Price:         order.Price,
		Qty:           order.Qty,
		ShareholderID: order.ShareholderID,
		RejectCode:    code,
		RejectText:    matching.RejectText(code),
	}
}

func confirmOrder(order matching.Order) matching.OrderResponse {
	return matching.OrderResponse{
		Kind:          matching.ResponseConfirm,
		ClOrderID:     order.ClOrderID,
		Market:        order.Market,
		SecurityID:    order.SecurityID,
		Side:          order.Side,
		Price:         order.Price,
		Qty:           order.Qty,
		ShareholderID: order.ShareholderID,
	}
}

// activeSideReport mirrors a maker's EXECUTION report for the taker,
// sharing the same execId/execQty/execPrice.
func activeSideReport(taker matching.Order, maker matching.OrderResponse) matching.OrderResponse {
	return matching.OrderResponse{
		Kind:          matching.ResponseExecution,
		ClOrderID:     taker.ClOrderID,
		Market:        taker.Market,
		SecurityID:    taker.SecurityID,
		Side:          taker.Side,
		Price:         taker.Price,
		Qty:           taker.Qty,
		ShareholderID: taker.ShareholderID,
		ExecID:        maker.ExecID,
		ExecQty:       maker.ExecQty,
		ExecPrice:     maker.ExecPrice,
	}
}
