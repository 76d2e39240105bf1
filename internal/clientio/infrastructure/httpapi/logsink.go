package httpapi

import (
	"context"

	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// LogSink is the Coordinator's standing ClientSink: the one installed at
// construction time, as opposed to the per-request responseCollector the
// handler swaps in for the duration of one HandleNewOrderWith/
// HandleCancelWith call. It only matters for responses the coordinator
// emits outside of that window — the venue-response drain goroutine in
// front mode resolves a PendingMatch well after the HTTP request that
// created it has already returned, so there is no request left to carry
// that response back to. LogSink records it instead of dropping it; a
// production deployment would replace this with a push channel (SSE or
// websocket) keyed by shareholder/session.
type LogSink struct{}

func (LogSink) SendOrderResponse(resp matching.OrderResponse) {
	logger.Info(context.Background(), "order response (async)",
		"kind", resp.Kind, "clOrderId", resp.ClOrderID, "execId", resp.ExecID)
}

func (LogSink) SendCancelResponse(resp matching.CancelResponse) {
	logger.Info(context.Background(), "cancel response (async)",
		"kind", resp.Kind, "origClOrderId", resp.OrigClOrderID)
}
