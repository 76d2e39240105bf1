// Package httpapi is the client-facing HTTP adapter: it decodes
// POST /orders and POST /cancels, drives the dispatch coordinator
// synchronously, and collects whatever responses the coordinator emits
// during that call into the HTTP response body.
package httpapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	dispatch "github.com/wyfcoding/exchangecore/internal/dispatch/domain"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	"github.com/wyfcoding/exchangecore/internal/wire"
	"github.com/wyfcoding/exchangecore/pkg/logger"
	"github.com/wyfcoding/exchangecore/pkg/metrics"
)

// Handler wires the coordinator into a gin router.
type Handler struct {
	coordinator *dispatch.Coordinator
	metrics     *metrics.Metrics
}

// New constructs a Handler over the given coordinator.
func New(coordinator *dispatch.Coordinator, m *metrics.Metrics) *Handler {
	return &Handler{coordinator: coordinator, metrics: m}
}

// Register mounts the order and cancel endpoints on r.
func (h *Handler) Register(r gin.IRouter) {
	r.POST("/orders", h.postOrder)
	r.POST("/cancels", h.postCancel)
}

// responseCollector is a dispatch.ClientSink that buffers the responses a
// single coordinator call emits, synchronously, for one HTTP reply. In
// front mode a single call can emit zero responses (the order was simply
// forwarded) and a later venue callback resolves the rest out-of-band.
type responseCollector struct {
	orders  []wire.OrderResponse
	cancels []wire.CancelResponse
}

func (rc *responseCollector) SendOrderResponse(resp matching.OrderResponse) {
	rc.orders = append(rc.orders, wire.EncodeOrderResponse(resp))
}

func (rc *responseCollector) SendCancelResponse(resp matching.CancelResponse) {
	rc.cancels = append(rc.cancels, wire.EncodeCancelResponse(resp))
}

func (h *Handler) postOrder(c *gin.Context) {
	var req wire.NewOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Info(c.Request.Context(), "order body did not bind cleanly", "error", err)
	}

	order, err := wire.ParseNewOrder(req)
	if err != nil {
		logger.Info(c.Request.Context(), "order parse failed", "clOrderId", req.ClOrderID, "error", err)
	}

	collector := &responseCollector{}
	h.coordinator.HandleNewOrderWith(order, collector)

	h.recordOrderMetrics(collector.orders)
	c.JSON(http.StatusOK, gin.H{"responses": collector.orders})
}

func (h *Handler) postCancel(c *gin.Context) {
	var req wire.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Info(c.Request.Context(), "cancel body did not bind cleanly", "error", err)
	}

	cancel := wire.ParseCancel(req)

	collector := &responseCollector{}
	h.coordinator.HandleCancelWith(cancel, collector)

	if h.metrics != nil {
		for _, r := range collector.cancels {
			if r.Kind == string(matching.CancelConfirm) {
				h.metrics.CancelsConfirmed.Inc()
			}
		}
	}
	c.JSON(http.StatusOK, gin.H{"responses": collector.cancels})
}

func (h *Handler) recordOrderMetrics(responses []wire.OrderResponse) {
	if h.metrics == nil {
		return
	}
	for _, r := range responses {
		switch matching.ResponseKind(r.Kind) {
		case matching.ResponseConfirm:
			h.metrics.OrdersAccepted.Inc()
		case matching.ResponseReject:
			h.metrics.OrdersRejected.WithLabelValues(strconv.Itoa(r.RejectCode)).Inc()
		case matching.ResponseExecution:
			h.metrics.ExecutionsTotal.Inc()
		}
	}
}
