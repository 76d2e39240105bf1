// Package domain implements the dispatch coordinator: the order-lifecycle
// state machine that drives the risk guard and matching engine, and in
// front mode reconciles pre-matches with a downstream venue.
package domain

import (
	"github.com/shopspring/decimal"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

// ClientSink is the coordinator's only way of talking back to the trading
// client. It is always wired.
type ClientSink interface {
	SendOrderResponse(resp matching.OrderResponse)
	SendCancelResponse(resp matching.CancelResponse)
}

// VenueSink is the coordinator's way of talking to the downstream venue.
// Its presence at construction selects front mode over pure mode.
type VenueSink interface {
	ForwardOrder(order matching.Order) error
	ForwardCancel(cancel matching.CancelOrder) error
}

// VenueResponseKind classifies an inbound venue message per the payload
// shape it carries, not an explicit tag on the wire (the adapter that
// decodes the venue's JSON/gRPC payload is responsible for this
// classification; see internal/venue).
type VenueResponseKind string

const (
	VenueResponseExecution VenueResponseKind = "EXECUTION"
	VenueResponseCancel    VenueResponseKind = "CANCEL"
	VenueResponseConfirm   VenueResponseKind = "CONFIRM"
)

// VenueResponse is the coordinator's view of an asynchronous message
// arriving from the venue source, already classified by the adapter.
type VenueResponse struct {
	Kind VenueResponseKind

	ClOrderID     string
	OrigClOrderID string
	Market        matching.Market
	SecurityID    string
	Side          matching.Side
	Price         decimal.Decimal
	Qty           decimal.Decimal

	ShareholderID string

	// EXECUTION only.
	ExecID    string
	ExecQty   decimal.Decimal
	ExecPrice decimal.Decimal

	// CANCEL only; RejectCode != 0 marks the cancel as rejected (the maker
	// was already filled elsewhere at the venue).
	RejectCode int
	RejectText string
}
