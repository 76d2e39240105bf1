package grpcgateway

import (
	"github.com/shopspring/decimal"

	dispatch "github.com/wyfcoding/exchangecore/internal/dispatch/domain"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

// orderWire/cancelWire/venueResponseWire are the JSON frames exchanged
// with the venue over the connection's jsonCodec. decimal.Decimal already
// round-trips through encoding/json, so no string conversion is needed
// here (unlike internal/wire, which serves a plain-text HTTP client).

type orderWire struct {
	ClOrderID     string          `json:"clOrderId"`
	Market        matching.Market `json:"market"`
	SecurityID    string          `json:"securityId"`
	Side          matching.Side   `json:"side"`
	Price         decimal.Decimal `json:"price"`
	Qty           decimal.Decimal `json:"qty"`
	ShareholderID string          `json:"shareholderId"`
}

type cancelWire struct {
	ClOrderID     string          `json:"clOrderId"`
	OrigClOrderID string          `json:"origClOrderId"`
	Market        matching.Market `json:"market"`
	SecurityID    string          `json:"securityId"`
	ShareholderID string          `json:"shareholderId"`
	Side          matching.Side   `json:"side"`
}

type ackWire struct {
	OK bool `json:"ok"`
}

type venueResponseWire struct {
	Kind          string          `json:"kind"`
	ClOrderID     string          `json:"clOrderId"`
	OrigClOrderID string          `json:"origClOrderId"`
	Market        matching.Market `json:"market"`
	SecurityID    string          `json:"securityId"`
	Side          matching.Side   `json:"side"`
	Price         decimal.Decimal `json:"price"`
	Qty           decimal.Decimal `json:"qty"`
	ShareholderID string          `json:"shareholderId"`

	ExecID    string          `json:"execId,omitempty"`
	ExecQty   decimal.Decimal `json:"execQty,omitempty"`
	ExecPrice decimal.Decimal `json:"execPrice,omitempty"`

	RejectCode int    `json:"rejectCode,omitempty"`
	RejectText string `json:"rejectText,omitempty"`
}

// toDomain classifies the frame by its payload: an execId marks an
// execution, an origClOrderId a cancel response, anything else a confirm.
func (w venueResponseWire) toDomain() dispatch.VenueResponse {
	kind := dispatch.VenueResponseConfirm
	switch {
	case w.ExecID != "":
		kind = dispatch.VenueResponseExecution
	case w.OrigClOrderID != "":
		kind = dispatch.VenueResponseCancel
	}
	return dispatch.VenueResponse{
		Kind:          kind,
		ClOrderID:     w.ClOrderID,
		OrigClOrderID: w.OrigClOrderID,
		Market:        w.Market,
		SecurityID:    w.SecurityID,
		Side:          w.Side,
		Price:         w.Price,
		Qty:           w.Qty,
		ShareholderID: w.ShareholderID,
		ExecID:        w.ExecID,
		ExecQty:       w.ExecQty,
		ExecPrice:     w.ExecPrice,
		RejectCode:    w.RejectCode,
		RejectText:    w.RejectText,
	}
}
