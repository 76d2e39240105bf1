// Package wire decodes the client-facing JSON request bodies into
// matching.Order/matching.CancelOrder and encodes domain responses back
// to JSON.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
)

// NewOrderRequest is the wire shape of a client new-order submission.
// price is a JSON number and qty a JSON integer; a string in either
// position is a type mismatch, not an alternate encoding, and is left by
// gin's decoder as a zero value for ParseNewOrder/Validate to reject.
type NewOrderRequest struct {
	ClOrderID     string      `json:"clOrderId"`
	Market        string      `json:"market"`
	SecurityID    string      `json:"securityId"`
	Side          string      `json:"side"`
	Price         json.Number `json:"price"`
	Qty           int64       `json:"qty"`
	ShareholderID string      `json:"shareholderId"`
}

// UnmarshalJSON decodes price apart from the other fields, so that a price
// that is not a JSON number is left empty without stopping the rest of the
// body from being decoded.
func (r *NewOrderRequest) UnmarshalJSON(data []byte) error {
	type fields NewOrderRequest
	var aux struct {
		fields
		Price json.RawMessage `json:"price"`
	}
	err := json.Unmarshal(data, &aux)
	*r = NewOrderRequest(aux.fields)
	if len(aux.Price) > 0 && aux.Price[0] != '"' {
		_ = json.Unmarshal(aux.Price, &r.Price)
	}
	return err
}

// CancelRequest is the wire shape of a client cancel submission.
type CancelRequest struct {
	ClOrderID     string `json:"clOrderId"`
	OrigClOrderID string `json:"origClOrderId"`
	Market        string `json:"market"`
	SecurityID    string `json:"securityId"`
	ShareholderID string `json:"shareholderId"`
	Side          string `json:"side"`
}

// OrderResponse is the wire shape of an OrderResponse.
type OrderResponse struct {
	Kind          string `json:"kind"`
	ClOrderID     string `json:"clOrderId"`
	Market        string `json:"market"`
	SecurityID    string `json:"securityId"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Qty           string `json:"qty"`
	ShareholderID string `json:"shareholderId"`

	ExecID    string `json:"execId,omitempty"`
	ExecQty   string `json:"execQty,omitempty"`
	ExecPrice string `json:"execPrice,omitempty"`

	RejectCode int    `json:"rejectCode,omitempty"`
	RejectText string `json:"rejectText,omitempty"`
}

// CancelResponse is the wire shape of a CancelResponse.
type CancelResponse struct {
	Kind          string `json:"kind"`
	ClOrderID     string `json:"clOrderId"`
	OrigClOrderID string `json:"origClOrderId"`
	Market        string `json:"market"`
	SecurityID    string `json:"securityId"`
	ShareholderID string `json:"shareholderId"`
	Side          string `json:"side"`
	Price         string `json:"price"`
	Qty           string `json:"qty"`

	CumQty      string `json:"cumQty,omitempty"`
	CanceledQty string `json:"canceledQty,omitempty"`

	RejectCode int    `json:"rejectCode,omitempty"`
	RejectText string `json:"rejectText,omitempty"`
}

// sideFromWire translates the wire's "B"/"S" into the domain's BUY/SELL.
// Anything else decodes to the empty Side, which Order.Validate rejects.
func sideFromWire(s string) matching.Side {
	switch s {
	case "B":
		return matching.SideBuy
	case "S":
		return matching.SideSell
	default:
		return matching.Side("")
	}
}

// sideToWire is sideFromWire's inverse, used when encoding responses.
func sideToWire(s matching.Side) string {
	switch s {
	case matching.SideBuy:
		return "B"
	case matching.SideSell:
		return "S"
	default:
		return string(s)
	}
}

// ParseNewOrder decodes req into a matching.Order. It always returns a
// best-effort Order built from whatever fields req carries, even when
// price fails to parse as a decimal: the caller routes the result through
// the coordinator regardless, and Order.Validate turns a zero/missing
// price into a tagged REJECT carrying the order's identifying fields,
// rather than a transport-level error.
func ParseNewOrder(req NewOrderRequest) (matching.Order, error) {
	order := matching.Order{
		ClOrderID:     req.ClOrderID,
		Market:        matching.Market(req.Market),
		SecurityID:    req.SecurityID,
		Side:          sideFromWire(req.Side),
		Qty:           decimal.NewFromInt(req.Qty),
		ShareholderID: req.ShareholderID,
	}

	if req.Price == "" {
		return order, nil
	}
	price, err := decimal.NewFromString(req.Price.String())
	if err != nil {
		return order, fmt.Errorf("parse price: %w", err)
	}
	order.Price = price
	return order, nil
}

// ParseCancel decodes req into a matching.CancelOrder.
func ParseCancel(req CancelRequest) matching.CancelOrder {
	return matching.CancelOrder{
		ClOrderID:     req.ClOrderID,
		OrigClOrderID: req.OrigClOrderID,
		Market:        matching.Market(req.Market),
		SecurityID:    req.SecurityID,
		ShareholderID: req.ShareholderID,
		Side:          sideFromWire(req.Side),
	}
}

// EncodeOrderResponse converts a domain OrderResponse to its wire shape.
func EncodeOrderResponse(r matching.OrderResponse) OrderResponse {
	out := OrderResponse{
		Kind:          string(r.Kind),
		ClOrderID:     r.ClOrderID,
		Market:        string(r.Market),
		SecurityID:    r.SecurityID,
		Side:          sideToWire(r.Side),
		Price:         r.Price.String(),
		Qty:           r.Qty.String(),
		ShareholderID: r.ShareholderID,
		RejectCode:    r.RejectCode,
		RejectText:    r.RejectText,
	}
	if r.Kind == matching.ResponseExecution {
		out.ExecID = r.ExecID
		out.ExecQty = r.ExecQty.String()
		out.ExecPrice = r.ExecPrice.String()
	}
	return out
}

// EncodeCancelResponse converts a domain CancelResponse to its wire shape.
func EncodeCancelResponse(r matching.CancelResponse) CancelResponse {
	out := CancelResponse{
		Kind:          string(r.Kind),
		ClOrderID:     r.ClOrderID,
		OrigClOrderID: r.OrigClOrderID,
		Market:        string(r.Market),
		SecurityID:    r.SecurityID,
		ShareholderID: r.ShareholderID,
		Side:          sideToWire(r.Side),
		Price:         r.Price.String(),
		Qty:           r.Qty.String(),
		RejectCode:    r.RejectCode,
		RejectText:    r.RejectText,
	}
	if r.Kind == matching.CancelConfirm {
		out.CumQty = r.CumQty.String()
		out.CanceledQty = r.CanceledQty.String()
	}
	return out
}
