package domain

import "github.com/shopspring/decimal"

// ResponseKind tags the variant of an OrderResponse.
type ResponseKind string

const (
	ResponseConfirm   ResponseKind = "CONFIRM"
	ResponseReject    ResponseKind = "REJECT"
	ResponseExecution ResponseKind = "EXECUTION"
)

// Reject codes reported back to the client on an order rejection.
const (
	RejectCodeOrderNotFound      = 1
	RejectCodeIndexInconsistency = 2
	RejectCodeCrossTrade         = 3
	RejectCodeInvalidFormat      = 4
)

var rejectText = map[int]string{
	RejectCodeOrderNotFound:      "Order not found in book",
	RejectCodeIndexInconsistency: "Order index inconsistency",
	RejectCodeCrossTrade:         "Cross trade detected",
	RejectCodeInvalidFormat:      "Invalid order format",
}

// RejectText returns the canonical text for a reject code, keeping the
// (code, text) pair from drifting apart.
func RejectText(code int) string {
	return rejectText[code]
}

// OrderResponse is a tagged record echoing the identifying fields of the
// order it reports on.
type OrderResponse struct {
	Kind ResponseKind

	ClOrderID     string
	Market        Market
	SecurityID    string
	Side          Side
	Price         decimal.Decimal
	Qty           decimal.Decimal
	ShareholderID string

	// EXECUTION only.
	ExecID    string
	ExecQty   decimal.Decimal
	ExecPrice decimal.Decimal

	// REJECT only.
	RejectCode int
	RejectText string
}

// CancelResponseKind tags the variant of a CancelResponse.
type CancelResponseKind string

const (
	CancelConfirm CancelResponseKind = "CONFIRM"
	CancelReject  CancelResponseKind = "REJECT"
)

// CancelResponse reports the outcome of a CancelOrder.
type CancelResponse struct {
	Kind CancelResponseKind

	ClOrderID     string
	OrigClOrderID string
	Market        Market
	SecurityID    string
	ShareholderID string
	Side          Side
	Price         decimal.Decimal
	Qty           decimal.Decimal

	// CONFIRM only.
	CumQty      decimal.Decimal
	CanceledQty decimal.Decimal

	// REJECT only.
	RejectCode int
	RejectText string
}

// MatchResult is returned by Engine.Match when at least one execution
// occurred. A nil *MatchResult means no match was found.
type MatchResult struct {
	Executions   []OrderResponse
	RemainingQty decimal.Decimal
}
