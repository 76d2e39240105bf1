// Package domain defines the market-data provider contract consumed by
// the matching engine's crossing gate.
package domain

import matching "github.com/wyfcoding/exchangecore/internal/matching/domain"

// Provider supplies the last-known reference quote for an instrument. A
// miss means "no constraint" and the engine's gate is a no-op.
type Provider interface {
	Quote(market matching.Market, securityID string) (matching.MarketData, bool)
}

// Quote is the ingestion-side record: the decoded shape of one Kafka
// market-data message, keyed by (Market, SecurityID) once cached.
type Quote struct {
	Market     matching.Market `json:"market"`
	SecurityID string          `json:"securityId"`
	BidPrice   string          `json:"bidPrice"`
	AskPrice   string          `json:"askPrice"`
}
