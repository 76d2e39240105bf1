// Package rediscache is the marketdata.Provider implementation backed by
// the pkg/cache Redis client: the last value kafkaingest wrote per
// instrument, read synchronously by the matching engine's gate.
package rediscache

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	mddomain "github.com/wyfcoding/exchangecore/internal/marketdata/domain"
	matching "github.com/wyfcoding/exchangecore/internal/matching/domain"
	"github.com/wyfcoding/exchangecore/pkg/cache"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// Cache wraps *cache.RedisCache with the marketdata key scheme.
type Cache struct {
	redis *cache.RedisCache
}

// New constructs a Cache over an already-dialed RedisCache.
func New(redis *cache.RedisCache) *Cache {
	return &Cache{redis: redis}
}

func key(market matching.Market, securityID string) string {
	return fmt.Sprintf("marketdata:%s:%s", market, securityID)
}

// Quote implements marketdata.domain.Provider.
func (c *Cache) Quote(market matching.Market, securityID string) (matching.MarketData, bool) {
	var q mddomain.Quote
	ctx := context.Background()
	found, err := c.redis.GetJSON(ctx, key(market, securityID), &q)
	if err != nil {
		logger.Error(ctx, "marketdata cache read failed", "market", market, "securityId", securityID, "error", err)
		return matching.MarketData{}, false
	}
	if !found {
		return matching.MarketData{}, false
	}

	bid, err := decimal.NewFromString(q.BidPrice)
	if err != nil {
		return matching.MarketData{}, false
	}
	ask, err := decimal.NewFromString(q.AskPrice)
	if err != nil {
		return matching.MarketData{}, false
	}
	return matching.MarketData{BidPrice: bid, AskPrice: ask}, true
}

// Store writes the latest quote for an instrument. Called by kafkaingest
// as it drains the market-data topic.
func (c *Cache) Store(ctx context.Context, q mddomain.Quote) error {
	return c.redis.SetJSON(ctx, key(q.Market, q.SecurityID), q, 0)
}
