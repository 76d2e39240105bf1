// Package kafkaingest drains the market-data topic and writes each
// decoded quote into the rediscache.Cache. It never sits on the hot path
// of matching: the engine's gate only ever reads the cache's last write.
package kafkaingest

import (
	"context"
	"errors"

	mddomain "github.com/wyfcoding/exchangecore/internal/marketdata/domain"
	"github.com/wyfcoding/exchangecore/internal/marketdata/infrastructure/rediscache"
	"github.com/wyfcoding/exchangecore/pkg/logger"
	"github.com/wyfcoding/exchangecore/pkg/mq"
)

// Consumer pulls {market, securityId, bidPrice, askPrice} JSON messages
// off a Kafka topic and stores them.
type Consumer struct {
	reader *mq.KafkaConsumer
	store  *rediscache.Cache
}

// New wraps an already-constructed KafkaConsumer.
func New(reader *mq.KafkaConsumer, store *rediscache.Cache) *Consumer {
	return &Consumer{reader: reader, store: store}
}

// Run drains messages until ctx is canceled or the reader is closed. A
// single malformed message is logged and skipped; it never stops the loop.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}

		var q mddomain.Quote
		if err := msg.UnmarshalPayload(&q); err != nil {
			logger.Warn(ctx, "market-data message malformed, skipped", "error", err)
			continue
		}

		if err := c.store.Store(ctx, q); err != nil {
			logger.Error(ctx, "market-data cache write failed", "market", q.Market, "securityId", q.SecurityID, "error", err)
		}
	}
}
