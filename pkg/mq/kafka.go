// Package mq provides a small Kafka consumer wrapper used by the
// market-data ingestion adapter.
package mq

import (
	"context"
	"encoding/json"
	"time"

	kafka "github.com/segmentio/kafka-go"
	"github.com/wyfcoding/exchangecore/pkg/logger"
)

// KafkaConfig configures a KafkaConsumer.
type KafkaConfig struct {
	Brokers        []string
	GroupID        string
	SessionTimeout int
}

// KafkaConsumer wraps *kafka.Reader with consistent error logging.
type KafkaConsumer struct {
	reader *kafka.Reader
}

// NewConsumer opens a consumer group reader against topic.
func NewConsumer(cfg KafkaConfig, topic string) *KafkaConsumer {
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        cfg.Brokers,
		Topic:          topic,
		GroupID:        cfg.GroupID,
		SessionTimeout: time.Duration(cfg.SessionTimeout) * time.Second,
		CommitInterval: time.Second,
		StartOffset:    kafka.LastOffset,
	})

	logger.Info(context.Background(), "kafka consumer created", "brokers", cfg.Brokers, "topic", topic, "group_id", cfg.GroupID)
	return &KafkaConsumer{reader: reader}
}

// Message is one decoded record read from the topic.
type Message struct {
	Key   string
	Value []byte
}

// UnmarshalPayload decodes the message value as JSON into dest.
func (m *Message) UnmarshalPayload(dest interface{}) error {
	return json.Unmarshal(m.Value, dest)
}

// ReadMessage blocks until the next message arrives or ctx is canceled.
func (kc *KafkaConsumer) ReadMessage(ctx context.Context) (*Message, error) {
	msg, err := kc.reader.ReadMessage(ctx)
	if err != nil {
		logger.Error(ctx, "kafka read failed", "error", err)
		return nil, err
	}
	return &Message{Key: string(msg.Key), Value: msg.Value}, nil
}

// Close releases the reader's connections.
func (kc *KafkaConsumer) Close() error {
	return kc.reader.Close()
}
