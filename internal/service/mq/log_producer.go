package mq

import (
	"context"

	"gift-core/pkg/logger"

	"go.uber.org/zap"
)

// LogProducer 未配置 MQ 时使用，只把事件写进日志
type LogProducer struct{}

func NewLogProducer() *LogProducer {
	return &LogProducer{}
}

func (LogProducer) Publish(ctx context.Context, topic string, key string, payload []byte) error {
	logger.Debug("Event published", zap.String("topic", topic), zap.String("key", key), zap.ByteString("payload", payload))
	return nil
}

func (LogProducer) Close() error {
	return nil
}
