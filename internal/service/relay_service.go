package service

import (
	"context"
	"time"

	"gift-core/internal/service/mq"
	"gift-core/internal/store"
	"gift-core/pkg/clock"
	"gift-core/pkg/logger"
	"gift-core/pkg/monitor"

	"go.uber.org/zap"
)

// RelayService 负责将本地消息表的消息搬运到 MQ
type RelayService struct {
	outbox    store.Outbox
	producer  mq.Producer
	clock     clock.Clock
	interval  time.Duration
	batchSize int
}

func NewRelayService(outbox store.Outbox, producer mq.Producer, c clock.Clock, interval time.Duration, batchSize int) *RelayService {
	if interval <= 0 {
		interval = 500 * time.Millisecond // 500ms 轮询一次
	}
	if batchSize <= 0 {
		batchSize = 50
	}
	return &RelayService{
		outbox:    outbox,
		producer:  producer,
		clock:     c,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (s *RelayService) Start(ctx context.Context) {
	logger.Info("Outbox relay started", zap.Duration("interval", s.interval))
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Outbox relay stopped")
			return
		case <-ticker.C:
			if _, err := s.ProcessPending(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("Outbox relay batch failed", zap.Error(err))
			}
		}
	}
}

// ProcessPending 投递一批 PENDING 消息，返回成功投递的条数。
// 只有发送成功才标记 SENT => At-least-once，消费者需做好幂等
func (s *RelayService) ProcessPending(ctx context.Context) (int, error) {
	// 1. 获取一批 Pending 消息
	messages, err := s.outbox.PendingOutbox(ctx, s.batchSize)
	if err != nil {
		return 0, err
	}
	if len(messages) == 0 {
		return 0, nil
	}

	sent := 0
	for _, msg := range messages {
		// 2. 发送 MQ
		if err := s.producer.Publish(ctx, msg.Topic, msg.Key, msg.Payload); err != nil {
			monitor.Business.OutboxPublishedTotal.WithLabelValues(msg.Topic, "error").Inc()
			logger.Warn("Outbox publish failed", zap.String("id", msg.ID), zap.String("topic", msg.Topic), zap.Error(err))
			continue
		}

		// 3. 更新状态为 SENT，失败则下次重发
		if err := s.outbox.MarkOutboxSent(ctx, msg.ID, s.clock.Now()); err != nil {
			logger.Warn("Outbox mark sent failed", zap.String("id", msg.ID), zap.Error(err))
			continue
		}
		monitor.Business.OutboxPublishedTotal.WithLabelValues(msg.Topic, "ok").Inc()
		sent++
	}

	logger.Debug("Outbox batch relayed", zap.Int("pending", len(messages)), zap.Int("sent", sent))
	return sent, nil
}
