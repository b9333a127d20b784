package service

import (
	"context"
	"fmt"
	"time"

	"gift-core/internal/event"
	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/monitor"
)

// appendAudit 在调用方的工作单元内追加一条审计日志，并写入对应的 outbox 事件。
// LastAuditEntry 负责串行化，保证 Seq 连续
func appendAudit(tx store.Tx, now time.Time, adminID string, action model.AuditAction, targetID, details string) (*model.AuditLogEntry, error) {
	prev, err := tx.LastAuditEntry()
	if err != nil {
		return nil, err
	}

	entry := &model.AuditLogEntry{
		ID:        model.NewID("log"),
		AdminID:   adminID,
		Action:    action,
		TargetID:  targetID,
		Details:   details,
		CreatedAt: now,
	}
	entry.Seal(prev)
	if err := tx.AppendAudit(entry); err != nil {
		return nil, err
	}

	err = emit(tx, event.TopicAudit, adminID, event.AuditAppendedEvent{
		EntryID:    entry.ID,
		Seq:        entry.Seq,
		AdminID:    adminID,
		Action:     string(action),
		TargetID:   targetID,
		Hash:       entry.Hash,
		OccurredAt: now,
	}, now)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// emit 写入 outbox，由 RelayService 异步投递
func emit(tx store.Tx, topic, key string, payload interface{}, now time.Time) error {
	msg, err := model.NewOutboxMessage(topic, key, payload, now)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", topic, err)
	}
	return tx.AppendOutbox(msg)
}

func recordAudit(e *model.AuditLogEntry) {
	if e != nil {
		monitor.Business.AuditEntriesTotal.WithLabelValues(string(e.Action)).Inc()
	}
}

// AuditService 只读访问审计链
type AuditService struct {
	store store.Reader
}

func NewAuditService(s store.Reader) *AuditService {
	return &AuditService{store: s}
}

// Verify 重新计算整条哈希链，返回校验通过的条目数
func (s *AuditService) Verify(ctx context.Context) (int, error) {
	entries, err := s.store.ListAuditLog(ctx)
	if err != nil {
		return 0, err
	}
	if err := model.VerifyChain(entries); err != nil {
		return 0, err
	}
	return len(entries), nil
}
