package model

import (
	"encoding/json"
	"time"
)

const (
	OutboxPending = "PENDING"
	OutboxSent    = "SENT"
)

// OutboxMessage 本地消息表 (Transactional Outbox)，与业务数据在同一个事务中写入
type OutboxMessage struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Topic     string    `gorm:"type:varchar(255);not null" json:"topic"`
	Key       string    `gorm:"type:varchar(64)" json:"key"`
	Payload   []byte    `gorm:"type:bytea;not null" json:"payload"`
	Status    string    `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}

// NewOutboxMessage 序列化 payload，key 用作 MQ 分区键 (通常是账户 ID)
func NewOutboxMessage(topic, key string, payload interface{}, now time.Time) (*OutboxMessage, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	return &OutboxMessage{
		ID:        NewID("msg"),
		Topic:     topic,
		Key:       key,
		Payload:   payloadBytes,
		Status:    OutboxPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}
