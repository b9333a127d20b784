package event

import "time"

// MQ Topics
const (
	TopicTransaction  = "gift_events_transaction"
	TopicWithdrawal   = "gift_events_withdrawal"
	TopicVerification = "gift_events_verification"
	TopicAccount      = "gift_events_account"
	TopicAudit        = "gift_events_audit"
)

// AllTopics 供 CLI 与消费者校验 topic 参数
var AllTopics = []string{TopicTransaction, TopicWithdrawal, TopicVerification, TopicAccount, TopicAudit}

// GiftSentEvent 送礼成功
type GiftSentEvent struct {
	TransactionID string    `json:"transaction_id"`
	SenderID      string    `json:"sender_id"`
	CreatorID     string    `json:"creator_id"`
	GiftID        string    `json:"gift_id"`
	Amount        int64     `json:"amount"`
	AdminFee      int64     `json:"admin_fee"`
	CreatorAmount int64     `json:"creator_amount"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// WithdrawalRequestedEvent 提现申请进入人工审核
type WithdrawalRequestedEvent struct {
	WithdrawalID string    `json:"withdrawal_id"`
	CreatorID    string    `json:"creator_id"`
	Amount       int64     `json:"amount"`
	RiskLevel    string    `json:"risk_level"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// WithdrawalDecidedEvent 管理员审批完成
type WithdrawalDecidedEvent struct {
	WithdrawalID string    `json:"withdrawal_id"`
	CreatorID    string    `json:"creator_id"`
	Amount       int64     `json:"amount"`
	Status       string    `json:"status"`
	ReviewedBy   string    `json:"reviewed_by"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// VerificationUpdatedEvent 创作者认证状态变化 (预审或人工审核)
type VerificationUpdatedEvent struct {
	CreatorID  string    `json:"creator_id"`
	Handle     string    `json:"handle"`
	Followers  int64     `json:"followers"`
	Status     string    `json:"status"`
	ReviewedBy string    `json:"reviewed_by,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// AccountUpdatedEvent 账户状态或消费上限变化
type AccountUpdatedEvent struct {
	AccountID     string    `json:"account_id"`
	Status        string    `json:"status"`
	SpendingLimit *int64    `json:"spending_limit,omitempty"`
	UpdatedBy     string    `json:"updated_by"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// AuditAppendedEvent 审计日志追加
type AuditAppendedEvent struct {
	EntryID    string    `json:"entry_id"`
	Seq        int64     `json:"seq"`
	AdminID    string    `json:"admin_id"`
	Action     string    `json:"action"`
	TargetID   string    `json:"target"`
	Hash       string    `json:"hash"`
	OccurredAt time.Time `json:"occurred_at"`
}
