package model

import "time"

type WithdrawalStatus string

const (
	WithdrawalPending  WithdrawalStatus = "pending"
	WithdrawalApproved WithdrawalStatus = "approved"
	WithdrawalRejected WithdrawalStatus = "rejected"
)

type RiskLevel string

const (
	RiskLow    RiskLevel = "Low"
	RiskMedium RiskLevel = "Medium"
	RiskHigh   RiskLevel = "High"
)

func (r RiskLevel) Valid() bool {
	return r == RiskLow || r == RiskMedium || r == RiskHigh
}

// Withdrawal 提现申请。只允许 pending -> approved / rejected 一次
type Withdrawal struct {
	ID          string           `gorm:"primaryKey;type:varchar(64)" json:"id"`
	CreatorID   string           `gorm:"type:varchar(64);not null;index" json:"creator_id"`
	Amount      int64            `gorm:"not null;check:amount > 0" json:"amount"`
	Status      WithdrawalStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	RequestedAt time.Time        `gorm:"not null" json:"requested_at"`
	ReviewedBy  *string          `gorm:"type:varchar(64)" json:"reviewed_by,omitempty"`
	ReviewedAt  *time.Time       `json:"reviewed_at,omitempty"`
	RiskLevel   RiskLevel        `gorm:"type:varchar(10);not null" json:"risk_level"`
	RiskReason  string           `gorm:"type:text" json:"risk_reason"`
}

func (Withdrawal) TableName() string { return "withdrawals" }

func (w *Withdrawal) Terminal() bool {
	return w.Status == WithdrawalApproved || w.Status == WithdrawalRejected
}
