package service

import (
	"context"

	"gift-core/internal/model"
	"gift-core/internal/store"
)

// 以下接口供 handler 层依赖，具体实现见同包的 *Service 结构体

type GiftLedger interface {
	// SendGift 校验发送方、创作者、礼物、消费上限与余额后，原子地完成三方记账
	SendGift(ctx context.Context, senderID, creatorID, giftID string) (*model.Transaction, error)
}

type WithdrawalWorkflow interface {
	// RequestWithdrawal 高风险直接拒绝且不落库，其余进入 pending
	RequestWithdrawal(ctx context.Context, creatorID string, amount int64) (*model.Withdrawal, error)
	// DecideWithdrawal 管理员审批，pending 只能离开一次
	DecideWithdrawal(ctx context.Context, withdrawalID string, decision Decision, adminID string) (*model.Withdrawal, error)
}

type VerificationWorkflow interface {
	SubmitVerification(ctx context.Context, creatorID, handle string) (*VerificationResult, error)
	ReviewCreator(ctx context.Context, creatorID string, decision model.VerificationStatus, adminID string) (*model.Creator, error)
}

type AccountAdmin interface {
	SetAccountStatus(ctx context.Context, accountID string, status model.AccountStatus, adminID string) (model.AccountView, error)
	SetSpendingLimit(ctx context.Context, userID string, limit int64, adminID string) (model.AccountView, error)
}

type Query interface {
	Account(ctx context.Context, id string) (model.AccountView, error)
	Accounts(ctx context.Context) ([]model.AccountView, error)
	Creators(ctx context.Context, discoverableOnly bool) ([]model.AccountView, error)
	Gifts(ctx context.Context) ([]model.Gift, error)
	Transactions(ctx context.Context, accountID string) ([]model.Transaction, error)
	Withdrawals(ctx context.Context, f store.WithdrawalFilter) ([]model.Withdrawal, error)
	AuditLog(ctx context.Context) ([]model.AuditLogEntry, error)
	VerifyAuditLog(ctx context.Context) (int, error)
	Stats(ctx context.Context) (*Stats, error)
}
