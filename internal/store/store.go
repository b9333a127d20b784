package store

import (
	"context"
	"errors"
	"time"

	"gift-core/internal/model"
)

// ErrNotFound 记录不存在。服务层负责把它翻译成具体的业务错误码
var ErrNotFound = errors.New("record not found")

type TransactionFilter struct {
	// AccountID 匹配发送方或接收方，为空表示全部
	AccountID string
}

type WithdrawalFilter struct {
	CreatorID string
	Status    model.WithdrawalStatus
}

// Reader 只读投影，返回的都是副本
type Reader interface {
	GetAccount(ctx context.Context, id string) (model.Account, error)
	ListEndUsers(ctx context.Context) ([]model.EndUser, error)
	ListCreators(ctx context.Context) ([]model.Creator, error)
	ListAdmins(ctx context.Context) ([]model.Admin, error)
	ListGifts(ctx context.Context) ([]model.Gift, error)
	// ListTransactions 按时间倒序
	ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error)
	// ListWithdrawals 按申请时间倒序
	ListWithdrawals(ctx context.Context, f WithdrawalFilter) ([]model.Withdrawal, error)
	// ListAuditLog 按 Seq 升序，便于校验哈希链
	ListAuditLog(ctx context.Context) ([]model.AuditLogEntry, error)
	PlatformBalance(ctx context.Context) (int64, error)
}

// Tx 是一个工作单元内的读写视图。
// 读取的记录在工作单元结束前对其他写者不可见也不可修改
type Tx interface {
	Account(id string) (model.Account, error)
	EndUser(id string) (*model.EndUser, error)
	Creator(id string) (*model.Creator, error)
	Admin(id string) (*model.Admin, error)
	Gift(id string) (*model.Gift, error)
	Withdrawal(id string) (*model.Withdrawal, error)
	PendingWithdrawalTotal(creatorID string) (int64, error)
	PlatformWallet() (*model.PlatformWallet, error)
	// LastAuditEntry returns nil when the log is empty.
	LastAuditEntry() (*model.AuditLogEntry, error)

	SaveAccount(a model.Account) error
	SavePlatformWallet(w *model.PlatformWallet) error
	CreateTransaction(t *model.Transaction) error
	CreateWithdrawal(w *model.Withdrawal) error
	SaveWithdrawal(w *model.Withdrawal) error
	AppendAudit(e *model.AuditLogEntry) error
	AppendOutbox(m *model.OutboxMessage) error
}

// Outbox 供 RelayService 搬运消息
type Outbox interface {
	PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error)
	MarkOutboxSent(ctx context.Context, id string, at time.Time) error
}

type Store interface {
	Reader
	Outbox
	// Transaction 执行一个工作单元: fn 返回 error 时所有写入都被丢弃
	Transaction(ctx context.Context, fn func(tx Tx) error) error
	// Seeded reports whether the store already holds data.
	Seeded(ctx context.Context) (bool, error)
	Seed(ctx context.Context, s model.Seed) error
	Close() error
}
