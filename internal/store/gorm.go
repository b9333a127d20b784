package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gift-core/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore PostgreSQL 实现。工作单元对应一个数据库事务，
// 读取时使用 SELECT ... FOR UPDATE 悲观锁
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Transaction(ctx context.Context, fn func(tx Tx) error) error {
	return s.db.WithContext(ctx).Transaction(func(gtx *gorm.DB) error {
		return fn(&gormTx{db: gtx})
	})
}

func (s *GormStore) Seeded(ctx context.Context) (bool, error) {
	var count int64
	if err := s.db.WithContext(ctx).Model(&model.Gift{}).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *GormStore) Seed(ctx context.Context, seed model.Seed) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		batches := []interface{}{
			&seed.EndUsers, &seed.Creators, &seed.Admins, &seed.Gifts,
			&seed.Transactions, &seed.Withdrawals, &seed.AuditLog,
		}
		for _, b := range batches {
			if err := tx.Create(b).Error; err != nil {
				return fmt.Errorf("seed: %w", err)
			}
		}
		wallet := model.PlatformWallet{ID: model.PlatformWalletID, Balance: seed.PlatformBalance, UpdatedAt: time.Now().UTC()}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"balance", "updated_at"}),
		}).Create(&wallet).Error
	})
}

func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// ---------------------------------------------------------------------------
// Reader

func (s *GormStore) GetAccount(ctx context.Context, id string) (model.Account, error) {
	db := s.db.WithContext(ctx)

	var u model.EndUser
	if err := db.First(&u, "id = ?", id).Error; err == nil {
		return &u, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var c model.Creator
	if err := db.First(&c, "id = ?", id).Error; err == nil {
		return &c, nil
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	var a model.Admin
	if err := db.First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (s *GormStore) ListEndUsers(ctx context.Context) ([]model.EndUser, error) {
	var out []model.EndUser
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) ListCreators(ctx context.Context) ([]model.Creator, error) {
	var out []model.Creator
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) ListAdmins(ctx context.Context) ([]model.Admin, error) {
	var out []model.Admin
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) ListGifts(ctx context.Context) ([]model.Gift, error) {
	var out []model.Gift
	err := s.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, err
}

func (s *GormStore) ListTransactions(ctx context.Context, f TransactionFilter) ([]model.Transaction, error) {
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if f.AccountID != "" {
		q = q.Where("sender_id = ? OR receiver_id = ?", f.AccountID, f.AccountID)
	}
	var out []model.Transaction
	err := q.Find(&out).Error
	return out, err
}

func (s *GormStore) ListWithdrawals(ctx context.Context, f WithdrawalFilter) ([]model.Withdrawal, error) {
	q := s.db.WithContext(ctx).Order("requested_at DESC").Order("id")
	if f.CreatorID != "" {
		q = q.Where("creator_id = ?", f.CreatorID)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var out []model.Withdrawal
	err := q.Find(&out).Error
	return out, err
}

func (s *GormStore) ListAuditLog(ctx context.Context) ([]model.AuditLogEntry, error) {
	var out []model.AuditLogEntry
	err := s.db.WithContext(ctx).Order("seq ASC").Find(&out).Error
	return out, err
}

func (s *GormStore) PlatformBalance(ctx context.Context) (int64, error) {
	var w model.PlatformWallet
	err := s.db.WithContext(ctx).First(&w, "id = ?", model.PlatformWalletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	return w.Balance, err
}

// ---------------------------------------------------------------------------
// Outbox

func (s *GormStore) PendingOutbox(ctx context.Context, limit int) ([]model.OutboxMessage, error) {
	var out []model.OutboxMessage
	// 每次取一批，避免内存爆炸
	err := s.db.WithContext(ctx).
		Where("status = ?", model.OutboxPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&out).Error
	return out, err
}

func (s *GormStore) MarkOutboxSent(ctx context.Context, id string, at time.Time) error {
	res := s.db.WithContext(ctx).Model(&model.OutboxMessage{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{"status": model.OutboxSent, "updated_at": at})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ---------------------------------------------------------------------------
// gormTx

type gormTx struct {
	db *gorm.DB
}

func (t *gormTx) locked() *gorm.DB {
	return t.db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func (t *gormTx) Account(id string) (model.Account, error) {
	if u, err := t.EndUser(id); err == nil {
		return u, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	if c, err := t.Creator(id); err == nil {
		return c, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return t.Admin(id)
}

func (t *gormTx) EndUser(id string) (*model.EndUser, error) {
	var u model.EndUser
	if err := t.locked().First(&u, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (t *gormTx) Creator(id string) (*model.Creator, error) {
	var c model.Creator
	if err := t.locked().First(&c, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &c, nil
}

func (t *gormTx) Admin(id string) (*model.Admin, error) {
	var a model.Admin
	if err := t.locked().First(&a, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &a, nil
}

func (t *gormTx) Gift(id string) (*model.Gift, error) {
	var g model.Gift
	if err := t.db.First(&g, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &g, nil
}

func (t *gormTx) Withdrawal(id string) (*model.Withdrawal, error) {
	var w model.Withdrawal
	if err := t.locked().First(&w, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &w, nil
}

func (t *gormTx) PendingWithdrawalTotal(creatorID string) (int64, error) {
	var total int64
	err := t.db.Model(&model.Withdrawal{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("creator_id = ? AND status = ?", creatorID, model.WithdrawalPending).
		Scan(&total).Error
	return total, err
}

func (t *gormTx) PlatformWallet() (*model.PlatformWallet, error) {
	var w model.PlatformWallet
	err := t.locked().First(&w, "id = ?", model.PlatformWalletID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &model.PlatformWallet{ID: model.PlatformWalletID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

// LastAuditEntry 先锁平台钱包行，作为审计链追加的串行化点
func (t *gormTx) LastAuditEntry() (*model.AuditLogEntry, error) {
	if _, err := t.PlatformWallet(); err != nil {
		return nil, err
	}
	var entries []model.AuditLogEntry
	if err := t.db.Order("seq DESC").Limit(1).Find(&entries).Error; err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func (t *gormTx) SaveAccount(a model.Account) error {
	return t.db.Save(a).Error
}

func (t *gormTx) SavePlatformWallet(w *model.PlatformWallet) error {
	return t.db.Save(w).Error
}

func (t *gormTx) CreateTransaction(tr *model.Transaction) error {
	return t.db.Create(tr).Error
}

func (t *gormTx) CreateWithdrawal(w *model.Withdrawal) error {
	return t.db.Create(w).Error
}

func (t *gormTx) SaveWithdrawal(w *model.Withdrawal) error {
	return t.db.Save(w).Error
}

func (t *gormTx) AppendAudit(e *model.AuditLogEntry) error {
	return t.db.Create(e).Error
}

func (t *gormTx) AppendOutbox(m *model.OutboxMessage) error {
	return t.db.Create(m).Error
}
