package service

import (
	"context"
	"errors"
	"fmt"

	"gift-core/internal/event"
	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/clock"
	"gift-core/pkg/errno"
	"gift-core/pkg/logger"

	"go.uber.org/zap"
)

type AdminService struct {
	store store.Store
	clock clock.Clock
}

func NewAdminService(s store.Store, c clock.Clock) *AdminService {
	return &AdminService{store: s, clock: c}
}

// SetAccountStatus 封禁或恢复普通用户/创作者。状态未变化时直接返回，不写审计
func (s *AdminService) SetAccountStatus(ctx context.Context, accountID string, status model.AccountStatus, adminID string) (model.AccountView, error) {
	if !status.Valid() {
		return model.AccountView{}, errno.ErrInvalidStatus.Withf("Unknown account status %q", status)
	}

	now := s.clock.Now()
	var (
		view  model.AccountView
		entry *model.AuditLogEntry
	)
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		// 1. 操作人
		admin, err := loadAdmin(tx, adminID)
		if err != nil {
			return err
		}

		// 2. 目标账户，管理员账户不在此接口的管理范围内
		acc, err := tx.Account(accountID)
		if errors.Is(err, store.ErrNotFound) {
			return errno.ErrAccountNotFound.Withf("Account %s not found", accountID)
		}
		if err != nil {
			return err
		}
		if acc.Role() == model.RoleAdmin {
			return errno.ErrInvalidTarget.Withf("Account %s is an admin", accountID)
		}

		base := acc.Base()
		old := base.Status
		if old == status {
			view = model.View(acc)
			return nil
		}

		// 3. 更新 + 审计
		base.Status = status
		base.UpdatedAt = now
		if err := tx.SaveAccount(acc); err != nil {
			return err
		}
		view = model.View(acc)

		action := model.ActionSuspendUser
		if status == model.StatusActive {
			action = model.ActionActivateUser
		}
		details := fmt.Sprintf("Changed status from %s to %s for %s (%s)", old, status, base.Name, base.ID)
		if entry, err = appendAudit(tx, now, admin.ID, action, accountID, details); err != nil {
			return err
		}
		return emit(tx, event.TopicAccount, accountID, event.AccountUpdatedEvent{
			AccountID:  accountID,
			Status:     string(status),
			UpdatedBy:  admin.ID,
			OccurredAt: now,
		}, now)
	})
	if err != nil {
		return model.AccountView{}, err
	}

	if entry != nil {
		recordAudit(entry)
		logger.Info("Account status changed",
			zap.String("account", accountID),
			zap.String("status", string(status)),
			zap.String("admin", adminID))
	}
	return view, nil
}

// SetSpendingLimit 调整普通用户的单笔消费上限
func (s *AdminService) SetSpendingLimit(ctx context.Context, userID string, limit int64, adminID string) (model.AccountView, error) {
	if limit < 0 {
		return model.AccountView{}, errno.ErrInvalidAmount.WithMessage("Spending limit must not be negative")
	}

	now := s.clock.Now()
	var (
		view  model.AccountView
		entry *model.AuditLogEntry
	)
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		admin, err := loadAdmin(tx, adminID)
		if err != nil {
			return err
		}

		acc, err := tx.Account(userID)
		if errors.Is(err, store.ErrNotFound) {
			return errno.ErrAccountNotFound.Withf("Account %s not found", userID)
		}
		if err != nil {
			return err
		}
		user, ok := acc.(*model.EndUser)
		if !ok {
			return errno.ErrInvalidTarget.Withf("Spending limits only apply to end-users, %s is a %s", userID, acc.Role())
		}

		old := user.SpendingLimit
		if old == limit {
			view = model.View(user)
			return nil
		}
		user.SpendingLimit = limit
		user.UpdatedAt = now
		if err := tx.SaveAccount(user); err != nil {
			return err
		}
		view = model.View(user)

		details := fmt.Sprintf("Changed spending limit from %d to %d for %s (%s)", old, limit, user.Name, user.ID)
		if entry, err = appendAudit(tx, now, admin.ID, model.ActionUpdateSpendingLimit, userID, details); err != nil {
			return err
		}
		return emit(tx, event.TopicAccount, userID, event.AccountUpdatedEvent{
			AccountID:     userID,
			Status:        string(user.Status),
			SpendingLimit: &limit,
			UpdatedBy:     admin.ID,
			OccurredAt:    now,
		}, now)
	})
	if err != nil {
		return model.AccountView{}, err
	}

	if entry != nil {
		recordAudit(entry)
		logger.Info("Spending limit changed",
			zap.String("user", userID),
			zap.Int64("limit", limit),
			zap.String("admin", adminID))
	}
	return view, nil
}
