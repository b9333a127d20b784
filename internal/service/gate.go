package service

import (
	"errors"

	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/errno"
)

// 资格检查。每个函数只判断一个条件，返回 Eligibility 类错误

// CanTransact 被封禁的账户不能发起任何资金操作
func CanTransact(a model.Account) error {
	if !a.Base().Active() {
		return errno.ErrAccountSuspended.Withf("Account %s is suspended", a.Base().ID)
	}
	return nil
}

// WithinLimit 只有普通用户受单笔消费上限约束
func WithinLimit(a model.Account, amount int64) error {
	u, ok := a.(*model.EndUser)
	if !ok {
		return nil
	}
	if amount > u.SpendingLimit {
		return errno.ErrSpendingLimitExceeded.Withf("Gift price %d exceeds spending limit %d", amount, u.SpendingLimit)
	}
	return nil
}

func HasFunds(a model.Account, amount int64) error {
	if amount > a.Balance() {
		return errno.ErrInsufficientFunds.Withf("Insufficient funds: balance %d, required %d", a.Balance(), amount)
	}
	return nil
}

// RequireAdmin 操作人必须是未被封禁的管理员
func RequireAdmin(a model.Account) error {
	if a == nil || a.Role() != model.RoleAdmin || !a.Base().Active() {
		return errno.ErrNotAdmin
	}
	return nil
}

// loadAdmin 在工作单元内读取并校验操作人
func loadAdmin(tx store.Tx, adminID string) (*model.Admin, error) {
	admin, err := tx.Admin(adminID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errno.ErrNotAdmin.Withf("Account %s is not an admin", adminID)
	}
	if err != nil {
		return nil, err
	}
	if err := RequireAdmin(admin); err != nil {
		return nil, err
	}
	return admin, nil
}

// loadCreator 读取创作者，不存在时区分 "账户不存在" 与 "不是创作者"
func loadCreator(tx store.Tx, creatorID string) (*model.Creator, error) {
	c, err := tx.Creator(creatorID)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, errno.ErrCreatorNotFound.Withf("Creator %s not found", creatorID)
	}
	return nil, err
}
