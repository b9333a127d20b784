package service

import (
	"context"
	"errors"

	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/errno"
)

// Stats 管理后台概览
type Stats struct {
	EndUsers             int   `json:"end_users"`
	Creators             int   `json:"creators"`
	VerifiedCreators     int   `json:"verified_creators"`
	PendingVerifications int   `json:"pending_verifications"`
	SuspendedAccounts    int   `json:"suspended_accounts"`
	Transactions         int   `json:"transactions"`
	GiftVolume           int64 `json:"gift_volume"`
	PendingWithdrawals   int   `json:"pending_withdrawals"`
	PendingPayout        int64 `json:"pending_payout"`
	PlatformBalance      int64 `json:"platform_balance"`
}

// QueryService 只读查询，全部基于 store.Reader 的副本
type QueryService struct {
	store store.Reader
	audit *AuditService
}

func NewQueryService(s store.Reader) *QueryService {
	return &QueryService{store: s, audit: NewAuditService(s)}
}

func (s *QueryService) Account(ctx context.Context, id string) (model.AccountView, error) {
	acc, err := s.store.GetAccount(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return model.AccountView{}, errno.ErrAccountNotFound.Withf("Account %s not found", id)
	}
	if err != nil {
		return model.AccountView{}, err
	}
	return model.View(acc), nil
}

// Accounts 按 用户、创作者、管理员 的顺序返回全部账户
func (s *QueryService) Accounts(ctx context.Context) ([]model.AccountView, error) {
	users, err := s.store.ListEndUsers(ctx)
	if err != nil {
		return nil, err
	}
	creators, err := s.store.ListCreators(ctx)
	if err != nil {
		return nil, err
	}
	admins, err := s.store.ListAdmins(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]model.AccountView, 0, len(users)+len(creators)+len(admins))
	for i := range users {
		out = append(out, model.View(&users[i]))
	}
	for i := range creators {
		out = append(out, model.View(&creators[i]))
	}
	for i := range admins {
		out = append(out, model.View(&admins[i]))
	}
	return out, nil
}

// Creators 返回创作者列表；discoverableOnly 时只保留可以收礼的创作者
func (s *QueryService) Creators(ctx context.Context, discoverableOnly bool) ([]model.AccountView, error) {
	creators, err := s.store.ListCreators(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.AccountView, 0, len(creators))
	for i := range creators {
		if discoverableOnly && !creators[i].Discoverable() {
			continue
		}
		out = append(out, model.View(&creators[i]))
	}
	return out, nil
}

func (s *QueryService) Gifts(ctx context.Context) ([]model.Gift, error) {
	return s.store.ListGifts(ctx)
}

func (s *QueryService) Transactions(ctx context.Context, accountID string) ([]model.Transaction, error) {
	return s.store.ListTransactions(ctx, store.TransactionFilter{AccountID: accountID})
}

func (s *QueryService) Withdrawals(ctx context.Context, f store.WithdrawalFilter) ([]model.Withdrawal, error) {
	if f.Status != "" && f.Status != model.WithdrawalPending && f.Status != model.WithdrawalApproved && f.Status != model.WithdrawalRejected {
		return nil, errno.ErrInvalidStatus.Withf("Unknown withdrawal status %q", f.Status)
	}
	return s.store.ListWithdrawals(ctx, f)
}

func (s *QueryService) AuditLog(ctx context.Context) ([]model.AuditLogEntry, error) {
	return s.store.ListAuditLog(ctx)
}

func (s *QueryService) VerifyAuditLog(ctx context.Context) (int, error) {
	return s.audit.Verify(ctx)
}

func (s *QueryService) Stats(ctx context.Context) (*Stats, error) {
	var st Stats

	users, err := s.store.ListEndUsers(ctx)
	if err != nil {
		return nil, err
	}
	st.EndUsers = len(users)
	for _, u := range users {
		if !u.Active() {
			st.SuspendedAccounts++
		}
	}

	creators, err := s.store.ListCreators(ctx)
	if err != nil {
		return nil, err
	}
	st.Creators = len(creators)
	for _, c := range creators {
		if !c.Active() {
			st.SuspendedAccounts++
		}
		switch c.VerificationStatus {
		case model.VerificationVerified:
			st.VerifiedCreators++
		case model.VerificationPending:
			st.PendingVerifications++
		}
	}

	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	st.Transactions = len(txs)
	for _, t := range txs {
		st.GiftVolume += t.Amount
	}

	pending, err := s.store.ListWithdrawals(ctx, store.WithdrawalFilter{Status: model.WithdrawalPending})
	if err != nil {
		return nil, err
	}
	st.PendingWithdrawals = len(pending)
	for _, w := range pending {
		st.PendingPayout += w.Amount
	}

	if st.PlatformBalance, err = s.store.PlatformBalance(ctx); err != nil {
		return nil, err
	}
	return &st, nil
}
