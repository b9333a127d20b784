package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestAndApproveWithdrawal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	w, err := f.withdraw.RequestWithdrawal(ctx, "creator-1", 50000)
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawalPending, w.Status)
	assert.Equal(t, model.RiskMedium, w.RiskLevel)
	assert.NotEmpty(t, w.RiskReason)
	assert.Nil(t, w.ReviewedBy)
	// 申请阶段不扣收益
	assert.Equal(t, int64(54000), f.balance(t, "creator-1"))

	f.clock.Advance(time.Hour)
	approved, err := f.withdraw.DecideWithdrawal(ctx, w.ID, DecisionApprove, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawalApproved, approved.Status)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, "admin-1", *approved.ReviewedBy)
	require.NotNil(t, approved.ReviewedAt)
	assert.Equal(t, testNow.Add(time.Hour), *approved.ReviewedAt)
	assert.Equal(t, int64(4000), f.balance(t, "creator-1"))

	logs := f.auditLog(t)
	require.Len(t, logs, 3)
	last := logs[2]
	assert.Equal(t, model.ActionApproveWithdrawal, last.Action)
	assert.Equal(t, w.ID, last.TargetID)
	assert.Equal(t, "admin-1", last.AdminID)
	assert.Equal(t, int64(3), last.Seq)
	assert.Equal(t, "Approved withdrawal of 50000 for creator creator-1", last.Details)
	assert.NoError(t, model.VerifyChain(logs))
}

func TestRequestWithdrawalLowRisk(t *testing.T) {
	f := newFixture(t)

	w, err := f.withdraw.RequestWithdrawal(context.Background(), "creator-1", 5000)
	require.NoError(t, err)
	assert.Equal(t, model.RiskLow, w.RiskLevel)
	assert.Equal(t, model.WithdrawalPending, w.Status)
}

func TestRequestWithdrawalRejected(t *testing.T) {
	tests := []struct {
		name       string
		creator    string
		amount     int64
		setup      func(s *stubAdvisor)
		wantErr    error
		wantCalled bool
	}{
		{"zero amount", "creator-1", 0, nil, errno.ErrInvalidAmount, false},
		{"negative amount", "creator-1", -5, nil, errno.ErrInvalidAmount, false},
		{"unknown creator", "creator-99", 1000, nil, errno.ErrCreatorNotFound, false},
		{"not a creator", "user-1", 1000, nil, errno.ErrCreatorNotFound, false},
		{"suspended creator", "creator-5", 5000, nil, errno.ErrAccountSuspended, false},
		{"exceeds earnings", "creator-1", 60000, nil, errno.ErrInsufficientFunds, false},
		{"below minimum is high risk", "creator-1", 500, nil, errno.ErrWithdrawalRiskBlocked, true},
		{"advisor failure is high risk", "creator-1", 5000, func(s *stubAdvisor) { s.riskErr = errno.ErrAdvisorUnavailable }, errno.ErrWithdrawalRiskBlocked, true},
		{"advisor timeout is high risk", "creator-1", 5000, func(s *stubAdvisor) { s.block = true }, errno.ErrWithdrawalRiskBlocked, true},
		// creator-3: 收益 105000，已有 50000 待审核
		{"pending withdrawals reserve earnings", "creator-3", 60000, nil, errno.ErrInsufficientFunds, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			f := newFixture(t)
			if tt.setup != nil {
				tt.setup(f.advisor)
			}
			before, _ := f.store.ListWithdrawals(ctx, store.WithdrawalFilter{})

			w, err := f.withdraw.RequestWithdrawal(ctx, tt.creator, tt.amount)
			assert.Nil(t, w)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantCalled, f.advisor.riskCalls > 0)

			after, _ := f.store.ListWithdrawals(ctx, store.WithdrawalFilter{})
			assert.Len(t, after, len(before), "rejected requests leave no record")
		})
	}
}

func TestRequestWithdrawalBlockedReason(t *testing.T) {
	f := newFixture(t)
	f.advisor.riskErr = errors.New("upstream 503")

	_, err := f.withdraw.RequestWithdrawal(context.Background(), "creator-1", 5000)
	require.Error(t, err)
	_, msg := errno.Decode(err)
	assert.Contains(t, msg, "Risk assessment unavailable")
	assert.Contains(t, msg, "upstream 503")
}

func TestDecideWithdrawalReject(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	w, err := f.withdraw.DecideWithdrawal(ctx, "wd-2", DecisionReject, "admin-1")
	require.NoError(t, err)
	assert.Equal(t, model.WithdrawalRejected, w.Status)
	assert.Equal(t, int64(105000), f.balance(t, "creator-3"))

	logs := f.auditLog(t)
	require.Len(t, logs, 3)
	assert.Equal(t, model.ActionRejectWithdrawal, logs[2].Action)

	// 拒绝后额度释放
	_, err = f.withdraw.RequestWithdrawal(ctx, "creator-3", 60000)
	assert.NoError(t, err)
}

func TestDecideWithdrawalErrors(t *testing.T) {
	tests := []struct {
		name     string
		id       string
		decision Decision
		admin    string
		wantErr  error
	}{
		{"unknown decision", "wd-2", Decision("maybe"), "admin-1", errno.ErrInvalidDecision},
		{"not an admin", "wd-2", DecisionApprove, "user-1", errno.ErrNotAdmin},
		{"creator is not an admin", "wd-2", DecisionApprove, "creator-3", errno.ErrNotAdmin},
		{"unknown withdrawal", "wd-99", DecisionApprove, "admin-1", errno.ErrWithdrawalNotFound},
		{"already decided", "wd-1", DecisionReject, "admin-1", errno.ErrWithdrawalDecided},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.withdraw.DecideWithdrawal(context.Background(), tt.id, tt.decision, tt.admin)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Len(t, f.auditLog(t), 2)
			assert.Equal(t, int64(105000), f.balance(t, "creator-3"))
		})
	}
}

func TestDecideWithdrawalIsTerminal(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.withdraw.DecideWithdrawal(ctx, "wd-2", DecisionApprove, "admin-1")
	require.NoError(t, err)

	_, err = f.withdraw.DecideWithdrawal(ctx, "wd-2", DecisionReject, "admin-1")
	assert.ErrorIs(t, err, errno.ErrWithdrawalDecided)
	assert.Equal(t, errno.KindIntegrity, errno.KindOf(err))

	_, err = f.withdraw.DecideWithdrawal(ctx, "wd-2", DecisionApprove, "admin-1")
	assert.ErrorIs(t, err, errno.ErrWithdrawalDecided)

	assert.Equal(t, int64(55000), f.balance(t, "creator-3"))
	assert.Len(t, f.auditLog(t), 3)
}

func TestDecideWithdrawalConcurrentApprovalsPayOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	var (
		wg sync.WaitGroup
		mu sync.Mutex
		ok int
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.withdraw.DecideWithdrawal(ctx, "wd-2", DecisionApprove, "admin-1"); err == nil {
				mu.Lock()
				ok++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, ok)
	assert.Equal(t, int64(55000), f.balance(t, "creator-3"))
	assert.Len(t, f.auditLog(t), 3)
}

func TestDecideWithdrawalBySuspendedAdmin(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	require.NoError(t, f.store.Transaction(ctx, func(tx store.Tx) error {
		a, err := tx.Admin("admin-1")
		if err != nil {
			return err
		}
		a.Status = model.StatusSuspended
		return tx.SaveAccount(a)
	}))

	_, err := f.withdraw.DecideWithdrawal(ctx, "wd-2", DecisionApprove, "admin-1")
	assert.ErrorIs(t, err, errno.ErrNotAdmin)
}
