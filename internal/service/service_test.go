package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"gift-core/internal/advisor"
	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/clock"

	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

type fixture struct {
	store    *store.MemoryStore
	clock    *clock.Fixed
	advisor  *stubAdvisor
	gifts    *GiftService
	withdraw *WithdrawService
	verify   *VerificationService
	admin    *AdminService
	query    *QueryService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := store.NewMemoryStore()
	require.NoError(t, st.Seed(context.Background(), model.DefaultSeed(testNow)))

	clk := clock.NewFixed(testNow)
	adv := &stubAdvisor{policy: advisor.NewPolicyAdvisor(50000, 1000)}
	return &fixture{
		store:    st,
		clock:    clk,
		advisor:  adv,
		gifts:    NewGiftService(st, clk, DefaultFeeRate),
		withdraw: NewWithdrawService(st, clk, adv, 50*time.Millisecond),
		verify:   NewVerificationService(st, clk, adv, 50*time.Millisecond),
		admin:    NewAdminService(st, clk),
		query:    NewQueryService(st),
	}
}

func (f *fixture) balance(t *testing.T, id string) int64 {
	t.Helper()
	acc, err := f.store.GetAccount(context.Background(), id)
	require.NoError(t, err)
	return acc.Balance()
}

func (f *fixture) auditLog(t *testing.T) []model.AuditLogEntry {
	t.Helper()
	entries, err := f.store.ListAuditLog(context.Background())
	require.NoError(t, err)
	return entries
}

// stubAdvisor 默认用本地策略评估提现，可以注入错误或阻塞
type stubAdvisor struct {
	mu          sync.Mutex
	policy      *advisor.PolicyAdvisor
	riskErr     error
	block       bool
	riskCalls   int
	eligibility advisor.EligibilityOpinion
	eligErr     error
	eligCalls   int
}

func (s *stubAdvisor) AssessWithdrawalRisk(ctx context.Context, amount, totalEarnings int64) (advisor.RiskOpinion, error) {
	s.mu.Lock()
	s.riskCalls++
	block, err := s.block, s.riskErr
	s.mu.Unlock()

	if block {
		<-ctx.Done()
		return advisor.RiskOpinion{}, ctx.Err()
	}
	if err != nil {
		return advisor.RiskOpinion{}, err
	}
	return s.policy.AssessWithdrawalRisk(ctx, amount, totalEarnings)
}

func (s *stubAdvisor) AssessCreatorEligibility(ctx context.Context, handle string) (advisor.EligibilityOpinion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eligCalls++
	return s.eligibility, s.eligErr
}
