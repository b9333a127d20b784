package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"gift-core/internal/advisor"
	"gift-core/internal/handler"
	"gift-core/internal/model"
	"gift-core/internal/service"
	"gift-core/internal/store"
	"gift-core/pkg/auth"
	"gift-core/pkg/clock"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"msg"`
	Data    json.RawMessage `json:"data"`
}

type testServer struct {
	t      *testing.T
	router *gin.Engine
	tokens *auth.Manager
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	st := store.NewMemoryStore()
	require.NoError(t, st.Seed(context.Background(), model.DefaultSeed(now)))
	clk := clock.NewFixed(now)
	adv := advisor.NewPolicyAdvisor(50000, 1000)

	query := service.NewQueryService(st)
	tokens := auth.NewManager("test-secret", time.Hour)
	router, err := NewHTTPRouter(Deps{
		Tokens:       tokens,
		Gifts:        handler.NewGiftHandler(service.NewGiftService(st, clk, service.DefaultFeeRate), query),
		Withdrawals:  handler.NewWithdrawHandler(service.NewWithdrawService(st, clk, adv, time.Second), query),
		Verification: handler.NewVerificationHandler(service.NewVerificationService(st, clk, adv, time.Second)),
		Admin:        handler.NewAdminHandler(service.NewAdminService(st, clk), query),
		Accounts:     handler.NewAccountHandler(query),
		Health:       handler.NewHealthHandler(query),
	})
	require.NoError(t, err)
	return &testServer{t: t, router: router, tokens: tokens}
}

func (s *testServer) do(method, path, actor string, role model.Role, body interface{}) (int, envelope) {
	s.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(s.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		token, err := s.tokens.Issue(actor, string(role))
		require.NoError(s.t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var env envelope
	require.NoError(s.t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	code, env := s.do(http.MethodGet, "/health", "", "", nil)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, 0, env.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, "UP", body["status"])
	assert.Equal(t, "UP", body["store"])
}

func TestPublicCatalog(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodGet, "/api/v1/gifts", "", "", nil)
	require.Equal(t, http.StatusOK, code)
	var gifts []model.Gift
	require.NoError(t, json.Unmarshal(env.Data, &gifts))
	assert.Len(t, gifts, 6)

	code, env = s.do(http.MethodGet, "/api/v1/creators", "", "", nil)
	require.Equal(t, http.StatusOK, code)
	var creators []model.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &creators))
	assert.Len(t, creators, 2)
}

func TestSendGiftOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, _ := s.do(http.MethodPost, "/api/v1/gifts/send", "", "", map[string]string{"creator_id": "creator-1", "gift_id": "gift-3"})
	assert.Equal(t, http.StatusUnauthorized, code)

	code, env := s.do(http.MethodPost, "/api/v1/gifts/send", "user-1", model.RoleEndUser, map[string]string{"creator_id": "creator-1", "gift_id": "gift-3"})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var tx model.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &tx))
	assert.Equal(t, int64(100), tx.AdminFee)
	assert.Equal(t, int64(900), tx.CreatorAmount)

	code, env = s.do(http.MethodGet, "/api/v1/me", "user-1", model.RoleEndUser, nil)
	require.Equal(t, http.StatusOK, code)
	var me model.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, int64(24000), me.Balance)

	code, env = s.do(http.MethodGet, "/api/v1/transactions", "user-1", model.RoleEndUser, nil)
	require.Equal(t, http.StatusOK, code)
	var txs []model.Transaction
	require.NoError(t, json.Unmarshal(env.Data, &txs))
	assert.Len(t, txs, 2)
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		method     string
		path       string
		actor      string
		role       model.Role
		body       interface{}
		wantStatus int
		wantCode   int
	}{
		{"bind error", http.MethodPost, "/api/v1/gifts/send", "user-1", model.RoleEndUser, map[string]string{"gift_id": "gift-1"}, http.StatusBadRequest, 10002},
		{"creator not verified", http.MethodPost, "/api/v1/gifts/send", "user-1", model.RoleEndUser, map[string]string{"creator_id": "creator-2", "gift_id": "gift-1"}, http.StatusUnprocessableEntity, 20203},
		{"unknown gift", http.MethodPost, "/api/v1/gifts/send", "user-1", model.RoleEndUser, map[string]string{"creator_id": "creator-1", "gift_id": "gift-99"}, http.StatusNotFound, 20103},
		{"risk blocked", http.MethodPost, "/api/v1/withdrawals", "creator-1", model.RoleCreator, map[string]int64{"amount": 500}, http.StatusUnprocessableEntity, 20207},
		{"end-user cannot withdraw", http.MethodPost, "/api/v1/withdrawals", "user-1", model.RoleEndUser, map[string]int64{"amount": 5000}, http.StatusForbidden, 10005},
		{"already decided", http.MethodPost, "/api/v1/admin/withdrawals/wd-1/review", "admin-1", model.RoleAdmin, map[string]string{"action": "reject"}, http.StatusConflict, 20302},
		{"unknown withdrawal", http.MethodPost, "/api/v1/admin/withdrawals/wd-9/review", "admin-1", model.RoleAdmin, map[string]string{"action": "approve"}, http.StatusNotFound, 20104},
		{"bad decision", http.MethodPost, "/api/v1/admin/withdrawals/wd-2/review", "admin-1", model.RoleAdmin, map[string]string{"action": "maybe"}, http.StatusBadRequest, 10002},
		{"user on admin route", http.MethodGet, "/api/v1/admin/stats", "user-1", model.RoleEndUser, nil, http.StatusForbidden, 10005},
		{"invalid handle", http.MethodPost, "/api/v1/verifications", "creator-4", model.RoleCreator, map[string]string{"handle": "a"}, http.StatusBadRequest, 10002},
		{"already verified", http.MethodPost, "/api/v1/verifications", "creator-1", model.RoleCreator, map[string]string{"handle": "charlie"}, http.StatusUnprocessableEntity, 20208},
		{"bad withdrawal filter", http.MethodGet, "/api/v1/admin/withdrawals?status=paid", "admin-1", model.RoleAdmin, nil, http.StatusBadRequest, 10002},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t)
			code, env := s.do(tt.method, tt.path, tt.actor, tt.role, tt.body)
			assert.Equal(t, tt.wantStatus, code, env.Message)
			assert.Equal(t, tt.wantCode, env.Code)
		})
	}
}

func TestWithdrawalWorkflowOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/withdrawals", "creator-1", model.RoleCreator, map[string]int64{"amount": 50000})
	require.Equal(t, http.StatusCreated, code, env.Message)
	var w model.Withdrawal
	require.NoError(t, json.Unmarshal(env.Data, &w))
	assert.Equal(t, model.RiskMedium, w.RiskLevel)
	assert.Equal(t, model.WithdrawalPending, w.Status)

	code, env = s.do(http.MethodGet, "/api/v1/admin/withdrawals?status=pending", "admin-1", model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, code)
	var pending []model.Withdrawal
	require.NoError(t, json.Unmarshal(env.Data, &pending))
	assert.Len(t, pending, 2)

	code, env = s.do(http.MethodPost, "/api/v1/admin/withdrawals/"+w.ID+"/review", "admin-1", model.RoleAdmin, map[string]string{"action": "approve"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodGet, "/api/v1/me", "creator-1", model.RoleCreator, nil)
	require.Equal(t, http.StatusOK, code)
	var me model.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &me))
	assert.Equal(t, int64(4000), me.Balance)

	code, env = s.do(http.MethodGet, "/api/v1/admin/audit-logs/verify", "admin-1", model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, code)
	var verified struct {
		Valid   bool `json:"valid"`
		Entries int  `json:"entries"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &verified))
	assert.True(t, verified.Valid)
	assert.Equal(t, 3, verified.Entries)
}

func TestAdminAccountManagement(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPut, "/api/v1/admin/accounts/user-2/status", "admin-1", model.RoleAdmin, map[string]string{"status": "suspended"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, _ = s.do(http.MethodPost, "/api/v1/gifts/send", "user-2", model.RoleEndUser, map[string]string{"creator_id": "creator-1", "gift_id": "gift-1"})
	assert.Equal(t, http.StatusUnprocessableEntity, code)

	code, env = s.do(http.MethodPut, "/api/v1/admin/users/user-1/spending-limit", "admin-1", model.RoleAdmin, map[string]int64{"spending_limit": 0})
	require.Equal(t, http.StatusOK, code, env.Message)
	var view model.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.NotNil(t, view.SpendingLimit)
	assert.Equal(t, int64(0), *view.SpendingLimit)

	code, env = s.do(http.MethodGet, "/api/v1/admin/stats", "admin-1", model.RoleAdmin, nil)
	require.Equal(t, http.StatusOK, code)
	var st service.Stats
	require.NoError(t, json.Unmarshal(env.Data, &st))
	assert.Equal(t, 3, st.SuspendedAccounts)
	assert.Equal(t, int64(110), st.PlatformBalance)

	// 伪造 admin 角色的 token 仍会被服务层拒绝
	code, env = s.do(http.MethodPut, "/api/v1/admin/accounts/user-1/status", "user-1", model.RoleAdmin, map[string]string{"status": "suspended"})
	assert.Equal(t, http.StatusForbidden, code)
	assert.Equal(t, 20211, env.Code)
}

func TestVerificationOverHTTP(t *testing.T) {
	s := newTestServer(t)

	code, env := s.do(http.MethodPost, "/api/v1/verifications", "creator-4", model.RoleCreator, map[string]string{"handle": "@frank.real"})
	require.Equal(t, http.StatusOK, code, env.Message)
	var res struct {
		Status           model.VerificationStatus `json:"status"`
		VerificationCode string                   `json:"verification_code"`
		Instructions     string                   `json:"instructions"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	assert.Len(t, res.VerificationCode, 6)
	assert.NotEmpty(t, res.Instructions)
	assert.Contains(t, []model.VerificationStatus{model.VerificationPending, model.VerificationRejected}, res.Status)

	code, env = s.do(http.MethodPost, "/api/v1/admin/creators/creator-2/review", "admin-1", model.RoleAdmin, map[string]string{"decision": "verified"})
	require.Equal(t, http.StatusOK, code, env.Message)

	code, env = s.do(http.MethodGet, "/api/v1/creators", "", "", nil)
	require.Equal(t, http.StatusOK, code)
	var creators []model.AccountView
	require.NoError(t, json.Unmarshal(env.Data, &creators))
	assert.Len(t, creators, 3)
}
