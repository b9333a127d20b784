package advisor

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"gift-core/internal/model"
	"gift-core/pkg/cache"
	"gift-core/pkg/errno"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(*http.Request) (*http.Response, error)

func (f roundTripFunc) RoundTrip(r *http.Request) (*http.Response, error) {
	return f(r)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestPolicyAdvisorWithdrawalRisk(t *testing.T) {
	p := NewPolicyAdvisor(50000, 1000)
	ctx := context.Background()

	tests := []struct {
		name     string
		amount   int64
		earnings int64
		want     model.RiskLevel
	}{
		{"exceeds earnings", 60000, 54000, model.RiskHigh},
		{"exactly review threshold", 50000, 54000, model.RiskMedium},
		{"above review threshold", 80000, 105000, model.RiskMedium},
		{"below minimum", 999, 54000, model.RiskHigh},
		{"minimum is allowed", 1000, 54000, model.RiskLow},
		{"normal", 15000, 54000, model.RiskLow},
		{"exceeds earnings wins over minimum", 500, 100, model.RiskHigh},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := p.AssessWithdrawalRisk(ctx, tt.amount, tt.earnings)
			require.NoError(t, err)
			assert.Equal(t, tt.want, op.Level)
			assert.NotEmpty(t, op.Reason)
		})
	}
}

func TestPolicyAdvisorDefaults(t *testing.T) {
	p := NewPolicyAdvisor(0, -1)
	assert.Equal(t, int64(DefaultReviewThreshold), p.ReviewThreshold)
	assert.Equal(t, int64(DefaultMinimumAmount), p.MinimumAmount)
}

func TestPolicyAdvisorEligibility(t *testing.T) {
	op, err := NewPolicyAdvisor(0, 0).AssessCreatorEligibility(context.Background(), "charliecreates")
	require.NoError(t, err)
	assert.False(t, op.Fallback)
	assert.Len(t, op.VerificationCode, 6)
	assert.Equal(t, op.FollowerCount >= 1000, op.FollowerCheckPassed)
	assert.Contains(t, op.Instructions, "@charliecreates")
}

func TestFallbackEligibility(t *testing.T) {
	for i := 0; i < 100; i++ {
		op, err := FallbackEligibility()
		require.NoError(t, err)
		assert.True(t, op.Fallback)
		assert.True(t, op.PlausibleUsername)
		assert.GreaterOrEqual(t, op.FollowerCount, int64(800))
		assert.Less(t, op.FollowerCount, int64(5800))
		assert.Len(t, op.VerificationCode, 6)
	}
}

func TestUnavailableRiskIsHigh(t *testing.T) {
	op := UnavailableRisk(context.DeadlineExceeded)
	assert.Equal(t, model.RiskHigh, op.Level)
	assert.Contains(t, op.Reason, "unavailable")
}

func TestGeminiAdvisorParsesCandidate(t *testing.T) {
	var gotURL, gotKey string
	body := `{"candidates":[{"content":{"role":"model","parts":[{"text":"{\"plausible_username\":true,\"follower_check_passed\":true,\"follower_count_simulated\":4200,\"verification_code\":\"482913\",\"user_instructions\":\"Post 482913 under your latest video.\"}"}]}}]}`

	g, err := NewGeminiAdvisor(GeminiOptions{
		APIKey:  "test-key",
		BaseURL: "https://gemini.test/v1beta/",
		HTTPClient: &http.Client{Transport: roundTripFunc(func(r *http.Request) (*http.Response, error) {
			gotURL = r.URL.String()
			gotKey = r.Header.Get("x-goog-api-key")
			return jsonResponse(http.StatusOK, body), nil
		})},
	})
	require.NoError(t, err)

	op, err := g.AssessCreatorEligibility(context.Background(), "dianadances")
	require.NoError(t, err)

	assert.Equal(t, "https://gemini.test/v1beta/models/gemini-2.5-flash:generateContent", gotURL)
	assert.Equal(t, "test-key", gotKey)
	assert.True(t, op.Passed())
	assert.Equal(t, int64(4200), op.FollowerCount)
	assert.Equal(t, "482913", op.VerificationCode)
	assert.False(t, op.Fallback)
}

func TestGeminiAdvisorErrors(t *testing.T) {
	tests := []struct {
		name    string
		rt      roundTripFunc
		wantErr errno.Errno
	}{
		{
			name: "transport failure",
			rt: func(r *http.Request) (*http.Response, error) {
				return nil, errors.New("connection reset")
			},
			wantErr: errno.ErrAdvisorUnavailable,
		},
		{
			name: "non-2xx status",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusTooManyRequests, `{"error":{"message":"quota exceeded"}}`), nil
			},
			wantErr: errno.ErrAdvisorUnavailable,
		},
		{
			name: "no candidates",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"candidates":[]}`), nil
			},
			wantErr: errno.ErrAdvisorResponse,
		},
		{
			name: "candidate is not JSON",
			rt: func(r *http.Request) (*http.Response, error) {
				return jsonResponse(http.StatusOK, `{"candidates":[{"content":{"parts":[{"text":"I cannot help with that"}]}}]}`), nil
			},
			wantErr: errno.ErrAdvisorResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGeminiAdvisor(GeminiOptions{APIKey: "k", HTTPClient: &http.Client{Transport: tt.rt}})
			require.NoError(t, err)

			_, err = g.AssessCreatorEligibility(context.Background(), "frankplays")
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, errno.KindCollaborator, errno.KindOf(err))
		})
	}
}

func TestGeminiAdvisorRequiresKey(t *testing.T) {
	_, err := NewGeminiAdvisor(GeminiOptions{})
	assert.Error(t, err)
}

func TestParseEligibilityStripsCodeFence(t *testing.T) {
	op, err := parseEligibility("```json\n{\"plausible_username\":false,\"follower_check_passed\":true,\"verification_code\":\"111111\"}\n```")
	require.NoError(t, err)
	assert.True(t, op.Passed(), "结论只取 follower_check_passed")
	assert.False(t, op.PlausibleUsername)
	assert.Equal(t, "111111", op.VerificationCode)
}

type countingAdvisor struct {
	calls int
	op    EligibilityOpinion
	err   error
}

func (c *countingAdvisor) AssessWithdrawalRisk(ctx context.Context, amount, totalEarnings int64) (RiskOpinion, error) {
	c.calls++
	return RiskOpinion{Level: model.RiskLow}, nil
}

func (c *countingAdvisor) AssessCreatorEligibility(ctx context.Context, handle string) (EligibilityOpinion, error) {
	c.calls++
	return c.op, c.err
}

func TestCachedAdvisor(t *testing.T) {
	ctx := context.Background()
	next := &countingAdvisor{op: EligibilityOpinion{PlausibleUsername: true, FollowerCheckPassed: true, FollowerCount: 3000, VerificationCode: "123456"}}
	a := NewCachedAdvisor(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	first, err := a.AssessCreatorEligibility(ctx, "@EvePaints")
	require.NoError(t, err)
	second, err := a.AssessCreatorEligibility(ctx, "evepaints")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls, "同一 handle 只调用一次")
	assert.Equal(t, first.FollowerCount, second.FollowerCount)
	assert.True(t, second.Passed())
	assert.Equal(t, "123456", first.VerificationCode)
	assert.Len(t, second.VerificationCode, 6)

	// 提现评估不走缓存
	_, _ = a.AssessWithdrawalRisk(ctx, 1, 1)
	_, _ = a.AssessWithdrawalRisk(ctx, 1, 1)
	assert.Equal(t, 3, next.calls)
}

func TestCachedAdvisorReissuesCodeOnHit(t *testing.T) {
	ctx := context.Background()
	next := &countingAdvisor{op: EligibilityOpinion{
		PlausibleUsername:   true,
		FollowerCheckPassed: true,
		FollowerCount:       3000,
		VerificationCode:    "123456",
		Instructions:        "Post 123456 under your latest video.",
	}}
	a := NewCachedAdvisor(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	_, err := a.AssessCreatorEligibility(ctx, "sharedhandle")
	require.NoError(t, err)
	hit, err := a.AssessCreatorEligibility(ctx, "sharedhandle")
	require.NoError(t, err)

	assert.Equal(t, 1, next.calls)
	assert.Len(t, hit.VerificationCode, 6)
	assert.Equal(t, "Post "+hit.VerificationCode+" under your latest video.", hit.Instructions)
}

func TestCachedAdvisorSkipsFailedPreScreen(t *testing.T) {
	ctx := context.Background()
	next := &countingAdvisor{op: EligibilityOpinion{PlausibleUsername: true, FollowerCount: 120, VerificationCode: "654321"}}
	a := NewCachedAdvisor(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	first, err := a.AssessCreatorEligibility(ctx, "newcreator")
	require.NoError(t, err)
	assert.False(t, first.Passed())

	// 粉丝数达标后重新申请，必须重新预审
	next.op = EligibilityOpinion{PlausibleUsername: true, FollowerCheckPassed: true, FollowerCount: 2500, VerificationCode: "777777"}
	second, err := a.AssessCreatorEligibility(ctx, "newcreator")
	require.NoError(t, err)

	assert.Equal(t, 2, next.calls)
	assert.True(t, second.Passed())
	assert.Equal(t, "777777", second.VerificationCode)
}

func TestEligibilityPassedUsesFollowerCheckOnly(t *testing.T) {
	tests := []struct {
		name string
		op   EligibilityOpinion
		want bool
	}{
		{"both flags", EligibilityOpinion{PlausibleUsername: true, FollowerCheckPassed: true}, true},
		{"implausible username", EligibilityOpinion{FollowerCheckPassed: true}, true},
		{"follower check failed", EligibilityOpinion{PlausibleUsername: true}, false},
		{"neither", EligibilityOpinion{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.op.Passed())
		})
	}
}

func TestCachedAdvisorSkipsFallbackAndErrors(t *testing.T) {
	ctx := context.Background()
	next := &countingAdvisor{op: EligibilityOpinion{Fallback: true}}
	a := NewCachedAdvisor(next, cache.NewMemoryCache(time.Minute, time.Minute), time.Minute)

	_, _ = a.AssessCreatorEligibility(ctx, "x1")
	_, _ = a.AssessCreatorEligibility(ctx, "x1")
	assert.Equal(t, 2, next.calls)

	next.err = errno.ErrAdvisorUnavailable
	_, err := a.AssessCreatorEligibility(ctx, "x2")
	assert.ErrorIs(t, err, errno.ErrAdvisorUnavailable)
}
