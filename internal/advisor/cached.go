package advisor

import (
	"context"
	"strings"
	"time"

	"gift-core/pkg/cache"
	"gift-core/pkg/logger"
	"gift-core/pkg/safe_random"

	"go.uber.org/zap"
)

// CachedAdvisor 缓存通过的认证预审结果，同一 handle 在 TTL 内重复提交不会再次调用外部服务。
// 未通过或兜底的结果不缓存，被拒绝的创作者重新申请时总会重新预审。
// 命中缓存时重新生成验证码，不同创作者不会拿到同一个验证码。
// 提现风险评估依赖实时收益，不缓存
type CachedAdvisor struct {
	next  Advisor
	cache cache.Cache
	ttl   time.Duration
}

func NewCachedAdvisor(next Advisor, c cache.Cache, ttl time.Duration) *CachedAdvisor {
	return &CachedAdvisor{next: next, cache: c, ttl: ttl}
}

func (a *CachedAdvisor) AssessWithdrawalRisk(ctx context.Context, amount, totalEarnings int64) (RiskOpinion, error) {
	return a.next.AssessWithdrawalRisk(ctx, amount, totalEarnings)
}

func (a *CachedAdvisor) AssessCreatorEligibility(ctx context.Context, handle string) (EligibilityOpinion, error) {
	key := "eligibility:" + strings.ToLower(strings.TrimPrefix(handle, "@"))

	var cached EligibilityOpinion
	if err := a.cache.Get(ctx, key, &cached); err == nil {
		return reissueCode(cached)
	}

	op, err := a.next.AssessCreatorEligibility(ctx, handle)
	if err != nil {
		return op, err
	}
	if !op.Fallback && op.Passed() {
		if err := a.cache.Set(ctx, key, op, a.ttl); err != nil {
			logger.Warn("eligibility cache set failed", zap.String("handle", handle), zap.Error(err))
		}
	}
	return op, nil
}

// reissueCode 替换缓存结果中的验证码，说明文字里出现的旧验证码一并替换
func reissueCode(op EligibilityOpinion) (EligibilityOpinion, error) {
	code, err := safe_random.Digits(6)
	if err != nil {
		return EligibilityOpinion{}, err
	}
	if op.VerificationCode != "" {
		op.Instructions = strings.ReplaceAll(op.Instructions, op.VerificationCode, code)
	}
	op.VerificationCode = code
	return op, nil
}
