package advisor

import (
	"context"
	"fmt"

	"gift-core/internal/model"
)

const (
	DefaultReviewThreshold = 50000
	DefaultMinimumAmount   = 1000
	minimumFollowers       = 1000
)

// PolicyAdvisor 本地确定性风控策略，也是 GeminiAdvisor 的提现评估实现
type PolicyAdvisor struct {
	// ReviewThreshold 金额 >= 该值需要人工复核 (Medium)
	ReviewThreshold int64
	// MinimumAmount 金额 < 该值直接拦截 (High)
	MinimumAmount int64
}

func NewPolicyAdvisor(reviewThreshold, minimumAmount int64) *PolicyAdvisor {
	if reviewThreshold <= 0 {
		reviewThreshold = DefaultReviewThreshold
	}
	if minimumAmount <= 0 {
		minimumAmount = DefaultMinimumAmount
	}
	return &PolicyAdvisor{ReviewThreshold: reviewThreshold, MinimumAmount: minimumAmount}
}

// AssessWithdrawalRisk 规则按顺序匹配，第一条命中即返回
func (p *PolicyAdvisor) AssessWithdrawalRisk(ctx context.Context, amount, totalEarnings int64) (RiskOpinion, error) {
	if err := ctx.Err(); err != nil {
		return RiskOpinion{}, err
	}

	switch {
	case amount > totalEarnings:
		return RiskOpinion{
			Level:  model.RiskHigh,
			Reason: "Withdrawal amount exceeds total earnings. Potential system glitch or fraud.",
		}, nil
	// 阈值含等号: 恰好等于 ReviewThreshold 也进入人工审核
	case amount >= p.ReviewThreshold:
		return RiskOpinion{
			Level:  model.RiskMedium,
			Reason: "Large withdrawal amount requires manual review for security.",
		}, nil
	case amount < p.MinimumAmount:
		return RiskOpinion{
			Level:  model.RiskHigh,
			Reason: fmt.Sprintf("Withdrawal amount is below the minimum threshold. Please withdraw at least %d.", p.MinimumAmount),
		}, nil
	default:
		return RiskOpinion{
			Level:  model.RiskLow,
			Reason: "Withdrawal amount is within normal parameters. Auto-approval is recommended.",
		}, nil
	}
}

// AssessCreatorEligibility 本地模式没有真实的社交平台数据，按兜底规则模拟
func (p *PolicyAdvisor) AssessCreatorEligibility(ctx context.Context, handle string) (EligibilityOpinion, error) {
	if err := ctx.Err(); err != nil {
		return EligibilityOpinion{}, err
	}
	op, err := FallbackEligibility()
	if err != nil {
		return EligibilityOpinion{}, err
	}
	op.Fallback = false
	op.FollowerCheckPassed = op.FollowerCount >= minimumFollowers
	op.Instructions = fmt.Sprintf("Post the code %s in the comment section of your latest video from @%s to confirm ownership.", op.VerificationCode, handle)
	return op, nil
}
