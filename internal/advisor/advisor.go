package advisor

import (
	"context"
	"fmt"

	"gift-core/internal/model"
	"gift-core/pkg/safe_random"
)

// RiskOpinion 提现风险评估结果，原样写入提现单
type RiskOpinion struct {
	Level  model.RiskLevel `json:"risk_level"`
	Reason string          `json:"reason"`
}

// EligibilityOpinion 创作者认证预审结果
type EligibilityOpinion struct {
	PlausibleUsername   bool   `json:"plausible_username"`
	FollowerCheckPassed bool   `json:"follower_check_passed"`
	FollowerCount       int64  `json:"follower_count_simulated"`
	VerificationCode    string `json:"verification_code"`
	Instructions        string `json:"user_instructions"`
	// Fallback 为 true 表示外部服务不可用，使用了本地兜底结果
	Fallback bool `json:"fallback,omitempty"`
}

// Passed 预审结论只看 follower_check_passed，PlausibleUsername 仅作为参考信息返回给审核人
func (o EligibilityOpinion) Passed() bool {
	return o.FollowerCheckPassed
}

// Advisor 外部风控/认证协作方。调用方负责超时与失败兜底
type Advisor interface {
	AssessWithdrawalRisk(ctx context.Context, amount, totalEarnings int64) (RiskOpinion, error)
	AssessCreatorEligibility(ctx context.Context, handle string) (EligibilityOpinion, error)
}

const fallbackInstructions = "Automated pre-screening is unavailable, an admin will verify manually. " +
	"Please post this code in the comment section of your latest video to confirm ownership."

// FallbackEligibility 外部服务失败时的保守本地结果:
// 70% 概率通过，模拟粉丝数 [800, 5800)，随机 6 位验证码
func FallbackEligibility() (EligibilityOpinion, error) {
	passed, err := safe_random.Chance(70)
	if err != nil {
		return EligibilityOpinion{}, err
	}
	followers, err := safe_random.IntInRange(800, 5800)
	if err != nil {
		return EligibilityOpinion{}, err
	}
	code, err := safe_random.Digits(6)
	if err != nil {
		return EligibilityOpinion{}, err
	}
	return EligibilityOpinion{
		PlausibleUsername:   true,
		FollowerCheckPassed: passed,
		FollowerCount:       followers,
		VerificationCode:    code,
		Instructions:        fallbackInstructions,
		Fallback:            true,
	}, nil
}

// UnavailableRisk 外部服务失败时按最高风险处理
func UnavailableRisk(cause error) RiskOpinion {
	return RiskOpinion{
		Level:  model.RiskHigh,
		Reason: fmt.Sprintf("Risk assessment unavailable (%v). Withdrawal cannot be processed automatically, please try again later.", cause),
	}
}
