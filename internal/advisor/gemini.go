package advisor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"gift-core/pkg/errno"

	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

type GeminiOptions struct {
	APIKey     string
	Model      string
	BaseURL    string
	HTTPClient *http.Client
	// RPS 出站请求限流，<= 0 表示不限
	RPS float64
	// Policy 提现风险评估仍走本地规则
	Policy *PolicyAdvisor
}

// GeminiAdvisor 通过 Gemini generateContent 接口做创作者认证预审
type GeminiAdvisor struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	policy  *PolicyAdvisor
}

const geminiDefaultTimeout = 15 * time.Second

type geminiRequest struct {
	Contents         []geminiContent         `json:"contents"`
	GenerationConfig *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature      float64                `json:"temperature,omitempty"`
	CandidateCount   int                    `json:"candidateCount,omitempty"`
	ResponseMimeType string                 `json:"responseMimeType,omitempty"`
	ResponseSchema   map[string]interface{} `json:"responseSchema,omitempty"`
}

var eligibilitySchema = map[string]interface{}{
	"type": "OBJECT",
	"properties": map[string]interface{}{
		"plausible_username":       map[string]string{"type": "BOOLEAN"},
		"follower_check_passed":    map[string]string{"type": "BOOLEAN"},
		"follower_count_simulated": map[string]string{"type": "INTEGER"},
		"verification_code":        map[string]string{"type": "STRING"},
		"user_instructions":        map[string]string{"type": "STRING"},
	},
}

func NewGeminiAdvisor(opts GeminiOptions) (*GeminiAdvisor, error) {
	if opts.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	model := strings.TrimSpace(opts.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: geminiDefaultTimeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RPS), 1)
	}
	policy := opts.Policy
	if policy == nil {
		policy = NewPolicyAdvisor(DefaultReviewThreshold, DefaultMinimumAmount)
	}
	return &GeminiAdvisor{
		apiKey:  opts.APIKey,
		model:   model,
		baseURL: baseURL,
		client:  client,
		limiter: limiter,
		policy:  policy,
	}, nil
}

func (g *GeminiAdvisor) AssessWithdrawalRisk(ctx context.Context, amount, totalEarnings int64) (RiskOpinion, error) {
	return g.policy.AssessWithdrawalRisk(ctx, amount, totalEarnings)
}

func (g *GeminiAdvisor) AssessCreatorEligibility(ctx context.Context, handle string) (EligibilityOpinion, error) {
	if err := g.limiter.Wait(ctx); err != nil {
		return EligibilityOpinion{}, errno.ErrAdvisorUnavailable.Withf("rate limiter: %v", err)
	}

	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: eligibilityPrompt(handle)}},
		}},
		GenerationConfig: &geminiGenerationConfig{
			Temperature:      0.4,
			CandidateCount:   1,
			ResponseMimeType: "application/json",
			ResponseSchema:   eligibilitySchema,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return EligibilityOpinion{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint(), &buf)
	if err != nil {
		return EligibilityOpinion{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return EligibilityOpinion{}, errno.ErrAdvisorUnavailable.Withf("gemini request: %v", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return EligibilityOpinion{}, errno.ErrAdvisorUnavailable.Withf("gemini read: %v", err)
	}
	if resp.StatusCode >= 300 {
		return EligibilityOpinion{}, errno.ErrAdvisorUnavailable.Withf("gemini status %d: %s", resp.StatusCode, gjson.GetBytes(body, "error.message").String())
	}

	text := gjson.GetBytes(body, "candidates.0.content.parts.0.text").String()
	if strings.TrimSpace(text) == "" {
		return EligibilityOpinion{}, errno.ErrAdvisorResponse.WithMessage("gemini returned no candidates")
	}
	return parseEligibility(text)
}

func (g *GeminiAdvisor) endpoint() string {
	return fmt.Sprintf("%s/models/%s:generateContent", g.baseURL, g.model)
}

func eligibilityPrompt(handle string) string {
	return fmt.Sprintf(`You are a verification bot for a creator gifting platform. A user with the social handle '%s' has applied to be a creator. `+
		`To be eligible, they need at least %d followers. First, determine if this is a plausible, real-looking username. `+
		`Second, estimate whether they meet the follower count. Third, generate a unique 6-digit verification code. `+
		`Fourth, write a short instruction asking the user to post this code in the comments of their latest video to confirm ownership. `+
		`Respond in the specified JSON format.`, handle, minimumFollowers)
}

// parseEligibility 模型偶尔会在 JSON 外包一层 markdown 代码块
func parseEligibility(text string) (EligibilityOpinion, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	if !gjson.Valid(text) {
		return EligibilityOpinion{}, errno.ErrAdvisorResponse.WithMessage("gemini returned invalid JSON")
	}
	res := gjson.Parse(text)
	if !res.Get("follower_check_passed").Exists() || !res.Get("verification_code").Exists() {
		return EligibilityOpinion{}, errno.ErrAdvisorResponse.WithMessage("gemini response is missing required fields")
	}

	op := EligibilityOpinion{
		PlausibleUsername:   res.Get("plausible_username").Bool(),
		FollowerCheckPassed: res.Get("follower_check_passed").Bool(),
		FollowerCount:       res.Get("follower_count_simulated").Int(),
		VerificationCode:    res.Get("verification_code").String(),
		Instructions:        res.Get("user_instructions").String(),
	}
	if op.FollowerCount < 0 {
		op.FollowerCount = 0
	}
	return op, nil
}
