package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gift-core/internal/advisor"
	"gift-core/internal/event"
	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/clock"
	"gift-core/pkg/errno"
	"gift-core/pkg/logger"
	"gift-core/pkg/monitor"

	"go.uber.org/zap"
)

// VerificationResult 提交认证后返回给创作者的内容: 更新后的账户与预审意见
type VerificationResult struct {
	Creator model.Creator              `json:"creator"`
	Opinion advisor.EligibilityOpinion `json:"opinion"`
}

type VerificationService struct {
	store   store.Store
	clock   clock.Clock
	advisor advisor.Advisor
	timeout time.Duration
}

func NewVerificationService(s store.Store, c clock.Clock, adv advisor.Advisor, timeout time.Duration) *VerificationService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &VerificationService{store: s, clock: c, advisor: adv, timeout: timeout}
}

// NormalizeHandle 去掉首尾空白与前导 @
func NormalizeHandle(handle string) string {
	return strings.TrimPrefix(strings.TrimSpace(handle), "@")
}

func checkResubmit(c *model.Creator) error {
	switch c.VerificationStatus {
	case model.VerificationVerified:
		return errno.ErrAlreadyVerified.Withf("Creator %s is already verified", c.ID)
	case model.VerificationPending:
		return errno.ErrVerificationPending.Withf("Creator %s already has a verification pending review", c.ID)
	}
	return nil
}

// SubmitVerification 创作者提交社交账号。预审通过进入 pending 等待人工审核，否则直接 rejected
func (s *VerificationService) SubmitVerification(ctx context.Context, creatorID, handle string) (*VerificationResult, error) {
	handle = NormalizeHandle(handle)
	if handle == "" {
		return nil, errno.ErrInvalidHandle
	}

	// 1. 预检查
	acc, err := s.store.GetAccount(ctx, creatorID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, errno.ErrCreatorNotFound.Withf("Creator %s not found", creatorID)
	}
	if err != nil {
		return nil, err
	}
	creator, ok := acc.(*model.Creator)
	if !ok {
		return nil, errno.ErrCreatorNotFound.Withf("Account %s is not a creator", creatorID)
	}
	if err := checkResubmit(creator); err != nil {
		return nil, err
	}

	// 2. 外部预审 (锁外)
	opinion, err := s.assessEligibility(ctx, handle)
	if err != nil {
		return nil, err
	}

	status := model.VerificationRejected
	if opinion.Passed() {
		status = model.VerificationPending
	}

	// 3. 工作单元
	now := s.clock.Now()
	var updated *model.Creator
	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		c, err := loadCreator(tx, creatorID)
		if err != nil {
			return err
		}
		// 预审期间状态可能已被并发请求改变
		if err := checkResubmit(c); err != nil {
			return err
		}
		c.Handle = handle
		c.Followers = opinion.FollowerCount
		c.VerificationStatus = status
		c.UpdatedAt = now
		if err := tx.SaveAccount(c); err != nil {
			return err
		}
		updated = c
		return emit(tx, event.TopicVerification, creatorID, event.VerificationUpdatedEvent{
			CreatorID:  creatorID,
			Handle:     c.Handle,
			Followers:  c.Followers,
			Status:     string(status),
			OccurredAt: now,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.VerificationsTotal.WithLabelValues(string(status)).Inc()
	logger.Info("Verification submitted",
		zap.String("creator", creatorID),
		zap.String("handle", updated.Handle),
		zap.Int64("followers", updated.Followers),
		zap.String("status", string(status)),
		zap.Bool("fallback", opinion.Fallback))
	return &VerificationResult{Creator: *updated, Opinion: opinion}, nil
}

func (s *VerificationService) assessEligibility(ctx context.Context, handle string) (advisor.EligibilityOpinion, error) {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	opinion, err := s.advisor.AssessCreatorEligibility(cctx, handle)
	monitor.Business.AdvisorLatency.WithLabelValues("creator_eligibility").Observe(time.Since(start).Seconds())
	if err == nil {
		return opinion, nil
	}

	monitor.Business.AdvisorFallbackTotal.WithLabelValues("creator_eligibility").Inc()
	logger.Warn("Eligibility advisor failed, using local fallback", zap.String("handle", handle), zap.Error(err))
	fallback, ferr := advisor.FallbackEligibility()
	if ferr != nil {
		return advisor.EligibilityOpinion{}, fmt.Errorf("fallback eligibility: %w", ferr)
	}
	return fallback, nil
}

// ReviewCreator 管理员审核 pending 状态的认证申请，decision 只能是 verified 或 rejected
func (s *VerificationService) ReviewCreator(ctx context.Context, creatorID string, decision model.VerificationStatus, adminID string) (*model.Creator, error) {
	if decision != model.VerificationVerified && decision != model.VerificationRejected {
		return nil, errno.ErrInvalidDecision.Withf("Unknown creator decision %q", decision)
	}

	now := s.clock.Now()
	var (
		creator *model.Creator
		entry   *model.AuditLogEntry
	)
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		admin, err := loadAdmin(tx, adminID)
		if err != nil {
			return err
		}
		creator, err = loadCreator(tx, creatorID)
		if err != nil {
			return err
		}
		if creator.VerificationStatus != model.VerificationPending {
			return errno.ErrVerificationNotPending.Withf("Creator %s is %s, not pending", creatorID, creator.VerificationStatus)
		}

		creator.VerificationStatus = decision
		creator.UpdatedAt = now
		if err := tx.SaveAccount(creator); err != nil {
			return err
		}

		action := model.ActionApproveCreator
		verb := "Approved"
		if decision == model.VerificationRejected {
			action = model.ActionRejectCreator
			verb = "Rejected"
		}
		details := fmt.Sprintf("%s creator application for %s (%d followers)", verb, creator.Handle, creator.Followers)
		if entry, err = appendAudit(tx, now, admin.ID, action, creatorID, details); err != nil {
			return err
		}
		return emit(tx, event.TopicVerification, creatorID, event.VerificationUpdatedEvent{
			CreatorID:  creatorID,
			Handle:     creator.Handle,
			Followers:  creator.Followers,
			Status:     string(decision),
			ReviewedBy: admin.ID,
			OccurredAt: now,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(entry)
	monitor.Business.CreatorReviewsTotal.WithLabelValues(string(decision)).Inc()
	logger.Info("Creator reviewed",
		zap.String("creator", creatorID),
		zap.String("decision", string(decision)),
		zap.String("admin", adminID))
	return creator, nil
}
