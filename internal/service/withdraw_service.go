package service

import (
	"context"
	"errors"
	"fmt"
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

// Decision 管理员对提现单的审批结论
type Decision string

const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

func (d Decision) Valid() bool {
	return d == DecisionApprove || d == DecisionReject
}

type WithdrawService struct {
	store   store.Store
	clock   clock.Clock
	advisor advisor.Advisor
	timeout time.Duration
}

func NewWithdrawService(s store.Store, c clock.Clock, adv advisor.Advisor, timeout time.Duration) *WithdrawService {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &WithdrawService{store: s, clock: c, advisor: adv, timeout: timeout}
}

// RequestWithdrawal 创建提现申请。
// 风控评估在工作单元之外进行；High 直接拒绝且不落库，Low/Medium 进入人工审核
func (s *WithdrawService) RequestWithdrawal(ctx context.Context, creatorID string, amount int64) (*model.Withdrawal, error) {
	if amount <= 0 {
		return nil, errno.ErrInvalidAmount
	}

	// 1. 预检查 (无锁读取)
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
	if err := CanTransact(creator); err != nil {
		return nil, err
	}
	if amount > creator.Earnings {
		monitor.Business.WithdrawalRequestsTotal.WithLabelValues("none", "insufficient").Inc()
		return nil, errno.ErrInsufficientFunds.Withf("Withdrawal of %d exceeds earnings %d", amount, creator.Earnings)
	}

	// 2. 外部风控 (不持有任何锁)
	opinion := s.assessRisk(ctx, amount, creator.Earnings)
	if opinion.Level == model.RiskHigh {
		monitor.Business.WithdrawalRequestsTotal.WithLabelValues(string(model.RiskHigh), "blocked").Inc()
		logger.Warn("Withdrawal blocked by risk assessment",
			zap.String("creator", creatorID),
			zap.Int64("amount", amount),
			zap.String("reason", opinion.Reason))
		return nil, errno.ErrWithdrawalRiskBlocked.WithMessage(opinion.Reason)
	}

	// 3. 工作单元: 重新读取并校验可用余额 (收益减去待审核的提现)
	now := s.clock.Now()
	var w *model.Withdrawal
	err = s.store.Transaction(ctx, func(tx store.Tx) error {
		c, err := loadCreator(tx, creatorID)
		if err != nil {
			return err
		}
		if err := CanTransact(c); err != nil {
			return err
		}
		reserved, err := tx.PendingWithdrawalTotal(creatorID)
		if err != nil {
			return err
		}
		if available := c.Earnings - reserved; amount > available {
			return errno.ErrInsufficientFunds.Withf("Withdrawal of %d exceeds available earnings %d (%d pending review)", amount, available, reserved)
		}

		w = &model.Withdrawal{
			ID:          model.NewID("wd"),
			CreatorID:   creatorID,
			Amount:      amount,
			Status:      model.WithdrawalPending,
			RequestedAt: now,
			RiskLevel:   opinion.Level,
			RiskReason:  opinion.Reason,
		}
		if err := tx.CreateWithdrawal(w); err != nil {
			return err
		}
		return emit(tx, event.TopicWithdrawal, creatorID, event.WithdrawalRequestedEvent{
			WithdrawalID: w.ID,
			CreatorID:    creatorID,
			Amount:       amount,
			RiskLevel:    string(opinion.Level),
			OccurredAt:   now,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	monitor.Business.WithdrawalRequestsTotal.WithLabelValues(string(opinion.Level), "pending").Inc()
	logger.Info("Withdrawal requested",
		zap.String("withdrawal_id", w.ID),
		zap.String("creator", creatorID),
		zap.Int64("amount", amount),
		zap.String("risk", string(opinion.Level)))
	return w, nil
}

// assessRisk 调用外部风控，超时或失败一律按 High 处理
func (s *WithdrawService) assessRisk(ctx context.Context, amount, earnings int64) advisor.RiskOpinion {
	cctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	start := time.Now()
	opinion, err := s.advisor.AssessWithdrawalRisk(cctx, amount, earnings)
	monitor.Business.AdvisorLatency.WithLabelValues("withdrawal_risk").Observe(time.Since(start).Seconds())
	if err == nil && !opinion.Level.Valid() {
		err = errno.ErrAdvisorResponse.Withf("unknown risk level %q", opinion.Level)
	}
	if err != nil {
		monitor.Business.AdvisorFallbackTotal.WithLabelValues("withdrawal_risk").Inc()
		logger.Warn("Risk advisor failed, treating withdrawal as high risk", zap.Error(err))
		return advisor.UnavailableRisk(err)
	}
	return opinion
}

// DecideWithdrawal 审批提现单。批准时扣减创作者收益；两种结论都会写审计日志
func (s *WithdrawService) DecideWithdrawal(ctx context.Context, withdrawalID string, decision Decision, adminID string) (*model.Withdrawal, error) {
	if !decision.Valid() {
		return nil, errno.ErrInvalidDecision.Withf("Unknown decision %q", decision)
	}

	now := s.clock.Now()
	var (
		w     *model.Withdrawal
		entry *model.AuditLogEntry
	)
	err := s.store.Transaction(ctx, func(tx store.Tx) error {
		// 1. 操作人
		admin, err := loadAdmin(tx, adminID)
		if err != nil {
			return err
		}

		// 2. 悲观锁读取提现单
		w, err = tx.Withdrawal(withdrawalID)
		if errors.Is(err, store.ErrNotFound) {
			return errno.ErrWithdrawalNotFound.Withf("Withdrawal %s not found", withdrawalID)
		}
		if err != nil {
			return err
		}

		// 3. 状态检查: pending 只能离开一次
		if w.Terminal() {
			return errno.ErrWithdrawalDecided.Withf("inconsistent state: withdrawal %s is already %s", w.ID, w.Status)
		}

		action := model.ActionRejectWithdrawal
		details := fmt.Sprintf("Rejected withdrawal of %d for creator %s", w.Amount, w.CreatorID)
		w.Status = model.WithdrawalRejected

		// 4. 批准: 扣减收益
		if decision == DecisionApprove {
			creator, err := tx.Creator(w.CreatorID)
			if errors.Is(err, store.ErrNotFound) {
				return errno.ErrInconsistentState.Withf("inconsistent state: withdrawal %s references missing creator %s", w.ID, w.CreatorID)
			}
			if err != nil {
				return err
			}
			if err := creator.DebitEarnings(w.Amount); err != nil {
				return err
			}
			creator.UpdatedAt = now
			if err := tx.SaveAccount(creator); err != nil {
				return err
			}
			action = model.ActionApproveWithdrawal
			details = fmt.Sprintf("Approved withdrawal of %d for creator %s", w.Amount, w.CreatorID)
			w.Status = model.WithdrawalApproved
		}

		reviewer := admin.ID
		reviewedAt := now
		w.ReviewedBy = &reviewer
		w.ReviewedAt = &reviewedAt
		if err := tx.SaveWithdrawal(w); err != nil {
			return err
		}

		// 5. 审计 + Outbox
		if entry, err = appendAudit(tx, now, admin.ID, action, w.ID, details); err != nil {
			return err
		}
		return emit(tx, event.TopicWithdrawal, w.CreatorID, event.WithdrawalDecidedEvent{
			WithdrawalID: w.ID,
			CreatorID:    w.CreatorID,
			Amount:       w.Amount,
			Status:       string(w.Status),
			ReviewedBy:   admin.ID,
			OccurredAt:   now,
		}, now)
	})
	if err != nil {
		return nil, err
	}

	recordAudit(entry)
	monitor.Business.WithdrawalDecisionsTotal.WithLabelValues(string(decision)).Inc()
	if w.Status == model.WithdrawalApproved {
		monitor.Business.WithdrawalPaidTotal.Add(float64(w.Amount))
	}
	logger.Info("Withdrawal decided",
		zap.String("withdrawal_id", w.ID),
		zap.String("status", string(w.Status)),
		zap.String("admin", adminID))
	return w, nil
}
