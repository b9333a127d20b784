package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gift-core/internal/model"
	"gift-core/internal/store"
	"gift-core/pkg/errno"
	"gift-core/pkg/logger"
	"gift-core/pkg/monitor"
	"gift-core/pkg/utils/lock"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const reconcileLockKey = "cron:lock:reconcile"

// ReconcileReport 一次对账的结果
type ReconcileReport struct {
	AuditEntries    int   `json:"audit_entries"`
	Transactions    int   `json:"transactions"`
	PlatformBalance int64 `json:"platform_balance"`
}

// ReconcileService 定时校验审计哈希链与每笔交易的拆分，并刷新平台余额指标
type ReconcileService struct {
	cron   *cron.Cron
	store  store.Reader
	locker lock.DistributedLock
	spec   string
}

func NewReconcileService(s store.Reader, locker lock.DistributedLock, spec string) *ReconcileService {
	if spec == "" {
		spec = "@every 5m"
	}
	return &ReconcileService{
		cron:   cron.New(),
		store:  s,
		locker: locker,
		spec:   spec,
	}
}

func (s *ReconcileService) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.run); err != nil {
		return fmt.Errorf("schedule reconcile %q: %w", s.spec, err)
	}
	s.cron.Start()
	logger.Info("Reconcile cron started", zap.String("spec", s.spec))
	return nil
}

// Stop 等待正在执行的任务结束
func (s *ReconcileService) Stop() {
	<-s.cron.Stop().Done()
	logger.Info("Reconcile cron stopped")
}

func (s *ReconcileService) run() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	// 1. 获取分布式锁，防止多实例同时执行
	locked, err := s.locker.Acquire(ctx, reconcileLockKey, time.Minute)
	if err != nil || !locked {
		logger.Debug("Reconcile skipped, lock held by another instance", zap.Error(err))
		return
	}
	defer func() { _ = s.locker.Release(ctx, reconcileLockKey) }()

	// 2. 执行对账
	report, err := s.Reconcile(ctx)
	if err != nil {
		monitor.Business.ReconcileRunsTotal.WithLabelValues("failed").Inc()
		logger.Error("Reconcile failed", zap.Error(err))
		return
	}
	monitor.Business.ReconcileRunsTotal.WithLabelValues("ok").Inc()
	logger.Info("Reconcile finished",
		zap.Int("audit_entries", report.AuditEntries),
		zap.Int("transactions", report.Transactions),
		zap.Int64("platform_balance", report.PlatformBalance))
}

// Reconcile 执行一次完整校验，发现不一致时返回 Integrity 类错误
func (s *ReconcileService) Reconcile(ctx context.Context) (*ReconcileReport, error) {
	entries, err := s.store.ListAuditLog(ctx)
	if err != nil {
		return nil, err
	}
	if err := model.VerifyChain(entries); err != nil {
		return nil, err
	}

	txs, err := s.store.ListTransactions(ctx, store.TransactionFilter{})
	if err != nil {
		return nil, err
	}
	var broken []error
	for i := range txs {
		if !txs[i].Balanced() {
			broken = append(broken, errno.ErrTransactionSplitBroken.Withf("inconsistent state: transaction %s splits %d into %d + %d",
				txs[i].ID, txs[i].Amount, txs[i].AdminFee, txs[i].CreatorAmount))
		}
	}
	if len(broken) > 0 {
		return nil, errors.Join(broken...)
	}

	balance, err := s.store.PlatformBalance(ctx)
	if err != nil {
		return nil, err
	}
	monitor.Business.PlatformBalance.Set(float64(balance))

	return &ReconcileReport{
		AuditEntries:    len(entries),
		Transactions:    len(txs),
		PlatformBalance: balance,
	}, nil
}
