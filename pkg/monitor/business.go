package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	GiftsSentTotal           *prometheus.CounterVec
	GiftVolumeTotal          prometheus.Counter
	PlatformFeesTotal        prometheus.Counter
	PlatformBalance          prometheus.Gauge
	WithdrawalRequestsTotal  *prometheus.CounterVec
	WithdrawalDecisionsTotal *prometheus.CounterVec
	WithdrawalPaidTotal      prometheus.Counter
	VerificationsTotal       *prometheus.CounterVec
	CreatorReviewsTotal      *prometheus.CounterVec
	AdvisorFallbackTotal     *prometheus.CounterVec
	AdvisorLatency           *prometheus.HistogramVec
	AuditEntriesTotal        *prometheus.CounterVec
	OutboxPublishedTotal     *prometheus.CounterVec
	ReconcileRunsTotal       *prometheus.CounterVec
}

// Business 全局实例。包初始化时注册到私有 Registry，Init 之后才会暴露给 /metrics
var Business = NewBusinessMetrics(prometheus.NewRegistry())

// NewBusinessMetrics 在 reg 上创建并注册全部业务指标
func NewBusinessMetrics(reg prometheus.Registerer) *BusinessMetrics {
	f := promauto.With(reg)
	return &BusinessMetrics{
		GiftsSentTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_sent_total",
			Help: "The total number of gifts sent",
		}, []string{"gift"}),
		GiftVolumeTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "gift_volume_total",
			Help: "Gross value of all gifts sent, in currency units",
		}),
		PlatformFeesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "gift_platform_fees_total",
			Help: "Fees credited to the platform wallet, in currency units",
		}),
		PlatformBalance: f.NewGauge(prometheus.GaugeOpts{
			Name: "gift_platform_balance",
			Help: "Current platform wallet balance",
		}),
		WithdrawalRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_withdrawal_requests_total",
			Help: "Withdrawal requests by risk level and outcome",
		}, []string{"risk", "outcome"}),
		WithdrawalDecisionsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_withdrawal_decisions_total",
			Help: "Admin decisions on pending withdrawals",
		}, []string{"decision"}),
		WithdrawalPaidTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "gift_withdrawal_paid_total",
			Help: "Creator earnings debited by approved withdrawals",
		}),
		VerificationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_verification_submissions_total",
			Help: "Creator verification submissions by pre-screen outcome",
		}, []string{"outcome"}),
		CreatorReviewsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_creator_reviews_total",
			Help: "Admin reviews of pending creator verifications",
		}, []string{"decision"}),
		AdvisorFallbackTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_advisor_fallback_total",
			Help: "Advisor calls that failed and fell back to the local opinion",
		}, []string{"operation"}),
		AdvisorLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "gift_advisor_latency_seconds",
			Help:    "Latency of risk and eligibility advisor calls",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}, []string{"operation"}),
		AuditEntriesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_audit_entries_total",
			Help: "Audit log entries appended by action",
		}, []string{"action"}),
		OutboxPublishedTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_outbox_published_total",
			Help: "Outbox messages relayed to the message queue",
		}, []string{"topic", "result"}),
		ReconcileRunsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "gift_reconcile_runs_total",
			Help: "Ledger reconcile job runs by result",
		}, []string{"result"}),
	}
}
