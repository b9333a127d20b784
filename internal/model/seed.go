package model

import (
	"fmt"
	"time"
)

// Seed 启动时加载的初始数据集
type Seed struct {
	EndUsers        []EndUser
	Creators        []Creator
	Admins          []Admin
	Gifts           []Gift
	Transactions    []Transaction
	Withdrawals     []Withdrawal
	AuditLog        []AuditLogEntry
	PlatformBalance int64
}

func avatar(name string) string {
	return fmt.Sprintf("https://picsum.photos/seed/%s/200", name)
}

func base(id, name, email, seed string, status AccountStatus, now time.Time) AccountBase {
	return AccountBase{
		ID:        id,
		Name:      name,
		Email:     email,
		AvatarURL: avatar(seed),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// DefaultSeed 演示数据。时间戳相对 now 计算，审计日志按时间顺序封链
func DefaultSeed(now time.Time) Seed {
	now = now.UTC()
	hour := time.Hour
	day := 24 * time.Hour

	s := Seed{
		EndUsers: []EndUser{
			{AccountBase: base("user-1", "Alice", "alice@example.com", "alice", StatusActive, now), WalletBalance: 25000, SpendingLimit: 10000},
			{AccountBase: base("user-2", "Bob", "bob@example.com", "bob", StatusActive, now), WalletBalance: 5000, SpendingLimit: 5000},
			{AccountBase: base("user-3", "Suspended Sam", "sam@example.com", "sam", StatusSuspended, now), WalletBalance: 15000, SpendingLimit: 5000},
		},
		Creators: []Creator{
			{AccountBase: base("creator-1", "Charlie Creator", "charlie@example.com", "charlie", StatusActive, now), Handle: "charliecreates", Followers: 12000, Earnings: 54000, VerificationStatus: VerificationVerified},
			{AccountBase: base("creator-2", "Diana Entertainer", "diana@example.com", "diana", StatusActive, now), Handle: "dianadances", Followers: 500, Earnings: 12000, VerificationStatus: VerificationPending},
			{AccountBase: base("creator-3", "Eve Artist", "eve@example.com", "eve", StatusActive, now), Handle: "evepaints", Followers: 250000, Earnings: 105000, VerificationStatus: VerificationVerified},
			{AccountBase: base("creator-4", "Frank Gamer", "frank@example.com", "frank", StatusActive, now), Handle: "frankplays", Followers: 850, Earnings: 3000, VerificationStatus: VerificationRejected},
			{AccountBase: base("creator-5", "Suspended Sarah", "sarah@example.com", "sarah", StatusSuspended, now), Handle: "sarahsings", Followers: 50000, Earnings: 25000, VerificationStatus: VerificationVerified},
		},
		Admins: []Admin{
			{AccountBase: base("admin-1", "Admin", "admin@afritok.com", "admin", StatusActive, now), WalletBalance: 999999},
		},
		Gifts: []Gift{
			{ID: "gift-1", Name: "Rose", Icon: "🌹", Price: 100, CreatedAt: now},
			{ID: "gift-2", Name: "Diamond", Icon: "💎", Price: 500, CreatedAt: now},
			{ID: "gift-3", Name: "Crown", Icon: "👑", Price: 1000, CreatedAt: now},
			{ID: "gift-4", Name: "Lion", Icon: "🦁", Price: 5000, CreatedAt: now},
			{ID: "gift-5", Name: "Rocket", Icon: "🚀", Price: 10000, CreatedAt: now},
			{ID: "gift-6", Name: "Gold Coin", Icon: "🪙", Price: 50, CreatedAt: now},
		},
		Transactions: []Transaction{
			{ID: "tx-1", SenderID: "user-1", ReceiverID: "creator-1", GiftID: "gift-3", Amount: 1000, AdminFee: 100, CreatorAmount: 900, CreatedAt: now.Add(-hour)},
			{ID: "tx-2", SenderID: "user-2", ReceiverID: "creator-3", GiftID: "gift-1", Amount: 100, AdminFee: 10, CreatorAmount: 90, CreatedAt: now.Add(-2 * hour)},
		},
	}

	reviewer := "admin-1"
	reviewedAt := now.Add(-day)
	s.Withdrawals = []Withdrawal{
		{ID: "wd-1", CreatorID: "creator-1", Amount: 15000, Status: WithdrawalApproved, RequestedAt: now.Add(-2 * day), ReviewedBy: &reviewer, ReviewedAt: &reviewedAt, RiskLevel: RiskLow, RiskReason: "Standard withdrawal amount for a trusted creator."},
		{ID: "wd-2", CreatorID: "creator-3", Amount: 50000, Status: WithdrawalPending, RequestedAt: now.Add(-hour), RiskLevel: RiskMedium, RiskReason: "Amount is higher than average. Review recommended."},
	}

	logs := []AuditLogEntry{
		{ID: "log-2", AdminID: "admin-1", Action: ActionRejectCreator, TargetID: "creator-4", Details: "Rejected creator application for frankplays (850 followers)", CreatedAt: now.Add(-3 * day)},
		{ID: "log-1", AdminID: "admin-1", Action: ActionApproveWithdrawal, TargetID: "wd-1", Details: "Approved withdrawal of 15000 for creator creator-1", CreatedAt: now.Add(-day)},
	}
	for i := range logs {
		var prev *AuditLogEntry
		if i > 0 {
			prev = &logs[i-1]
		}
		logs[i].Seal(prev)
	}
	s.AuditLog = logs

	for _, tx := range s.Transactions {
		s.PlatformBalance += tx.AdminFee
	}
	return s
}
