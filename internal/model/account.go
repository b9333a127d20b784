package model

import (
	"time"

	"gift-core/pkg/errno"
)

type Role string

const (
	RoleEndUser Role = "end_user"
	RoleCreator Role = "creator"
	RoleAdmin   Role = "admin"
)

type AccountStatus string

const (
	StatusActive    AccountStatus = "active"
	StatusSuspended AccountStatus = "suspended"
)

func (s AccountStatus) Valid() bool {
	return s == StatusActive || s == StatusSuspended
}

type VerificationStatus string

const (
	VerificationNone     VerificationStatus = "none"
	VerificationPending  VerificationStatus = "pending"
	VerificationVerified VerificationStatus = "verified"
	VerificationRejected VerificationStatus = "rejected"
)

// AccountBase 三种角色共享的字段
type AccountBase struct {
	ID        string        `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string        `gorm:"type:varchar(255);not null" json:"name"`
	Email     string        `gorm:"type:varchar(255);not null;unique" json:"email"`
	AvatarURL string        `gorm:"type:varchar(512)" json:"avatar_url,omitempty"`
	Status    AccountStatus `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	CreatedAt time.Time     `gorm:"autoCreateTime:false" json:"created_at"`
	UpdatedAt time.Time     `gorm:"autoUpdateTime:false" json:"updated_at"`
}

func (b *AccountBase) Active() bool {
	return b.Status == StatusActive
}

// Account 是 EndUser / Creator / Admin 的公共视图。
// 具体角色的字段只存在于对应的结构体上
type Account interface {
	Base() *AccountBase
	Role() Role
	// Balance 可支配余额: 用户与管理员是钱包余额，创作者是可提现收益
	Balance() int64
}

// Spender 可以购买礼物的账户
type Spender interface {
	Account
	Debit(amount int64) error
}

// EndUser 普通用户，拥有钱包余额和单笔消费上限
type EndUser struct {
	AccountBase
	WalletBalance int64 `gorm:"not null;default:0;check:wallet_balance >= 0" json:"wallet_balance"`
	SpendingLimit int64 `gorm:"not null;default:0;check:spending_limit >= 0" json:"spending_limit"`
}

func (EndUser) TableName() string { return "end_users" }

func (u *EndUser) Base() *AccountBase { return &u.AccountBase }
func (u *EndUser) Role() Role         { return RoleEndUser }
func (u *EndUser) Balance() int64     { return u.WalletBalance }

func (u *EndUser) Debit(amount int64) error {
	if amount > u.WalletBalance {
		return errno.ErrNegativeBalance.Withf("inconsistent state: wallet of %s would go negative", u.ID)
	}
	u.WalletBalance -= amount
	return nil
}

// Creator 内容创作者，收礼并申请提现
type Creator struct {
	AccountBase
	Handle             string             `gorm:"type:varchar(64);index" json:"handle"`
	Followers          int64              `gorm:"not null;default:0" json:"followers"`
	Earnings           int64              `gorm:"not null;default:0;check:earnings >= 0" json:"earnings"`
	VerificationStatus VerificationStatus `gorm:"type:varchar(20);not null;default:'none'" json:"verification_status"`
}

func (Creator) TableName() string { return "creators" }

func (c *Creator) Base() *AccountBase { return &c.AccountBase }
func (c *Creator) Role() Role         { return RoleCreator }
func (c *Creator) Balance() int64     { return c.Earnings }

// Discoverable 已认证且未封禁的创作者才会出现在礼物页
func (c *Creator) Discoverable() bool {
	return c.VerificationStatus == VerificationVerified && c.Active()
}

func (c *Creator) Credit(amount int64) {
	c.Earnings += amount
}

func (c *Creator) DebitEarnings(amount int64) error {
	if amount > c.Earnings {
		return errno.ErrNegativeBalance.Withf("inconsistent state: earnings of %s would go negative", c.ID)
	}
	c.Earnings -= amount
	return nil
}

// Admin 平台管理员。管理员也可以作为买家送礼，不受消费上限约束
type Admin struct {
	AccountBase
	WalletBalance int64 `gorm:"not null;default:0;check:wallet_balance >= 0" json:"wallet_balance"`
}

func (Admin) TableName() string { return "admins" }

func (a *Admin) Base() *AccountBase { return &a.AccountBase }
func (a *Admin) Role() Role         { return RoleAdmin }
func (a *Admin) Balance() int64     { return a.WalletBalance }

func (a *Admin) Debit(amount int64) error {
	if amount > a.WalletBalance {
		return errno.ErrNegativeBalance.Withf("inconsistent state: wallet of %s would go negative", a.ID)
	}
	a.WalletBalance -= amount
	return nil
}

// PlatformWallet 平台手续费汇总账户 (单行)
type PlatformWallet struct {
	ID        string    `gorm:"primaryKey;type:varchar(32)" json:"id"`
	Balance   int64     `gorm:"not null;default:0;check:balance >= 0" json:"balance"`
	UpdatedAt time.Time `gorm:"autoUpdateTime:false" json:"updated_at"`
}

const PlatformWalletID = "platform"

func (PlatformWallet) TableName() string { return "platform_wallets" }

// AccountView 是对外输出的扁平结构，字段按角色可选
type AccountView struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	Email              string             `json:"email"`
	AvatarURL          string             `json:"avatar_url,omitempty"`
	Role               Role               `json:"role"`
	Status             AccountStatus      `json:"status"`
	Balance            int64              `json:"balance"`
	SpendingLimit      *int64             `json:"spending_limit,omitempty"`
	Handle             string             `json:"handle,omitempty"`
	Followers          *int64             `json:"followers,omitempty"`
	VerificationStatus VerificationStatus `json:"verification_status,omitempty"`
}

func View(a Account) AccountView {
	b := a.Base()
	v := AccountView{
		ID:        b.ID,
		Name:      b.Name,
		Email:     b.Email,
		AvatarURL: b.AvatarURL,
		Role:      a.Role(),
		Status:    b.Status,
		Balance:   a.Balance(),
	}
	switch acc := a.(type) {
	case *EndUser:
		limit := acc.SpendingLimit
		v.SpendingLimit = &limit
	case *Creator:
		followers := acc.Followers
		v.Handle = acc.Handle
		v.Followers = &followers
		v.VerificationStatus = acc.VerificationStatus
	}
	return v
}
