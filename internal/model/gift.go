package model

import "time"

// Gift 礼物目录，价格固定
type Gift struct {
	ID        string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name      string    `gorm:"type:varchar(64);not null" json:"name"`
	Icon      string    `gorm:"type:varchar(16)" json:"icon"`
	Price     int64     `gorm:"not null;check:price > 0" json:"price"`
	CreatedAt time.Time `json:"created_at"`
}

func (Gift) TableName() string { return "gifts" }

// Transaction 一次送礼的不可变记录: AdminFee + CreatorAmount == Amount
type Transaction struct {
	ID            string    `gorm:"primaryKey;type:varchar(64)" json:"id"`
	SenderID      string    `gorm:"type:varchar(64);not null;index" json:"sender_id"`
	ReceiverID    string    `gorm:"type:varchar(64);not null;index" json:"receiver_id"`
	GiftID        string    `gorm:"type:varchar(64);not null" json:"gift_id"`
	Amount        int64     `gorm:"not null" json:"amount"`
	AdminFee      int64     `gorm:"not null" json:"admin_fee"`
	CreatorAmount int64     `gorm:"not null" json:"creator_amount"`
	CreatedAt     time.Time `gorm:"index" json:"created_at"`
}

func (Transaction) TableName() string { return "gift_transactions" }

// Balanced reports whether the fee split adds back up to the gross amount.
func (t *Transaction) Balanced() bool {
	return t.AdminFee >= 0 && t.CreatorAmount >= 0 && t.AdminFee+t.CreatorAmount == t.Amount
}
