package model

import (
	"strconv"
	"time"

	"gift-core/pkg/crypto_util"
	"gift-core/pkg/errno"
)

type AuditAction string

const (
	ActionApproveWithdrawal   AuditAction = "APPROVE_WITHDRAWAL"
	ActionRejectWithdrawal    AuditAction = "REJECT_WITHDRAWAL"
	ActionApproveCreator      AuditAction = "APPROVE_CREATOR"
	ActionRejectCreator       AuditAction = "REJECT_CREATOR"
	ActionSuspendUser         AuditAction = "SUSPEND_USER"
	ActionActivateUser        AuditAction = "ACTIVATE_USER"
	ActionUpdateSpendingLimit AuditAction = "UPDATE_SPENDING_LIMIT"
)

// AuditLogEntry 管理操作审计日志，只追加不修改。
// Hash 覆盖前一条的 Hash，篡改任何一条都会导致后续校验失败
type AuditLogEntry struct {
	ID        string      `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Seq       int64       `gorm:"not null;uniqueIndex" json:"seq"`
	AdminID   string      `gorm:"type:varchar(64);not null;index" json:"admin_id"`
	Action    AuditAction `gorm:"type:varchar(64);not null" json:"action"`
	TargetID  string      `gorm:"type:varchar(64);not null" json:"target"`
	Details   string      `gorm:"type:text" json:"details"`
	CreatedAt time.Time   `gorm:"not null" json:"timestamp"`
	PrevHash  string      `gorm:"type:char(64)" json:"prev_hash"`
	Hash      string      `gorm:"type:char(64);not null" json:"hash"`
}

func (AuditLogEntry) TableName() string { return "audit_logs" }

// ComputeHash hashes the entry's content together with PrevHash.
func (e *AuditLogEntry) ComputeHash() string {
	return crypto_util.ChainHash(e.PrevHash,
		e.ID,
		strconv.FormatInt(e.Seq, 10),
		e.AdminID,
		string(e.Action),
		e.TargetID,
		e.Details,
		e.CreatedAt.UTC().Format(time.RFC3339Nano),
	)
}

// Seal links the entry to prev (nil for the first entry) and fills Seq and Hash.
func (e *AuditLogEntry) Seal(prev *AuditLogEntry) {
	if prev == nil {
		e.Seq = 1
		e.PrevHash = ""
	} else {
		e.Seq = prev.Seq + 1
		e.PrevHash = prev.Hash
	}
	e.Hash = e.ComputeHash()
}

// VerifyChain 校验按 Seq 升序排列的审计日志
func VerifyChain(entries []AuditLogEntry) error {
	prevHash := ""
	for i := range entries {
		e := &entries[i]
		if e.Seq != int64(i+1) {
			return errno.ErrAuditChainBroken.Withf("inconsistent state: audit entry %s has seq %d, want %d", e.ID, e.Seq, i+1)
		}
		if e.PrevHash != prevHash {
			return errno.ErrAuditChainBroken.Withf("inconsistent state: audit entry %s does not link to its predecessor", e.ID)
		}
		if e.Hash != e.ComputeHash() {
			return errno.ErrAuditChainBroken.Withf("inconsistent state: audit entry %s was modified", e.ID)
		}
		prevHash = e.Hash
	}
	return nil
}
