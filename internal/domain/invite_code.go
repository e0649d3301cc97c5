package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InviteCode grants beta access out-of-band of the scored waitlist. Codes are
// stored canonicalized (trimmed, uppercase). Uses must never exceed MaxUses;
// the increment is guarded in SQL, not in application code.
type InviteCode struct {
	CodeID     uuid.UUID      `gorm:"column:code_id;type:uuid;primaryKey" json:"code_id"`
	Code       string         `gorm:"column:code;not null;uniqueIndex" json:"code"`
	MaxUses    int            `gorm:"column:max_uses;not null;default:1" json:"max_uses"`
	Uses       int            `gorm:"column:uses;not null;default:0" json:"uses"`
	Active     bool           `gorm:"column:active;not null;default:true" json:"active"`
	ExpiresAt  *time.Time     `gorm:"column:expires_at" json:"expires_at"`
	CreatedBy  *uuid.UUID     `gorm:"column:created_by;type:uuid" json:"created_by"`
	LastUsedBy *uuid.UUID     `gorm:"column:last_used_by;type:uuid" json:"last_used_by"`
	Note       string         `gorm:"column:note" json:"note"`
	CreatedAt  time.Time      `json:"createdAt"`
	UpdatedAt  time.Time      `json:"updatedAt"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`
}

func (InviteCode) TableName() string {
	return "invite_codes"
}

func (ic *InviteCode) BeforeCreate(tx *gorm.DB) error {
	if ic.CodeID == uuid.Nil {
		ic.CodeID = uuid.New()
	}
	return nil
}

// Exhausted reports whether the code has no uses left. Checked in addition to
// Active so a stale Active flag can never hand out an extra grant.
func (ic *InviteCode) Exhausted() bool {
	return ic.Uses >= ic.MaxUses
}
