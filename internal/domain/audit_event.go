package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Audit event actions.
const (
	AuditWaitlistSubmitted = "waitlist_submitted"
	AuditBetaApproved      = "beta_approved"
	AuditCodeRedeemed      = "code_redeemed"
	AuditReferralSignup    = "referral_signup"
)

// AuditEvent records a committed admission transition. Written after the
// transaction commits, never inside it.
type AuditEvent struct {
	EventID   uuid.UUID      `gorm:"column:event_id;type:uuid;primaryKey" json:"event_id"`
	Email     string         `gorm:"column:email;not null;index" json:"email"`
	Action    string         `gorm:"column:action;not null" json:"action"`
	EventData datatypes.JSON `gorm:"column:event_data" json:"event_data"`
	CreatedAt time.Time      `json:"createdAt"`
}

func (AuditEvent) TableName() string {
	return "audit_events"
}

func (e *AuditEvent) BeforeCreate(tx *gorm.DB) error {
	if e.EventID == uuid.Nil {
		e.EventID = uuid.New()
	}
	return nil
}
