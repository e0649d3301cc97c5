package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Profile is the identity an access grant attaches to. A row exists for every
// signed-up user and for every waitlist applicant we have an email for.
type Profile struct {
	ProfileID           uuid.UUID      `gorm:"column:profile_id;type:uuid;primaryKey" json:"profile_id"`
	Email               string         `gorm:"column:email;not null;uniqueIndex" json:"email"`
	DisplayName         string         `gorm:"column:display_name" json:"display_name"`
	PasswordHash        string         `gorm:"column:password_hash" json:"-"`
	Role                string         `gorm:"column:role;not null;default:member" json:"role"`
	BetaAccess          bool           `gorm:"column:beta_access;not null;default:false" json:"beta_access"`
	BetaAccessGrantedAt *time.Time     `gorm:"column:beta_access_granted_at" json:"beta_access_granted_at"`
	InviteCodeUsed      *string        `gorm:"column:invite_code_used" json:"invite_code_used"`
	ReferralCount       int            `gorm:"column:referral_count;not null;default:0" json:"referral_count"`
	CreatedAt           time.Time      `json:"createdAt"`
	UpdatedAt           time.Time      `json:"updatedAt"`
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Profile) TableName() string {
	return "profiles"
}

// BeforeCreate sets UUID if not set (for DBs without gen_random_uuid).
func (p *Profile) BeforeCreate(tx *gorm.DB) error {
	if p.ProfileID == uuid.Nil {
		p.ProfileID = uuid.New()
	}
	return nil
}
