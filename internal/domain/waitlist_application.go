package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Waitlist application statuses.
const (
	ApplicationApproved   = "approved"
	ApplicationPending    = "pending"
	ApplicationAtCapacity = "at_capacity"
)

// WaitlistApplication is one scoring event. Re-submitting creates a new row;
// rows are never mutated after the decision is recorded.
type WaitlistApplication struct {
	ApplicationID uuid.UUID      `gorm:"column:application_id;type:uuid;primaryKey" json:"application_id"`
	Email         string         `gorm:"column:email;not null;index" json:"email"`
	Answers       datatypes.JSON `gorm:"column:answers;not null" json:"answers"`
	Breakdown     datatypes.JSON `gorm:"column:breakdown;not null" json:"breakdown"`
	Score         int            `gorm:"column:score;not null" json:"score"`
	ScoreVersion  string         `gorm:"column:score_version;not null" json:"score_version"`
	Status        string         `gorm:"column:status;not null;default:'pending'" json:"status"`
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`
}

func (WaitlistApplication) TableName() string {
	return "waitlist_applications"
}

func (a *WaitlistApplication) BeforeCreate(tx *gorm.DB) error {
	if a.ApplicationID == uuid.Nil {
		a.ApplicationID = uuid.New()
	}
	return nil
}
