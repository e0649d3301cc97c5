package domain

import (
	"time"
)

// BetaCapacity is the capacity ledger: a single row holding the cap and the
// occupied-slot counters. ApprovedActive counts live grants and may only move
// through the conditional increment in the admission service; ApprovedTotal
// also counts revoked grants and is kept for audit.
type BetaCapacity struct {
	ID             int       `gorm:"column:id;primaryKey" json:"id"`
	Cap            int       `gorm:"column:cap;not null" json:"cap"`
	ApprovedActive int       `gorm:"column:approved_active;not null;default:0" json:"approved_active"`
	ApprovedTotal  int       `gorm:"column:approved_total;not null;default:0" json:"approved_total"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func (BetaCapacity) TableName() string {
	return "beta_capacity"
}

// BetaCapacityRowID is the fixed primary key of the singleton ledger row.
const BetaCapacityRowID = 1
