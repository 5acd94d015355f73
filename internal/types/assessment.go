package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type Assessment struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID      uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"case_id"`
	Case        *Case          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CaseID;references:ID" json:"case,omitempty"`
	Responses   datatypes.JSON `gorm:"type:jsonb;not null;column:responses" json:"responses"`
	Completed   bool           `gorm:"not null;default:false;column:completed" json:"completed"`
	CompletedAt *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (Assessment) TableName() string { return "assessment" }
