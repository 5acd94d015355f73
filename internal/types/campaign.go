package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Campaign struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"case_id"`
	Case         *Case          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CaseID;references:ID" json:"case,omitempty"`
	Version      int            `gorm:"not null;default:1;column:version" json:"version"`
	Status       string         `gorm:"not null;column:status;index" json:"status"` // generating|ready|failed
	Blueprint    datatypes.JSON `gorm:"type:jsonb;column:blueprint" json:"blueprint,omitempty"`
	PDFBucketKey string         `gorm:"column:pdf_bucket_key" json:"pdf_bucket_key"`
	Error        string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt    time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Campaign) TableName() string { return "campaign" }
