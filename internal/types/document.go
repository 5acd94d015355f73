package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DocumentTypeSupportLetter  = "SUPPORT_LETTER"
	DocumentTypePhoto          = "PHOTO"
	DocumentTypeCertificate    = "CERTIFICATE"
	DocumentTypeEmploymentPlan = "EMPLOYMENT_PLAN"
	DocumentTypeHousingPlan    = "HOUSING_PLAN"
	DocumentTypeOther          = "OTHER"
)

type Document struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	CaseID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"case_id"`
	Case        *Case          `gorm:"constraint:OnDelete:CASCADE;foreignKey:CaseID;references:ID" json:"case,omitempty"`
	Type        string         `gorm:"not null;column:type;index" json:"type"`
	FileName    string         `gorm:"not null;column:file_name" json:"file_name"`
	ContentType string         `gorm:"column:content_type" json:"content_type"`
	SizeBytes   int64          `gorm:"column:size_bytes" json:"size_bytes"`
	BucketKey   string         `gorm:"not null;column:bucket_key" json:"bucket_key"`
	CreatedAt   time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Document) TableName() string { return "document" }
