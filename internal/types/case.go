package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Case struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	User                 *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ClientName           string         `gorm:"not null;column:client_name" json:"client_name"`
	TDCJNumber           string         `gorm:"column:tdcj_number" json:"tdcj_number"`
	Unit                 string         `gorm:"column:unit" json:"unit"`
	District             string         `gorm:"column:district" json:"district"`
	ParoleEligibilityDate string        `gorm:"column:parole_eligibility_date" json:"parole_eligibility_date"`
	NextReviewDate       string         `gorm:"column:next_review_date" json:"next_review_date"`
	Status               string         `gorm:"not null;column:status;index" json:"status"` // intake|assessment_complete|generating|campaign_ready
	CreatedAt            time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt            time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Case) TableName() string { return "case" }
