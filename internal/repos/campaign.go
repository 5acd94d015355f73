package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/types"
)

type CampaignRepo interface {
	Create(ctx context.Context, tx *gorm.DB, campaigns []*types.Campaign) ([]*types.Campaign, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, campaignIDs []uuid.UUID) ([]*types.Campaign, error)
	GetByCaseID(ctx context.Context, tx *gorm.DB, caseID uuid.UUID) ([]*types.Campaign, error)
	GetLatestByCaseID(ctx context.Context, tx *gorm.DB, caseID uuid.UUID) (*types.Campaign, error)
	MaxVersionByCaseID(ctx context.Context, tx *gorm.DB, caseID uuid.UUID) (int, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type campaignRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCampaignRepo(db *gorm.DB, baseLog *logger.Logger) CampaignRepo {
	repoLog := baseLog.With("repo", "CampaignRepo")
	return &campaignRepo{db: db, log: repoLog}
}

func (cr *campaignRepo) Create(ctx context.Context, tx *gorm.DB, campaigns []*types.Campaign) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(campaigns) == 0 {
		return []*types.Campaign{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&campaigns).Error; err != nil {
		return nil, err
	}
	return campaigns, nil
}

func (cr *campaignRepo) GetByIDs(ctx context.Context, tx *gorm.DB, campaignIDs []uuid.UUID) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Campaign
	if len(campaignIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", campaignIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *campaignRepo) GetByCaseID(ctx context.Context, tx *gorm.DB, caseID uuid.UUID) ([]*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Campaign
	if caseID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("version DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *campaignRepo) GetLatestByCaseID(ctx context.Context, tx *gorm.DB, caseID uuid.UUID) (*types.Campaign, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if caseID == uuid.Nil {
		return nil, nil
	}
	var c types.Campaign
	err := transaction.WithContext(ctx).
		Where("case_id = ?", caseID).
		Order("version DESC").
		Limit(1).
		Find(&c).Error
	if err != nil {
		return nil, err
	}
	if c.ID == uuid.Nil {
		return nil, nil
	}
	return &c, nil
}

func (cr *campaignRepo) MaxVersionByCaseID(ctx context.Context, tx *gorm.DB, caseID uuid.UUID) (int, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var maxVersion int
	err := transaction.WithContext(ctx).
		Model(&types.Campaign{}).
		Where("case_id = ?", caseID).
		Select("COALESCE(MAX(version), 0)").
		Scan(&maxVersion).Error
	if err != nil {
		return 0, err
	}
	return maxVersion, nil
}

func (cr *campaignRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.Campaign{}).
		Where("id = ?", id).
		Updates(updates).Error
}
