package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/types"
)

type CaseRepo interface {
	Create(ctx context.Context, tx *gorm.DB, cases []*types.Case) ([]*types.Case, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, caseIDs []uuid.UUID) ([]*types.Case, error)
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Case, error)
	GetOwned(ctx context.Context, tx *gorm.DB, caseID, userID uuid.UUID) (*types.Case, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, caseIDs []uuid.UUID) error
}

type caseRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCaseRepo(db *gorm.DB, baseLog *logger.Logger) CaseRepo {
	repoLog := baseLog.With("repo", "CaseRepo")
	return &caseRepo{db: db, log: repoLog}
}

func (cr *caseRepo) Create(ctx context.Context, tx *gorm.DB, cases []*types.Case) ([]*types.Case, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(cases) == 0 {
		return []*types.Case{}, nil
	}
	if err := transaction.WithContext(ctx).Create(&cases).Error; err != nil {
		return nil, err
	}
	return cases, nil
}

func (cr *caseRepo) GetByIDs(ctx context.Context, tx *gorm.DB, caseIDs []uuid.UUID) ([]*types.Case, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Case
	if len(caseIDs) == 0 {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("id IN ?", caseIDs).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (cr *caseRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.Case, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	var results []*types.Case
	if userID == uuid.Nil {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetOwned loads a case only when it belongs to the given user. Returns
// (nil, nil) when no such case exists.
func (cr *caseRepo) GetOwned(ctx context.Context, tx *gorm.DB, caseID, userID uuid.UUID) (*types.Case, error) {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if caseID == uuid.Nil || userID == uuid.Nil {
		return nil, nil
	}
	var c types.Case
	err := transaction.WithContext(ctx).
		Where("id = ? AND user_id = ?", caseID, userID).
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

func (cr *caseRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Case{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (cr *caseRepo) SoftDeleteByIDs(ctx context.Context, tx *gorm.DB, caseIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = cr.db
	}
	if len(caseIDs) == 0 {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("id IN ?", caseIDs).
		Delete(&types.Case{}).Error
}
