package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/requestdata"
	"github.com/parolegy/parolegy-backend/internal/types"
)

const (
	CaseStatusIntake             = "intake"
	CaseStatusAssessmentComplete = "assessment_complete"
	CaseStatusGenerating         = "generating"
	CaseStatusCampaignReady      = "campaign_ready"
)

type CreateCaseInput struct {
	ClientName string `json:"client_name" binding:"required"`
	TDCJNumber string `json:"tdcj_number"`
	Unit       string `json:"unit"`
	District   string `json:"district"`
}

type CaseService interface {
	CreateCase(ctx context.Context, input CreateCaseInput) (*types.Case, error)
	ListCases(ctx context.Context) ([]*types.Case, error)
	GetCase(ctx context.Context, caseID uuid.UUID) (*types.Case, error)
}

type caseService struct {
	db       *gorm.DB
	log      *logger.Logger
	caseRepo repos.CaseRepo
}

func NewCaseService(db *gorm.DB, log *logger.Logger, caseRepo repos.CaseRepo) CaseService {
	serviceLog := log.With("service", "CaseService")
	return &caseService{db: db, log: serviceLog, caseRepo: caseRepo}
}

func currentUserID(ctx context.Context) (uuid.UUID, error) {
	rd := requestdata.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no request data found in context")
	}
	return rd.UserID, nil
}

func (cs *caseService) CreateCase(ctx context.Context, input CreateCaseInput) (*types.Case, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	c := &types.Case{
		ID:         uuid.New(),
		UserID:     userID,
		ClientName: input.ClientName,
		TDCJNumber: input.TDCJNumber,
		Unit:       input.Unit,
		District:   input.District,
		Status:     CaseStatusIntake,
	}
	if _, cErr := cs.caseRepo.Create(ctx, nil, []*types.Case{c}); cErr != nil {
		return nil, fmt.Errorf("failed to create case: %w", cErr)
	}
	return c, nil
}

func (cs *caseService) ListCases(ctx context.Context) ([]*types.Case, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	cases, lErr := cs.caseRepo.GetByUserID(ctx, nil, userID)
	if lErr != nil {
		return nil, fmt.Errorf("failed to list cases: %w", lErr)
	}
	return cases, nil
}

func (cs *caseService) GetCase(ctx context.Context, caseID uuid.UUID) (*types.Case, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	c, gErr := cs.caseRepo.GetOwned(ctx, nil, caseID, userID)
	if gErr != nil {
		return nil, fmt.Errorf("failed to load case: %w", gErr)
	}
	if c == nil {
		return nil, fmt.Errorf("case not found")
	}
	return c, nil
}
