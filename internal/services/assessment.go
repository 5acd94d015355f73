package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/types"
)

type AssessmentService interface {
	SaveAssessment(ctx context.Context, caseID uuid.UUID, responses map[string]any, completed bool) (*types.Assessment, error)
	GetAssessment(ctx context.Context, caseID uuid.UUID) (*types.Assessment, error)
}

type assessmentService struct {
	db             *gorm.DB
	log            *logger.Logger
	caseRepo       repos.CaseRepo
	assessmentRepo repos.AssessmentRepo
	userRepo       repos.UserRepo
	emailService   EmailService
}

func NewAssessmentService(
	db *gorm.DB,
	log *logger.Logger,
	caseRepo repos.CaseRepo,
	assessmentRepo repos.AssessmentRepo,
	userRepo repos.UserRepo,
	emailService EmailService,
) AssessmentService {
	serviceLog := log.With("service", "AssessmentService")
	return &assessmentService{
		db:             db,
		log:            serviceLog,
		caseRepo:       caseRepo,
		assessmentRepo: assessmentRepo,
		userRepo:       userRepo,
		emailService:   emailService,
	}
}

// SaveAssessment upserts the flat answer map for a case. Identifier answers
// (tdcj_number, unit, dates) flow back onto the case row so listings stay
// current without re-reading the assessment payload.
func (s *assessmentService) SaveAssessment(ctx context.Context, caseID uuid.UUID, responses map[string]any, completed bool) (*types.Assessment, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetOwned(ctx, nil, caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("case not found")
	}
	if responses == nil {
		responses = map[string]any{}
	}
	payload, err := json.Marshal(responses)
	if err != nil {
		return nil, fmt.Errorf("failed to encode responses: %w", err)
	}

	var result *types.Assessment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		existing, gErr := s.assessmentRepo.GetByCaseID(ctx, tx, caseID)
		if gErr != nil {
			return fmt.Errorf("failed to load assessment: %w", gErr)
		}

		now := time.Now()
		if existing == nil {
			a := &types.Assessment{
				ID:        uuid.New(),
				CaseID:    caseID,
				Responses: datatypes.JSON(payload),
				Completed: completed,
			}
			if completed {
				a.CompletedAt = &now
			}
			if _, cErr := s.assessmentRepo.Create(ctx, tx, []*types.Assessment{a}); cErr != nil {
				return fmt.Errorf("failed to create assessment: %w", cErr)
			}
			result = a
		} else {
			updates := map[string]interface{}{
				"responses": datatypes.JSON(payload),
				"completed": completed,
			}
			if completed && existing.CompletedAt == nil {
				updates["completed_at"] = now
			}
			if uErr := s.assessmentRepo.UpdateFields(ctx, tx, existing.ID, updates); uErr != nil {
				return fmt.Errorf("failed to update assessment: %w", uErr)
			}
			existing.Responses = datatypes.JSON(payload)
			existing.Completed = completed
			if completed && existing.CompletedAt == nil {
				existing.CompletedAt = &now
			}
			result = existing
		}

		caseUpdates := caseFieldUpdates(responses)
		if completed {
			caseUpdates["status"] = CaseStatusAssessmentComplete
		}
		if len(caseUpdates) > 0 {
			if uErr := s.caseRepo.UpdateFields(ctx, tx, caseID, caseUpdates); uErr != nil {
				return fmt.Errorf("failed to update case from assessment: %w", uErr)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if completed && s.emailService != nil {
		users, uErr := s.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID})
		if uErr == nil && len(users) > 0 {
			if mErr := s.emailService.SendAssessmentSubmitted(users[0].Email, c.ClientName); mErr != nil {
				s.log.Warn("Failed to send assessment notification (ignored)", "error", mErr)
			}
		}
	}
	return result, nil
}

func (s *assessmentService) GetAssessment(ctx context.Context, caseID uuid.UUID) (*types.Assessment, error) {
	userID, err := currentUserID(ctx)
	if err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetOwned(ctx, nil, caseID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load case: %w", err)
	}
	if c == nil {
		return nil, fmt.Errorf("case not found")
	}
	a, err := s.assessmentRepo.GetByCaseID(ctx, nil, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load assessment: %w", err)
	}
	return a, nil
}

func caseFieldUpdates(responses map[string]any) map[string]interface{} {
	updates := map[string]interface{}{}
	copyAnswer := func(answerKey, column string) {
		if v, ok := responses[answerKey].(string); ok && v != "" {
			updates[column] = v
		}
	}
	copyAnswer("tdcj_number", "tdcj_number")
	copyAnswer("unit", "unit")
	copyAnswer("district", "district")
	copyAnswer("parole_eligibility_date", "parole_eligibility_date")
	copyAnswer("next_review_date", "next_review_date")
	return updates
}
