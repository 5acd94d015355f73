package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/blueprint"
	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/types"
)

const (
	CampaignStatusGenerating = "generating"
	CampaignStatusReady      = "ready"
	CampaignStatusFailed     = "failed"
)

type CampaignService interface {
	ListCampaigns(ctx context.Context, caseID uuid.UUID) ([]*types.Campaign, error)
	GetCampaign(ctx context.Context, campaignID uuid.UUID) (*types.Campaign, error)
	DownloadPDF(ctx context.Context, campaignID uuid.UUID) (*types.Campaign, []byte, error)
	GetLatestRun(ctx context.Context, caseID uuid.UUID) (*types.CampaignGenerationRun, error)
	ImproveSection(ctx context.Context, campaignID uuid.UUID, sectionName string) (string, error)
}

type campaignService struct {
	db            *gorm.DB
	log           *logger.Logger
	caseRepo      repos.CaseRepo
	campaignRepo  repos.CampaignRepo
	runRepo       repos.CampaignGenerationRunRepo
	bucketService BucketService
	ai            GenerationClient
}

func NewCampaignService(
	db *gorm.DB,
	log *logger.Logger,
	caseRepo repos.CaseRepo,
	campaignRepo repos.CampaignRepo,
	runRepo repos.CampaignGenerationRunRepo,
	bucketService BucketService,
	ai GenerationClient,
) CampaignService {
	serviceLog := log.With("service", "CampaignService")
	return &campaignService{
		db:            db,
		log:           serviceLog,
		caseRepo:      caseRepo,
		campaignRepo:  campaignRepo,
		runRepo:       runRepo,
		bucketService: bucketService,
		ai:            ai,
	}
}

func (cs *campaignService) ListCampaigns(ctx context.Context, caseID uuid.UUID) ([]*types.Campaign, error) {
	if _, err := cs.ownedCase(ctx, caseID); err != nil {
		return nil, err
	}
	campaigns, err := cs.campaignRepo.GetByCaseID(ctx, nil, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}

func (cs *campaignService) GetCampaign(ctx context.Context, campaignID uuid.UUID) (*types.Campaign, error) {
	campaigns, err := cs.campaignRepo.GetByIDs(ctx, nil, []uuid.UUID{campaignID})
	if err != nil {
		return nil, fmt.Errorf("failed to load campaign: %w", err)
	}
	if len(campaigns) == 0 {
		return nil, fmt.Errorf("campaign not found")
	}
	campaign := campaigns[0]
	if _, err := cs.ownedCase(ctx, campaign.CaseID); err != nil {
		return nil, fmt.Errorf("campaign not found")
	}
	return campaign, nil
}

func (cs *campaignService) DownloadPDF(ctx context.Context, campaignID uuid.UUID) (*types.Campaign, []byte, error) {
	campaign, err := cs.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, nil, err
	}
	if campaign.Status != CampaignStatusReady || campaign.PDFBucketKey == "" {
		return nil, nil, fmt.Errorf("campaign PDF not ready")
	}
	data, dErr := cs.bucketService.DownloadFile(ctx, nil, BucketCategoryCampaign, campaign.PDFBucketKey)
	if dErr != nil {
		return nil, nil, fmt.Errorf("failed to download campaign PDF: %w", dErr)
	}
	return campaign, data, nil
}

func (cs *campaignService) GetLatestRun(ctx context.Context, caseID uuid.UUID) (*types.CampaignGenerationRun, error) {
	if _, err := cs.ownedCase(ctx, caseID); err != nil {
		return nil, err
	}
	run, err := cs.runRepo.GetLatestByCaseID(ctx, nil, caseID)
	if err != nil {
		return nil, fmt.Errorf("failed to load generation run: %w", err)
	}
	return run, nil
}

// ImproveSection rewrites one section of a ready campaign against the
// blueprint's panel concerns. The result is returned to the caller for
// review; the stored campaign is never mutated.
func (cs *campaignService) ImproveSection(ctx context.Context, campaignID uuid.UUID, sectionName string) (string, error) {
	campaign, err := cs.GetCampaign(ctx, campaignID)
	if err != nil {
		return "", err
	}
	if campaign.Status != CampaignStatusReady || len(campaign.Blueprint) == 0 {
		return "", fmt.Errorf("campaign not ready")
	}

	var bp blueprint.CampaignBlueprint
	if uErr := json.Unmarshal(campaign.Blueprint, &bp); uErr != nil {
		return "", fmt.Errorf("failed to decode blueprint: %w", uErr)
	}
	current, ok := sectionContent(&bp, sectionName)
	if !ok {
		return "", fmt.Errorf("unknown section %q", sectionName)
	}

	concerns := make([]string, 0, len(bp.PanelConcerns))
	for _, pc := range bp.PanelConcerns {
		if pc.Concern != "" {
			concerns = append(concerns, pc.Concern)
		}
	}

	improved, gErr := cs.ai.GenerateText(ctx, blueprint.SystemPrompt, blueprint.BuildSectionImprovementPrompt(sectionName, current, concerns))
	if gErr != nil {
		return "", gErr
	}
	return strings.TrimSpace(improved), nil
}

// sectionContent flattens a section's prose for the improvement prompt.
func sectionContent(bp *blueprint.CampaignBlueprint, name string) (string, bool) {
	s := bp.Sections
	switch name {
	case "synopsis":
		return strings.Join(s.Synopsis.Paragraphs, "\n\n"), true
	case "client_letter":
		return strings.Join(s.ClientLetter.Paragraphs, "\n\n"), true
	case "strengths":
		return strings.Join(s.Strengths.Bullets, "\n"), true
	case "home_plan":
		return s.HomePlan.Description, true
	case "transportation":
		return s.Transportation.Description, true
	case "employment":
		lines := append([]string{}, s.Employment.History...)
		lines = append(lines, s.Employment.Opportunities...)
		lines = append(lines, s.Employment.Plan...)
		return strings.Join(lines, "\n"), true
	case "future":
		lines := append([]string{}, s.Future.Goals...)
		lines = append(lines, s.Future.Commitments...)
		return strings.Join(lines, "\n"), true
	case "treatment_plan":
		if s.TreatmentPlan == nil {
			return "", false
		}
		return s.TreatmentPlan.Description, true
	case "closing":
		return strings.Join(s.Closing.Paragraphs, "\n\n"), true
	}
	return "", false
}

func (cs *campaignService) ownedCase(ctx context.Context, caseID uuid.UUID) (*types.Case, error) {
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
