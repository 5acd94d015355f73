package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/parolegy/parolegy-backend/internal/blueprint"
	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/render"
	"github.com/parolegy/parolegy-backend/internal/repos"
	"github.com/parolegy/parolegy-backend/internal/sse"
	"github.com/parolegy/parolegy-backend/internal/types"
	"github.com/parolegy/parolegy-backend/internal/utils"
)

// CampaignGenerationService owns the prompt -> generate -> normalize ->
// render -> store pipeline. Each run is a single sequential pass over one
// case; the generative call itself gets exactly one attempt, and whole-run
// retries are the worker's policy, bounded by attempts.
type CampaignGenerationService interface {
	EnqueueForCase(ctx context.Context, userID uuid.UUID, caseID uuid.UUID) (*types.Campaign, *types.CampaignGenerationRun, error)
	StartWorker(ctx context.Context)
}

type campaignGenerationService struct {
	db  *gorm.DB
	log *logger.Logger

	sseHub *sse.SSEHub

	caseRepo       repos.CaseRepo
	assessmentRepo repos.AssessmentRepo
	documentRepo   repos.DocumentRepo
	campaignRepo   repos.CampaignRepo
	runRepo        repos.CampaignGenerationRunRepo
	userRepo       repos.UserRepo

	bucket BucketService
	ai     GenerationClient
	email  EmailService
	policy *DocumentPolicy

	runTimeout   time.Duration
	maxAttempts  int
	retryDelay   time.Duration
	staleRunning time.Duration
}

func NewCampaignGenerationService(
	db *gorm.DB,
	baseLog *logger.Logger,
	sseHub *sse.SSEHub,
	caseRepo repos.CaseRepo,
	assessmentRepo repos.AssessmentRepo,
	documentRepo repos.DocumentRepo,
	campaignRepo repos.CampaignRepo,
	runRepo repos.CampaignGenerationRunRepo,
	userRepo repos.UserRepo,
	bucket BucketService,
	ai GenerationClient,
	email EmailService,
	policy *DocumentPolicy,
) CampaignGenerationService {
	log := baseLog.With("service", "CampaignGenerationService")
	return &campaignGenerationService{
		db:             db,
		log:            log,
		sseHub:         sseHub,
		caseRepo:       caseRepo,
		assessmentRepo: assessmentRepo,
		documentRepo:   documentRepo,
		campaignRepo:   campaignRepo,
		runRepo:        runRepo,
		userRepo:       userRepo,
		bucket:         bucket,
		ai:             ai,
		email:          email,
		policy:         policy,
		runTimeout:     time.Duration(utils.GetEnvAsInt("GENERATION_TIMEOUT_SECONDS", 300, log)) * time.Second,
		maxAttempts:    utils.GetEnvAsInt("GENERATION_MAX_ATTEMPTS", 3, log),
		retryDelay:     time.Duration(utils.GetEnvAsInt("GENERATION_RETRY_DELAY_SECONDS", 30, log)) * time.Second,
		staleRunning:   time.Duration(utils.GetEnvAsInt("GENERATION_STALE_RUNNING_SECONDS", 120, log)) * time.Second,
	}
}

func (cgs *campaignGenerationService) EnqueueForCase(ctx context.Context, userID uuid.UUID, caseID uuid.UUID) (*types.Campaign, *types.CampaignGenerationRun, error) {
	c, err := cgs.caseRepo.GetOwned(ctx, nil, caseID, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load case: %w", err)
	}
	if c == nil {
		return nil, nil, fmt.Errorf("case not found")
	}

	assessment, err := cgs.assessmentRepo.GetByCaseID(ctx, nil, caseID)
	if err != nil {
		return nil, nil, fmt.Errorf("load assessment: %w", err)
	}
	if assessment == nil || !assessment.Completed {
		return nil, nil, fmt.Errorf("assessment not complete")
	}

	// Eligibility is checked here, before any pipeline work.
	counts := map[string]int64{}
	for _, docType := range cgs.policy.RequiredTypes() {
		n, cErr := cgs.documentRepo.CountByCaseIDAndType(ctx, nil, caseID, docType)
		if cErr != nil {
			return nil, nil, fmt.Errorf("count documents: %w", cErr)
		}
		counts[docType] = n
	}
	if missing := cgs.policy.CheckEligibility(counts); len(missing) > 0 {
		return nil, nil, fmt.Errorf("case not eligible for generation: %s", strings.Join(missing, "; "))
	}

	var campaign *types.Campaign
	var run *types.CampaignGenerationRun

	err = cgs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		version, vErr := cgs.campaignRepo.MaxVersionByCaseID(ctx, tx, caseID)
		if vErr != nil {
			return fmt.Errorf("resolve campaign version: %w", vErr)
		}

		now := time.Now()
		campaign = &types.Campaign{
			ID:        uuid.New(),
			CaseID:    caseID,
			Version:   version + 1,
			Status:    CampaignStatusGenerating,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, cErr := cgs.campaignRepo.Create(ctx, tx, []*types.Campaign{campaign}); cErr != nil {
			return fmt.Errorf("create campaign: %w", cErr)
		}

		run = &types.CampaignGenerationRun{
			ID:         uuid.New(),
			UserID:     userID,
			CaseID:     caseID,
			CampaignID: campaign.ID,
			Status:     "queued",
			Stage:      "prompt",
			Progress:   0,
			Attempts:   0,
			Metadata:   datatypes.JSON([]byte(`{}`)),
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if _, rErr := cgs.runRepo.Create(ctx, tx, []*types.CampaignGenerationRun{run}); rErr != nil {
			return fmt.Errorf("create generation run: %w", rErr)
		}

		if uErr := cgs.caseRepo.UpdateFields(ctx, tx, caseID, map[string]interface{}{"status": CaseStatusGenerating}); uErr != nil {
			return fmt.Errorf("update case status: %w", uErr)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	cgs.broadcast(userID, sse.SSEEventCampaignGenerationQueued, map[string]any{
		"campaign_id": campaign.ID,
		"case_id":     caseID,
		"run_id":      run.ID,
	})
	return campaign, run, nil
}

func (cgs *campaignGenerationService) StartWorker(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(1 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run, err := cgs.runRepo.ClaimNextRunnable(ctx, nil, cgs.maxAttempts, cgs.retryDelay, cgs.staleRunning)
				if err != nil {
					cgs.log.Warn("ClaimNextRunnable failed", "error", err)
					continue
				}
				if run == nil {
					continue
				}
				cgs.processRun(ctx, run)
			}
		}
	}()
}

func (cgs *campaignGenerationService) processRun(ctx context.Context, run *types.CampaignGenerationRun) {
	userID := run.UserID
	runID := run.ID

	// The remote generation call is the only blocking stage; the whole run
	// shares one timeout so a hung call cannot wedge the worker.
	runCtx, cancel := context.WithTimeout(ctx, cgs.runTimeout)
	defer cancel()

	fail := func(stage string, err error) {
		now := time.Now()
		_ = cgs.runRepo.UpdateFields(ctx, nil, runID, map[string]interface{}{
			"status":        "failed",
			"stage":         stage,
			"error":         err.Error(),
			"last_error_at": now,
			"locked_at":     nil,
			"updated_at":    now,
		})
		_ = cgs.campaignRepo.UpdateFields(ctx, nil, run.CampaignID, map[string]interface{}{
			"status": CampaignStatusFailed,
			"error":  err.Error(),
		})
		_ = cgs.caseRepo.UpdateFields(ctx, nil, run.CaseID, map[string]interface{}{"status": CaseStatusAssessmentComplete})
		cgs.broadcast(userID, sse.SSEEventCampaignGenerationFailed, map[string]any{
			"run_id":      runID,
			"campaign_id": run.CampaignID,
			"stage":       stage,
			"error":       err.Error(),
		})
		cgs.log.Warn("Campaign generation run failed", "run_id", runID, "stage", stage, "error", err)
	}

	progress := func(stage string, pct int, msg string) {
		_ = cgs.runRepo.UpdateFields(ctx, nil, runID, map[string]interface{}{
			"stage":      stage,
			"progress":   pct,
			"updated_at": time.Now(),
		})
		if hErr := cgs.runRepo.Heartbeat(ctx, nil, runID); hErr != nil {
			cgs.log.Warn("Heartbeat update failed", "run_id", runID, "error", hErr)
		}
		cgs.broadcast(userID, sse.SSEEventCampaignGenerationProgress, map[string]any{
			"run_id":      runID,
			"campaign_id": run.CampaignID,
			"stage":       stage,
			"progress":    pct,
			"message":     msg,
		})
	}

	// 1) PROMPT: assemble the payload from the intake answers and the
	// document inventory. Metadata only, never file bytes.
	progress("prompt", 10, "Assembling case prompt")

	cases, err := cgs.caseRepo.GetByIDs(runCtx, nil, []uuid.UUID{run.CaseID})
	if err != nil || len(cases) == 0 {
		fail("prompt", fmt.Errorf("load case: %w", err))
		return
	}
	c := cases[0]

	assessment, err := cgs.assessmentRepo.GetByCaseID(runCtx, nil, run.CaseID)
	if err != nil {
		fail("prompt", fmt.Errorf("load assessment: %w", err))
		return
	}
	if assessment == nil {
		fail("prompt", fmt.Errorf("assessment not found"))
		return
	}

	var responses map[string]any
	if uErr := json.Unmarshal(assessment.Responses, &responses); uErr != nil {
		fail("prompt", fmt.Errorf("decode assessment responses: %w", uErr))
		return
	}

	docs, err := cgs.documentRepo.GetByCaseID(runCtx, nil, run.CaseID)
	if err != nil {
		fail("prompt", fmt.Errorf("load documents: %w", err))
		return
	}
	inventory := make([]blueprint.DocumentSummary, 0, len(docs))
	for _, doc := range docs {
		if doc == nil {
			continue
		}
		inventory = append(inventory, blueprint.DocumentSummary{
			Type:     doc.Type,
			FileName: doc.FileName,
			ID:       doc.ID.String(),
		})
	}

	userPrompt := blueprint.BuildBlueprintPrompt(responses, inventory)

	// 2) GENERATE: single attempt against the generation service.
	progress("generate", 30, "Generating campaign blueprint")
	raw, err := cgs.ai.GenerateJSON(runCtx, blueprint.SystemPrompt, userPrompt)
	if err != nil {
		fail("generate", err)
		return
	}

	// 3) NORMALIZE: total, never fails, any raw text becomes a valid blueprint.
	progress("normalize", 60, "Normalizing blueprint")
	bp := blueprint.Normalize(raw)

	// 4) RENDER: display identifiers come from the case row, with blueprint
	// defaults backing empty columns.
	progress("render", 75, "Rendering campaign PDF")
	clientName := c.ClientName
	if clientName == "" {
		clientName = bp.CaseSummary.ClientName
	}
	tdcjNumber := c.TDCJNumber
	if tdcjNumber == "" {
		tdcjNumber = bp.CaseSummary.TDCJNumber
	}
	pdfBytes, err := render.Campaign(bp, clientName, tdcjNumber)
	if err != nil {
		fail("render", fmt.Errorf("render campaign: %w", err))
		return
	}

	// 5) STORE: persist the PDF and the normalized blueprint.
	progress("store", 90, "Storing campaign")
	pdfKey := fmt.Sprintf("%s/%s.pdf", run.CaseID.String(), run.CampaignID.String())
	if uErr := cgs.bucket.UploadFile(runCtx, nil, BucketCategoryCampaign, pdfKey, bytes.NewReader(pdfBytes)); uErr != nil {
		fail("store", fmt.Errorf("upload campaign PDF: %w", uErr))
		return
	}

	bpJSON, err := json.Marshal(bp)
	if err != nil {
		fail("store", fmt.Errorf("encode blueprint: %w", err))
		return
	}

	now := time.Now()
	err = cgs.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if uErr := cgs.campaignRepo.UpdateFields(ctx, tx, run.CampaignID, map[string]interface{}{
			"status":         CampaignStatusReady,
			"blueprint":      datatypes.JSON(bpJSON),
			"pdf_bucket_key": pdfKey,
			"error":          "",
		}); uErr != nil {
			return fmt.Errorf("update campaign: %w", uErr)
		}
		if uErr := cgs.caseRepo.UpdateFields(ctx, tx, run.CaseID, map[string]interface{}{"status": CaseStatusCampaignReady}); uErr != nil {
			return fmt.Errorf("update case status: %w", uErr)
		}
		return cgs.runRepo.UpdateFields(ctx, tx, runID, map[string]interface{}{
			"status":     "succeeded",
			"stage":      "done",
			"progress":   100,
			"locked_at":  nil,
			"updated_at": now,
		})
	})
	if err != nil {
		fail("store", err)
		return
	}

	cgs.broadcast(userID, sse.SSEEventCampaignGenerationDone, map[string]any{
		"run_id":      runID,
		"campaign_id": run.CampaignID,
		"case_id":     run.CaseID,
		"pdf_key":     pdfKey,
	})

	if cgs.email != nil {
		if users, uErr := cgs.userRepo.GetByIDs(ctx, nil, []uuid.UUID{userID}); uErr == nil && len(users) > 0 {
			if mErr := cgs.email.SendCampaignReady(users[0].Email, clientName); mErr != nil {
				cgs.log.Warn("Failed to send campaign-ready email (ignored)", "error", mErr)
			}
		}
	}

	cgs.log.Info("Campaign generation run succeeded", "run_id", runID, "campaign_id", run.CampaignID)
}

func (cgs *campaignGenerationService) broadcast(userID uuid.UUID, event sse.SSEEvent, data map[string]any) {
	if cgs.sseHub == nil {
		return
	}
	cgs.sseHub.Broadcast(sse.SSEMessage{
		Channel: sse.UserChannel(userID),
		Event:   event,
		Data:    data,
	})
}
