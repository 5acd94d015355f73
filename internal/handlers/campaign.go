package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/requestdata"
	"github.com/parolegy/parolegy-backend/internal/services"
)

type CampaignHandler struct {
	log               *logger.Logger
	campaignService   services.CampaignService
	generationService services.CampaignGenerationService
}

func NewCampaignHandler(
	log *logger.Logger,
	campaignService services.CampaignService,
	generationService services.CampaignGenerationService,
) *CampaignHandler {
	return &CampaignHandler{
		log:               log.With("handler", "CampaignHandler"),
		campaignService:   campaignService,
		generationService: generationService,
	}
}

func (h *CampaignHandler) GenerateCampaign(c *gin.Context) {
	rd := requestdata.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	campaign, run, err := h.generationService.EnqueueForCase(c.Request.Context(), rd.UserID, caseID)
	if err != nil {
		h.log.Error("GenerateCampaign failed", "error", err, "case_id", caseID)
		RespondError(c, http.StatusBadRequest, "generate_campaign_failed", err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"campaign": campaign, "run": run})
}

func (h *CampaignHandler) ListCampaigns(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	campaigns, err := h.campaignService.ListCampaigns(c.Request.Context(), caseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "case_not_found", err)
		return
	}
	RespondOK(c, gin.H{"campaigns": campaigns})
}

func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_campaign_id", err)
		return
	}
	campaign, err := h.campaignService.GetCampaign(c.Request.Context(), campaignID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "campaign_not_found", err)
		return
	}
	RespondOK(c, gin.H{"campaign": campaign})
}

func (h *CampaignHandler) GetLatestRun(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	run, err := h.campaignService.GetLatestRun(c.Request.Context(), caseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "case_not_found", err)
		return
	}
	RespondOK(c, gin.H{"run": run})
}

func (h *CampaignHandler) ImproveSection(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_campaign_id", err)
		return
	}
	sectionName := c.Param("sectionName")
	improved, err := h.campaignService.ImproveSection(c.Request.Context(), campaignID, sectionName)
	if err != nil {
		h.log.Error("ImproveSection failed", "error", err, "campaign_id", campaignID, "section", sectionName)
		RespondError(c, http.StatusBadRequest, "improve_section_failed", err)
		return
	}
	RespondOK(c, gin.H{"section": sectionName, "improved_content": improved})
}

func (h *CampaignHandler) DownloadPDF(c *gin.Context) {
	campaignID, err := uuid.Parse(c.Param("campaignID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_campaign_id", err)
		return
	}
	campaign, data, err := h.campaignService.DownloadPDF(c.Request.Context(), campaignID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "campaign_pdf_not_found", err)
		return
	}
	filename := fmt.Sprintf("campaign_v%d.pdf", campaign.Version)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", data)
}
