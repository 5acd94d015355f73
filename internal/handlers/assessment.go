package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/services"
)

type AssessmentHandler struct {
	log               *logger.Logger
	assessmentService services.AssessmentService
}

func NewAssessmentHandler(log *logger.Logger, assessmentService services.AssessmentService) *AssessmentHandler {
	return &AssessmentHandler{
		log:               log.With("handler", "AssessmentHandler"),
		assessmentService: assessmentService,
	}
}

func (h *AssessmentHandler) SaveAssessment(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	var req struct {
		Responses map[string]any `json:"responses"`
		Completed bool           `json:"completed"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	assessment, err := h.assessmentService.SaveAssessment(c.Request.Context(), caseID, req.Responses, req.Completed)
	if err != nil {
		h.log.Error("SaveAssessment failed", "error", err, "case_id", caseID)
		RespondError(c, http.StatusInternalServerError, "save_assessment_failed", err)
		return
	}
	RespondOK(c, gin.H{"assessment": assessment})
}

func (h *AssessmentHandler) GetAssessment(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	assessment, err := h.assessmentService.GetAssessment(c.Request.Context(), caseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "assessment_not_found", err)
		return
	}
	RespondOK(c, gin.H{"assessment": assessment})
}
