package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/services"
)

type CaseHandler struct {
	log         *logger.Logger
	caseService services.CaseService
}

func NewCaseHandler(log *logger.Logger, caseService services.CaseService) *CaseHandler {
	return &CaseHandler{
		log:         log.With("handler", "CaseHandler"),
		caseService: caseService,
	}
}

func (h *CaseHandler) CreateCase(c *gin.Context) {
	var req services.CreateCaseInput
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_request_body", err)
		return
	}
	created, err := h.caseService.CreateCase(c.Request.Context(), req)
	if err != nil {
		h.log.Error("CreateCase failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "create_case_failed", err)
		return
	}
	RespondOK(c, gin.H{"case": created})
}

func (h *CaseHandler) ListCases(c *gin.Context) {
	cases, err := h.caseService.ListCases(c.Request.Context())
	if err != nil {
		h.log.Error("ListCases failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "list_cases_failed", err)
		return
	}
	RespondOK(c, gin.H{"cases": cases})
}

func (h *CaseHandler) GetCase(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	found, err := h.caseService.GetCase(c.Request.Context(), caseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "case_not_found", err)
		return
	}
	RespondOK(c, gin.H{"case": found})
}
