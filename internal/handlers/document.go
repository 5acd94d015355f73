package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/services"
)

const maxDocumentBytes = 25 << 20

type DocumentHandler struct {
	log             *logger.Logger
	documentService services.DocumentService
}

func NewDocumentHandler(log *logger.Logger, documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		log:             log.With("handler", "DocumentHandler"),
		documentService: documentService,
	}
}

func (h *DocumentHandler) UploadDocument(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	docType := c.PostForm("type")
	if docType == "" {
		RespondError(c, http.StatusBadRequest, "document_type_required", nil)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "file_required", err)
		return
	}
	if fileHeader.Size > maxDocumentBytes {
		RespondError(c, http.StatusBadRequest, "file_too_large", fmt.Errorf("file exceeds %d bytes", maxDocumentBytes))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "file_unreadable", err)
		return
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxDocumentBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "file_unreadable", err)
		return
	}

	doc, err := h.documentService.UploadDocument(c.Request.Context(), services.UploadDocumentInput{
		CaseID:      caseID,
		Type:        docType,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		h.log.Error("UploadDocument failed", "error", err, "case_id", caseID)
		RespondError(c, http.StatusBadRequest, "upload_document_failed", err)
		return
	}
	RespondOK(c, gin.H{"document": doc})
}

func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("caseID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_case_id", err)
		return
	}
	docs, err := h.documentService.ListDocuments(c.Request.Context(), caseID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "case_not_found", err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

func (h *DocumentHandler) DownloadDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("documentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	doc, data, err := h.documentService.DownloadDocument(c.Request.Context(), documentID)
	if err != nil {
		RespondError(c, http.StatusNotFound, "document_not_found", err)
		return
	}
	contentType := doc.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.FileName))
	c.Data(http.StatusOK, contentType, data)
}

func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	documentID, err := uuid.Parse(c.Param("documentID"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_document_id", err)
		return
	}
	if err := h.documentService.DeleteDocument(c.Request.Context(), documentID); err != nil {
		RespondError(c, http.StatusNotFound, "document_not_found", err)
		return
	}
	RespondOK(c, gin.H{"deleted": true})
}
