package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/parolegy/parolegy-backend/internal/logger"
	"github.com/parolegy/parolegy-backend/internal/services"
)

// Uploaded avatars are re-encoded server side, but the raw read is still
// capped to keep memory bounded.
const maxAvatarBytes = 10 << 20

type UserHandler struct {
	log         *logger.Logger
	userService services.UserService
}

func NewUserHandler(log *logger.Logger, userService services.UserService) *UserHandler {
	return &UserHandler{
		log:         log.With("handler", "UserHandler"),
		userService: userService,
	}
}

func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.GetCurrentUser(c.Request.Context())
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}

func (h *UserHandler) UpdateAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("avatar")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "avatar_file_required", err)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "avatar_file_unreadable", err)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxAvatarBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "avatar_file_unreadable", err)
		return
	}

	user, err := h.userService.UpdateAvatar(c.Request.Context(), raw)
	if err != nil {
		h.log.Error("UpdateAvatar failed", "error", err)
		RespondError(c, http.StatusInternalServerError, "avatar_update_failed", err)
		return
	}
	RespondOK(c, gin.H{"user": user})
}
