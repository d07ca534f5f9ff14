// internal/handlers/auth.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/scholarship-escrow/internal/i18n"
	"github.com/javajoker/scholarship-escrow/internal/services"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// POST /auth/token
func (h *AuthHandler) IssueToken(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.TokenRequest
	if !bindRequest(c, &req) {
		return
	}

	response, err := h.authService.IssueToken(&req)
	if err != nil {
		if errors.Is(err, services.ErrTokenIssuanceDisabled) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyAuthIssuanceDisabled))
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyAuthTokenIssued),
		"token":   response,
	})
}

// GET /auth/me
func (h *AuthHandler) GetIdentity(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	utils.SuccessResponse(c, h.authService.Me(caller))
}
