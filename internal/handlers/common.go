// internal/handlers/common.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/scholarship-escrow/internal/i18n"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

// bindRequest decodes and validates a JSON body, writing the error response itself on failure.
func bindRequest(c *gin.Context, req interface{}) bool {
	lang := utils.GetLangFromContext(c)
	if err := c.ShouldBindJSON(req); err != nil {
		utils.BadRequestResponse(c, i18n.T(lang, i18n.KeyValidationInvalid, "input"), err.Error())
		return false
	}

	if validationErrors := utils.GetValidationErrors(utils.ValidateStruct(req)); len(validationErrors) > 0 {
		utils.ValidationErrorResponse(c, validationErrors)
		return false
	}
	return true
}

func addressParam(c *gin.Context, name string) (models.Address, bool) {
	addr, err := models.HexToAddress(c.Param(name))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid "+name, err.Error())
		return models.ZeroAddress, false
	}
	return addr, true
}

func requireCaller(c *gin.Context) (models.Address, bool) {
	caller, exists := utils.GetCallerFromContext(c)
	if !exists {
		utils.UnauthorizedResponse(c, "")
		return models.ZeroAddress, false
	}
	return caller, true
}
