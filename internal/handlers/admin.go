// internal/handlers/admin.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/scholarship-escrow/internal/i18n"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/services"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

// AdminHandler exposes the operator surface: roles, company verification, registry wiring and the
// development faucet.
type AdminHandler struct {
	chain *services.BlockchainService
}

func NewAdminHandler(chain *services.BlockchainService) *AdminHandler {
	return &AdminHandler{chain: chain}
}

// GET /ledger
func (h *AdminHandler) GetLedgerStatus(c *gin.Context) {
	utils.SuccessResponse(c, h.chain.Status())
}

// POST /admin/roles
func (h *AdminHandler) AssignRole(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.AssignRoleRequest
	if !bindRequest(c, &req) {
		return
	}
	addr, _ := models.HexToAddress(req.Address)
	role, _ := models.ParseRole(req.Role)

	if err := h.chain.AssignRole(caller, addr, role); err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOperatorRoleAssigned),
		"address": addr,
		"role":    role,
	})
}

// GET /roles/:address
func (h *AdminHandler) GetRole(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	role := h.chain.GetRole(addr)
	utils.SuccessResponse(c, gin.H{
		"address":  addr,
		"role":     role,
		"has_role": role != models.RoleNone,
	})
}

// POST /admin/companies/verify
func (h *AdminHandler) VerifyCompany(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.VerifyCompanyRequest
	if !bindRequest(c, &req) {
		return
	}
	company, _ := models.HexToAddress(req.Company)

	if err := h.chain.VerifyCompany(caller, company); err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOperatorCompanyVerified),
		"company": company,
	})
}

// GET /companies/:address
func (h *AdminHandler) GetCompany(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address":  addr,
		"verified": h.chain.IsVerified(addr),
		"role":     h.chain.GetRole(addr),
	})
}

// PUT /admin/registry
func (h *AdminHandler) UpdateRegistry(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.UpdateRegistryRequest
	if !bindRequest(c, &req) {
		return
	}
	registry, _ := models.HexToAddress(req.Registry)

	if err := h.chain.UpdateRegistryAddress(caller, registry); err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":  i18n.T(lang, i18n.KeyOperatorRegistrySet),
		"registry": registry,
	})
}

// GET /balances/:address
func (h *AdminHandler) GetBalance(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	utils.SuccessResponse(c, gin.H{
		"address": addr,
		"balance": h.chain.Balance(addr),
	})
}

// POST /admin/faucet
func (h *AdminHandler) Faucet(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.FaucetRequest
	if !bindRequest(c, &req) {
		return
	}
	addr, _ := models.HexToAddress(req.Address)

	if err := h.chain.Faucet(caller, addr, req.Amount); err != nil {
		if errors.Is(err, services.ErrFaucetDisabled) {
			utils.ForbiddenResponse(c, i18n.T(lang, i18n.KeyOperatorFaucetDisabled))
			return
		}
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyOperatorFaucetMinted),
		"address": addr,
		"balance": h.chain.Balance(addr),
	})
}
