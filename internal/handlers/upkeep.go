// internal/handlers/upkeep.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/javajoker/scholarship-escrow/internal/i18n"
	"github.com/javajoker/scholarship-escrow/internal/services"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

type UpkeepHandler struct {
	upkeepService *services.UpkeepService
}

func NewUpkeepHandler(upkeepService *services.UpkeepService) *UpkeepHandler {
	return &UpkeepHandler{
		upkeepService: upkeepService,
	}
}

// GET /upkeep/check
func (h *UpkeepHandler) CheckUpkeep(c *gin.Context) {
	result, err := h.upkeepService.Check()
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, result)
}

// POST /upkeep/perform
func (h *UpkeepHandler) PerformUpkeep(c *gin.Context) {
	lang := utils.GetLangFromContext(c)

	var req services.PerformUpkeepRequest
	if !bindRequest(c, &req) {
		return
	}

	report, err := h.upkeepService.Perform(c.Request.Context(), &req)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUpkeepPerformed),
		"report":  report,
	})
}

// POST /upkeep/manual
func (h *UpkeepHandler) ManualTrigger(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.ManualTriggerRequest
	if !bindRequest(c, &req) {
		return
	}

	outcome, err := h.upkeepService.ManualTrigger(c.Request.Context(), caller, &req)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, outcome)
}

// POST /upkeep/batch
func (h *UpkeepHandler) BatchTrigger(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.BatchTriggerRequest
	if !bindRequest(c, &req) {
		return
	}

	report, err := h.upkeepService.BatchTrigger(c.Request.Context(), caller, &req)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, report)
}

// GET /upkeep/config
func (h *UpkeepHandler) GetConfig(c *gin.Context) {
	utils.SuccessResponse(c, h.upkeepService.Config())
}

// PUT /upkeep/config/gas-limits
func (h *UpkeepHandler) UpdateGasLimits(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.UpdateGasLimitsRequest
	if !bindRequest(c, &req) {
		return
	}

	cfg, err := h.upkeepService.UpdateGasLimits(caller, &req)
	h.configResponse(c, cfg, err)
}

// PUT /upkeep/config/ledger
func (h *UpkeepHandler) UpdateLedgerAddress(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.UpdateLedgerAddressRequest
	if !bindRequest(c, &req) {
		return
	}

	cfg, err := h.upkeepService.UpdateLedgerAddress(caller, &req)
	h.configResponse(c, cfg, err)
}

// PUT /upkeep/config/limits
func (h *UpkeepHandler) UpdateLimits(c *gin.Context) {
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.UpdateLimitsRequest
	if !bindRequest(c, &req) {
		return
	}

	cfg, err := h.upkeepService.UpdateLimits(caller, &req)
	h.configResponse(c, cfg, err)
}

// POST /upkeep/withdraw
func (h *UpkeepHandler) Withdraw(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	amount, err := h.upkeepService.Withdraw(caller)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUpkeepWithdrawn),
		"amount":  amount,
	})
}

// GET /upkeep/runs
func (h *UpkeepHandler) GetRuns(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	runs, total, err := h.upkeepService.ListRuns(c.Query("trigger"), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(runs, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /events
func (h *UpkeepHandler) GetEvents(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	events, total, err := h.upkeepService.ListEvents(c.Query("emitter"), c.Query("name"), params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	result := utils.CreatePaginationResult(events, total, params)
	utils.PaginatedResponse(c, result)
}

func (h *UpkeepHandler) configResponse(c *gin.Context, cfg interface{}, err error) {
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	lang := utils.GetLangFromContext(c)
	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyUpkeepConfigUpdated),
		"config":  cfg,
	})
}
