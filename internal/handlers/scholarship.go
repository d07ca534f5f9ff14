// internal/handlers/scholarship.go
package handlers

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/javajoker/scholarship-escrow/internal/i18n"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/services"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

type ScholarshipHandler struct {
	scholarshipService *services.ScholarshipService
}

func NewScholarshipHandler(scholarshipService *services.ScholarshipService) *ScholarshipHandler {
	return &ScholarshipHandler{
		scholarshipService: scholarshipService,
	}
}

// POST /scholarships
func (h *ScholarshipHandler) CreateScholarship(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}

	var req services.CreateScholarshipRequest
	if !bindRequest(c, &req) {
		return
	}

	info, err := h.scholarshipService.Create(caller, &req)
	if err != nil {
		utils.ChainErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyScholarshipCreated),
		"scholarship": info,
	})
}

// GET /scholarships
func (h *ScholarshipHandler) GetScholarships(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	filter := services.ScholarshipFilter{PaginationParams: params}

	if company := c.Query("company"); company != "" {
		addr, err := models.HexToAddress(company)
		if err != nil {
			utils.BadRequestResponse(c, "Invalid company", err.Error())
			return
		}
		filter.Company = &addr
	}

	scholarships, total := h.scholarshipService.List(filter)
	result := utils.CreatePaginationResult(scholarships, total, params)
	utils.PaginatedResponse(c, result)
}

// GET /scholarships/:address
func (h *ScholarshipHandler) GetScholarship(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	info, err := h.scholarshipService.Get(addr)
	if err != nil {
		utils.NotFoundResponse(c, "scholarship")
		return
	}

	utils.SuccessResponse(c, info)
}

// GET /scholarships/index/:index
func (h *ScholarshipHandler) GetScholarshipByIndex(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid index", nil)
		return
	}

	info, err := h.scholarshipService.GetByIndex(index)
	if err != nil {
		utils.NotFoundResponse(c, "scholarship")
		return
	}

	utils.SuccessResponse(c, info)
}

// POST /scholarships/:address/apply
func (h *ScholarshipHandler) Apply(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var req services.ApplyRequest
	if !bindRequest(c, &req) {
		return
	}

	application, err := h.scholarshipService.Apply(caller, addr, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyScholarshipApplied),
		"application": application,
	})
}

// PUT /scholarships/:address/approve
func (h *ScholarshipHandler) ApproveStudent(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var req services.ApproveRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.scholarshipService.Approve(caller, addr, &req); err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message": i18n.T(lang, i18n.KeyScholarshipStudentApproved),
		"student": req.Student,
	})
}

// PUT /scholarships/:address/milestones/complete
func (h *ScholarshipHandler) CompleteMilestone(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var req services.CompleteMilestoneRequest
	if !bindRequest(c, &req) {
		return
	}

	if err := h.scholarshipService.CompleteMilestone(caller, addr, &req); err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":      i18n.T(lang, i18n.KeyScholarshipMilestoneComplete),
		"student":      req.Student,
		"milestone_id": *req.MilestoneID,
	})
}

// PUT /scholarships/:address
func (h *ScholarshipHandler) UpdateDetails(c *gin.Context) {
	lang := utils.GetLangFromContext(c)
	caller, ok := requireCaller(c)
	if !ok {
		return
	}
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}

	var req services.UpdateDetailsRequest
	if !bindRequest(c, &req) {
		return
	}

	info, err := h.scholarshipService.UpdateDetails(caller, addr, &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"message":     i18n.T(lang, i18n.KeyScholarshipUpdated),
		"scholarship": info,
	})
}

// GET /scholarships/:address/applications/:student
func (h *ScholarshipHandler) GetApplication(c *gin.Context) {
	addr, ok := addressParam(c, "address")
	if !ok {
		return
	}
	student, ok := addressParam(c, "student")
	if !ok {
		return
	}

	application, err := h.scholarshipService.GetApplication(addr, student)
	if err != nil {
		utils.NotFoundResponse(c, "application")
		return
	}

	utils.SuccessResponse(c, application)
}

func (h *ScholarshipHandler) handleError(c *gin.Context, err error) {
	if errors.Is(err, services.ErrNotFound) {
		utils.NotFoundResponse(c, "scholarship")
		return
	}
	utils.ChainErrorResponse(c, err)
}
