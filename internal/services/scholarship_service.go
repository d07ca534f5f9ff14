// internal/services/scholarship_service.go
package services

import (
	"errors"
	"math"
	"time"

	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/scholarship"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

var ErrNotFound = errors.New("resource not found")

type ScholarshipService struct {
	chain *BlockchainService
}

func NewScholarshipService(chain *BlockchainService) *ScholarshipService {
	return &ScholarshipService{chain: chain}
}

type CreateScholarshipRequest struct {
	Title                  string    `json:"title" validate:"required,max=200"`
	Description            string    `json:"description" validate:"max=5000"`
	MinGPA                 float64   `json:"min_gpa" validate:"gpa"`
	AdditionalRequirements string    `json:"additional_requirements" validate:"max=2000"`
	TotalAmount            uint64    `json:"total_amount"`
	Value                  uint64    `json:"value"`
	Deadline               time.Time `json:"deadline" validate:"required"`
	MilestoneTitles        []string  `json:"milestone_titles" validate:"dive,required,max=200"`
	MilestoneAmounts       []uint64  `json:"milestone_amounts"`
}

type UpdateDetailsRequest struct {
	Title                  string    `json:"title" validate:"required,max=200"`
	Description            string    `json:"description" validate:"max=5000"`
	MinGPA                 float64   `json:"min_gpa" validate:"gpa"`
	AdditionalRequirements string    `json:"additional_requirements" validate:"max=2000"`
	Deadline               time.Time `json:"deadline" validate:"required"`
}

type ApplyRequest struct {
	ImpactScore uint32 `json:"impact_score"`
}

type ApproveRequest struct {
	Student string `json:"student" validate:"required,address"`
}

type CompleteMilestoneRequest struct {
	Student     string  `json:"student" validate:"required,address"`
	MilestoneID *uint64 `json:"milestone_id" validate:"required"`
}

type ScholarshipFilter struct {
	utils.PaginationParams
	Company *models.Address
}

// ScaleGPA converts a decimal GPA into its fixed-point form.
func ScaleGPA(gpa float64) uint16 {
	return uint16(math.Round(gpa * models.GPAScale))
}

// Create funds a new scholarship from caller's balance. Value is the amount attached to the call
// and must equal the total.
func (s *ScholarshipService) Create(caller models.Address, req *CreateScholarshipRequest) (models.ScholarshipInfo, error) {
	params := models.ScholarshipParams{
		Title:            req.Title,
		Description:      req.Description,
		MinGPA:           ScaleGPA(req.MinGPA),
		AdditionalReq:    req.AdditionalRequirements,
		TotalAmount:      req.TotalAmount,
		Deadline:         req.Deadline.UTC(),
		MilestoneTitles:  req.MilestoneTitles,
		MilestoneAmounts: req.MilestoneAmounts,
	}

	var info models.ScholarshipInfo
	err := s.chain.Execute(func() error {
		sch, err := s.chain.Ledger().CreateScholarship(caller, req.Value, params)
		if err != nil {
			return err
		}
		info = sch.Info()
		return nil
	})
	return info, err
}

// List pages through every scholarship in creation order, optionally filtered by company and status.
func (s *ScholarshipService) List(filter ScholarshipFilter) ([]models.ScholarshipInfo, int64) {
	var matched []models.ScholarshipInfo
	s.chain.View(func() {
		l := s.chain.Ledger()
		addrs := l.AllScholarships()
		if filter.Company != nil {
			addrs = l.CompanyScholarships(*filter.Company)
		}
		for _, addr := range addrs {
			sch, ok := l.Scholarship(addr)
			if !ok {
				continue
			}
			if filter.Status != "" && sch.Status().String() != filter.Status {
				continue
			}
			matched = append(matched, sch.Info())
		}
	})

	start, end := utils.PageBounds(len(matched), filter.PaginationParams)
	page := make([]models.ScholarshipInfo, end-start)
	copy(page, matched[start:end])
	return page, int64(len(matched))
}

func (s *ScholarshipService) Get(addr models.Address) (models.ScholarshipInfo, error) {
	var (
		info  models.ScholarshipInfo
		found bool
	)
	s.chain.View(func() {
		if sch, ok := s.chain.Ledger().Scholarship(addr); ok {
			info, found = sch.Info(), true
		}
	})
	if !found {
		return models.ScholarshipInfo{}, ErrNotFound
	}
	return info, nil
}

// GetByIndex resolves the i-th scholarship ever created.
func (s *ScholarshipService) GetByIndex(i int) (models.ScholarshipInfo, error) {
	var (
		addr models.Address
		err  error
	)
	s.chain.View(func() {
		addr, err = s.chain.Ledger().ScholarshipByIndex(i)
	})
	if err != nil {
		return models.ScholarshipInfo{}, ErrNotFound
	}
	return s.Get(addr)
}

func (s *ScholarshipService) Apply(caller, addr models.Address, req *ApplyRequest) (models.Application, error) {
	var app models.Application
	err := s.withScholarship(addr, func(sch *scholarship.Scholarship) error {
		if err := sch.Apply(caller, req.ImpactScore); err != nil {
			return err
		}
		app, _ = sch.Application(caller)
		return nil
	})
	return app, err
}

func (s *ScholarshipService) Approve(caller, addr models.Address, req *ApproveRequest) error {
	student, err := models.HexToAddress(req.Student)
	if err != nil {
		return err
	}
	return s.withScholarship(addr, func(sch *scholarship.Scholarship) error {
		return sch.ApproveStudent(caller, student)
	})
}

func (s *ScholarshipService) CompleteMilestone(caller, addr models.Address, req *CompleteMilestoneRequest) error {
	student, err := models.HexToAddress(req.Student)
	if err != nil {
		return err
	}
	return s.withScholarship(addr, func(sch *scholarship.Scholarship) error {
		return sch.CompleteMilestone(caller, student, *req.MilestoneID)
	})
}

func (s *ScholarshipService) UpdateDetails(caller, addr models.Address, req *UpdateDetailsRequest) (models.ScholarshipInfo, error) {
	details := models.ScholarshipDetails{
		Title:         req.Title,
		Description:   req.Description,
		MinGPA:        ScaleGPA(req.MinGPA),
		AdditionalReq: req.AdditionalRequirements,
		Deadline:      req.Deadline.UTC(),
	}

	var info models.ScholarshipInfo
	err := s.withScholarship(addr, func(sch *scholarship.Scholarship) error {
		if err := sch.UpdateDetails(caller, details); err != nil {
			return err
		}
		info = sch.Info()
		return nil
	})
	return info, err
}

func (s *ScholarshipService) GetApplication(addr, student models.Address) (models.Application, error) {
	var (
		app   models.Application
		found bool
	)
	s.chain.View(func() {
		if sch, ok := s.chain.Ledger().Scholarship(addr); ok {
			app, found = sch.Application(student)
		}
	})
	if !found {
		return models.Application{}, ErrNotFound
	}
	return app, nil
}

func (s *ScholarshipService) withScholarship(addr models.Address, fn func(*scholarship.Scholarship) error) error {
	return s.chain.Execute(func() error {
		sch, ok := s.chain.Ledger().Scholarship(addr)
		if !ok {
			return ErrNotFound
		}
		return fn(sch)
	})
}
