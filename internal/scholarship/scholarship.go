// internal/scholarship/scholarship.go
package scholarship

import (
	"math"
	"time"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/roles"
)

// Scholarship is one funded program. It owns the balance held at its address along with its
// milestone and application state.
//
// Every mutating method validates completely before it changes anything, so a returned error
// means no state moved.
type Scholarship struct {
	address  models.Address
	id       uint64
	company  models.Address
	env      *chain.Env
	registry roles.Registry

	title       string
	description string
	eligibility models.Eligibility
	totalAmount uint64
	released    uint64
	deadline    time.Time
	status      models.ScholarshipStatus
	createdAt   time.Time

	milestones   []models.Milestone
	applications []models.Application
	byStudent    map[models.Address]int
}

// Deployment describes where and for whom a scholarship is instantiated.
type Deployment struct {
	Address  models.Address
	ID       uint64
	Company  models.Address
	Registry roles.Registry
	Params   models.ScholarshipParams
}

// ValidateParams checks the funding rules: matching milestone arrays, a non-zero total and
// milestone amounts that add up to it exactly.
func ValidateParams(params models.ScholarshipParams, now time.Time) error {
	if params.TotalAmount == 0 {
		return apperr.ErrInvalidAmount.Withf("total amount must be positive")
	}
	if len(params.MilestoneTitles) == 0 || len(params.MilestoneTitles) != len(params.MilestoneAmounts) {
		return apperr.ErrMilestoneMismatch.Withf("%d titles, %d amounts", len(params.MilestoneTitles), len(params.MilestoneAmounts))
	}

	var sum uint64
	for _, amount := range params.MilestoneAmounts {
		if sum > math.MaxUint64-amount {
			return apperr.ErrMilestoneMismatch.Withf("milestone amounts overflow")
		}
		sum += amount
	}
	if sum != params.TotalAmount {
		return apperr.ErrMilestoneMismatch.Withf("milestones sum to %d, total is %d", sum, params.TotalAmount)
	}

	if !params.Deadline.After(now) {
		return apperr.ErrInvalidDeadline.Withf("deadline %s is not in the future", params.Deadline.Format(time.RFC3339))
	}
	return nil
}

// New instantiates an Open scholarship. The caller is responsible for funding its address.
func New(d Deployment, env *chain.Env) (*Scholarship, error) {
	now := env.Clock.Now()
	if err := ValidateParams(d.Params, now); err != nil {
		return nil, err
	}
	if d.Address.IsZero() || d.Company.IsZero() {
		return nil, apperr.ErrInvalidAddress
	}

	milestones := make([]models.Milestone, len(d.Params.MilestoneTitles))
	for i, title := range d.Params.MilestoneTitles {
		milestones[i] = models.Milestone{Title: title, Amount: d.Params.MilestoneAmounts[i]}
	}

	return &Scholarship{
		address:  d.Address,
		id:       d.ID,
		company:  d.Company,
		env:      env,
		registry: d.Registry,

		title:       d.Params.Title,
		description: d.Params.Description,
		eligibility: models.Eligibility{
			MinGPA:                 d.Params.MinGPA,
			AdditionalRequirements: d.Params.AdditionalReq,
		},
		totalAmount: d.Params.TotalAmount,
		deadline:    d.Params.Deadline,
		status:      models.StatusOpen,
		createdAt:   now,

		milestones: milestones,
		byStudent:  make(map[models.Address]int),
	}, nil
}

func (s *Scholarship) Address() models.Address          { return s.address }
func (s *Scholarship) ID() uint64                       { return s.id }
func (s *Scholarship) Company() models.Address          { return s.company }
func (s *Scholarship) Status() models.ScholarshipStatus { return s.status }
func (s *Scholarship) TotalAmount() uint64              { return s.totalAmount }
func (s *Scholarship) Released() uint64                 { return s.released }

func (s *Scholarship) Balance() uint64 {
	return s.env.Bank.BalanceOf(s.address)
}

// Apply records an application from caller, who must hold the student role.
func (s *Scholarship) Apply(caller models.Address, impactScore uint32) error {
	if err := s.requireActive(); err != nil {
		return err
	}
	if s.registry == nil || s.registry.GetRole(caller) != models.RoleStudent {
		return apperr.ErrNoRole.Withf("%s is not a student", caller)
	}
	if _, exists := s.byStudent[caller]; exists {
		return apperr.ErrAlreadyApplied
	}
	now := s.env.Clock.Now()
	if !now.Before(s.deadline) {
		return apperr.ErrDeadlinePassed
	}

	s.byStudent[caller] = len(s.applications)
	s.applications = append(s.applications, models.Application{
		Student:     caller,
		ImpactScore: impactScore,
		AppliedAt:   now,
	})
	s.emit(models.EventStudentApplied, models.Fields{
		"student":     caller,
		"impactScore": impactScore,
	})
	return nil
}

// ApproveStudent approves an existing application. The first approval starts the program.
func (s *Scholarship) ApproveStudent(caller, student models.Address) error {
	if caller != s.company {
		return apperr.ErrUnauthorized
	}
	if err := s.requireActive(); err != nil {
		return err
	}
	idx, exists := s.byStudent[student]
	if !exists {
		return apperr.ErrApplicationNotFound.Withf("%s has not applied", student)
	}
	if s.applications[idx].IsApproved {
		return apperr.ErrAlreadyApproved
	}

	s.applications[idx].IsApproved = true
	s.emit(models.EventStudentApproved, models.Fields{"student": student})

	if s.status == models.StatusOpen {
		s.setStatus(models.StatusInProgress)
	}
	return nil
}

// CompleteMilestone marks a milestone done on behalf of an approved student. Funds move later,
// through upkeep.
func (s *Scholarship) CompleteMilestone(caller, student models.Address, milestoneID uint64) error {
	if caller != s.company {
		return apperr.ErrUnauthorized
	}
	if err := s.requireActive(); err != nil {
		return err
	}
	if milestoneID >= uint64(len(s.milestones)) {
		return apperr.ErrInvalidMilestone.Withf("milestone %d out of range", milestoneID)
	}
	if !s.isApproved(student) {
		return apperr.ErrStudentNotApproved
	}
	if s.milestones[milestoneID].IsCompleted {
		return apperr.ErrMilestoneCompleted
	}

	s.milestones[milestoneID].IsCompleted = true
	s.milestones[milestoneID].Recipient = student
	s.emit(models.EventMilestoneCompleted, models.Fields{
		"student":     student,
		"milestoneId": milestoneID,
	})
	return nil
}

// UpdateDetails edits the descriptive fields while the scholarship is still Open.
func (s *Scholarship) UpdateDetails(caller models.Address, details models.ScholarshipDetails) error {
	if caller != s.company {
		return apperr.ErrUnauthorized
	}
	if s.status != models.StatusOpen {
		return apperr.ErrScholarshipNotOpen
	}
	if !details.Deadline.After(s.env.Clock.Now()) {
		return apperr.ErrInvalidDeadline
	}

	s.title = details.Title
	s.description = details.Description
	s.eligibility = models.Eligibility{
		MinGPA:                 details.MinGPA,
		AdditionalRequirements: details.AdditionalReq,
	}
	s.deadline = details.Deadline
	s.emit(models.EventScholarshipDetailsUpdated, models.Fields{
		"title":       s.title,
		"description": s.description,
		"minGpa":      s.eligibility.MinGPA,
		"deadline":    s.deadline.Unix(),
	})
	return nil
}

// Application returns a copy of student's application.
func (s *Scholarship) Application(student models.Address) (models.Application, bool) {
	idx, ok := s.byStudent[student]
	if !ok {
		return models.Application{}, false
	}
	return s.applications[idx], true
}

func (s *Scholarship) Applicants() []models.Address {
	out := make([]models.Address, len(s.applications))
	for i, app := range s.applications {
		out[i] = app.Student
	}
	return out
}

func (s *Scholarship) Milestones() []models.Milestone {
	out := make([]models.Milestone, len(s.milestones))
	copy(out, s.milestones)
	return out
}

func (s *Scholarship) Info() models.ScholarshipInfo {
	return models.ScholarshipInfo{
		Address:     s.address,
		ID:          s.id,
		Company:     s.company,
		Title:       s.title,
		Description: s.description,
		Eligibility: s.eligibility,
		TotalAmount: s.totalAmount,
		Released:    s.released,
		Balance:     s.Balance(),
		Deadline:    s.deadline,
		Status:      s.status,
		Milestones:  s.Milestones(),
		Applicants:  s.Applicants(),
		CreatedAt:   s.createdAt,
	}
}

func (s *Scholarship) requireActive() error {
	if s.status == models.StatusCompleted || s.status == models.StatusClosed {
		return apperr.ErrScholarshipInactive.Withf("status is %s", s.status)
	}
	return nil
}

func (s *Scholarship) isApproved(student models.Address) bool {
	idx, ok := s.byStudent[student]
	return ok && s.applications[idx].IsApproved
}

func (s *Scholarship) setStatus(status models.ScholarshipStatus) {
	s.status = status
	s.emit(models.EventScholarshipStatusUpdated, models.Fields{"status": status.String()})
}

func (s *Scholarship) emit(name string, fields models.Fields) {
	s.env.Events.Emit(s.address, name, fields)
}
