// internal/models/scholarship.go
package models

import (
	"time"
)

// GPAScale is the fixed-point factor GPAs are persisted with (3.50 -> 350).
const GPAScale = 100

type Eligibility struct {
	MinGPA                 uint16 `json:"min_gpa"`
	AdditionalRequirements string `json:"additional_requirements"`
}

type Milestone struct {
	Title         string  `json:"title"`
	Amount        uint64  `json:"amount"`
	IsCompleted   bool    `json:"is_completed"`
	FundsReleased bool    `json:"funds_released"`
	Recipient     Address `json:"recipient"`
}

type Application struct {
	Student        Address   `json:"student"`
	ImpactScore    uint32    `json:"impact_score"`
	IsApproved     bool      `json:"is_approved"`
	FundsWithdrawn uint64    `json:"funds_withdrawn"`
	AppliedAt      time.Time `json:"applied_at"`
}

// ScholarshipParams carries everything needed to fund a new scholarship.
type ScholarshipParams struct {
	Title            string
	Description      string
	MinGPA           uint16
	AdditionalReq    string
	TotalAmount      uint64
	Deadline         time.Time
	MilestoneTitles  []string
	MilestoneAmounts []uint64
}

// ScholarshipDetails are the fields a company may edit while the scholarship is open.
type ScholarshipDetails struct {
	Title         string
	Description   string
	MinGPA        uint16
	AdditionalReq string
	Deadline      time.Time
}

// ScholarshipInfo is a read-only snapshot of a scholarship.
type ScholarshipInfo struct {
	Address     Address           `json:"address"`
	ID          uint64            `json:"id"`
	Company     Address           `json:"company"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Eligibility Eligibility       `json:"eligibility"`
	TotalAmount uint64            `json:"total_amount"`
	Released    uint64            `json:"released"`
	Balance     uint64            `json:"balance"`
	Deadline    time.Time         `json:"deadline"`
	Status      ScholarshipStatus `json:"status"`
	Milestones  []Milestone       `json:"milestones"`
	Applicants  []Address         `json:"applicants"`
	CreatedAt   time.Time         `json:"created_at"`
}
