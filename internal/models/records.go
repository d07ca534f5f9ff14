// internal/models/records.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// ScholarshipSnapshot is the latest projection of a scholarship, refreshed after each event it emits.
type ScholarshipSnapshot struct {
	BaseModel
	Address          string         `json:"address" gorm:"size:42;not null;uniqueIndex"`
	LedgerID         uint64         `json:"ledger_id" gorm:"not null;index"`
	Company          string         `json:"company" gorm:"size:42;not null;index"`
	Title            string         `json:"title" gorm:"size:200;not null"`
	Description      string         `json:"description" gorm:"type:text"`
	MinGPA           uint16         `json:"min_gpa"`
	AdditionalReq    string         `json:"additional_requirements" gorm:"type:text"`
	TotalAmount      uint64         `json:"total_amount" gorm:"not null"`
	Released         uint64         `json:"released"`
	Balance          uint64         `json:"balance"`
	Status           string         `json:"status" gorm:"type:varchar(20);index"`
	Deadline         time.Time      `json:"deadline"`
	MilestoneTitles  pq.StringArray `json:"milestone_titles" gorm:"type:text[]"`
	MilestoneAmounts pq.Int64Array  `json:"milestone_amounts" gorm:"type:bigint[]"`
	Applicants       pq.StringArray `json:"applicants" gorm:"type:text[]"`
}

// AuditLog records a mutating API request.
type AuditLog struct {
	BaseModel
	Caller       string `json:"caller" gorm:"size:42;index"`
	Action       string `json:"action" gorm:"size:100;not null;index"`
	ResourceType string `json:"resource_type" gorm:"size:50;not null;index"`
	ResourceID   string `json:"resource_id" gorm:"size:42;index"`
	Status       int    `json:"status"`
	NewValues    JSONB  `json:"new_values" gorm:"type:jsonb"`
	IPAddress    string `json:"ip_address" gorm:"size:45"`
	UserAgent    string `json:"user_agent" gorm:"type:text"`
	RequestID    string `json:"request_id" gorm:"size:36;index"`
}

// SnapshotFromInfo projects a ScholarshipInfo into its persisted row.
func SnapshotFromInfo(info ScholarshipInfo) ScholarshipSnapshot {
	titles := make(pq.StringArray, len(info.Milestones))
	amounts := make(pq.Int64Array, len(info.Milestones))
	for i, m := range info.Milestones {
		titles[i] = m.Title
		amounts[i] = int64(m.Amount)
	}
	applicants := make(pq.StringArray, len(info.Applicants))
	for i, a := range info.Applicants {
		applicants[i] = a.Hex()
	}

	return ScholarshipSnapshot{
		Address:          info.Address.Hex(),
		LedgerID:         info.ID,
		Company:          info.Company.Hex(),
		Title:            info.Title,
		Description:      info.Description,
		MinGPA:           info.Eligibility.MinGPA,
		AdditionalReq:    info.Eligibility.AdditionalRequirements,
		TotalAmount:      info.TotalAmount,
		Released:         info.Released,
		Balance:          info.Balance,
		Status:           info.Status.String(),
		Deadline:         info.Deadline,
		MilestoneTitles:  titles,
		MilestoneAmounts: amounts,
		Applicants:       applicants,
	}
}
