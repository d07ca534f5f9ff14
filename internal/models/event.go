// internal/models/event.go
package models

import (
	"time"

	"github.com/google/uuid"
)

// Event names emitted by the ledger, scholarships and the upkeep scheduler.
const (
	EventScholarshipCreated        = "ScholarshipCreated"
	EventCompanyVerified           = "CompanyVerified"
	EventRegistryAddressUpdated    = "RegistryAddressUpdated"
	EventStudentApplied            = "StudentApplied"
	EventStudentApproved           = "StudentApproved"
	EventMilestoneCompleted        = "MilestoneCompleted"
	EventFundsReleased             = "FundsReleased"
	EventScholarshipStatusUpdated  = "ScholarshipStatusUpdated"
	EventScholarshipDetailsUpdated = "ScholarshipDetailsUpdated"
	EventCheckCompleted            = "CheckCompleted"
	EventUpkeepPerformed           = "UpkeepPerformed"
	EventUpkeepFailed              = "UpkeepFailed"
	EventGasLimitUpdated           = "GasLimitUpdated"
	EventFactoryAddressUpdated     = "FactoryAddressUpdated"
	EventFundsWithdrawn            = "FundsWithdrawn"
	EventRoleAssigned              = "RoleAssigned"
)

type Fields map[string]interface{}

// Event is an outcome emitted by an instance after a successful state change.
type Event struct {
	Seq     uint64    `json:"seq"`
	Name    string    `json:"name"`
	Emitter Address   `json:"emitter"`
	Fields  Fields    `json:"fields"`
	Time    time.Time `json:"time"`
}

// EventRecord is the persisted form of an Event. Seq restarts with every process, so records are
// keyed by (Boot, Seq).
type EventRecord struct {
	BaseModel
	Boot    uuid.UUID `json:"boot" gorm:"type:uuid;not null;index"`
	Seq     uint64    `json:"seq" gorm:"not null;index"`
	Name    string    `json:"name" gorm:"size:64;not null;index"`
	Emitter string    `json:"emitter" gorm:"size:42;not null;index"`
	Data    JSONB     `json:"data" gorm:"type:jsonb"`
	EmitAt  time.Time `json:"emit_at" gorm:"not null"`
}
