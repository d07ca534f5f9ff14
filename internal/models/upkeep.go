// internal/models/upkeep.go
package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// WorkItem names one milestone payout a scholarship still owes.
type WorkItem struct {
	Student     Address `json:"student"`
	MilestoneID uint64  `json:"milestone_id"`
}

type WorkList []WorkItem

func EncodeWorkList(items WorkList) []byte {
	if items == nil {
		items = WorkList{}
	}
	data, _ := json.Marshal(items)
	return data
}

func DecodeWorkList(data []byte) (WorkList, error) {
	var items WorkList
	if len(data) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to decode work list: %w", err)
	}
	return items, nil
}

// BatchEntry pairs a scholarship with the encoded work list its own check returned.
type BatchEntry struct {
	Target      Address         `json:"target"`
	PerformData json.RawMessage `json:"perform_data"`
}

type Batch []BatchEntry

func EncodeBatch(batch Batch) []byte {
	if batch == nil {
		batch = Batch{}
	}
	data, _ := json.Marshal(batch)
	return data
}

func DecodeBatch(data []byte) (Batch, error) {
	var batch Batch
	if len(data) == 0 {
		return batch, nil
	}
	if err := json.Unmarshal(data, &batch); err != nil {
		return nil, fmt.Errorf("failed to decode batch: %w", err)
	}
	return batch, nil
}

type OutcomeStatus string

const (
	OutcomeSucceeded OutcomeStatus = "succeeded"
	OutcomeFailed    OutcomeStatus = "failed"
	OutcomeDeferred  OutcomeStatus = "deferred"
)

// Outcome is the tagged result of one target's perform step inside a batch.
type Outcome struct {
	Target Address       `json:"target"`
	Status OutcomeStatus `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

type UpkeepReport struct {
	RunID     uuid.UUID `json:"run_id"`
	Outcomes  []Outcome `json:"outcomes"`
	Checked   int       `json:"checked"`
	Needed    int       `json:"needed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Deferred  int       `json:"deferred"`
}

// CheckResult is what the scheduler's read-only check hands to the external trigger.
type CheckResult struct {
	UpkeepNeeded bool   `json:"upkeep_needed"`
	PerformData  []byte `json:"perform_data"`
	Checked      int    `json:"checked"`
	NeedsUpkeep  int    `json:"needs_upkeep"`
}

type SchedulerConfig struct {
	Owner             Address       `json:"owner"`
	LedgerAddress     Address       `json:"ledger_address"`
	CheckWorkBudget   int           `json:"check_work_budget"`
	PerformWorkBudget int           `json:"perform_work_budget"`
	MaxTargets        int           `json:"max_targets"`
	PerformTimeout    time.Duration `json:"perform_timeout"`
}

// UpkeepRun records one batch perform for later inspection.
type UpkeepRun struct {
	BaseModel
	Trigger   string    `json:"trigger" gorm:"size:20;not null;index"`
	Checked   int       `json:"checked"`
	Needed    int       `json:"needed"`
	Succeeded int       `json:"succeeded"`
	Failed    int       `json:"failed"`
	Deferred  int       `json:"deferred"`
	Outcomes  JSONB     `json:"outcomes" gorm:"type:jsonb"`
	RanAt     time.Time `json:"ran_at" gorm:"not null;index"`
}
