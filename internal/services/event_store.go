// internal/services/event_store.go
package services

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/scholarship-escrow/internal/database"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

// EventStore persists emitted events, scholarship projections, upkeep runs and audit entries.
// With a nil db every method is a no-op, which keeps the chain fully usable without Postgres.
type EventStore struct {
	db   *gorm.DB
	boot uuid.UUID
}

func NewEventStore(db *gorm.DB) *EventStore {
	return &EventStore{db: db, boot: uuid.New()}
}

func (s *EventStore) Enabled() bool {
	return s != nil && s.db != nil
}

// Boot identifies this process lifetime; event sequence numbers restart with it.
func (s *EventStore) Boot() uuid.UUID {
	return s.boot
}

// RecordEvents stores events and refreshes the given scholarship snapshots in one transaction.
func (s *EventStore) RecordEvents(events []models.Event, snapshots []models.ScholarshipInfo) error {
	if !s.Enabled() || (len(events) == 0 && len(snapshots) == 0) {
		return nil
	}

	records := make([]models.EventRecord, len(events))
	for i, e := range events {
		records[i] = models.EventRecord{
			Boot:    s.boot,
			Seq:     e.Seq,
			Name:    e.Name,
			Emitter: e.Emitter.Hex(),
			Data:    eventData(e.Fields),
			EmitAt:  e.Time,
		}
	}

	return database.WithTransaction(s.db, func(tx *gorm.DB) error {
		if len(records) > 0 {
			if err := tx.Create(&records).Error; err != nil {
				return fmt.Errorf("failed to store events: %w", err)
			}
		}
		for _, info := range snapshots {
			snapshot := models.SnapshotFromInfo(info)
			err := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "address"}},
				DoUpdates: clause.AssignmentColumns(snapshotColumns),
			}).Create(&snapshot).Error
			if err != nil {
				return fmt.Errorf("failed to store snapshot %s: %w", info.Address, err)
			}
		}
		return nil
	})
}

var snapshotColumns = []string{
	"updated_at", "ledger_id", "company", "title", "description", "min_gpa", "additional_req",
	"total_amount", "released", "balance", "status", "deadline",
	"milestone_titles", "milestone_amounts", "applicants",
}

func (s *EventStore) RecordRun(trigger string, report models.UpkeepReport, ranAt time.Time) error {
	if !s.Enabled() {
		return nil
	}

	outcomes := make([]interface{}, len(report.Outcomes))
	for i, o := range report.Outcomes {
		outcomes[i] = map[string]interface{}{
			"target": o.Target.Hex(),
			"status": string(o.Status),
			"reason": o.Reason,
		}
	}

	run := models.UpkeepRun{
		Trigger:   trigger,
		Checked:   report.Checked,
		Needed:    report.Needed,
		Succeeded: report.Succeeded,
		Failed:    report.Failed,
		Deferred:  report.Deferred,
		Outcomes:  models.JSONB{"outcomes": outcomes},
		RanAt:     ranAt,
	}
	run.ID = report.RunID
	if err := s.db.Create(&run).Error; err != nil {
		return fmt.Errorf("failed to store upkeep run: %w", err)
	}
	return nil
}

func (s *EventStore) RecordAudit(entry *models.AuditLog) error {
	if !s.Enabled() {
		return nil
	}
	if err := s.db.Create(entry).Error; err != nil {
		return fmt.Errorf("failed to store audit log: %w", err)
	}
	return nil
}

// ListRuns pages through recorded upkeep runs, optionally narrowed to one trigger.
func (s *EventStore) ListRuns(trigger string, params utils.PaginationParams) ([]models.UpkeepRun, int64, error) {
	if !s.Enabled() {
		return []models.UpkeepRun{}, 0, nil
	}

	query := s.db.Model(&models.UpkeepRun{})
	if trigger != "" {
		query = query.Where("trigger = ?", trigger)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count upkeep runs: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"ran_at", "created_at", "failed"})
	query = utils.ApplyPagination(query, params)

	var runs []models.UpkeepRun
	if err := query.Find(&runs).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch upkeep runs: %w", err)
	}
	return runs, total, nil
}

// ListEvents pages through stored events, optionally narrowed by emitter and event name.
func (s *EventStore) ListEvents(emitter, name string, params utils.PaginationParams) ([]models.EventRecord, int64, error) {
	if !s.Enabled() {
		return []models.EventRecord{}, 0, nil
	}

	query := s.db.Model(&models.EventRecord{})
	if emitter != "" {
		query = query.Where("emitter = ?", emitter)
	}
	if name != "" {
		query = query.Where("name = ?", name)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	query = utils.ApplySort(query, params, []string{"emit_at", "seq", "created_at"})
	query = utils.ApplyPagination(query, params)

	var records []models.EventRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch events: %w", err)
	}
	return records, total, nil
}

func eventData(fields models.Fields) models.JSONB {
	data := make(models.JSONB, len(fields))
	for k, v := range fields {
		if addr, ok := v.(models.Address); ok {
			data[k] = addr.Hex()
			continue
		}
		data[k] = v
	}
	return data
}
