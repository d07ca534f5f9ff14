// internal/services/upkeep_service.go
package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/utils"
)

// Run triggers recorded alongside each upkeep report.
const (
	TriggerKeeper = "keeper"
	TriggerManual = "manual"
	TriggerBatch  = "batch"
)

type UpkeepService struct {
	chain *BlockchainService
}

func NewUpkeepService(chain *BlockchainService) *UpkeepService {
	return &UpkeepService{chain: chain}
}

type PerformUpkeepRequest struct {
	PerformData []byte `json:"perform_data"`
}

type ManualTriggerRequest struct {
	Target string `json:"target" validate:"required,address"`
}

type BatchTriggerRequest struct {
	Targets []string `json:"targets" validate:"required,min=1,dive,address"`
}

type UpdateGasLimitsRequest struct {
	CheckLimit   int `json:"check_limit"`
	PerformLimit int `json:"perform_limit"`
}

type UpdateLedgerAddressRequest struct {
	Ledger string `json:"ledger" validate:"required,address"`
}

type UpdateLimitsRequest struct {
	MaxTargets     int `json:"max_targets"`
	PerformTimeout int `json:"perform_timeout"` // in seconds, 0 disables
}

func (s *UpkeepService) Check() (models.CheckResult, error) {
	var (
		result models.CheckResult
		err    error
	)
	s.chain.View(func() {
		result, err = s.chain.Scheduler().CheckUpkeep()
	})
	return result, err
}

// Perform executes a batch previously returned by Check. Anyone may submit it.
func (s *UpkeepService) Perform(ctx context.Context, req *PerformUpkeepRequest) (models.UpkeepReport, error) {
	var report models.UpkeepReport
	err := s.chain.Execute(func() error {
		var err error
		report, err = s.chain.Scheduler().PerformUpkeep(ctx, req.PerformData)
		return err
	})
	if err != nil {
		return report, err
	}
	s.record(TriggerKeeper, report)
	return report, nil
}

func (s *UpkeepService) ManualTrigger(ctx context.Context, caller models.Address, req *ManualTriggerRequest) (models.Outcome, error) {
	target, err := models.HexToAddress(req.Target)
	if err != nil {
		return models.Outcome{}, err
	}

	var outcome models.Outcome
	err = s.chain.Execute(func() error {
		var err error
		outcome, err = s.chain.Scheduler().ManualTriggerUpkeep(ctx, caller, target)
		return err
	})
	if err != nil {
		return outcome, err
	}

	report := models.UpkeepReport{RunID: uuid.New(), Outcomes: []models.Outcome{outcome}, Needed: 1}
	switch outcome.Status {
	case models.OutcomeSucceeded:
		report.Checked, report.Succeeded = 1, 1
	case models.OutcomeFailed:
		report.Checked, report.Failed = 1, 1
	default:
		report.Deferred = 1
	}
	s.record(TriggerManual, report)
	return outcome, nil
}

func (s *UpkeepService) BatchTrigger(ctx context.Context, caller models.Address, req *BatchTriggerRequest) (models.UpkeepReport, error) {
	targets := make([]models.Address, 0, len(req.Targets))
	for _, t := range req.Targets {
		addr, err := models.HexToAddress(t)
		if err != nil {
			return models.UpkeepReport{}, err
		}
		targets = append(targets, addr)
	}

	var report models.UpkeepReport
	err := s.chain.Execute(func() error {
		var err error
		report, err = s.chain.Scheduler().BatchTriggerUpkeep(ctx, caller, targets)
		return err
	})
	if err != nil {
		return report, err
	}
	s.record(TriggerBatch, report)
	return report, nil
}

func (s *UpkeepService) UpdateGasLimits(caller models.Address, req *UpdateGasLimitsRequest) (models.SchedulerConfig, error) {
	err := s.chain.Execute(func() error {
		return s.chain.Scheduler().UpdateGasLimits(caller, req.CheckLimit, req.PerformLimit)
	})
	return s.Config(), err
}

func (s *UpkeepService) UpdateLedgerAddress(caller models.Address, req *UpdateLedgerAddressRequest) (models.SchedulerConfig, error) {
	ledger, err := models.HexToAddress(req.Ledger)
	if err != nil {
		return models.SchedulerConfig{}, err
	}
	err = s.chain.Execute(func() error {
		return s.chain.Scheduler().UpdateScholarshipFactoryAddress(caller, ledger)
	})
	return s.Config(), err
}

func (s *UpkeepService) UpdateLimits(caller models.Address, req *UpdateLimitsRequest) (models.SchedulerConfig, error) {
	timeout := time.Duration(req.PerformTimeout) * time.Second
	err := s.chain.Execute(func() error {
		return s.chain.Scheduler().UpdateLimits(caller, req.MaxTargets, timeout)
	})
	return s.Config(), err
}

// Withdraw sweeps the scheduler's incidental balance to its owner.
func (s *UpkeepService) Withdraw(caller models.Address) (uint64, error) {
	var amount uint64
	err := s.chain.Execute(func() error {
		var err error
		amount, err = s.chain.Scheduler().Withdraw(caller)
		return err
	})
	return amount, err
}

func (s *UpkeepService) Config() models.SchedulerConfig {
	var cfg models.SchedulerConfig
	s.chain.View(func() { cfg = s.chain.Scheduler().Config() })
	return cfg
}

func (s *UpkeepService) ListRuns(trigger string, params utils.PaginationParams) ([]models.UpkeepRun, int64, error) {
	return s.chain.Store().ListRuns(trigger, params)
}

func (s *UpkeepService) ListEvents(emitter, name string, params utils.PaginationParams) ([]models.EventRecord, int64, error) {
	return s.chain.Store().ListEvents(emitter, name, params)
}

func (s *UpkeepService) record(trigger string, report models.UpkeepReport) {
	ranAt := s.chain.Env().Clock.Now()
	if err := s.chain.Store().RecordRun(trigger, report, ranAt); err != nil {
		logrus.WithError(err).WithField("run_id", report.RunID).Error("Failed to record upkeep run")
	}

	logrus.WithFields(logrus.Fields{
		"run_id":    report.RunID,
		"trigger":   trigger,
		"checked":   report.Checked,
		"succeeded": report.Succeeded,
		"failed":    report.Failed,
		"deferred":  report.Deferred,
	}).Info("Upkeep run completed")
}
