// internal/upkeep/scheduler.go
package upkeep

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

const (
	// MinWorkBudget is the floor for both the check and the perform budget.
	MinWorkBudget = 1
	// DefaultMaxTargets caps how many scholarships one perform call touches.
	DefaultMaxTargets = 50
)

// Target is anything the scheduler can poll and drive: in practice a scholarship.
type Target interface {
	Address() models.Address
	CheckUpkeep(budget int) (bool, []byte)
	PerformUpkeep(performData []byte, budget int) error
}

// Source enumerates the targets to poll, in a stable order.
type Source interface {
	AllScholarships() []models.Address
}

// Scheduler polls every scholarship a ledger knows about and releases what they owe. It owns no
// escrow; its own balance is incidental and can be swept by the owner.
type Scheduler struct {
	address models.Address
	env     *chain.Env
	cfg     models.SchedulerConfig
}

type job struct {
	target models.Address
	data   []byte
	// fresh means the target's current work list is fetched at perform time.
	fresh bool
}

func New(address models.Address, cfg models.SchedulerConfig, env *chain.Env) (*Scheduler, error) {
	if address.IsZero() || cfg.Owner.IsZero() || cfg.LedgerAddress.IsZero() {
		return nil, apperr.ErrInvalidAddress
	}
	if cfg.CheckWorkBudget < MinWorkBudget || cfg.PerformWorkBudget < MinWorkBudget {
		return nil, apperr.ErrGasLimitTooLow
	}
	if cfg.MaxTargets <= 0 {
		cfg.MaxTargets = DefaultMaxTargets
	}

	s := &Scheduler{address: address, env: env, cfg: cfg}
	if err := env.Directory.Register(address, s); err != nil {
		return nil, fmt.Errorf("failed to deploy scheduler: %w", err)
	}
	return s, nil
}

func (s *Scheduler) Address() models.Address        { return s.address }
func (s *Scheduler) Config() models.SchedulerConfig { return s.cfg }

func (s *Scheduler) Balance() uint64 {
	return s.env.Bank.BalanceOf(s.address)
}

// CheckUpkeep is the read-only half of the cycle. It asks every scholarship what it owes, each
// bounded by the check budget, and returns the encoded batch of those that need work.
func (s *Scheduler) CheckUpkeep() (models.CheckResult, error) {
	source, err := s.source()
	if err != nil {
		return models.CheckResult{}, err
	}

	all := source.AllScholarships()
	batch := models.Batch{}
	for _, addr := range all {
		target, err := s.target(addr)
		if err != nil {
			continue
		}
		needed, data := s.safeCheck(target)
		if needed {
			batch = append(batch, models.BatchEntry{Target: addr, PerformData: data})
		}
	}

	return models.CheckResult{
		UpkeepNeeded: len(batch) > 0,
		PerformData:  models.EncodeBatch(batch),
		Checked:      len(all),
		NeedsUpkeep:  len(batch),
	}, nil
}

// PerformUpkeep executes a batch produced by CheckUpkeep. Only undecodable input fails the call;
// every target gets its own outcome and a failing target never stops its siblings.
func (s *Scheduler) PerformUpkeep(ctx context.Context, performData []byte) (models.UpkeepReport, error) {
	batch, err := models.DecodeBatch(performData)
	if err != nil {
		return models.UpkeepReport{}, apperr.ErrInvalidPerformData.Withf("%v", err)
	}

	jobs := make([]job, len(batch))
	for i, entry := range batch {
		jobs[i] = job{target: entry.Target, data: entry.PerformData}
	}
	return s.run(ctx, jobs), nil
}

// ManualTriggerUpkeep performs target's current work list without asking whether it is needed.
func (s *Scheduler) ManualTriggerUpkeep(ctx context.Context, caller, target models.Address) (models.Outcome, error) {
	if caller != s.cfg.Owner {
		return models.Outcome{}, apperr.ErrUnauthorized
	}
	if err := ctx.Err(); err != nil {
		return models.Outcome{Target: target, Status: models.OutcomeDeferred, Reason: err.Error()}, nil
	}
	return s.execute(job{target: target, fresh: true}), nil
}

// BatchTriggerUpkeep is ManualTriggerUpkeep over an explicit list, with the batch bookkeeping of
// PerformUpkeep.
func (s *Scheduler) BatchTriggerUpkeep(ctx context.Context, caller models.Address, targets []models.Address) (models.UpkeepReport, error) {
	if caller != s.cfg.Owner {
		return models.UpkeepReport{}, apperr.ErrUnauthorized
	}

	jobs := make([]job, len(targets))
	for i, target := range targets {
		jobs[i] = job{target: target, fresh: true}
	}
	return s.run(ctx, jobs), nil
}

func (s *Scheduler) run(ctx context.Context, jobs []job) models.UpkeepReport {
	if s.cfg.PerformTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.PerformTimeout)
		defer cancel()
	}

	report := models.UpkeepReport{
		RunID:    uuid.New(),
		Outcomes: make([]models.Outcome, 0, len(jobs)),
		Needed:   len(jobs),
	}
	for i, j := range jobs {
		if i >= s.cfg.MaxTargets || ctx.Err() != nil {
			report.Outcomes = append(report.Outcomes, models.Outcome{
				Target: j.target,
				Status: models.OutcomeDeferred,
			})
			report.Deferred++
			continue
		}

		outcome := s.execute(j)
		report.Outcomes = append(report.Outcomes, outcome)
		report.Checked++
		if outcome.Status == models.OutcomeSucceeded {
			report.Succeeded++
		} else {
			report.Failed++
		}
	}

	s.env.Events.Emit(s.address, models.EventCheckCompleted, models.Fields{
		"checkedCount":     report.Checked,
		"needsUpkeepCount": report.Needed,
		"succeeded":        report.Succeeded,
		"failed":           report.Failed,
		"deferred":         report.Deferred,
	})
	return report
}

// execute runs one target's perform step and converts any failure into an outcome.
func (s *Scheduler) execute(j job) models.Outcome {
	if err := s.performTarget(j); err != nil {
		failure := apperr.ExternalCall(err)
		reason := failure.Message
		logrus.WithFields(logrus.Fields{
			"target": j.target.Hex(),
			"kind":   failure.Kind,
			"reason": reason,
		}).Warn("Upkeep failed")
		s.env.Events.Emit(s.address, models.EventUpkeepFailed, models.Fields{
			"target": j.target,
			"reason": reason,
		})
		return models.Outcome{Target: j.target, Status: models.OutcomeFailed, Reason: reason}
	}

	s.env.Events.Emit(s.address, models.EventUpkeepPerformed, models.Fields{"target": j.target})
	return models.Outcome{Target: j.target, Status: models.OutcomeSucceeded}
}

func (s *Scheduler) performTarget(j job) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recoveredError(r)
		}
	}()

	target, err := s.target(j.target)
	if err != nil {
		return err
	}
	data := j.data
	if j.fresh {
		_, data = target.CheckUpkeep(s.cfg.PerformWorkBudget)
	}
	return target.PerformUpkeep(data, s.cfg.PerformWorkBudget)
}

func (s *Scheduler) safeCheck(target Target) (needed bool, data []byte) {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithFields(logrus.Fields{
				"target": target.Address().Hex(),
				"panic":  r,
			}).Warn("Upkeep check panicked")
			needed, data = false, nil
		}
	}()
	return target.CheckUpkeep(s.cfg.CheckWorkBudget)
}

func (s *Scheduler) source() (Source, error) {
	instance, ok := s.env.Directory.Lookup(s.cfg.LedgerAddress)
	if !ok {
		return nil, apperr.ErrInvalidAddress.Withf("no ledger at %s", s.cfg.LedgerAddress)
	}
	source, ok := instance.(Source)
	if !ok {
		return nil, apperr.ErrInvalidAddress.Withf("%s is not a ledger", s.cfg.LedgerAddress)
	}
	return source, nil
}

func (s *Scheduler) target(addr models.Address) (Target, error) {
	instance, ok := s.env.Directory.Lookup(addr)
	if !ok {
		return nil, apperr.ErrUnknownTarget.Withf("nothing deployed at %s", addr)
	}
	target, ok := instance.(Target)
	if !ok {
		return nil, apperr.ErrUnknownTarget.Withf("%s does not support upkeep", addr)
	}
	return target, nil
}

type panicError struct {
	reason string
}

func (e *panicError) Error() string { return e.reason }

func recoveredError(r interface{}) error {
	switch v := r.(type) {
	case error:
		if v.Error() != "" {
			return &panicError{reason: v.Error()}
		}
	case string:
		if v != "" {
			return &panicError{reason: v}
		}
	}
	return &panicError{reason: apperr.UnknownReason}
}
