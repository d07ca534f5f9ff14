// internal/upkeep/admin.go
package upkeep

import (
	"time"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

// UpdateGasLimits sets the per-target work budgets for check and perform.
func (s *Scheduler) UpdateGasLimits(caller models.Address, checkBudget, performBudget int) error {
	if caller != s.cfg.Owner {
		return apperr.ErrUnauthorized
	}
	if checkBudget < MinWorkBudget || performBudget < MinWorkBudget {
		return apperr.ErrGasLimitTooLow.Withf("budgets must be at least %d", MinWorkBudget)
	}

	s.cfg.CheckWorkBudget = checkBudget
	s.cfg.PerformWorkBudget = performBudget
	s.env.Events.Emit(s.address, models.EventGasLimitUpdated, models.Fields{
		"checkLimit":   checkBudget,
		"performLimit": performBudget,
	})
	return nil
}

// UpdateScholarshipFactoryAddress points the scheduler at a different ledger.
func (s *Scheduler) UpdateScholarshipFactoryAddress(caller, ledger models.Address) error {
	if caller != s.cfg.Owner {
		return apperr.ErrUnauthorized
	}
	if ledger.IsZero() {
		return apperr.ErrInvalidAddress
	}
	instance, ok := s.env.Directory.Lookup(ledger)
	if !ok {
		return apperr.ErrInvalidAddress.Withf("no ledger at %s", ledger)
	}
	if _, ok := instance.(Source); !ok {
		return apperr.ErrInvalidAddress.Withf("%s is not a ledger", ledger)
	}

	s.cfg.LedgerAddress = ledger
	s.env.Events.Emit(s.address, models.EventFactoryAddressUpdated, models.Fields{"newFactory": ledger})
	return nil
}

// UpdateLimits changes the per-call target cap and time-box. A zero timeout disables the time-box.
func (s *Scheduler) UpdateLimits(caller models.Address, maxTargets int, performTimeout time.Duration) error {
	if caller != s.cfg.Owner {
		return apperr.ErrUnauthorized
	}
	if maxTargets < MinWorkBudget {
		return apperr.ErrGasLimitTooLow.Withf("max targets must be at least %d", MinWorkBudget)
	}
	if performTimeout < 0 {
		return apperr.ErrInvalidAmount.Withf("timeout must not be negative")
	}

	s.cfg.MaxTargets = maxTargets
	s.cfg.PerformTimeout = performTimeout
	return nil
}

// Withdraw sweeps the scheduler's own balance to the owner and returns the amount moved.
func (s *Scheduler) Withdraw(caller models.Address) (uint64, error) {
	if caller != s.cfg.Owner {
		return 0, apperr.ErrUnauthorized
	}

	amount := s.Balance()
	if err := s.env.Bank.Transfer(s.address, s.cfg.Owner, amount); err != nil {
		return 0, err
	}
	s.env.Events.Emit(s.address, models.EventFundsWithdrawn, models.Fields{
		"to":     s.cfg.Owner,
		"amount": amount,
	})
	return amount, nil
}
