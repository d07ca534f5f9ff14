// internal/keeper/runner.go
package keeper

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

// API is the part of the escrow API the runner drives.
type API interface {
	Check(ctx context.Context) (models.CheckResult, error)
	Perform(ctx context.Context, performData []byte) (models.UpkeepReport, error)
}

// Runner is the periodic external trigger: check, and perform whatever the check returned.
type Runner struct {
	api     API
	limiter *rate.Limiter
}

func NewRunner(api API, interval time.Duration) *Runner {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Runner{
		api:     api,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Run ticks until ctx is done. A failed tick is logged and retried on the next one.
func (r *Runner) Run(ctx context.Context) error {
	for {
		if err := r.limiter.Wait(ctx); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return err
		}

		report, performed, err := r.Tick(ctx)
		switch {
		case err != nil && errors.Is(err, context.Canceled):
			return err
		case err != nil:
			logrus.WithError(err).Warn("Keeper tick failed")
		case performed:
			logrus.WithFields(logrus.Fields{
				"run_id":    report.RunID,
				"checked":   report.Checked,
				"succeeded": report.Succeeded,
				"failed":    report.Failed,
				"deferred":  report.Deferred,
			}).Info("Keeper performed upkeep")
		default:
			logrus.Debug("No upkeep needed")
		}
	}
}

// Tick runs one check and, if anything is owed, one perform.
func (r *Runner) Tick(ctx context.Context) (models.UpkeepReport, bool, error) {
	result, err := r.api.Check(ctx)
	if err != nil {
		return models.UpkeepReport{}, false, err
	}
	if !result.UpkeepNeeded {
		return models.UpkeepReport{}, false, nil
	}

	report, err := r.api.Perform(ctx, result.PerformData)
	if err != nil {
		return models.UpkeepReport{}, false, err
	}
	return report, true, nil
}
