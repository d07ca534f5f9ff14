// internal/keeper/runner_test.go
package keeper

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

type fakeAPI struct {
	check      models.CheckResult
	checkErr   error
	performErr error

	checks    int
	performed [][]byte
	onCheck   func(n int)
}

func (f *fakeAPI) Check(ctx context.Context) (models.CheckResult, error) {
	f.checks++
	if f.onCheck != nil {
		f.onCheck(f.checks)
	}
	return f.check, f.checkErr
}

func (f *fakeAPI) Perform(ctx context.Context, performData []byte) (models.UpkeepReport, error) {
	f.performed = append(f.performed, performData)
	if f.performErr != nil {
		return models.UpkeepReport{}, f.performErr
	}
	return models.UpkeepReport{RunID: uuid.New(), Checked: 1, Succeeded: 1}, nil
}

func TestTickSkipsWhenNothingOwed(t *testing.T) {
	api := &fakeAPI{check: models.CheckResult{UpkeepNeeded: false, PerformData: []byte("[]")}}
	runner := NewRunner(api, time.Second)

	_, performed, err := runner.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, performed)
	assert.Empty(t, api.performed)
}

func TestTickPerformsCheckedData(t *testing.T) {
	data := []byte(`[{"target":"0x00000000000000000000000000000000000000c3","perform_data":[]}]`)
	api := &fakeAPI{check: models.CheckResult{UpkeepNeeded: true, PerformData: data}}
	runner := NewRunner(api, time.Second)

	report, performed, err := runner.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, performed)
	assert.Equal(t, 1, report.Succeeded)
	require.Len(t, api.performed, 1)
	assert.Equal(t, data, api.performed[0])
}

func TestTickPropagatesErrors(t *testing.T) {
	api := &fakeAPI{checkErr: errors.New("connection refused")}
	_, _, err := NewRunner(api, time.Second).Tick(context.Background())
	assert.EqualError(t, err, "connection refused")

	api = &fakeAPI{
		check:      models.CheckResult{UpkeepNeeded: true, PerformData: []byte("[]")},
		performErr: &APIError{Status: 403, Code: "AUTH_REQUIRED"},
	}
	_, performed, err := NewRunner(api, time.Second).Tick(context.Background())
	assert.False(t, performed)
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, 403, apiErr.Status)
}

func TestRunStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	api := &fakeAPI{checkErr: errors.New("flaky")}
	api.onCheck = func(n int) {
		if n == 3 {
			cancel()
		}
	}

	err := NewRunner(api, time.Millisecond).Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, api.checks)
}

func TestNewRunnerDefaultsInterval(t *testing.T) {
	runner := NewRunner(&fakeAPI{}, 0)
	assert.Equal(t, 1, runner.limiter.Burst())
	assert.InDelta(t, 1.0/60, float64(runner.limiter.Limit()), 1e-9)
}
