// internal/upkeep/scheduler_test.go
package upkeep

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

var (
	schedulerAddr = models.NamedAddress("scheduler")
	sourceAddr    = models.NamedAddress("ledger")
	owner         = models.NamedAddress("owner")
	stranger      = models.NamedAddress("stranger")
)

type fakeSource struct {
	targets []models.Address
}

func (f *fakeSource) AllScholarships() []models.Address { return f.targets }

type fakeTarget struct {
	address    models.Address
	work       []byte
	performErr error
	panicWith  interface{}
	checkPanic bool

	performed [][]byte
	budgets   []int
}

func (f *fakeTarget) Address() models.Address { return f.address }

func (f *fakeTarget) CheckUpkeep(budget int) (bool, []byte) {
	if f.checkPanic {
		panic("check exploded")
	}
	return len(f.work) > 0, f.work
}

func (f *fakeTarget) PerformUpkeep(performData []byte, budget int) error {
	if f.panicWith != nil {
		panic(f.panicWith)
	}
	f.performed = append(f.performed, performData)
	f.budgets = append(f.budgets, budget)
	return f.performErr
}

type fixture struct {
	env       *chain.Env
	source    *fakeSource
	scheduler *Scheduler
}

func newFixture(t *testing.T, targets ...*fakeTarget) *fixture {
	t.Helper()

	env := chain.NewEnv(chain.NewManualClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)))
	source := &fakeSource{}
	require.NoError(t, env.Directory.Register(sourceAddr, source))
	for _, target := range targets {
		require.NoError(t, env.Directory.Register(target.address, target))
		source.targets = append(source.targets, target.address)
	}

	scheduler, err := New(schedulerAddr, models.SchedulerConfig{
		Owner:             owner,
		LedgerAddress:     sourceAddr,
		CheckWorkBudget:   5,
		PerformWorkBudget: 3,
	}, env)
	require.NoError(t, err)

	return &fixture{env: env, source: source, scheduler: scheduler}
}

func target(label string, work string) *fakeTarget {
	t := &fakeTarget{address: models.NamedAddress(label)}
	if work != "" {
		t.work = []byte(work)
	}
	return t
}

func TestNewValidatesConfig(t *testing.T) {
	env := chain.NewEnv(nil)

	_, err := New(schedulerAddr, models.SchedulerConfig{Owner: owner, LedgerAddress: sourceAddr}, env)
	assert.True(t, errors.Is(err, apperr.ErrGasLimitTooLow))

	_, err = New(schedulerAddr, models.SchedulerConfig{LedgerAddress: sourceAddr, CheckWorkBudget: 1, PerformWorkBudget: 1}, env)
	assert.True(t, errors.Is(err, apperr.ErrInvalidAddress))

	s, err := New(schedulerAddr, models.SchedulerConfig{
		Owner: owner, LedgerAddress: sourceAddr, CheckWorkBudget: 1, PerformWorkBudget: 1,
	}, env)
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxTargets, s.Config().MaxTargets)
}

func TestCheckUpkeep(t *testing.T) {
	owing := target("owing", `[{"student":"0x00000000000000000000000000000000000000c3","milestone_id":0}]`)
	idle := target("idle", "")
	broken := target("broken", "[]")
	broken.checkPanic = true
	f := newFixture(t, owing, idle, broken)

	cursor := f.env.Events.Len()
	result, err := f.scheduler.CheckUpkeep()
	require.NoError(t, err)

	assert.True(t, result.UpkeepNeeded)
	assert.Equal(t, 3, result.Checked)
	assert.Equal(t, 1, result.NeedsUpkeep)
	assert.Equal(t, cursor, f.env.Events.Len())

	batch, err := models.DecodeBatch(result.PerformData)
	require.NoError(t, err)
	require.Len(t, batch, 1)
	assert.Equal(t, owing.address, batch[0].Target)
	assert.JSONEq(t, string(owing.work), string(batch[0].PerformData))
}

func TestCheckUpkeepWithoutLedger(t *testing.T) {
	f := newFixture(t)
	f.scheduler.cfg.LedgerAddress = stranger

	_, err := f.scheduler.CheckUpkeep()
	assert.True(t, errors.Is(err, apperr.ErrInvalidAddress))
}

func TestPerformUpkeepIsolatesFailures(t *testing.T) {
	first := target("first", "[]")
	failing := target("failing", "[]")
	failing.performErr = errors.New("boom")
	panicking := target("panicking", "[]")
	panicking.panicWith = 42
	last := target("last", "[]")
	f := newFixture(t, first, failing, panicking, last)

	batch := models.Batch{
		{Target: first.address, PerformData: []byte(`[]`)},
		{Target: failing.address, PerformData: []byte(`[]`)},
		{Target: panicking.address, PerformData: []byte(`[]`)},
		{Target: last.address, PerformData: []byte(`[]`)},
	}
	report, err := f.scheduler.PerformUpkeep(context.Background(), models.EncodeBatch(batch))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 4)
	assert.Equal(t, models.OutcomeSucceeded, report.Outcomes[0].Status)
	assert.Equal(t, models.Outcome{Target: failing.address, Status: models.OutcomeFailed, Reason: "boom"}, report.Outcomes[1])
	assert.Equal(t, models.Outcome{Target: panicking.address, Status: models.OutcomeFailed, Reason: apperr.UnknownReason}, report.Outcomes[2])
	assert.Equal(t, models.OutcomeSucceeded, report.Outcomes[3].Status)

	assert.Equal(t, 4, report.Checked)
	assert.Equal(t, 4, report.Needed)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 2, report.Failed)
	assert.Len(t, last.performed, 1)
	assert.Equal(t, []int{3}, first.budgets)

	assert.Len(t, f.env.Events.Filter(models.EventUpkeepPerformed, &schedulerAddr), 2)
	failed := f.env.Events.Filter(models.EventUpkeepFailed, &schedulerAddr)
	require.Len(t, failed, 2)
	assert.Equal(t, "boom", failed[0].Fields["reason"])

	completed := f.env.Events.Filter(models.EventCheckCompleted, &schedulerAddr)
	require.Len(t, completed, 1)
	assert.Equal(t, 4, completed[0].Fields["checkedCount"])
}

func TestPerformUpkeepUnknownTarget(t *testing.T) {
	f := newFixture(t)

	batch := models.Batch{{Target: stranger, PerformData: []byte(`[]`)}}
	report, err := f.scheduler.PerformUpkeep(context.Background(), models.EncodeBatch(batch))
	require.NoError(t, err)

	require.Len(t, report.Outcomes, 1)
	assert.Equal(t, models.OutcomeFailed, report.Outcomes[0].Status)
	assert.Contains(t, report.Outcomes[0].Reason, "UnknownTarget")
}

func TestPerformUpkeepEmptyBatch(t *testing.T) {
	f := newFixture(t)

	report, err := f.scheduler.PerformUpkeep(context.Background(), models.EncodeBatch(nil))
	require.NoError(t, err)
	assert.Empty(t, report.Outcomes)
	assert.Equal(t, 0, report.Needed)
	assert.Len(t, f.env.Events.Filter(models.EventCheckCompleted, &schedulerAddr), 1)
}

func TestPerformUpkeepRejectsGarbage(t *testing.T) {
	f := newFixture(t)

	_, err := f.scheduler.PerformUpkeep(context.Background(), []byte("garbage"))
	assert.True(t, errors.Is(err, apperr.ErrInvalidPerformData))
	assert.Empty(t, f.env.Events.Filter(models.EventCheckCompleted, nil))
}

func TestPerformUpkeepDefersPastMaxTargets(t *testing.T) {
	a, b, c := target("a", "[]"), target("b", "[]"), target("c", "[]")
	f := newFixture(t, a, b, c)
	require.NoError(t, f.scheduler.UpdateLimits(owner, 2, 0))

	batch := models.Batch{
		{Target: a.address, PerformData: []byte(`[]`)},
		{Target: b.address, PerformData: []byte(`[]`)},
		{Target: c.address, PerformData: []byte(`[]`)},
	}
	report, err := f.scheduler.PerformUpkeep(context.Background(), models.EncodeBatch(batch))
	require.NoError(t, err)

	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Deferred)
	assert.Equal(t, models.Outcome{Target: c.address, Status: models.OutcomeDeferred}, report.Outcomes[2])
	assert.Empty(t, c.performed)
}

func TestPerformUpkeepCancelledContext(t *testing.T) {
	a := target("a", "[]")
	f := newFixture(t, a)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	batch := models.Batch{{Target: a.address, PerformData: []byte(`[]`)}}
	report, err := f.scheduler.PerformUpkeep(ctx, models.EncodeBatch(batch))
	require.NoError(t, err)
	assert.Equal(t, 1, report.Deferred)
	assert.Equal(t, 0, report.Checked)
	assert.Empty(t, a.performed)
}

func TestManualTriggerUpkeep(t *testing.T) {
	a := target("a", `[{"student":"0x00000000000000000000000000000000000000c3","milestone_id":1}]`)
	f := newFixture(t, a)

	_, err := f.scheduler.ManualTriggerUpkeep(context.Background(), stranger, a.address)
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
	assert.Empty(t, a.performed)

	outcome, err := f.scheduler.ManualTriggerUpkeep(context.Background(), owner, a.address)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeSucceeded, outcome.Status)
	require.Len(t, a.performed, 1)
	assert.Equal(t, a.work, a.performed[0])

	outcome, err = f.scheduler.ManualTriggerUpkeep(context.Background(), owner, stranger)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeFailed, outcome.Status)
}

func TestBatchTriggerUpkeep(t *testing.T) {
	a := target("a", "[]")
	failing := target("failing", "[]")
	failing.performErr = apperr.ErrInsufficientBalance
	f := newFixture(t, a, failing)

	_, err := f.scheduler.BatchTriggerUpkeep(context.Background(), stranger, []models.Address{a.address})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	report, err := f.scheduler.BatchTriggerUpkeep(context.Background(), owner, []models.Address{a.address, failing.address})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, "InsufficientBalance", report.Outcomes[1].Reason)
}
