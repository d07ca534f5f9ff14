// internal/chain/chain_test.go
package chain

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

var (
	alice = models.NamedAddress("alice")
	bob   = models.NamedAddress("bob")
)

func TestBankTransfer(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Mint(alice, 100))

	require.NoError(t, bank.Transfer(alice, bob, 40))
	assert.Equal(t, uint64(60), bank.BalanceOf(alice))
	assert.Equal(t, uint64(40), bank.BalanceOf(bob))

	err := bank.Transfer(alice, bob, 61)
	assert.True(t, errors.Is(err, apperr.ErrInsufficientBalance))
	assert.Equal(t, uint64(60), bank.BalanceOf(alice))
	assert.Equal(t, uint64(40), bank.BalanceOf(bob))

	assert.True(t, errors.Is(bank.Transfer(alice, models.ZeroAddress, 1), apperr.ErrInvalidAddress))
	assert.NoError(t, bank.Transfer(alice, bob, 0))
}

func TestBankCanTransfer(t *testing.T) {
	bank := NewBank()
	require.NoError(t, bank.Mint(alice, 100))
	require.NoError(t, bank.Mint(bob, math.MaxUint64))

	assert.NoError(t, bank.CanTransfer(alice, bob, 0))
	assert.NoError(t, bank.CanTransfer(alice, alice, 100))
	assert.True(t, errors.Is(bank.CanTransfer(alice, models.ZeroAddress, 1), apperr.ErrInvalidAddress))
	assert.True(t, errors.Is(bank.CanTransfer(alice, bob, 101), apperr.ErrInsufficientBalance))
	assert.True(t, errors.Is(bank.CanTransfer(alice, bob, 1), apperr.ErrInvalidAmount))
	assert.True(t, errors.Is(bank.Transfer(alice, bob, 1), apperr.ErrInvalidAmount))
	assert.Equal(t, uint64(100), bank.BalanceOf(alice))
}

func TestBankMint(t *testing.T) {
	bank := NewBank()

	assert.True(t, errors.Is(bank.Mint(models.ZeroAddress, 1), apperr.ErrInvalidAddress))
	assert.True(t, errors.Is(bank.Mint(alice, 0), apperr.ErrInvalidAmount))

	require.NoError(t, bank.Mint(alice, math.MaxUint64))
	assert.True(t, errors.Is(bank.Mint(alice, 1), apperr.ErrInvalidAmount))
	assert.Equal(t, uint64(math.MaxUint64), bank.BalanceOf(alice))
}

func TestEventLog(t *testing.T) {
	clock := NewManualClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC))
	log := NewEventLog(clock)

	var seen []string
	log.Subscribe(func(e models.Event) { seen = append(seen, e.Name) })

	first := log.Emit(alice, models.EventStudentApplied, models.Fields{"student": bob})
	clock.Advance(time.Minute)
	second := log.Emit(bob, models.EventStudentApproved, nil)
	log.Emit(alice, models.EventStudentApproved, nil)

	assert.Equal(t, uint64(0), first.Seq)
	assert.Equal(t, uint64(1), second.Seq)
	assert.Equal(t, time.Minute, second.Time.Sub(first.Time))
	assert.Equal(t, uint64(3), log.Len())
	assert.Equal(t, []string{models.EventStudentApplied, models.EventStudentApproved, models.EventStudentApproved}, seen)

	since := log.Since(1)
	require.Len(t, since, 2)
	assert.Equal(t, uint64(1), since[0].Seq)
	assert.Nil(t, log.Since(3))

	assert.Len(t, log.Filter(models.EventStudentApproved, nil), 2)
	assert.Len(t, log.Filter(models.EventStudentApproved, &alice), 1)
}

func TestDirectory(t *testing.T) {
	dir := NewDirectory()

	require.NoError(t, dir.Register(alice, "instance"))
	assert.Error(t, dir.Register(alice, "other"))
	assert.Error(t, dir.Register(models.ZeroAddress, "zero"))

	instance, ok := dir.Lookup(alice)
	assert.True(t, ok)
	assert.Equal(t, "instance", instance)

	_, ok = dir.Lookup(bob)
	assert.False(t, ok)

	dir.Unregister(alice)
	_, ok = dir.Lookup(alice)
	assert.False(t, ok)
	require.NoError(t, dir.Register(alice, "redeployed"))
}

func TestNewEnvDefaultsToSystemClock(t *testing.T) {
	env := NewEnv(nil)
	assert.IsType(t, SystemClock{}, env.Clock)
	assert.Equal(t, time.UTC, env.Clock.Now().Location())
}
