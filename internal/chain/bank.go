// internal/chain/bank.go
package chain

import (
	"math"
	"sync"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

// Bank tracks the base-unit balance of every address.
type Bank struct {
	mu       sync.RWMutex
	balances map[models.Address]uint64
}

func NewBank() *Bank {
	return &Bank{balances: make(map[models.Address]uint64)}
}

func (b *Bank) BalanceOf(addr models.Address) uint64 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.balances[addr]
}

// Mint credits new value to addr. It backs the development faucet and tests.
func (b *Bank) Mint(addr models.Address, amount uint64) error {
	if addr.IsZero() {
		return apperr.ErrInvalidAddress
	}
	if amount == 0 {
		return apperr.ErrInvalidAmount
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.balances[addr] > math.MaxUint64-amount {
		return apperr.ErrInvalidAmount.Withf("balance overflow for %s", addr)
	}
	b.balances[addr] += amount
	return nil
}

// CanTransfer reports the error Transfer would return, without moving anything.
func (b *Bank) CanTransfer(from, to models.Address, amount uint64) error {
	if to.IsZero() {
		return apperr.ErrInvalidAddress
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.checkTransfer(from, to, amount)
}

// Transfer moves amount from one address to another, or changes nothing.
func (b *Bank) Transfer(from, to models.Address, amount uint64) error {
	if to.IsZero() {
		return apperr.ErrInvalidAddress
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.checkTransfer(from, to, amount); err != nil {
		return err
	}
	if from == to || amount == 0 {
		return nil
	}
	b.balances[from] -= amount
	b.balances[to] += amount
	return nil
}

// checkTransfer must be called with b.mu held.
func (b *Bank) checkTransfer(from, to models.Address, amount uint64) error {
	if b.balances[from] < amount {
		return apperr.ErrInsufficientBalance.Withf("%s holds %d, needs %d", from, b.balances[from], amount)
	}
	if from == to || amount == 0 {
		return nil
	}
	if b.balances[to] > math.MaxUint64-amount {
		return apperr.ErrInvalidAmount.Withf("balance overflow for %s", to)
	}
	return nil
}
