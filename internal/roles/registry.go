// internal/roles/registry.go
package roles

import (
	"sync"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/models"
)

// Registry is the read side of role assignment; it is all the escrow core consumes.
type Registry interface {
	HasRole(addr models.Address) bool
	GetRole(addr models.Address) models.Role
}

// MemoryRegistry issues at most one role per address, up to a fixed cap per role.
type MemoryRegistry struct {
	mu          sync.RWMutex
	address     models.Address
	operator    models.Address
	events      *chain.EventLog
	caps        map[models.Role]int
	issued      map[models.Role]int
	assignments map[models.Address]models.Role
}

func NewMemoryRegistry(address, operator models.Address, events *chain.EventLog, studentCap, companyCap int) *MemoryRegistry {
	return &MemoryRegistry{
		address:  address,
		operator: operator,
		events:   events,
		caps: map[models.Role]int{
			models.RoleStudent: studentCap,
			models.RoleCompany: companyCap,
		},
		issued:      make(map[models.Role]int),
		assignments: make(map[models.Address]models.Role),
	}
}

func (r *MemoryRegistry) Address() models.Address {
	return r.address
}

func (r *MemoryRegistry) HasRole(addr models.Address) bool {
	return r.GetRole(addr) != models.RoleNone
}

func (r *MemoryRegistry) GetRole(addr models.Address) models.Role {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.assignments[addr]
}

// Assign gives addr a role. Only the operator may issue, and a cap of zero or less means unlimited.
func (r *MemoryRegistry) Assign(caller, addr models.Address, role models.Role) error {
	if caller != r.operator {
		return apperr.ErrUnauthorized
	}
	if addr.IsZero() {
		return apperr.ErrInvalidAddress
	}
	if role == models.RoleNone {
		return apperr.ErrNoRole.Withf("cannot assign role none")
	}

	r.mu.Lock()
	if current := r.assignments[addr]; current != models.RoleNone {
		r.mu.Unlock()
		return apperr.ErrRoleAlreadyAssigned.Withf("%s already holds %s", addr, current)
	}
	if limit := r.caps[role]; limit > 0 && r.issued[role] >= limit {
		r.mu.Unlock()
		return apperr.ErrRoleCapReached.Withf("%s cap of %d reached", role, limit)
	}
	r.assignments[addr] = role
	r.issued[role]++
	r.mu.Unlock()

	if r.events != nil {
		r.events.Emit(r.address, models.EventRoleAssigned, models.Fields{
			"account": addr,
			"role":    role.String(),
		})
	}
	return nil
}

// Issued reports how many roles of each kind have been handed out.
func (r *MemoryRegistry) Issued(role models.Role) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.issued[role]
}
