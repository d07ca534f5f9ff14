// internal/ledger/ledger.go
package ledger

import (
	"fmt"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/roles"
	"github.com/javajoker/scholarship-escrow/internal/scholarship"
)

// Ledger creates scholarships and keeps the append-only index of them. It never holds funds:
// the deposit moves straight from the company to the new scholarship.
type Ledger struct {
	address      models.Address
	operator     models.Address
	env          *chain.Env
	registryAddr models.Address
	registry     roles.Registry

	verified     map[models.Address]bool
	scholarships []*scholarship.Scholarship
	index        map[models.Address]int
	byCompany    map[models.Address][]int
}

func New(address, operator, registryAddr models.Address, env *chain.Env) (*Ledger, error) {
	if address.IsZero() || operator.IsZero() {
		return nil, apperr.ErrInvalidAddress
	}
	registry, ok := roles.Resolve(env.Directory, registryAddr)
	if !ok {
		return nil, apperr.ErrInvalidAddress.Withf("no role registry at %s", registryAddr)
	}

	l := &Ledger{
		address:      address,
		operator:     operator,
		env:          env,
		registryAddr: registryAddr,
		registry:     registry,
		verified:     make(map[models.Address]bool),
		index:        make(map[models.Address]int),
		byCompany:    make(map[models.Address][]int),
	}
	if err := env.Directory.Register(address, l); err != nil {
		return nil, fmt.Errorf("failed to deploy ledger: %w", err)
	}
	return l, nil
}

func (l *Ledger) Address() models.Address         { return l.address }
func (l *Ledger) Operator() models.Address        { return l.operator }
func (l *Ledger) RegistryAddress() models.Address { return l.registryAddr }

func (l *Ledger) IsVerified(company models.Address) bool {
	return l.verified[company]
}

// VerifyCompany marks company as allowed to fund scholarships.
func (l *Ledger) VerifyCompany(caller, company models.Address) error {
	if caller != l.operator {
		return apperr.ErrUnauthorized
	}
	if company.IsZero() {
		return apperr.ErrInvalidAddress
	}
	if l.verified[company] {
		return apperr.ErrAlreadyVerified
	}

	l.verified[company] = true
	l.env.Events.Emit(l.address, models.EventCompanyVerified, models.Fields{"company": company})
	return nil
}

// CreateScholarship deploys and funds a scholarship in one step. value is what the caller
// attached and must equal params.TotalAmount exactly.
func (l *Ledger) CreateScholarship(caller models.Address, value uint64, params models.ScholarshipParams) (*scholarship.Scholarship, error) {
	if l.registry.GetRole(caller) != models.RoleCompany {
		return nil, apperr.ErrNoRole.Withf("%s is not a company", caller)
	}
	if !l.verified[caller] {
		return nil, apperr.ErrCompanyNotVerified
	}
	if value != params.TotalAmount {
		return nil, apperr.ErrInsufficientFunds.Withf("attached %d, total is %d", value, params.TotalAmount)
	}
	if err := scholarship.ValidateParams(params, l.env.Clock.Now()); err != nil {
		return nil, err
	}

	id := uint64(len(l.scholarships))
	addr := models.DeriveAddress(l.address, id)
	if _, taken := l.env.Directory.Lookup(addr); taken {
		return nil, apperr.ErrInvalidAddress.Withf("derived address %s already in use", addr)
	}
	if err := l.env.Bank.CanTransfer(caller, addr, value); err != nil {
		return nil, err
	}

	s, err := scholarship.New(scholarship.Deployment{
		Address:  addr,
		ID:       id,
		Company:  caller,
		Registry: l.registry,
		Params:   params,
	}, l.env)
	if err != nil {
		return nil, err
	}
	if err := l.env.Directory.Register(addr, s); err != nil {
		return nil, apperr.ErrInvalidAddress.Withf("failed to deploy scholarship: %v", err)
	}
	if err := l.env.Bank.Transfer(caller, addr, value); err != nil {
		l.env.Directory.Unregister(addr)
		return nil, err
	}

	l.index[addr] = len(l.scholarships)
	l.scholarships = append(l.scholarships, s)
	l.byCompany[caller] = append(l.byCompany[caller], int(id))

	l.env.Events.Emit(l.address, models.EventScholarshipCreated, models.Fields{
		"scholarship": addr,
		"company":     caller,
		"title":       params.Title,
		"totalAmount": params.TotalAmount,
		"id":          id,
	})
	return s, nil
}

// UpdateRegistryAddress points future scholarships at a different role registry.
func (l *Ledger) UpdateRegistryAddress(caller, addr models.Address) error {
	if caller != l.operator {
		return apperr.ErrUnauthorized
	}
	if addr.IsZero() {
		return apperr.ErrInvalidAddress
	}
	registry, ok := roles.Resolve(l.env.Directory, addr)
	if !ok {
		return apperr.ErrInvalidAddress.Withf("no role registry at %s", addr)
	}

	l.registryAddr = addr
	l.registry = registry
	l.env.Events.Emit(l.address, models.EventRegistryAddressUpdated, models.Fields{"registry": addr})
	return nil
}

func (l *Ledger) AllScholarships() []models.Address {
	out := make([]models.Address, len(l.scholarships))
	for i, s := range l.scholarships {
		out[i] = s.Address()
	}
	return out
}

func (l *Ledger) CompanyScholarships(company models.Address) []models.Address {
	ids := l.byCompany[company]
	out := make([]models.Address, len(ids))
	for i, id := range ids {
		out[i] = l.scholarships[id].Address()
	}
	return out
}

func (l *Ledger) ScholarshipByIndex(i int) (models.Address, error) {
	if i < 0 || i >= len(l.scholarships) {
		return models.ZeroAddress, apperr.ErrIndexOutOfRange.Withf("index %d out of range, total is %d", i, len(l.scholarships))
	}
	return l.scholarships[i].Address(), nil
}

func (l *Ledger) TotalScholarships() int {
	return len(l.scholarships)
}

// Scholarship returns the instance at addr if this ledger created it.
func (l *Ledger) Scholarship(addr models.Address) (*scholarship.Scholarship, bool) {
	i, ok := l.index[addr]
	if !ok {
		return nil, false
	}
	return l.scholarships[i], true
}
