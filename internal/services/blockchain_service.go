// internal/services/blockchain_service.go
package services

import (
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/javajoker/scholarship-escrow/internal/apperr"
	"github.com/javajoker/scholarship-escrow/internal/chain"
	"github.com/javajoker/scholarship-escrow/internal/config"
	"github.com/javajoker/scholarship-escrow/internal/ledger"
	"github.com/javajoker/scholarship-escrow/internal/logging"
	"github.com/javajoker/scholarship-escrow/internal/models"
	"github.com/javajoker/scholarship-escrow/internal/roles"
	"github.com/javajoker/scholarship-escrow/internal/upkeep"
)

// Well-known system addresses.
var (
	RegistryAddress  = models.NamedAddress("scholarship-escrow/role-registry")
	LedgerAddress    = models.NamedAddress("scholarship-escrow/ledger")
	SchedulerAddress = models.NamedAddress("scholarship-escrow/upkeep-scheduler")
)

var ErrFaucetDisabled = errors.New("faucet is disabled in production")

type AssignRoleRequest struct {
	Address string `json:"address" validate:"required,address"`
	Role    string `json:"role" validate:"required,oneof=student company"`
}

type VerifyCompanyRequest struct {
	Company string `json:"company" validate:"required,address"`
}

type UpdateRegistryRequest struct {
	Registry string `json:"registry" validate:"required,address"`
}

type FaucetRequest struct {
	Address string `json:"address" validate:"required,address"`
	Amount  uint64 `json:"amount" validate:"required"`
}

// BlockchainService deploys the role registry, ledger and scheduler into one environment and
// serializes every call into it. Each call runs to completion before the next one starts.
type BlockchainService struct {
	mu        sync.Mutex
	env       *chain.Env
	registry  *roles.MemoryRegistry
	ledger    *ledger.Ledger
	scheduler *upkeep.Scheduler
	store     *EventStore
	config    *config.Config
}

func NewBlockchainService(cfg *config.Config, clock chain.Clock, store *EventStore) (*BlockchainService, error) {
	env := chain.NewEnv(clock)
	env.Events.Subscribe(logEvent)

	operator := cfg.Chain.Operator()
	registry := roles.NewMemoryRegistry(RegistryAddress, operator, env.Events, cfg.Chain.StudentCap, cfg.Chain.CompanyCap)
	if err := env.Directory.Register(RegistryAddress, registry); err != nil {
		return nil, fmt.Errorf("failed to deploy role registry: %w", err)
	}

	l, err := ledger.New(LedgerAddress, operator, RegistryAddress, env)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy ledger: %w", err)
	}

	scheduler, err := upkeep.New(SchedulerAddress, models.SchedulerConfig{
		Owner:             cfg.Upkeep.Owner(),
		LedgerAddress:     LedgerAddress,
		CheckWorkBudget:   cfg.Upkeep.CheckWorkBudget,
		PerformWorkBudget: cfg.Upkeep.PerformWorkBudget,
		MaxTargets:        cfg.Upkeep.MaxTargets,
		PerformTimeout:    cfg.Upkeep.Timeout(),
	}, env)
	if err != nil {
		return nil, fmt.Errorf("failed to deploy upkeep scheduler: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"registry":  RegistryAddress.Hex(),
		"ledger":    LedgerAddress.Hex(),
		"scheduler": SchedulerAddress.Hex(),
		"operator":  operator.Hex(),
	}).Info("Escrow contracts deployed")

	return &BlockchainService{
		env:       env,
		registry:  registry,
		ledger:    l,
		scheduler: scheduler,
		store:     store,
		config:    cfg,
	}, nil
}

// Execute runs fn with exclusive access to the chain, then persists whatever it emitted.
func (s *BlockchainService) Execute(fn func() error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cursor := s.env.Events.Len()
	err := fn()
	s.persist(s.env.Events.Since(cursor))
	return err
}

// View runs fn with exclusive access and no persistence.
func (s *BlockchainService) View(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

func (s *BlockchainService) persist(events []models.Event) {
	if !s.store.Enabled() || len(events) == 0 {
		return
	}

	touched := make(map[models.Address]bool)
	var snapshots []models.ScholarshipInfo
	for _, e := range events {
		addr := e.Emitter
		if e.Name == models.EventScholarshipCreated {
			addr, _ = e.Fields["scholarship"].(models.Address)
		}
		if touched[addr] {
			continue
		}
		if sch, ok := s.ledger.Scholarship(addr); ok {
			touched[addr] = true
			snapshots = append(snapshots, sch.Info())
		}
	}

	if err := s.store.RecordEvents(events, snapshots); err != nil {
		logrus.WithError(err).WithField("events", len(events)).Error("Failed to persist chain events")
	}
}

func (s *BlockchainService) Env() *chain.Env                  { return s.env }
func (s *BlockchainService) Ledger() *ledger.Ledger           { return s.ledger }
func (s *BlockchainService) Scheduler() *upkeep.Scheduler     { return s.scheduler }
func (s *BlockchainService) Registry() *roles.MemoryRegistry  { return s.registry }
func (s *BlockchainService) Store() *EventStore               { return s.store }
func (s *BlockchainService) Operator() models.Address         { return s.ledger.Operator() }

// AssignRole issues a role through the registry. Only the operator may call it.
func (s *BlockchainService) AssignRole(caller, account models.Address, role models.Role) error {
	return s.Execute(func() error {
		return s.registry.Assign(caller, account, role)
	})
}

func (s *BlockchainService) GetRole(account models.Address) models.Role {
	return s.registry.GetRole(account)
}

func (s *BlockchainService) Balance(account models.Address) uint64 {
	return s.env.Bank.BalanceOf(account)
}

// Faucet mints development funds. The operator may call it outside production only.
func (s *BlockchainService) Faucet(caller, account models.Address, amount uint64) error {
	if s.config.Environment == "production" {
		return ErrFaucetDisabled
	}
	if caller != s.Operator() {
		return apperr.ErrUnauthorized
	}
	return s.Execute(func() error {
		return s.env.Bank.Mint(account, amount)
	})
}

func (s *BlockchainService) VerifyCompany(caller, company models.Address) error {
	return s.Execute(func() error {
		return s.ledger.VerifyCompany(caller, company)
	})
}

func (s *BlockchainService) IsVerified(company models.Address) bool {
	var verified bool
	s.View(func() { verified = s.ledger.IsVerified(company) })
	return verified
}

// UpdateRegistryAddress repoints the ledger at another deployed role registry.
func (s *BlockchainService) UpdateRegistryAddress(caller, registry models.Address) error {
	return s.Execute(func() error {
		return s.ledger.UpdateRegistryAddress(caller, registry)
	})
}

// LedgerStatus summarizes the ledger for the admin surface.
type LedgerStatus struct {
	Ledger            models.Address `json:"ledger"`
	Operator          models.Address `json:"operator"`
	Registry          models.Address `json:"registry"`
	Scheduler         models.Address `json:"scheduler"`
	TotalScholarships int            `json:"total_scholarships"`
	Events            uint64         `json:"events"`
}

func (s *BlockchainService) Status() LedgerStatus {
	var status LedgerStatus
	s.View(func() {
		status = LedgerStatus{
			Ledger:            s.ledger.Address(),
			Operator:          s.ledger.Operator(),
			Registry:          s.ledger.RegistryAddress(),
			Scheduler:         s.scheduler.Address(),
			TotalScholarships: s.ledger.TotalScholarships(),
			Events:            s.env.Events.Len(),
		}
	})
	return status
}

// RecentEvents returns the in-memory events with Seq >= since.
func (s *BlockchainService) RecentEvents(since uint64) []models.Event {
	return s.env.Events.Since(since)
}

func logEvent(e models.Event) {
	logrus.WithFields(logging.EventFields(e.Name, e.Emitter.Hex(), e.Seq, e.Fields)).Info("Chain event")
}
