// internal/upkeep/doc.go

// Package upkeep implements the check/perform cycle over every scholarship a ledger knows.
//
// CheckUpkeep is read-only and safe to simulate; PerformUpkeep consumes its output. The two are
// decoupled so an external trigger can call them on any cadence: stale or replayed batches are
// harmless because each scholarship skips work it has already done.
package upkeep
