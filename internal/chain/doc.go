// internal/chain/doc.go

// Package chain holds the execution environment shared by the ledger, the scholarships and the
// upkeep scheduler: value balances, a clock, an event log and an address directory of deployed
// instances. Instances are addressed, never referenced directly across ownership boundaries.
package chain
