// internal/chain/env.go
package chain

// Env bundles the shared environment every instance is deployed into.
type Env struct {
	Bank      *Bank
	Clock     Clock
	Events    *EventLog
	Directory *Directory
}

func NewEnv(clock Clock) *Env {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Env{
		Bank:      NewBank(),
		Clock:     clock,
		Events:    NewEventLog(clock),
		Directory: NewDirectory(),
	}
}
