// internal/chain/events.go
package chain

import (
	"sync"

	"github.com/javajoker/scholarship-escrow/internal/models"
)

// Subscriber receives every event after it is appended.
type Subscriber func(models.Event)

// EventLog is the append-only record of everything instances emitted.
type EventLog struct {
	mu          sync.RWMutex
	clock       Clock
	events      []models.Event
	subscribers []Subscriber
}

func NewEventLog(clock Clock) *EventLog {
	return &EventLog{clock: clock}
}

func (l *EventLog) Subscribe(fn Subscriber) {
	l.mu.Lock()
	l.subscribers = append(l.subscribers, fn)
	l.mu.Unlock()
}

func (l *EventLog) Emit(emitter models.Address, name string, fields models.Fields) models.Event {
	l.mu.Lock()
	event := models.Event{
		Seq:     uint64(len(l.events)),
		Name:    name,
		Emitter: emitter,
		Fields:  fields,
		Time:    l.clock.Now(),
	}
	l.events = append(l.events, event)
	subscribers := append([]Subscriber(nil), l.subscribers...)
	l.mu.Unlock()

	for _, fn := range subscribers {
		fn(event)
	}
	return event
}

// Len is the sequence number the next event will receive.
func (l *EventLog) Len() uint64 {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return uint64(len(l.events))
}

// Since returns the events with Seq >= seq.
func (l *EventLog) Since(seq uint64) []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if seq >= uint64(len(l.events)) {
		return nil
	}
	out := make([]models.Event, len(l.events)-int(seq))
	copy(out, l.events[seq:])
	return out
}

// Filter returns events by name, optionally narrowed to one emitter.
func (l *EventLog) Filter(name string, emitter *models.Address) []models.Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []models.Event
	for _, e := range l.events {
		if e.Name != name {
			continue
		}
		if emitter != nil && e.Emitter != *emitter {
			continue
		}
		out = append(out, e)
	}
	return out
}
