package marketplace

import (
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/state"
)

// EventLog is the append-only record of committed operations.
type EventLog struct {
	journal *state.Journal
	events  []entity.Event
}

func NewEventLog(journal *state.Journal) *EventLog {
	return &EventLog{journal: journal, events: make([]entity.Event, 0)}
}

// Append assigns the next sequence number to e and stores it.
func (l *EventLog) Append(e entity.Event) entity.Event {
	size := len(l.events)
	l.journal.Append(func() { l.events = l.events[:size] })

	e.Sequence = uint64(size) + 1
	l.events = append(l.events, e)
	return e
}

// From returns up to size events whose sequence is at least from.
func (l *EventLog) From(from uint64, size int) []entity.Event {
	if from == 0 {
		from = 1
	}
	events := make([]entity.Event, 0)
	if from-1 >= uint64(len(l.events)) {
		return events
	}
	for i := int(from - 1); i < len(l.events) && (size <= 0 || len(events) < size); i++ {
		events = append(events, l.events[i])
	}
	return events
}

func (l *EventLog) Len() int {
	return len(l.events)
}
