package event

import (
	"sync"

	"github.com/ZilDuck/zilliqa-nft-marketplace/internal/entity"
	"go.uber.org/zap"
)

// AllEvents subscribes a listener to every event type.
const AllEvents entity.EventType = "*"

const listenerBuffer = 64

type Listener struct {
	eventType entity.EventType
	channel   chan entity.Event
	done      chan struct{}
}

// Manager fans committed marketplace events out to listeners. Each listener receives
// events in commit order on its own goroutine.
type Manager struct {
	mu        sync.RWMutex
	listeners []*Listener
	closed    bool
}

func NewManager() *Manager {
	return &Manager{listeners: make([]*Listener, 0)}
}

func (m *Manager) AddEventListener(eventType entity.EventType, callback func(e entity.Event)) {
	zap.L().With(zap.String("type", string(eventType))).Debug("EventManager: AddListener")

	listener := &Listener{
		eventType: eventType,
		channel:   make(chan entity.Event, listenerBuffer),
		done:      make(chan struct{}),
	}

	m.mu.Lock()
	m.listeners = append(m.listeners, listener)
	m.mu.Unlock()

	go func() {
		defer close(listener.done)
		for e := range listener.channel {
			callback(e)
		}
	}()
}

func (m *Manager) Dispatch(e entity.Event) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return
	}
	if len(m.listeners) == 0 {
		zap.L().Debug("EventManager: No event listeners available")
	}
	for _, listener := range m.listeners {
		if listener.eventType == AllEvents || listener.eventType == e.Type {
			zap.L().With(zap.String("type", string(e.Type)), zap.String("id", e.ID)).Debug("EventManager: Emitting event")
			listener.channel <- e
		}
	}
}

// Close stops accepting events and waits for the listeners to drain.
func (m *Manager) Close() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.closed = true
	listeners := m.listeners
	m.mu.Unlock()

	for _, listener := range listeners {
		close(listener.channel)
		<-listener.done
	}
}
