package connectivity

import (
	"net"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/Maureenhddi/sergic-app/internal/core/port"
)

// Listener receives the new state after every transition.
type Listener = func(offline bool)

// Monitor holds the process-wide offline flag. Reads are lock-free.
type Monitor struct {
	offline atomic.Bool
	logger  port.LoggerPort

	mu        sync.Mutex
	nextID    int
	listeners map[int]Listener
}

// NewMonitor seeds the state from the host: local development hosts always start online,
// any other host starts from initiallyOffline.
func NewMonitor(host string, initiallyOffline bool, logger port.LoggerPort) *Monitor {
	m := &Monitor{
		logger:    logger,
		listeners: make(map[int]Listener),
	}
	if !IsLocalHost(host) {
		m.offline.Store(initiallyOffline)
	}
	return m
}

// IsLocalHost reports whether host (optionally with a port) is localhost or a loopback address.
func IsLocalHost(host string) bool {
	h := strings.TrimSpace(host)
	if split, _, err := net.SplitHostPort(h); err == nil {
		h = split
	}
	h = strings.Trim(h, "[]")
	switch strings.ToLower(h) {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}

func (m *Monitor) IsOffline() bool {
	return m.offline.Load()
}

func (m *Monitor) SetOnline() { m.set(false) }

func (m *Monitor) SetOffline() { m.set(true) }

// Set applies a transition; repeating the current state notifies nobody.
func (m *Monitor) Set(offline bool) { m.set(offline) }

func (m *Monitor) set(offline bool) {
	if m.offline.Swap(offline) == offline {
		return
	}
	if m.logger != nil {
		m.logger.Info("Connectivity changed.", port.Fields{"component": "ConnectivityMonitor", "offline": offline})
	}

	m.mu.Lock()
	listeners := make([]Listener, 0, len(m.listeners))
	for _, l := range m.listeners {
		listeners = append(listeners, l)
	}
	m.mu.Unlock()

	for _, l := range listeners {
		m.notify(l, offline)
	}
}

func (m *Monitor) notify(l Listener, offline bool) {
	defer func() {
		if r := recover(); r != nil && m.logger != nil {
			m.logger.Warn("Connectivity listener panicked.", port.Fields{"panic": r})
		}
	}()
	l(offline)
}

// Subscribe registers fn and returns the function removing it.
func (m *Monitor) Subscribe(fn Listener) (unsubscribe func()) {
	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners[id] = fn
	m.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			delete(m.listeners, id)
			m.mu.Unlock()
		})
	}
}
