// Package hotkey registers the global overlay toggle shortcut.
package hotkey

import (
	"sync"

	hook "github.com/robotn/gohook"
)

// toggleChord is the key combination that toggles overlay visibility.
var toggleChord = []string{"ctrl", "shift", "o"}

// Manager owns the global keyboard hook for the overlay toggle.
type Manager struct {
	onToggle func()
	mu       sync.Mutex
	running  bool
}

// NewManager creates a manager invoking onToggle when the chord fires.
func NewManager(onToggle func()) *Manager {
	return &Manager{onToggle: onToggle}
}

// Start installs the keyboard hook. The event loop runs until Stop.
func (m *Manager) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true

	hook.Register(hook.KeyDown, toggleChord, func(e hook.Event) {
		if m.onToggle != nil {
			m.onToggle()
		}
	})

	events := hook.Start()
	go func() {
		<-hook.Process(events)
	}()

	return nil
}

// Stop removes the keyboard hook.
func (m *Manager) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}
	m.running = false
	hook.End()
}
