// Package states implements game state management.
package states

import (
	"go.uber.org/zap"
)

// State represents a game state (loading, playing).
type State interface {
	Name() string

	// Enter is called when entering this state.
	Enter() error

	// Exit is called when leaving this state.
	Exit() error

	// Update is called every frame.
	Update(dt float64) error

	// Render is called every frame to draw the state.
	Render() error
}

// Manager manages game state transitions.
type Manager struct {
	current State
	next    State
	log     *zap.Logger
}

// NewManager creates a new state manager.
func NewManager(log *zap.Logger) *Manager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Manager{log: log}
}

// Current returns the current state.
func (m *Manager) Current() State {
	return m.current
}

// Change schedules a state change for the next Update.
func (m *Manager) Change(next State) {
	m.next = next
}

// Update processes state changes and updates current state.
func (m *Manager) Update(dt float64) error {
	if m.next != nil {
		if m.current != nil {
			if err := m.current.Exit(); err != nil {
				return err
			}
		}
		from := "none"
		if m.current != nil {
			from = m.current.Name()
		}
		m.current = m.next
		m.next = nil
		m.log.Info("state change", zap.String("from", from), zap.String("to", m.current.Name()))
		if err := m.current.Enter(); err != nil {
			return err
		}
	}

	if m.current != nil {
		return m.current.Update(dt)
	}
	return nil
}

// Render renders the current state.
func (m *Manager) Render() error {
	if m.current != nil {
		return m.current.Render()
	}
	return nil
}
