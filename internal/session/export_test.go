package session

import "time"

// SetClock replaces the manager's time source in tests.
func (m *Manager) SetClock(now func() time.Time) {
	m.now = now
}
