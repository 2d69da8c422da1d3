package share

import "sync"

// DeleteMode is the on/off state of the delete controls. Each view owns
// its own instance.
type DeleteMode struct {
	mu     sync.Mutex
	active bool
}

func (m *DeleteMode) IsActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.active
}

// Toggle flips the mode and returns the new state.
func (m *DeleteMode) Toggle() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.active = !m.active
	return m.active
}

// Label is the caption of the toggle control: the action it will perform next.
func (m *DeleteMode) Label(messages *Messages) string {
	if m.IsActive() {
		return messages.DisableDeleteMode
	}
	return messages.EnableDeleteMode
}
