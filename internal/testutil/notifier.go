package testutil

import (
	"sync"

	"sharectl/internal/share"
)

// RecordingNotifier collects every notification.
type RecordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *RecordingNotifier) Notify(message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func (n *RecordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// Last returns the most recent notification, or "".
func (n *RecordingNotifier) Last() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.messages) == 0 {
		return ""
	}
	return n.messages[len(n.messages)-1]
}

// StubConfirmer answers every prompt with Answer and records the prompts.
type StubConfirmer struct {
	Answer bool

	mu      sync.Mutex
	prompts []string
}

func (c *StubConfirmer) Confirm(prompt string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.prompts = append(c.prompts, prompt)
	return c.Answer
}

func (c *StubConfirmer) Prompts() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.prompts...)
}

var (
	_ share.Notifier  = (*RecordingNotifier)(nil)
	_ share.Confirmer = (*StubConfirmer)(nil)
)
