package testutil

import (
	"fmt"
	"sync"
	"time"
)

// journalEpoch is the instant every stub clock starts from unless told otherwise.
var journalEpoch = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

// StubClock is a share.Clock under test control. With a non-zero step,
// every reading moves the clock forward by step afterwards, so a started
// and a finished timestamp differ by exactly step.
type StubClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

// NewStubClock creates a StubClock that always reads t.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock reads 2026-03-02 09:00:00 UTC forever.
func FixedClock() *StubClock {
	return NewStubClock(journalEpoch)
}

// TickingClock starts at 2026-03-02 09:00:00 UTC and advances by step on every reading.
func TickingClock(step time.Duration) *StubClock {
	return &StubClock{now: journalEpoch, step: step}
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now
	c.now = c.now.Add(c.step)
	return now
}

// StubIDGenerator hands out "<prefix>-1", "<prefix>-2", ...
type StubIDGenerator struct {
	mu     sync.Mutex
	prefix string
	issued int
}

func NewStubIDGenerator(prefix string) *StubIDGenerator {
	return &StubIDGenerator{prefix: prefix}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.issued++
	return fmt.Sprintf("%s-%d", g.prefix, g.issued)
}
