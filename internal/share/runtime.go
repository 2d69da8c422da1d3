package share

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Logger is what the controllers log through. args are slog-style
// key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type nopLogger struct{}

// NewNopLogger returns a Logger that drops every record.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Info(string, ...any)  {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}

// Clock supplies journal timestamps.
type Clock interface {
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

func (RealClock) Now() time.Time { return time.Now() }

// IDGenerator names one CLI invocation. The ID tags every log line and
// journal row, and is sent as the request ID.
type IDGenerator interface {
	New() string
}

// OpIDGenerator builds IDs that sort by start time, such as
// 20260302T090000Z-1f0c9a2e. The suffix keeps invocations started in the
// same second apart.
type OpIDGenerator struct {
	Clock Clock
}

func (g OpIDGenerator) New() string {
	var clock Clock = RealClock{}
	if g.Clock != nil {
		clock = g.Clock
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return clock.Now().UTC().Format("20060102T150405Z") + "-" + suffix
}
