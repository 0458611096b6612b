// Package testutil holds helpers shared by KeyIP-Renewals unit tests.
package testutil

import (
	"strings"
	"sync"

	"github.com/turtacn/KeyIP-Renewals/internal/infrastructure/monitoring/logging"
)

// MockLogger implements logging.Logger and records every entry so tests can
// assert on what a component logged.
type MockLogger struct {
	mu       *sync.Mutex
	name     string
	base     []logging.Field
	messages *[]LogMessage
}

// LogMessage is one captured entry.
type LogMessage struct {
	Level   string
	Logger  string
	Message string
	Fields  []logging.Field
}

// NewMockLogger creates an empty MockLogger.
func NewMockLogger() *MockLogger {
	msgs := make([]LogMessage, 0)
	return &MockLogger{mu: &sync.Mutex{}, messages: &msgs}
}

func (m *MockLogger) log(level, msg string, fields []logging.Field) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := make([]logging.Field, 0, len(m.base)+len(fields))
	all = append(all, m.base...)
	all = append(all, fields...)
	*m.messages = append(*m.messages, LogMessage{Level: level, Logger: m.name, Message: msg, Fields: all})
}

func (m *MockLogger) Debug(msg string, fields ...logging.Field) { m.log("debug", msg, fields) }
func (m *MockLogger) Info(msg string, fields ...logging.Field)  { m.log("info", msg, fields) }
func (m *MockLogger) Warn(msg string, fields ...logging.Field)  { m.log("warn", msg, fields) }
func (m *MockLogger) Error(msg string, fields ...logging.Field) { m.log("error", msg, fields) }
func (m *MockLogger) Fatal(msg string, fields ...logging.Field) { m.log("fatal", msg, fields) }

// With returns a child sharing the parent's buffer and lock.
func (m *MockLogger) With(fields ...logging.Field) logging.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	base := append(append([]logging.Field{}, m.base...), fields...)
	return &MockLogger{mu: m.mu, name: m.name, base: base, messages: m.messages}
}

// Named returns a child sharing the parent's message buffer.
func (m *MockLogger) Named(name string) logging.Logger {
	m.mu.Lock()
	defer m.mu.Unlock()
	full := name
	if m.name != "" {
		full = m.name + "." + name
	}
	return &MockLogger{mu: m.mu, name: full, base: append([]logging.Field{}, m.base...), messages: m.messages}
}

func (m *MockLogger) Sync() error { return nil }

// GetMessages returns a copy of all captured entries.
func (m *MockLogger) GetMessages() []LogMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]LogMessage, len(*m.messages))
	copy(out, *m.messages)
	return out
}

// HasMessage reports whether an entry at level contains substr.
func (m *MockLogger) HasMessage(level, substr string) bool {
	for _, msg := range m.GetMessages() {
		if msg.Level == level && strings.Contains(msg.Message, substr) {
			return true
		}
	}
	return false
}

// CountLevel returns how many entries were captured at level.
func (m *MockLogger) CountLevel(level string) int {
	n := 0
	for _, msg := range m.GetMessages() {
		if msg.Level == level {
			n++
		}
	}
	return n
}

// Reset drops all captured entries.
func (m *MockLogger) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	*m.messages = (*m.messages)[:0]
}

var _ logging.Logger = (*MockLogger)(nil)

//Personal.AI order the ending
