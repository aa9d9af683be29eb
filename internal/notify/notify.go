// Package notify collects the toast-style notifications a mutation produces,
// so every UI-facing response carries exactly one message per outcome.
package notify

import (
	"sync"

	"github.com/google/uuid"
)

type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

type Notice struct {
	ID      string `json:"id"`
	Level   Level  `json:"level"`
	Message string `json:"message"`
}

// Buffer accumulates notices for one request.
type Buffer struct {
	mu      sync.Mutex
	notices []Notice
}

func NewBuffer() *Buffer { return &Buffer{} }

func (b *Buffer) Success(message string) { b.add(LevelSuccess, message) }
func (b *Buffer) Error(message string)   { b.add(LevelError, message) }

func (b *Buffer) add(level Level, message string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.notices = append(b.notices, Notice{
		ID:      uuid.NewString(),
		Level:   level,
		Message: message,
	})
}

// Drain returns the collected notices and resets the buffer.
func (b *Buffer) Drain() []Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.notices
	b.notices = nil
	return out
}
