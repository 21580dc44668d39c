package revocation

import (
	"context"
	"sync"
	"time"
)

// Memory — набор отозванных токенов в памяти процесса под RWMutex.
// Очищается при рестарте процесса.
type Memory struct {
	mu     sync.RWMutex
	tokens map[string]struct{}
}

// NewMemory создаёт пустой набор.
func NewMemory() *Memory {
	return &Memory{tokens: make(map[string]struct{})}
}

func (m *Memory) Revoke(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tokens[token] = struct{}{}
	return nil
}

func (m *Memory) IsRevoked(_ context.Context, token string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.tokens[token]
	return ok, nil
}

// Sweep раскодирует каждую запись без проверки подписи и удаляет
// просроченные (exp <= cutoff) и нераскодируемые.
func (m *Memory) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for token := range m.tokens {
		exp, ok := ExpiresAt(token)
		if ok && exp.After(cutoff) {
			continue
		}

		delete(m.tokens, token)
		removed++
	}

	return removed, nil
}

// Len возвращает текущий размер набора.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.tokens)
}

func (m *Memory) Close() error { return nil }

var _ Store = (*Memory)(nil)
