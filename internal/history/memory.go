package history

import (
	"context"
	"sync"
)

// Memory is an in-process ring buffer.
type Memory struct {
	mu    sync.Mutex
	buf   []Record
	next  int
	count int
}

// NewMemory returns a ring holding at most capacity records.
func NewMemory(capacity int) *Memory {
	if capacity <= 0 {
		capacity = 1
	}
	return &Memory{buf: make([]Record, capacity)}
}

func (m *Memory) Add(_ context.Context, r Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buf[m.next] = r
	m.next = (m.next + 1) % len(m.buf)
	if m.count < len(m.buf) {
		m.count++
	}
	return nil
}

func (m *Memory) Recent(_ context.Context, limit int) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := min(normalizeLimit(limit), m.count)
	out := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, m.buf[(m.next-i+len(m.buf))%len(m.buf)])
	}
	return out, nil
}

// Len reports how many records are held.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

func (m *Memory) Close() error { return nil }
