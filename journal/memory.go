package journal

import "sync"

// Memory is the in-process Log used for ephemeral demo sessions.
type Memory struct {
	mu   sync.Mutex
	recs []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Append(rec Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = append(m.recs, rec)
	return nil
}

func (m *Memory) All() ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Record, len(m.recs))
	copy(out, m.recs)
	return out, nil
}

func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recs = nil
	return nil
}

func (m *Memory) Close() error { return nil }
