package stash

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/msomdec/healthyu/internal/domain"
	"github.com/msomdec/healthyu/internal/metrics"
)

type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is an in-process ReportStash with per-entry expiry. Expired entries
// are dropped on access and by a periodic sweep.
type Memory struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemory creates an in-memory stash whose entries live for ttl.
func NewMemory(ttl time.Duration) *Memory {
	return &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *Memory) Put(_ context.Context, userID int64, report domain.SessionReport) error {
	data, err := encode(report)
	if err != nil {
		return err
	}
	m.putRaw(Key(userID), data)
	metrics.RecordStash("memory", "put", "ok")
	return nil
}

func (m *Memory) putRaw(key string, data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{data: data, expiresAt: m.now().Add(m.ttl)}
}

func (m *Memory) Get(_ context.Context, userID int64) (*domain.SessionReport, error) {
	key := Key(userID)

	m.mu.Lock()
	e, ok := m.entries[key]
	if ok && !m.now().Before(e.expiresAt) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		metrics.RecordStash("memory", "get", "miss")
		return nil, domain.ErrNotFound
	}
	r, err := decode(e.data)
	if err != nil {
		slog.Warn("discarding unreadable stashed report", "user_id", userID, "error", err)
		metrics.RecordStash("memory", "get", "corrupt")
		return nil, err
	}
	metrics.RecordStash("memory", "get", "hit")
	return r, nil
}

func (m *Memory) Delete(_ context.Context, userID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, Key(userID))
	metrics.RecordStash("memory", "delete", "ok")
	return nil
}

// Sweep removes expired entries and returns how many were removed.
func (m *Memory) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiresAt) {
			delete(m.entries, k)
			n++
		}
	}
	return n
}

// Run sweeps expired entries every interval until ctx is done.
func (m *Memory) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				slog.Debug("swept expired reports", "count", n)
			}
		}
	}
}
