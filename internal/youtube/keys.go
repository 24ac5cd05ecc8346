package youtube

import (
	"errors"
	"strings"
	"sync"
	"time"
)

var (
	// ErrQuotaExhausted is returned once every configured key has hit its quota.
	ErrQuotaExhausted = errors.New("youtube: quota exhausted on all api keys")
	// ErrNoKeys is returned when no api key is configured.
	ErrNoKeys = errors.New("youtube: no api keys configured")
)

// quotaReset is how long an exhausted key is left alone. The Data API
// quota is daily.
const quotaReset = 24 * time.Hour

// KeyManager rotates through API keys as their quota runs out.
type KeyManager struct {
	mu          sync.Mutex
	keys        []string
	current     int
	exhaustedAt map[string]time.Time
	now         func() time.Time
}

// NewKeyManager keeps the non-empty, distinct keys in their given order.
func NewKeyManager(keys []string) *KeyManager {
	seen := make(map[string]bool)
	var clean []string
	for _, k := range keys {
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		clean = append(clean, k)
	}
	return &KeyManager{
		keys:        clean,
		exhaustedAt: make(map[string]time.Time),
		now:         time.Now,
	}
}

// Len is the number of usable keys configured.
func (m *KeyManager) Len() int {
	return len(m.keys)
}

// Current returns the key to use next, skipping exhausted ones.
func (m *KeyManager) Current() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.keys) == 0 {
		return "", ErrNoKeys
	}

	now := m.now()
	for range m.keys {
		key := m.keys[m.current]
		at, spent := m.exhaustedAt[key]
		if !spent || now.Sub(at) >= quotaReset {
			delete(m.exhaustedAt, key)
			return key, nil
		}
		m.current = (m.current + 1) % len(m.keys)
	}
	return "", ErrQuotaExhausted
}

// MarkExhausted records that a key ran out of quota and moves on to the next one.
func (m *KeyManager) MarkExhausted(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.exhaustedAt[key] = m.now()
	if len(m.keys) > 0 && m.keys[m.current] == key {
		m.current = (m.current + 1) % len(m.keys)
	}
}

// Available counts keys that still have quota.
func (m *KeyManager) Available() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	n := 0
	for _, key := range m.keys {
		if at, spent := m.exhaustedAt[key]; !spent || now.Sub(at) >= quotaReset {
			n++
		}
	}
	return n
}

// redact shortens a key for logs.
func redact(key string) string {
	if len(key) <= 6 {
		return "***"
	}
	return key[:6] + "..."
}
