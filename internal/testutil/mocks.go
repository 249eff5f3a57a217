package testutil

import (
	"sync"
	"time"

	"drinkaware/internal/providers"
)

// MockLogger records formatted messages per level for assertions.
type MockLogger struct {
	mu       sync.Mutex
	Errors   []string
	Warnings []string
	Infos    []string
	Debugs   []string
}

func (m *MockLogger) Errorf(_ providers.TypeEnum, format string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, format)
}

func (m *MockLogger) Warnf(_ providers.TypeEnum, format string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Warnings = append(m.Warnings, format)
}

func (m *MockLogger) Infof(_ providers.TypeEnum, format string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Infos = append(m.Infos, format)
}

func (m *MockLogger) Debugf(_ providers.TypeEnum, format string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Debugs = append(m.Debugs, format)
}

func (m *MockLogger) Fatalf(_ providers.TypeEnum, format string, _ ...interface{}) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors = append(m.Errors, format)
}

func (m *MockLogger) Close() {}

// MockMetrics counts the calls the code under test makes.
type MockMetrics struct {
	mu                sync.Mutex
	RequestsTotal     int
	UpstreamRequests  int
	RateLimitHits     int
	TokenRefreshes    map[string]int
	PollCycles        int
	CacheHits         int
	CacheMisses       int
	PersistenceWrites int
}

func NewMockMetrics() *MockMetrics {
	return &MockMetrics{TokenRefreshes: make(map[string]int)}
}

func (m *MockMetrics) IncRequestsTotal(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RequestsTotal++
}

func (m *MockMetrics) ObserveRequestDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncUpstreamRequests(_ string, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpstreamRequests++
}

func (m *MockMetrics) ObserveUpstreamDuration(_ string, _ time.Duration) {}

func (m *MockMetrics) IncRateLimitHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RateLimitHits++
}

func (m *MockMetrics) IncTokenRefreshes(result string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.TokenRefreshes[result]++
}

func (m *MockMetrics) ObservePollCycle(_ string, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PollCycles++
}

func (m *MockMetrics) IncCacheHits() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheHits++
}

func (m *MockMetrics) IncCacheMisses() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CacheMisses++
}

func (m *MockMetrics) ObservePersistenceDuration(_ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.PersistenceWrites++
}

// MockCache is a plain map-backed cache.
type MockCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMockCache() *MockCache {
	return &MockCache{data: make(map[string][]byte)}
}

func (m *MockCache) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *MockCache) Set(key string, value []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

func (m *MockCache) Del(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

func (m *MockCache) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.data)
}
