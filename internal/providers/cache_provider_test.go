package providers

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"drinkaware/internal/structures"
)

func cacheConfig(enabled bool) *structures.Config {
	return &structures.Config{
		Cache:   structures.CacheConfig{Enabled: enabled, Size: 1},
		Polling: structures.PollingConfig{Interval: time.Minute},
	}
}

func TestCacheSetGetDel(t *testing.T) {
	c := NewCacheProvider(cacheConfig(true), &nullLogger{})

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("snapshot:acc-1", []byte(`{"a":1}`))
	v, ok := c.Get("snapshot:acc-1")
	require.True(t, ok)
	assert.Equal(t, []byte(`{"a":1}`), v)

	c.Del("snapshot:acc-1")
	_, ok = c.Get("snapshot:acc-1")
	assert.False(t, ok)
}

func TestDisabledCacheIsNoop(t *testing.T) {
	c := NewCacheProvider(cacheConfig(false), &nullLogger{})
	c.Set("k", []byte("v"))
	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestInstrumentedCacheCountsHitsAndMisses(t *testing.T) {
	metrics := &countingMetrics{}
	c := NewInstrumentedCacheProvider(cacheConfig(true), &nullLogger{}, metrics)

	c.Get("nothing")
	c.Set("k", []byte("v"))
	c.Get("k")

	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
}

// nullLogger is a do-nothing Logger for provider tests that cannot use
// testutil without an import cycle.
type nullLogger struct{}

func (n *nullLogger) Errorf(TypeEnum, string, ...interface{}) {}
func (n *nullLogger) Warnf(TypeEnum, string, ...interface{})  {}
func (n *nullLogger) Infof(TypeEnum, string, ...interface{})  {}
func (n *nullLogger) Debugf(TypeEnum, string, ...interface{}) {}
func (n *nullLogger) Fatalf(TypeEnum, string, ...interface{}) {}
func (n *nullLogger) Close()                                  {}

type countingMetrics struct {
	noopMetrics
	hits   int
	misses int
}

func (c *countingMetrics) IncCacheHits()   { c.hits++ }
func (c *countingMetrics) IncCacheMisses() { c.misses++ }
