package loader

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stwalsh4118/housingdash/api/internal/config"
	"github.com/stwalsh4118/housingdash/api/internal/models"
)

type countingLoader struct {
	calls map[string]int
	fail  bool
	mu    sync.Mutex
}

func (l *countingLoader) load(path string, _ config.CountyConfig) ([]models.Transaction, LoadStats, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[path]++
	if l.fail {
		return nil, LoadStats{}, errors.New("disk on fire")
	}
	return []models.Transaction{{ID: path}}, LoadStats{Rows: 1, Loaded: 1}, nil
}

func TestCache_LoadsOncePerPath(t *testing.T) {
	l := &countingLoader{}
	cache := NewCacheWithLoader(l.load)

	first, stats, err := cache.Get("a.csv", henryCounty())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Loaded)

	second, _, err := cache.Get("a.csv", henryCounty())
	require.NoError(t, err)
	assert.Same(t, &first[0], &second[0], "cached slice is shared")

	_, _, err = cache.Get("b.csv", henryCounty())
	require.NoError(t, err)

	assert.Equal(t, 1, l.calls["a.csv"])
	assert.Equal(t, 1, l.calls["b.csv"])
	assert.Equal(t, 2, cache.Len())
}

func TestCache_Invalidate(t *testing.T) {
	l := &countingLoader{}
	cache := NewCacheWithLoader(l.load)

	_, _, _ = cache.Get("a.csv", henryCounty())
	cache.Invalidate("a.csv")
	assert.Equal(t, 0, cache.Len())

	_, _, _ = cache.Get("a.csv", henryCounty())
	assert.Equal(t, 2, l.calls["a.csv"])
}

func TestCache_DoesNotCacheFailures(t *testing.T) {
	l := &countingLoader{fail: true}
	cache := NewCacheWithLoader(l.load)

	_, _, err := cache.Get("a.csv", henryCounty())
	assert.Error(t, err)
	_, _, err = cache.Get("a.csv", henryCounty())
	assert.Error(t, err)

	assert.Equal(t, 2, l.calls["a.csv"])
	assert.Equal(t, 0, cache.Len())
}

func TestCache_ConcurrentFirstUse(t *testing.T) {
	l := &countingLoader{}
	cache := NewCacheWithLoader(l.load)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = cache.Get("a.csv", henryCounty())
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, l.calls["a.csv"])
}
