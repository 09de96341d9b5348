package utils

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLSetNoDuplicates(t *testing.T) {
	s := NewURLSet()

	assert.True(t, s.Add("https://www.propertyguru.com.sg/listing/1"), "first Add should return true")
	assert.False(t, s.Add("https://www.propertyguru.com.sg/listing/1"), "second Add of same URL should return false")
	assert.True(t, s.Add(""), "empty URL is never treated as a duplicate")
	assert.True(t, s.Add(""))
	assert.Equal(t, 1, s.Size())
}

func TestURLSetConcurrency(t *testing.T) {
	s := NewURLSet()
	var added int64

	pool := NewWorkerPool(10, 0)
	for i := 0; i < 100; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
			if s.Add("https://www.propertyguru.com.sg/listing/same") {
				atomic.AddInt64(&added, 1)
			}
		}))
	}
	pool.Wait()

	assert.EqualValues(t, 1, added)
}

func TestWorkerPoolRateLimit(t *testing.T) {
	rateLimitMs := 50
	pool := NewWorkerPool(1, rateLimitMs)

	var mu sync.Mutex
	var timestamps []time.Time

	for i := 0; i < 3; i++ {
		require.NoError(t, pool.Submit(context.Background(), func(context.Context) {
			mu.Lock()
			timestamps = append(timestamps, time.Now())
			mu.Unlock()
		}))
	}
	pool.Wait()

	require.Len(t, timestamps, 3)
	min := time.Duration(rateLimitMs) * time.Millisecond
	for i := 1; i < len(timestamps); i++ {
		gap := timestamps[i].Sub(timestamps[i-1])
		assert.GreaterOrEqual(t, gap, min, "gap between job %d and %d", i-1, i)
	}
}

func TestWorkerPoolSubmitAfterCancel(t *testing.T) {
	pool := NewWorkerPool(1, 0)
	release := make(chan struct{})

	require.NoError(t, pool.Submit(context.Background(), func(context.Context) { <-release }))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := pool.Submit(ctx, func(context.Context) { t.Error("job must not run") })
	assert.ErrorIs(t, err, context.Canceled)

	close(release)
	pool.Wait()
}
