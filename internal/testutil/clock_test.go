package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_FirstReadingIsStart(t *testing.T) {
	clock := NewDeterministicClock(FixedTime, time.Second)
	assert.Equal(t, FixedTime, clock.Now())
	assert.Equal(t, int64(1), clock.Readings())
}

func TestDeterministicClock_AdvancesByStep(t *testing.T) {
	clock := NewDeterministicClock(FixedTime, time.Millisecond)

	clock.Now()
	assert.Equal(t, FixedTime.Add(time.Millisecond), clock.Now())
	assert.Equal(t, FixedTime.Add(2*time.Millisecond), clock.Now())
}

func TestDeterministicClock_Frozen(t *testing.T) {
	clock := FrozenClock()
	for i := 0; i < 5; i++ {
		assert.Equal(t, FixedTime, clock.Now())
	}
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock(FixedTime, time.Second)
	clock.Now()
	clock.Now()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Readings())
	assert.Equal(t, FixedTime, clock.Now())
}

func TestDeterministicClock_ThreadSafe(t *testing.T) {
	clock := NewDeterministicClock(FixedTime, time.Nanosecond)
	const numGoroutines = 50
	const callsPerGoroutine = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	results := make([][]time.Time, numGoroutines)
	for i := 0; i < numGoroutines; i++ {
		results[i] = make([]time.Time, callsPerGoroutine)
		go func(idx int) {
			defer wg.Done()
			for j := 0; j < callsPerGoroutine; j++ {
				results[idx][j] = clock.Now()
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[time.Time]bool)
	for _, row := range results {
		for _, ts := range row {
			require.False(t, seen[ts], "duplicate reading %s", ts)
			seen[ts] = true
		}
	}
	assert.Len(t, seen, numGoroutines*callsPerGoroutine)
}

func TestDeterministicClock_Deterministic(t *testing.T) {
	a := NewDeterministicClock(FixedTime, time.Second)
	b := NewDeterministicClock(FixedTime, time.Second)
	for i := 0; i < 20; i++ {
		assert.Equal(t, a.Now(), b.Now())
	}
}
