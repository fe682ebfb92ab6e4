package workerpool

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPoolRunsAllJobs(t *testing.T) {
	p := New(3, 0)
	var done atomic.Int32
	for i := 0; i < 20; i++ {
		assert.True(t, p.Submit(func() { done.Add(1) }))
	}
	p.Wait()
	assert.Equal(t, int32(20), done.Load())
}

func TestPoolBoundsConcurrency(t *testing.T) {
	p := New(2, 0)
	var running, peak atomic.Int32
	for i := 0; i < 10; i++ {
		p.Submit(func() {
			n := running.Add(1)
			for {
				old := peak.Load()
				if n <= old || peak.CompareAndSwap(old, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
		})
	}
	p.Wait()
	assert.LessOrEqual(t, peak.Load(), int32(2))
	assert.GreaterOrEqual(t, peak.Load(), int32(1))
}

func TestPoolClose(t *testing.T) {
	p := New(0, 0)
	var done atomic.Bool
	p.Submit(func() {
		time.Sleep(10 * time.Millisecond)
		done.Store(true)
	})
	p.Close()
	assert.True(t, done.Load(), "Close waits for running jobs")
	assert.False(t, p.Submit(func() {}))
}

func TestPoolSpacesJobStarts(t *testing.T) {
	p := New(4, 20*time.Millisecond)
	start := time.Now()
	for i := 0; i < 3; i++ {
		p.Submit(func() {})
	}
	p.Wait()
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}
