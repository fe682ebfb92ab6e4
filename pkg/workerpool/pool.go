package workerpool

import (
	"sync"
	"time"
)

// Pool runs submitted jobs on at most maxWorkers goroutines, optionally spacing job starts.
// Submit never blocks the caller: jobs wait for a free slot in their own goroutine.
type Pool struct {
	semaphore   chan struct{}
	minInterval time.Duration

	wg     sync.WaitGroup
	mu     sync.Mutex
	closed bool

	rateMu    sync.Mutex
	lastStart time.Time
}

// New creates a pool. maxWorkers < 1 is treated as 1.
func New(maxWorkers int, minInterval time.Duration) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	return &Pool{
		semaphore:   make(chan struct{}, maxWorkers),
		minInterval: minInterval,
	}
}

// Submit schedules job. It returns false once the pool is closed.
func (p *Pool) Submit(job func()) bool {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return false
	}
	p.wg.Add(1)
	p.mu.Unlock()

	go func() {
		defer p.wg.Done()
		p.semaphore <- struct{}{}
		defer func() { <-p.semaphore }()

		p.enforceRateLimit()
		job()
	}()
	return true
}

// Wait blocks until every submitted job has finished.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// Close stops accepting jobs and waits for the running ones.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

func (p *Pool) enforceRateLimit() {
	if p.minInterval <= 0 {
		return
	}
	p.rateMu.Lock()
	defer p.rateMu.Unlock()

	if elapsed := time.Since(p.lastStart); elapsed < p.minInterval {
		time.Sleep(p.minInterval - elapsed)
	}
	p.lastStart = time.Now()
}
