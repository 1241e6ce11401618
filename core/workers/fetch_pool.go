// ABOUTME: Fetch pool bounds how many dispatcher calls a batch operation runs at once
// ABOUTME: Backed by an ants goroutine pool shared by every batch of a client

package workers

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/richochetclementine1315/Quill/core/interfaces"
)

// PoolConfig holds configuration for the fetch pool
type PoolConfig struct {
	MaxWorkers int

	// ReleaseTimeout bounds how long Close waits for running tasks
	ReleaseTimeout time.Duration
}

// DefaultPoolConfig returns the default pool configuration
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxWorkers:     4,
		ReleaseTimeout: 5 * time.Second,
	}
}

// FetchPool runs indexed tasks with bounded concurrency
type FetchPool struct {
	pool    *ants.Pool
	cfg     PoolConfig
	logger  interfaces.Logger
	mu      sync.RWMutex
	running bool
}

// NewFetchPool creates a running pool
func NewFetchPool(cfg PoolConfig, logger interfaces.Logger) (*FetchPool, error) {
	defaults := DefaultPoolConfig()
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = defaults.MaxWorkers
	}
	if cfg.ReleaseTimeout <= 0 {
		cfg.ReleaseTimeout = defaults.ReleaseTimeout
	}

	fp := &FetchPool{cfg: cfg, logger: logger}
	pool, err := ants.NewPool(cfg.MaxWorkers, ants.WithPanicHandler(fp.recovered))
	if err != nil {
		return nil, fmt.Errorf("create fetch pool: %w", err)
	}
	fp.pool = pool
	fp.running = true
	return fp, nil
}

// Size returns the configured concurrency
func (p *FetchPool) Size() int {
	return p.cfg.MaxWorkers
}

// Run calls task for every index in [0, n) and waits for all of them.
// The returned slice holds the error of each index. Indexes not started
// because ctx ended carry ctx.Err().
func (p *FetchPool) Run(ctx context.Context, n int, task func(ctx context.Context, i int) error) ([]error, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if !p.running {
		return nil, ErrWorkerNotRunning
	}

	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			errs[i] = err
			continue
		}

		wg.Add(1)
		i := i
		err := p.pool.Submit(func() {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[i] = &WorkerError{Message: fmt.Sprintf("task %d panicked: %v", i, r)}
				}
			}()
			errs[i] = task(ctx, i)
		})
		if err != nil {
			wg.Done()
			errs[i] = fmt.Errorf("submit task %d: %w", i, err)
		}
	}
	wg.Wait()
	return errs, nil
}

// Close releases the pool, waiting up to ReleaseTimeout for running tasks
func (p *FetchPool) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.running {
		return nil
	}
	p.running = false
	return p.pool.ReleaseTimeout(p.cfg.ReleaseTimeout)
}

func (p *FetchPool) recovered(r interface{}) {
	if p.logger != nil {
		p.logger.Error("Fetch pool worker panicked", map[string]interface{}{
			"panic": fmt.Sprint(r),
		})
	}
}

// Error definitions
var (
	ErrWorkerNotRunning = &WorkerError{Message: "fetch pool is not running"}
)

// WorkerError represents a worker-specific error
type WorkerError struct {
	Message string
}

func (e *WorkerError) Error() string {
	return e.Message
}
