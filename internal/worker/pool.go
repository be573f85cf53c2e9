// Package worker provides the bounded task pool used by the bulk
// export path to fetch many scopes concurrently.
package worker

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// taskTimeout bounds one task; a stuck fetch must not hold a worker
// slot for the whole export.
const taskTimeout = 60 * time.Second

// Task represents a unit of work to be executed
type Task func(ctx context.Context) error

// PoolMetrics provides metrics about the worker pool's performance
type PoolMetrics struct {
	TotalTasks         int64
	CompletedTasks     int64
	FailedTasks        int64
	CurrentWorkers     int64
	PeakWorkers        int64
	AverageExecutionMs int64
	TotalExecutionMs   int64
	mu                 sync.RWMutex
}

// Pool manages a pool of workers for executing tasks concurrently.
// Task errors are counted, not collected: a failing task is expected
// to record its own outcome (the export path absorbs per-cell fetch
// failures), so one failure never aborts the sibling tasks.
type Pool struct {
	maxWorkers    int
	tasks         chan Task
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
	metrics       *PoolMetrics
	activeWorkers int64
	stopping      int32
}

// NewPool creates a new worker pool with the specified number of workers
func NewPool(maxWorkers int) *Pool {
	if maxWorkers < 1 {
		maxWorkers = 1
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Pool{
		maxWorkers: maxWorkers,
		tasks:      make(chan Task, maxWorkers*2), // Buffer the channel to prevent blocking
		ctx:        ctx,
		cancel:     cancel,
		metrics:    &PoolMetrics{},
	}
}

// Start starts the worker pool
func (p *Pool) Start() {
	for i := 0; i < p.maxWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// Stop stops the worker pool and waits for all workers to exit
func (p *Pool) Stop() {
	if !atomic.CompareAndSwapInt32(&p.stopping, 0, 1) {
		return // Already stopping
	}

	p.cancel()
	p.wg.Wait()
	close(p.tasks)
}

// GetMetrics returns the current metrics for the pool
func (p *Pool) GetMetrics() PoolMetrics {
	p.metrics.mu.RLock()
	defer p.metrics.mu.RUnlock()

	completed := atomic.LoadInt64(&p.metrics.CompletedTasks)
	avg := int64(0)
	if completed > 0 {
		avg = p.metrics.TotalExecutionMs / completed
	}

	return PoolMetrics{
		TotalTasks:         p.metrics.TotalTasks,
		CompletedTasks:     completed,
		FailedTasks:        atomic.LoadInt64(&p.metrics.FailedTasks),
		CurrentWorkers:     atomic.LoadInt64(&p.activeWorkers),
		PeakWorkers:        atomic.LoadInt64(&p.metrics.PeakWorkers),
		AverageExecutionMs: avg,
		TotalExecutionMs:   p.metrics.TotalExecutionMs,
	}
}

// Submit submits a task to the pool
func (p *Pool) Submit(task Task) {
	if atomic.LoadInt32(&p.stopping) == 1 {
		return
	}

	select {
	case p.tasks <- task:
	case <-p.ctx.Done():
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()

	atomic.AddInt64(&p.activeWorkers, 1)
	defer atomic.AddInt64(&p.activeWorkers, -1)

	currentWorkers := atomic.LoadInt64(&p.activeWorkers)
	for {
		peak := atomic.LoadInt64(&p.metrics.PeakWorkers)
		if currentWorkers <= peak {
			break
		}
		if atomic.CompareAndSwapInt64(&p.metrics.PeakWorkers, peak, currentWorkers) {
			break
		}
	}

	for {
		select {
		case task, ok := <-p.tasks:
			if !ok {
				return
			}
			p.run(task)
		case <-p.ctx.Done():
			// Drain tasks already queued before exiting
			for {
				select {
				case task, ok := <-p.tasks:
					if !ok {
						return
					}
					p.run(task)
				default:
					return
				}
			}
		}
	}
}

func (p *Pool) run(task Task) {
	start := time.Now()

	taskCtx, cancel := context.WithTimeout(context.Background(), taskTimeout)
	err := task(taskCtx)
	cancel()

	executionMs := time.Since(start).Milliseconds()

	p.metrics.mu.Lock()
	p.metrics.TotalExecutionMs += executionMs
	p.metrics.mu.Unlock()

	if err != nil {
		atomic.AddInt64(&p.metrics.FailedTasks, 1)
	} else {
		atomic.AddInt64(&p.metrics.CompletedTasks, 1)
	}
}

// ExecuteTasks executes a slice of tasks concurrently using the worker
// pool and blocks until every task has finished.
func (p *Pool) ExecuteTasks(tasks []Task) {
	var wg sync.WaitGroup
	wg.Add(len(tasks))

	p.metrics.mu.Lock()
	p.metrics.TotalTasks += int64(len(tasks))
	p.metrics.mu.Unlock()

	for _, t := range tasks {
		task := t // Create new variable for closure
		wrappedTask := func(ctx context.Context) error {
			defer wg.Done()
			return task(ctx)
		}

		select {
		case <-p.ctx.Done():
			wg.Done()
		default:
			p.Submit(wrappedTask)
		}
	}

	wg.Wait()
}
