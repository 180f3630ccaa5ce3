// Package parallel provides the worker pool and pixel-grid partitioning
// used by the tile renderer.
//
// A render is split into row bands that are evaluated independently; each
// band writes to a disjoint region of the output buffer, so no locking is
// needed on the results. Workers keep per-worker queues and steal from each
// other when idle, which balances load between cheap exterior bands and
// expensive interior ones.
package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// WorkerPool runs render tasks across a fixed set of goroutines.
//
// Each worker owns a buffered queue and falls back to stealing from the
// others when its own queue drains. The pool is created once per renderer
// and reused across renders; Close stops the workers after draining any
// queued work.
//
// Thread safety: WorkerPool is safe for concurrent use.
type WorkerPool struct {
	workers int

	// workQueues holds one queue per worker. ExecuteAll distributes
	// round-robin; idle workers steal from the other queues.
	workQueues []chan func()

	done chan struct{}
	wg   sync.WaitGroup

	running atomic.Bool
}

// NewWorkerPool creates a pool with the given number of workers.
// If workers is 0 or negative, GOMAXPROCS is used. Workers start
// immediately and wait for work.
func NewWorkerPool(workers int) *WorkerPool {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	queueSize := workers * 4
	if queueSize < 8 {
		queueSize = 8
	}

	p := &WorkerPool{
		workers:    workers,
		workQueues: make([]chan func(), workers),
		done:       make(chan struct{}),
	}
	for i := range workers {
		p.workQueues[i] = make(chan func(), queueSize)
	}

	p.running.Store(true)
	p.wg.Add(workers)
	for i := range workers {
		go p.worker(i)
	}
	return p
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	myQueue := p.workQueues[id]
	for {
		select {
		case <-p.done:
			p.drainQueue(myQueue)
			return
		case work := <-myQueue:
			if work != nil {
				work()
			}
		default:
			if stolen := p.steal(id); stolen != nil {
				stolen()
				continue
			}
			// Nothing to steal; block on own queue.
			select {
			case <-p.done:
				p.drainQueue(myQueue)
				return
			case work := <-myQueue:
				if work != nil {
					work()
				}
			}
		}
	}
}

func (p *WorkerPool) drainQueue(queue chan func()) {
	for {
		select {
		case work := <-queue:
			if work != nil {
				work()
			}
		default:
			return
		}
	}
}

// steal takes one task from another worker's queue, or returns nil.
func (p *WorkerPool) steal(myID int) func() {
	for i := range p.workers {
		if i == myID {
			continue
		}
		select {
		case work := <-p.workQueues[i]:
			return work
		default:
		}
	}
	return nil
}

// ExecuteAll distributes the tasks across the workers and blocks until
// every one has finished. This is the barrier the renderer relies on:
// when ExecuteAll returns, every band of the frame has been written.
// If the pool is closed, ExecuteAll is a no-op.
func (p *WorkerPool) ExecuteAll(work []func()) {
	if len(work) == 0 || !p.running.Load() {
		return
	}

	var barrier sync.WaitGroup
	barrier.Add(len(work))

	for i, fn := range work {
		workerID := i % p.workers
		task := fn
		wrapped := func() {
			defer barrier.Done()
			task()
		}
		select {
		case p.workQueues[workerID] <- wrapped:
		case <-p.done:
			barrier.Done()
		}
	}

	barrier.Wait()
}

// Close stops accepting work, waits for queued tasks to finish and joins
// the workers. Safe to call more than once.
func (p *WorkerPool) Close() {
	if !p.running.CompareAndSwap(true, false) {
		return
	}
	close(p.done)
	p.wg.Wait()
}

// Workers returns the number of workers in the pool.
func (p *WorkerPool) Workers() int { return p.workers }

// IsRunning reports whether the pool is accepting work.
func (p *WorkerPool) IsRunning() bool { return p.running.Load() }
