package cache

import (
	"log/slog"
	"sync"
)

// RebuildPool is the bounded worker pool that runs cache rebuilds off the
// read path. It is owned by the cache client and must be drained with
// Shutdown before the process exits.
type RebuildPool struct {
	tasks chan func()
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

func NewRebuildPool(workers, queueSize int) *RebuildPool {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}

	p := &RebuildPool{tasks: make(chan func(), queueSize)}
	for range workers {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for task := range p.tasks {
				p.run(task)
			}
		}()
	}
	return p
}

// Submit reports false when the queue is full or the pool is shut down;
// the caller then skips the rebuild and releases its rebuild lock.
func (p *RebuildPool) Submit(task func()) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return false
	}

	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Shutdown stops accepting work and waits for in-flight rebuilds to finish.
func (p *RebuildPool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *RebuildPool) run(task func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("cache rebuild panicked", "panic", r)
		}
	}()
	task()
}
