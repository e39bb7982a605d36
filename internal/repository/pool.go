package repository

import "sync"

// Pool runs blocking storage calls on a fixed set of worker goroutines,
// bounding how many database operations are in flight at once. The queue is
// bounded too: Submit blocks when it is full, which pushes backpressure up
// into the request path instead of growing memory without limit.
type Pool struct {
	tasks chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

const (
	defaultWorkers    = 8
	defaultQueueDepth = 64
)

func NewPool(workers, queueDepth int) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if queueDepth <= 0 {
		queueDepth = defaultQueueDepth
	}

	p := &Pool{tasks: make(chan func(), queueDepth)}
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for task := range p.tasks {
		task()
	}
}

// Submit enqueues a task, blocking while the queue is full. Submitting after
// Shutdown is a programming error and panics.
func (p *Pool) Submit(task func()) {
	p.tasks <- task
}

// Shutdown stops accepting tasks and waits for the workers to drain the
// queue. Safe to call more than once.
func (p *Pool) Shutdown() {
	p.once.Do(func() {
		close(p.tasks)
	})
	p.wg.Wait()
}
