package fingerprint

import (
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/substantialcattle5/deduce/internal/scan"
)

const poolBufferSize = 64

type task struct {
	record scan.FileRecord
}

type result struct {
	record      scan.FileRecord
	fingerprint uint64
	bytes       int64
	cached      bool
	err         error
}

// hashPool runs the per-file work function on a bounded ants pool.
// Tasks go in through Add, results come out of Results; Close waits for
// the workers to drain before closing the results channel.
type hashPool struct {
	workers int
	work    func(task) result
	tasks   chan task
	results chan result
	wg      sync.WaitGroup
	pool    *ants.Pool
}

func newHashPool(workers int, work func(task) result) *hashPool {
	return &hashPool{
		workers: workers,
		work:    work,
		tasks:   make(chan task, poolBufferSize),
		results: make(chan result, poolBufferSize),
	}
}

func (p *hashPool) Start() error {
	pool, err := ants.NewPool(p.workers)
	if err != nil {
		return err
	}
	p.pool = pool

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		if err := p.pool.Submit(p.worker); err != nil {
			p.wg.Done()
			return err
		}
	}
	return nil
}

func (p *hashPool) worker() {
	defer p.wg.Done()
	for t := range p.tasks {
		p.results <- p.work(t)
	}
}

func (p *hashPool) Add(t task) {
	p.tasks <- t
}

func (p *hashPool) Results() <-chan result {
	return p.results
}

// Close stops accepting tasks, waits for in-flight work, and closes the
// results channel so the collector can finish its range loop.
func (p *hashPool) Close() {
	close(p.tasks)
	p.wg.Wait()
	if p.pool != nil {
		p.pool.Release()
	}
	close(p.results)
}
