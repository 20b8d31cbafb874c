/*
Copyright 2024 Tim St. Pierre
Operation queue keeping bus sequences from interleaving
*/
package hd44780

import "sync"

// Op is a queued controller operation. Build one with the Op* functions.
type Op struct {
	name string
	run  func(d *Dev) error
	// needsReady is false for the init handshake and Close.
	needsReady bool
	// closing ends the queue once admitted.
	closing bool
}

func (o Op) String() string {
	return o.name
}

type job struct {
	op     Op
	result chan error
}

// opQueue is an unbounded FIFO with a single consumer. Nothing limits its
// depth: callers that submit faster than the bus drains grow it without bound.
type opQueue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []*job
	closed  bool
	done    chan struct{}
}

func newOpQueue() *opQueue {
	q := &opQueue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	return q
}

// submit appends op. After a closing op has been admitted every further
// submission fails with ErrNotReady without reaching the worker.
func (q *opQueue) submit(op Op) <-chan error {
	res := make(chan error, 1)
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		res <- ErrNotReady
		return res
	}
	if op.closing {
		q.closed = true
	}
	q.pending = append(q.pending, &job{op: op, result: res})
	q.cond.Signal()
	return res
}

func (q *opQueue) next() (*job, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.pending) == 0 {
		if q.closed {
			return nil, false
		}
		q.cond.Wait()
	}
	j := q.pending[0]
	q.pending[0] = nil
	q.pending = q.pending[1:]
	return j, true
}

// run executes jobs one at a time until the queue is closed and drained.
// A failing job does not stop the loop.
func (q *opQueue) run(exec func(Op) error) {
	defer close(q.done)
	for {
		j, ok := q.next()
		if !ok {
			return
		}
		j.result <- exec(j.op)
	}
}
