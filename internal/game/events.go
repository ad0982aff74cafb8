package game

import (
	"sync"

	"guessgame-service/internal/domain"
)

// eventQueue is an ordered, unbounded queue drained by a pump goroutine into a
// single receive channel. push never blocks, so it is safe under the session lock.
type eventQueue struct {
	mu      sync.Mutex
	pending []domain.Event
	closed  bool

	signal chan struct{}
	out    chan domain.Event
	done   chan struct{}
	once   sync.Once
}

func newEventQueue() *eventQueue {
	q := &eventQueue{
		signal: make(chan struct{}, 1),
		out:    make(chan domain.Event),
		done:   make(chan struct{}),
	}
	go q.pump()
	return q
}

func (q *eventQueue) push(e domain.Event) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.pending = append(q.pending, e)
	q.mu.Unlock()

	select {
	case q.signal <- struct{}{}:
	default:
	}
}

func (q *eventQueue) pump() {
	defer close(q.out)
	for {
		select {
		case <-q.signal:
		case <-q.done:
			return
		}
		for {
			q.mu.Lock()
			if len(q.pending) == 0 {
				q.mu.Unlock()
				break
			}
			e := q.pending[0]
			q.pending[0] = nil
			q.pending = q.pending[1:]
			q.mu.Unlock()

			select {
			case q.out <- e:
			case <-q.done:
				return
			}
		}
	}
}

func (q *eventQueue) close() {
	q.once.Do(func() {
		q.mu.Lock()
		q.closed = true
		q.pending = nil
		q.mu.Unlock()
		close(q.done)
	})
}
