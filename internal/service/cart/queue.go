package cart

import "sync"

// mutationQueue serializes work per key in dispatch order. Jobs for the same
// key run FIFO; jobs for different keys run concurrently.
type mutationQueue struct {
	mu    sync.Mutex
	tails map[string]chan struct{}
}

func newMutationQueue() *mutationQueue {
	return &mutationQueue{tails: make(map[string]chan struct{})}
}

func (q *mutationQueue) enqueue(key string, fn func()) {
	q.mu.Lock()
	prev := q.tails[key]
	done := make(chan struct{})
	q.tails[key] = done
	q.mu.Unlock()

	go func() {
		if prev != nil {
			<-prev
		}
		fn()
		close(done)

		q.mu.Lock()
		if q.tails[key] == done {
			delete(q.tails, key)
		}
		q.mu.Unlock()
	}()
}
