package cart

import (
	"sync"
	"testing"
	"time"
)

func TestMutationQueueFIFOPerKey(t *testing.T) {
	q := newMutationQueue()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup

	const n = 100
	wg.Add(n)
	for i := 0; i < n; i++ {
		i := i
		q.enqueue("merch-a", func() {
			defer wg.Done()
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		})
	}
	wg.Wait()

	for i := 0; i < n; i++ {
		if order[i] != i {
			t.Fatalf("dispatch order violated at %d: %v", i, order[:i+1])
		}
	}
}

func TestMutationQueueKeysRunConcurrently(t *testing.T) {
	q := newMutationQueue()

	release := make(chan struct{})
	ran := make(chan struct{})

	// The first key blocks until the second key's job has run.
	q.enqueue("merch-a", func() {
		<-release
	})
	q.enqueue("merch-b", func() {
		close(ran)
	})

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatalf("job on a different key was blocked")
	}
	close(release)
}

func TestMutationQueueCleansUpIdleKeys(t *testing.T) {
	q := newMutationQueue()

	var wg sync.WaitGroup
	wg.Add(1)
	q.enqueue("merch-a", func() { wg.Done() })
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for {
		q.mu.Lock()
		n := len(q.tails)
		q.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("tails not cleaned up, %d left", n)
		}
		time.Sleep(time.Millisecond)
	}
}
