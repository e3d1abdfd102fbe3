package dealer

import (
	"sync"

	"github.com/gammazero/deque"
)

// claimQueue is the FIFO of player ids waiting for a verdict. Producers
// never block; the dealer polls it.
type claimQueue struct {
	mu sync.Mutex
	q  deque.Deque[int]
}

func (c *claimQueue) push(player int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.q.PushBack(player)
}

func (c *claimQueue) pop() (int, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.q.Len() == 0 {
		return 0, false
	}
	return c.q.PopFront(), true
}

func (c *claimQueue) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.q.Len()
}
