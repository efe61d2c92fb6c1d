package dispatch

import "sync"

// conversationLocks serializes message handling per conversation id so
// concurrent messages from the same chat never interleave state updates.
// Distinct conversations proceed in parallel.
type conversationLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newConversationLocks() *conversationLocks {
	return &conversationLocks{locks: make(map[string]*sync.Mutex)}
}

// acquire locks the mutex for id and returns its release func.
func (c *conversationLocks) acquire(id string) func() {
	c.mu.Lock()
	lock, ok := c.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		c.locks[id] = lock
	}
	c.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
