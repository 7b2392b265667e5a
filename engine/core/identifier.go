package core

import (
	"fmt"
	"sync"
)

// IdentifierPool hands out small integer ids, reusing released slots first.
type IdentifierPool struct {
	mu     sync.Mutex
	owners []interface{}
}

func NewIdentifierPool(capacity int) *IdentifierPool {
	return &IdentifierPool{
		owners: make([]interface{}, 0, capacity),
	}
}

func (ip *IdentifierPool) Acquire(owner interface{}) uint32 {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	for i, o := range ip.owners {
		// Existing free spot. Take it.
		if o == nil {
			ip.owners[i] = owner
			return uint32(i)
		}
	}
	// No free slots, push a new one.
	ip.owners = append(ip.owners, owner)
	return uint32(len(ip.owners) - 1)
}

func (ip *IdentifierPool) Release(id uint32) error {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	if int(id) >= len(ip.owners) || ip.owners[id] == nil {
		return fmt.Errorf("release id '%d' (max=%d): %w", id, len(ip.owners), ErrInvalidIdentifier)
	}
	// Just zero out the entry, making it available for use.
	ip.owners[id] = nil
	return nil
}

// Owner returns the owner registered for id, or nil.
func (ip *IdentifierPool) Owner(id uint32) interface{} {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	if int(id) >= len(ip.owners) {
		return nil
	}
	return ip.owners[id]
}

// InUse counts ids currently held.
func (ip *IdentifierPool) InUse() int {
	ip.mu.Lock()
	defer ip.mu.Unlock()

	count := 0
	for _, o := range ip.owners {
		if o != nil {
			count++
		}
	}
	return count
}
