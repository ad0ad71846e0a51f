package filter

import (
	"errors"
	"strings"
	"sync"
)

// ErrEmptyAddress is returned when adding an empty address.
var ErrEmptyAddress = errors.New("empty address")

// MemoryFilter implements Filter using an in-memory map keyed by the
// lowercased address.
type MemoryFilter struct {
	owners map[string]string
	mu     sync.RWMutex
}

// NewMemoryFilter creates a new in-memory filter.
func NewMemoryFilter() *MemoryFilter {
	return &MemoryFilter{
		owners: make(map[string]string),
	}
}

func normalize(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}

// Contains checks if an address is tracked.
func (f *MemoryFilter) Contains(address string) bool {
	_, ok := f.Owner(address)
	return ok
}

// Owner returns the account id an address was added with.
func (f *MemoryFilter) Owner(address string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	id, ok := f.owners[normalize(address)]
	return id, ok
}

// Add tracks an address. Re-adding an address replaces its owner.
func (f *MemoryFilter) Add(address, id string) error {
	key := normalize(address)
	if key == "" {
		return ErrEmptyAddress
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners[key] = id
	return nil
}

// Remove stops tracking an address. Removing an unknown address is a no-op.
func (f *MemoryFilter) Remove(address string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.owners, normalize(address))
	return nil
}

// Size returns the number of tracked addresses.
func (f *MemoryFilter) Size() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.owners)
}
