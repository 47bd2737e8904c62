package services

import (
	"sort"
	"sync"
)

// ownerCache keeps one sorted in-memory collection per owner.
// It is a cache only: a missing owner means "reload from the store".
// Every mutation bumps the owner's version, loaded or not, so a snapshot
// read from the store before a write is never installed after it.
type ownerCache[T any] struct {
	mu       sync.RWMutex
	entries  map[string][]T
	versions map[string]uint64
	idOf     func(*T) string
	less     func(a, b *T) bool
}

func newOwnerCache[T any](idOf func(*T) string, less func(a, b *T) bool) *ownerCache[T] {
	return &ownerCache[T]{
		entries:  make(map[string][]T),
		versions: make(map[string]uint64),
		idOf:     idOf,
		less:     less,
	}
}

// get returns a copy of the owner's collection.
func (c *ownerCache[T]) get(owner string) ([]T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	items, ok := c.entries[owner]
	if !ok {
		return nil, false
	}
	out := make([]T, len(items))
	copy(out, items)
	return out, true
}

// version returns the owner's mutation counter. Read it before fetching a snapshot.
func (c *ownerCache[T]) version(owner string) uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.versions[owner]
}

// set installs a snapshot fetched at version. It reports false and keeps
// nothing when the owner was mutated since.
func (c *ownerCache[T]) set(owner string, items []T, version uint64) bool {
	sorted := c.ordered(items)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.versions[owner] != version {
		return false
	}
	c.entries[owner] = sorted
	return true
}

// upsert replaces or inserts item and re-sorts. Unloaded owners are left alone.
func (c *ownerCache[T]) upsert(owner string, item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[owner]++

	items, ok := c.entries[owner]
	if !ok {
		return
	}
	id := c.idOf(&item)
	replaced := false
	for i := range items {
		if c.idOf(&items[i]) == id {
			items[i] = item
			replaced = true
			break
		}
	}
	if !replaced {
		items = append([]T{item}, items...)
	}
	c.sort(items)
	c.entries[owner] = items
}

func (c *ownerCache[T]) remove(owner, id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.versions[owner]++

	items, ok := c.entries[owner]
	if !ok {
		return
	}
	for i := range items {
		if c.idOf(&items[i]) == id {
			c.entries[owner] = append(items[:i], items[i+1:]...)
			return
		}
	}
}

func (c *ownerCache[T]) invalidate(owner string) {
	c.mu.Lock()
	delete(c.entries, owner)
	c.versions[owner]++
	c.mu.Unlock()
}

// ordered returns a sorted copy of items.
func (c *ownerCache[T]) ordered(items []T) []T {
	out := make([]T, len(items))
	copy(out, items)
	c.sort(out)
	return out
}

func (c *ownerCache[T]) sort(items []T) {
	sort.SliceStable(items, func(i, j int) bool {
		return c.less(&items[i], &items[j])
	})
}
