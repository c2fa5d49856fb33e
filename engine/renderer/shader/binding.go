package shader

import "sync"

// BindingAllocator hands out globally-unique UBO/SSBO binding points and
// lets multiple programs that reference the same block name share one.
type BindingAllocator struct {
	mu      sync.Mutex
	byName  map[string]int
	free    []int
	nextNew int
}

// NewBindingAllocator returns an empty allocator.
func NewBindingAllocator() *BindingAllocator {
	return &BindingAllocator{byName: make(map[string]int)}
}

// Acquire returns the binding point for blockName, assigning a fresh one
// (reusing a freed slot if available) the first time it's seen.
func (a *BindingAllocator) Acquire(blockName string) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	if bp, ok := a.byName[blockName]; ok {
		return bp
	}

	var bp int
	if n := len(a.free); n > 0 {
		bp = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		bp = a.nextNew
		a.nextNew++
	}
	a.byName[blockName] = bp
	return bp
}

// Release returns blockName's binding point to the free list. Safe to call
// even if no program references the block anymore.
func (a *BindingAllocator) Release(blockName string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	bp, ok := a.byName[blockName]
	if !ok {
		return
	}
	delete(a.byName, blockName)
	a.free = append(a.free, bp)
}
