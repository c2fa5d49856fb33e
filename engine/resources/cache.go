package resources

import (
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/kestrel3d/render-core/engine/core"
	"github.com/kestrel3d/render-core/engine/events"
	"github.com/kestrel3d/render-core/engine/systems"
)

// DeleteFlag controls Remove's behavior around core handles and whether the
// handle skeleton itself is deleted.
type DeleteFlag uint8

const (
	// DeleteHandle removes the handle skeleton from the cache entirely,
	// rather than leaving it behind so a later Get can trigger a reload.
	DeleteHandle DeleteFlag = 1 << iota
	// Force overrides the refusal to delete a core handle.
	Force
)

// Decoder produces a payload and any data PostConstruction needs, run on
// the loader thread (or inline for a serial load).
type Decoder func() (Payload, interface{}, error)

// SizeEstimator reports the approximate resident byte size of a payload,
// used to drive budget-based eviction.
type SizeEstimator func(Payload) int64

type nameKey struct {
	name string
	kind Kind
}

// Cache is the resource cache: a UUID- and name-indexed registry of handles,
// an asynchronous loader pipeline backed by the job system, and a
// budget-driven LRU evictor over removable, non-core handles.
type Cache struct {
	mu      sync.Mutex
	byUUID  map[uuid.UUID]*Handle
	byName  map[nameKey]*Handle
	jobs    *systems.JobSystem
	bus     *events.Bus
	sizeOf  SizeEstimator

	generation uint64
	budgetBytes int64
	usedBytes   int64

	finalizeMu sync.Mutex
	pending    []func()
}

// NewCache constructs an empty cache. jobs backs asynchronous loads; bus
// receives resource_loaded/resource_load_failed notifications. budgetBytes
// <= 0 disables eviction.
func NewCache(jobs *systems.JobSystem, bus *events.Bus, budgetBytes int64) *Cache {
	return &Cache{
		byUUID:      make(map[uuid.UUID]*Handle),
		byName:      make(map[nameKey]*Handle),
		jobs:        jobs,
		bus:         bus,
		sizeOf:      func(Payload) int64 { return 0 },
		budgetBytes: budgetBytes,
	}
}

// SetSizeEstimator overrides the default zero-cost size estimator used for
// eviction bookkeeping.
func (c *Cache) SetSizeEstimator(f SizeEstimator) {
	c.sizeOf = f
}

// Insert registers an already-constructed handle. Fails with
// core.ErrDuplicateUuid if the UUID is already registered.
func (c *Cache) Insert(h *Handle) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.byUUID[h.uuid]; exists {
		return core.ErrDuplicateUuid
	}
	c.byUUID[h.uuid] = h
	c.byName[nameKey{h.name, h.kind}] = h
	return nil
}

// GetOrCreate returns the existing handle for (name, kind) or creates and
// registers a new one with the given behavior flags.
func (c *Cache) GetOrCreate(name string, kind Kind, behavior Behavior) *Handle {
	c.mu.Lock()
	if h, ok := c.byName[nameKey{name, kind}]; ok {
		c.mu.Unlock()
		return h
	}
	c.mu.Unlock()

	h := NewHandle(name, kind, behavior)
	_ = c.Insert(h)
	return h
}

// Get looks a handle up by UUID.
func (c *Cache) Get(id uuid.UUID) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.byUUID[id]
	return h, ok
}

// GetByName looks a handle up by its (name, kind) pair.
func (c *Cache) GetByName(name string, kind Kind) (*Handle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	h, ok := c.byName[nameKey{name, kind}]
	return h, ok
}

// Load triggers a load of h's payload via decode. A serial load runs
// decode and post-construction inline before returning. An asynchronous
// load submits a resource-loading job and returns immediately; the caller
// must not assume the payload is available until h.IsConstructed().
func (c *Cache) Load(h *Handle, serial bool, decode Decoder) error {
	h.setLoading()

	if serial {
		payload, data, err := decode()
		return c.finalize(h, payload, data, err)
	}

	if c.jobs == nil {
		payload, data, err := decode()
		return c.finalize(h, payload, data, err)
	}

	// decodeErr is set by OnStart and read by OnFailure; both run
	// synchronously on the same worker goroutine (systems.JobSystem.start
	// calls OnFailure immediately after OnStart returns a non-nil error,
	// never concurrently with it), so no lock is needed to share it.
	var decodeErr error
	c.jobs.Submit(systems.JobTask{
		JobType: systems.JOB_TYPE_RESOURCE_LOAD,
		OnStart: func(params interface{}, output chan<- interface{}) error {
			payload, data, err := decode()
			decodeErr = err
			output <- [2]interface{}{payload, data}
			return err
		},
		OnComplete: func(paramsChan <-chan interface{}) {
			result := (<-paramsChan).([2]interface{})
			c.enqueueFinalization(func() {
				_ = c.finalize(h, result[0].(Payload), result[1], nil)
			})
		},
		OnFailure: func(paramsChan <-chan interface{}) {
			<-paramsChan
			c.enqueueFinalization(func() {
				_ = c.finalize(h, nil, nil, decodeErr)
			})
		},
	})
	return nil
}

func (c *Cache) finalize(h *Handle, payload Payload, data interface{}, err error) error {
	if err != nil {
		h.setFailed(err)
		if c.bus != nil {
			c.bus.ResourceLoadFailed.Publish(events.ResourceLoadFailed{UUID: h.uuid, Err: err})
		}
		return err
	}

	h.setPayload(payload)
	if err := h.postConstructTree(data); err != nil {
		if c.bus != nil {
			c.bus.ResourceLoadFailed.Publish(events.ResourceLoadFailed{UUID: h.uuid, Err: err})
		}
		return err
	}

	c.Touch(h)
	c.mu.Lock()
	c.usedBytes += c.sizeOf(payload)
	c.mu.Unlock()

	if c.bus != nil {
		c.bus.ResourceLoaded.Publish(events.ResourceLoaded{UUID: h.uuid})
	}
	c.evictIfOverBudget()
	return nil
}

// enqueueFinalization schedules fn to run on RunPendingFinalizations, which
// the graphics thread calls once between frames.
func (c *Cache) enqueueFinalization(fn func()) {
	c.finalizeMu.Lock()
	c.pending = append(c.pending, fn)
	c.finalizeMu.Unlock()
}

// RunPendingFinalizations drains and runs every queued post-construction
// closure. Must be called from the graphics thread, between frames.
func (c *Cache) RunPendingFinalizations() {
	c.finalizeMu.Lock()
	batch := c.pending
	c.pending = nil
	c.finalizeMu.Unlock()

	for _, fn := range batch {
		fn()
	}
}

// Unload drops h's payload without removing the handle skeleton, unless
// DeleteHandle is also requested via Remove.
func (c *Cache) Unload(h *Handle, lockMutex bool) {
	if lockMutex {
		c.mu.Lock()
		defer c.mu.Unlock()
	}

	if payload := h.Payload(); payload != nil {
		payload.OnRemoval()
		c.usedBytes -= c.sizeOf(payload)
		if c.usedBytes < 0 {
			c.usedBytes = 0
		}
	}
	h.setPayload(nil)

	h.mu.Lock()
	h.status &^= StatusConstructed
	h.mu.Unlock()
}

// Remove unloads h and, if flags includes DeleteHandle, removes the handle
// skeleton from the cache entirely. Refuses to delete a core handle unless
// flags includes Force.
func (c *Cache) Remove(h *Handle, flags DeleteFlag) error {
	if h.IsCore() && flags&Force == 0 {
		return fmt.Errorf("resources: refusing to remove core handle %s: %w", h.name, core.ErrInvariantViolation)
	}

	c.Unload(h, true)

	if flags&DeleteHandle != 0 {
		c.mu.Lock()
		delete(c.byUUID, h.uuid)
		delete(c.byName, nameKey{h.name, h.kind})
		c.mu.Unlock()
	}
	return nil
}

// Touch marks h as most-recently-used, so an eviction pass unloads it only
// after every candidate touched before it.
func (c *Cache) Touch(h *Handle) {
	c.mu.Lock()
	c.generation++
	h.generation = c.generation
	c.mu.Unlock()
}

// evictIfOverBudget unloads payloads (oldest generation first) from
// removable, non-core handles until usedBytes fits within budgetBytes. The
// handle skeletons survive so a later Get can trigger a reload.
func (c *Cache) evictIfOverBudget() {
	if c.budgetBytes <= 0 {
		return
	}

	c.mu.Lock()
	if c.usedBytes <= c.budgetBytes {
		c.mu.Unlock()
		return
	}
	candidates := make([]*Handle, 0, len(c.byUUID))
	for _, h := range c.byUUID {
		if h.IsRemovable() && h.Payload() != nil {
			candidates = append(candidates, h)
		}
	}
	c.mu.Unlock()

	sort.Slice(candidates, func(i, j int) bool { return candidates[i].generation < candidates[j].generation })

	for _, h := range candidates {
		c.Unload(h, true)
		c.mu.Lock()
		over := c.usedBytes > c.budgetBytes
		c.mu.Unlock()
		if !over {
			break
		}
	}
}
