// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "sync"

// Kind identifies the entity type a Handle names. It exists purely for
// registry bookkeeping and diagnostics — public code never switches on
// it directly.
type Kind uint8

// Entity kinds tracked by the handle registry.
const (
	KindInstance Kind = iota
	KindAdapter
	KindDevice
	KindQueue
	KindBuffer
	KindTexture
	KindTextureView
	KindSampler
	KindShader
	KindBindGroupLayout
	KindBindGroup
	KindRenderPass
	KindFramebuffer
	KindRenderPipeline
	KindComputePipeline
	KindCommandEncoder
	KindRenderPassEncoder
	KindComputePassEncoder
	KindFence
	KindSemaphore
	KindQuerySet
	KindSurface
	KindSwapchain
	kindCount
)

// Handle is an opaque, reference-stable identifier for a live public
// entity (spec.md §3: "Every public entity is an opaque handle whose
// holder cannot observe its representation"). It is comparable and may
// be copied freely; the zero Handle is never valid.
//
// Internally a Handle packs a generation (epoch) alongside a slot index,
// so that once a slot is released and its index recycled, any Handle
// value referring to the old occupant compares unequal to the new one —
// the same index+epoch scheme github.com/gogpu/wgpu's core.Registry
// uses (core/id.go, core/identity.go) to guarantee handles are "never
// reused after destruction" (spec.md §3) without leaking raw pointers.
type Handle struct {
	kind  Kind
	index uint32
	epoch uint32
}

// IsZero reports whether h is the zero Handle (never a valid handle).
func (h Handle) IsZero() bool { return h == Handle{} }

// slot is one entry of a kind's index-addressed table.
type slot struct {
	epoch   uint32
	backend BackendID
	live    bool
}

// table is the per-kind generational slot array plus its free list,
// grounded on core.Storage/core.IdentityManager
// (_examples/gogpu-wgpu/core/{storage,identity}.go) collapsed into a
// single non-generic structure — Go generics buy little here since the
// registry is reached through one concrete Handle type, not one type
// parameter per entity.
type table struct {
	slots []slot
	free  []uint32
}

// registry is the process-wide Handle & Ownership Plane (spec.md §4.1):
// a reader-writer-mutex-guarded map from every live Handle to the
// BackendID that produced it, plus the BackendID -> Backend association
// used by LoadBackend/UnloadBackend. Grounded on the teacher's
// driver.Register/Drivers state, github.com/gogpu/wgpu's
// hal.RegisterBackend/GetBackend (hal/registry.go), and
// original_source's BackendManager (handle -> backend map under a
// mutex, gfx/src/backend/Manager.cpp).
type registry struct {
	mu     sync.RWMutex
	tables [kindCount]table

	factoryMu sync.Mutex
	factories map[BackendID]func() Backend

	backendMu sync.RWMutex
	backends  map[BackendID]*backendSlot
}

type backendSlot struct {
	impl Backend
	refs int
}

var reg = &registry{
	factories: make(map[BackendID]func() Backend),
	backends:  make(map[BackendID]*backendSlot),
}

// wrap registers a new live handle of the given kind, associated with
// backend, and returns it. This is the registry's "wrap" operation
// (spec.md §4.1): a constant-time insert.
func (r *registry) wrap(kind Kind, backend BackendID) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &r.tables[kind]
	if n := len(t.free); n > 0 {
		idx := t.free[n-1]
		t.free = t.free[:n-1]
		t.slots[idx].epoch++
		t.slots[idx].backend = backend
		t.slots[idx].live = true
		return Handle{kind: kind, index: idx, epoch: t.slots[idx].epoch}
	}
	idx := uint32(len(t.slots))
	t.slots = append(t.slots, slot{epoch: 1, backend: backend, live: true})
	return Handle{kind: kind, index: idx, epoch: 1}
}

// unwrap removes the association for h, freeing its index for reuse
// under a bumped epoch. Unwrapping an already-dead or zero handle is a
// no-op (destroy calls on null/stale handles succeed silently per
// spec.md §7).
func (r *registry) unwrap(h Handle) {
	if h.IsZero() {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	t := &r.tables[h.kind]
	if int(h.index) >= len(t.slots) {
		return
	}
	s := &t.slots[h.index]
	if !s.live || s.epoch != h.epoch {
		return
	}
	s.live = false
	t.free = append(t.free, h.index)
}

// lookupBackendID resolves h to the BackendID that produced it (P2).
// The second return value is false for a zero, stale or unknown handle.
func (r *registry) lookupBackendID(h Handle) (BackendID, bool) {
	if h.IsZero() {
		return 0, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	t := &r.tables[h.kind]
	if int(h.index) >= len(t.slots) {
		return 0, false
	}
	s := t.slots[h.index]
	if !s.live || s.epoch != h.epoch {
		return 0, false
	}
	return s.backend, true
}

// isLive reports whether h still names a live entity.
func (r *registry) isLive(h Handle) bool {
	_, ok := r.lookupBackendID(h)
	return ok
}

// LookupBackend resolves a Handle all the way to the Backend
// implementation that owns it (spec.md §4.1: "lookup(handle) ->
// BackendImpl"). It is exported for the rare cross-cutting call that
// must dispatch generically from a bare Handle rather than through a
// typed wrapper's already-bound Backend reference (e.g. the public C
// façade, or diagnostic tooling).
func LookupBackend(h Handle) (Backend, bool) {
	id, ok := reg.lookupBackendID(h)
	if !ok {
		return nil, false
	}
	return getBackend(id)
}
