// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

// Fence is a CPU-observable, binary completion signal a Queue.Submit
// call may signal, grounded on the teacher's driver.Fence (core.go).
// The implicit backend emulates Fence via the same queue-work-done
// future atomic.Uint64 pattern github.com/gogpu/wgpu's Queue uses
// (queue.go), rather than a native WebGPU primitive (WebGPU has none).
type Fence struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
}

// NewFence creates a Fence on d, initially signaled iff signaled is
// true.
func (d *Device) NewFence(signaled bool) (*Fence, error) {
	native, err := d.backend.NewFence(d.native, signaled)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Fence{
		h:       reg.wrap(KindFence, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
	}, nil
}

// Handle returns f's opaque Handle.
func (f *Fence) Handle() Handle { return f.h }

// Wait blocks until f is signaled or timeoutNs elapses, returning
// Timeout in the latter case.
func (f *Fence) Wait(timeoutNs uint64) Result { return f.backend.FenceWait(f.native, timeoutNs) }

// Reset returns f to the unsignaled state.
func (f *Fence) Reset() error { return f.backend.FenceReset(f.native) }

// Status reports f's current state without blocking: Success if
// signaled, NotReady otherwise.
func (f *Fence) Status() Result { return f.backend.FenceStatus(f.native) }

// Destroy releases f.
func (f *Fence) Destroy() {
	if !reg.isLive(f.h) {
		return
	}
	f.backend.DestroyFence(f.native)
	reg.unwrap(f.h)
}

// SemaphoreType selects binary (GPU-GPU, opaque-signal) versus timeline
// (monotonically increasing counter, also host-waitable) semantics,
// grounded on the teacher's explicit-backend binary semaphore plus
// DEVICE_EXTENSION_TIMELINE_SEMAPHORE's richer counter semantics
// (spec.md §6).
type SemaphoreType int

const (
	SemaphoreBinary SemaphoreType = iota
	SemaphoreTimeline
)

// Semaphore is a GPU-GPU (and, for SemaphoreTimeline, GPU-CPU)
// synchronization primitive used to order Queue.Submit calls against
// each other and against Swapchain.AcquireNext/Present.
//
// On the implicit backend, SemaphoreBinary is a documented no-op: WGPU
// orders all queue operations by submission order already, so
// SemaphoreWait/SemaphoreSignal validate arguments and return
// immediately rather than emitting a native wait/signal.
type Semaphore struct {
	h       Handle
	device  *Device
	backend Backend
	native  Native
	typ     SemaphoreType
}

// NewSemaphore creates a Semaphore of the given type on d.
func (d *Device) NewSemaphore(typ SemaphoreType) (*Semaphore, error) {
	if typ == SemaphoreTimeline && !d.HasExtension(DeviceExtensionTimelineSemaphore) {
		err := errf(FeatureNotSupported, "timeline semaphores require %s", DeviceExtensionTimelineSemaphore)
		d.errScopes.report(err)
		return nil, err
	}
	native, err := d.backend.NewSemaphore(d.native, typ)
	if err != nil {
		d.errScopes.report(err)
		return nil, err
	}
	return &Semaphore{
		h:       reg.wrap(KindSemaphore, mustBackendID(d.h)),
		device:  d,
		backend: d.backend,
		native:  native,
		typ:     typ,
	}, nil
}

// Handle returns s's opaque Handle.
func (s *Semaphore) Handle() Handle { return s.h }

// Type reports whether s is binary or timeline.
func (s *Semaphore) Type() SemaphoreType { return s.typ }

// Signal sets s's counter to value. Only valid for SemaphoreTimeline.
func (s *Semaphore) Signal(value uint64) error { return s.backend.SemaphoreSignal(s.native, value) }

// Wait blocks until s's counter reaches value or timeoutNs elapses.
// Only valid for SemaphoreTimeline.
func (s *Semaphore) Wait(value uint64, timeoutNs uint64) Result {
	return s.backend.SemaphoreWait(s.native, value, timeoutNs)
}

// Value reports s's current counter value. Only valid for
// SemaphoreTimeline.
func (s *Semaphore) Value() uint64 { return s.backend.SemaphoreValue(s.native) }

// Destroy releases s.
func (s *Semaphore) Destroy() {
	if !reg.isLive(s.h) {
		return
	}
	s.backend.DestroySemaphore(s.native)
	reg.unwrap(s.h)
}
