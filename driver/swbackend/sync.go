// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package swbackend

import (
	"sync/atomic"

	"github.com/kestrelgpu/gfx/driver"
)

// swFence mirrors hal/noop's Fence: an atomic boolean is enough since
// swbackend's QueueSubmit runs synchronously — there is no pending
// state for Wait to actually block on.
type swFence struct {
	signaled atomic.Bool
}

func (b *swBackend) NewFence(n driver.Native, signaled bool) (driver.Native, error) {
	f := &swFence{}
	f.signaled.Store(signaled)
	return f, nil
}

func (b *swBackend) FenceWait(n driver.Native, timeoutNs uint64) driver.Result {
	if n.(*swFence).signaled.Load() {
		return driver.Success
	}
	return driver.Timeout
}

func (b *swBackend) FenceReset(n driver.Native) error {
	n.(*swFence).signaled.Store(false)
	return nil
}

func (b *swBackend) FenceStatus(n driver.Native) driver.Result {
	if n.(*swFence).signaled.Load() {
		return driver.Success
	}
	return driver.NotReady
}

func (b *swBackend) DestroyFence(driver.Native) {}

// swSemaphore supports both binary and timeline semantics through the
// same monotonically-increasing counter: a binary wait only ever checks
// "has this been signaled at least once", which value >= 1 captures.
type swSemaphore struct {
	typ   driver.SemaphoreType
	value atomic.Uint64
}

func (b *swBackend) NewSemaphore(n driver.Native, typ driver.SemaphoreType) (driver.Native, error) {
	return &swSemaphore{typ: typ}, nil
}

func (b *swBackend) SemaphoreSignal(n driver.Native, value uint64) error {
	n.(*swSemaphore).value.Store(value)
	return nil
}

func (b *swBackend) SemaphoreWait(n driver.Native, value uint64, timeoutNs uint64) driver.Result {
	if n.(*swSemaphore).value.Load() >= value {
		return driver.Success
	}
	return driver.Timeout
}

func (b *swBackend) SemaphoreValue(n driver.Native) uint64 { return n.(*swSemaphore).value.Load() }
func (b *swBackend) DestroySemaphore(driver.Native)        {}
