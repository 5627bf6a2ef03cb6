// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/kestrelgpu/gfx/driver"
	"github.com/kestrelgpu/gfx/driver/swbackend"
)

// openSWDevice loads swbackend and opens the one Device it ever reports,
// the fixture every test below builds on.
func openSWDevice(t *testing.T) (*driver.Instance, *driver.Device) {
	t.Helper()
	inst, err := driver.NewInstance(swbackend.ID, &driver.InstanceDescriptor{AppName: "swbackend-test"})
	if err != nil {
		t.Fatalf("NewInstance(swbackend.ID): %v", err)
	}
	adapter, err := inst.RequestAdapter(nil)
	if err != nil {
		t.Fatalf("RequestAdapter: %v", err)
	}
	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		t.Fatalf("RequestDevice: %v", err)
	}
	return inst, dev
}

// TestBackendLoadUnloadRoundTrip is P1 run against a real registered
// backend rather than handle_test.go's stubBackend: a balanced
// LoadBackend/UnloadBackend sequence returns the registry to its
// pre-call state.
func TestBackendLoadUnloadRoundTrip(t *testing.T) {
	if driver.IsBackendLoaded(swbackend.ID) {
		t.Fatal("swbackend.ID should not be loaded before this test's first LoadBackend call")
	}
	if err := driver.LoadBackend(swbackend.ID); err != nil {
		t.Fatalf("LoadBackend: %v", err)
	}
	if err := driver.LoadBackend(swbackend.ID); err != nil {
		t.Fatalf("second LoadBackend: %v", err)
	}
	driver.UnloadBackend(swbackend.ID)
	if !driver.IsBackendLoaded(swbackend.ID) {
		t.Fatal("backend should still be loaded: one reference remains")
	}
	driver.UnloadBackend(swbackend.ID)
	if driver.IsBackendLoaded(swbackend.ID) {
		t.Fatal("backend should be unloaded once the refcount reaches zero")
	}
}

// TestHandleBackendIDMatches is P2: every live handle created through
// swbackend resolves back to swbackend.ID via LookupBackend.
func TestHandleBackendIDMatches(t *testing.T) {
	inst, dev := openSWDevice(t)
	defer inst.Destroy()

	for _, h := range []driver.Handle{inst.Handle(), dev.Handle(), dev.Queue().Handle()} {
		b, ok := driver.LookupBackend(h)
		if !ok {
			t.Fatalf("LookupBackend(%v): handle not found", h)
		}
		if b == nil {
			t.Fatalf("LookupBackend(%v): nil Backend", h)
		}
	}
}

// TestTextureViewRangeValidation is P3, using scenario 3's exact values:
// a 512x512 texture with 9 mip levels and 1 array layer.
func TestTextureViewRangeValidation(t *testing.T) {
	inst, dev := openSWDevice(t)
	defer inst.Destroy()

	tex, err := dev.NewTexture(&driver.TextureDescriptor{
		Dimension:          driver.Texture2D,
		Format:             driver.R8G8B8A8Unorm,
		Width:              512,
		Height:             512,
		DepthOrArrayLayers: 1,
		MipLevels:          9,
		SampleCount:        1,
		Usage:              driver.TextureUsageCopyDst,
	})
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}

	if _, err := tex.NewView(&driver.TextureViewDescriptor{
		BaseMipLevel:  2,
		MipLevelCount: 4,
	}); err != nil {
		t.Errorf("in-range view {2,4}: %v, want success", err)
	}

	_, err = tex.NewView(&driver.TextureViewDescriptor{
		BaseMipLevel:  2,
		MipLevelCount: 10,
	})
	var r driver.Result
	if !errors.As(err, &r) || r != driver.InvalidArgument {
		t.Errorf("out-of-range view {2,10}: err = %v, want InvalidArgument", err)
	}
}

// TestBufferWriteCopyReadbackRoundTrip is P7: a byte pattern written via
// Queue.WriteBuffer, copied via CopyBufferToBuffer, and read back through
// MappedRange must match what was written.
func TestBufferWriteCopyReadbackRoundTrip(t *testing.T) {
	inst, dev := openSWDevice(t)
	defer inst.Destroy()

	const size = 256
	pattern := make([]byte, size)
	for i := range pattern {
		pattern[i] = byte(i)
	}

	src, err := dev.NewBuffer(&driver.BufferDescriptor{Size: size, Usage: driver.UsageCopyDst | driver.UsageCopySrc})
	if err != nil {
		t.Fatalf("NewBuffer(src): %v", err)
	}
	dst, err := dev.NewBuffer(&driver.BufferDescriptor{Size: size, Usage: driver.UsageCopyDst})
	if err != nil {
		t.Fatalf("NewBuffer(dst): %v", err)
	}

	if err := dev.Queue().WriteBuffer(src, 0, pattern); err != nil {
		t.Fatalf("WriteBuffer: %v", err)
	}

	enc, err := dev.NewCommandEncoder()
	if err != nil {
		t.Fatalf("NewCommandEncoder: %v", err)
	}
	enc.CopyBufferToBuffer(&driver.BufferCopy{Src: src, Dst: dst, Size: size})
	if err := enc.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	fence, err := dev.NewFence(false)
	if err != nil {
		t.Fatalf("NewFence: %v", err)
	}
	if err := dev.Queue().Submit([]*driver.CommandEncoder{enc}, nil, nil, fence); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r := fence.Wait(^uint64(0)); r != driver.Success {
		t.Fatalf("fence.Wait: %v, want Success", r)
	}

	if got := dst.MappedRange(); !bytes.Equal(got, pattern) {
		t.Errorf("readback mismatch: have %v, want %v", got, pattern)
	}
}

// TestScenarioInstanceAdapterSmoke is end-to-end scenario 1: load a
// backend, enumerate its one adapter, open a device, tear everything
// down cleanly.
func TestScenarioInstanceAdapterSmoke(t *testing.T) {
	inst, dev := openSWDevice(t)
	if dev.Queue() == nil {
		t.Fatal("Device.Queue() returned nil")
	}
	dev.Destroy()
	inst.Destroy()
}

// TestScenarioBufferCreateInfo is end-to-end scenario 2: a created
// buffer reports back the size and usage it was created with.
func TestScenarioBufferCreateInfo(t *testing.T) {
	inst, dev := openSWDevice(t)
	defer inst.Destroy()

	buf, err := dev.NewBuffer(&driver.BufferDescriptor{Size: 4096, Usage: driver.UsageUniform})
	if err != nil {
		t.Fatalf("NewBuffer: %v", err)
	}
	if buf.Size() != 4096 {
		t.Errorf("Buffer.Size() = %d, want 4096", buf.Size())
	}
	if buf.Usage() != driver.UsageUniform {
		t.Errorf("Buffer.Usage() = %v, want UsageUniform", buf.Usage())
	}
}

// TestScenarioFenceWaitOnPresignaled is end-to-end scenario 4: a fence
// created already-signaled returns Success from Wait without a Submit.
func TestScenarioFenceWaitOnPresignaled(t *testing.T) {
	inst, dev := openSWDevice(t)
	defer inst.Destroy()

	fence, err := dev.NewFence(true)
	if err != nil {
		t.Fatalf("NewFence(true): %v", err)
	}
	if r := fence.Wait(0); r != driver.Success {
		t.Errorf("Wait on presignaled fence = %v, want Success", r)
	}
	if err := fence.Reset(); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if r := fence.Status(); r != driver.NotReady {
		t.Errorf("Status after Reset = %v, want NotReady", r)
	}
}

// TestErrorScopeCapturesValidationFailure exercises PushErrorScope /
// PopErrorScope end to end: a validation failure raised while a matching
// scope is active is captured rather than only returned to the caller.
func TestErrorScopeCapturesValidationFailure(t *testing.T) {
	inst, dev := openSWDevice(t)
	defer inst.Destroy()

	dev.PushErrorScope(driver.ErrorFilterValidation)
	tex, err := dev.NewTexture(&driver.TextureDescriptor{
		Dimension:          driver.Texture2D,
		Format:             driver.R8G8B8A8Unorm,
		Width:              64,
		Height:             64,
		DepthOrArrayLayers: 1,
		MipLevels:          1,
		SampleCount:        1,
	})
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	if _, err := tex.NewView(&driver.TextureViewDescriptor{BaseMipLevel: 0, MipLevelCount: 5}); err == nil {
		t.Fatal("expected an out-of-range view to fail")
	}

	captured, err := dev.PopErrorScope()
	if err != nil {
		t.Fatalf("PopErrorScope: %v", err)
	}
	if captured == nil {
		t.Fatal("PopErrorScope returned nil Error, want the captured validation failure")
	}
	if captured.Type != driver.ErrorFilterValidation {
		t.Errorf("captured.Type = %v, want ErrorFilterValidation", captured.Type)
	}

	if _, err := dev.PopErrorScope(); err == nil {
		t.Fatal("PopErrorScope on an empty stack should fail")
	}
}
