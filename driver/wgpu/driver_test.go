// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package wgpu

import (
	"errors"
	"os"
	"testing"

	"github.com/kestrelgpu/gfx/driver"
)

// tInst/tDev mirror driver/vk's driver_test.go fixture: opened once by
// TestMain and shared read-only by every test in this file.
var (
	tInst *driver.Instance
	tDev  *driver.Device
	tSkip bool
)

// TestMain opens a real WebGPU-class instance/device once for the whole
// package, skipping every test below when no hal.Backend implementation
// is linked in (the common case: this module ships no hal/* package of
// its own, see UseBackend's doc comment) or no adapter is exposed.
func TestMain(m *testing.M) {
	inst, err := driver.NewInstance(driver.BackendWebGPU, &driver.InstanceDescriptor{AppName: "wgpu-test"})
	if err != nil {
		if errors.Is(err, driver.ErrNotInstalled) || errors.Is(err, driver.ErrNoDevice) {
			tSkip = true
			os.Exit(m.Run())
		}
		os.Exit(1)
	}
	adapter, err := inst.RequestAdapter(nil)
	if err != nil {
		if errors.Is(err, driver.ErrNoDevice) {
			tSkip = true
			inst.Destroy()
			os.Exit(m.Run())
		}
		os.Exit(1)
	}
	dev, err := adapter.RequestDevice(nil)
	if err != nil {
		os.Exit(1)
	}
	tInst, tDev = inst, dev
	c := m.Run()
	dev.Destroy()
	inst.Destroy()
	os.Exit(c)
}

func skipIfNoDevice(t *testing.T) {
	t.Helper()
	if tSkip {
		t.Skip("no hal.Backend/adapter available in this environment")
	}
}

// TestFenceSignalResetCycle is P6 run against the real implicit backend:
// same contract as driver/vk's, but exercised through the
// queue-work-done future github.com/gogpu/wgpu's Queue.Submit always
// waits on.
func TestFenceSignalResetCycle(t *testing.T) {
	skipIfNoDevice(t)

	fence, err := tDev.NewFence(false)
	if err != nil {
		t.Fatalf("NewFence: %v", err)
	}
	defer fence.Destroy()

	enc, err := tDev.NewCommandEncoder()
	if err != nil {
		t.Fatalf("NewCommandEncoder: %v", err)
	}
	if err := enc.End(); err != nil {
		t.Fatalf("End: %v", err)
	}
	if err := tDev.Queue().Submit([]*driver.CommandEncoder{enc}, nil, nil, fence); err != nil {
		t.Fatalf("Submit: %v", err)
	}

	if r := fence.Wait(^uint64(0)); r != driver.Success {
		t.Fatalf("fence.Wait(inf) = %v, want Success", r)
	}
	if r := fence.Status(); r != driver.Success {
		t.Fatalf("fence.Status() immediately after wait = %v, want Success", r)
	}
	if err := fence.Reset(); err != nil {
		t.Fatalf("fence.Reset: %v", err)
	}
	if r := fence.Status(); r != driver.NotReady {
		t.Fatalf("fence.Status() after Reset = %v, want NotReady", r)
	}
	enc.Destroy()
}

// TestRenderToOffscreen is end-to-end scenario 5, see driver/vk's test
// of the same name for the full description.
func TestRenderToOffscreen(t *testing.T) {
	skipIfNoDevice(t)

	tex, err := tDev.NewTexture(&driver.TextureDescriptor{
		Dimension:          driver.Texture2D,
		Format:             driver.R8G8B8A8Unorm,
		Width:              64,
		Height:             64,
		DepthOrArrayLayers: 1,
		MipLevels:          1,
		SampleCount:        1,
		Usage:              driver.TextureUsageRenderAttachment | driver.TextureUsageCopySrc,
	})
	if err != nil {
		t.Fatalf("NewTexture: %v", err)
	}
	defer tex.Destroy()

	view, err := tex.NewView(&driver.TextureViewDescriptor{MipLevelCount: 1, ArrayLayerCount: 1})
	if err != nil {
		t.Fatalf("Texture.NewView: %v", err)
	}
	defer view.Destroy()

	pass, err := tDev.NewRenderPass(&driver.RenderPassDescriptor{
		ColorAttachments: []driver.AttachmentDescriptor{{
			Format: driver.R8G8B8A8Unorm,
			Load:   driver.LoadClear,
			Store:  driver.StoreStore,
		}},
	})
	if err != nil {
		t.Fatalf("NewRenderPass: %v", err)
	}
	defer pass.Destroy()

	fb, err := pass.NewFramebuffer(&driver.FramebufferDescriptor{
		ColorViews: []*driver.TextureView{view},
		Width:      64,
		Height:     64,
	})
	if err != nil {
		t.Fatalf("NewFramebuffer: %v", err)
	}
	defer fb.Destroy()

	enc, err := tDev.NewCommandEncoder()
	if err != nil {
		t.Fatalf("NewCommandEncoder: %v", err)
	}
	defer enc.Destroy()

	rp, err := enc.BeginRenderPass(pass, fb, []driver.ClearValue{{Color: [4]float32{0, 0, 0, 1}}})
	if err != nil {
		t.Fatalf("BeginRenderPass: %v", err)
	}
	rp.End()
	if err := enc.End(); err != nil {
		t.Fatalf("End: %v", err)
	}

	fence, err := tDev.NewFence(false)
	if err != nil {
		t.Fatalf("NewFence: %v", err)
	}
	defer fence.Destroy()
	if err := tDev.Queue().Submit([]*driver.CommandEncoder{enc}, nil, nil, fence); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if r := fence.Wait(^uint64(0)); r != driver.Success {
		t.Fatalf("fence.Wait: %v, want Success", r)
	}
}

// TestMultiFrameInFlightEncoderReuse is end-to-end scenario 6, see
// driver/vk's test of the same name for the full description.
func TestMultiFrameInFlightEncoderReuse(t *testing.T) {
	skipIfNoDevice(t)

	const framesInFlight = 3
	encs := make([]*driver.CommandEncoder, framesInFlight)
	fences := make([]*driver.Fence, framesInFlight)
	for i := range encs {
		enc, err := tDev.NewCommandEncoder()
		if err != nil {
			t.Fatalf("NewCommandEncoder[%d]: %v", i, err)
		}
		if err := enc.End(); err != nil {
			t.Fatalf("End[%d]: %v", i, err)
		}
		fence, err := tDev.NewFence(false)
		if err != nil {
			t.Fatalf("NewFence[%d]: %v", i, err)
		}
		if err := tDev.Queue().Submit([]*driver.CommandEncoder{enc}, nil, nil, fence); err != nil {
			t.Fatalf("Submit[%d]: %v", i, err)
		}
		encs[i], fences[i] = enc, fence
	}

	for i, fence := range fences {
		if r := fence.Wait(^uint64(0)); r != driver.Success {
			t.Fatalf("inFlightFences[%d].Wait(inf) = %v, want Success", i, r)
		}
		fence.Destroy()
	}

	if err := encs[0].Reset(); err != nil {
		t.Fatalf("re-using frame 0's encoder: Reset: %v", err)
	}
	if err := encs[0].Begin(); err != nil {
		t.Fatalf("re-using frame 0's encoder: Begin: %v", err)
	}
	if err := encs[0].End(); err != nil {
		t.Fatalf("re-using frame 0's encoder: End: %v", err)
	}

	for _, enc := range encs {
		enc.Destroy()
	}
}
