// Copyright 2022 Gustavo C. Viegas. All rights reserved.

package driver

import "testing"

// stubBackend is a minimal Backend implementation used only to exercise
// the registry's load/unload refcounting and handle wrap/unwrap logic
// (P1, P2) without depending on driver/vk or driver/wgpu.
type stubBackend struct{ instances int }

func (s *stubBackend) CreateInstance(*InstanceDescriptor) (Native, error) { s.instances++; return s.instances, nil }
func (s *stubBackend) DestroyInstance(Native)                             {}
func (s *stubBackend) SetDebugCallback(Native, DebugCallback)             {}
func (s *stubBackend) RequestAdapter(Native, *AdapterOptions) (Native, AdapterInfo, error) {
	return 1, AdapterInfo{}, nil
}
func (s *stubBackend) EnumerateAdapters(Native) []Native { return nil }
func (s *stubBackend) AdapterInfo(Native) AdapterInfo    { return AdapterInfo{} }
func (s *stubBackend) AdapterLimits(Native) Limits       { return Limits{} }
func (s *stubBackend) CreateDevice(Native, *DeviceDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyAdapter(Native)                                 {}
func (s *stubBackend) DeviceQueue(Native) Native                             { return 1 }
func (s *stubBackend) DeviceLimits(Native) Limits                            { return Limits{} }
func (s *stubBackend) DeviceWaitIdle(Native) error                           { return nil }
func (s *stubBackend) DestroyDevice(Native)                                  {}
func (s *stubBackend) NewSurface(Native, PlatformWindowHandle) (Native, error) { return 1, nil }
func (s *stubBackend) DestroySurface(Native)                                  {}
func (s *stubBackend) SurfaceFormats(Native) []PixelFmt                       { return nil }
func (s *stubBackend) SurfacePresentModes(Native) []PresentMode               { return nil }
func (s *stubBackend) NewSwapchain(Native, Native, SwapchainRequest) (Native, SwapchainInfo, error) {
	return 1, SwapchainInfo{}, nil
}
func (s *stubBackend) DestroySwapchain(Native)                    {}
func (s *stubBackend) SwapchainViews(Native) []Native              { return nil }
func (s *stubBackend) AcquireNext(Native, uint64, Native) (int, Result) { return 0, Success }
func (s *stubBackend) Present(Native, int, Native) Result          { return Success }
func (s *stubBackend) RecreateSwapchain(Native, SwapchainRequest) (SwapchainInfo, error) {
	return SwapchainInfo{}, nil
}
func (s *stubBackend) NewBuffer(Native, *BufferDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) BufferBytes(Native) []byte                          { return nil }
func (s *stubBackend) BufferCap(Native) int64                             { return 0 }
func (s *stubBackend) DestroyBuffer(Native)                               {}
func (s *stubBackend) NewTexture(Native, *TextureDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) TextureNewView(Native, *TextureViewDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) TextureLayout(Native) Layout                        { return LayoutUndefined }
func (s *stubBackend) DestroyTexture(Native)                              {}
func (s *stubBackend) DestroyTextureView(Native)                          {}
func (s *stubBackend) NewSampler(Native, *SamplingDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) DestroySampler(Native)                              {}
func (s *stubBackend) NewShader(Native, *ShaderDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyShader(Native)                               {}
func (s *stubBackend) NewBindGroupLayout(Native, []BindGroupLayoutEntry) (Native, error) {
	return 1, nil
}
func (s *stubBackend) DestroyBindGroupLayout(Native)                         {}
func (s *stubBackend) NewBindGroup(Native, *BindGroupDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyBindGroup(Native)                               {}
func (s *stubBackend) NewRenderPass(Native, *RenderPassDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyRenderPass(Native)                              {}
func (s *stubBackend) NewFramebuffer(Native, *FramebufferDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyFramebuffer(Native)                             {}
func (s *stubBackend) NewRenderPipeline(Native, *GraphState) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyRenderPipeline(Native)                          {}
func (s *stubBackend) NewComputePipeline(Native, *CompState) (Native, error) { return 1, nil }
func (s *stubBackend) DestroyComputePipeline(Native)                        {}
func (s *stubBackend) NewQuerySet(Native, *QuerySetDescriptor) (Native, error) { return 1, nil }
func (s *stubBackend) ResolveQuerySet(Native, int, int) ([]uint64, error)   { return nil, nil }
func (s *stubBackend) DestroyQuerySet(Native)                               {}
func (s *stubBackend) NewFence(Native, bool) (Native, error)                { return 1, nil }
func (s *stubBackend) FenceWait(Native, uint64) Result                      { return Success }
func (s *stubBackend) FenceReset(Native) error                              { return nil }
func (s *stubBackend) FenceStatus(Native) Result                           { return Success }
func (s *stubBackend) DestroyFence(Native)                                  {}
func (s *stubBackend) NewSemaphore(Native, SemaphoreType) (Native, error)   { return 1, nil }
func (s *stubBackend) SemaphoreSignal(Native, uint64) error                 { return nil }
func (s *stubBackend) SemaphoreWait(Native, uint64, uint64) Result          { return Success }
func (s *stubBackend) SemaphoreValue(Native) uint64                        { return 0 }
func (s *stubBackend) DestroySemaphore(Native)                              {}
func (s *stubBackend) NewCommandEncoder(Native) (Native, error)            { return 1, nil }
func (s *stubBackend) EncoderBegin(Native) error                           { return nil }
func (s *stubBackend) EncoderEnd(Native) error                             { return nil }
func (s *stubBackend) EncoderReset(Native) error                           { return nil }
func (s *stubBackend) DestroyCommandEncoder(Native)                         {}
func (s *stubBackend) BeginRenderPass(Native, Native, Native, []ClearValue) (Native, error) {
	return 1, nil
}
func (s *stubBackend) EndRenderPass(Native)                 {}
func (s *stubBackend) BeginComputePass(Native) (Native, error) { return 1, nil }
func (s *stubBackend) EndComputePass(Native)                {}
func (s *stubBackend) SetPipeline(Native, Native)           {}
func (s *stubBackend) SetViewport(Native, []Viewport)       {}
func (s *stubBackend) SetScissor(Native, []Scissor)         {}
func (s *stubBackend) SetVertexBuffer(Native, int, Native, int64) {}
func (s *stubBackend) SetIndexBuffer(Native, Native, IndexFmt, int64) {}
func (s *stubBackend) SetBindGroup(Native, int, Native, []uint32) {}
func (s *stubBackend) Draw(Native, int, int, int, int)       {}
func (s *stubBackend) DrawIndexed(Native, int, int, int, int, int) {}
func (s *stubBackend) Dispatch(Native, int, int, int)        {}
func (s *stubBackend) CopyBufferToBuffer(Native, *BufferCopy)   {}
func (s *stubBackend) CopyBufferToTexture(Native, *BufImgCopy)  {}
func (s *stubBackend) CopyTextureToBuffer(Native, *BufImgCopy)  {}
func (s *stubBackend) CopyTextureToTexture(Native, *ImageCopy)  {}
func (s *stubBackend) Barrier(Native, []Barrier)             {}
func (s *stubBackend) Transition(Native, []Transition)       {}
func (s *stubBackend) QueueSubmit(Native, []Native, []Native, []Native, Native) error { return nil }
func (s *stubBackend) QueueWriteBuffer(Native, Native, int64, []byte) error           { return nil }
func (s *stubBackend) QueueWaitIdle(Native) error                                     { return nil }

const testBackendID BackendID = 1000

func TestHandleZeroValue(t *testing.T) {
	var h Handle
	if !h.IsZero() {
		t.Fatal("zero Handle should report IsZero")
	}
}

func TestRegistryWrapUnwrapEpoch(t *testing.T) {
	h1 := reg.wrap(KindBuffer, testBackendID)
	if !reg.isLive(h1) {
		t.Fatal("freshly wrapped handle should be live")
	}
	reg.unwrap(h1)
	if reg.isLive(h1) {
		t.Fatal("unwrapped handle should not be live")
	}

	h2 := reg.wrap(KindBuffer, testBackendID)
	if h2.index == h1.index && h2.epoch == h1.epoch {
		t.Fatal("recycled slot must bump epoch so old handle never compares equal to new occupant")
	}
	if h1 == h2 {
		t.Fatal("stale handle must not equal the handle for the recycled slot")
	}
	reg.unwrap(h2)
}

func TestRegistryUnwrapIsIdempotent(t *testing.T) {
	h := reg.wrap(KindBuffer, testBackendID)
	reg.unwrap(h)
	reg.unwrap(h) // must not panic or corrupt the free list
	reg.unwrap(Handle{})
}

func TestLoadUnloadBackendRefcounting(t *testing.T) {
	RegisterBackend(testBackendID, func() Backend { return &stubBackend{} })

	if IsBackendLoaded(testBackendID) {
		t.Fatal("backend should not be loaded before the first LoadBackend call")
	}
	if err := LoadBackend(testBackendID); err != nil {
		t.Fatalf("LoadBackend: %v", err)
	}
	if err := LoadBackend(testBackendID); err != nil {
		t.Fatalf("second LoadBackend: %v", err)
	}
	if !IsBackendLoaded(testBackendID) {
		t.Fatal("backend should be loaded after LoadBackend")
	}

	UnloadBackend(testBackendID)
	if !IsBackendLoaded(testBackendID) {
		t.Fatal("backend should still be loaded: one reference remains")
	}
	UnloadBackend(testBackendID)
	if IsBackendLoaded(testBackendID) {
		t.Fatal("backend should be unloaded once the refcount reaches zero")
	}

	// Balanced load/unload returns the registry to its pre-call state (P1).
	UnloadBackend(testBackendID) // extra unload on an absent backend is a no-op
	if IsBackendLoaded(testBackendID) {
		t.Fatal("unloading an absent backend must remain a no-op")
	}
}

func TestLoadBackendUnregistered(t *testing.T) {
	const unregistered BackendID = 9999
	if err := LoadBackend(unregistered); err == nil {
		t.Fatal("expected an error loading an unregistered backend")
	}
}

func TestLookupBackendUnknownHandle(t *testing.T) {
	if _, ok := LookupBackend(Handle{}); ok {
		t.Fatal("looking up the zero handle must fail")
	}
	h := reg.wrap(KindBuffer, testBackendID)
	reg.unwrap(h)
	if _, ok := LookupBackend(h); ok {
		t.Fatal("looking up a stale handle must fail")
	}
}
